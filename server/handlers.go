package server

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osbornjw-stats/lizsample/export"
	"github.com/osbornjw-stats/lizsample/population"
	"github.com/osbornjw-stats/lizsample/sampling"
)

// DrawRequest is the body of POST /v1/samples.
type DrawRequest struct {
	Stratified bool           `json:"stratified"`
	Bias       bool           `json:"bias"`
	TotalSize  int            `json:"total_size" binding:"gte=0"`
	Quotas     map[string]int `json:"quotas" binding:"omitempty,dive,keys,required,endkeys"`
}

// Options converts the request into sampling options.
func (r DrawRequest) Options() sampling.Options {
	return sampling.Options{
		Stratified: r.Stratified,
		Bias:       r.Bias,
		TotalSize:  r.TotalSize,
		Quotas:     r.Quotas,
	}
}

// HistogramResponse holds population and sample densities over shared bins.
type HistogramResponse struct {
	Dividers   []float64 `json:"dividers"`
	Population []float64 `json:"population"`
	Sample     []float64 `json:"sample,omitempty"`
}

// DrawResponse is returned by POST /v1/samples.
type DrawResponse struct {
	ID        string                  `json:"id"`
	Strategy  string                  `json:"strategy"`
	Summary   sampling.Summary        `json:"summary"`
	Rows      []population.Individual `json:"rows"`
	Histogram HistogramResponse       `json:"histogram"`
	CSVURL    string                  `json:"csv_url"`
}

// HabitatResponse describes one habitat with its realised mean.
type HabitatResponse struct {
	population.Habitat
	RealisedMean float64 `json:"realised_mean"`
}

// PopulationResponse is returned by GET /v1/population.
type PopulationResponse struct {
	Seed      int64             `json:"seed"`
	Size      int               `json:"size"`
	TrueMean  float64           `json:"true_mean"`
	Habitats  []HabitatResponse `json:"habitats"`
	Histogram HistogramResponse `json:"histogram"`
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleHabitats returns the habitat table.
func (s *Server) HandleHabitats() gin.HandlerFunc {
	return func(c *gin.Context) {
		pop, err := s.cache.Get()
		if err != nil {
			populationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"habitats": pop.Habitats()})
	}
}

// HandlePopulation returns population statistics, or the full population as
// CSV when format=csv.
func (s *Server) HandlePopulation() gin.HandlerFunc {
	return func(c *gin.Context) {
		pop, err := s.cache.Get()
		if err != nil {
			populationError(c, err)
			return
		}

		if c.Query("format") == "csv" {
			data, err := export.SamplesCSV(pop.Individuals())
			if err != nil {
				slog.Error("population export failed", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode population"})
				return
			}
			c.Header("Content-Disposition", `attachment; filename="lizard_population.csv"`)
			c.Data(http.StatusOK, "text/csv", data)
			return
		}

		sess, err := s.session()
		if err != nil {
			populationError(c, err)
			return
		}
		hist := sess.PopulationHistogram()

		resp := PopulationResponse{
			Seed:     pop.Seed(),
			Size:     pop.Len(),
			TrueMean: pop.TrueMean(),
			Histogram: HistogramResponse{
				Dividers:   hist.Dividers,
				Population: hist.Density(),
			},
		}
		for _, h := range pop.Habitats() {
			mean, _ := pop.HabitatMean(h.Name)
			resp.Habitats = append(resp.Habitats, HabitatResponse{Habitat: h, RealisedMean: mean})
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HandleDraw draws a new sample and makes it the latest one. Domain errors
// are reported as 422 and the previous sample is kept.
func (s *Server) HandleDraw() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DrawRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		sess, err := s.session()
		if err != nil {
			populationError(c, err)
			return
		}

		opts := req.Options()
		kind := opts.Strategy().Kind()
		start := time.Now()
		result, err := sess.Draw(opts)
		drawDuration.Observe(time.Since(start).Seconds())
		drawsTotal.WithLabelValues(kind, outcome(err)).Inc()

		if err != nil {
			slog.Warn("draw rejected", "strategy", kind, "error", err)
			status := http.StatusUnprocessableEntity
			if outcome(err) == "error" {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		estimateError.WithLabelValues(kind).Observe(math.Abs(result.Summary.Error))

		popHist := sess.PopulationHistogram()
		c.JSON(http.StatusOK, DrawResponse{
			ID:       result.ID,
			Strategy: fmt.Sprint(result.Sample.Strategy),
			Summary:  result.Summary,
			Rows:     result.Sample.Rows,
			Histogram: HistogramResponse{
				Dividers:   popHist.Dividers,
				Population: popHist.Density(),
				Sample:     result.Histogram.Density(),
			},
			CSVURL: "/v1/samples/" + result.ID + "/csv",
		})
	}
}

// HandleSampleCSV exports the latest sample. Older ids are gone once a new
// sample has been drawn.
func (s *Server) HandleSampleCSV() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("sampleId")
		sess, err := s.session()
		if err != nil {
			populationError(c, err)
			return
		}
		result, ok := sess.Lookup(id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "sample not found"})
			return
		}

		data, err := export.SamplesCSV(result.Sample.Rows)
		if err != nil {
			slog.Error("sample export failed", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode sample"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="lizard_sample_%s.csv"`, id))
		c.Data(http.StatusOK, "text/csv", data)
	}
}

func populationError(c *gin.Context, err error) {
	slog.Error("population unavailable", "error", err)
	status := http.StatusInternalServerError
	if errors.Is(err, population.ErrInvalidConfiguration) {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
