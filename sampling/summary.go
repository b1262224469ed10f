package sampling

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/osbornjw-stats/lizsample/population"
)

// HabitatCount is the number of sampled individuals from one habitat.
type HabitatCount struct {
	Habitat         string  `json:"habitat" csv:"habitat"`
	Count           int     `json:"count" csv:"count"`
	SampleShare     float64 `json:"sample_share" csv:"sample_share"`
	PopulationShare float64 `json:"population_share" csv:"population_share"`
}

// Summary compares a sample against the population it was drawn from.
type Summary struct {
	Strategy      string         `json:"strategy"`
	TrueMean      float64        `json:"true_mean"`
	SampleMean    float64        `json:"sample_mean"`
	Error         float64        `json:"error"` // SampleMean - TrueMean
	SampleSize    int            `json:"sample_size"`
	SampleStdDev  float64        `json:"sample_std_dev"`
	StandardError float64        `json:"standard_error"`
	HabitatCounts []HabitatCount `json:"habitat_counts"`
}

// Summarize computes the summary for sample. Habitat counts follow the
// population's habitat order and include habitats that were not sampled.
func Summarize(pop *population.Population, sample Sample) Summary {
	weights := sample.Weights()
	n := len(weights)

	s := Summary{
		TrueMean:   pop.TrueMean(),
		SampleSize: n,
	}
	if sample.Strategy != nil {
		s.Strategy = sample.Strategy.Kind()
	}
	if n > 0 {
		s.SampleMean = stat.Mean(weights, nil)
		s.Error = s.SampleMean - s.TrueMean
	}
	if n > 1 {
		s.SampleStdDev = stat.StdDev(weights, nil)
		s.StandardError = stat.StdErr(s.SampleStdDev, float64(n))
	}

	counts := make(map[string]int, len(pop.Strata()))
	for _, r := range sample.Rows {
		counts[r.Habitat]++
	}
	for _, st := range pop.Strata() {
		hc := HabitatCount{
			Habitat:         st.Habitat.Name,
			Count:           counts[st.Habitat.Name],
			PopulationShare: float64(st.Len()) / float64(pop.Len()),
		}
		if n > 0 {
			hc.SampleShare = float64(hc.Count) / float64(n)
		}
		s.HabitatCounts = append(s.HabitatCounts, hc)
	}
	return s
}

// Count returns the sampled count for the named habitat.
func (s Summary) Count(habitat string) int {
	for _, hc := range s.HabitatCounts {
		if hc.Habitat == habitat {
			return hc.Count
		}
	}
	return 0
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("strategy", s.Strategy),
		slog.Float64("true_mean", s.TrueMean),
		slog.Float64("sample_mean", s.SampleMean),
		slog.Float64("error", s.Error),
		slog.Int("sample_size", s.SampleSize),
		slog.Float64("sample_std_dev", s.SampleStdDev),
		slog.Float64("standard_error", s.StandardError),
	}
	for _, hc := range s.HabitatCounts {
		attrs = append(attrs, slog.Int("n_"+hc.Habitat, hc.Count))
	}
	return slog.GroupValue(attrs...)
}
