package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osbornjw-stats/lizsample/population"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cache := population.NewCache(population.ReferenceHabitats(), population.ReferenceSeed)
	s := New(cache, population.NewSource(1), Options{HistogramBins: 20, Metrics: true})
	return s.Handler()
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func drawOK(t *testing.T, router *gin.Engine, body string) DrawResponse {
	t.Helper()
	w := do(router, http.MethodPost, "/v1/samples", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp DrawResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func csvLines(body string) []string {
	return strings.Split(strings.TrimSpace(body), "\n")
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestHandleHabitats(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, http.MethodGet, "/v1/habitats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Habitats []population.Habitat `json:"habitats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, population.ReferenceHabitats(), resp.Habitats)
}

func TestHandlePopulation(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, http.MethodGet, "/v1/population", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp PopulationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 10000, resp.Size)
	assert.Equal(t, population.ReferenceSeed, resp.Seed)
	assert.InDelta(t, 118.5, resp.TrueMean, 1.5)
	require.Len(t, resp.Habitats, 4)
	assert.Equal(t, "Caves", resp.Habitats[3].Name)
	assert.InDelta(t, 350, resp.Habitats[3].RealisedMean, 10)
	assert.Len(t, resp.Histogram.Dividers, 21)
	assert.Len(t, resp.Histogram.Population, 20)
	assert.Empty(t, resp.Histogram.Sample)
}

func TestHandlePopulationCSV(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, http.MethodGet, "/v1/population?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	lines := csvLines(w.Body.String())
	assert.Equal(t, "id,habitat,weight,catch_probability", lines[0])
	assert.Len(t, lines, 10001)
}

func TestHandleDrawSimple(t *testing.T) {
	router := newTestRouter(t)
	resp := drawOK(t, router, `{"total_size": 100}`)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "simple", resp.Summary.Strategy)
	assert.Equal(t, 100, resp.Summary.SampleSize)
	assert.Len(t, resp.Rows, 100)
	assert.Less(t, math.Abs(resp.Summary.Error), 30.0)
	assert.Len(t, resp.Histogram.Sample, 20)
	assert.Equal(t, "/v1/samples/"+resp.ID+"/csv", resp.CSVURL)

	w := do(router, http.MethodGet, resp.CSVURL, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), resp.ID)
	assert.Len(t, csvLines(w.Body.String()), 101)
}

func TestHandleDrawStratified(t *testing.T) {
	router := newTestRouter(t)
	resp := drawOK(t, router, `{"stratified": true, "bias": true, "quotas": {"Beach": 5, "Caves": 10000}}`)

	assert.Equal(t, "stratified", resp.Summary.Strategy)
	assert.Equal(t, 505, resp.Summary.SampleSize)

	counts := make(map[string]int)
	for _, hc := range resp.Summary.HabitatCounts {
		counts[hc.Habitat] = hc.Count
	}
	assert.Equal(t, map[string]int{"Beach": 5, "Jungle": 0, "Wetlands": 0, "Caves": 500}, counts)
}

func TestHandleDrawErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"zero size", `{"total_size": 0}`, http.StatusUnprocessableEntity},
		{"too large", `{"total_size": 10001}`, http.StatusUnprocessableEntity},
		{"biased whole population", `{"total_size": 10000, "bias": true}`, http.StatusOK},
		{"all quotas zero", `{"stratified": true, "quotas": {"Beach": 0}}`, http.StatusUnprocessableEntity},
		{"no quotas", `{"stratified": true}`, http.StatusUnprocessableEntity},
		{"unknown habitat", `{"stratified": true, "quotas": {"Desert": 3}}`, http.StatusUnprocessableEntity},
		{"negative size", `{"total_size": -1}`, http.StatusBadRequest},
		{"malformed", `{"total_size":`, http.StatusBadRequest},
	}

	router := newTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/v1/samples", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestFailedDrawKeepsLatestSample(t *testing.T) {
	router := newTestRouter(t)
	first := drawOK(t, router, `{"total_size": 10}`)

	w := do(router, http.MethodPost, "/v1/samples", `{"total_size": 0}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(router, http.MethodGet, first.CSVURL, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewDrawReplacesSample(t *testing.T) {
	router := newTestRouter(t)
	first := drawOK(t, router, `{"total_size": 10}`)
	second := drawOK(t, router, `{"total_size": 10}`)
	require.NotEqual(t, first.ID, second.ID)

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, first.CSVURL, "").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, second.CSVURL, "").Code)
}

func TestSampleCSVUnknownID(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, http.MethodGet, "/v1/samples/nope/csv", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvalidPopulation(t *testing.T) {
	cache := population.NewCache([]population.Habitat{{Name: "Empty", StdDev: 1}}, 1)
	router := New(cache, population.NewSource(1), Options{}).Handler()

	w := do(router, http.MethodGet, "/v1/population", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = do(router, http.MethodPost, "/v1/samples", `{"total_size": 1}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	drawOK(t, router, `{"total_size": 5}`)

	w := do(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `lizsample_draws_total{outcome="ok",strategy="simple"}`)
	assert.Contains(t, w.Body.String(), "lizsample_draw_duration_seconds")
}

func TestMetricsDisabled(t *testing.T) {
	cache := population.NewCache(population.ReferenceHabitats(), population.ReferenceSeed)
	router := New(cache, population.NewSource(1), Options{}).Handler()
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/metrics", "").Code)
}

