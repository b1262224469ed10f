package sampling

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Histogram holds binned weights. Dividers has one more element than Counts;
// bin i covers [Dividers[i], Dividers[i+1]).
type Histogram struct {
	Dividers []float64 `json:"dividers"`
	Counts   []float64 `json:"counts"`
	Total    int       `json:"total"`
}

// Bins returns dividers for evenly spaced bins covering every value in ref.
// Values equal to the maximum fall in the last bin.
func Bins(ref []float64, bins int) []float64 {
	if bins < 1 {
		bins = 1
	}
	if len(ref) == 0 {
		return floats.Span(make([]float64, bins+1), 0, 1)
	}
	lo, hi := floats.Min(ref), floats.Max(ref)
	if hi == lo {
		hi = lo + 1
	}
	return floats.Span(make([]float64, bins+1), lo, math.Nextafter(hi, math.Inf(1)))
}

// NewHistogram bins values using dividers. Values outside the dividers are
// clamped into the first or last bin so samples can share population bins.
func NewHistogram(values, dividers []float64) Histogram {
	x := make([]float64, len(values))
	lo, hi := dividers[0], dividers[len(dividers)-1]
	for i, v := range values {
		switch {
		case v < lo:
			v = lo
		case v >= hi:
			v = math.Nextafter(hi, math.Inf(-1))
		}
		x[i] = v
	}
	sort.Float64s(x)

	return Histogram{
		Dividers: append([]float64(nil), dividers...),
		Counts:   stat.Histogram(nil, dividers, x, nil),
		Total:    len(values),
	}
}

// Density returns the counts scaled so the histogram integrates to one,
// which lets a small sample be drawn over the full population.
func (h Histogram) Density() []float64 {
	d := make([]float64, len(h.Counts))
	if h.Total == 0 {
		return d
	}
	for i, c := range h.Counts {
		width := h.Dividers[i+1] - h.Dividers[i]
		d[i] = c / (float64(h.Total) * width)
	}
	return d
}
