package server

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/osbornjw-stats/lizsample/sampling"
)

var (
	drawsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lizsample",
		Name:      "draws_total",
		Help:      "Sample draw requests by strategy and outcome.",
	}, []string{"strategy", "outcome"})

	drawDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "lizsample",
		Name:      "draw_duration_seconds",
		Help:      "Time spent drawing and summarising a sample.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	estimateError = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lizsample",
		Name:      "estimate_abs_error_grams",
		Help:      "Absolute difference between sample mean and true mean.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 50, 100},
	}, []string{"strategy"})
)

// outcome maps a draw error to a metric label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, sampling.ErrInvalidSampleSize):
		return "invalid_size"
	case errors.Is(err, sampling.ErrEmptySampleRequest):
		return "empty_request"
	case errors.Is(err, sampling.ErrUnknownHabitat):
		return "unknown_habitat"
	default:
		return "error"
	}
}
