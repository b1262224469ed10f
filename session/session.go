// Package session keeps the state of one interactive sampling session: the
// population, its histogram and the most recent sample.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/osbornjw-stats/lizsample/export"
	"github.com/osbornjw-stats/lizsample/population"
	"github.com/osbornjw-stats/lizsample/sampling"
)

// ErrNoSample is returned when exporting before anything was drawn.
var ErrNoSample = errors.New("no sample drawn")

// Result is one successful draw.
type Result struct {
	ID        string
	Options   sampling.Options
	Sample    sampling.Sample
	Summary   sampling.Summary
	Histogram sampling.Histogram // Sample weights on the population bins
}

// Session is safe for concurrent use. A failed draw leaves the latest result
// in place.
type Session struct {
	sampler *sampling.Sampler
	popHist sampling.Histogram

	mu     sync.Mutex
	latest *Result
}

// New creates a session over sampler with the given number of histogram bins.
func New(sampler *sampling.Sampler, bins int) *Session {
	weights := sampler.Population().Weights()
	return &Session{
		sampler: sampler,
		popHist: sampling.NewHistogram(weights, sampling.Bins(weights, bins)),
	}
}

// Population returns the population being sampled.
func (s *Session) Population() *population.Population {
	return s.sampler.Population()
}

// PopulationHistogram returns the histogram of every weight in the population.
func (s *Session) PopulationHistogram() sampling.Histogram {
	return s.popHist
}

// Draw samples with opts and makes the result the latest one.
func (s *Session) Draw(opts sampling.Options) (Result, error) {
	sample, summary, err := s.sampler.Draw(opts.Strategy())
	if err != nil {
		return Result{}, err
	}

	r := Result{
		ID:        uuid.NewString(),
		Options:   opts,
		Sample:    sample,
		Summary:   summary,
		Histogram: sampling.NewHistogram(sample.Weights(), s.popHist.Dividers),
	}

	s.mu.Lock()
	s.latest = &r
	s.mu.Unlock()

	slog.Info("sample drawn", "id", r.ID, "summary", summary)
	return r, nil
}

// Latest returns the most recent result.
func (s *Session) Latest() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return Result{}, false
	}
	return *s.latest, true
}

// Lookup returns the latest result if it has the given id.
func (s *Session) Lookup(id string) (Result, bool) {
	r, ok := s.Latest()
	if !ok || r.ID != id {
		return Result{}, false
	}
	return r, true
}

// Export writes the latest sample and its summary through om and returns the
// sample file path.
func (s *Session) Export(om *export.OutputManager) (string, error) {
	r, ok := s.Latest()
	if !ok {
		return "", ErrNoSample
	}
	if om == nil {
		return "", fmt.Errorf("export: no output directory configured")
	}

	path, err := om.WriteSample(r.ID, r.Sample)
	if err != nil {
		return "", err
	}
	if err := om.WriteSummary(r.ID, r.Summary); err != nil {
		return "", err
	}
	slog.Info("sample exported", "id", r.ID, "path", path)
	return path, nil
}
