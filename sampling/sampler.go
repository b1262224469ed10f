package sampling

import (
	"math/rand/v2"
	"sync"

	"github.com/osbornjw-stats/lizsample/population"
)

// Sampler binds a population to a random source. It is safe for concurrent
// use; draws are serialised on the source.
type Sampler struct {
	pop *population.Population

	mu  sync.Mutex
	src rand.Source
}

// NewSampler creates a sampler over pop using src for all draws.
func NewSampler(pop *population.Population, src rand.Source) *Sampler {
	return &Sampler{pop: pop, src: src}
}

// Population returns the population the sampler draws from.
func (s *Sampler) Population() *population.Population {
	return s.pop
}

// Draw selects a sample and summarises it. On error no sample is returned.
func (s *Sampler) Draw(strategy Strategy) (Sample, Summary, error) {
	s.mu.Lock()
	sample, err := Draw(s.pop, strategy, s.src)
	s.mu.Unlock()
	if err != nil {
		return Sample{}, Summary{}, err
	}
	return sample, Summarize(s.pop, sample), nil
}

// Trials repeats strategy n times. See RunTrials.
func (s *Sampler) Trials(strategy Strategy, n int) (TrialReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RunTrials(s.pop, strategy, n, s.src)
}
