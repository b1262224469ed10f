package sampling

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/osbornjw-stats/lizsample/population"
)

var (
	// ErrInvalidSampleSize is returned when a simple random request asks for
	// zero, negative, or more individuals than can be drawn.
	ErrInvalidSampleSize = errors.New("invalid sample size")

	// ErrEmptySampleRequest is returned when a stratified request has no
	// positive quota.
	ErrEmptySampleRequest = errors.New("empty sample request")

	// ErrUnknownHabitat is returned when a quota names a habitat that is not
	// part of the population.
	ErrUnknownHabitat = errors.New("unknown habitat")
)

// Sample is the outcome of one draw. Rows keep the order in which
// individuals were selected.
type Sample struct {
	Strategy Strategy
	Rows     []population.Individual
}

// Len returns the number of individuals in the sample.
func (s Sample) Len() int {
	return len(s.Rows)
}

// Weights returns the weight of every sampled individual.
func (s Sample) Weights() []float64 {
	w := make([]float64, len(s.Rows))
	for i, r := range s.Rows {
		w[i] = r.Weight
	}
	return w
}

// Draw selects a sample from pop. src supplies all randomness; a nil src
// falls back to the global generator.
func Draw(pop *population.Population, strategy Strategy, src rand.Source) (Sample, error) {
	var (
		idx []int
		err error
	)
	switch s := strategy.(type) {
	case SimpleRandom:
		idx, err = drawSimple(pop, s, src)
	case Stratified:
		idx, err = drawStratified(pop, s, src)
	default:
		return Sample{}, fmt.Errorf("unsupported strategy %T", strategy)
	}
	if err != nil {
		return Sample{}, err
	}

	rows := make([]population.Individual, len(idx))
	for i, j := range idx {
		rows[i] = pop.At(j)
	}
	return Sample{Strategy: strategy, Rows: rows}, nil
}

func drawSimple(pop *population.Population, s SimpleRandom, src rand.Source) ([]int, error) {
	n := pop.Len()
	if s.TotalSize <= 0 || s.TotalSize > n {
		return nil, fmt.Errorf("%w: %d is outside (0, %d]", ErrInvalidSampleSize, s.TotalSize, n)
	}

	if !s.Bias {
		idx := make([]int, s.TotalSize)
		sampleuv.WithoutReplacement(idx, n, src)
		return idx, nil
	}

	weights := pop.CatchWeights()
	catchable := 0
	for _, w := range weights {
		if w > 0 {
			catchable++
		}
	}
	if s.TotalSize > catchable {
		return nil, fmt.Errorf("%w: %d requested but only %d individuals can be caught", ErrInvalidSampleSize, s.TotalSize, catchable)
	}

	// Sequential proportional draws: each Take picks among the remaining
	// individuals with probability proportional to catch probability.
	ws := sampleuv.NewWeighted(weights, src)
	taken := make([]bool, n)
	idx := make([]int, 0, s.TotalSize)
	for len(idx) < s.TotalSize {
		i, ok := ws.Take()
		if !ok {
			return nil, fmt.Errorf("%w: ran out of catchable individuals after %d", ErrInvalidSampleSize, len(idx))
		}
		if taken[i] {
			continue
		}
		taken[i] = true
		idx = append(idx, i)
	}
	return idx, nil
}

func drawStratified(pop *population.Population, s Stratified, src rand.Source) ([]int, error) {
	names := make([]string, 0, len(s.Quotas))
	for name := range s.Quotas {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if q := s.Quotas[name]; q < 0 {
			return nil, fmt.Errorf("%w: quota for %s is %d", ErrInvalidSampleSize, name, q)
		}
	}
	if s.Requested() == 0 {
		return nil, ErrEmptySampleRequest
	}
	for _, name := range names {
		if _, ok := pop.Stratum(name); !ok && s.Quotas[name] > 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownHabitat, name)
		}
	}

	var idx []int
	for _, st := range pop.Strata() {
		take := min(s.Quotas[st.Habitat.Name], st.Len())
		if take <= 0 {
			continue
		}
		local := make([]int, take)
		sampleuv.WithoutReplacement(local, st.Len(), src)
		for _, j := range local {
			idx = append(idx, st.Start+j)
		}
	}
	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: requested habitats have no individuals", ErrEmptySampleRequest)
	}
	return idx, nil
}
