package population

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Individual is one lizard. The csv tags define the export format.
type Individual struct {
	ID               string  `csv:"id" json:"id"`
	Habitat          string  `csv:"habitat" json:"habitat"`
	Weight           float64 `csv:"weight" json:"weight"`
	CatchProbability float64 `csv:"catch_probability" json:"catch_probability"`
}

// Stratum locates one habitat's individuals as the half-open row range
// [Start, End) of the population.
type Stratum struct {
	Habitat Habitat
	Start   int
	End     int
}

// Len returns the number of individuals in the stratum.
func (s Stratum) Len() int {
	return s.End - s.Start
}

// Population is the immutable ground truth. Rows are grouped by habitat in
// configuration order.
type Population struct {
	seed     int64
	habitats []Habitat
	rows     []Individual
	weights  []float64
	strata   []Stratum
	index    map[string]int
	trueMean float64
}

// NewSource returns the random source used for a given seed. Population
// generation and seeded samplers share it so runs are reproducible.
func NewSource(seed int64) *rand.PCG {
	return rand.NewPCG(uint64(seed), uint64(seed))
}

// Generate draws the population. The source is seeded once and consumed by
// the habitats in slice order, so reordering habitats changes every draw.
func Generate(habitats []Habitat, seed int64) (*Population, error) {
	if err := Validate(habitats); err != nil {
		return nil, err
	}

	total := 0
	for _, h := range habitats {
		total += h.Size
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: population is empty", ErrInvalidConfiguration)
	}

	src := NewSource(seed)
	p := &Population{
		seed:     seed,
		habitats: append([]Habitat(nil), habitats...),
		rows:     make([]Individual, 0, total),
		weights:  make([]float64, 0, total),
		strata:   make([]Stratum, 0, len(habitats)),
		index:    make(map[string]int, len(habitats)),
	}

	for _, h := range habitats {
		dist := distuv.Normal{Mu: h.Mean, Sigma: h.StdDev, Src: src}
		prefix := h.Prefix() + "_"
		start := len(p.rows)
		for i := 0; i < h.Size; i++ {
			w := dist.Rand()
			p.rows = append(p.rows, Individual{
				ID:               prefix + strconv.Itoa(i),
				Habitat:          h.Name,
				Weight:           w,
				CatchProbability: h.CatchProbability,
			})
			p.weights = append(p.weights, w)
		}
		p.index[h.Name] = len(p.strata)
		p.strata = append(p.strata, Stratum{Habitat: h, Start: start, End: len(p.rows)})
	}

	p.trueMean = stat.Mean(p.weights, nil)
	return p, nil
}

// Seed returns the seed the population was generated from.
func (p *Population) Seed() int64 {
	return p.seed
}

// Len returns the number of individuals.
func (p *Population) Len() int {
	return len(p.rows)
}

// At returns the i-th individual.
func (p *Population) At(i int) Individual {
	return p.rows[i]
}

// Individuals returns a copy of all rows.
func (p *Population) Individuals() []Individual {
	return append([]Individual(nil), p.rows...)
}

// Weights returns a copy of every individual's weight, in row order.
func (p *Population) Weights() []float64 {
	return append([]float64(nil), p.weights...)
}

// CatchWeights returns every individual's catch probability, in row order.
func (p *Population) CatchWeights() []float64 {
	w := make([]float64, len(p.rows))
	for i, r := range p.rows {
		w[i] = r.CatchProbability
	}
	return w
}

// Habitats returns the habitat table in configuration order.
func (p *Population) Habitats() []Habitat {
	return append([]Habitat(nil), p.habitats...)
}

// Strata returns the row range of every habitat, in configuration order.
func (p *Population) Strata() []Stratum {
	return append([]Stratum(nil), p.strata...)
}

// Stratum returns the row range for the named habitat.
func (p *Population) Stratum(name string) (Stratum, bool) {
	i, ok := p.index[name]
	if !ok {
		return Stratum{}, false
	}
	return p.strata[i], true
}

// TrueMean returns the mean weight over the whole population.
func (p *Population) TrueMean() float64 {
	return p.trueMean
}

// HabitatMean returns the mean weight of one habitat's individuals.
func (p *Population) HabitatMean(name string) (float64, bool) {
	s, ok := p.Stratum(name)
	if !ok || s.Len() == 0 {
		return 0, false
	}
	return stat.Mean(p.weights[s.Start:s.End], nil), true
}
