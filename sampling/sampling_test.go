package sampling

import (
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/osbornjw-stats/lizsample/population"
)

func referencePopulation(t *testing.T) *population.Population {
	t.Helper()
	pop, err := population.Generate(population.ReferenceHabitats(), population.ReferenceSeed)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return pop
}

// twoHabitats has equal-sized habitats that differ only in catchability.
func twoHabitats(t *testing.T) *population.Population {
	t.Helper()
	pop, err := population.Generate([]population.Habitat{
		{Name: "Open", Mean: 100, StdDev: 10, Size: 500, CatchProbability: 1.0},
		{Name: "Hidden", Mean: 300, StdDev: 10, Size: 500, CatchProbability: 0.05},
	}, 7)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return pop
}

func TestReferenceScenario(t *testing.T) {
	pop := referencePopulation(t)

	sample, err := Draw(pop, SimpleRandom{TotalSize: 100}, population.NewSource(1))
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if sample.Len() != 100 {
		t.Fatalf("sample has %d rows, want 100", sample.Len())
	}

	sum := Summarize(pop, sample)
	if sum.SampleSize != 100 {
		t.Errorf("SampleSize = %d, want 100", sum.SampleSize)
	}
	if sum.Error != sum.SampleMean-sum.TrueMean {
		t.Errorf("Error = %v, want SampleMean-TrueMean = %v", sum.Error, sum.SampleMean-sum.TrueMean)
	}
	// Population sd is about 75 g, so the standard error at n=100 is ~7.5 g.
	if math.Abs(sum.Error) > 30 {
		t.Errorf("sample mean %v too far from true mean %v", sum.SampleMean, sum.TrueMean)
	}
	if sum.Strategy != "simple" {
		t.Errorf("Strategy = %q, want simple", sum.Strategy)
	}
}

func TestSimpleRandomNoDuplicates(t *testing.T) {
	pop := referencePopulation(t)

	for _, bias := range []bool{false, true} {
		sample, err := Draw(pop, SimpleRandom{TotalSize: 2000, Bias: bias}, population.NewSource(3))
		if err != nil {
			t.Fatalf("Draw(bias=%t) failed: %v", bias, err)
		}
		seen := make(map[string]bool, sample.Len())
		for _, r := range sample.Rows {
			if seen[r.ID] {
				t.Fatalf("bias=%t: duplicate id %s", bias, r.ID)
			}
			seen[r.ID] = true
		}
	}
}

func TestSimpleRandomWholePopulation(t *testing.T) {
	pop := twoHabitats(t)

	sample, err := Draw(pop, SimpleRandom{TotalSize: pop.Len(), Bias: true}, population.NewSource(5))
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if sample.Len() != pop.Len() {
		t.Fatalf("got %d rows, want %d", sample.Len(), pop.Len())
	}
}

func TestDrawDeterministicForSource(t *testing.T) {
	pop := referencePopulation(t)

	strategies := []Strategy{
		SimpleRandom{TotalSize: 50},
		SimpleRandom{TotalSize: 50, Bias: true},
		Stratified{Quotas: map[string]int{"Beach": 5, "Caves": 5}},
	}
	for _, st := range strategies {
		a, err := Draw(pop, st, population.NewSource(11))
		if err != nil {
			t.Fatalf("%v: %v", st, err)
		}
		b, _ := Draw(pop, st, population.NewSource(11))
		if !reflect.DeepEqual(a.Rows, b.Rows) {
			t.Errorf("%v: same source produced different samples", st)
		}
	}
}

func TestSimpleRandomSizeErrors(t *testing.T) {
	pop := referencePopulation(t)

	tests := []struct {
		name string
		size int
		bias bool
	}{
		{"zero", 0, false},
		{"negative", -3, false},
		{"too large", pop.Len() + 1, false},
		{"too large biased", pop.Len() + 1, true},
		{"zero biased", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Draw(pop, SimpleRandom{TotalSize: tt.size, Bias: tt.bias}, population.NewSource(1))
			if !errors.Is(err, ErrInvalidSampleSize) {
				t.Errorf("Draw() = %v, want ErrInvalidSampleSize", err)
			}
		})
	}
}

func TestBiasedDrawNeedsCatchableIndividuals(t *testing.T) {
	pop, err := population.Generate([]population.Habitat{
		{Name: "Open", Mean: 10, StdDev: 1, Size: 10, CatchProbability: 1},
		{Name: "Never", Mean: 10, StdDev: 1, Size: 10, CatchProbability: 0},
	}, 1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := Draw(pop, SimpleRandom{TotalSize: 11, Bias: true}, population.NewSource(1)); !errors.Is(err, ErrInvalidSampleSize) {
		t.Errorf("Draw() = %v, want ErrInvalidSampleSize", err)
	}

	sample, err := Draw(pop, SimpleRandom{TotalSize: 10, Bias: true}, population.NewSource(1))
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	for _, r := range sample.Rows {
		if r.Habitat != "Open" {
			t.Fatalf("drew %s from a habitat with zero catch probability", r.ID)
		}
	}
}

func TestWeightedUnderRepresentation(t *testing.T) {
	pop := twoHabitats(t)
	src := population.NewSource(2024)

	biased, err := RunTrials(pop, SimpleRandom{TotalSize: 50, Bias: true}, 1000, src)
	if err != nil {
		t.Fatalf("RunTrials failed: %v", err)
	}
	unbiased, err := RunTrials(pop, SimpleRandom{TotalSize: 50}, 1000, src)
	if err != nil {
		t.Fatalf("RunTrials failed: %v", err)
	}

	hb, _ := biased.Share("Hidden")
	hu, _ := unbiased.Share("Hidden")

	if hb.PopulationShare != 0.5 {
		t.Fatalf("PopulationShare = %v, want 0.5", hb.PopulationShare)
	}
	// Expected biased share is about 0.05/1.05.
	if hb.MeanSampleShare > 0.15 {
		t.Errorf("biased Hidden share = %v, want well below 0.5", hb.MeanSampleShare)
	}
	if math.Abs(hu.MeanSampleShare-0.5) > 0.02 {
		t.Errorf("unbiased Hidden share = %v, want ~0.5", hu.MeanSampleShare)
	}

	// Hidden lizards are heavier, so missing them drags the estimate down.
	if biased.MeanError > -50 {
		t.Errorf("biased MeanError = %v, want strongly negative", biased.MeanError)
	}
	if math.Abs(unbiased.MeanError) > 5 {
		t.Errorf("unbiased MeanError = %v, want ~0", unbiased.MeanError)
	}
}

func TestStratifiedQuotas(t *testing.T) {
	pop := referencePopulation(t)

	sample, err := Draw(pop, Stratified{Quotas: map[string]int{
		"Beach": 25, "Jungle": 10, "Wetlands": 0, "Caves": 3,
	}}, population.NewSource(9))
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	sum := Summarize(pop, sample)
	want := map[string]int{"Beach": 25, "Jungle": 10, "Wetlands": 0, "Caves": 3}
	for name, n := range want {
		if got := sum.Count(name); got != n {
			t.Errorf("%s count = %d, want %d", name, got, n)
		}
	}
	if sum.SampleSize != 38 {
		t.Errorf("SampleSize = %d, want 38", sum.SampleSize)
	}
}

func TestStratifiedCapsAtStratumSize(t *testing.T) {
	pop := referencePopulation(t)

	sample, err := Draw(pop, Stratified{Quotas: map[string]int{"Caves": 10000}}, population.NewSource(4))
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if sample.Len() != 500 {
		t.Fatalf("got %d rows, want the whole Caves stratum (500)", sample.Len())
	}
	seen := make(map[string]bool)
	for _, r := range sample.Rows {
		if r.Habitat != "Caves" {
			t.Fatalf("row %s is not from Caves", r.ID)
		}
		if seen[r.ID] {
			t.Fatalf("duplicate id %s", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestStratifiedIgnoresBias(t *testing.T) {
	pop := referencePopulation(t)
	quotas := map[string]int{"Beach": 20, "Caves": 40}

	withBias := Options{Stratified: true, Bias: true, Quotas: quotas}.Strategy()
	withoutBias := Options{Stratified: true, Quotas: quotas}.Strategy()
	if !reflect.DeepEqual(withBias, withoutBias) {
		t.Fatalf("bias toggle leaked into stratified strategy: %#v vs %#v", withBias, withoutBias)
	}

	a, err := Draw(pop, withBias, population.NewSource(21))
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	b, _ := Draw(pop, withoutBias, population.NewSource(21))
	if !reflect.DeepEqual(a.Rows, b.Rows) {
		t.Error("bias toggle changed a stratified draw")
	}

	// Caves catch probability is 0.05 but the quota is still met exactly.
	if got := Summarize(pop, a).Count("Caves"); got != 40 {
		t.Errorf("Caves count = %d, want 40", got)
	}
}

func TestStratifiedErrors(t *testing.T) {
	pop := referencePopulation(t)

	tests := []struct {
		name   string
		quotas map[string]int
		want   error
	}{
		{"nil map", nil, ErrEmptySampleRequest},
		{"empty map", map[string]int{}, ErrEmptySampleRequest},
		{"all zero", map[string]int{"Beach": 0, "Jungle": 0, "Wetlands": 0, "Caves": 0}, ErrEmptySampleRequest},
		{"negative", map[string]int{"Beach": -1, "Jungle": 5}, ErrInvalidSampleSize},
		{"unknown habitat", map[string]int{"Tundra": 5}, ErrUnknownHabitat},
		{"unknown habitat with zero quota", map[string]int{"Tundra": 0}, ErrEmptySampleRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Draw(pop, Stratified{Quotas: tt.quotas}, population.NewSource(1))
			if !errors.Is(err, tt.want) {
				t.Errorf("Draw() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStratifiedEmptyStratum(t *testing.T) {
	pop, err := population.Generate([]population.Habitat{
		{Name: "Beach", Mean: 50, StdDev: 5, Size: 10, CatchProbability: 1},
		{Name: "Caves", Mean: 350, StdDev: 60, Size: 0, CatchProbability: 0.05},
	}, 1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := Draw(pop, Stratified{Quotas: map[string]int{"Caves": 5}}, population.NewSource(1)); !errors.Is(err, ErrEmptySampleRequest) {
		t.Errorf("Draw() = %v, want ErrEmptySampleRequest", err)
	}
}

func TestDrawUnsupportedStrategy(t *testing.T) {
	pop := referencePopulation(t)
	if _, err := Draw(pop, nil, nil); err == nil {
		t.Error("expected error for nil strategy")
	}
}

func TestSummarizeWholePopulation(t *testing.T) {
	pop := referencePopulation(t)

	sum := Summarize(pop, Sample{Rows: pop.Individuals()})
	if sum.SampleMean != sum.TrueMean {
		t.Errorf("SampleMean = %v, want exactly TrueMean %v", sum.SampleMean, sum.TrueMean)
	}
	if sum.Error != 0 {
		t.Errorf("Error = %v, want 0", sum.Error)
	}
	if sum.SampleSize != pop.Len() {
		t.Errorf("SampleSize = %d, want %d", sum.SampleSize, pop.Len())
	}
	for _, hc := range sum.HabitatCounts {
		if hc.SampleShare != hc.PopulationShare {
			t.Errorf("%s share %v, want %v", hc.Habitat, hc.SampleShare, hc.PopulationShare)
		}
	}
}

func TestSummarizeHabitatOrder(t *testing.T) {
	pop := referencePopulation(t)

	// Only Caves sampled; every habitat still listed in configuration order.
	sample, _ := Draw(pop, Stratified{Quotas: map[string]int{"Caves": 2}}, population.NewSource(1))
	sum := Summarize(pop, sample)

	want := []HabitatCount{
		{Habitat: "Beach", Count: 0, SampleShare: 0, PopulationShare: 0.4},
		{Habitat: "Jungle", Count: 0, SampleShare: 0, PopulationShare: 0.4},
		{Habitat: "Wetlands", Count: 0, SampleShare: 0, PopulationShare: 0.15},
		{Habitat: "Caves", Count: 2, SampleShare: 1, PopulationShare: 0.05},
	}
	if !reflect.DeepEqual(sum.HabitatCounts, want) {
		t.Errorf("HabitatCounts = %+v, want %+v", sum.HabitatCounts, want)
	}
}

func TestSummarizeSingleRow(t *testing.T) {
	pop := referencePopulation(t)

	sum := Summarize(pop, Sample{Rows: []population.Individual{pop.At(0)}})
	if sum.SampleStdDev != 0 || sum.StandardError != 0 {
		t.Errorf("single row spread = %v/%v, want 0/0", sum.SampleStdDev, sum.StandardError)
	}
	if sum.SampleMean != pop.At(0).Weight {
		t.Errorf("SampleMean = %v, want %v", sum.SampleMean, pop.At(0).Weight)
	}
}

func TestOptionsStrategy(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want Strategy
	}{
		{"simple", Options{TotalSize: 10}, SimpleRandom{TotalSize: 10}},
		{"simple biased", Options{TotalSize: 10, Bias: true}, SimpleRandom{TotalSize: 10, Bias: true}},
		{"stratified", Options{Stratified: true, TotalSize: 99, Quotas: map[string]int{"Beach": 1}}, Stratified{Quotas: map[string]int{"Beach": 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Strategy(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Strategy() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseQuotas(t *testing.T) {
	got, err := ParseQuotas("Beach=25, Jungle=10,Caves=0")
	if err != nil {
		t.Fatalf("ParseQuotas failed: %v", err)
	}
	want := map[string]int{"Beach": 25, "Jungle": 10, "Caves": 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseQuotas = %v, want %v", got, want)
	}

	if got, err := ParseQuotas(""); err != nil || len(got) != 0 {
		t.Errorf("ParseQuotas(\"\") = %v, %v", got, err)
	}
	for _, bad := range []string{"Beach", "=3", "Beach=x"} {
		if _, err := ParseQuotas(bad); err == nil {
			t.Errorf("ParseQuotas(%q) succeeded, want error", bad)
		}
	}
}

func TestHistogram(t *testing.T) {
	pop := referencePopulation(t)
	weights := pop.Weights()

	dividers := Bins(weights, 40)
	if len(dividers) != 41 {
		t.Fatalf("got %d dividers, want 41", len(dividers))
	}

	h := NewHistogram(weights, dividers)
	var total float64
	var area float64
	density := h.Density()
	for i, c := range h.Counts {
		total += c
		area += density[i] * (h.Dividers[i+1] - h.Dividers[i])
	}
	if int(total) != pop.Len() {
		t.Errorf("histogram holds %v values, want %d", total, pop.Len())
	}
	if math.Abs(area-1) > 1e-9 {
		t.Errorf("density integrates to %v, want 1", area)
	}

	// Values outside the population range are clamped, not dropped.
	out := NewHistogram([]float64{-1000, 1e6}, dividers)
	if out.Counts[0] != 1 || out.Counts[len(out.Counts)-1] != 1 {
		t.Errorf("out-of-range values not clamped: %v", out.Counts)
	}
}

func TestSamplerConcurrentDraws(t *testing.T) {
	pop := referencePopulation(t)
	s := NewSampler(pop, population.NewSource(8))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, sum, err := s.Draw(SimpleRandom{TotalSize: 30, Bias: true})
			if err != nil {
				t.Errorf("Draw failed: %v", err)
				return
			}
			if sum.SampleSize != 30 {
				t.Errorf("SampleSize = %d, want 30", sum.SampleSize)
			}
		}()
	}
	wg.Wait()

	if _, _, err := s.Draw(Stratified{}); !errors.Is(err, ErrEmptySampleRequest) {
		t.Errorf("Draw() = %v, want ErrEmptySampleRequest", err)
	}
}

func TestRunTrialsRejectsZero(t *testing.T) {
	pop := referencePopulation(t)
	if _, err := RunTrials(pop, SimpleRandom{TotalSize: 5}, 0, nil); err == nil {
		t.Error("expected error for zero trials")
	}
	if _, err := RunTrials(pop, SimpleRandom{TotalSize: 0}, 3, nil); !errors.Is(err, ErrInvalidSampleSize) {
		t.Errorf("RunTrials() = %v, want ErrInvalidSampleSize", err)
	}
}
