package sampling

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"

	"github.com/osbornjw-stats/lizsample/population"
)

// TrialResult is one repetition of a strategy.
type TrialResult struct {
	Trial      int     `csv:"trial" json:"trial"`
	SampleSize int     `csv:"sample_size" json:"sample_size"`
	SampleMean float64 `csv:"sample_mean" json:"sample_mean"`
	Error      float64 `csv:"error" json:"error"`
}

// HabitatShare compares a habitat's average share of the sample with its
// share of the population.
type HabitatShare struct {
	Habitat         string  `json:"habitat"`
	MeanSampleShare float64 `json:"mean_sample_share"`
	PopulationShare float64 `json:"population_share"`
}

// TrialReport aggregates repeated draws of the same strategy. A biased
// strategy shows up as a non-zero MeanError and habitat shares that drift
// from their population shares.
type TrialReport struct {
	Strategy    string         `json:"strategy"`
	Trials      []TrialResult  `json:"trials"`
	MeanError   float64        `json:"mean_error"`
	ErrorStdDev float64        `json:"error_std_dev"`
	RMSE        float64        `json:"rmse"`
	Shares      []HabitatShare `json:"shares"`
}

// Share returns the aggregated share for the named habitat.
func (r TrialReport) Share(habitat string) (HabitatShare, bool) {
	for _, s := range r.Shares {
		if s.Habitat == habitat {
			return s, true
		}
	}
	return HabitatShare{}, false
}

// RunTrials draws strategy n times from pop. The first failing draw aborts
// the run.
func RunTrials(pop *population.Population, strategy Strategy, n int, src rand.Source) (TrialReport, error) {
	if n <= 0 {
		return TrialReport{}, fmt.Errorf("trial count must be positive, got %d", n)
	}

	strata := pop.Strata()
	shareSums := make([]float64, len(strata))
	errs := make([]float64, n)
	report := TrialReport{
		Strategy: strategy.Kind(),
		Trials:   make([]TrialResult, 0, n),
	}

	for i := 0; i < n; i++ {
		sample, err := Draw(pop, strategy, src)
		if err != nil {
			return TrialReport{}, fmt.Errorf("trial %d: %w", i, err)
		}
		sum := Summarize(pop, sample)
		for j, hc := range sum.HabitatCounts {
			shareSums[j] += hc.SampleShare
		}
		errs[i] = sum.Error
		report.Trials = append(report.Trials, TrialResult{
			Trial:      i,
			SampleSize: sum.SampleSize,
			SampleMean: sum.SampleMean,
			Error:      sum.Error,
		})
	}

	report.MeanError = stat.Mean(errs, nil)
	if n > 1 {
		report.ErrorStdDev = stat.StdDev(errs, nil)
	}
	var sq float64
	for _, e := range errs {
		sq += e * e
	}
	report.RMSE = math.Sqrt(sq / float64(n))

	for j, st := range strata {
		report.Shares = append(report.Shares, HabitatShare{
			Habitat:         st.Habitat.Name,
			MeanSampleShare: shareSums[j] / float64(n),
			PopulationShare: float64(st.Len()) / float64(pop.Len()),
		})
	}
	return report, nil
}

// LogValue implements slog.LogValuer.
func (r TrialReport) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("strategy", r.Strategy),
		slog.Int("trials", len(r.Trials)),
		slog.Float64("mean_error", r.MeanError),
		slog.Float64("error_std_dev", r.ErrorStdDev),
		slog.Float64("rmse", r.RMSE),
	}
	for _, s := range r.Shares {
		attrs = append(attrs, slog.Float64("share_"+s.Habitat, s.MeanSampleShare))
	}
	return slog.GroupValue(attrs...)
}
