package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/osbornjw-stats/lizsample/config"
	"github.com/osbornjw-stats/lizsample/sampling"
)

// SummaryRecord is one row of summaries.csv.
type SummaryRecord struct {
	SampleID      string  `csv:"sample_id"`
	Strategy      string  `csv:"strategy"`
	TrueMean      float64 `csv:"true_mean"`
	SampleMean    float64 `csv:"sample_mean"`
	Error         float64 `csv:"error"`
	SampleSize    int     `csv:"sample_size"`
	SampleStdDev  float64 `csv:"sample_std_dev"`
	StandardError float64 `csv:"standard_error"`
	HabitatCounts string  `csv:"habitat_counts"` // Beach=12;Jungle=9;...
}

// NewSummaryRecord flattens a summary for CSV output.
func NewSummaryRecord(id string, s sampling.Summary) SummaryRecord {
	counts := make([]string, len(s.HabitatCounts))
	for i, hc := range s.HabitatCounts {
		counts[i] = hc.Habitat + "=" + strconv.Itoa(hc.Count)
	}
	return SummaryRecord{
		SampleID:      id,
		Strategy:      s.Strategy,
		TrueMean:      s.TrueMean,
		SampleMean:    s.SampleMean,
		Error:         s.Error,
		SampleSize:    s.SampleSize,
		SampleStdDev:  s.SampleStdDev,
		StandardError: s.StandardError,
		HabitatCounts: strings.Join(counts, ";"),
	}
}

// OutputManager writes run artifacts into one directory: a CSV per exported
// sample, a running summaries.csv and the config snapshot.
type OutputManager struct {
	dir         string
	summaryFile *os.File

	summaryHeaderWritten bool
}

// NewOutputManager creates the output directory and opens summaries.csv.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "summaries.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating summaries.csv: %w", err)
	}

	return &OutputManager{dir: dir, summaryFile: f}, nil
}

// WriteConfig saves the configuration the run used as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteSample writes the sample rows to sample_<id>.csv and returns the path.
func (om *OutputManager) WriteSample(id string, sample sampling.Sample) (string, error) {
	if om == nil {
		return "", nil
	}

	path := filepath.Join(om.dir, "sample_"+id+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := WriteSamples(f, sample.Rows); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	return path, nil
}

// WriteSummary appends a row to summaries.csv.
func (om *OutputManager) WriteSummary(id string, s sampling.Summary) error {
	if om == nil {
		return nil
	}

	records := []SummaryRecord{NewSummaryRecord(id, s)}

	if !om.summaryHeaderWritten {
		if err := gocsv.Marshal(records, om.summaryFile); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
		om.summaryHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.summaryFile); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}

	return nil
}

// WriteTrials writes every trial of a report to trials.csv.
func (om *OutputManager) WriteTrials(r sampling.TrialReport) (string, error) {
	if om == nil {
		return "", nil
	}

	path := filepath.Join(om.dir, "trials.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating trials.csv: %w", err)
	}
	defer f.Close()

	if err := gocsv.Marshal(r.Trials, f); err != nil {
		return "", fmt.Errorf("writing trials: %w", err)
	}
	return path, nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes summaries.csv.
func (om *OutputManager) Close() error {
	if om == nil || om.summaryFile == nil {
		return nil
	}
	return om.summaryFile.Close()
}
