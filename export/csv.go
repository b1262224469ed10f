// Package export writes samples and run summaries as CSV.
package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/osbornjw-stats/lizsample/population"
)

// WriteSamples writes rows with the header id,habitat,weight,catch_probability.
// Weights are written with the shortest representation that parses back to
// the same float64.
func WriteSamples(w io.Writer, rows []population.Individual) error {
	if rows == nil {
		rows = []population.Individual{}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}
	return nil
}

// ReadSamples parses the format produced by WriteSamples.
func ReadSamples(r io.Reader) ([]population.Individual, error) {
	var rows []population.Individual
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	return rows, nil
}

// SamplesCSV returns rows encoded as CSV.
func SamplesCSV(rows []population.Individual) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSamples(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
