// Package sampling draws samples from a population and measures how well
// they estimate its true mean.
package sampling

import (
	"fmt"
	"sort"
	"strings"
)

// Strategy selects how a sample is drawn. It is implemented only by
// SimpleRandom and Stratified.
type Strategy interface {
	// Kind returns a short label for logs and metrics.
	Kind() string
	isStrategy()
}

// SimpleRandom draws TotalSize individuals from the whole population without
// replacement. With Bias set, selection is weighted by catch probability.
type SimpleRandom struct {
	TotalSize int
	Bias      bool
}

// Kind implements Strategy.
func (s SimpleRandom) Kind() string {
	if s.Bias {
		return "simple_biased"
	}
	return "simple"
}

func (SimpleRandom) isStrategy() {}

// String implements fmt.Stringer.
func (s SimpleRandom) String() string {
	return fmt.Sprintf("simple random n=%d bias=%t", s.TotalSize, s.Bias)
}

// Stratified draws Quotas[h] individuals uniformly from each habitat h,
// capped at the habitat's size. Catch probability is never applied.
type Stratified struct {
	Quotas map[string]int
}

// Kind implements Strategy.
func (Stratified) Kind() string { return "stratified" }

func (Stratified) isStrategy() {}

// Requested returns the sum of all quotas.
func (s Stratified) Requested() int {
	total := 0
	for _, q := range s.Quotas {
		if q > 0 {
			total += q
		}
	}
	return total
}

// String implements fmt.Stringer. Habitats are listed in name order.
func (s Stratified) String() string {
	names := make([]string, 0, len(s.Quotas))
	for name := range s.Quotas {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, s.Quotas[name])
	}
	return "stratified " + strings.Join(parts, ",")
}

// Options mirrors the controls a user sets before pressing "draw": two
// toggles, a total size and per-habitat quotas. Only the fields relevant to
// the selected mode are used.
type Options struct {
	Stratified bool           `json:"stratified" yaml:"stratified"`
	Bias       bool           `json:"bias" yaml:"bias"`
	TotalSize  int            `json:"total_size" yaml:"total_size"`
	Quotas     map[string]int `json:"quotas,omitempty" yaml:"quotas"`
}

// Strategy converts the options into a Strategy. When Stratified is set the
// bias toggle is dropped.
func (o Options) Strategy() Strategy {
	if o.Stratified {
		quotas := make(map[string]int, len(o.Quotas))
		for k, v := range o.Quotas {
			quotas[k] = v
		}
		return Stratified{Quotas: quotas}
	}
	return SimpleRandom{TotalSize: o.TotalSize, Bias: o.Bias}
}

// ParseQuotas parses "Beach=25,Jungle=10" into a quota map.
func ParseQuotas(s string) (map[string]int, error) {
	quotas := make(map[string]int)
	s = strings.TrimSpace(s)
	if s == "" {
		return quotas, nil
	}
	for _, part := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("parsing quota %q: want habitat=count", part)
		}
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(value), "%d", &n); err != nil {
			return nil, fmt.Errorf("parsing quota %q: %w", part, err)
		}
		quotas[strings.TrimSpace(name)] = n
	}
	return quotas, nil
}
