// Package population builds the synthetic lizard population that every
// sampling exercise is measured against.
package population

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrInvalidConfiguration reports a habitat table that cannot produce a
// population. It is fatal at startup.
var ErrInvalidConfiguration = errors.New("invalid habitat configuration")

// Habitat describes one stratum of the population.
type Habitat struct {
	Name             string  `json:"name" yaml:"name"`
	DisplayName      string  `json:"display_name" yaml:"display_name"`
	IDPrefix         string  `json:"id_prefix" yaml:"id_prefix"`
	Mean             float64 `json:"mean" yaml:"mean"`                           // Mean weight in grams
	StdDev           float64 `json:"std_dev" yaml:"std_dev"`                     // Must be > 0
	Size             int     `json:"size" yaml:"size"`                           // Individuals in this stratum
	CatchProbability float64 `json:"catch_probability" yaml:"catch_probability"` // Selection weight under field conditions
}

// Label returns the display name, falling back to Name.
func (h Habitat) Label() string {
	if h.DisplayName != "" {
		return h.DisplayName
	}
	return h.Name
}

// Prefix returns the id prefix used for individuals of this habitat.
// It defaults to the first letter of the name.
func (h Habitat) Prefix() string {
	if h.IDPrefix != "" {
		return h.IDPrefix
	}
	if h.Name == "" {
		return ""
	}
	return h.Name[:1]
}

// LogValue implements slog.LogValuer.
func (h Habitat) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", h.Name),
		slog.Float64("mean", h.Mean),
		slog.Float64("std_dev", h.StdDev),
		slog.Int("size", h.Size),
		slog.Float64("catch_probability", h.CatchProbability),
	)
}

// CatchPolicy assigns a catch probability to each habitat by name.
// Habitats without an override get Default.
type CatchPolicy struct {
	Default   float64            `yaml:"default" validate:"gte=0,lte=1"`
	Overrides map[string]float64 `yaml:"overrides" validate:"dive,keys,required,endkeys,gte=0,lte=1"`
}

// ReferenceCatchPolicy is the catchability used by the classroom setup:
// cave lizards are rarely caught, wetland lizards sometimes, the rest always.
func ReferenceCatchPolicy() CatchPolicy {
	return CatchPolicy{
		Default: 1.0,
		Overrides: map[string]float64{
			"Caves":    0.05,
			"Wetlands": 0.6,
		},
	}
}

// Probability returns the catch probability for the named habitat.
func (p CatchPolicy) Probability(name string) float64 {
	if v, ok := p.Overrides[name]; ok {
		return v
	}
	return p.Default
}

// Apply returns a copy of habitats with CatchProbability set from the policy.
func (p CatchPolicy) Apply(habitats []Habitat) []Habitat {
	out := make([]Habitat, len(habitats))
	for i, h := range habitats {
		h.CatchProbability = p.Probability(h.Name)
		out[i] = h
	}
	return out
}

// ReferenceHabitats returns the four-habitat island used in class, with the
// reference catch policy applied.
func ReferenceHabitats() []Habitat {
	return ReferenceCatchPolicy().Apply([]Habitat{
		{Name: "Beach", DisplayName: "Beach (Sandy)", Mean: 50, StdDev: 5, Size: 4000},
		{Name: "Jungle", DisplayName: "Jungle (Dense)", Mean: 120, StdDev: 15, Size: 4000},
		{Name: "Wetlands", DisplayName: "Wetlands (Swamp)", Mean: 220, StdDev: 30, Size: 1500},
		{Name: "Caves", DisplayName: "Caves (Deep)", Mean: 350, StdDev: 60, Size: 500},
	})
}

// ReferenceSeed is the seed the classroom population is generated from.
const ReferenceSeed int64 = 101

// Validate checks a habitat table. All failures wrap ErrInvalidConfiguration.
func Validate(habitats []Habitat) error {
	if len(habitats) == 0 {
		return fmt.Errorf("%w: no habitats defined", ErrInvalidConfiguration)
	}

	names := make(map[string]bool, len(habitats))
	prefixes := make(map[string]string, len(habitats))
	for i, h := range habitats {
		if strings.TrimSpace(h.Name) == "" {
			return fmt.Errorf("%w: habitat %d has no name", ErrInvalidConfiguration, i)
		}
		if names[h.Name] {
			return fmt.Errorf("%w: duplicate habitat %q", ErrInvalidConfiguration, h.Name)
		}
		names[h.Name] = true

		if other, ok := prefixes[h.Prefix()]; ok {
			return fmt.Errorf("%w: habitats %q and %q share id prefix %q", ErrInvalidConfiguration, other, h.Name, h.Prefix())
		}
		prefixes[h.Prefix()] = h.Name

		if !(h.StdDev > 0) {
			return fmt.Errorf("%w: habitat %q std_dev must be > 0, got %v", ErrInvalidConfiguration, h.Name, h.StdDev)
		}
		if h.Size < 0 {
			return fmt.Errorf("%w: habitat %q size must be >= 0, got %d", ErrInvalidConfiguration, h.Name, h.Size)
		}
		if h.CatchProbability < 0 || h.CatchProbability > 1 {
			return fmt.Errorf("%w: habitat %q catch_probability must be in [0,1], got %v", ErrInvalidConfiguration, h.Name, h.CatchProbability)
		}
	}
	return nil
}
