package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies a chart layer.
type OverlayID string

// Chart layers.
const (
	OverlayPopulation   OverlayID = "population"
	OverlaySample       OverlayID = "sample"
	OverlayMeans        OverlayID = "means"
	OverlayHabitatMeans OverlayID = "habitat_means"
)

// OverlayDescriptor defines a layer that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID // Unique identifier
	Name        string    // Display name
	Description string    // What this layer shows
	Key         int32     // Keyboard key to toggle (0 = no key)
	KeyLabel    string    // Key label for display
	Category    string    // Grouping
	Default     bool      // Enabled at start
}

// OverlayRegistry manages layer state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the default layers.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:          OverlayPopulation,
		Name:        "Population",
		Description: "Weight density of the whole population",
		Key:         rl.KeyP,
		KeyLabel:    "P",
		Category:    "histogram",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlaySample,
		Name:        "Sample",
		Description: "Weight density of the latest sample",
		Key:         rl.KeyH,
		KeyLabel:    "H",
		Category:    "histogram",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayMeans,
		Name:        "Means",
		Description: "True mean and sample mean markers",
		Key:         rl.KeyM,
		KeyLabel:    "M",
		Category:    "markers",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayHabitatMeans,
		Name:        "Habitat Means",
		Description: "Configured mean of every habitat",
		Key:         rl.KeyN,
		KeyLabel:    "N",
		Category:    "markers",
	})
}

// Register adds a layer to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches a layer on/off and returns the new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.enabled[id] = !r.enabled[id]
	return r.enabled[id]
}

// IsEnabled returns whether a layer is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// ByCategory returns layers filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeys toggles every layer whose key was pressed this frame.
func (r *OverlayRegistry) HandleKeys() {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			r.Toggle(desc.ID)
		}
	}
}
