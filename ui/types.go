// Package ui provides the raylib viewer for the sampling simulator.
// Summary panels are described through field descriptors so that new
// statistics only need a getter, not new layout code.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// WidgetType specifies how a field should be rendered.
type WidgetType int

const (
	WidgetText        WidgetType = iota // Plain text with format string
	WidgetBar                           // Progress bar [0, 1]
	WidgetCenteredBar                   // Centered bar [-1, +1] or custom range
	WidgetSection                       // Section header
	WidgetSpacer                        // Vertical spacing
)

// FieldRange defines the value range for bar widgets.
type FieldRange struct {
	Min float32
	Max float32
}

// DefaultRange returns a [0, 1] range.
func DefaultRange() FieldRange {
	return FieldRange{Min: 0, Max: 1}
}

// FieldDescriptor defines how to display a single piece of data.
type FieldDescriptor struct {
	ID         string            // Unique identifier for the field
	Label      string            // Display label
	Widget     WidgetType        // How to render
	Format     string            // Printf format for text (e.g., "%.2f")
	Range      FieldRange        // Value range for bars
	Visible    func(any) bool    // Optional visibility check (nil = always visible)
	Getter     func(any) float32 // Value extractor (for numeric fields)
	TextGetter func(any) string  // Value extractor (for text fields)
}

// SectionDescriptor defines a group of fields with a header.
type SectionDescriptor struct {
	ID      string            // Unique identifier
	Title   string            // Section header text
	Fields  []FieldDescriptor // Fields in this section
	Visible func(any) bool    // Optional visibility check for entire section
}

// Theme holds UI styling constants.
type Theme struct {
	Background      rl.Color
	PanelBg         rl.Color
	PanelBorder     rl.Color
	SectionHeader   rl.Color
	LabelColor      rl.Color
	ValueColor      rl.Color
	ErrorColor      rl.Color
	BarBg           rl.Color
	BarFill         rl.Color
	BarFillNegative rl.Color
	BarFillPositive rl.Color
	PopulationFill  rl.Color
	SampleFill      rl.Color
	TrueMeanLine    rl.Color
	SampleMeanLine  rl.Color
	Habitats        []rl.Color // Cycled by habitat index
	Padding         int32
	LineHeight      int32
	LabelWidth      int32
	BarHeight       int32
	FontSize        int32
	HeaderFontSize  int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		Background:      rl.Color{R: 14, G: 18, B: 22, A: 255},
		PanelBg:         rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:     rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:   rl.Yellow,
		LabelColor:      rl.LightGray,
		ValueColor:      rl.RayWhite,
		ErrorColor:      rl.Color{R: 230, G: 90, B: 90, A: 255},
		BarBg:           rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:         rl.Color{R: 100, G: 150, B: 200, A: 255},
		BarFillNegative: rl.Color{R: 200, G: 100, B: 100, A: 255},
		BarFillPositive: rl.Color{R: 100, G: 200, B: 100, A: 255},
		PopulationFill:  rl.Color{R: 90, G: 110, B: 130, A: 200},
		SampleFill:      rl.Color{R: 240, G: 160, B: 60, A: 150},
		TrueMeanLine:    rl.Color{R: 120, G: 220, B: 255, A: 255},
		SampleMeanLine:  rl.Color{R: 255, G: 120, B: 60, A: 255},
		Habitats: []rl.Color{
			{R: 230, G: 200, B: 120, A: 255}, // sand
			{R: 80, G: 170, B: 90, A: 255},   // jungle
			{R: 70, G: 140, B: 170, A: 255},  // wetland
			{R: 150, G: 120, B: 170, A: 255}, // cave
		},
		Padding:        10,
		LineHeight:     18,
		LabelWidth:     110,
		BarHeight:      12,
		FontSize:       14,
		HeaderFontSize: 16,
	}
}

// HabitatColor returns the color for the i-th habitat.
func (t Theme) HabitatColor(i int) rl.Color {
	if len(t.Habitats) == 0 {
		return t.BarFill
	}
	return t.Habitats[i%len(t.Habitats)]
}
