package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/osbornjw-stats/lizsample/population"
	"github.com/osbornjw-stats/lizsample/sampling"
)

// Action is what the user asked for this frame.
type Action int

const (
	ActionNone Action = iota
	ActionDraw
	ActionExport
)

// ControlState holds the sampling controls.
type ControlState struct {
	Stratified   bool
	Bias         bool
	TotalSize    int
	MaxTotalSize int
	Quotas       map[string]int
	MaxQuota     int
}

// Options converts the controls into sampling options.
func (s ControlState) Options() sampling.Options {
	return sampling.Options{
		Stratified: s.Stratified,
		Bias:       s.Bias,
		TotalSize:  s.TotalSize,
		Quotas:     s.Quotas,
	}
}

// ControlsPanel renders the sampling controls, the action buttons and the
// chart layer toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders the panel, applies edits to state and returns the requested
// action.
func (c *ControlsPanel) Draw(state *ControlState, habitats []population.Habitat, overlays *OverlayRegistry) Action {
	r := c.renderer
	t := r.Theme
	padding := t.Padding
	lineHeight := t.LineHeight

	rows := 4
	if state.Stratified {
		rows += len(habitats)
	}
	for _, cat := range overlays.Categories() {
		rows += len(overlays.ByCategory(cat)) + 1
	}
	panelHeight := int32(rows)*(lineHeight+8) + padding*4 + 40
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	fx := float32(c.x + padding)
	inner := float32(c.width - padding*2)
	y := c.y + padding

	rl.DrawText("Sampling", c.x+padding, y, 18, rl.White)
	y += lineHeight + 6

	half := (inner - 10) / 2
	if gui.Button(rl.Rectangle{X: fx, Y: float32(y), Width: half, Height: 24}, toggleText(state.Stratified, "Stratified", "Simple random")) {
		state.Stratified = !state.Stratified
	}
	biasLabel := toggleText(state.Bias, "Field conditions: on", "Field conditions: off")
	if state.Stratified {
		biasLabel = "Field conditions: n/a"
	}
	if gui.Button(rl.Rectangle{X: fx + half + 10, Y: float32(y), Width: half, Height: 24}, biasLabel) && !state.Stratified {
		state.Bias = !state.Bias
	}
	y += 32

	sliderWidth := inner - float32(t.LabelWidth) - 50
	if !state.Stratified {
		r.DrawLabel(c.x+padding, y+4, "Sample size")
		state.TotalSize = c.intSlider(fx+float32(t.LabelWidth), float32(y), sliderWidth, state.TotalSize, 1, state.MaxTotalSize)
		y += lineHeight + 10
	} else {
		for _, h := range habitats {
			r.DrawLabel(c.x+padding, y+4, h.Name)
			state.Quotas[h.Name] = c.intSlider(fx+float32(t.LabelWidth), float32(y), sliderWidth, state.Quotas[h.Name], 0, state.MaxQuota)
			y += lineHeight + 8
		}
		total := 0
		for _, q := range state.Quotas {
			total += q
		}
		r.DrawLabelValue(c.x+padding, y, "Requested", fmt.Sprintf("%d", total))
		y += lineHeight + 4
	}

	action := ActionNone
	if gui.Button(rl.Rectangle{X: fx, Y: float32(y), Width: half, Height: 30}, "Draw sample [Space]") {
		action = ActionDraw
	}
	if gui.Button(rl.Rectangle{X: fx + half + 10, Y: float32(y), Width: half, Height: 30}, "Export CSV [S]") {
		action = ActionExport
	}
	y += 42

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), c.x+padding, y, t.HeaderFontSize, t.SectionHeader)
		y += lineHeight + 2
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays, c.width-padding*2)
			y += lineHeight + 4
		}
	}

	return action
}

// intSlider draws a slider for an integer value and its current value.
func (c *ControlsPanel) intSlider(x, y, width float32, value, minVal, maxVal int) int {
	if maxVal <= minVal {
		maxVal = minVal + 1
	}
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: width, Height: 20},
		"", "",
		float32(value), float32(minVal), float32(maxVal),
	)
	out := int(math.Round(float64(v)))
	c.renderer.DrawValue(int32(x+width)+8, int32(y)+3, fmt.Sprintf("%d", out))
	return out
}

// drawToggle draws a clickable layer toggle with its key binding.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, overlays *OverlayRegistry, width int32) {
	r := c.renderer
	enabled := overlays.IsEnabled(desc.ID)

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+3, 10, 10, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+16, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}

	hit := rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(width), Height: float32(r.Theme.LineHeight)}
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && rl.CheckCollisionPointRec(rl.GetMousePosition(), hit) {
		overlays.Toggle(desc.ID)
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case "histogram":
		return "Histogram"
	case "markers":
		return "Markers"
	default:
		return cat
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// HabitatTable renders the habitat parameter table.
type HabitatTable struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewHabitatTable creates the habitat table panel.
func NewHabitatTable(x, y, width int32) *HabitatTable {
	return &HabitatTable{renderer: NewRenderer(), x: x, y: y, width: width}
}

// Draw renders one row per habitat with its configured and realised values.
func (h *HabitatTable) Draw(pop *population.Population) int32 {
	r := h.renderer
	t := r.Theme
	padding := t.Padding
	habitats := pop.Habitats()

	panelHeight := t.LineHeight*int32(len(habitats)+3) + padding*2
	r.DrawPanel(h.x, h.y, h.width, panelHeight)

	y := h.y + padding
	y = r.DrawSectionHeader(h.x+padding, y, fmt.Sprintf("Island population (%d lizards, seed %d)", pop.Len(), pop.Seed()))

	cols := []int32{0, 150, 215, 270, 335, 400}
	header := []string{"Habitat", "Mean", "SD", "N", "Catch", "Realised"}
	for i, text := range header {
		rl.DrawText(text, h.x+padding+cols[i], y, t.FontSize, t.SectionHeader)
	}
	y += t.LineHeight

	for i, hab := range habitats {
		realised, _ := pop.HabitatMean(hab.Name)
		cells := []string{
			hab.Label(),
			fmt.Sprintf("%.0f g", hab.Mean),
			fmt.Sprintf("%.0f", hab.StdDev),
			fmt.Sprintf("%d", hab.Size),
			fmt.Sprintf("%.2f", hab.CatchProbability),
			fmt.Sprintf("%.1f g", realised),
		}
		rl.DrawRectangle(h.x+padding, y+3, 8, 8, t.HabitatColor(i))
		for j, text := range cells {
			off := cols[j]
			if j == 0 {
				off += 12
			}
			r.DrawValue(h.x+padding+off, y, text)
		}
		y += t.LineHeight
	}

	r.DrawLabelValue(h.x+padding, y, "True mean", fmt.Sprintf("%.2f g", pop.TrueMean()))
	return h.y + panelHeight
}
