package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/osbornjw-stats/lizsample/sampling"
	"github.com/osbornjw-stats/lizsample/session"
)

// summarySections describes the estimate panel.
var summarySections = []SectionDescriptor{
	{
		ID:    "estimate",
		Title: "Estimate",
		Fields: []FieldDescriptor{
			{ID: "strategy", Label: "Strategy", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprint(d.(session.Result).Sample.Strategy)
			}},
			{ID: "n", Label: "Sample size", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("%d", d.(session.Result).Summary.SampleSize)
			}},
			{ID: "true_mean", Label: "True mean", Widget: WidgetText, Format: "%.2f g", Getter: func(d any) float32 {
				return float32(d.(session.Result).Summary.TrueMean)
			}},
			{ID: "sample_mean", Label: "Sample mean", Widget: WidgetText, Format: "%.2f g", Getter: func(d any) float32 {
				return float32(d.(session.Result).Summary.SampleMean)
			}},
			{ID: "error", Label: "Error", Widget: WidgetCenteredBar, Range: FieldRange{Min: -100, Max: 100}, Getter: func(d any) float32 {
				return float32(d.(session.Result).Summary.Error)
			}},
		},
	},
	{
		ID:    "spread",
		Title: "Spread",
		Visible: func(d any) bool {
			return d.(session.Result).Summary.SampleSize > 1
		},
		Fields: []FieldDescriptor{
			{ID: "sd", Label: "Sample SD", Widget: WidgetText, Format: "%.2f g", Getter: func(d any) float32 {
				return float32(d.(session.Result).Summary.SampleStdDev)
			}},
			{ID: "se", Label: "Std. error", Widget: WidgetText, Format: "%.2f g", Getter: func(d any) float32 {
				return float32(d.(session.Result).Summary.StandardError)
			}},
		},
	},
}

// Inspector shows the estimate for the latest sample and a scrollable list
// of the sampled rows.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32
	scroll   int
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width, height int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		height:   height,
	}
}

// ResetScroll moves the row list back to the top.
func (ins *Inspector) ResetScroll() {
	ins.scroll = 0
}

// Draw renders the inspector for result, or a hint when nothing was drawn.
func (ins *Inspector) Draw(result session.Result, ok bool) {
	r := ins.renderer
	t := r.Theme
	padding := t.Padding

	r.DrawPanel(ins.x, ins.y, ins.width, ins.height)
	x := ins.x + padding
	y := ins.y + padding
	contentWidth := ins.width - padding*2

	if !ok {
		r.DrawLabel(x, y, "No sample yet. Press Draw.")
		return
	}

	for _, sd := range summarySections {
		y = r.DrawSection(x, y, sd, result, contentWidth)
	}

	y = r.DrawSectionHeader(x, y, "Sampled lizards")
	ins.drawRows(x, y, contentWidth, ins.y+ins.height-padding, result.Sample)
}

// drawRows lists sample rows between y and bottom. The mouse wheel scrolls
// when the cursor is over the panel.
func (ins *Inspector) drawRows(x, y, width, bottom int32, sample sampling.Sample) {
	t := ins.renderer.Theme
	visible := int((bottom - y) / t.LineHeight)
	if visible < 1 {
		return
	}

	bounds := rl.Rectangle{X: float32(ins.x), Y: float32(ins.y), Width: float32(ins.width), Height: float32(ins.height)}
	if rl.CheckCollisionPointRec(rl.GetMousePosition(), bounds) {
		ins.scroll -= int(rl.GetMouseWheelMove() * 3)
	}
	maxScroll := sample.Len() - visible
	if ins.scroll > maxScroll {
		ins.scroll = maxScroll
	}
	if ins.scroll < 0 {
		ins.scroll = 0
	}

	for i := ins.scroll; i < sample.Len() && i < ins.scroll+visible; i++ {
		row := sample.Rows[i]
		rl.DrawText(row.ID, x, y, t.FontSize, t.LabelColor)
		rl.DrawText(row.Habitat, x+90, y, t.FontSize, t.LabelColor)
		w := fmt.Sprintf("%.1f g", row.Weight)
		rl.DrawText(w, x+width-rl.MeasureText(w, t.FontSize), y, t.FontSize, t.ValueColor)
		y += t.LineHeight
	}
}
