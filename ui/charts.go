package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/osbornjw-stats/lizsample/population"
	"github.com/osbornjw-stats/lizsample/sampling"
)

// HistogramData holds everything the weight chart draws.
type HistogramData struct {
	Population sampling.Histogram
	Sample     *sampling.Histogram // nil before the first draw
	TrueMean   float64
	SampleMean float64
	Habitats   []population.Habitat
}

// HistogramChart draws the population and sample weight densities on shared
// bins so their shapes can be compared regardless of sample size.
type HistogramChart struct {
	renderer *Renderer
	bounds   rl.Rectangle
}

// NewHistogramChart creates a chart in the given screen rectangle.
func NewHistogramChart(bounds rl.Rectangle) *HistogramChart {
	return &HistogramChart{renderer: NewRenderer(), bounds: bounds}
}

// Draw renders the chart with the enabled overlays.
func (h *HistogramChart) Draw(data HistogramData, overlays *OverlayRegistry) {
	r := h.renderer
	t := r.Theme
	x, y := int32(h.bounds.X), int32(h.bounds.Y)
	w, ht := int32(h.bounds.Width), int32(h.bounds.Height)

	r.DrawPanel(x, y, w, ht)
	rl.DrawText("Weight distribution (density)", x+t.Padding, y+t.Padding, t.HeaderFontSize, t.SectionHeader)

	// Plot area
	px := x + t.Padding
	py := y + t.Padding + t.LineHeight + 6
	pw := w - t.Padding*2
	ph := ht - (py - y) - t.LineHeight - t.Padding

	dividers := data.Population.Dividers
	if len(dividers) < 2 || pw <= 0 || ph <= 0 {
		return
	}
	lo, hi := dividers[0], dividers[len(dividers)-1]
	toX := func(v float64) int32 {
		return px + int32(float64(pw)*(v-lo)/(hi-lo))
	}

	popDensity := data.Population.Density()
	var sampleDensity []float64
	if data.Sample != nil {
		sampleDensity = data.Sample.Density()
	}

	maxD := 0.0
	if overlays.IsEnabled(OverlayPopulation) {
		maxD = maxOf(maxD, popDensity)
	}
	if overlays.IsEnabled(OverlaySample) {
		maxD = maxOf(maxD, sampleDensity)
	}
	if maxD == 0 {
		maxD = maxOf(maxD, popDensity)
	}

	drawBars := func(density []float64, color rl.Color) {
		for i, d := range density {
			x0, x1 := toX(dividers[i]), toX(dividers[i+1])
			bh := int32(float64(ph) * d / maxD)
			bw := x1 - x0 - 1
			if bw < 1 {
				bw = 1
			}
			rl.DrawRectangle(x0, py+ph-bh, bw, bh, color)
		}
	}

	if overlays.IsEnabled(OverlayPopulation) {
		drawBars(popDensity, t.PopulationFill)
	}
	if overlays.IsEnabled(OverlaySample) && sampleDensity != nil {
		drawBars(sampleDensity, t.SampleFill)
	}

	if overlays.IsEnabled(OverlayHabitatMeans) {
		for i, hab := range data.Habitats {
			mx := toX(hab.Mean)
			c := t.HabitatColor(i)
			rl.DrawLine(mx, py, mx, py+ph, rl.Fade(c, 0.6))
			rl.DrawText(hab.Name, mx+3, py+int32(i)*t.LineHeight, t.FontSize-2, c)
		}
	}

	if overlays.IsEnabled(OverlayMeans) {
		tx := toX(data.TrueMean)
		rl.DrawLine(tx, py, tx, py+ph, t.TrueMeanLine)
		rl.DrawLine(tx+1, py, tx+1, py+ph, t.TrueMeanLine)
		rl.DrawText(fmt.Sprintf("true %.1f g", data.TrueMean), tx+4, py+ph-t.LineHeight*2, t.FontSize, t.TrueMeanLine)
		if data.Sample != nil {
			sx := toX(data.SampleMean)
			rl.DrawLine(sx, py, sx, py+ph, t.SampleMeanLine)
			rl.DrawLine(sx+1, py, sx+1, py+ph, t.SampleMeanLine)
			rl.DrawText(fmt.Sprintf("sample %.1f g", data.SampleMean), sx+4, py+ph-t.LineHeight, t.FontSize, t.SampleMeanLine)
		}
	}

	// Axis
	rl.DrawLine(px, py+ph, px+pw, py+ph, t.PanelBorder)
	axisY := py + ph + 4
	r.DrawLabel(px, axisY, fmt.Sprintf("%.0f g", lo))
	hiText := fmt.Sprintf("%.0f g", hi)
	r.DrawLabel(px+pw-rl.MeasureText(hiText, t.FontSize), axisY, hiText)
}

// HabitatBars draws sample share against population share per habitat.
type HabitatBars struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewHabitatBars creates the habitat share panel.
func NewHabitatBars(x, y, width int32) *HabitatBars {
	return &HabitatBars{renderer: NewRenderer(), x: x, y: y, width: width}
}

// Draw renders one row per habitat: the sample share bar, the population
// share marker and the sampled count.
func (b *HabitatBars) Draw(counts []sampling.HabitatCount) int32 {
	r := b.renderer
	t := r.Theme
	padding := t.Padding

	panelHeight := t.LineHeight*int32(len(counts)+1) + padding*2 + 4
	r.DrawPanel(b.x, b.y, b.width, panelHeight)

	y := b.y + padding
	y = r.DrawSectionHeader(b.x+padding, y, "Habitat share (sample vs population)")

	inner := b.width - padding*2
	for i, hc := range counts {
		barX := b.x + padding + t.LabelWidth
		barWidth := inner - t.LabelWidth - 60
		r.DrawLabel(b.x+padding, y, hc.Habitat)
		rl.DrawRectangle(barX, y+2, barWidth, t.BarHeight, t.BarBg)
		rl.DrawRectangle(barX, y+2, int32(float64(barWidth)*hc.SampleShare), t.BarHeight, t.HabitatColor(i))

		mx := barX + int32(float64(barWidth)*hc.PopulationShare)
		rl.DrawRectangle(mx-1, y, 3, t.BarHeight+4, rl.White)

		r.DrawValue(barX+barWidth+6, y, fmt.Sprintf("%d", hc.Count))
		y += t.LineHeight
	}
	return b.y + panelHeight
}

func maxOf(m float64, values []float64) float64 {
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

// emptyCounts gives the habitat rows before anything was sampled.
func emptyCounts(habitats []population.Habitat, total int) []sampling.HabitatCount {
	counts := make([]sampling.HabitatCount, len(habitats))
	for i, h := range habitats {
		counts[i] = sampling.HabitatCount{Habitat: h.Name}
		if total > 0 {
			counts[i].PopulationShare = float64(h.Size) / float64(total)
		}
	}
	return counts
}
