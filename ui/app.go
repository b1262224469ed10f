package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/osbornjw-stats/lizsample/config"
	"github.com/osbornjw-stats/lizsample/export"
	"github.com/osbornjw-stats/lizsample/sampling"
	"github.com/osbornjw-stats/lizsample/session"
)

const leftWidth = 500

// App is the interactive viewer.
type App struct {
	cfg  *config.Config
	sess *session.Session
	out  *export.OutputManager

	state    ControlState
	overlays *OverlayRegistry
	msg      Message

	hud       *HUD
	table     *HabitatTable
	controls  *ControlsPanel
	chart     *HistogramChart
	bars      *HabitatBars
	inspector *Inspector
}

// NewApp creates the viewer. out may be nil, in which case export reports an
// error instead of writing files.
func NewApp(cfg *config.Config, sess *session.Session, out *export.OutputManager) *App {
	w := int32(cfg.Screen.Width)
	h := int32(cfg.Screen.Height)
	rightX := int32(leftWidth + 20)
	rightW := w - rightX - 10
	chartH := (h - 110) / 2

	a := &App{
		cfg:  cfg,
		sess: sess,
		out:  out,
		state: ControlState{
			Stratified:   cfg.Sampling.Stratified,
			Bias:         cfg.Sampling.Bias,
			TotalSize:    cfg.Sampling.TotalSize,
			MaxTotalSize: min(cfg.Sampling.MaxTotalSize, sess.Population().Len()),
			Quotas:       cfg.DefaultQuotas(),
			MaxQuota:     cfg.Sampling.MaxQuota,
		},
		overlays:  NewOverlayRegistry(),
		hud:       NewHUD(),
		table:     NewHabitatTable(10, 70, leftWidth),
		chart:     NewHistogramChart(rl.Rectangle{X: float32(rightX), Y: 70, Width: float32(rightW), Height: float32(chartH)}),
		bars:      NewHabitatBars(rightX, 80+chartH, rightW/2-5),
		inspector: NewInspector(rightX+rightW/2+5, 80+chartH, rightW/2-5, h-120-chartH),
	}
	tableBottom := 70 + a.table.renderer.Theme.LineHeight*int32(len(sess.Population().Habitats())+3) + 20
	a.controls = NewControlsPanel(10, tableBottom+10, leftWidth)
	return a
}

// Run opens the window and blocks until it is closed.
func (a *App) Run() {
	rl.InitWindow(int32(a.cfg.Screen.Width), int32(a.cfg.Screen.Height), "Island Lizard Sampling")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(a.cfg.Screen.TargetFPS))

	for !rl.WindowShouldClose() {
		a.handleInput()

		rl.BeginDrawing()
		rl.ClearBackground(a.hud.renderer.Theme.Background)
		action := a.draw()
		rl.EndDrawing()

		a.perform(action)
	}
}

func (a *App) handleInput() {
	a.overlays.HandleKeys()

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.perform(ActionDraw)
	case rl.IsKeyPressed(rl.KeyS):
		a.perform(ActionExport)
	case rl.IsKeyPressed(rl.KeyT):
		a.state.Stratified = !a.state.Stratified
	case rl.IsKeyPressed(rl.KeyB):
		if !a.state.Stratified {
			a.state.Bias = !a.state.Bias
		}
	}
}

func (a *App) draw() Action {
	pop := a.sess.Population()
	result, ok := a.sess.Latest()

	a.hud.Draw("Island Lizard Sampling", a.msg)
	a.table.Draw(pop)
	action := a.controls.Draw(&a.state, pop.Habitats(), a.overlays)

	data := HistogramData{
		Population: a.sess.PopulationHistogram(),
		TrueMean:   pop.TrueMean(),
		Habitats:   pop.Habitats(),
	}
	if ok {
		data.Sample = &result.Histogram
		data.SampleMean = result.Summary.SampleMean
	}
	a.chart.Draw(data, a.overlays)

	if ok {
		a.bars.Draw(result.Summary.HabitatCounts)
	} else {
		a.bars.Draw(emptyCounts(pop.Habitats(), pop.Len()))
	}
	a.inspector.Draw(result, ok)

	a.hud.DrawControls(int32(a.cfg.Screen.Width), int32(a.cfg.Screen.Height),
		"[Space] Draw  [S] Export  [T] Stratified  [B] Field conditions  [P/H/M/N] Layers  [Esc] Quit")
	return action
}

// perform runs a user action. Failures are shown in the status line and the
// previous sample stays on screen.
func (a *App) perform(action Action) {
	switch action {
	case ActionDraw:
		r, err := a.sess.Draw(a.state.Options())
		if err != nil {
			a.setError(describeDrawError(err))
			return
		}
		a.inspector.ResetScroll()
		a.setInfo(fmt.Sprintf("Drew %d lizards, error %+.2f g", r.Summary.SampleSize, r.Summary.Error))

	case ActionExport:
		if a.out == nil {
			a.setError("Export disabled: start with -output-dir")
			return
		}
		path, err := a.sess.Export(a.out)
		if err != nil {
			if errors.Is(err, session.ErrNoSample) {
				a.setError("Nothing to export yet: draw a sample first")
				return
			}
			slog.Error("export failed", "error", err)
			a.setError("Export failed: " + err.Error())
			return
		}
		a.setInfo("Saved " + path)
	}
}

func (a *App) setError(text string) {
	a.msg = Message{Text: text, IsError: true, At: time.Now()}
}

func (a *App) setInfo(text string) {
	a.msg = Message{Text: text, At: time.Now()}
}

// describeDrawError turns a draw error into a message for the status line.
func describeDrawError(err error) string {
	switch {
	case errors.Is(err, sampling.ErrInvalidSampleSize):
		return "Cannot draw: " + err.Error()
	case errors.Is(err, sampling.ErrEmptySampleRequest):
		return "Cannot draw: set at least one habitat quota above zero"
	case errors.Is(err, sampling.ErrUnknownHabitat):
		return "Cannot draw: " + err.Error()
	default:
		return "Draw failed: " + err.Error()
	}
}
