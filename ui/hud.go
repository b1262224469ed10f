package ui

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Message is a transient status line.
type Message struct {
	Text    string
	IsError bool
	At      time.Time
}

// HUD renders the title, the status line and the key legend.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the title and the current message. Errors stay until replaced;
// info messages fade after a few seconds.
func (h *HUD) Draw(title string, msg Message) {
	rl.DrawText(title, 10, 10, 22, rl.White)

	if msg.Text == "" {
		return
	}
	color := h.renderer.Theme.ValueColor
	if msg.IsError {
		color = h.renderer.Theme.ErrorColor
	} else if age := time.Since(msg.At); age > 4*time.Second {
		return
	}
	rl.DrawText(msg.Text, 10, 38, 16, color)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
