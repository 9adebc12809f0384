package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/menagerie/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Animals        int
	Tourists       int
	Vehicles       int
	Occupancy      int // tourists at viewing areas
	Bodies         int
	Indexed        int
	TreeNodes      int
	TreeDepth      int
	Tick           int32
	StepsPerUpdate int
	FPS            int32
	Paused         bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Animals: %d | Tourists: %d (%d viewing) | Vehicles: %d", data.Animals, data.Tourists, data.Occupancy, data.Vehicles),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Bodies: %d | Indexed: %d | Nodes: %d | Depth: %d", data.Bodies, data.Indexed, data.TreeNodes, data.TreeDepth),
		10, 55, 16, rl.LightGray,
	)

	status := fmt.Sprintf("Tick: %d | Steps: %dx | FPS: %d", data.Tick, data.StepsPerUpdate, data.FPS)
	color := rl.LightGray
	if data.Paused {
		status += " | PAUSED"
		color = rl.Yellow
	}
	rl.DrawText(status, 10, 75, 16, color)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase tick timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel: one load bar per phase, followed by
// the grid work the phase did when it did any.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	width := int32(220)
	rows := int32(0)
	for _, ph := range stats.Phases {
		rows++
		if ph.Queries+ph.Moves+ph.Events > 0 {
			rows++
		}
	}
	height := r.Theme.Padding*2 + 36 + rows*(r.Theme.LineHeight+2)
	r.DrawPanel(p.x, p.y, width, height)

	x := p.x + r.Theme.Padding
	y := p.y + r.Theme.Padding

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  (%.0f tps)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 12, rl.Yellow)
	y += 16

	for _, ph := range stats.Phases {
		y = r.DrawLoadBar(x, y, ph.Name, ph.Pct/100, width-r.Theme.Padding*2)
		if ph.Queries+ph.Moves+ph.Events == 0 {
			continue
		}
		work := fmt.Sprintf("  q %.0f  mv %.0f  ev %.0f", ph.Queries, ph.Moves, ph.Events)
		rl.DrawText(work, x, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += r.Theme.LineHeight + 2
	}
}
