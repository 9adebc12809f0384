package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// MaxStepsPerUpdate bounds the steps slider.
const MaxStepsPerUpdate = 10

// ControlState is the simulation state the controls panel edits.
type ControlState struct {
	Paused         bool
	StepsPerUpdate int
	ResetCamera    bool // set for one frame when the reset button is pressed
}

// ControlsPanel renders the overlay toggles and run controls with raygui.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32 // as last drawn
	visible  bool
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

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point lies on the visible panel, so
// clicks there are not treated as world clicks.
func (c *ControlsPanel) Contains(sx, sy float64) bool {
	if !c.visible {
		return false
	}
	return sx >= float64(c.x) && sx < float64(c.x+c.width) && sy >= float64(c.y) && sy < float64(c.y+c.height)
}

func (c *ControlsPanel) measure(overlays *OverlayRegistry) int32 {
	t := c.renderer.Theme
	var rows int32
	for _, cat := range overlays.Categories() {
		rows += int32(len(overlays.ByCategory(cat))) + 1
	}
	// title, overlay rows, steps slider and buttons
	return t.Padding*2 + t.LineHeight + rows*(t.LineHeight+4) + 3*(t.LineHeight+12)
}

// Draw renders the panel and applies any changes to overlays and state.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry, state *ControlState) {
	state.ResetCamera = false
	if !c.visible {
		return
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	c.height = c.measure(overlays)
	r.DrawPanel(c.x, c.y, c.width, c.height)

	x := float32(c.x + padding)
	w := float32(c.width - padding*2)
	y := c.y + padding

	rl.DrawText("Overlays", int32(x), y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range overlays.Categories() {
		y = r.DrawSectionHeader(int32(x), y, categoryLabel(category))
		for _, desc := range overlays.ByCategory(category) {
			label := desc.Name
			if desc.KeyLabel != "" {
				label = fmt.Sprintf("%s [%s]", desc.Name, desc.KeyLabel)
			}
			box := rl.Rectangle{X: x, Y: float32(y), Width: 12, Height: 12}
			enabled := overlays.IsEnabled(desc.ID)
			if checked := gui.CheckBox(box, label, enabled); checked != enabled {
				overlays.SetEnabled(desc.ID, checked)
			}
			y += lineHeight + 4
		}
	}

	y += 4
	rl.DrawText(fmt.Sprintf("Steps per frame: %d", state.StepsPerUpdate), int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
	y += lineHeight
	steps := gui.SliderBar(
		rl.Rectangle{X: x + 20, Y: float32(y), Width: w - 40, Height: 14},
		"1", fmt.Sprint(MaxStepsPerUpdate),
		float32(state.StepsPerUpdate), 1, MaxStepsPerUpdate,
	)
	state.StepsPerUpdate = int(math.Round(float64(steps)))
	y += lineHeight + 8

	half := (w - 10) / 2
	pauseLabel := "Pause"
	if state.Paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 24}, pauseLabel) {
		state.Paused = !state.Paused
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: float32(y), Width: half, Height: 24}, "Reset View") {
		state.ResetCamera = true
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "grid":
		return "Collision Grid"
	case "index":
		return "Bounds Index"
	default:
		return cat
	}
}
