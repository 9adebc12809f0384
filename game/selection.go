package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/menagerie/collision"
	"github.com/pthm-cable/menagerie/components"
	"github.com/pthm-cable/menagerie/geom"
	"github.com/pthm-cable/menagerie/ui"
)

// pickRadius is the half-size, in screen pixels, of the click box.
const pickRadius = 3.0

// selectAt selects the entity under a screen point, preferring mobile
// entities over the static shapes beneath them.
func (g *Game) selectAt(sx, sy float64) {
	wx, wy := g.camera.ScreenToWorld(sx, sy)
	r := pickRadius / g.camera.Zoom
	hits := g.level.Grid.Query(geom.FromCenter(r2.Vec{X: wx, Y: wy}, r, r), nil, nil)

	g.hasSelected = false
	for _, b := range hits {
		anchor, ok := b.Owner().(*components.Anchor)
		if !ok {
			continue
		}
		kind := *g.level.kindMap.Get(anchor.Entity())
		if !g.hasSelected || kind.Mobile() {
			g.selected = anchor.Entity()
			g.hasSelected = true
		}
		if kind.Mobile() {
			return
		}
	}
}

// inspectorData gathers what the inspector shows about the selection.
func (g *Game) inspectorData() (ui.InspectorData, bool) {
	if !g.hasSelected {
		return ui.InspectorData{}, false
	}
	l := g.level
	e := g.selected
	col := l.Collider(e)
	if col == nil || col.Body == nil {
		return ui.InspectorData{}, false
	}

	data := ui.InspectorData{
		ID:       e.ID(),
		Kind:     *l.kindMap.Get(e),
		Bounds:   col.Body.Bounds(),
		Category: col.Body.Category,
		Targets:  col.Body.Targets,
		Cells:    cellsSpanned(l.Grid, col.Body),
		Indexed:  col.Agent != nil && col.Agent.Handle() != nil && col.Agent.Handle().Live(),
	}
	if l.velMap.Has(e) {
		data.Velocity = *l.velMap.Get(e)
		data.HasVelocity = true
	}
	if l.percMap.Has(e) && data.Kind != components.KindVehicle {
		data.Perception = *l.percMap.Get(e)
		data.HasPerception = true
	}
	if l.visitMap.Has(e) {
		data.VisitLeft = l.visitMap.Get(e).Remaining
		data.IsVisitor = true
	}
	return data, true
}

// cellsSpanned counts the grid cells holding b.
func cellsSpanned(grid *collision.Grid, b *collision.Body) int {
	w, h := grid.Size()
	size := grid.CellSize()
	box := b.Bounds()
	n := 0
	for cy := max(0, int(box.Y/size)); cy < h && float64(cy)*size < box.Bottom(); cy++ {
		for cx := max(0, int(box.X/size)); cx < w && float64(cx)*size < box.Right(); cx++ {
			for _, c := range grid.Cell(cx, cy) {
				if c == b {
					n++
					break
				}
			}
		}
	}
	return n
}
