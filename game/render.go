package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/menagerie/collision"
	"github.com/pthm-cable/menagerie/components"
	"github.com/pthm-cable/menagerie/ui"
)

var (
	colorGround  = rl.Color{R: 70, G: 110, B: 60, A: 255}
	colorWalkway = rl.Color{R: 170, G: 160, B: 130, A: 255}
	colorRoad    = rl.Color{R: 60, G: 60, B: 65, A: 255}
	colorGrid    = rl.Color{R: 255, G: 255, B: 255, A: 40}
	colorActive  = rl.Color{R: 255, G: 255, B: 0, A: 120}
	colorSight   = rl.Color{R: 120, G: 200, B: 255, A: 160}
)

const controlsLegend = "Space: pause | ,/.: steps | Tab: controls | Arrows/RMB: pan | Wheel: zoom | Click: select"

// Draw renders the park and the debug UI. No-op when headless.
func (g *Game) Draw() {
	if g.headless {
		return
	}
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.drawPark()
	g.drawActiveOverlays()
	g.drawUI()

	rl.EndDrawing()
}

// drawPark draws the ground, the walkway, the road and every body by kind.
// Zones go first so mobile bodies draw on top of them.
func (g *Game) drawPark() {
	l := g.level
	ui.DrawBox(g.camera, l.layout.World, colorGround, true)
	ui.DrawBox(g.camera, l.layout.Walkway, colorWalkway, true)
	ui.DrawBox(g.camera, l.layout.Road, colorRoad, true)

	for _, pass := range [][]components.Kind{
		{components.KindZone},
		{components.KindFence, components.KindStructure},
		{components.KindAnimal, components.KindTourist, components.KindVehicle},
	} {
		l.EachCollider(func(_ ecs.Entity, kind components.Kind, col *components.Collider) {
			if col.Body == nil || !kindIn(kind, pass) {
				return
			}
			ui.DrawBox(g.camera, col.Body.Bounds(), ui.KindColor(kind), true)
		})
	}

	if data, ok := g.inspectorData(); ok {
		ui.DrawBox(g.camera, data.Bounds.Expand(2), rl.White, false)
	}
}

func kindIn(k components.Kind, kinds []components.Kind) bool {
	for _, c := range kinds {
		if c == k {
			return true
		}
	}
	return false
}

// drawActiveOverlays draws whichever debug overlays are enabled.
func (g *Game) drawActiveOverlays() {
	l := g.level
	for _, id := range g.overlays.EnabledOverlays() {
		switch id {
		case ui.OverlayGridCells:
			ui.DrawGridLines(g.camera, l.Grid, colorGrid)
		case ui.OverlayOccupancy:
			ui.DrawOccupancy(g.camera, l.Grid, 8)
		case ui.OverlayBodies:
			l.Grid.Each(func(b *collision.Body) {
				ui.DrawBox(g.camera, b.Bounds(), rl.White, false)
			})
		case ui.OverlayTriggers:
			g.drawTriggers()
		case ui.OverlayQuadtree:
			ui.DrawQuadtree(g.camera, l.Index)
		case ui.OverlaySight:
			g.drawSelectedSight()
		case ui.OverlayTargets:
			g.drawTargets()
		}
	}
}

// drawTriggers outlines zones that currently hold a body they target.
func (g *Game) drawTriggers() {
	l := g.level
	l.Grid.Each(func(b *collision.Body) {
		if !b.HasListeners() {
			return
		}
		if l.Grid.Collides(b.Bounds(), b, b) {
			ui.DrawBox(g.camera, b.Bounds(), colorActive, true)
		}
	})
}

// drawSelectedSight draws the sight radius of the selection and outlines
// what it sees.
func (g *Game) drawSelectedSight() {
	data, ok := g.inspectorData()
	if !ok || !data.HasPerception {
		return
	}
	col := g.level.Collider(g.selected)
	if col == nil || col.Agent == nil {
		return
	}
	centre := col.Agent.Bounds().Center()
	ui.DrawCircle(g.camera, centre, data.Perception.Sight, colorSight)
	if !data.Indexed {
		return
	}
	for _, other := range g.level.Index.Sees(nil, col.Agent, data.Perception.Sight, nil) {
		ui.DrawBox(g.camera, other.Bounds().Expand(1), colorSight, false)
	}
}

// drawTargets links every watcher to its current target.
func (g *Game) drawTargets() {
	l := g.level
	l.EachCollider(func(e ecs.Entity, kind components.Kind, col *components.Collider) {
		if col.Agent == nil || !l.percMap.Has(e) {
			return
		}
		perc := l.percMap.Get(e)
		if perc.Target == nil {
			return
		}
		color := ui.KindColor(kind)
		if perc.InReach {
			color = rl.White
		}
		ui.DrawLink(g.camera, col.Agent.Bounds().Center(), perc.Target.Bounds().Center(), color)
	})
}

// drawUI draws the HUD and panels in screen space.
func (g *Game) drawUI() {
	l := g.level
	g.hud.Draw(ui.HUDData{
		Title:          "Menagerie",
		Animals:        l.Count(components.KindAnimal),
		Tourists:       l.Count(components.KindTourist),
		Vehicles:       l.Count(components.KindVehicle),
		Occupancy:      l.Contacts.Occupancy(),
		Bodies:         l.Grid.Len(),
		Indexed:        l.Index.Len(),
		TreeNodes:      l.Index.NodeCount(),
		TreeDepth:      l.Index.Depth(),
		Tick:           g.tick,
		StepsPerUpdate: g.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         g.paused,
	})
	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)

	state := ui.ControlState{Paused: g.paused, StepsPerUpdate: g.stepsPerUpdate}
	g.controls.Draw(g.overlays, &state)
	g.paused = state.Paused
	g.stepsPerUpdate = state.StepsPerUpdate
	if state.ResetCamera {
		g.camera.Reset()
	}

	g.perfPanel.Draw(g.perfCollector.Stats())

	if data, ok := g.inspectorData(); ok {
		g.inspector.Draw(data)
	}
}
