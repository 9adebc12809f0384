// Quadtree preview tool - interactive visualization of the bounds index
// split parameters with sliders.
//
// Usage: go run ./cmd/quadpreview
package main

import (
	"fmt"
	"math/rand"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/menagerie/geom"
	"github.com/pthm-cable/menagerie/quadtree"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 640
	panelWidth   = windowWidth - previewSize - 30
	previewX     = 10
	previewY     = 10
	queryRadius  = 40
)

// TreeParams holds the slider values.
type TreeParams struct {
	Threshold int
	MaxDepth  int
	Count     int
	Size      float32
	Speed     float32
	Seed      int64
}

func defaultParams() TreeParams {
	return TreeParams{Threshold: 8, MaxDepth: 6, Count: 200, Size: 12, Speed: 40, Seed: 1}
}

// mover is one drifting box.
type mover struct {
	box    geom.AABB
	vel    r2.Vec
	handle *quadtree.Handle[*mover]
}

func (m *mover) Bounds() geom.AABB {
	return m.box
}

// scene holds the boxes and the tree indexing them.
type scene struct {
	area   geom.AABB
	movers []*mover
	tree   *quadtree.Tree[*mover]
}

func newScene(p TreeParams) *scene {
	s := &scene{area: geom.New(0, 0, previewSize, previewSize)}
	rng := rand.New(rand.NewSource(p.Seed))
	size := float64(p.Size)
	for i := 0; i < p.Count; i++ {
		x := rng.Float64() * (previewSize - size)
		y := rng.Float64() * (previewSize - size)
		vel := r2.Vec{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1}
		s.movers = append(s.movers, &mover{box: geom.New(x, y, size, size), vel: r2.Scale(float64(p.Speed), vel)})
	}
	s.rebuild(p)
	return s
}

// rebuild indexes every box in a fresh tree with p's split parameters.
func (s *scene) rebuild(p TreeParams) {
	s.tree = quadtree.New[*mover](quadtree.Config{Bounds: s.area, Threshold: p.Threshold, MaxDepth: p.MaxDepth})
	for _, m := range s.movers {
		m.handle = s.tree.Insert(m)
	}
}

// step moves every box, bouncing off the edges.
func (s *scene) step(dt float64) {
	for _, m := range s.movers {
		m.box.Offset(r2.Scale(dt, m.vel))
		if m.box.X < 0 || m.box.Right() > s.area.Width {
			m.vel.X = -m.vel.X
			m.box.X = max(0, min(m.box.X, s.area.Width-m.box.Width))
		}
		if m.box.Y < 0 || m.box.Bottom() > s.area.Height {
			m.vel.Y = -m.vel.Y
			m.box.Y = max(0, min(m.box.Y, s.area.Height-m.box.Height))
		}
		m.handle.Update(m.box)
	}
}

var depthColors = []rl.Color{
	rl.DarkGray, rl.Blue, rl.DarkGreen, rl.Orange, rl.Maroon, rl.Purple, rl.Brown, rl.Gold, rl.Lime, rl.Pink, rl.SkyBlue,
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Quadtree Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	params := defaultParams()
	s := newScene(params)
	running := true
	var hits []*mover

	for !rl.WindowShouldClose() {
		if running {
			s.step(float64(rl.GetFrameTime()))
		}

		// Mouse query
		mouse := rl.GetMousePosition()
		world := r2.Vec{X: float64(mouse.X - previewX), Y: float64(mouse.Y - previewY)}
		hovering := s.area.ContainsPoint(world)
		hits = hits[:0]
		var query geom.AABB
		if hovering {
			query = geom.FromCenter(world, queryRadius, queryRadius)
			hits = s.tree.QueryInto(hits, query, nil)
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Tree nodes
		s.tree.Traverse(func(n quadtree.NodeInfo) {
			c := depthColors[n.Level%len(depthColors)]
			if n.Entries > 0 {
				fill := c
				fill.A = uint8(min(120, 12*n.Entries))
				rl.DrawRectangleRec(toScreen(n.Bounds), fill)
			}
			rl.DrawRectangleLinesEx(toScreen(n.Bounds), 1, rl.Fade(c, 0.6))
		})

		for _, m := range s.movers {
			rl.DrawRectangleRec(toScreen(m.box), rl.Fade(rl.Black, 0.5))
		}
		if hovering {
			for _, m := range hits {
				rl.DrawRectangleRec(toScreen(m.box), rl.Red)
			}
			rl.DrawRectangleLinesEx(toScreen(query), 2, rl.Red)
		}
		rl.DrawRectangleLines(previewX, previewY, previewSize, previewSize, rl.DarkGray)

		// Stats
		statsY := int32(previewY + previewSize + 15)
		rl.DrawText(fmt.Sprintf("Elements: %d  Nodes: %d  Depth: %d", s.tree.Len(), s.tree.NodeCount(), s.tree.Depth()), 15, statsY, 16, rl.DarkGray)
		if hovering {
			rl.DrawText(fmt.Sprintf("Query hits: %d", len(hits)), 15, statsY+20, 16, rl.DarkGray)
		}

		// Control panel
		panelX := float32(previewX + previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Quadtree Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rebuild := false
		respawn := false

		rl.DrawText("Threshold (entries before split)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		if v := int(slider(panelX, panelY, "1", "32", float32(params.Threshold), 1, 32, fmt.Sprintf("%d", params.Threshold))); v != params.Threshold {
			params.Threshold = v
			rebuild = true
		}
		panelY += 35

		rl.DrawText("Max depth", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		if v := int(slider(panelX, panelY, "0", "10", float32(params.MaxDepth), 0, 10, fmt.Sprintf("%d", params.MaxDepth))); v != params.MaxDepth {
			params.MaxDepth = v
			rebuild = true
		}
		panelY += 35

		rl.DrawText("Boxes", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		if v := int(slider(panelX, panelY, "10", "2000", float32(params.Count), 10, 2000, fmt.Sprintf("%d", params.Count))); v != params.Count {
			params.Count = v
			respawn = true
		}
		panelY += 35

		rl.DrawText("Box size", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		if v := slider(panelX, panelY, "2", "80", params.Size, 2, 80, fmt.Sprintf("%.0f", params.Size)); v != params.Size {
			params.Size = v
			respawn = true
		}
		panelY += 35

		rl.DrawText("Speed", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		if v := slider(panelX, panelY, "0", "200", params.Speed, 0, 200, fmt.Sprintf("%.0f", params.Speed)); v != params.Speed {
			params.Speed = v
			respawn = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(running, "Pause", "Run")) {
			running = !running
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			respawn = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			respawn = true
		}
		panelY += 55

		switch {
		case respawn:
			s = newScene(params)
		case rebuild:
			s.rebuild(params)
		}

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yaml := yamlSnippet(params)
		rl.DrawText(yaml, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

// slider draws a labelled slider bar with its value to the right.
func slider(x, y float32, left, right string, value, lo, hi float32, shown string) float32 {
	v := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: float32(panelWidth - 80), Height: 20}, left, right, value, lo, hi)
	rl.DrawText(shown, int32(x+float32(panelWidth-70)), int32(y+2), 16, rl.DarkGray)
	return v
}

func yamlSnippet(p TreeParams) string {
	return fmt.Sprintf("quadtree:\n  threshold: %d\n  max_depth: %d", p.Threshold, p.MaxDepth)
}

func toScreen(b geom.AABB) rl.Rectangle {
	return rl.Rectangle{X: float32(b.X) + previewX, Y: float32(b.Y) + previewY, Width: float32(b.Width), Height: float32(b.Height)}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
