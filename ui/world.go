package ui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/menagerie/camera"
	"github.com/pthm-cable/menagerie/collision"
	"github.com/pthm-cable/menagerie/geom"
	"github.com/pthm-cable/menagerie/quadtree"
	"github.com/pthm-cable/menagerie/systems"
)

// depthColors tints quadtree nodes by level.
var depthColors = []rl.Color{
	{R: 255, G: 255, B: 255, A: 90},
	{R: 120, G: 200, B: 255, A: 110},
	{R: 120, G: 255, B: 160, A: 130},
	{R: 255, G: 230, B: 120, A: 150},
	{R: 255, G: 150, B: 90, A: 170},
	{R: 255, G: 90, B: 120, A: 190},
}

func screenRect(cam *camera.Camera, box geom.AABB) rl.Rectangle {
	s := cam.WorldRectToScreen(box)
	return rl.Rectangle{X: float32(s.X), Y: float32(s.Y), Width: float32(s.Width), Height: float32(s.Height)}
}

// DrawBox draws a world-space box, skipping it when off screen.
func DrawBox(cam *camera.Camera, box geom.AABB, color rl.Color, filled bool) {
	if !cam.IsVisible(box) {
		return
	}
	rect := screenRect(cam, box)
	if filled {
		rl.DrawRectangleRec(rect, color)
	} else {
		rl.DrawRectangleLinesEx(rect, 1, color)
	}
}

// visibleCells returns the inclusive cell range of grid that is on screen.
func visibleCells(cam *camera.Camera, grid *collision.Grid) (x0, y0, x1, y1 int, ok bool) {
	view := cam.VisibleBounds()
	size := grid.CellSize()
	w, h := grid.Size()

	x0 = max(0, int(math.Floor(view.X/size)))
	y0 = max(0, int(math.Floor(view.Y/size)))
	x1 = min(w-1, int(math.Floor(view.Right()/size)))
	y1 = min(h-1, int(math.Floor(view.Bottom()/size)))
	return x0, y0, x1, y1, x0 <= x1 && y0 <= y1
}

// DrawGridLines draws the cell boundaries of grid.
func DrawGridLines(cam *camera.Camera, grid *collision.Grid, color rl.Color) {
	x0, y0, x1, y1, ok := visibleCells(cam, grid)
	if !ok {
		return
	}
	size := grid.CellSize()
	top, bottom := float64(y0)*size, float64(y1+1)*size
	left, right := float64(x0)*size, float64(x1+1)*size

	for cx := x0; cx <= x1+1; cx++ {
		drawWorldLine(cam, r2.Vec{X: float64(cx) * size, Y: top}, r2.Vec{X: float64(cx) * size, Y: bottom}, color)
	}
	for cy := y0; cy <= y1+1; cy++ {
		drawWorldLine(cam, r2.Vec{X: left, Y: float64(cy) * size}, r2.Vec{X: right, Y: float64(cy) * size}, color)
	}
}

// DrawOccupancy shades each visible cell by how many bodies it holds,
// saturating at full.
func DrawOccupancy(cam *camera.Camera, grid *collision.Grid, full int) {
	x0, y0, x1, y1, ok := visibleCells(cam, grid)
	if !ok || full < 1 {
		return
	}
	size := grid.CellSize()
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			n := len(grid.Cell(cx, cy))
			if n == 0 {
				continue
			}
			a := clamp01(float64(n) / float64(full))
			color := rl.Color{R: 255, G: uint8(200 * (1 - a)), B: 60, A: uint8(40 + 120*a)}
			DrawBox(cam, geom.New(float64(cx)*size, float64(cy)*size, size, size), color, true)
		}
	}
}

// DrawQuadtree outlines every bounds index node, tinted by depth.
func DrawQuadtree(cam *camera.Camera, index *systems.BoundsIndex) {
	if !index.Ready() {
		return
	}
	index.Traverse(func(n quadtree.NodeInfo) {
		color := depthColors[min(n.Level, len(depthColors)-1)]
		DrawBox(cam, n.Bounds, color, false)
	})
}

// DrawCircle draws a world-space circle outline.
func DrawCircle(cam *camera.Camera, centre r2.Vec, radius float64, color rl.Color) {
	sx, sy := cam.WorldToScreen(centre.X, centre.Y)
	rl.DrawCircleLines(int32(sx), int32(sy), float32(radius*cam.Zoom), color)
}

// DrawLink draws a world-space line between two points.
func DrawLink(cam *camera.Camera, a, b r2.Vec, color rl.Color) {
	drawWorldLine(cam, a, b, color)
}

func drawWorldLine(cam *camera.Camera, a, b r2.Vec, color rl.Color) {
	ax, ay := cam.WorldToScreen(a.X, a.Y)
	bx, by := cam.WorldToScreen(b.X, b.Y)
	rl.DrawLineV(rl.Vector2{X: float32(ax), Y: float32(ay)}, rl.Vector2{X: float32(bx), Y: float32(by)}, color)
}
