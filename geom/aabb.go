// Package geom provides the axis-aligned bounding box used by every spatial index.
package geom

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// AABB is an axis-aligned rectangle anchored at its top-left corner.
// A zero-area AABB means "no geometry" and is never stored in an index.
type AABB struct {
	X, Y          float64
	Width, Height float64
}

// New is a convenience constructor for AABB values.
func New(x, y, w, h float64) AABB {
	return AABB{X: x, Y: y, Width: w, Height: h}
}

// FromCenter builds an AABB centered on c with the given half extents.
func FromCenter(c r2.Vec, hw, hh float64) AABB {
	return AABB{X: c.X - hw, Y: c.Y - hh, Width: hw * 2, Height: hh * 2}
}

func (a AABB) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", a.X, a.Y, a.Width, a.Height)
}

// Position returns the top-left corner.
func (a AABB) Position() r2.Vec {
	return r2.Vec{X: a.X, Y: a.Y}
}

// BottomRight returns the inclusive bottom-right corner, one unit inside the
// exclusive right/bottom edges, for integer-aligned boxes.
func (a AABB) BottomRight() r2.Vec {
	return r2.Vec{X: a.X + a.Width - 1, Y: a.Y + a.Height - 1}
}

// Left returns the minimum X.
func (a AABB) Left() float64 { return a.X }

// Right returns the exclusive maximum X.
func (a AABB) Right() float64 { return a.X + a.Width }

// Top returns the minimum Y.
func (a AABB) Top() float64 { return a.Y }

// Bottom returns the exclusive maximum Y.
func (a AABB) Bottom() float64 { return a.Y + a.Height }

// Center returns the midpoint.
func (a AABB) Center() r2.Vec {
	return r2.Vec{X: a.X + a.Width/2, Y: a.Y + a.Height/2}
}

// Area returns Width*Height.
func (a AABB) Area() float64 {
	return a.Width * a.Height
}

// IsEmpty reports whether a has no area.
func (a AABB) IsEmpty() bool {
	return a.Width <= 0 || a.Height <= 0
}

// Intersects returns true if the half-open extents of a and b overlap on both axes.
// Boxes that only share an edge do not intersect.
func (a AABB) Intersects(b AABB) bool {
	return a.X < b.X+b.Width && a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height && a.Y+a.Height > b.Y
}

// Contains returns true if b lies completely within a.
func (a AABB) Contains(b AABB) bool {
	return b.X >= a.X && b.Y >= a.Y &&
		b.X+b.Width <= a.X+a.Width && b.Y+b.Height <= a.Y+a.Height
}

// ContainsPoint returns true if p lies inside a (right and bottom edges excluded).
func (a AABB) ContainsPoint(p r2.Vec) bool {
	return p.X >= a.X && p.X < a.X+a.Width && p.Y >= a.Y && p.Y < a.Y+a.Height
}

// Offset translates a in place.
func (a *AABB) Offset(v r2.Vec) {
	a.X += v.X
	a.Y += v.Y
}

// Translated returns a copy of a moved by v.
func (a AABB) Translated(v r2.Vec) AABB {
	a.Offset(v)
	return a
}

// Expand grows a by margin on every side.
func (a AABB) Expand(margin float64) AABB {
	return AABB{
		X:      a.X - margin,
		Y:      a.Y - margin,
		Width:  a.Width + margin*2,
		Height: a.Height + margin*2,
	}
}

// Equal compares coordinates. Two distinct AABB values describing the same
// rectangle are equal.
func (a AABB) Equal(b AABB) bool {
	return a.X == b.X && a.Y == b.Y && a.Width == b.Width && a.Height == b.Height
}
