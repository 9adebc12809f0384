package collision

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/menagerie/geom"
)

// StepCount is how many sub-steps MoveOwner splits a displacement into.
const StepCount = 10

// Owner is the entity a body belongs to. The body never caches the owner's
// position; it asks on every access.
type Owner interface {
	Position() r2.Vec
	Translate(d r2.Vec)
}

// Listener receives contact events for a pair of bodies.
type Listener func(self, other *Body)

// cellSpan is an inclusive range of grid cells.
type cellSpan struct {
	x0, y0, x1, y1 int
	ok             bool
}

// Body is a collision shape attached to an owner.
type Body struct {
	Category Tags // what this body is
	Targets  Tags // categories this body reacts to

	owner Owner
	local geom.AABB

	grid  *Grid
	span  cellSpan // cells occupied since the last Insert
	index int      // position in grid.bodies, -1 when unregistered
	stamp uint64   // last grid query that visited this body

	onEnter []Listener
	onStay  []Listener
	onLeave []Listener
}

// NewBody creates a body with a shape in owner-local coordinates.
func NewBody(owner Owner, local geom.AABB, category, targets Tags) *Body {
	return &Body{
		Category: category,
		Targets:  targets,
		owner:    owner,
		local:    local,
		index:    -1,
	}
}

// Owner returns the entity the body belongs to.
func (b *Body) Owner() Owner {
	return b.owner
}

// Local returns the shape in owner-local coordinates.
func (b *Body) Local() geom.AABB {
	return b.local
}

// SetLocal replaces the shape, re-homing the body if it is registered.
func (b *Body) SetLocal(local geom.AABB) {
	if b.grid == nil {
		b.local = local
		return
	}
	g := b.grid
	g.Remove(b)
	b.local = local
	g.Insert(b)
}

// Bounds returns the world-space AABB: the local shape offset by the owner's
// current position.
func (b *Body) Bounds() geom.AABB {
	return b.local.Translated(b.owner.Position())
}

// Grid returns the grid the body is registered in, or nil.
func (b *Body) Grid() *Grid {
	return b.grid
}

// Registered reports whether the body is in a grid.
func (b *Body) Registered() bool {
	return b.grid != nil
}

// OnEnter registers a callback for the first tick a pair overlaps.
func (b *Body) OnEnter(fn Listener) {
	b.onEnter = append(b.onEnter, fn)
}

// OnStay registers a callback for every later tick a pair keeps overlapping.
func (b *Body) OnStay(fn Listener) {
	b.onStay = append(b.onStay, fn)
}

// OnLeave registers a callback for the tick a pair stops overlapping.
func (b *Body) OnLeave(fn Listener) {
	b.onLeave = append(b.onLeave, fn)
}

// HasListeners reports whether any contact callback is registered.
func (b *Body) HasListeners() bool {
	return len(b.onEnter) > 0 || len(b.onStay) > 0 || len(b.onLeave) > 0
}

// Sync re-homes the body after its owner was moved by something other than
// MoveOwner (teleports, spawns). Cells are recomputed from the current bounds.
func (b *Body) Sync() {
	if b.grid == nil {
		return
	}
	g := b.grid
	g.Remove(b)
	g.Insert(b)
}

// MoveOwner moves the owner by up to delta and returns the displacement
// actually achieved.
//
// The body leaves the grid for the duration so it never collides with its own
// footprint. The displacement is applied in StepCount sub-steps; each axis is
// tried on its own, so a body blocked on one axis keeps sliding along the
// other. Resolution stops at the first sub-step where neither axis moves.
func (b *Body) MoveOwner(delta r2.Vec) r2.Vec {
	g := b.grid
	if g == nil {
		b.owner.Translate(delta)
		return delta
	}

	g.Remove(b)

	step := r2.Scale(1.0/StepCount, delta)
	work := b.Bounds()
	var moved r2.Vec

	for i := 0; i < StepCount; i++ {
		progressed := false

		if step.X != 0 {
			prev := work.X
			work.X += step.X
			if g.free(work, b) {
				b.owner.Translate(r2.Vec{X: step.X})
				moved.X += step.X
				progressed = true
			} else {
				work.X = prev
			}
		}

		if step.Y != 0 {
			prev := work.Y
			work.Y += step.Y
			if g.free(work, b) {
				b.owner.Translate(r2.Vec{Y: step.Y})
				moved.Y += step.Y
				progressed = true
			} else {
				work.Y = prev
			}
		}

		if !progressed {
			break
		}
	}

	g.Insert(b)
	g.stats.Moves++
	return moved
}
