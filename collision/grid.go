// Package collision provides the broad-phase grid used for physical collision
// and blocked movement, and the bodies that live in it.
package collision

import (
	"math"

	"github.com/pthm-cable/menagerie/geom"
)

// contact is an ordered pair: events for it are delivered to self.
type contact struct {
	self, other *Body
}

type eventKind uint8

const (
	eventEnter eventKind = iota
	eventStay
	eventLeave
)

type event struct {
	kind eventKind
	c    contact
}

// Stats counts grid activity since the last TakeStats.
type Stats struct {
	Queries int // Query/Collides calls
	Moves   int // MoveOwner calls
	Enters  int
	Stays   int
	Leaves  int
	Pairs   int // active contact pairs after the last PostUpdate
}

// Work is a running count of grid operations. Unlike Stats it is never reset,
// so callers can difference two readings to cost a stretch of code.
type Work struct {
	Queries int
	Moves   int
	Events  int // enter, stay and leave callbacks
}

// Add returns the sum of w and o.
func (w Work) Add(o Work) Work {
	return Work{Queries: w.Queries + o.Queries, Moves: w.Moves + o.Moves, Events: w.Events + o.Events}
}

// Sub returns the operations done between o and w.
func (w Work) Sub(o Work) Work {
	return Work{Queries: w.Queries - o.Queries, Moves: w.Moves - o.Moves, Events: w.Events - o.Events}
}

func (w Work) add(s Stats) Work {
	w.Queries += s.Queries
	w.Moves += s.Moves
	w.Events += s.Enters + s.Stays + s.Leaves
	return w
}

// Grid is a uniform grid of cell buckets covering [0,width*cellSize) x
// [0,height*cellSize). Every registered body sits in the bucket of each cell
// its bounds span, clamped to the grid. Not safe for concurrent use.
type Grid struct {
	width    int
	height   int
	cellSize float64
	cells    [][]*Body // row-major: cells[cy*width+cx]
	bodies   []*Body
	stamp    uint64

	// contact snapshots for the per-tick diff
	active      map[contact]struct{}
	current     map[contact]struct{}
	activeOrder []contact
	nextOrder   []contact

	// reusable buffers
	iter    []*Body
	scratch []*Body
	events  []event

	stats Stats
	done  Work // folded in from stats on every reset
}

// NewGrid creates a grid of width x height cells, each cellSize units square.
// Dimensions are fixed for the grid's lifetime.
func NewGrid(width, height int, cellSize float64) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	cells := make([][]*Body, width*height)
	for i := range cells {
		cells[i] = make([]*Body, 0, 4)
	}

	return &Grid{
		width:    width,
		height:   height,
		cellSize: cellSize,
		cells:    cells,
		active:   make(map[contact]struct{}),
		current:  make(map[contact]struct{}),
	}
}

// Size returns the grid dimensions in cells.
func (g *Grid) Size() (width, height int) {
	return g.width, g.height
}

// CellSize returns the side length of one cell in world units.
func (g *Grid) CellSize() float64 {
	return g.cellSize
}

// Bounds returns the world area covered by the grid.
func (g *Grid) Bounds() geom.AABB {
	return geom.New(0, 0, float64(g.width)*g.cellSize, float64(g.height)*g.cellSize)
}

// Len returns the number of registered bodies.
func (g *Grid) Len() int {
	return len(g.bodies)
}

// Cell returns the bodies in cell (cx, cy). The slice is owned by the grid.
func (g *Grid) Cell(cx, cy int) []*Body {
	if cx < 0 || cx >= g.width || cy < 0 || cy >= g.height {
		return nil
	}
	return g.cells[cy*g.width+cx]
}

// Each calls fn for every registered body. fn must not insert or remove bodies.
func (g *Grid) Each(fn func(*Body)) {
	for _, b := range g.bodies {
		fn(b)
	}
}

// TakeStats returns the counters accumulated since the last call and resets them.
func (g *Grid) TakeStats() Stats {
	s := g.stats
	s.Pairs = len(g.active)
	g.done = g.done.add(g.stats)
	g.stats = Stats{}
	return s
}

// Work returns the operations performed since the grid was created.
func (g *Grid) Work() Work {
	return g.done.add(g.stats)
}

// Insert registers b in every cell its current bounds span. A body already in
// another grid is moved here; inserting twice into the same grid is a no-op.
func (g *Grid) Insert(b *Body) {
	if b.grid == g {
		return
	}
	if b.grid != nil {
		b.grid.Remove(b)
	}

	b.span = g.spanOf(b.Bounds())
	g.forSpan(b.span, func(idx int) {
		g.cells[idx] = append(g.cells[idx], b)
	})

	// Query stamps are per grid; one left over from another grid could
	// collide with ours and hide b.
	b.stamp = 0
	b.grid = g
	b.index = len(g.bodies)
	g.bodies = append(g.bodies, b)
}

// Remove unregisters b, using the cells recorded by the matching Insert.
// Returns false if b is not in this grid.
func (g *Grid) Remove(b *Body) bool {
	if b.grid != g {
		return false
	}

	g.forSpan(b.span, func(idx int) {
		g.cells[idx] = removeBody(g.cells[idx], b)
	})

	last := len(g.bodies) - 1
	moved := g.bodies[last]
	g.bodies[b.index] = moved
	moved.index = b.index
	g.bodies[last] = nil
	g.bodies = g.bodies[:last]

	b.grid = nil
	b.index = -1
	b.span = cellSpan{}
	return true
}

// Reset unregisters every body and forgets all contacts.
func (g *Grid) Reset() {
	for _, b := range g.bodies {
		b.grid = nil
		b.index = -1
		b.span = cellSpan{}
	}
	clear(g.bodies)
	g.bodies = g.bodies[:0]
	for i := range g.cells {
		clear(g.cells[i])
		g.cells[i] = g.cells[i][:0]
	}
	clear(g.active)
	clear(g.current)
	g.activeOrder = g.activeOrder[:0]
	g.nextOrder = g.nextOrder[:0]
	g.done = g.done.add(g.stats)
	g.stats = Stats{}
}

func removeBody(bucket []*Body, b *Body) []*Body {
	for i, c := range bucket {
		if c == b {
			last := len(bucket) - 1
			bucket[i] = bucket[last]
			bucket[last] = nil
			return bucket[:last]
		}
	}
	return bucket
}

// spanOf returns the clamped cell range covered by area. The last column and
// row are the ones holding the exclusive right and bottom edges, minus one when
// an edge sits exactly on a cell boundary, so a box ending on a boundary does
// not spill into the next cell while a fractional overhang still counts.
func (g *Grid) spanOf(area geom.AABB) cellSpan {
	if area.IsEmpty() {
		return cellSpan{}
	}
	return cellSpan{
		x0: g.clampX(int(math.Floor(area.Left() / g.cellSize))),
		y0: g.clampY(int(math.Floor(area.Top() / g.cellSize))),
		x1: g.clampX(int(math.Ceil(area.Right()/g.cellSize)) - 1),
		y1: g.clampY(int(math.Ceil(area.Bottom()/g.cellSize)) - 1),
		ok: true,
	}
}

func (g *Grid) clampX(cx int) int {
	return min(max(cx, 0), g.width-1)
}

func (g *Grid) clampY(cy int) int {
	return min(max(cy, 0), g.height-1)
}

func (g *Grid) forSpan(s cellSpan, fn func(idx int)) {
	if !s.ok {
		return
	}
	for cy := s.y0; cy <= s.y1; cy++ {
		row := cy * g.width
		for cx := s.x0; cx <= s.x1; cx++ {
			fn(row + cx)
		}
	}
}

// Query returns every body intersecting area. Allocates; see QueryInto.
func (g *Grid) Query(area geom.AABB, exclude, filter *Body) []*Body {
	return g.QueryInto(nil, area, exclude, filter)
}

// QueryInto appends to dst every body intersecting area, skipping exclude.
// When filter is non-nil only bodies whose Category overlaps filter.Targets
// are returned. Each body appears once even if it spans several cells.
func (g *Grid) QueryInto(dst []*Body, area geom.AABB, exclude, filter *Body) []*Body {
	g.stats.Queries++
	s := g.spanOf(area)
	if !s.ok {
		return dst
	}

	g.stamp++
	for cy := s.y0; cy <= s.y1; cy++ {
		row := cy * g.width
		for cx := s.x0; cx <= s.x1; cx++ {
			for _, c := range g.cells[row+cx] {
				if c.stamp == g.stamp {
					continue
				}
				c.stamp = g.stamp
				if g.accepts(c, area, exclude, filter) {
					dst = append(dst, c)
				}
			}
		}
	}
	return dst
}

// Collides reports whether any body matching the QueryInto rules intersects
// area. Stops at the first hit.
func (g *Grid) Collides(area geom.AABB, exclude, filter *Body) bool {
	g.stats.Queries++
	s := g.spanOf(area)
	if !s.ok {
		return false
	}

	for cy := s.y0; cy <= s.y1; cy++ {
		row := cy * g.width
		for cx := s.x0; cx <= s.x1; cx++ {
			for _, c := range g.cells[row+cx] {
				if g.accepts(c, area, exclude, filter) {
					return true
				}
			}
		}
	}
	return false
}

func (g *Grid) accepts(c *Body, area geom.AABB, exclude, filter *Body) bool {
	if c == exclude {
		return false
	}
	if filter != nil && !filter.Targets.Overlaps(c.Category) {
		return false
	}
	return c.Bounds().Intersects(area)
}

// IsOutOfBounds reports whether any part of area lies outside the grid.
func (g *Grid) IsOutOfBounds(area geom.AABB) bool {
	maxX := float64(g.width) * g.cellSize
	maxY := float64(g.height) * g.cellSize
	return area.X < 0 || area.Y < 0 || area.Right() > maxX || area.Bottom() > maxY
}

// free reports whether b could occupy area.
func (g *Grid) free(area geom.AABB, b *Body) bool {
	return !g.IsOutOfBounds(area) && !g.Collides(area, b, b)
}

// PostUpdate diffs this tick's contacts against the previous tick's and fires
// enter, stay and leave callbacks. Call once per tick after all movement.
//
// Only bodies with listeners are queried, filtered by their own Targets. All
// events are gathered before any callback runs, so callbacks may move or
// remove bodies. Callback order follows body registration order and is not
// stable across removals.
func (g *Grid) PostUpdate() {
	g.iter = append(g.iter[:0], g.bodies...)
	g.events = g.events[:0]

	for _, b := range g.iter {
		if !b.HasListeners() {
			continue
		}
		g.scratch = g.QueryInto(g.scratch[:0], b.Bounds(), b, b)
		for _, other := range g.scratch {
			c := contact{self: b, other: other}
			if _, seen := g.current[c]; seen {
				continue
			}
			g.current[c] = struct{}{}
			g.nextOrder = append(g.nextOrder, c)

			if _, was := g.active[c]; was {
				g.events = append(g.events, event{kind: eventStay, c: c})
			} else {
				g.events = append(g.events, event{kind: eventEnter, c: c})
			}
		}
	}

	for _, c := range g.activeOrder {
		if _, still := g.current[c]; !still {
			g.events = append(g.events, event{kind: eventLeave, c: c})
		}
	}

	// Replace the snapshot wholesale.
	g.active, g.current = g.current, g.active
	clear(g.current)
	g.activeOrder, g.nextOrder = g.nextOrder, g.activeOrder
	clear(g.nextOrder)
	g.nextOrder = g.nextOrder[:0]

	for _, ev := range g.events {
		self, other := ev.c.self, ev.c.other
		switch ev.kind {
		case eventEnter:
			g.stats.Enters++
			for _, fn := range self.onEnter {
				fn(self, other)
			}
		case eventStay:
			g.stats.Stays++
			for _, fn := range self.onStay {
				fn(self, other)
			}
		case eventLeave:
			g.stats.Leaves++
			for _, fn := range self.onLeave {
				fn(self, other)
			}
		}
	}

	clear(g.events)
	clear(g.iter)
	clear(g.scratch)
}
