package systems

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/menagerie/components"
	"github.com/pthm-cable/menagerie/geom"
	"github.com/pthm-cable/menagerie/quadtree"
)

// ErrNotInitialized is the panic value cause when the bounds index is used
// outside Init/Cleanup.
var ErrNotInitialized = errors.New("not initialized")

// AgentFilter selects agents during a bounds index query.
type AgentFilter = quadtree.Predicate[*components.Agent]

// BoundsConfig configures a BoundsIndex.
type BoundsConfig struct {
	Threshold int
	MaxDepth  int
	Excluded  []components.Kind // kinds never stored in the index
}

// BoundsIndex is the level-scoped quadtree used for sight, reach and
// proximity queries. It exists between Init and Cleanup; every other call
// outside that window panics.
type BoundsIndex struct {
	cfg      BoundsConfig
	excluded [components.KindCount]bool
	tree     *quadtree.Tree[*components.Agent]
}

// NewBoundsIndex creates an index that still needs Init.
func NewBoundsIndex(cfg BoundsConfig) *BoundsIndex {
	b := &BoundsIndex{cfg: cfg}
	for _, k := range cfg.Excluded {
		if k < components.KindCount {
			b.excluded[k] = true
		}
	}
	return b
}

// Init builds the tree for a level covering bounds. Calling Init again
// replaces the tree and forgets every agent.
func (b *BoundsIndex) Init(bounds geom.AABB) {
	if b.tree != nil {
		b.tree.Clear()
	}
	b.tree = quadtree.New[*components.Agent](quadtree.Config{
		Bounds:    bounds,
		Threshold: b.cfg.Threshold,
		MaxDepth:  b.cfg.MaxDepth,
	})
	slog.Debug("bounds index ready", "bounds", bounds.String(), "threshold", b.cfg.Threshold, "max_depth", b.cfg.MaxDepth)
}

// Cleanup drops the tree. Handles held by agents stop being live.
func (b *BoundsIndex) Cleanup() {
	if b.tree == nil {
		return
	}
	b.tree.Clear()
	b.tree = nil
}

// Ready reports whether Init has been called since the last Cleanup.
func (b *BoundsIndex) Ready() bool {
	return b.tree != nil
}

func (b *BoundsIndex) mustTree(op string) *quadtree.Tree[*components.Agent] {
	if b.tree == nil {
		panic(fmt.Errorf("bounds index: %s: %w", op, ErrNotInitialized))
	}
	return b.tree
}

// Tracks reports whether agents of kind k are stored.
func (b *BoundsIndex) Tracks(k components.Kind) bool {
	return k >= components.KindCount || !b.excluded[k]
}

// Insert stores a and records its handle on it. Excluded kinds are ignored and
// an agent already stored is left where it is. Returns whether a now occupies
// the tree.
func (b *BoundsIndex) Insert(a *components.Agent) bool {
	t := b.mustTree("insert")
	if !b.Tracks(a.Kind) {
		return false
	}
	if h := a.Handle(); h != nil && h.Tree() == t && h.Live() {
		return true
	}
	h := t.Insert(a)
	a.SetHandle(h)
	return h.Live()
}

// Move re-homes a after its position or shape changed.
func (b *BoundsIndex) Move(a *components.Agent) {
	t := b.mustTree("move")
	h := a.Handle()
	if h == nil || h.Tree() != t {
		return
	}
	h.Update(a.Bounds())
}

// Remove deletes a using the bounds it was last stored under.
func (b *BoundsIndex) Remove(a *components.Agent) bool {
	t := b.mustTree("remove")
	h := a.Handle()
	if h == nil || h.Tree() != t {
		return false
	}
	a.SetHandle(nil)
	return h.Remove()
}

// Len returns the number of stored agents.
func (b *BoundsIndex) Len() int {
	return b.mustTree("len").Len()
}

// Bounds returns the area covered by the tree.
func (b *BoundsIndex) Bounds() geom.AABB {
	return b.mustTree("bounds").Bounds()
}

// Near appends to dst every agent intersecting area that passes filter.
func (b *BoundsIndex) Near(dst []*components.Agent, area geom.AABB, filter AgentFilter) []*components.Agent {
	return b.mustTree("near").QueryInto(dst, area, filter)
}

// Sees appends to dst every other agent whose centre lies within radius of
// a's centre and passes filter.
func (b *BoundsIndex) Sees(dst []*components.Agent, a *components.Agent, radius float64, filter AgentFilter) []*components.Agent {
	t := b.mustTree("sees")
	centre := a.Bounds().Center()
	area := geom.FromCenter(centre, radius, radius)

	start := len(dst)
	dst = t.QueryInto(dst, area, filter)

	// Square query, round sight.
	rr := radius * radius
	n := start
	for _, other := range dst[start:] {
		if other == a {
			continue
		}
		d := r2.Sub(other.Bounds().Center(), centre)
		if r2.Norm2(d) <= rr {
			dst[n] = other
			n++
		}
	}
	clear(dst[n:])
	return dst[:n]
}

// Reaches reports whether any other agent passing filter overlaps a's bounds
// grown by margin.
func (b *BoundsIndex) Reaches(a *components.Agent, margin float64, filter AgentFilter) bool {
	t := b.mustTree("reaches")
	return t.Collides(a.Bounds().Expand(margin), func(other *components.Agent) bool {
		return other != a && (filter == nil || filter(other))
	})
}

// Traverse visits every node of the tree breadth first.
func (b *BoundsIndex) Traverse(fn func(quadtree.NodeInfo)) {
	b.mustTree("traverse").Traverse(fn)
}

// Depth returns the depth of the deepest node.
func (b *BoundsIndex) Depth() int {
	return b.mustTree("depth").Depth()
}

// NodeCount returns the number of tree nodes.
func (b *BoundsIndex) NodeCount() int {
	return b.mustTree("node count").NodeCount()
}
