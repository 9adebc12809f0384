// Package quadtree provides a dynamic region quadtree over elements with
// axis-aligned bounds.
//
// Elements live at the deepest node whose quadrant fully contains them.
// Elements straddling a center line stay at the ancestor node, so nothing is
// stored twice. Leaves split when they reach the threshold and collapse back
// once a subtree holds threshold elements or fewer.
package quadtree

import (
	"github.com/pthm-cable/menagerie/geom"
	"github.com/pthm-cable/menagerie/pool"
)

// Element is anything the tree can index. Elements are compared by identity,
// so pointer types are the natural choice.
type Element interface {
	comparable
	Bounds() geom.AABB
}

// Quadrant indices into a node's children.
const (
	NW = iota
	NE
	SW
	SE
)

// Config holds tree construction parameters.
type Config struct {
	Bounds    geom.AABB // Area covered by the root node
	Threshold int       // Entries a leaf may hold before splitting
	MaxDepth  int       // Deepest level a node may split into
	Level     int       // Level of the root node
}

type entry[T Element] struct {
	elem   T
	box    geom.AABB // bounds at insertion time
	handle *Handle[T]
}

type node[T Element] struct {
	bounds   geom.AABB
	level    int
	children *[4]*node[T]
	entries  []entry[T]
	count    int // entries in this subtree, including own
}

func (n *node[T]) leaf() bool {
	return n.children == nil
}

// nodeList backs both the DFS stack and the BFS queue.
type nodeList[T Element] struct {
	items []*node[T]
}

// Tree is a dynamic quadtree. It is not safe for concurrent use.
type Tree[T Element] struct {
	root      *node[T]
	threshold int
	maxDepth  int
	lists     *pool.Pool[*nodeList[T]]
	handles   map[T]*Handle[T] // live elements
}

// New creates an empty tree.
func New[T Element](cfg Config) *Tree[T] {
	threshold := cfg.Threshold
	if threshold < 1 {
		threshold = 1
	}
	maxDepth := cfg.MaxDepth
	if maxDepth < cfg.Level {
		maxDepth = cfg.Level
	}

	return &Tree[T]{
		root:      &node[T]{bounds: cfg.Bounds, level: cfg.Level},
		threshold: threshold,
		maxDepth:  maxDepth,
		handles:   make(map[T]*Handle[T]),
		lists: pool.New(
			func() *nodeList[T] { return &nodeList[T]{items: make([]*node[T], 0, 32)} },
			pool.WithReset(func(l *nodeList[T]) {
				clear(l.items)
				l.items = l.items[:0]
			}),
			pool.WithPrewarm[*nodeList[T]](2),
		),
	}
}

// Bounds returns the area covered by the root node.
func (t *Tree[T]) Bounds() geom.AABB {
	return t.root.bounds
}

// Len returns the number of indexed elements.
func (t *Tree[T]) Len() int {
	return t.root.count
}

// Clear drops every element and child node. Outstanding handles become dead.
func (t *Tree[T]) Clear() {
	for _, h := range t.handles {
		h.live = false
	}
	clear(t.handles)
	t.root = &node[T]{bounds: t.root.bounds, level: t.root.level}
}

// Insert adds e using its current bounds and returns a handle for later
// updates. Inserting an element that is already stored returns its existing
// handle and changes nothing. A zero-area element is skipped; the returned
// handle is not live until Update gives it some geometry.
func (t *Tree[T]) Insert(e T) *Handle[T] {
	if h, ok := t.handles[e]; ok {
		return h
	}
	h := &Handle[T]{tree: t, elem: e, box: e.Bounds()}
	if h.box.IsEmpty() {
		return h
	}
	t.add(entry[T]{elem: e, box: h.box, handle: h})
	return h
}

// Contains reports whether e is currently stored.
func (t *Tree[T]) Contains(e T) bool {
	_, ok := t.handles[e]
	return ok
}

// Remove deletes e, locating it by the bounds it was stored under.
func (t *Tree[T]) Remove(e T) bool {
	h, ok := t.handles[e]
	if !ok {
		return false
	}
	return t.drop(h)
}

// add stores en and marks its handle live. Any other live handle for the same
// element is dropped first so an element is never stored twice.
func (t *Tree[T]) add(en entry[T]) {
	if old, ok := t.handles[en.elem]; ok && old != en.handle {
		t.drop(old)
	}
	t.insert(t.root, en)
	en.handle.live = true
	t.handles[en.elem] = en.handle
}

// drop removes the entry behind h.
func (t *Tree[T]) drop(h *Handle[T]) bool {
	if !t.remove(t.root, h.elem, h.box) {
		return false
	}
	h.live = false
	delete(t.handles, h.elem)
	return true
}

func (t *Tree[T]) insert(n *node[T], en entry[T]) {
	for {
		n.count++
		if n.leaf() && len(n.entries) >= t.threshold && n.level < t.maxDepth {
			t.split(n)
		}

		q := -1
		if !n.leaf() {
			q = n.quadrant(en.box)
		}
		if q < 0 {
			n.entries = append(n.entries, en)
			return
		}
		n = n.children[q]
	}
}

func (t *Tree[T]) remove(n *node[T], e T, box geom.AABB) bool {
	removed := false
	if !n.leaf() {
		if q := n.quadrant(box); q >= 0 {
			removed = t.remove(n.children[q], e, box)
		}
	}
	if !removed {
		removed = n.removeEntry(e)
	}
	if !removed {
		return false
	}

	n.count--
	if !n.leaf() && n.count <= t.threshold {
		t.merge(n)
	}
	return true
}

// removeEntry deletes e from the node's own list. Order is not preserved.
func (n *node[T]) removeEntry(e T) bool {
	for i := range n.entries {
		if n.entries[i].elem != e {
			continue
		}
		last := len(n.entries) - 1
		n.entries[i] = n.entries[last]
		n.entries[last] = entry[T]{}
		n.entries = n.entries[:last]
		return true
	}
	return false
}

// split creates four children and pushes down every entry that fits one.
func (t *Tree[T]) split(n *node[T]) {
	b := n.bounds
	midX := b.X + b.Width/2
	midY := b.Y + b.Height/2
	level := n.level + 1

	n.children = &[4]*node[T]{
		NW: {bounds: geom.New(b.X, b.Y, midX-b.X, midY-b.Y), level: level},
		NE: {bounds: geom.New(midX, b.Y, b.Right()-midX, midY-b.Y), level: level},
		SW: {bounds: geom.New(b.X, midY, midX-b.X, b.Bottom()-midY), level: level},
		SE: {bounds: geom.New(midX, midY, b.Right()-midX, b.Bottom()-midY), level: level},
	}

	kept := n.entries[:0]
	for _, en := range n.entries {
		if q := n.quadrant(en.box); q >= 0 {
			t.insert(n.children[q], en)
			continue
		}
		kept = append(kept, en)
	}
	clear(n.entries[len(kept):])
	n.entries = kept
}

// merge collapses the children into n when the subtree is small enough.
func (t *Tree[T]) merge(n *node[T]) {
	if n.leaf() {
		return
	}
	total := len(n.entries)
	for _, c := range n.children {
		total += c.count
	}
	if total > t.threshold {
		return
	}

	for _, c := range n.children {
		t.merge(c)
		n.entries = append(n.entries, c.entries...)
	}
	n.children = nil
}

// quadrant returns the child index that fully contains box, or -1 when box
// straddles a center line or leaves the node.
func (n *node[T]) quadrant(box geom.AABB) int {
	if !n.bounds.Contains(box) {
		return -1
	}
	midX := n.bounds.X + n.bounds.Width/2
	midY := n.bounds.Y + n.bounds.Height/2

	left := box.Right() <= midX
	right := box.Left() >= midX
	top := box.Bottom() <= midY
	bottom := box.Top() >= midY

	switch {
	case top && left:
		return NW
	case top && right:
		return NE
	case bottom && left:
		return SW
	case bottom && right:
		return SE
	}
	return -1
}
