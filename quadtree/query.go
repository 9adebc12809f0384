package quadtree

import "github.com/pthm-cable/menagerie/geom"

// Predicate filters query candidates. A nil predicate accepts everything.
type Predicate[T Element] func(T) bool

// Collisions returns every element intersecting e's current bounds, e excluded.
// Allocates the result; use CollisionsInto on hot paths.
func (t *Tree[T]) Collisions(e T, pred Predicate[T]) []T {
	return t.CollisionsInto(nil, e, pred)
}

// CollisionsInto appends every element intersecting e's current bounds to dst,
// e excluded, and returns the extended slice.
func (t *Tree[T]) CollisionsInto(dst []T, e T, pred Predicate[T]) []T {
	return t.collect(dst, e.Bounds(), e, true, pred)
}

// Query returns every element intersecting area.
func (t *Tree[T]) Query(area geom.AABB, pred Predicate[T]) []T {
	return t.QueryInto(nil, area, pred)
}

// QueryInto appends every element intersecting area to dst.
func (t *Tree[T]) QueryInto(dst []T, area geom.AABB, pred Predicate[T]) []T {
	var none T
	return t.collect(dst, area, none, false, pred)
}

// Collides reports whether any element intersects area.
func (t *Tree[T]) Collides(area geom.AABB, pred Predicate[T]) bool {
	var none T
	return t.any(area, none, false, pred)
}

// CollidesWith reports whether any element other than e intersects e's bounds.
func (t *Tree[T]) CollidesWith(e T, pred Predicate[T]) bool {
	return t.any(e.Bounds(), e, true, pred)
}

func (t *Tree[T]) collect(dst []T, area geom.AABB, self T, skipSelf bool, pred Predicate[T]) []T {
	if !t.root.bounds.Intersects(area) {
		return dst
	}

	stack := t.lists.Borrow()
	stack.items = append(stack.items, t.root)
	for len(stack.items) > 0 {
		n := stack.items[len(stack.items)-1]
		stack.items = stack.items[:len(stack.items)-1]

		for i := range n.entries {
			en := &n.entries[i]
			if skipSelf && en.elem == self {
				continue
			}
			if !en.box.Intersects(area) {
				continue
			}
			if pred != nil && !pred(en.elem) {
				continue
			}
			dst = append(dst, en.elem)
		}
		stack.items = pushChildren(stack.items, n, area)
	}
	t.lists.Return(stack)

	return dst
}

func (t *Tree[T]) any(area geom.AABB, self T, skipSelf bool, pred Predicate[T]) bool {
	if !t.root.bounds.Intersects(area) {
		return false
	}

	found := false
	stack := t.lists.Borrow()
	stack.items = append(stack.items, t.root)
	for len(stack.items) > 0 && !found {
		n := stack.items[len(stack.items)-1]
		stack.items = stack.items[:len(stack.items)-1]

		for i := range n.entries {
			en := &n.entries[i]
			if skipSelf && en.elem == self {
				continue
			}
			if en.box.Intersects(area) && (pred == nil || pred(en.elem)) {
				found = true
				break
			}
		}
		stack.items = pushChildren(stack.items, n, area)
	}
	t.lists.Return(stack)

	return found
}

// pushChildren appends the non-empty children of n that intersect area.
func pushChildren[T Element](stack []*node[T], n *node[T], area geom.AABB) []*node[T] {
	if n.children == nil {
		return stack
	}
	for _, c := range n.children {
		if c.count > 0 && c.bounds.Intersects(area) {
			stack = append(stack, c)
		}
	}
	return stack
}

// NodeInfo describes one node during Traverse.
type NodeInfo struct {
	Bounds  geom.AABB
	Level   int
	Entries int // elements stored at this node
	Count   int // elements in this subtree
	Leaf    bool
}

// Traverse visits every node exactly once, breadth first.
func (t *Tree[T]) Traverse(fn func(NodeInfo)) {
	queue := t.lists.Borrow()
	queue.items = append(queue.items, t.root)
	for head := 0; head < len(queue.items); head++ {
		n := queue.items[head]
		fn(NodeInfo{
			Bounds:  n.bounds,
			Level:   n.level,
			Entries: len(n.entries),
			Count:   n.count,
			Leaf:    n.leaf(),
		})
		if n.children != nil {
			queue.items = append(queue.items, n.children[:]...)
		}
	}
	t.lists.Return(queue)
}

// NodeCount returns the number of nodes, root included.
func (t *Tree[T]) NodeCount() int {
	count := 0
	t.Traverse(func(NodeInfo) { count++ })
	return count
}

// Depth returns how many levels below the root the deepest node sits.
func (t *Tree[T]) Depth() int {
	deepest := t.root.level
	t.Traverse(func(n NodeInfo) {
		if n.Level > deepest {
			deepest = n.Level
		}
	})
	return deepest - t.root.level
}
