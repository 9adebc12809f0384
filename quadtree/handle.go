package quadtree

import "github.com/pthm-cable/menagerie/geom"

// Handle tracks one inserted element together with the bounds it was stored
// under. Moving an element through its handle removes it using the stored
// bounds before reinserting, so the tree never looks for it in the wrong node.
type Handle[T Element] struct {
	tree *Tree[T]
	elem T
	box  geom.AABB
	live bool
}

// Element returns the indexed element.
func (h *Handle[T]) Element() T {
	return h.elem
}

// Bounds returns the bounds the element is currently stored under.
func (h *Handle[T]) Bounds() geom.AABB {
	return h.box
}

// Tree returns the tree the handle was issued by.
func (h *Handle[T]) Tree() *Tree[T] {
	return h.tree
}

// Live reports whether the element is currently stored in the tree.
func (h *Handle[T]) Live() bool {
	return h.live
}

// Update re-homes the element under box. An empty box leaves the element out
// of the tree until a later Update gives it geometry again.
func (h *Handle[T]) Update(box geom.AABB) {
	if h.live {
		if box.Equal(h.box) {
			return
		}
		h.tree.drop(h)
	}
	h.box = box
	if box.IsEmpty() {
		return
	}
	h.tree.add(entry[T]{elem: h.elem, box: box, handle: h})
}

// Remove deletes the element from the tree. Returns false if it was not stored.
func (h *Handle[T]) Remove() bool {
	if !h.live {
		return false
	}
	return h.tree.drop(h)
}
