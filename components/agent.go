package components

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/menagerie/geom"
	"github.com/pthm-cable/menagerie/quadtree"
)

// Anchor exposes an entity's Position component as a collision.Owner. The
// position is looked up on every call, never cached.
type Anchor struct {
	entity ecs.Entity
	posMap *ecs.Map1[Position]
}

// NewAnchor creates an anchor for e.
func NewAnchor(e ecs.Entity, posMap *ecs.Map1[Position]) *Anchor {
	return &Anchor{entity: e, posMap: posMap}
}

// Entity returns the anchored entity.
func (a *Anchor) Entity() ecs.Entity {
	return a.entity
}

// Position returns the entity's current position.
func (a *Anchor) Position() r2.Vec {
	return a.posMap.Get(a.entity).Vec()
}

// Translate moves the entity by d.
func (a *Anchor) Translate(d r2.Vec) {
	pos := a.posMap.Get(a.entity)
	pos.X += d.X
	pos.Y += d.Y
}

// Agent is an entity's presence in the bounds index. Agents are compared by
// identity, so they are always handled by pointer.
type Agent struct {
	Kind  Kind
	Shape geom.AABB // around the entity position

	anchor *Anchor
	handle *quadtree.Handle[*Agent]
}

// NewAgent creates an agent whose bounds follow anchor.
func NewAgent(anchor *Anchor, kind Kind, shape geom.AABB) *Agent {
	return &Agent{Kind: kind, Shape: shape, anchor: anchor}
}

// Entity returns the entity the agent represents.
func (a *Agent) Entity() ecs.Entity {
	return a.anchor.entity
}

// Position returns the entity's current position.
func (a *Agent) Position() r2.Vec {
	return a.anchor.Position()
}

// Bounds returns the world-space bounds of the agent.
func (a *Agent) Bounds() geom.AABB {
	return a.Shape.Translated(a.anchor.Position())
}

// Handle returns the agent's bounds index handle, or nil if never indexed.
func (a *Agent) Handle() *quadtree.Handle[*Agent] {
	return a.handle
}

// SetHandle records the handle returned by the index on insertion.
func (a *Agent) SetHandle(h *quadtree.Handle[*Agent]) {
	a.handle = h
}
