package telemetry

import (
	"github.com/pthm-cable/menagerie/collision"
	"github.com/pthm-cable/menagerie/systems"
)

// Collector accumulates per-tick counters within time windows and produces
// WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	grid       collision.Stats
	movement   systems.MovementStats
	contacts   systems.ContactStats
	departures int
	sight      []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordGrid adds one tick of grid counters.
func (c *Collector) RecordGrid(st collision.Stats) {
	c.grid.Queries += st.Queries
	c.grid.Moves += st.Moves
	c.grid.Enters += st.Enters
	c.grid.Stays += st.Stays
	c.grid.Leaves += st.Leaves
	c.grid.Pairs += st.Pairs
}

// RecordMovement adds one tick of movement counters.
func (c *Collector) RecordMovement(st systems.MovementStats) {
	c.movement.Moved += st.Moved
	c.movement.Blocked += st.Blocked
}

// RecordContacts adds one tick of trigger counters. Occupancy is a level, so
// the latest value wins.
func (c *Collector) RecordContacts(st systems.ContactStats) {
	c.contacts.ViewingEnters += st.ViewingEnters
	c.contacts.ViewingTicks += st.ViewingTicks
	c.contacts.ViewingLeaves += st.ViewingLeaves
	c.contacts.Drinks += st.Drinks
	c.contacts.Occupancy = st.Occupancy
}

// RecordSight appends sight query result sizes.
func (c *Collector) RecordSight(sizes []float64) {
	c.sight = append(c.sight, sizes...)
}

// RecordDeparture records a tourist leaving the park.
func (c *Collector) RecordDeparture() {
	c.departures++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Population holds live entity counts at window end.
type Population struct {
	Animals  int
	Tourists int
	Vehicles int
}

// IndexShape describes the spatial indexes at window end.
type IndexShape struct {
	GridBodies int
	Indexed    int
	TreeNodes  int
	TreeDepth  int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, pop Population, shape IndexShape) WindowStats {
	var blockRate float64
	if c.movement.Moved > 0 {
		blockRate = float64(c.movement.Blocked) / float64(c.movement.Moved)
	}

	mean, std, p50, p90, peak := ComputeQueryStats(c.sight)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Animals:  pop.Animals,
		Tourists: pop.Tourists,
		Vehicles: pop.Vehicles,

		GridBodies:   shape.GridBodies,
		IndexedCount: shape.Indexed,
		TreeNodes:    shape.TreeNodes,
		TreeDepth:    shape.TreeDepth,

		GridQueries:  c.grid.Queries,
		GridMoves:    c.grid.Moves,
		ContactPairs: c.grid.Pairs,
		Enters:       c.grid.Enters,
		Stays:        c.grid.Stays,
		Leaves:       c.grid.Leaves,

		Moved:     c.movement.Moved,
		Blocked:   c.movement.Blocked,
		BlockRate: blockRate,

		ViewingEnters: c.contacts.ViewingEnters,
		ViewingLeaves: c.contacts.ViewingLeaves,
		ViewingTicks:  c.contacts.ViewingTicks,
		Occupancy:     c.contacts.Occupancy,
		Drinks:        c.contacts.Drinks,
		Departures:    c.departures,

		SightMean: mean,
		SightStd:  std,
		SightP50:  p50,
		SightP90:  p90,
		SightMax:  peak,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.grid = collision.Stats{}
	c.movement = systems.MovementStats{}
	occupancy := c.contacts.Occupancy
	c.contacts = systems.ContactStats{Occupancy: occupancy}
	c.departures = 0
	c.sight = c.sight[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
