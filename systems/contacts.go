package systems

import (
	"github.com/pthm-cable/menagerie/collision"
)

// ContactStats counts trigger events since the last TakeStats.
type ContactStats struct {
	ViewingEnters int // tourists arriving at a viewing area
	ViewingTicks  int // tourist ticks spent at a viewing area
	ViewingLeaves int
	Drinks        int // animals arriving at a water hole
	Occupancy     int // tourists currently at viewing areas
}

// ContactSystem listens on trigger bodies. The grid's PostUpdate delivers
// the events; this system only keeps score.
type ContactSystem struct {
	stats     ContactStats
	occupancy int
}

// NewContactSystem creates a contact system.
func NewContactSystem() *ContactSystem {
	return &ContactSystem{}
}

// WatchViewingArea registers listeners on a viewing area trigger. The body
// should target tourists.
func (s *ContactSystem) WatchViewingArea(zone *collision.Body) {
	zone.OnEnter(func(_, _ *collision.Body) {
		s.stats.ViewingEnters++
		s.occupancy++
	})
	zone.OnStay(func(_, _ *collision.Body) {
		s.stats.ViewingTicks++
	})
	zone.OnLeave(func(_, _ *collision.Body) {
		s.stats.ViewingLeaves++
		s.occupancy--
	})
}

// WatchWaterHole registers listeners on a water hole trigger. The body should
// target animals.
func (s *ContactSystem) WatchWaterHole(zone *collision.Body) {
	zone.OnEnter(func(_, _ *collision.Body) {
		s.stats.Drinks++
	})
}

// Occupancy returns how many tourists are at viewing areas right now.
func (s *ContactSystem) Occupancy() int {
	return s.occupancy
}

// TakeStats returns the counters since the last call and resets them.
func (s *ContactSystem) TakeStats() ContactStats {
	st := s.stats
	st.Occupancy = s.occupancy
	s.stats = ContactStats{}
	return st
}
