package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/menagerie/components"
)

// MovementConfig holds steering parameters.
type MovementConfig struct {
	MaxSpeed    [components.KindCount]float64 // units per second
	Wander      [components.KindCount]float64 // random steering, units per second squared
	HerdWeight  float64                       // pull towards the visible herd centroid
	FleeWeight  float64                       // push away from a seen vehicle
	ChaseWeight float64                       // pull of a tourist towards a seen animal
}

// MovementStats counts movement outcomes since the last TakeStats.
type MovementStats struct {
	Moved   int // entities that changed position
	Blocked int // axis blocks that reflected a velocity component
}

// MovementSystem steers mobile entities and moves them through the collision
// grid, then re-homes them in the bounds index.
type MovementSystem struct {
	filter  ecs.Filter3[components.Velocity, components.Collider, components.Kind]
	percMap *ecs.Map[components.Perception]
	index   *BoundsIndex
	rng     *rand.Rand
	cfg     MovementConfig
	stats   MovementStats
}

// NewMovementSystem creates a movement system.
func NewMovementSystem(w *ecs.World, index *BoundsIndex, rng *rand.Rand, cfg MovementConfig) *MovementSystem {
	return &MovementSystem{
		filter:  *ecs.NewFilter3[components.Velocity, components.Collider, components.Kind](w),
		percMap: ecs.NewMap[components.Perception](w),
		index:   index,
		rng:     rng,
		cfg:     cfg,
	}
}

// Update advances every mobile entity by dt seconds.
func (s *MovementSystem) Update(dt float64) {
	query := s.filter.Query()
	for query.Next() {
		vel, col, kind := query.Get()
		if col.Body == nil {
			continue
		}

		v := s.steer(query.Entity(), *kind, col, vel.Vec(), dt)

		delta := r2.Scale(dt, v)
		moved := col.Body.MoveOwner(delta)

		// Bounce off whatever stopped us.
		if blockedAxis(delta.X, moved.X) {
			v.X = -v.X
			s.stats.Blocked++
		}
		if blockedAxis(delta.Y, moved.Y) {
			v.Y = -v.Y
			s.stats.Blocked++
		}
		vel.X, vel.Y = v.X, v.Y

		if moved != (r2.Vec{}) {
			s.stats.Moved++
			if col.Agent != nil {
				s.index.Move(col.Agent)
			}
		}
	}
}

// TakeStats returns the counters since the last call and resets them.
func (s *MovementSystem) TakeStats() MovementStats {
	st := s.stats
	s.stats = MovementStats{}
	return st
}

func (s *MovementSystem) steer(e ecs.Entity, kind components.Kind, col *components.Collider, v r2.Vec, dt float64) r2.Vec {
	if w := s.cfg.Wander[kind]; w > 0 {
		angle := s.rng.Float64() * 2 * math.Pi
		v = r2.Add(v, r2.Scale(w*dt, r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}))
	}

	if col.Agent != nil && s.percMap.Has(e) {
		perc := s.percMap.Get(e)
		pos := col.Agent.Bounds().Center()

		switch kind {
		case components.KindAnimal:
			if perc.HerdSize > 0 {
				v = r2.Add(v, r2.Scale(s.cfg.HerdWeight*dt, r2.Sub(perc.Herd, pos)))
			}
			if perc.Target != nil && perc.Target.Kind == components.KindVehicle {
				away := unit(r2.Sub(pos, perc.Target.Bounds().Center()))
				v = r2.Add(v, r2.Scale(s.cfg.FleeWeight*dt, away))
			}
		case components.KindTourist:
			if perc.Target != nil && !perc.InReach {
				toward := unit(r2.Sub(perc.Target.Bounds().Center(), pos))
				v = r2.Add(v, r2.Scale(s.cfg.ChaseWeight*dt, toward))
			}
		}
	}

	return clampSpeed(v, s.cfg.MaxSpeed[kind])
}

// blockedAxis reports whether less than half of a requested axis move happened.
func blockedAxis(want, got float64) bool {
	return want != 0 && math.Abs(got) < math.Abs(want)*0.5
}

func unit(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

func clampSpeed(v r2.Vec, maxSpeed float64) r2.Vec {
	n := r2.Norm(v)
	if n <= maxSpeed || n == 0 {
		return v
	}
	return r2.Scale(maxSpeed/n, v)
}
