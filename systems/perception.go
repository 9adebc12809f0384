package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/menagerie/components"
)

// kindMask is a set of entity kinds.
type kindMask uint16

func maskOf(kinds ...components.Kind) kindMask {
	var m kindMask
	for _, k := range kinds {
		m |= 1 << k
	}
	return m
}

func (m kindMask) has(k components.Kind) bool {
	return m&(1<<k) != 0
}

// PerceptionSystem fills each Perception component from bounds index
// queries: who is in sight, which watched agent is nearest, whether it is
// within reach, and where the visible herd is centred.
type PerceptionSystem struct {
	filter ecs.Filter3[components.Perception, components.Collider, components.Kind]
	index  *BoundsIndex

	visible [components.KindCount]AgentFilter // targets plus herd mates
	targets [components.KindCount]AgentFilter

	scratch []*components.Agent
	sizes   []float64 // sight query result sizes since the last TakeQuerySizes
}

// NewPerceptionSystem creates a perception system. Animals watch tourists and
// vehicles and herd with other animals; tourists watch animals.
func NewPerceptionSystem(w *ecs.World, index *BoundsIndex) *PerceptionSystem {
	s := &PerceptionSystem{
		filter:  *ecs.NewFilter3[components.Perception, components.Collider, components.Kind](w),
		index:   index,
		scratch: make([]*components.Agent, 0, 64),
	}

	watch := func(k components.Kind, targets kindMask, herd bool) {
		visible := targets
		if herd {
			visible |= maskOf(k)
		}
		s.targets[k] = func(a *components.Agent) bool { return targets.has(a.Kind) }
		s.visible[k] = func(a *components.Agent) bool { return visible.has(a.Kind) }
	}
	watch(components.KindAnimal, maskOf(components.KindTourist, components.KindVehicle), true)
	watch(components.KindTourist, maskOf(components.KindAnimal), false)

	return s
}

// Update runs one perception pass.
func (s *PerceptionSystem) Update() {
	query := s.filter.Query()
	for query.Next() {
		perc, col, kind := query.Get()
		resetPerception(perc)

		a := col.Agent
		visible := s.visible[*kind]
		if a == nil || visible == nil || a.Handle() == nil || !a.Handle().Live() {
			continue
		}

		s.scratch = s.index.Sees(s.scratch[:0], a, perc.Sight, visible)
		s.sizes = append(s.sizes, float64(len(s.scratch)))

		centre := a.Bounds().Center()
		var herd r2.Vec
		for _, other := range s.scratch {
			oc := other.Bounds().Center()
			if other.Kind == *kind {
				herd = r2.Add(herd, oc)
				perc.HerdSize++
				continue
			}
			d := r2.Norm(r2.Sub(oc, centre))
			if perc.Target == nil || d < perc.TargetDist {
				perc.Target = other
				perc.TargetDist = d
			}
		}
		if perc.HerdSize > 0 {
			perc.Herd = r2.Scale(1/float64(perc.HerdSize), herd)
		}

		if perc.Target != nil {
			perc.InReach = s.index.Reaches(a, perc.Reach, s.targets[*kind])
		}
	}
	clear(s.scratch)
}

// TakeQuerySizes returns the sight query result sizes recorded since the
// last call. The slice is reused by the next pass.
func (s *PerceptionSystem) TakeQuerySizes() []float64 {
	out := s.sizes
	s.sizes = s.sizes[:0]
	return out
}

func resetPerception(p *components.Perception) {
	p.Target = nil
	p.TargetDist = 0
	p.InReach = false
	p.Herd = r2.Vec{}
	p.HerdSize = 0
}
