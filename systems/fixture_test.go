package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/menagerie/collision"
	"github.com/pthm-cable/menagerie/components"
	"github.com/pthm-cable/menagerie/geom"
)

// fixture is a small park with a 512x512 grid and an initialized index.
type fixture struct {
	world  *ecs.World
	posMap *ecs.Map1[components.Position]
	colMap *ecs.Map1[components.Collider]
	velMap *ecs.Map1[components.Velocity]
	pcMap  *ecs.Map1[components.Perception]
	mobile *ecs.Map5[components.Position, components.Velocity, components.Kind, components.Collider, components.Perception]
	static *ecs.Map3[components.Position, components.Kind, components.Collider]
	grid   *collision.Grid
	index  *BoundsIndex
}

func newFixture() *fixture {
	w := ecs.NewWorld()
	f := &fixture{
		world:  w,
		posMap: ecs.NewMap1[components.Position](w),
		colMap: ecs.NewMap1[components.Collider](w),
		velMap: ecs.NewMap1[components.Velocity](w),
		pcMap:  ecs.NewMap1[components.Perception](w),
		mobile: ecs.NewMap5[components.Position, components.Velocity, components.Kind, components.Collider, components.Perception](w),
		static: ecs.NewMap3[components.Position, components.Kind, components.Collider](w),
		grid:   collision.NewGrid(16, 16, 32),
		index: NewBoundsIndex(BoundsConfig{
			Threshold: 4,
			MaxDepth:  5,
			Excluded:  []components.Kind{components.KindFence, components.KindStructure, components.KindZone},
		}),
	}
	f.index.Init(f.grid.Bounds())
	return f
}

var defaultTargets = [components.KindCount]collision.Tags{
	components.KindAnimal:  collision.TagFence | collision.TagAnimal | collision.TagWall,
	components.KindTourist: collision.TagFence | collision.TagWall | collision.TagVehicle,
	components.KindVehicle: collision.TagFence | collision.TagWall | collision.TagVehicle | collision.TagTourist,
}

var categories = [components.KindCount]collision.Tags{
	components.KindFence:     collision.TagFence,
	components.KindStructure: collision.TagWall,
	components.KindZone:      collision.TagTrigger,
	components.KindAnimal:    collision.TagAnimal,
	components.KindTourist:   collision.TagTourist,
	components.KindVehicle:   collision.TagVehicle,
}

// spawnMobile creates a size x size entity centred on (x, y), registered in
// the grid and the index.
func (f *fixture) spawnMobile(kind components.Kind, x, y, size float64, perc components.Perception) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{}
	col := components.Collider{}
	e := f.mobile.NewEntity(&pos, &vel, &kind, &col, &perc)
	f.attach(e, kind, geom.New(-size/2, -size/2, size, size))
	return e
}

// spawnStatic creates a fixed body with its top-left corner at (x, y).
func (f *fixture) spawnStatic(kind components.Kind, x, y, w, h float64) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	col := components.Collider{}
	e := f.static.NewEntity(&pos, &kind, &col)
	f.attach(e, kind, geom.New(0, 0, w, h))
	return e
}

func (f *fixture) attach(e ecs.Entity, kind components.Kind, shape geom.AABB) {
	anchor := components.NewAnchor(e, f.posMap)
	col := f.colMap.Get(e)
	col.Body = collision.NewBody(anchor, shape, categories[kind], defaultTargets[kind])
	col.Agent = components.NewAgent(anchor, kind, shape)
	f.grid.Insert(col.Body)
	f.index.Insert(col.Agent)
}

func (f *fixture) agent(e ecs.Entity) *components.Agent {
	return f.colMap.Get(e).Agent
}

func (f *fixture) perception(e ecs.Entity) *components.Perception {
	return f.pcMap.Get(e)
}

func (f *fixture) body(e ecs.Entity) *collision.Body {
	return f.colMap.Get(e).Body
}
