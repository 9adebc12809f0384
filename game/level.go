package game

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/menagerie/collision"
	"github.com/pthm-cable/menagerie/components"
	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/geom"
	"github.com/pthm-cable/menagerie/systems"
	"github.com/pthm-cable/menagerie/telemetry"
)

// placementTries bounds the random search for a free spawn spot.
const placementTries = 32

// kindCategory is the collision category of each kind.
var kindCategory = [components.KindCount]collision.Tags{
	components.KindFence:     collision.TagFence,
	components.KindStructure: collision.TagWall,
	components.KindZone:      collision.TagTrigger,
	components.KindAnimal:    collision.TagAnimal,
	components.KindTourist:   collision.TagTourist,
	components.KindVehicle:   collision.TagVehicle,
}

// kindTargets is what each mobile kind is blocked by. Static kinds block but
// are never moved, and zones pick their targets per zone.
var kindTargets = [components.KindCount]collision.Tags{
	components.KindAnimal:  collision.TagFence | collision.TagWall | collision.TagAnimal,
	components.KindTourist: collision.TagFence | collision.TagWall | collision.TagVehicle,
	components.KindVehicle: collision.TagFence | collision.TagWall | collision.TagVehicle | collision.TagTourist,
}

// StepStats is what one Level.Step produced.
type StepStats struct {
	Grid       collision.Stats
	Movement   systems.MovementStats
	Contacts   systems.ContactStats
	Sight      []float64 // sight query result sizes, reused by the next step
	Departures int
}

// Level owns one park: its ECS world, collision grid, bounds index and the
// systems that run over them. Nothing in it is global, so several levels can
// exist side by side.
type Level struct {
	World    *ecs.World
	Grid     *collision.Grid
	Index    *systems.BoundsIndex
	Contacts *systems.ContactSystem

	cfg    *config.Config
	rng    *rand.Rand
	layout parkLayout

	perception *systems.PerceptionSystem
	movement   *systems.MovementSystem

	// Component mappers
	posMap     *ecs.Map1[components.Position]
	kindMap    *ecs.Map1[components.Kind]
	colMap     *ecs.Map1[components.Collider]
	velMap     *ecs.Map[components.Velocity]
	percMap    *ecs.Map[components.Perception]
	visitMap   *ecs.Map[components.Visitor]
	staticMap  *ecs.Map3[components.Position, components.Kind, components.Collider]
	mobileMap  *ecs.Map5[components.Position, components.Velocity, components.Kind, components.Collider, components.Perception]
	visitorMap *ecs.Map6[components.Position, components.Velocity, components.Kind, components.Collider, components.Perception, components.Visitor]

	colFilter     ecs.Filter1[components.Collider]
	visitorFilter ecs.Filter1[components.Visitor]

	filters [components.KindCount]*collision.Body // tag carriers for placement checks
	counts  [components.KindCount]int
	scratch []ecs.Entity
}

// NewLevel builds a park from cfg and spawns its initial population.
func NewLevel(cfg *config.Config, seed int64) (*Level, error) {
	layout, err := planLayout(cfg)
	if err != nil {
		return nil, err
	}

	excluded := make([]components.Kind, 0, len(cfg.Quadtree.ExcludedKinds))
	for _, name := range cfg.Quadtree.ExcludedKinds {
		k, err := components.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("quadtree excluded_kinds: %w", err)
		}
		excluded = append(excluded, k)
	}

	w := ecs.NewWorld()
	rng := rand.New(rand.NewSource(seed))

	l := &Level{
		World:    w,
		Grid:     collision.NewGrid(cfg.World.Width, cfg.World.Height, cfg.World.CellSize),
		Index:    systems.NewBoundsIndex(systems.BoundsConfig{Threshold: cfg.Quadtree.Threshold, MaxDepth: cfg.Quadtree.MaxDepth, Excluded: excluded}),
		Contacts: systems.NewContactSystem(),
		cfg:      cfg,
		rng:      rng,
		layout:   layout,

		posMap:     ecs.NewMap1[components.Position](w),
		kindMap:    ecs.NewMap1[components.Kind](w),
		colMap:     ecs.NewMap1[components.Collider](w),
		velMap:     ecs.NewMap[components.Velocity](w),
		percMap:    ecs.NewMap[components.Perception](w),
		visitMap:   ecs.NewMap[components.Visitor](w),
		staticMap:  ecs.NewMap3[components.Position, components.Kind, components.Collider](w),
		mobileMap:  ecs.NewMap5[components.Position, components.Velocity, components.Kind, components.Collider, components.Perception](w),
		visitorMap: ecs.NewMap6[components.Position, components.Velocity, components.Kind, components.Collider, components.Perception, components.Visitor](w),

		colFilter:     *ecs.NewFilter1[components.Collider](w),
		visitorFilter: *ecs.NewFilter1[components.Visitor](w),
	}
	for k := range l.filters {
		l.filters[k] = collision.NewBody(nil, geom.AABB{}, kindCategory[k], kindTargets[k])
	}

	l.Index.Init(l.Grid.Bounds())
	l.perception = systems.NewPerceptionSystem(w, l.Index)
	l.movement = systems.NewMovementSystem(w, l.Index, rng, movementConfig(cfg))

	l.spawnPark()

	slog.Info("level ready",
		"seed", seed,
		"animals", l.counts[components.KindAnimal],
		"tourists", l.counts[components.KindTourist],
		"vehicles", l.counts[components.KindVehicle],
		"bodies", l.Grid.Len(),
		"indexed", l.Index.Len(),
	)
	return l, nil
}

// movementConfig maps the loaded config onto the movement system.
func movementConfig(cfg *config.Config) systems.MovementConfig {
	m := cfg.Movement
	var mc systems.MovementConfig
	mc.MaxSpeed[components.KindAnimal] = m.MaxSpeed.Animal
	mc.MaxSpeed[components.KindTourist] = m.MaxSpeed.Tourist
	mc.MaxSpeed[components.KindVehicle] = m.MaxSpeed.Vehicle
	mc.Wander[components.KindAnimal] = m.Wander.Animal
	mc.Wander[components.KindTourist] = m.Wander.Tourist
	mc.Wander[components.KindVehicle] = m.Wander.Vehicle
	mc.HerdWeight = m.HerdWeight
	mc.FleeWeight = m.FleeWeight
	mc.ChaseWeight = m.ChaseWeight
	return mc
}

// spawnPark creates the static layout and the initial population.
func (l *Level) spawnPark() {
	lay := l.cfg.Layout
	pop := l.cfg.Population

	for _, enc := range l.layout.Enclosures {
		for _, f := range enc.Fences {
			l.spawnStatic(components.KindFence, f, 0)
		}
		viewing := l.spawnStatic(components.KindZone, enc.Viewing, collision.TagTourist)
		l.Contacts.WatchViewingArea(l.colMap.Get(viewing).Body)
		hole := l.spawnStatic(components.KindZone, enc.WaterHole, collision.TagAnimal)
		l.Contacts.WatchWaterHole(l.colMap.Get(hole).Body)
	}
	for _, k := range l.layout.Kiosks {
		l.spawnStatic(components.KindStructure, k, 0)
	}

	for _, enc := range l.layout.Enclosures {
		for i := 0; i < pop.AnimalsPerEnclosure; i++ {
			if _, ok := l.spawnAnimal(enc.Interior); !ok {
				slog.Warn("no room for animal", "enclosure", enc.Bounds.String())
			}
		}
	}
	for i := 0; i < pop.Tourists; i++ {
		if _, ok := l.SpawnTourist(); !ok {
			slog.Warn("no room for tourist", "walkway", l.layout.Walkway.String())
		}
	}
	for i := 0; i < pop.Vehicles; i++ {
		cx := l.layout.Road.Width * (float64(i) + 0.5) / float64(pop.Vehicles)
		centre := r2.Vec{X: cx, Y: l.layout.Road.Center().Y}
		dir := 1.0
		if i%2 == 1 {
			dir = -1
		}
		shape := geom.New(-lay.VehicleLength/2, -lay.VehicleWidth/2, lay.VehicleLength, lay.VehicleWidth)
		if !l.free(components.KindVehicle, shape.Translated(centre)) {
			slog.Warn("no room for vehicle", "x", cx)
			continue
		}
		vel := components.Velocity{X: dir * l.cfg.Movement.MaxSpeed.Vehicle}
		l.spawnMobile(components.KindVehicle, centre, vel, shape, components.Perception{})
	}
}

// spawnStatic creates a fixed body covering box. Zones pass the categories
// they report contacts with.
func (l *Level) spawnStatic(kind components.Kind, box geom.AABB, targets collision.Tags) ecs.Entity {
	pos := components.Position{X: box.X, Y: box.Y}
	col := components.Collider{}
	e := l.staticMap.NewEntity(&pos, &kind, &col)
	l.attach(e, kind, geom.New(0, 0, box.Width, box.Height), targets)
	return e
}

func (l *Level) spawnMobile(kind components.Kind, centre r2.Vec, vel components.Velocity, shape geom.AABB, perc components.Perception) ecs.Entity {
	pos := components.Position{X: centre.X, Y: centre.Y}
	col := components.Collider{}
	e := l.mobileMap.NewEntity(&pos, &vel, &kind, &col, &perc)
	l.attach(e, kind, shape, kindTargets[kind])
	return e
}

func (l *Level) spawnAnimal(area geom.AABB) (ecs.Entity, bool) {
	size := l.cfg.Layout.AnimalSize
	shape := geom.New(-size/2, -size/2, size, size)
	centre, ok := l.place(components.KindAnimal, area, shape)
	if !ok {
		return ecs.Entity{}, false
	}
	vel := l.randomVelocity(l.cfg.Movement.MaxSpeed.Animal / 2)
	perc := components.Perception{Sight: l.cfg.Perception.Animal.Sight, Reach: l.cfg.Perception.Animal.Reach}
	return l.spawnMobile(components.KindAnimal, centre, vel, shape, perc), true
}

// SpawnTourist places a new tourist somewhere free on the walkway with a
// fresh visit duration.
func (l *Level) SpawnTourist() (ecs.Entity, bool) {
	size := l.cfg.Layout.TouristSize
	shape := geom.New(-size/2, -size/2, size, size)
	centre, ok := l.place(components.KindTourist, l.layout.Walkway, shape)
	if !ok {
		return ecs.Entity{}, false
	}

	kind := components.KindTourist
	pos := components.Position{X: centre.X, Y: centre.Y}
	vel := l.randomVelocity(l.cfg.Movement.MaxSpeed.Tourist / 2)
	col := components.Collider{}
	perc := components.Perception{Sight: l.cfg.Perception.Tourist.Sight, Reach: l.cfg.Perception.Tourist.Reach}
	visit := components.Visitor{Remaining: l.cfg.Population.VisitDuration * (0.5 + l.rng.Float64())}
	e := l.visitorMap.NewEntity(&pos, &vel, &kind, &col, &perc, &visit)
	l.attach(e, kind, shape, kindTargets[kind])
	return e, true
}

// attach registers a new entity in the grid and, unless its kind is
// excluded, in the bounds index.
func (l *Level) attach(e ecs.Entity, kind components.Kind, shape geom.AABB, targets collision.Tags) {
	anchor := components.NewAnchor(e, l.posMap)
	col := l.colMap.Get(e)
	col.Body = collision.NewBody(anchor, shape, kindCategory[kind], targets)
	col.Agent = components.NewAgent(anchor, kind, shape)
	l.Grid.Insert(col.Body)
	l.Index.Insert(col.Agent)
	l.counts[kind]++
}

// place finds a free centre for shape inside area.
func (l *Level) place(kind components.Kind, area geom.AABB, shape geom.AABB) (r2.Vec, bool) {
	spanX := area.Width - shape.Width
	spanY := area.Height - shape.Height
	if spanX < 0 || spanY < 0 {
		return r2.Vec{}, false
	}
	for try := 0; try < placementTries; try++ {
		centre := r2.Vec{
			X: area.X - shape.X + l.rng.Float64()*spanX,
			Y: area.Y - shape.Y + l.rng.Float64()*spanY,
		}
		if l.free(kind, shape.Translated(centre)) {
			return centre, true
		}
	}
	return r2.Vec{}, false
}

// free reports whether a body of kind could occupy box.
func (l *Level) free(kind components.Kind, box geom.AABB) bool {
	return !l.Grid.IsOutOfBounds(box) && !l.Grid.Collides(box, nil, l.filters[kind])
}

func (l *Level) randomVelocity(speed float64) components.Velocity {
	a := l.rng.Float64() * 2 * math.Pi
	return components.Velocity{X: speed * math.Cos(a), Y: speed * math.Sin(a)}
}

// Despawn removes an entity from the grid, the bounds index and the world.
// Dead entities are ignored.
func (l *Level) Despawn(e ecs.Entity) {
	if !l.World.Alive(e) {
		return
	}
	kind := *l.kindMap.Get(e)
	if col := l.colMap.Get(e); col != nil {
		if col.Body != nil {
			l.Grid.Remove(col.Body)
		}
		if col.Agent != nil {
			l.Index.Remove(col.Agent)
		}
	}
	l.World.RemoveEntity(e)
	l.counts[kind]--
}

// Step advances the level by dt seconds. phase, when not nil, is called as
// each stage starts.
func (l *Level) Step(dt float64, phase func(string)) StepStats {
	mark := func(name string) {
		if phase != nil {
			phase(name)
		}
	}

	mark(telemetry.PhasePerception)
	l.perception.Update()

	mark(telemetry.PhaseMovement)
	l.movement.Update(dt)

	mark(telemetry.PhaseContacts)
	l.Grid.PostUpdate()

	mark(telemetry.PhaseVisitors)
	departures := l.updateVisitors(dt)

	return StepStats{
		Grid:       l.Grid.TakeStats(),
		Movement:   l.movement.TakeStats(),
		Contacts:   l.Contacts.TakeStats(),
		Sight:      l.perception.TakeQuerySizes(),
		Departures: departures,
	}
}

// updateVisitors ages every tourist's visit and replaces those whose time is
// up with new arrivals.
func (l *Level) updateVisitors(dt float64) int {
	l.scratch = l.scratch[:0]
	query := l.visitorFilter.Query()
	for query.Next() {
		v := query.Get()
		v.Remaining -= dt
		if v.Remaining <= 0 {
			l.scratch = append(l.scratch, query.Entity())
		}
	}

	for _, e := range l.scratch {
		l.Despawn(e)
		if _, ok := l.SpawnTourist(); !ok {
			slog.Debug("arrival deferred, walkway full")
		}
	}
	return len(l.scratch)
}

// Count returns how many entities of kind are alive.
func (l *Level) Count(kind components.Kind) int {
	return l.counts[kind]
}

// Collider returns the collider of e, or nil.
func (l *Level) Collider(e ecs.Entity) *components.Collider {
	if !l.World.Alive(e) {
		return nil
	}
	return l.colMap.Get(e)
}

// EachCollider calls fn for every entity with a collider.
func (l *Level) EachCollider(fn func(e ecs.Entity, kind components.Kind, col *components.Collider)) {
	query := l.colFilter.Query()
	for query.Next() {
		e := query.Entity()
		fn(e, *l.kindMap.Get(e), query.Get())
	}
}

// Teardown removes every entity and releases the level's indexes. The level
// must not be stepped afterwards.
func (l *Level) Teardown() {
	l.scratch = l.scratch[:0]
	query := l.colFilter.Query()
	for query.Next() {
		l.scratch = append(l.scratch, query.Entity())
	}
	for _, e := range l.scratch {
		l.Despawn(e)
	}

	l.Grid.Reset()
	l.Index.Cleanup()
	slog.Info("level torn down", "entities", len(l.scratch))
}
