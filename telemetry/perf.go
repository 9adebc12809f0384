package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"github.com/pthm-cable/menagerie/collision"
)

// Phase names for the simulation tick.
const (
	PhasePerception = "perception"
	PhaseMovement   = "movement"
	PhaseContacts   = "contacts"
	PhaseVisitors   = "visitors"
	PhaseTelemetry  = "telemetry"
)

// phaseOrder is the order phases run in and are reported in.
var phaseOrder = [...]string{PhasePerception, PhaseMovement, PhaseContacts, PhaseVisitors, PhaseTelemetry}

func phaseIndex(name string) int {
	return slices.Index(phaseOrder[:], name)
}

// phaseCost is what one phase spent during one tick.
type phaseCost struct {
	elapsed time.Duration
	work    collision.Work
}

// tickCost is one slot of the rolling window.
type tickCost struct {
	elapsed time.Duration
	phases  [len(phaseOrder)]phaseCost
}

// PerfCollector times simulation ticks and charges each phase with the grid
// operations it performed, over a rolling window of ticks.
type PerfCollector struct {
	ring  []tickCost
	next  int
	count int

	grid func() collision.Work

	cur        tickCost
	tickStart  time.Time
	phase      int // index into phaseOrder, -1 outside a phase
	phaseStart time.Time
	phaseWork  collision.Work

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over window ticks.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]tickCost, window), phase: -1}
}

// Watch sets the source of grid operation counts charged to phases. Without
// one only time is recorded.
func (p *PerfCollector) Watch(grid func() collision.Work) {
	p.grid = grid
}

func (p *PerfCollector) work() collision.Work {
	if p.grid == nil {
		return collision.Work{}
	}
	return p.grid()
}

// StartTick begins a tick.
func (p *PerfCollector) StartTick() {
	p.cur = tickCost{}
	p.phase = -1
	p.tickStart = time.Now()
}

// StartPhase closes the running phase, if any, and opens the named one.
// Unknown names only close the running phase.
func (p *PerfCollector) StartPhase(name string) {
	now := time.Now()
	w := p.work()
	p.closePhase(now, w)
	p.phase = phaseIndex(name)
	p.phaseStart = now
	p.phaseWork = w
}

func (p *PerfCollector) closePhase(now time.Time, w collision.Work) {
	if p.phase < 0 {
		return
	}
	c := &p.cur.phases[p.phase]
	c.elapsed += now.Sub(p.phaseStart)
	c.work = c.work.Add(w.Sub(p.phaseWork))
	p.phase = -1
}

// EndTick closes the running phase and stores the tick in the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now, p.work())
	p.cur.elapsed = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

// RecordFrame marks a rendered frame.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PhaseStats is one phase averaged over the window.
type PhaseStats struct {
	Name    string
	Avg     time.Duration
	Pct     float64 // share of the average tick
	Queries float64 // grid queries per tick
	Moves   float64 // grid moves per tick
	Events  float64 // contact callbacks per tick
}

// PerOp returns the phase's average time divided by its grid queries and
// moves, or zero when it made none.
func (s PhaseStats) PerOp() time.Duration {
	ops := s.Queries + s.Moves
	if ops == 0 {
		return 0
	}
	return time.Duration(float64(s.Avg) / ops)
}

// PerfStats is the window summary.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	Phases []PhaseStats // in tick order

	FrameDuration time.Duration
	FPS           float64
}

// Phase returns the stats for name, or a zero value naming it.
func (s PerfStats) Phase(name string) PhaseStats {
	for _, ph := range s.Phases {
		if ph.Name == name {
			return ph
		}
	}
	return PhaseStats{Name: name}
}

// Stats summarises the window.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{
		FrameDuration: p.frame,
		Phases:        make([]PhaseStats, len(phaseOrder)),
	}
	if p.frame > 0 {
		out.FPS = float64(time.Second) / float64(p.frame)
	}
	for i, name := range phaseOrder {
		out.Phases[i].Name = name
	}
	if p.count == 0 {
		return out
	}

	var total time.Duration
	var sum tickCost
	for i, t := range p.ring[:p.count] {
		total += t.elapsed
		if i == 0 || t.elapsed < out.MinTickDuration {
			out.MinTickDuration = t.elapsed
		}
		out.MaxTickDuration = max(out.MaxTickDuration, t.elapsed)
		for j, c := range t.phases {
			sum.phases[j].elapsed += c.elapsed
			sum.phases[j].work = sum.phases[j].work.Add(c.work)
		}
	}

	n := float64(p.count)
	out.AvgTickDuration = total / time.Duration(p.count)
	if out.AvgTickDuration > 0 {
		out.TicksPerSecond = float64(time.Second) / float64(out.AvgTickDuration)
	}
	for j, c := range sum.phases {
		ph := &out.Phases[j]
		ph.Avg = c.elapsed / time.Duration(p.count)
		if out.AvgTickDuration > 0 {
			ph.Pct = float64(ph.Avg) / float64(out.AvgTickDuration) * 100
		}
		ph.Queries = float64(c.work.Queries) / n
		ph.Moves = float64(c.work.Moves) / n
		ph.Events = float64(c.work.Events) / n
	}
	return out
}

// LogStats logs the window summary, listing only phases that took a visible
// share of the tick.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, ph := range s.Phases {
		if ph.Pct < 0.1 {
			continue
		}
		attrs = append(attrs, ph.Name+"_pct", float64(int(ph.Pct*10))/10)
		if ph.Queries > 0 {
			attrs = append(attrs, ph.Name+"_queries", int(ph.Queries))
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, ph := range s.Phases {
		attrs = append(attrs, slog.Group(ph.Name,
			slog.Float64("pct", ph.Pct),
			slog.Float64("queries", ph.Queries),
			slog.Float64("moves", ph.Moves),
			slog.Float64("events", ph.Events),
		))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd       int32   `csv:"window_end"`
	AvgTickUS       int64   `csv:"avg_tick_us"`
	MinTickUS       int64   `csv:"min_tick_us"`
	MaxTickUS       int64   `csv:"max_tick_us"`
	TicksPerSec     float64 `csv:"ticks_per_sec"`
	FPS             float64 `csv:"fps"`
	PerceptionPct   float64 `csv:"perception_pct"`
	MovementPct     float64 `csv:"movement_pct"`
	MovementQueries float64 `csv:"movement_queries"`
	MovementMoves   float64 `csv:"movement_moves"`
	MovementNsPerOp int64   `csv:"movement_ns_per_op"`
	ContactsPct     float64 `csv:"contacts_pct"`
	ContactsEvents  float64 `csv:"contacts_events"`
	VisitorsPct     float64 `csv:"visitors_pct"`
	VisitorsQueries float64 `csv:"visitors_queries"`
	TelemetryPct    float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the summary into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	move := s.Phase(PhaseMovement)
	cont := s.Phase(PhaseContacts)
	vis := s.Phase(PhaseVisitors)
	return PerfStatsCSV{
		WindowEnd:       windowEnd,
		AvgTickUS:       s.AvgTickDuration.Microseconds(),
		MinTickUS:       s.MinTickDuration.Microseconds(),
		MaxTickUS:       s.MaxTickDuration.Microseconds(),
		TicksPerSec:     s.TicksPerSecond,
		FPS:             s.FPS,
		PerceptionPct:   s.Phase(PhasePerception).Pct,
		MovementPct:     move.Pct,
		MovementQueries: move.Queries,
		MovementMoves:   move.Moves,
		MovementNsPerOp: move.PerOp().Nanoseconds(),
		ContactsPct:     cont.Pct,
		ContactsEvents:  cont.Events,
		VisitorsPct:     vis.Pct,
		VisitorsQueries: vis.Queries,
		TelemetryPct:    s.Phase(PhaseTelemetry).Pct,
	}
}
