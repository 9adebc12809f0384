package telemetry

import (
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/menagerie/collision"
	"github.com/pthm-cable/menagerie/geom"
)

// counter is a hand-driven grid work source.
type counter struct {
	w collision.Work
}

func (c *counter) read() collision.Work { return c.w }

func TestPerfChargesWorkToPhases(t *testing.T) {
	var src counter
	pc := NewPerfCollector(4)
	pc.Watch(src.read)

	for i := 0; i < 2; i++ {
		pc.StartTick()
		pc.StartPhase(PhasePerception)
		pc.StartPhase(PhaseMovement)
		src.w.Queries += 6
		src.w.Moves += 10
		pc.StartPhase(PhaseContacts)
		src.w.Events += 3
		pc.StartPhase(PhaseVisitors)
		src.w.Queries += 1
		pc.EndTick()
	}

	stats := pc.Stats()
	tests := []struct {
		phase                  string
		queries, moves, events float64
	}{
		{PhasePerception, 0, 0, 0},
		{PhaseMovement, 6, 10, 0},
		{PhaseContacts, 0, 0, 3},
		{PhaseVisitors, 1, 0, 0},
		{PhaseTelemetry, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.phase, func(t *testing.T) {
			ph := stats.Phase(tt.phase)
			if ph.Queries != tt.queries || ph.Moves != tt.moves || ph.Events != tt.events {
				t.Errorf("got q=%v m=%v e=%v, want q=%v m=%v e=%v",
					ph.Queries, ph.Moves, ph.Events, tt.queries, tt.moves, tt.events)
			}
		})
	}
}

func TestPerfWorkBetweenTicksIsNotCharged(t *testing.T) {
	var src counter
	pc := NewPerfCollector(4)
	pc.Watch(src.read)

	pc.StartTick()
	pc.StartPhase(PhaseMovement)
	src.w.Moves += 2
	pc.EndTick()

	src.w.Moves += 50 // outside any phase

	pc.StartTick()
	pc.StartPhase(PhaseMovement)
	src.w.Moves += 4
	pc.EndTick()

	if got := pc.Stats().Phase(PhaseMovement).Moves; got != 3 {
		t.Errorf("movement moves per tick = %v, want 3", got)
	}
}

func TestPerfUnknownPhaseClosesRunningOne(t *testing.T) {
	var src counter
	pc := NewPerfCollector(4)
	pc.Watch(src.read)

	pc.StartTick()
	pc.StartPhase(PhaseMovement)
	src.w.Queries += 5
	pc.StartPhase("rendering")
	src.w.Queries += 100
	pc.EndTick()

	stats := pc.Stats()
	if got := stats.Phase(PhaseMovement).Queries; got != 5 {
		t.Errorf("movement queries = %v, want 5", got)
	}
	if len(stats.Phases) != len(phaseOrder) {
		t.Errorf("got %d phases, want %d", len(stats.Phases), len(phaseOrder))
	}
}

func TestPerfRollingWindow(t *testing.T) {
	var src counter
	pc := NewPerfCollector(3)
	pc.Watch(src.read)

	// Older ticks fall out of the window.
	for i := 1; i <= 6; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseContacts)
		src.w.Events += i
		pc.EndTick()
	}

	stats := pc.Stats()
	if got := stats.Phase(PhaseContacts).Events; got != 5 {
		t.Errorf("events per tick = %v, want 5 (mean of 4, 5, 6)", got)
	}
	if stats.MinTickDuration > stats.AvgTickDuration || stats.AvgTickDuration > stats.MaxTickDuration {
		t.Errorf("min/avg/max out of order: %v %v %v",
			stats.MinTickDuration, stats.AvgTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfPhaseShares(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhasePerception)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseMovement)
		time.Sleep(300 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	perc := stats.Phase(PhasePerception)
	move := stats.Phase(PhaseMovement)
	if move.Pct <= perc.Pct {
		t.Errorf("movement share %.1f%% should exceed perception %.1f%%", move.Pct, perc.Pct)
	}
	if total := perc.Pct + move.Pct; total > 100.0001 {
		t.Errorf("phase shares sum to %.2f%%", total)
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfEmptyWindow(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
		t.Errorf("empty window: avg=%v tps=%v", stats.AvgTickDuration, stats.TicksPerSecond)
	}
	if len(stats.Phases) != len(phaseOrder) {
		t.Fatalf("got %d phases, want %d", len(stats.Phases), len(phaseOrder))
	}
	for i, ph := range stats.Phases {
		if ph.Name != phaseOrder[i] {
			t.Errorf("phase %d = %q, want %q", i, ph.Name, phaseOrder[i])
		}
	}
	if got := stats.Phase("missing"); got.Name != "missing" || got.Pct != 0 {
		t.Errorf("Phase(missing) = %+v", got)
	}
}

func TestPerfPerOp(t *testing.T) {
	tests := []struct {
		name string
		ph   PhaseStats
		want time.Duration
	}{
		{"no work", PhaseStats{Avg: time.Millisecond}, 0},
		{"queries and moves", PhaseStats{Avg: time.Millisecond, Queries: 600, Moves: 400}, time.Microsecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ph.PerOp(); got != tt.want {
				t.Errorf("PerOp = %v, want %v", got, tt.want)
			}
		})
	}
}

// mover is a bare collision owner.
type mover struct{ pos r2.Vec }

func (m *mover) Position() r2.Vec   { return m.pos }
func (m *mover) Translate(d r2.Vec) { m.pos = r2.Add(m.pos, d) }

func TestPerfWatchesGrid(t *testing.T) {
	g := collision.NewGrid(8, 8, 32)
	m := &mover{pos: r2.Vec{X: 10, Y: 10}}
	b := collision.NewBody(m, geom.New(0, 0, 8, 8), collision.TagAnimal, collision.TagNone)
	g.Insert(b)

	pc := NewPerfCollector(4)
	pc.Watch(g.Work)

	pc.StartTick()
	pc.StartPhase(PhaseMovement)
	b.MoveOwner(r2.Vec{X: 5})
	pc.StartPhase(PhaseVisitors)
	g.Collides(geom.New(0, 0, 64, 64), nil, nil)
	g.TakeStats()
	pc.StartPhase(PhaseTelemetry)
	pc.EndTick()

	stats := pc.Stats()
	if got := stats.Phase(PhaseMovement).Moves; got != 1 {
		t.Errorf("movement moves = %v, want 1", got)
	}
	if got := stats.Phase(PhaseVisitors).Queries; got != 1 {
		t.Errorf("visitors queries = %v, want 1", got)
	}
	if got := stats.Phase(PhaseTelemetry); got.Queries != 0 || got.Moves != 0 {
		t.Errorf("telemetry charged with %+v after the grid stats reset", got)
	}
}

func TestPerfFrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("frame duration = %v, want >= 15ms", stats.FrameDuration)
	}
	if stats.FPS <= 0 || stats.FPS > 70 {
		t.Errorf("FPS = %v, want in (0, 70]", stats.FPS)
	}
}
