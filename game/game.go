// Package game wires a park level to the renderer, input and telemetry.
package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/menagerie/camera"
	"github.com/pthm-cable/menagerie/components"
	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/telemetry"
	"github.com/pthm-cable/menagerie/ui"
)

// Options holds configuration for game initialization.
type Options struct {
	Seed           int64
	Headless       bool
	StepsPerUpdate int    // simulation steps per Update call
	OutputDir      string // empty disables CSV output
	LogStats       bool   // log each stats window
	StatsCallback  func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	level *Level

	// State
	tick           int32
	paused         bool
	stepsPerUpdate int
	headless       bool

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	lastStats     telemetry.WindowStats

	// Rendering, nil when headless
	camera    *camera.Camera
	overlays  *ui.OverlayRegistry
	hud       *ui.HUD
	controls  *ui.ControlsPanel
	perfPanel *ui.PerfPanel
	inspector *ui.Inspector

	selected    ecs.Entity
	hasSelected bool

	screenWidth, screenHeight float64
}

// NewGame creates a game with a freshly spawned level.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	level, err := NewLevel(cfg, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("creating level: %w", err)
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		level.Teardown()
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	g := &Game{
		cfg:            cfg,
		level:          level,
		stepsPerUpdate: steps,
		headless:       opts.Headless,
		collector:      telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Movement.DT),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		outputManager:  om,
		logStats:       opts.LogStats,
		statsCallback:  opts.StatsCallback,
		screenWidth:    float64(cfg.Screen.Width),
		screenHeight:   float64(cfg.Screen.Height),
	}

	g.perfCollector.Watch(level.Grid.Work)

	if !opts.Headless {
		g.camera = camera.New(g.screenWidth, g.screenHeight, cfg.Derived.WorldWidth, cfg.Derived.WorldHeight)
		g.overlays = ui.NewOverlayRegistry()
		g.hud = ui.NewHUD()
		g.controls = ui.NewControlsPanel(10, 110, 220)
		g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-230, 10)
		g.inspector = ui.NewInspector(int32(g.screenWidth)-250, 200, 240)
	}

	return g, nil
}

// Level returns the running level.
func (g *Game) Level() *Level {
	return g.level
}

// Tick returns the number of completed simulation steps.
func (g *Game) Tick() int32 {
	return g.tick
}

// LastStats returns the most recently flushed stats window.
func (g *Game) LastStats() telemetry.WindowStats {
	return g.lastStats
}

// Update handles input and runs the configured number of steps.
func (g *Game) Update() {
	g.handleInput()
	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// UpdateHeadless runs the configured number of steps without input.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// step runs one simulation tick: perception, movement, contacts, visitors,
// then telemetry.
func (g *Game) step() {
	g.perfCollector.StartTick()

	st := g.level.Step(g.cfg.Movement.DT, g.perfCollector.StartPhase)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.RecordGrid(st.Grid)
	g.collector.RecordMovement(st.Movement)
	g.collector.RecordContacts(st.Contacts)
	g.collector.RecordSight(st.Sight)
	for i := 0; i < st.Departures; i++ {
		g.collector.RecordDeparture()
	}
	if g.hasSelected && !g.level.World.Alive(g.selected) {
		g.hasSelected = false
	}

	g.tick++
	g.flushTelemetry()
	g.perfCollector.EndTick()
}

// flushTelemetry writes a stats window when one is complete.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	l := g.level
	pop := telemetry.Population{
		Animals:  l.Count(components.KindAnimal),
		Tourists: l.Count(components.KindTourist),
		Vehicles: l.Count(components.KindVehicle),
	}
	shape := telemetry.IndexShape{
		GridBodies: l.Grid.Len(),
		Indexed:    l.Index.Len(),
		TreeNodes:  l.Index.NodeCount(),
		TreeDepth:  l.Index.Depth(),
	}
	stats := g.collector.Flush(g.tick, pop, shape)
	perfStats := g.perfCollector.Stats()
	g.lastStats = stats

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// Unload tears the level down and closes output files.
func (g *Game) Unload() error {
	g.level.Teardown()
	if err := g.outputManager.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	return nil
}
