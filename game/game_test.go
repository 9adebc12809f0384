package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/telemetry"
)

func TestHeadlessGameWritesTelemetry(t *testing.T) {
	cfg := config.Defaults()
	cfg.Telemetry.StatsWindow = 0.5

	dir := t.TempDir()
	var windows []telemetry.WindowStats
	g, err := NewGame(cfg, Options{
		Seed:           7,
		Headless:       true,
		StepsPerUpdate: 10,
		OutputDir:      dir,
		StatsCallback:  func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	for i := 0; i < 6; i++ {
		g.UpdateHeadless()
	}
	g.Draw()

	if g.Tick() != 60 {
		t.Errorf("Tick() = %d, want 60", g.Tick())
	}
	if len(windows) != 2 {
		t.Fatalf("%d stats windows, want 2", len(windows))
	}
	last := windows[1]
	if last != g.LastStats() {
		t.Error("LastStats does not match the last callback")
	}
	if last.Animals != 24 || last.Tourists != 40 || last.Vehicles != 3 {
		t.Errorf("population = %d/%d/%d", last.Animals, last.Tourists, last.Vehicles)
	}
	if last.GridBodies != 94 || last.IndexedCount != 67 {
		t.Errorf("index shape: grid %d, indexed %d", last.GridBodies, last.IndexedCount)
	}
	if last.GridQueries == 0 {
		t.Error("no grid queries in window")
	}

	if err := g.Unload(); err != nil {
		t.Fatalf("Unload: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("telemetry.csv has %d lines, want header + 2", len(lines))
	}
	for _, name := range []string{"perf.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}

func TestHeadlessGameWithoutOutput(t *testing.T) {
	g, err := NewGame(config.Defaults(), Options{Headless: true})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	g.UpdateHeadless()
	if g.Tick() != 1 {
		t.Errorf("Tick() = %d, want 1 step by default", g.Tick())
	}
	if err := g.Unload(); err != nil {
		t.Errorf("Unload: %v", err)
	}
}

func TestNewGameRejectsBadLayout(t *testing.T) {
	cfg := config.Defaults()
	cfg.Layout.KioskSize = 1000
	if _, err := NewGame(cfg, Options{Headless: true}); err == nil {
		t.Error("expected error")
	}
}
