// Package config provides configuration loading and access for the park.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Quadtree   QuadtreeConfig   `yaml:"quadtree"`
	Movement   MovementConfig   `yaml:"movement"`
	Perception PerceptionConfig `yaml:"perception"`
	Population PopulationConfig `yaml:"population"`
	Layout     LayoutConfig     `yaml:"layout"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig sizes the park and its collision grid.
type WorldConfig struct {
	Width    int     `yaml:"width"`     // grid columns
	Height   int     `yaml:"height"`    // grid rows
	CellSize float64 `yaml:"cell_size"` // world units per cell side
}

// QuadtreeConfig configures the bounds index.
type QuadtreeConfig struct {
	Threshold     int      `yaml:"threshold"`      // entries before a leaf splits
	MaxDepth      int      `yaml:"max_depth"`      // deepest split level
	ExcludedKinds []string `yaml:"excluded_kinds"` // kinds never indexed
}

// KindValues holds one value per mobile kind.
type KindValues struct {
	Animal  float64 `yaml:"animal"`
	Tourist float64 `yaml:"tourist"`
	Vehicle float64 `yaml:"vehicle"`
}

// MovementConfig holds steering parameters.
type MovementConfig struct {
	DT          float64    `yaml:"dt"`        // seconds per tick
	MaxSpeed    KindValues `yaml:"max_speed"` // units per second
	Wander      KindValues `yaml:"wander"`    // random steering strength
	HerdWeight  float64    `yaml:"herd_weight"`
	FleeWeight  float64    `yaml:"flee_weight"`
	ChaseWeight float64    `yaml:"chase_weight"`
}

// RangeConfig holds perception distances for one kind.
type RangeConfig struct {
	Sight float64 `yaml:"sight"`
	Reach float64 `yaml:"reach"`
}

// PerceptionConfig holds perception distances per watching kind.
type PerceptionConfig struct {
	Animal  RangeConfig `yaml:"animal"`
	Tourist RangeConfig `yaml:"tourist"`
}

// PopulationConfig holds spawn counts.
type PopulationConfig struct {
	Enclosures          int     `yaml:"enclosures"`
	AnimalsPerEnclosure int     `yaml:"animals_per_enclosure"`
	Tourists            int     `yaml:"tourists"`
	Vehicles            int     `yaml:"vehicles"`
	Kiosks              int     `yaml:"kiosks"`
	VisitDuration       float64 `yaml:"visit_duration"` // seconds a tourist stays before leaving
}

// LayoutConfig holds park geometry in world units.
type LayoutConfig struct {
	Margin          float64 `yaml:"margin"`
	EnclosureWidth  float64 `yaml:"enclosure_width"`
	EnclosureHeight float64 `yaml:"enclosure_height"`
	FenceThickness  float64 `yaml:"fence_thickness"`
	ViewingDepth    float64 `yaml:"viewing_depth"` // viewing area strip below each enclosure
	WaterHoleSize   float64 `yaml:"water_hole_size"`
	RoadHeight      float64 `yaml:"road_height"` // service road along the bottom edge
	KioskSize       float64 `yaml:"kiosk_size"`
	AnimalSize      float64 `yaml:"animal_size"`
	TouristSize     float64 `yaml:"tourist_size"`
	VehicleLength   float64 `yaml:"vehicle_length"`
	VehicleWidth    float64 `yaml:"vehicle_width"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // seconds per spatial stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // ticks per perf average
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	WorldWidth       float64 // world units
	WorldHeight      float64
	StatsWindowTicks int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

func (c *Config) validate() error {
	var errs []error
	if c.World.Width < 1 || c.World.Height < 1 {
		errs = append(errs, fmt.Errorf("world size %dx%d cells", c.World.Width, c.World.Height))
	}
	if c.World.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("world cell_size %v", c.World.CellSize))
	}
	if c.Quadtree.Threshold < 1 {
		errs = append(errs, fmt.Errorf("quadtree threshold %d", c.Quadtree.Threshold))
	}
	if c.Quadtree.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("quadtree max_depth %d", c.Quadtree.MaxDepth))
	}
	if c.Movement.DT <= 0 {
		errs = append(errs, fmt.Errorf("movement dt %v", c.Movement.DT))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.WorldWidth = float64(c.World.Width) * c.World.CellSize
	c.Derived.WorldHeight = float64(c.World.Height) * c.World.CellSize

	ticks := int(c.Telemetry.StatsWindow / c.Movement.DT)
	if ticks < 1 {
		ticks = 1
	}
	c.Derived.StatsWindowTicks = ticks
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
