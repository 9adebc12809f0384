package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated spatial statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	Animals  int `csv:"animals"`
	Tourists int `csv:"tourists"`
	Vehicles int `csv:"vehicles"`

	// Index occupancy at window end
	GridBodies   int `csv:"grid_bodies"`
	IndexedCount int `csv:"indexed"`
	TreeNodes    int `csv:"tree_nodes"`
	TreeDepth    int `csv:"tree_depth"`

	// Grid work during window
	GridQueries  int `csv:"grid_queries"`
	GridMoves    int `csv:"grid_moves"`
	ContactPairs int `csv:"contact_pairs"`
	Enters       int `csv:"enters"`
	Stays        int `csv:"stays"`
	Leaves       int `csv:"leaves"`

	// Movement
	Moved     int     `csv:"moved"`
	Blocked   int     `csv:"blocked"`
	BlockRate float64 `csv:"block_rate"` // blocked axes per moved entity

	// Triggers
	ViewingEnters int `csv:"viewing_enters"`
	ViewingLeaves int `csv:"viewing_leaves"`
	ViewingTicks  int `csv:"viewing_ticks"`
	Occupancy     int `csv:"occupancy"`
	Drinks        int `csv:"drinks"`
	Departures    int `csv:"departures"`

	// Sight query result sizes
	SightMean float64 `csv:"sight_mean"`
	SightStd  float64 `csv:"sight_std"`
	SightP50  float64 `csv:"sight_p50"`
	SightP90  float64 `csv:"sight_p90"`
	SightMax  float64 `csv:"sight_max"`
}

// ComputeQueryStats calculates mean, sample standard deviation and empirical
// quantiles of query result sizes. The input is not modified.
func ComputeQueryStats(values []float64) (mean, std, p50, p90, peak float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n == 1 {
		mean = sorted[0]
	} else {
		mean, std = stat.MeanStdDev(sorted, nil)
	}
	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	peak = sorted[n-1]

	return mean, std, p50, p90, peak
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("animals", s.Animals),
		slog.Int("tourists", s.Tourists),
		slog.Int("vehicles", s.Vehicles),
		slog.Int("grid_bodies", s.GridBodies),
		slog.Int("indexed", s.IndexedCount),
		slog.Int("tree_nodes", s.TreeNodes),
		slog.Int("tree_depth", s.TreeDepth),
		slog.Int("grid_queries", s.GridQueries),
		slog.Int("grid_moves", s.GridMoves),
		slog.Int("contact_pairs", s.ContactPairs),
		slog.Int("enters", s.Enters),
		slog.Int("stays", s.Stays),
		slog.Int("leaves", s.Leaves),
		slog.Int("moved", s.Moved),
		slog.Int("blocked", s.Blocked),
		slog.Float64("block_rate", s.BlockRate),
		slog.Int("viewing_enters", s.ViewingEnters),
		slog.Int("viewing_leaves", s.ViewingLeaves),
		slog.Int("viewing_ticks", s.ViewingTicks),
		slog.Int("occupancy", s.Occupancy),
		slog.Int("drinks", s.Drinks),
		slog.Int("departures", s.Departures),
		slog.Float64("sight_mean", s.SightMean),
		slog.Float64("sight_std", s.SightStd),
		slog.Float64("sight_p50", s.SightP50),
		slog.Float64("sight_p90", s.SightP90),
		slog.Float64("sight_max", s.SightMax),
	)
}

// LogStats logs the headline window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"animals", s.Animals,
		"tourists", s.Tourists,
		"vehicles", s.Vehicles,
		"tree_nodes", s.TreeNodes,
		"tree_depth", s.TreeDepth,
		"grid_queries", s.GridQueries,
		"enters", s.Enters,
		"leaves", s.Leaves,
		"blocked", s.Blocked,
		"occupancy", s.Occupancy,
		"drinks", s.Drinks,
		"departures", s.Departures,
		"sight_mean", s.SightMean,
		"sight_p90", s.SightP90,
	)
}
