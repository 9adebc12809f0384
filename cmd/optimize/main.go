// Package main tunes the bounds index split parameters with CMA-ES by timing
// headless park runs.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/menagerie/config"
)

// evalRecord is one row of optimize_log.csv.
type evalRecord struct {
	Eval      int     `csv:"eval"`
	MeanUS    float64 `csv:"mean_us"`
	P90US     float64 `csv:"p90_us"`
	Threshold int     `csv:"threshold"`
	MaxDepth  int     `csv:"max_depth"`
	TreeNodes int     `csv:"tree_nodes"`
	TreeDepth int     `csv:"tree_depth"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	ticks := flag.Int("ticks", 600, "Timed ticks per run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 60, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if *outputDir == "" {
		fmt.Fprintln(os.Stderr, "--output is required")
		os.Exit(2)
	}
	if err := run(*configPath, *outputDir, *ticks, *seeds, *maxEvals, *population); err != nil {
		fmt.Fprintf(os.Stderr, "optimize: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, outputDir string, ticks, seeds, maxEvals, population int) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := config.Init(configPath); err != nil {
		return err
	}
	baseCfg := config.Cfg()

	params := NewParamVector()
	evalSeeds := make([]int64, seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, ticks, evalSeeds, baseCfg)

	logFile, err := os.Create(filepath.Join(outputDir, "optimize_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	dim := params.Dim()
	popSize := population
	if popSize == 0 {
		popSize = 4 + int(3*math.Log(float64(dim)))
	}

	evalCount := 0
	bestFitness := math.Inf(1)
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			evalCount++
			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			r := evaluator.Last()
			rec := evalRecord{
				Eval:      evalCount,
				MeanUS:    r.MeanUS,
				P90US:     r.P90US,
				Threshold: int(clamped[0]),
				MaxDepth:  int(clamped[1]),
				TreeNodes: r.TreeNodes,
				TreeDepth: r.TreeDepth,
			}
			if err := writeRecord(logFile, rec, evalCount == 1); err != nil {
				slog.Error("failed to log evaluation", "error", err)
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			fmt.Printf("Eval %d/%d: threshold=%d depth=%d mean=%.1fus p90=%.1fus (best=%.1fus) | elapsed: %s, ETA: %s\n",
				evalCount, maxEvals, rec.Threshold, rec.MaxDepth, r.MeanUS, r.P90US, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Concurrent:      0, // sequential, runs are timed
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	fmt.Printf("Starting CMA-ES with %d parameters, population=%d, max_evals=%d\n", dim, popSize, maxEvals)
	fmt.Printf("Seeds per evaluation: %d, timed ticks per run: %d\n", seeds, ticks)

	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		return fmt.Errorf("no evaluation completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best mean step: %.1fus\n", bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %v\n", spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	params.ApplyToConfig(bestCfg, bestParams)
	path := filepath.Join(outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(path); err != nil {
		return err
	}
	fmt.Printf("\nBest config saved to: %s\n", path)
	return nil
}

// writeRecord appends one row, with the header before the first.
func writeRecord(f *os.File, rec evalRecord, header bool) error {
	records := []evalRecord{rec}
	if header {
		return gocsv.Marshal(records, f)
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}
