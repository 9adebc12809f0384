package main

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/game"
)

// warmupTicks are stepped before timing starts so tourists spread out.
const warmupTicks = 120

// FitnessEvaluator runs headless parks and scores how fast they step.
type FitnessEvaluator struct {
	params     *ParamVector
	ticks      int
	seeds      []int64
	baseConfig *config.Config

	mu   sync.Mutex
	last runResult
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		ticks:      ticks,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// runResult summarises one timed run, or the seed average of several.
type runResult struct {
	MeanUS    float64 // mean step time in microseconds
	P90US     float64
	TreeNodes int
	TreeDepth int
}

// Last returns the result of the most recent evaluation.
func (fe *FitnessEvaluator) Last() runResult {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// Evaluate returns the mean step time over all seeds for a parameter vector
// (lower = better). Seeds run one after another so they do not compete for
// cores while being timed.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	var avg runResult
	n := 0
	for _, seed := range fe.seeds {
		r, err := fe.runLevel(cfg, seed)
		if err != nil {
			return math.Inf(1)
		}
		avg.MeanUS += r.MeanUS
		avg.P90US += r.P90US
		avg.TreeNodes += r.TreeNodes
		avg.TreeDepth = max(avg.TreeDepth, r.TreeDepth)
		n++
	}
	avg.MeanUS /= float64(n)
	avg.P90US /= float64(n)
	avg.TreeNodes /= n

	fe.mu.Lock()
	fe.last = avg
	fe.mu.Unlock()

	return avg.MeanUS
}

// runLevel times fe.ticks steps of a fresh park.
func (fe *FitnessEvaluator) runLevel(cfg *config.Config, seed int64) (runResult, error) {
	l, err := game.NewLevel(cfg, seed)
	if err != nil {
		return runResult{}, fmt.Errorf("seed %d: %w", seed, err)
	}
	defer l.Teardown()

	dt := cfg.Movement.DT
	for i := 0; i < warmupTicks; i++ {
		l.Step(dt, nil)
	}

	samples := make([]float64, fe.ticks)
	for i := range samples {
		start := time.Now()
		l.Step(dt, nil)
		samples[i] = float64(time.Since(start).Nanoseconds()) / 1e3
	}
	slices.Sort(samples)

	return runResult{
		MeanUS:    stat.Mean(samples, nil),
		P90US:     stat.Quantile(0.9, stat.Empirical, samples, nil),
		TreeNodes: l.Index.NodeCount(),
		TreeDepth: l.Index.Depth(),
	}, nil
}

// copyConfig returns a copy of the base config safe to modify.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Quadtree.ExcludedKinds = slices.Clone(fe.baseConfig.Quadtree.ExcludedKinds)
	return &cfg
}
