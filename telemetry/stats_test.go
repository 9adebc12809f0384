package telemetry

import (
	"log/slog"
	"math"
	"testing"
)

func TestComputeQueryStats(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	mean, std, p50, p90, peak := ComputeQueryStats(values)

	if math.Abs(mean-5.5) > 1e-9 {
		t.Errorf("mean = %v, want 5.5", mean)
	}
	// Sample standard deviation of 1..10
	if math.Abs(std-3.02765) > 1e-4 {
		t.Errorf("std = %v, want ~3.0277", std)
	}
	if p50 != 5 {
		t.Errorf("p50 = %v, want 5", p50)
	}
	if p90 != 9 {
		t.Errorf("p90 = %v, want 9", p90)
	}
	if peak != 10 {
		t.Errorf("max = %v, want 10", peak)
	}
	if values[0] != 10 {
		t.Error("input was reordered")
	}
}

func TestComputeQueryStatsSmall(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		wantMean float64
		wantStd  float64
	}{
		{"empty", nil, 0, 0},
		{"single", []float64{4}, 4, 0},
		{"constant", []float64{3, 3, 3}, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, std, _, _, _ := ComputeQueryStats(tt.values)
			if math.Abs(mean-tt.wantMean) > 1e-9 || math.Abs(std-tt.wantStd) > 1e-9 {
				t.Errorf("mean, std = %v, %v, want %v, %v", mean, std, tt.wantMean, tt.wantStd)
			}
		})
	}
}

func TestWindowStatsLogValue(t *testing.T) {
	s := WindowStats{WindowEndTick: 600, Animals: 24, Drinks: 3}
	v := s.LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("kind = %v, want group", v.Kind())
	}
	found := map[string]bool{}
	for _, a := range v.Group() {
		found[a.Key] = true
	}
	for _, key := range []string{"window_end", "animals", "drinks", "sight_p90"} {
		if !found[key] {
			t.Errorf("missing attribute %q", key)
		}
	}
}
