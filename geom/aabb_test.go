package geom

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestIntersects(t *testing.T) {
	base := New(0, 0, 10, 10)

	tests := []struct {
		name  string
		other AABB
		want  bool
	}{
		{"identical", New(0, 0, 10, 10), true},
		{"overlap corner", New(5, 5, 10, 10), true},
		{"contained", New(2, 2, 2, 2), true},
		{"touching right edge", New(10, 0, 5, 5), false},
		{"touching bottom edge", New(0, 10, 5, 5), false},
		{"far away", New(50, 50, 1, 1), false},
		{"overlap x only", New(5, 20, 10, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects(%v) = %v, want %v", tt.other, got, tt.want)
			}
			// Symmetric by construction
			if got := tt.other.Intersects(base); got != tt.want {
				t.Errorf("reverse Intersects(%v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

func TestOffsetMutatesInPlace(t *testing.T) {
	a := New(1, 2, 3, 4)
	a.Offset(r2.Vec{X: 10, Y: -2})

	if !a.Equal(New(11, 0, 3, 4)) {
		t.Errorf("after Offset got %v, want (11,0 3x4)", a)
	}

	b := a.Translated(r2.Vec{X: 1, Y: 1})
	if !a.Equal(New(11, 0, 3, 4)) {
		t.Errorf("Translated mutated receiver: %v", a)
	}
	if !b.Equal(New(12, 1, 3, 4)) {
		t.Errorf("Translated = %v, want (12,1 3x4)", b)
	}
}

func TestEqualComparesCoordinates(t *testing.T) {
	a := &AABB{X: 1, Y: 1, Width: 2, Height: 2}
	b := &AABB{X: 1, Y: 1, Width: 2, Height: 2}

	if a == b {
		t.Fatal("test needs distinct instances")
	}
	if !a.Equal(*b) {
		t.Error("distinct AABBs with the same coordinates should be equal")
	}
	if a.Equal(New(1, 1, 2, 3)) {
		t.Error("AABBs with different height should not be equal")
	}
}

func TestDerivedCorners(t *testing.T) {
	a := New(32, 64, 32, 16)

	if got := a.BottomRight(); got != (r2.Vec{X: 63, Y: 79}) {
		t.Errorf("BottomRight = %v, want {63 79}", got)
	}
	if got := a.Center(); got != (r2.Vec{X: 48, Y: 72}) {
		t.Errorf("Center = %v, want {48 72}", got)
	}
	if a.Right() != 64 || a.Bottom() != 80 {
		t.Errorf("Right/Bottom = %v/%v, want 64/80", a.Right(), a.Bottom())
	}
}

func TestIsEmpty(t *testing.T) {
	if !New(5, 5, 0, 10).IsEmpty() {
		t.Error("zero width should be empty")
	}
	if !(AABB{}).IsEmpty() {
		t.Error("zero value should be empty")
	}
	if New(0, 0, 0.5, 0.5).IsEmpty() {
		t.Error("small positive area should not be empty")
	}
}

func TestContains(t *testing.T) {
	outer := New(0, 0, 50, 50)
	if !outer.Contains(New(0, 0, 50, 50)) {
		t.Error("AABB should contain itself")
	}
	if !outer.Contains(New(10, 10, 5, 5)) {
		t.Error("inner box should be contained")
	}
	if outer.Contains(New(45, 45, 10, 10)) {
		t.Error("overhanging box should not be contained")
	}
}
