package camera

import (
	"math"
	"testing"

	"github.com/pthm-cable/menagerie/geom"
)

func TestNewFitsWorld(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	if cam.X != 1280 || cam.Y != 720 {
		t.Errorf("expected camera at (1280, 720), got (%f, %f)", cam.X, cam.Y)
	}
	if math.Abs(cam.Zoom-0.5) > 1e-9 {
		t.Errorf("expected zoom 0.5, got %f", cam.Zoom)
	}
	if !cam.VisibleBounds().Equal(geom.New(0, 0, 2560, 1440)) {
		t.Errorf("VisibleBounds = %v", cam.VisibleBounds())
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(1)

	sx, sy := cam.WorldToScreen(1280, 720)
	if math.Abs(sx-640) > 0.01 || math.Abs(sy-360) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(1.7)

	testCases := []struct{ sx, sy float64 }{
		{640, 360},
		{100, 100},
		{1200, 600},
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(sx-tc.sx) > 0.01 || math.Abs(sy-tc.sy) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanStaysInsideWorld(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(2)

	cam.Pan(-1e6, -1e6)
	view := cam.VisibleBounds()
	if view.X != 0 || view.Y != 0 {
		t.Errorf("view after panning to the corner = %v", view)
	}

	cam.Pan(1e6, 1e6)
	view = cam.VisibleBounds()
	if math.Abs(view.Right()-2560) > 1e-9 || math.Abs(view.Bottom()-1440) > 1e-9 {
		t.Errorf("view after panning to the far corner = %v", view)
	}
}

func TestZoomedOutCentres(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(cam.MinZoom)
	cam.Pan(500, 0)
	if cam.X != 1280 {
		t.Errorf("X = %v, want centred 1280 when the world fits", cam.X)
	}
}

func TestZoomClamping(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	tests := []struct {
		name   string
		factor float64
		want   float64
	}{
		{"in past max", 100, cam.MaxZoom},
		{"out past min", 1e-6, cam.MinZoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.Reset()
			cam.ZoomBy(tt.factor)
			if cam.Zoom != tt.want {
				t.Errorf("Zoom = %v, want %v", cam.Zoom, tt.want)
			}
		})
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(2)
	cam.Pan(-1e6, -1e6)

	if !cam.IsVisible(geom.New(10, 10, 5, 5)) {
		t.Error("box in the corner should be visible")
	}
	if cam.IsVisible(geom.New(2000, 1000, 5, 5)) {
		t.Error("far box should not be visible")
	}
}

func TestResizeKeepsZoomInRange(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(cam.MinZoom)
	cam.Resize(2560, 1440)
	if cam.Zoom < cam.MinZoom {
		t.Errorf("Zoom %v below MinZoom %v", cam.Zoom, cam.MinZoom)
	}
}
