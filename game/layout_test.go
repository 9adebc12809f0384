package game

import (
	"strings"
	"testing"

	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/geom"
)

func TestPlanLayoutDefaults(t *testing.T) {
	p, err := planLayout(config.Defaults())
	if err != nil {
		t.Fatalf("planLayout: %v", err)
	}

	if len(p.Enclosures) != 4 {
		t.Fatalf("%d enclosures, want 4", len(p.Enclosures))
	}
	first, last := p.Enclosures[0], p.Enclosures[3]
	if !first.Bounds.Equal(geom.New(40, 40, 240, 200)) {
		t.Errorf("first enclosure = %v", first.Bounds)
	}
	if last.Bounds.Right() != 1240 {
		t.Errorf("last enclosure right edge = %v, want 1240", last.Bounds.Right())
	}
	if !first.Viewing.Equal(geom.New(40, 240, 240, 40)) {
		t.Errorf("viewing area = %v", first.Viewing)
	}
	if !first.Interior.Equal(geom.New(46, 46, 228, 188)) {
		t.Errorf("interior = %v", first.Interior)
	}
	if !first.WaterHole.Equal(geom.New(142, 122, 36, 36)) {
		t.Errorf("water hole = %v", first.WaterHole)
	}
	for i, f := range first.Fences {
		if f.Intersects(first.Interior) {
			t.Errorf("fence %d %v overlaps interior", i, f)
		}
		if !first.Bounds.Contains(f) {
			t.Errorf("fence %d %v outside enclosure", i, f)
		}
	}

	if !p.Walkway.Equal(geom.New(40, 280, 1200, 408)) {
		t.Errorf("walkway = %v", p.Walkway)
	}
	if !p.Road.Equal(geom.New(0, 688, 1280, 80)) {
		t.Errorf("road = %v", p.Road)
	}
	if len(p.Kiosks) != 3 {
		t.Fatalf("%d kiosks, want 3", len(p.Kiosks))
	}
	for i, want := range []float64{320, 640, 960} {
		if c := p.Kiosks[i].Center(); c.X != want || c.Y != 484 {
			t.Errorf("kiosk %d centre = %v, want (%v, 484)", i, c, want)
		}
	}
}

func TestPlanLayoutSingleEnclosureCentred(t *testing.T) {
	cfg := config.Defaults()
	cfg.Population.Enclosures = 1
	p, err := planLayout(cfg)
	if err != nil {
		t.Fatalf("planLayout: %v", err)
	}
	if p.Enclosures[0].Bounds.X != 520 {
		t.Errorf("enclosure x = %v, want 520", p.Enclosures[0].Bounds.X)
	}
}

func TestPlanLayoutRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		want   string
	}{
		{"too many enclosures", func(c *config.Config) { c.Population.Enclosures = 6 }, "do not fit"},
		{"thick fence", func(c *config.Config) { c.Layout.FenceThickness = 120 }, "no interior"},
		{"no walkway", func(c *config.Config) { c.Layout.EnclosureHeight = 700 }, "no walkway"},
		{"kiosk too big", func(c *config.Config) { c.Layout.KioskSize = 500 }, "kiosk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.modify(cfg)
			_, err := planLayout(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
