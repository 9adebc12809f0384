package game

import (
	"fmt"

	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/geom"
)

// enclosure is one fenced animal area with its attached trigger zones.
type enclosure struct {
	Bounds    geom.AABB // outer edge of the fence
	Interior  geom.AABB // inside the fence
	Viewing   geom.AABB // strip just below the bottom fence
	WaterHole geom.AABB
	Fences    [4]geom.AABB
}

// parkLayout is the static geometry of a park.
type parkLayout struct {
	World      geom.AABB
	Enclosures []enclosure
	Walkway    geom.AABB // where tourists roam
	Road       geom.AABB // service road along the bottom
	Kiosks     []geom.AABB
}

// planLayout places enclosures in a row along the top of the park, kiosks
// across the middle of the walkway and the road along the bottom edge.
func planLayout(cfg *config.Config) (parkLayout, error) {
	lay := cfg.Layout
	pop := cfg.Population
	w, h := cfg.Derived.WorldWidth, cfg.Derived.WorldHeight

	p := parkLayout{World: geom.New(0, 0, w, h)}

	avail := w - 2*lay.Margin
	if pop.Enclosures > 0 && float64(pop.Enclosures)*lay.EnclosureWidth > avail {
		return p, fmt.Errorf("layout: %d enclosures of width %v do not fit in %v", pop.Enclosures, lay.EnclosureWidth, avail)
	}
	if 2*lay.FenceThickness >= lay.EnclosureWidth || 2*lay.FenceThickness >= lay.EnclosureHeight {
		return p, fmt.Errorf("layout: fence thickness %v leaves no interior", lay.FenceThickness)
	}

	walkTop := lay.Margin + lay.EnclosureHeight + lay.ViewingDepth
	roadTop := h - lay.RoadHeight
	if walkTop >= roadTop {
		return p, fmt.Errorf("layout: no walkway between enclosures (%v) and road (%v)", walkTop, roadTop)
	}
	p.Walkway = geom.New(lay.Margin, walkTop, avail, roadTop-walkTop)
	p.Road = geom.New(0, roadTop, w, lay.RoadHeight)

	var gap float64
	if pop.Enclosures > 1 {
		gap = (avail - float64(pop.Enclosures)*lay.EnclosureWidth) / float64(pop.Enclosures-1)
	}
	for i := 0; i < pop.Enclosures; i++ {
		x := lay.Margin + float64(i)*(lay.EnclosureWidth+gap)
		if pop.Enclosures == 1 {
			x = (w - lay.EnclosureWidth) / 2
		}
		p.Enclosures = append(p.Enclosures, newEnclosure(x, lay.Margin, lay))
	}

	if lay.KioskSize >= p.Walkway.Height {
		return p, fmt.Errorf("layout: kiosk size %v exceeds walkway height %v", lay.KioskSize, p.Walkway.Height)
	}
	mid := p.Walkway.Center()
	for i := 0; i < pop.Kiosks; i++ {
		cx := w * float64(i+1) / float64(pop.Kiosks+1)
		p.Kiosks = append(p.Kiosks, geom.New(cx-lay.KioskSize/2, mid.Y-lay.KioskSize/2, lay.KioskSize, lay.KioskSize))
	}

	return p, nil
}

func newEnclosure(x, y float64, lay config.LayoutConfig) enclosure {
	ew, eh, t := lay.EnclosureWidth, lay.EnclosureHeight, lay.FenceThickness
	e := enclosure{
		Bounds:   geom.New(x, y, ew, eh),
		Interior: geom.New(x+t, y+t, ew-2*t, eh-2*t),
		Viewing:  geom.New(x, y+eh, ew, lay.ViewingDepth),
		Fences: [4]geom.AABB{
			geom.New(x, y, ew, t),            // top
			geom.New(x, y+eh-t, ew, t),       // bottom
			geom.New(x, y+t, t, eh-2*t),      // left
			geom.New(x+ew-t, y+t, t, eh-2*t), // right
		},
	}
	c := e.Interior.Center()
	e.WaterHole = geom.FromCenter(c, lay.WaterHoleSize/2, lay.WaterHoleSize/2)
	return e
}
