package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/menagerie/collision"
	"github.com/pthm-cable/menagerie/components"
	"github.com/pthm-cable/menagerie/geom"
)

// InspectorData holds everything shown about the selected entity.
type InspectorData struct {
	ID       uint32
	Kind     components.Kind
	Bounds   geom.AABB
	Category collision.Tags
	Targets  collision.Tags
	Cells    int // grid cells the body spans
	Indexed  bool

	Velocity    components.Velocity
	HasVelocity bool

	Perception    components.Perception
	HasPerception bool

	VisitLeft float64
	IsVisitor bool
}

// Inspector renders the selected entity panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates an inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector and returns the Y below it.
func (ins *Inspector) Draw(data InspectorData) int32 {
	r := ins.renderer
	t := r.Theme

	rows := 7
	if data.HasVelocity {
		rows++
	}
	if data.HasPerception {
		rows += 5
	}
	if data.IsVisitor {
		rows++
	}
	height := t.Padding*2 + t.LineHeight + 4 + int32(rows)*t.LineHeight
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	x := ins.x + t.Padding
	y := ins.y + t.Padding

	rl.DrawRectangle(x, y+2, 10, 10, KindColor(data.Kind))
	rl.DrawText(fmt.Sprintf("%s #%d", data.Kind, data.ID), x+16, y, 16, rl.White)
	y += t.LineHeight + 4

	y = r.DrawSectionHeader(x, y, "Collision")
	y = r.DrawLabelValue(x, y, "Bounds", fmt.Sprintf("%.0f,%.0f %.0fx%.0f", data.Bounds.X, data.Bounds.Y, data.Bounds.Width, data.Bounds.Height))
	y = r.DrawLabelValue(x, y, "Category", data.Category.String())
	y = r.DrawLabelValue(x, y, "Targets", data.Targets.String())
	y = r.DrawLabelValue(x, y, "Cells", fmt.Sprint(data.Cells))
	y = r.DrawLabelValue(x, y, "Indexed", fmt.Sprint(data.Indexed))
	if data.HasVelocity {
		y = r.DrawLabelValue(x, y, "Velocity", fmt.Sprintf("%.1f, %.1f", data.Velocity.X, data.Velocity.Y))
	}

	if data.HasPerception {
		p := data.Perception
		y = r.DrawSectionHeader(x, y, "Perception")
		y = r.DrawLabelValue(x, y, "Sight", fmt.Sprintf("%.0f", p.Sight))
		target := "none"
		if p.Target != nil {
			target = fmt.Sprintf("%s at %.0f", p.Target.Kind, p.TargetDist)
		}
		y = r.DrawLabelValue(x, y, "Target", target)
		y = r.DrawLabelValue(x, y, "In reach", fmt.Sprint(p.InReach))
		y = r.DrawLabelValue(x, y, "Herd", fmt.Sprint(p.HerdSize))
	}

	if data.IsVisitor {
		y = r.DrawLabelValue(x, y, "Visit left", fmt.Sprintf("%.0fs", data.VisitLeft))
	}

	return y + t.Padding
}
