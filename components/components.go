// Package components defines ECS components for the park simulation.
package components

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/menagerie/collision"
)

// Kind distinguishes the entity types of the park.
type Kind uint8

const (
	KindFence     Kind = iota // enclosure fence segment (static)
	KindStructure             // kiosk or building (static)
	KindZone                  // trigger area: viewing area, water hole
	KindAnimal
	KindTourist
	KindVehicle

	KindCount
)

var kindNames = [KindCount]string{"fence", "structure", "zone", "animal", "tourist", "vehicle"}

func (k Kind) String() string {
	if k < KindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown entity kind %q", s)
}

// Mobile reports whether entities of this kind move.
func (k Kind) Mobile() bool {
	return k == KindAnimal || k == KindTourist || k == KindVehicle
}

// Position is an entity's world position. Shapes are laid out around it.
type Position struct {
	X, Y float64
}

// Vec returns the position as a vector.
func (p Position) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Velocity in world units per second.
type Velocity struct {
	X, Y float64
}

// Vec returns the velocity as a vector.
func (v Velocity) Vec() r2.Vec {
	return r2.Vec{X: v.X, Y: v.Y}
}

// Collider ties an entity to both spatial indexes: Body lives in the
// collision grid, Agent in the bounds index. Either may be nil.
type Collider struct {
	Body  *collision.Body
	Agent *Agent
}

// Perception holds what an entity noticed during the last perception pass.
type Perception struct {
	Sight float64 // radius of the sight query
	Reach float64 // margin of the reach test

	Target     *Agent  // nearest watched agent, nil when none
	TargetDist float64 // centre distance to Target
	InReach    bool    // a watched agent is within Reach
	Herd       r2.Vec  // centroid of visible same-kind agents
	HerdSize   int
}

// Visitor is a tourist's remaining time in the park, in seconds.
type Visitor struct {
	Remaining float64
}
