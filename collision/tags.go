package collision

import "strings"

// Tags is a set of collision categories. A body's Category says what it is;
// its Targets say which categories it reacts to.
type Tags uint32

// Collision categories.
const (
	TagWall Tags = 1 << iota
	TagFence
	TagWater
	TagAnimal
	TagTourist
	TagVehicle
	TagStaff
	TagTrigger

	TagNone Tags = 0
	TagAll  Tags = TagWall | TagFence | TagWater | TagAnimal | TagTourist | TagVehicle | TagStaff | TagTrigger
)

var tagNames = [...]string{"wall", "fence", "water", "animal", "tourist", "vehicle", "staff", "trigger"}

// Has reports whether every tag in other is set.
func (t Tags) Has(other Tags) bool {
	return t&other == other
}

// Overlaps reports whether t and other share at least one tag.
func (t Tags) Overlaps(other Tags) bool {
	return t&other != 0
}

// With returns t plus other.
func (t Tags) With(other Tags) Tags {
	return t | other
}

// Without returns t minus other.
func (t Tags) Without(other Tags) Tags {
	return t &^ other
}

func (t Tags) String() string {
	if t == TagNone {
		return "none"
	}
	var names []string
	for i, name := range tagNames {
		if t&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}
