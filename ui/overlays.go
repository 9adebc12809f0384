package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayGridCells OverlayID = "grid_cells"
	OverlayOccupancy OverlayID = "occupancy"
	OverlayQuadtree  OverlayID = "quadtree"
	OverlayBodies    OverlayID = "bodies"
	OverlaySight     OverlayID = "sight"
	OverlayTargets   OverlayID = "targets"
	OverlayTriggers  OverlayID = "triggers"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this overlay shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "G", "Q")
	Category    string      // Grouping (e.g., "grid", "index")
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
	order       []OverlayID // Maintains insertion order for display
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds standard overlays.
func (r *OverlayRegistry) registerDefaults() {
	// Collision grid
	r.Register(OverlayDescriptor{
		ID:          OverlayGridCells,
		Name:        "Grid Cells",
		Description: "Draw collision grid cell lines",
		Key:         rl.KeyG,
		KeyLabel:    "G",
		Category:    "grid",
		Exclusive:   []OverlayID{OverlayOccupancy},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayOccupancy,
		Name:        "Cell Occupancy",
		Description: "Shade grid cells by how many bodies they hold",
		Key:         rl.KeyO,
		KeyLabel:    "O",
		Category:    "grid",
		Exclusive:   []OverlayID{OverlayGridCells},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayBodies,
		Name:        "Body Bounds",
		Description: "Outline every collision body",
		Key:         rl.KeyB,
		KeyLabel:    "B",
		Category:    "grid",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayTriggers,
		Name:        "Triggers",
		Description: "Highlight trigger zones with bodies inside",
		Key:         rl.KeyT,
		KeyLabel:    "T",
		Category:    "grid",
	})

	// Bounds index
	r.Register(OverlayDescriptor{
		ID:          OverlayQuadtree,
		Name:        "Quadtree",
		Description: "Draw bounds index nodes by depth",
		Key:         rl.KeyQ,
		KeyLabel:    "Q",
		Category:    "index",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlaySight,
		Name:        "Sight",
		Description: "Show the sight query of the selected entity",
		Key:         rl.KeyV,
		KeyLabel:    "V",
		Category:    "index",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayTargets,
		Name:        "Targets",
		Description: "Link each watcher to its nearest target",
		Key:         rl.KeyL,
		KeyLabel:    "L",
		Category:    "index",
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.order = append(r.order, desc.ID)
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	newState := !r.enabled[id]
	r.SetEnabled(id, newState)
	return newState
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}

	r.enabled[id] = enabled

	// If enabling, disable exclusive overlays
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// Get returns an overlay descriptor by ID.
func (r *OverlayRegistry) Get(id OverlayID) (OverlayDescriptor, bool) {
	desc, ok := r.byID[id]
	return desc, ok
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			newState := r.Toggle(desc.ID)
			return desc.ID, newState, true
		}
	}
	return "", false, false
}

// EnabledOverlays returns a list of currently enabled overlay IDs.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var result []OverlayID
	for _, id := range r.order {
		if r.enabled[id] {
			result = append(result, id)
		}
	}
	return result
}
