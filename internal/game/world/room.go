package world

import "fmt"

// Room is one location in the world graph. Entities and Items hold IDs only;
// the World owns the referenced objects.
type Room struct {
	ID          string
	Name        string
	Description string
	// RoomType is an environment tag ("indoor", "cave", "road", ...).
	RoomType string
	// AreaID is the owning area; empty for orphan rooms.
	AreaID string
	// Exits maps direction → destination room ID.
	Exits map[Direction]string
	// Entities is the set of entity IDs present.
	Entities map[string]struct{}
	// Items is the set of item IDs lying here.
	Items map[string]struct{}
	// OnEnterEffect is an effect template applied to players entering; empty = none.
	OnEnterEffect string
	// OnExitEffect is an effect template applied to players leaving; empty = none.
	OnExitEffect string
	// DynamicDescriptionOverride, when set by a trigger, replaces Description.
	DynamicDescriptionOverride string
	// DynamicExitsOverride, when non-nil, replaces Exits entirely.
	DynamicExitsOverride map[Direction]string
}

// NewRoom creates a room with empty collections.
//
// Precondition: id and name must be non-empty.
func NewRoom(id, name, description string) *Room {
	return &Room{
		ID:          id,
		Name:        name,
		Description: description,
		Exits:       make(map[Direction]string),
		Entities:    make(map[string]struct{}),
		Items:       make(map[string]struct{}),
	}
}

// EffectiveDescription returns the trigger override when set, else the base
// description.
func (r *Room) EffectiveDescription() string {
	if r.DynamicDescriptionOverride != "" {
		return r.DynamicDescriptionOverride
	}
	return r.Description
}

// EffectiveExits returns the trigger override when set, else the base exits.
// Callers must not mutate the returned map.
func (r *Room) EffectiveExits() map[Direction]string {
	if r.DynamicExitsOverride != nil {
		return r.DynamicExitsOverride
	}
	return r.Exits
}

// ExitTo returns the destination room ID in the given direction.
//
// Postcondition: Returns ("", false) when no such exit exists.
func (r *Room) ExitTo(dir Direction) (string, bool) {
	target, ok := r.EffectiveExits()[dir]
	return target, ok && target != ""
}

// ExitDirections returns the available directions in standard order.
func (r *Room) ExitDirections() []Direction {
	exits := r.EffectiveExits()
	var out []Direction
	for _, d := range StandardDirections {
		if _, ok := exits[d]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Validate checks room invariants in isolation. Cross-room checks (exit
// targets resolve) belong to World.Validate.
func (r *Room) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("room: id must not be empty")
	}
	if r.Name == "" {
		return fmt.Errorf("room %q: name must not be empty", r.ID)
	}
	if r.Description == "" {
		return fmt.Errorf("room %q: description must not be empty", r.ID)
	}
	for dir, target := range r.Exits {
		if !dir.IsStandard() {
			return fmt.Errorf("room %q: exit direction %q is not standard", r.ID, dir)
		}
		if target == "" {
			return fmt.Errorf("room %q: exit %q has empty target", r.ID, dir)
		}
	}
	return nil
}
