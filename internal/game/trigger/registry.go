package trigger

import "fmt"

// Registry indexes triggers by the room or area they are attached to. Rooms
// do not hold their triggers; the engine consults the registry on every
// enter, exit, and unroutable command.
type Registry struct {
	byID   map[string]*Trigger
	byRoom map[string][]*Trigger
	byArea map[string][]*Trigger
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*Trigger),
		byRoom: make(map[string][]*Trigger),
		byArea: make(map[string][]*Trigger),
	}
}

// AddRoomTrigger attaches a trigger to a room.
//
// Precondition: t must Validate.
// Postcondition: Returns an error on a duplicate trigger ID.
func (r *Registry) AddRoomTrigger(roomID string, t *Trigger) error {
	if err := r.index(t); err != nil {
		return err
	}
	r.byRoom[roomID] = append(r.byRoom[roomID], t)
	return nil
}

// AddAreaTrigger attaches a trigger to an area.
//
// Precondition: t must Validate.
// Postcondition: Returns an error on a duplicate trigger ID.
func (r *Registry) AddAreaTrigger(areaID string, t *Trigger) error {
	if err := r.index(t); err != nil {
		return err
	}
	r.byArea[areaID] = append(r.byArea[areaID], t)
	return nil
}

func (r *Registry) index(t *Trigger) error {
	if _, exists := r.byID[t.ID]; exists {
		return fmt.Errorf("duplicate trigger ID %q", t.ID)
	}
	r.byID[t.ID] = t
	return nil
}

// ByID resolves a trigger.
func (r *Registry) ByID(id string) (*Trigger, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// ForRoom returns the triggers attached to a room, in attachment order.
func (r *Registry) ForRoom(roomID string) []*Trigger {
	return r.byRoom[roomID]
}

// ForArea returns the triggers attached to an area, in attachment order.
func (r *Registry) ForArea(areaID string) []*Trigger {
	return r.byArea[areaID]
}

// RoomMatching returns the room's triggers listening on event.
func (r *Registry) RoomMatching(roomID string, event Event) []*Trigger {
	var out []*Trigger
	for _, t := range r.byRoom[roomID] {
		if t.Event == event {
			out = append(out, t)
		}
	}
	return out
}

// AreaMatching returns the area's triggers listening on event.
func (r *Registry) AreaMatching(areaID string, event Event) []*Trigger {
	var out []*Trigger
	for _, t := range r.byArea[areaID] {
		if t.Event == event {
			out = append(out, t)
		}
	}
	return out
}

// TimerTriggers yields every on_timer trigger along with the room or area it
// is attached to, for boot-time scheduling.
func (r *Registry) TimerTriggers(fn func(t *Trigger, roomID, areaID string)) {
	for roomID, list := range r.byRoom {
		for _, t := range list {
			if t.Event == OnTimer {
				fn(t, roomID, "")
			}
		}
	}
	for areaID, list := range r.byArea {
		for _, t := range list {
			if t.Event == OnTimer {
				fn(t, "", areaID)
			}
		}
	}
}
