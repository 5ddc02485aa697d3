package world

import "fmt"

// CheckInvariants verifies the structural invariants of the graph. It is run
// by tests after every command and scheduled callback, and can be invoked
// from admin tooling against a live world.
//
// Checked:
//   - every entity ID in a room's set resolves and agrees on RoomID
//   - every item has exactly one owner; containers are real containers and
//     contain no cycles
//   - 0 <= CurrentHealth <= MaxHealth for every entity
//   - dead NPCs are not listed in any room's entity set
//
// Postcondition: Returns nil when all invariants hold, or an error naming the
// first violation.
func (w *World) CheckInvariants() error {
	for _, room := range w.Rooms {
		for id := range room.Entities {
			e, ok := w.Entity(id)
			if !ok {
				return fmt.Errorf("room %q lists unknown entity %q", room.ID, id)
			}
			if e.Core().RoomID != room.ID {
				return fmt.Errorf("entity %q is listed in room %q but its RoomID is %q", id, room.ID, e.Core().RoomID)
			}
		}
		for id := range room.Items {
			it, ok := w.Items[id]
			if !ok {
				return fmt.Errorf("room %q lists unknown item %q", room.ID, id)
			}
			if it.RoomID != room.ID {
				return fmt.Errorf("item %q is listed in room %q but its RoomID is %q", id, room.ID, it.RoomID)
			}
		}
	}

	for id, it := range w.Items {
		if n := it.OwnerCount(); n != 1 {
			return fmt.Errorf("item %q has %d owners, want exactly 1", id, n)
		}
		if it.ContainerID != "" {
			container, ok := w.Items[it.ContainerID]
			if !ok {
				return fmt.Errorf("item %q references unknown container %q", id, it.ContainerID)
			}
			tmpl, ok := w.ItemTemplates[container.TemplateID]
			if !ok || !tmpl.IsContainer {
				return fmt.Errorf("item %q is held by non-container %q", id, it.ContainerID)
			}
			// Cycle walk bounded by item count.
			seen := map[string]bool{id: true}
			for cur := container; cur != nil && cur.ContainerID != ""; {
				if seen[cur.ID] {
					return fmt.Errorf("containment cycle through item %q", cur.ID)
				}
				seen[cur.ID] = true
				cur = w.Items[cur.ContainerID]
			}
		}
		if it.PlayerID != "" {
			p, ok := w.Players[it.PlayerID]
			if !ok {
				return fmt.Errorf("item %q held by unknown player %q", id, it.PlayerID)
			}
			if _, ok := p.InventoryItems[id]; !ok {
				return fmt.Errorf("item %q held by player %q but absent from their inventory set", id, it.PlayerID)
			}
		}
	}

	check := func(e Entity) error {
		core := e.Core()
		if core.CurrentHealth < 0 || core.CurrentHealth > core.MaxHealth {
			return fmt.Errorf("entity %q health %d outside [0, %d]", core.ID, core.CurrentHealth, core.MaxHealth)
		}
		return nil
	}
	for _, p := range w.Players {
		if err := check(p); err != nil {
			return err
		}
	}
	for _, n := range w.Npcs {
		if err := check(n); err != nil {
			return err
		}
		if !n.IsAlive() {
			if room, ok := w.Rooms[n.RoomID]; ok {
				if _, listed := room.Entities[n.ID]; listed {
					return fmt.Errorf("dead npc %q still listed in room %q", n.ID, room.ID)
				}
			}
		}
	}

	return nil
}

// Validate checks the assembled world at boot: every room and area validates
// in isolation, every exit target resolves, and every area room reference
// resolves.
//
// Postcondition: Returns nil or an error naming the first violation.
func (w *World) Validate() error {
	for _, room := range w.Rooms {
		if err := room.Validate(); err != nil {
			return err
		}
		for dir, target := range room.Exits {
			if _, ok := w.Rooms[target]; !ok {
				return fmt.Errorf("room %q: exit %q targets unknown room %q", room.ID, dir, target)
			}
		}
		if room.AreaID != "" {
			if _, ok := w.Areas[room.AreaID]; !ok {
				return fmt.Errorf("room %q: unknown area %q", room.ID, room.AreaID)
			}
		}
	}
	for _, area := range w.Areas {
		if err := area.Validate(); err != nil {
			return err
		}
		for rid := range area.RoomIDs {
			room, ok := w.Rooms[rid]
			if !ok {
				return fmt.Errorf("area %q: unknown room %q", area.ID, rid)
			}
			if room.AreaID != area.ID {
				return fmt.Errorf("area %q lists room %q but the room belongs to area %q", area.ID, rid, room.AreaID)
			}
		}
	}
	return nil
}
