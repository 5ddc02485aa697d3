package world

import (
	"fmt"
	"time"
)

// RegisterItem adds an unplaced item to the world. The caller must place it
// with one of the placement operations before the next invariant check.
//
// Postcondition: Returns an error on a duplicate ID.
func (w *World) RegisterItem(it *Item) error {
	if _, exists := w.Items[it.ID]; exists {
		return fmt.Errorf("duplicate item ID %q", it.ID)
	}
	w.Items[it.ID] = it
	return nil
}

// detachItem removes the item from whatever currently holds it.
func (w *World) detachItem(it *Item) {
	if it.RoomID != "" {
		if room, ok := w.Rooms[it.RoomID]; ok {
			delete(room.Items, it.ID)
		}
	}
	if it.PlayerID != "" {
		if p, ok := w.Players[it.PlayerID]; ok {
			delete(p.InventoryItems, it.ID)
		}
	}
	it.clearOwner()
}

// PlaceItemInRoom moves an item onto a room's floor.
//
// Precondition: itemID and roomID must reference existing objects.
// Postcondition: The item's sole owner is the room; DroppedAt is set to now.
func (w *World) PlaceItemInRoom(itemID, roomID string, now time.Time) error {
	it, ok := w.Items[itemID]
	if !ok {
		return fmt.Errorf("item %q not found", itemID)
	}
	room, ok := w.Rooms[roomID]
	if !ok {
		return fmt.Errorf("room %q not found", roomID)
	}

	w.detachItem(it)
	it.RoomID = roomID
	it.DroppedAt = &now
	room.Items[it.ID] = struct{}{}
	return nil
}

// GiveItemToPlayer moves an item into a player's inventory.
//
// Precondition: itemID and playerID must reference existing objects.
// Postcondition: The item's sole owner is the player.
func (w *World) GiveItemToPlayer(itemID, playerID string) error {
	it, ok := w.Items[itemID]
	if !ok {
		return fmt.Errorf("item %q not found", itemID)
	}
	p, ok := w.Players[playerID]
	if !ok {
		return fmt.Errorf("player %q not found", playerID)
	}

	w.detachItem(it)
	it.PlayerID = playerID
	it.DroppedAt = nil
	p.InventoryItems[it.ID] = struct{}{}
	return nil
}

// PutItemInContainer moves an item inside a container item.
//
// Precondition: containerID must reference an existing container item; an
// item can never contain itself, directly or through a cycle.
// Postcondition: The item's sole owner is the container.
func (w *World) PutItemInContainer(itemID, containerID string) error {
	it, ok := w.Items[itemID]
	if !ok {
		return fmt.Errorf("item %q not found", itemID)
	}
	container, ok := w.Items[containerID]
	if !ok {
		return fmt.Errorf("container %q not found", containerID)
	}
	tmpl, ok := w.ItemTemplates[container.TemplateID]
	if !ok || !tmpl.IsContainer {
		return fmt.Errorf("item %q is not a container", containerID)
	}
	if itemID == containerID {
		return fmt.Errorf("item %q cannot contain itself", itemID)
	}
	// Walk up the chain to refuse cycles.
	for cur := container; cur.ContainerID != ""; {
		if cur.ContainerID == itemID {
			return fmt.Errorf("placing %q in %q would create a containment cycle", itemID, containerID)
		}
		next, ok := w.Items[cur.ContainerID]
		if !ok {
			break
		}
		cur = next
	}

	w.detachItem(it)
	it.ContainerID = containerID
	it.DroppedAt = nil
	return nil
}

// DestroyItem removes an item from the world entirely. Contents of a
// destroyed container spill to wherever the container was held.
func (w *World) DestroyItem(itemID string) error {
	it, ok := w.Items[itemID]
	if !ok {
		return fmt.Errorf("item %q not found", itemID)
	}
	spillRoom := it.RoomID
	spillPlayer := it.PlayerID
	w.detachItem(it)
	for _, inner := range w.ItemsInContainer(itemID) {
		inner.ContainerID = ""
		switch {
		case spillRoom != "":
			inner.RoomID = spillRoom
			if room, ok := w.Rooms[spillRoom]; ok {
				room.Items[inner.ID] = struct{}{}
			}
		case spillPlayer != "":
			inner.PlayerID = spillPlayer
			if p, ok := w.Players[spillPlayer]; ok {
				p.InventoryItems[inner.ID] = struct{}{}
			}
		default:
			delete(w.Items, inner.ID)
		}
	}
	delete(w.Items, itemID)
	return nil
}
