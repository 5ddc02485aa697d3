package world

import (
	"fmt"
	"sort"

	"github.com/embervale/mud/internal/game/effect"
)

// World owns every room, area, entity, item, and template. All collections
// store IDs; the maps here are the single source of truth for object
// lifetime.
//
// Concurrency: the World is mutated only by the engine goroutine. Connection
// and timer goroutines interact through the engine's mailbox, never directly.
type World struct {
	Rooms   map[string]*Room
	Areas   map[string]*Area
	Players map[string]*Player
	Npcs    map[string]*Npc
	Items   map[string]*Item

	NpcTemplates    map[string]*NpcTemplate
	ItemTemplates   map[string]*ItemTemplate
	EffectTemplates map[string]*effect.Template
}

// New creates an empty World.
func New() *World {
	return &World{
		Rooms:           make(map[string]*Room),
		Areas:           make(map[string]*Area),
		Players:         make(map[string]*Player),
		Npcs:            make(map[string]*Npc),
		Items:           make(map[string]*Item),
		NpcTemplates:    make(map[string]*NpcTemplate),
		ItemTemplates:   make(map[string]*ItemTemplate),
		EffectTemplates: make(map[string]*effect.Template),
	}
}

// Entity resolves an entity ID across players and NPCs.
//
// Postcondition: Returns (entity, true) if found, or (nil, false).
func (w *World) Entity(id string) (Entity, bool) {
	if p, ok := w.Players[id]; ok {
		return p, true
	}
	if n, ok := w.Npcs[id]; ok {
		return n, true
	}
	return nil, false
}

// Room returns the room with the given ID.
func (w *World) Room(id string) (*Room, bool) {
	r, ok := w.Rooms[id]
	return r, ok
}

// Area returns the area with the given ID.
func (w *World) Area(id string) (*Area, bool) {
	a, ok := w.Areas[id]
	return a, ok
}

// AreaForRoom resolves the area owning roomID.
//
// Postcondition: Returns (nil, false) for orphan rooms.
func (w *World) AreaForRoom(roomID string) (*Area, bool) {
	r, ok := w.Rooms[roomID]
	if !ok || r.AreaID == "" {
		return nil, false
	}
	return w.Area(r.AreaID)
}

// AddRoom registers a room.
//
// Precondition: room must be non-nil and validated.
// Postcondition: Returns an error on a duplicate ID.
func (w *World) AddRoom(room *Room) error {
	if _, exists := w.Rooms[room.ID]; exists {
		return fmt.Errorf("duplicate room ID %q", room.ID)
	}
	w.Rooms[room.ID] = room
	return nil
}

// AddArea registers an area.
//
// Postcondition: Returns an error on a duplicate ID.
func (w *World) AddArea(area *Area) error {
	if _, exists := w.Areas[area.ID]; exists {
		return fmt.Errorf("duplicate area ID %q", area.ID)
	}
	w.Areas[area.ID] = area
	return nil
}

// AddPlayer registers a player and places them in their current room.
//
// Precondition: p.RoomID must reference an existing room.
// Postcondition: The room's entity set contains p.ID.
func (w *World) AddPlayer(p *Player) error {
	if _, exists := w.Players[p.ID]; exists {
		return fmt.Errorf("player %q already registered", p.ID)
	}
	room, ok := w.Rooms[p.RoomID]
	if !ok {
		return fmt.Errorf("player %q: room %q not found", p.ID, p.RoomID)
	}
	w.Players[p.ID] = p
	room.Entities[p.ID] = struct{}{}
	return nil
}

// RemovePlayer unregisters a player and clears room occupancy. The player's
// items remain owned by the player ID for reconnect.
func (w *World) RemovePlayer(id string) error {
	p, ok := w.Players[id]
	if !ok {
		return fmt.Errorf("player %q not found", id)
	}
	if room, ok := w.Rooms[p.RoomID]; ok {
		delete(room.Entities, id)
	}
	delete(w.Players, id)
	return nil
}

// AddNpc registers a live NPC instance and places it in its room.
//
// Precondition: n.RoomID must reference an existing room.
func (w *World) AddNpc(n *Npc) error {
	if _, exists := w.Npcs[n.ID]; exists {
		return fmt.Errorf("npc %q already registered", n.ID)
	}
	room, ok := w.Rooms[n.RoomID]
	if !ok {
		return fmt.Errorf("npc %q: room %q not found", n.ID, n.RoomID)
	}
	w.Npcs[n.ID] = n
	room.Entities[n.ID] = struct{}{}
	return nil
}

// RemoveNpc deletes an NPC instance and clears room occupancy.
func (w *World) RemoveNpc(id string) error {
	n, ok := w.Npcs[id]
	if !ok {
		return fmt.Errorf("npc %q not found", id)
	}
	if room, ok := w.Rooms[n.RoomID]; ok {
		delete(room.Entities, id)
	}
	delete(w.Npcs, id)
	return nil
}

// DetachFromRoom removes a dead entity from its room's entity set without
// deleting the entity itself. Used for dead players awaiting respawn and for
// NPC corpses pending removal.
func (w *World) DetachFromRoom(entityID string) {
	e, ok := w.Entity(entityID)
	if !ok {
		return
	}
	if room, ok := w.Rooms[e.Core().RoomID]; ok {
		delete(room.Entities, entityID)
	}
}

// MoveEntity relocates an entity to toRoomID, maintaining both rooms' entity
// sets.
//
// Precondition: toRoomID must reference an existing room.
// Postcondition: entity.RoomID == toRoomID; old room no longer lists the
// entity; new room does.
func (w *World) MoveEntity(entityID, toRoomID string) error {
	e, ok := w.Entity(entityID)
	if !ok {
		return fmt.Errorf("entity %q not found", entityID)
	}
	to, ok := w.Rooms[toRoomID]
	if !ok {
		return fmt.Errorf("room %q not found", toRoomID)
	}

	core := e.Core()
	if from, ok := w.Rooms[core.RoomID]; ok {
		delete(from.Entities, entityID)
	}
	core.RoomID = toRoomID
	to.Entities[entityID] = struct{}{}
	return nil
}

// PlayersInRoom returns the players present in roomID.
//
// Postcondition: Returns a non-nil slice sorted by ID (may be empty).
func (w *World) PlayersInRoom(roomID string) []*Player {
	out := []*Player{}
	room, ok := w.Rooms[roomID]
	if !ok {
		return out
	}
	for id := range room.Entities {
		if p, ok := w.Players[id]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NpcsInRoom returns the NPCs present in roomID.
//
// Postcondition: Returns a non-nil slice sorted by ID (may be empty).
func (w *World) NpcsInRoom(roomID string) []*Npc {
	out := []*Npc{}
	room, ok := w.Rooms[roomID]
	if !ok {
		return out
	}
	for id := range room.Entities {
		if n, ok := w.Npcs[id]; ok {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EntitiesInRoom returns every entity present in roomID.
//
// Postcondition: Returns a non-nil slice sorted by ID (may be empty).
func (w *World) EntitiesInRoom(roomID string) []Entity {
	out := []Entity{}
	room, ok := w.Rooms[roomID]
	if !ok {
		return out
	}
	for id := range room.Entities {
		if e, ok := w.Entity(id); ok {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Core().ID < out[j].Core().ID })
	return out
}

// ItemsInRoom returns the items lying in roomID.
//
// Postcondition: Returns a non-nil slice sorted by ID (may be empty).
func (w *World) ItemsInRoom(roomID string) []*Item {
	out := []*Item{}
	room, ok := w.Rooms[roomID]
	if !ok {
		return out
	}
	for id := range room.Items {
		if it, ok := w.Items[id]; ok {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ItemsHeldBy returns the items in a player's inventory.
//
// Postcondition: Returns a non-nil slice sorted by ID (may be empty).
func (w *World) ItemsHeldBy(playerID string) []*Item {
	out := []*Item{}
	p, ok := w.Players[playerID]
	if !ok {
		return out
	}
	for id := range p.InventoryItems {
		if it, ok := w.Items[id]; ok {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ItemsInContainer returns the items inside the given container item.
//
// Postcondition: Returns a non-nil slice sorted by ID (may be empty).
func (w *World) ItemsInContainer(containerID string) []*Item {
	out := []*Item{}
	for _, it := range w.Items {
		if it.ContainerID == containerID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
