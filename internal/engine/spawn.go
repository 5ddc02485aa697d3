package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/embervale/mud/internal/game/world"
)

// defaultRespawnTime applies when neither the NPC template, the spawn
// config, nor the area sets one.
const defaultRespawnTime = 60 * time.Second

// SpawnConfig pins a population of one NPC template to a room. Count is both
// the initial population and the cap the respawn cycle refills to.
type SpawnConfig struct {
	NpcTemplateID string
	RoomID        string
	Count         int
	// RespawnTime overrides the template and area defaults when positive.
	RespawnTime time.Duration
}

// Validate checks spawn config invariants against the world's templates.
func (s SpawnConfig) Validate(w *world.World) error {
	if _, ok := w.NpcTemplates[s.NpcTemplateID]; !ok {
		return fmt.Errorf("spawn: unknown npc template %q", s.NpcTemplateID)
	}
	if _, ok := w.Rooms[s.RoomID]; !ok {
		return fmt.Errorf("spawn %q: unknown room %q", s.NpcTemplateID, s.RoomID)
	}
	if s.Count < 1 {
		return fmt.Errorf("spawn %q: count must be >= 1", s.NpcTemplateID)
	}
	return nil
}

// AddSpawns registers spawn configs. Call before PopulateWorld.
func (e *Engine) AddSpawns(spawns ...SpawnConfig) error {
	for _, s := range spawns {
		if err := s.Validate(e.world); err != nil {
			return err
		}
		e.spawns = append(e.spawns, s)
	}
	return nil
}

// PopulateWorld performs the initial spawn for every config and starts each
// instance's behavior pulse. Called once at boot.
func (e *Engine) PopulateWorld() error {
	for _, s := range e.spawns {
		for i := 0; i < s.Count; i++ {
			if _, err := e.SpawnNpc(s.NpcTemplateID, s.RoomID, s.RespawnTime); err != nil {
				return err
			}
		}
	}
	return nil
}

// SpawnNpc mints and places one NPC instance.
//
// Postcondition: Returns the live instance; its behavior pulse is scheduled.
func (e *Engine) SpawnNpc(templateID, roomID string, respawnOverride time.Duration) (*world.Npc, error) {
	tmpl, ok := e.world.NpcTemplates[templateID]
	if !ok {
		return nil, fmt.Errorf("npc template %q not found", templateID)
	}
	n := world.NewNpc(tmpl, roomID)
	if respawnOverride > 0 {
		n.RespawnOverride = &respawnOverride
	}
	if err := e.world.AddNpc(n); err != nil {
		return nil, err
	}
	e.StartNpcTimers(n)
	return n, nil
}

// respawnDelayFor resolves an NPC's respawn delay: instance override, then
// template, then the spawn area's default, then the package default.
func (e *Engine) respawnDelayFor(n *world.Npc) time.Duration {
	if n.RespawnOverride != nil && *n.RespawnOverride > 0 {
		return *n.RespawnOverride
	}
	if tmpl, ok := e.world.NpcTemplates[n.TemplateID]; ok && tmpl.RespawnTime > 0 {
		return tmpl.RespawnTime
	}
	if area, ok := e.world.AreaForRoom(n.SpawnRoomID); ok && area.DefaultRespawnTime > 0 {
		return area.DefaultRespawnTime
	}
	return defaultRespawnTime
}

// scheduleRespawnFor queues a replacement spawn in the dead NPC's spawn room.
func (e *Engine) scheduleRespawnFor(n *world.Npc) {
	delay := e.respawnDelayFor(n)
	templateID := n.TemplateID
	roomID := n.SpawnRoomID
	var override time.Duration
	if n.RespawnOverride != nil {
		override = *n.RespawnOverride
	}
	e.sched.Schedule(delay, func() {
		if _, err := e.SpawnNpc(templateID, roomID, override); err != nil {
			e.logger.Error("npc respawn failed",
				zap.String("npc_template", templateID),
				zap.String("room_id", roomID),
				zap.Error(err))
			return
		}
		if tmpl, ok := e.world.NpcTemplates[templateID]; ok {
			e.sendRoom(roomID, "", fmt.Sprintf("%s arrives.", capitalized(tmpl.Name)))
		}
	})
}
