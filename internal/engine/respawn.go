package engine

import (
	"fmt"
	"time"

	"github.com/embervale/mud/internal/dispatch"
	"github.com/embervale/mud/internal/game/look"
	"github.com/embervale/mud/internal/game/world"
)

func respawnEventID(playerID string) string { return "respawn-" + playerID }

// playerDied puts a player into the dead state and starts the respawn
// countdown. The corpse leaves the room immediately; the player sees the
// countdown tick once per second.
func (e *Engine) playerDied(p *world.Player, killerID string) {
	now := e.now()
	p.DeathTime = &now
	p.RespawnRoomID = e.respawnDestination(p.RoomID)

	killerName := "something"
	if killer, ok := e.world.Entity(killerID); ok {
		killerName = killer.Core().Name
	}
	e.disp.ToPlayer(p.ID, dispatch.Event{Type: dispatch.TypeDeath,
		Text: fmt.Sprintf("You are slain by %s!", killerName)})
	e.sendRoom(p.RoomID, p.ID, fmt.Sprintf("%s collapses, lifeless.", p.Name))
	e.disengageAttackersOf(p.ID, p.RoomID)
	e.world.DetachFromRoom(p.ID)
	e.markDirty(DirtyPlayer, p.ID)

	e.startRespawnCountdown(p)
}

// respawnDestination picks where a player dying in roomID will wake up: a
// uniform draw from the owning area's entry points, or the death room itself
// when the area declares none.
func (e *Engine) respawnDestination(roomID string) string {
	area, ok := e.world.AreaForRoom(roomID)
	if !ok || len(area.EntryPoints) == 0 {
		return roomID
	}
	return area.EntryPoints[e.dice.Intn(len(area.EntryPoints))]
}

// startRespawnCountdown schedules the per-second countdown events and the
// final respawn. All event IDs are recorded on the player so a disconnect
// can cancel the lot.
func (e *Engine) startRespawnCountdown(p *world.Player) {
	total := e.cfg.Respawn.CountdownSeconds
	playerID := p.ID
	dest := p.RespawnRoomID

	e.disp.ToPlayer(playerID, dispatch.RespawnCountdown(total, dest,
		fmt.Sprintf("Respawning in %d...", total)))

	p.CountdownEventIDs = p.CountdownEventIDs[:0]
	for i := 1; i < total; i++ {
		left := total - i
		id := e.sched.ScheduleID(
			fmt.Sprintf("respawn-countdown-%s-%d", playerID, i),
			time.Duration(i)*time.Second,
			func() {
				e.disp.ToPlayer(playerID, dispatch.RespawnCountdown(left, dest,
					fmt.Sprintf("Respawning in %d...", left)))
			})
		p.CountdownEventIDs = append(p.CountdownEventIDs, id)
	}
	p.RespawnEventID = e.sched.ScheduleID(
		respawnEventID(playerID), time.Duration(total)*time.Second,
		func() { e.respawnPlayer(playerID) })
}

// cancelRespawn drops every pending countdown and respawn event.
func (e *Engine) cancelRespawn(p *world.Player) {
	for _, id := range p.CountdownEventIDs {
		e.sched.Cancel(id)
	}
	p.CountdownEventIDs = p.CountdownEventIDs[:0]
	if p.RespawnEventID != "" {
		e.sched.Cancel(p.RespawnEventID)
		p.RespawnEventID = ""
	}
}

// respawnPlayer restores a dead player at the destination chosen when they
// died, with full pools.
func (e *Engine) respawnPlayer(playerID string) {
	p, ok := e.world.Players[playerID]
	if !ok || p.DeathTime == nil {
		return
	}
	dest := p.RespawnRoomID
	if dest == "" {
		dest = e.StartRoom()
	}
	p.DeathTime = nil
	p.RespawnRoomID = ""
	p.RespawnEventID = ""
	p.CountdownEventIDs = p.CountdownEventIDs[:0]
	p.CurrentHealth = p.MaxHealth
	p.CurrentEnergy = p.MaxEnergy
	e.RemoveAllEffects(playerID)

	if err := e.world.MoveEntity(playerID, dest); err != nil {
		e.send(playerID, "Something went wrong.")
		return
	}
	e.markDirty(DirtyPlayer, playerID)

	e.disp.ToPlayer(playerID, dispatch.Event{Type: dispatch.TypeRespawn,
		Text: "The world fades back in."})
	e.sendStats(p)
	e.sendRoom(dest, playerID, fmt.Sprintf("%s shimmers back into existence.", p.Name))
	if room, ok := e.world.Room(dest); ok {
		e.send(playerID, look.RoomView(e.world, room, playerID))
	}
}
