package engine

import (
	"fmt"

	"github.com/embervale/mud/internal/game/combat"
	"github.com/embervale/mud/internal/game/look"
	"github.com/embervale/mud/internal/game/world"
)

func cmdAttack(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Attack what?")
		return
	}
	target, ok := look.FindEntity(e.world, p.RoomID, args, p.ID)
	if !ok {
		e.send(p.ID, "You don't see that here.")
		return
	}
	if target.IsPlayer() {
		e.send(p.ID, fmt.Sprintf("You can't attack %s.", target.Core().Name))
		return
	}
	if p.Combat.InCombat() && p.Combat.TargetID == target.Core().ID {
		e.send(p.ID, fmt.Sprintf("You are already attacking %s.", target.Core().Name))
		return
	}
	if p.Combat.SwingEventID != "" {
		e.sched.Cancel(p.Combat.SwingEventID)
	}

	e.send(p.ID, fmt.Sprintf("You attack %s!", target.Core().Name))
	e.sendRoom(p.RoomID, p.ID, fmt.Sprintf("%s attacks %s!", p.Name, target.Core().Name))
	e.startAttack(p.ID, target.Core().ID)
}

func cmdCombat(e *Engine, p *world.Player, _ string) {
	if !p.Combat.InCombat() {
		e.send(p.ID, "You are not fighting anyone.")
		return
	}
	targetName := "nothing"
	targetHealth := ""
	if target, ok := e.world.Entity(p.Combat.TargetID); ok {
		targetName = target.Core().Name
		targetHealth = fmt.Sprintf(" (%s)", target.Core().HealthDescription())
	}
	e.send(p.ID, fmt.Sprintf("You are fighting %s%s with %s. [%s]",
		targetName, targetHealth, p.Combat.CurrentWeapon.Name, p.Combat.Phase))
}

func cmdStop(e *Engine, p *world.Player, _ string) {
	if !p.Combat.InCombat() {
		e.send(p.ID, "You are not fighting anyone.")
		return
	}
	e.disengage(p.ID, "")
	e.send(p.ID, "You stop fighting.")
	e.sendRoom(p.RoomID, p.ID, fmt.Sprintf("%s stops fighting.", p.Name))
}

func cmdFlee(e *Engine, p *world.Player, _ string) {
	if !p.Combat.InCombat() && !e.isUnderAttack(p.ID) {
		e.send(p.ID, "You are not fighting anyone.")
		return
	}

	room, ok := e.world.Room(p.RoomID)
	if !ok {
		return
	}
	exits := room.EffectiveExits()
	if len(exits) == 0 {
		e.send(p.ID, "There's nowhere to run!")
		return
	}

	success, roll, dc := combat.TryFlee(e.dice, p.CurrentHealth, p.MaxHealth, p.EffectiveDexterity())
	if !success {
		e.send(p.ID, fmt.Sprintf("You try to flee, but can't get away! (%d vs %d)", roll, dc))
		e.sendRoom(p.RoomID, p.ID, fmt.Sprintf("%s tries to flee, but stumbles!", p.Name))
		return
	}

	// Pick a random exit among the effective ones, in standard order.
	dirs := room.ExitDirections()
	dir := dirs[e.dice.Intn(len(dirs))]

	e.disengage(p.ID, "")
	e.disengageAttackersOf(p.ID, room.ID)
	e.send(p.ID, fmt.Sprintf("You flee %s!", dir))
	e.sendRoom(room.ID, p.ID, fmt.Sprintf("%s flees %s!", p.Name, dir))

	dest := exits[dir]
	if err := e.world.MoveEntity(p.ID, dest); err != nil {
		return
	}
	e.markDirty(DirtyPlayer, p.ID)
	if destRoom, ok := e.world.Room(dest); ok {
		e.sendRoom(dest, p.ID, fmt.Sprintf("%s rushes in, wild-eyed.", p.Name))
		e.send(p.ID, look.RoomView(e.world, destRoom, p.ID))
	}
}

// isUnderAttack reports whether any entity in the player's room is targeting
// them.
func (e *Engine) isUnderAttack(playerID string) bool {
	p, ok := e.world.Players[playerID]
	if !ok {
		return false
	}
	for _, ent := range e.world.EntitiesInRoom(p.RoomID) {
		if ent.Core().Combat.TargetID == playerID {
			return true
		}
	}
	return false
}
