package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/embervale/mud/internal/dispatch"
	"github.com/embervale/mud/internal/game/behavior"
	"github.com/embervale/mud/internal/game/combat"
	"github.com/embervale/mud/internal/game/dice"
	"github.com/embervale/mud/internal/game/leveling"
	"github.com/embervale/mud/internal/game/world"
)

func combatEventID(entityID string) string { return "combat-" + entityID }

// weaponFor resolves an entity's current attack profile.
func (e *Engine) weaponFor(ent world.Entity) combat.WeaponStats {
	switch v := ent.(type) {
	case *world.Player:
		for _, templateID := range v.EquippedItems {
			if tmpl, ok := e.world.ItemTemplates[templateID]; ok && tmpl.Weapon != nil {
				return *tmpl.Weapon
			}
		}
		return combat.Unarmed()
	case *world.Npc:
		return v.Weapon(e.world.NpcTemplates[v.TemplateID])
	default:
		return combat.Unarmed()
	}
}

// startAttack begins (or retargets) an entity's auto-attack cycle.
func (e *Engine) startAttack(attackerID, targetID string) {
	attacker, ok := e.world.Entity(attackerID)
	if !ok {
		return
	}
	state := &attacker.Core().Combat
	state.TargetID = targetID
	state.AutoAttack = true
	if n, ok := attacker.(*world.Npc); ok {
		n.TargetID = targetID
	}
	e.beginWindup(attackerID)
}

// beginWindup validates the target and starts one attack cycle: wind-up,
// then swing, then the damage landing at the end of the swing.
func (e *Engine) beginWindup(attackerID string) {
	attacker, ok := e.world.Entity(attackerID)
	if !ok {
		return
	}
	state := &attacker.Core().Combat
	if _, valid := e.validTarget(attacker, state.TargetID); !valid {
		e.disengage(attackerID, "Your target is gone.")
		return
	}

	weapon := e.weaponFor(attacker)
	state.CurrentWeapon = weapon
	state.Enter(combat.Windup, e.now(), weapon.WindupTime)
	state.SwingEventID = e.sched.ScheduleID(
		combatEventID(attackerID), weapon.WindupTime,
		func() { e.beginSwing(attackerID) })
}

// beginSwing ends the wind-up: revalidate the target, enter the swing phase,
// and schedule the hit for when the swing completes.
func (e *Engine) beginSwing(attackerID string) {
	attacker, ok := e.world.Entity(attackerID)
	if !ok {
		return
	}
	state := &attacker.Core().Combat
	if _, valid := e.validTarget(attacker, state.TargetID); !valid {
		e.disengage(attackerID, "Your target is gone.")
		return
	}

	weapon := state.CurrentWeapon
	state.Enter(combat.Swing, e.now(), weapon.SwingTime)
	state.SwingEventID = e.sched.ScheduleID(
		combatEventID(attackerID), weapon.SwingTime,
		func() { e.landHit(attackerID) })
}

// validTarget reports whether targetID is still attackable by attacker:
// exists, alive, and in the same room.
func (e *Engine) validTarget(attacker world.Entity, targetID string) (world.Entity, bool) {
	if targetID == "" {
		return nil, false
	}
	target, ok := e.world.Entity(targetID)
	if !ok || !target.IsAlive() {
		return nil, false
	}
	if target.Core().RoomID != attacker.Core().RoomID {
		return nil, false
	}
	return target, true
}

// landHit lands one attack: damage roll, application, messaging, death
// handling, and scheduling of the next cycle.
func (e *Engine) landHit(attackerID string) {
	attacker, ok := e.world.Entity(attackerID)
	if !ok {
		return
	}
	state := &attacker.Core().Combat
	target, valid := e.validTarget(attacker, state.TargetID)
	if !valid {
		e.disengage(attackerID, "Your target is gone.")
		return
	}
	targetCore := target.Core()
	attackerCore := attacker.Core()

	weapon := state.CurrentWeapon
	result := combat.RollDamage(e.dice, combat.DamageInput{
		Weapon:            weapon,
		EffectiveStrength: attackerCore.EffectiveStrength(),
		TargetArmorClass:  targetCore.EffectiveArmorClass(),
		CritChance:        e.cfg.Combat.CritChance,
		CritMultiplier:    e.cfg.Combat.CritMultiplier,
	})

	died := targetCore.ApplyDamage(result.Amount)
	if !target.IsPlayer() {
		targetCore.Combat.AddThreat(attackerID, float64(result.Amount))
	}

	crit := ""
	if result.Crit {
		crit = " Critical hit!"
	}
	if attacker.IsPlayer() {
		e.send(attackerID, fmt.Sprintf("You hit %s for %d damage.%s", targetCore.Name, result.Amount, crit))
	}
	if target.IsPlayer() {
		e.send(targetCore.ID, fmt.Sprintf("%s hits you for %d damage.%s", capitalized(attackerCore.Name), result.Amount, crit))
		if p, ok := e.world.Players[targetCore.ID]; ok {
			e.sendStats(p)
			e.markDirty(DirtyPlayer, p.ID)
		}
	}
	e.sendRoomExcept(attackerCore.RoomID, attackerID, targetCore.ID,
		fmt.Sprintf("%s hits %s.", capitalized(attackerCore.Name), targetCore.Name))

	if died {
		e.handleDeath(targetCore.ID, attackerID)
		return
	}

	// Survivors strike back.
	switch t := target.(type) {
	case *world.Npc:
		e.npcDamaged(t, attackerID)
	case *world.Player:
		if !t.Combat.InCombat() {
			e.startAttack(t.ID, attackerID)
		}
	}

	// The swing has already elapsed; only recovery remains before the next
	// windup.
	pause := e.cfg.Combat.RecoveryInterval
	state.Enter(combat.Recovery, e.now(), pause)
	state.SwingEventID = e.sched.ScheduleID(
		combatEventID(attackerID), pause,
		func() { e.nextCombatTurn(attackerID) })
}

// nextCombatTurn ends recovery. NPCs consult their behavior chain for the
// next action; players simply continue the auto-attack loop.
func (e *Engine) nextCombatTurn(attackerID string) {
	attacker, ok := e.world.Entity(attackerID)
	if !ok {
		return
	}
	state := &attacker.Core().Combat
	if !state.AutoAttack {
		return
	}
	if n, ok := attacker.(*world.Npc); ok {
		res := e.runNpcHook(n, "", func(b behavior.Behavior, ctx *behavior.Context) behavior.Result {
			return b.OnCombatTurn(ctx)
		})
		if res.Handled {
			e.applyBehaviorResult(n, res)
			return
		}
	}
	e.beginWindup(attackerID)
}

// disengage breaks an entity's combat cycle. The message is sent only to
// players, and only when they were mid-cycle.
func (e *Engine) disengage(entityID, message string) {
	ent, ok := e.world.Entity(entityID)
	if !ok {
		return
	}
	state := &ent.Core().Combat
	wasFighting := state.InCombat()
	if state.SwingEventID != "" {
		e.sched.Cancel(state.SwingEventID)
	}
	state.Clear()
	if n, ok := ent.(*world.Npc); ok {
		n.TargetID = ""
	}
	if wasFighting && message != "" && ent.IsPlayer() {
		e.send(entityID, message)
	}
}

// disengageAttackersOf breaks the cycle of everyone currently targeting
// entityID in the given room.
func (e *Engine) disengageAttackersOf(entityID, roomID string) {
	for _, other := range e.world.EntitiesInRoom(roomID) {
		if other.Core().Combat.TargetID == entityID {
			e.disengage(other.Core().ID, "Your target is gone.")
		}
	}
}

// handleDeath routes a kill to NPC or player death handling.
func (e *Engine) handleDeath(victimID, killerID string) {
	victim, ok := e.world.Entity(victimID)
	if !ok {
		return
	}
	e.RemoveAllEffects(victimID)
	e.disengage(victimID, "")

	if n, ok := victim.(*world.Npc); ok {
		e.npcDied(n, killerID)
		return
	}
	if p, ok := victim.(*world.Player); ok {
		e.playerDied(p, killerID)
	}
}

// npcDied handles loot, experience, corpse removal, and respawn scheduling.
func (e *Engine) npcDied(n *world.Npc, killerID string) {
	roomID := n.RoomID
	e.sendRoom(roomID, "", fmt.Sprintf("%s dies!", capitalized(n.Name)))
	e.disengageAttackersOf(n.ID, roomID)

	tmpl := e.world.NpcTemplates[n.TemplateID]
	if tmpl != nil {
		e.rollLoot(tmpl, roomID)
		if killer, ok := e.world.Players[killerID]; ok && tmpl.ExperienceReward > 0 {
			e.awardExperience(killer, tmpl.ExperienceReward)
		}
	}

	now := e.now()
	n.LastKilledAt = &now
	if n.IdleEventID != "" {
		e.sched.Cancel(n.IdleEventID)
	}
	if n.WanderEventID != "" {
		e.sched.Cancel(n.WanderEventID)
	}
	e.world.DetachFromRoom(n.ID)
	if err := e.world.RemoveNpc(n.ID); err != nil {
		e.logger.Error("npc removal failed", zap.String("npc_id", n.ID), zap.Error(err))
	}
	e.scheduleRespawnFor(n)
}

// rollLoot rolls each drop table entry independently and places winners on
// the floor.
func (e *Engine) rollLoot(tmpl *world.NpcTemplate, roomID string) {
	for _, entry := range tmpl.DropTable {
		if !dice.Chance(e.dice, entry.Chance) {
			continue
		}
		itemTmpl, ok := e.world.ItemTemplates[entry.TemplateID]
		if !ok {
			e.logger.Warn("drop table references unknown item",
				zap.String("npc_template", tmpl.ID),
				zap.String("item_template", entry.TemplateID))
			continue
		}
		qty := dice.Between(e.dice, entry.MinQty, entry.MaxQty)
		it := world.NewItem(itemTmpl, qty)
		if err := e.world.RegisterItem(it); err != nil {
			continue
		}
		if err := e.world.PlaceItemInRoom(it.ID, roomID, e.now()); err != nil {
			continue
		}
		e.sendRoom(roomID, "", fmt.Sprintf("%s falls to the ground.", capitalized(it.Name)))
	}
}

// awardExperience grants XP and applies any level-ups crossed.
func (e *Engine) awardExperience(p *world.Player, amount int) {
	p.Experience += amount
	e.send(p.ID, fmt.Sprintf("You gain %d experience.", amount))

	newLevel, gains := leveling.Advance(p.Level, p.Experience)
	for i, g := range gains {
		level := p.Level + i + 1
		p.MaxHealth += g.MaxHealth
		p.MaxEnergy += g.MaxEnergy
		p.Strength += g.Strength
		p.Dexterity += g.Dexterity
		p.Intelligence += g.Intelligence
		p.Vitality += g.Vitality
		// Leveling refills the pools.
		p.CurrentHealth = p.MaxHealth
		p.CurrentEnergy = p.MaxEnergy
		text := fmt.Sprintf("You have reached level %d!", level)
		e.disp.ToPlayer(p.ID, dispatch.LevelUp(level, text))
		e.sendRoom(p.RoomID, p.ID, fmt.Sprintf("%s looks more powerful!", p.Name))
	}
	p.Level = newLevel
	e.sendStats(p)
	e.markDirty(DirtyPlayer, p.ID)
}

// sendRoomExcept messages a room excluding two entities.
func (e *Engine) sendRoomExcept(roomID, excludeA, excludeB, text string) {
	for _, p := range e.world.PlayersInRoom(roomID) {
		if p.ID == excludeA || p.ID == excludeB || !p.IsConnected {
			continue
		}
		e.send(p.ID, text)
	}
}

func capitalized(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
