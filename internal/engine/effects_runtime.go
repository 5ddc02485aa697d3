package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/embervale/mud/internal/game/effect"
)

// ApplyEffect mints an effect instance from a template onto an entity and
// schedules its ticks and expiration.
//
// Postcondition: Returns the applied instance's EffectID, or an error when
// the template or entity does not exist.
func (e *Engine) ApplyEffect(entityID, templateID string) (string, error) {
	tmpl, ok := e.world.EffectTemplates[templateID]
	if !ok {
		return "", fmt.Errorf("effect template %q not found", templateID)
	}
	target, ok := e.world.Entity(entityID)
	if !ok {
		return "", fmt.Errorf("entity %q not found", entityID)
	}
	core := target.Core()

	ef := effect.New(tmpl, e.now())
	core.AddEffect(ef)

	switch {
	case ef.Periodic() && (ef.Duration <= 0 || ef.Duration >= ef.Interval):
		ef.PeriodicEventID = e.sched.ScheduleRecurring(
			"effect-tick-"+ef.EffectID, ef.Interval, ef.Interval,
			func() { e.effectTick(entityID, ef.EffectID) })
	case ef.Duration > 0:
		ef.ExpirationEventID = e.sched.ScheduleID(
			"effect-exp-"+ef.EffectID, ef.Duration,
			func() { e.expireEffect(entityID, ef.EffectID) })
	}

	if target.IsPlayer() {
		e.send(entityID, fmt.Sprintf("You are affected by *%s*.", ef.Name))
		e.markDirty(DirtyPlayer, entityID)
	}
	if ef.HasStatModifiers() {
		if p, ok := e.world.Players[entityID]; ok {
			e.sendStats(p)
		}
	}
	return ef.EffectID, nil
}

// effectTick applies one periodic health delta. Damage-over-time ticks never
// kill: health is clamped to a floor of 1, matching long-standing game
// behavior that only direct damage can finish an entity off.
func (e *Engine) effectTick(entityID, effectID string) {
	target, ok := e.world.Entity(entityID)
	if !ok {
		e.sched.Cancel("effect-tick-" + effectID)
		return
	}
	core := target.Core()
	ef, ok := core.ActiveEffects[effectID]
	if !ok {
		e.sched.Cancel("effect-tick-" + effectID)
		return
	}

	// A tick landing at or after the deadline is the expiration, not another
	// application: an effect with duration divisible by its interval ends at
	// the boundary instant without a final dose.
	if ef.Duration > 0 && e.now().Sub(ef.AppliedAt) >= ef.Duration {
		e.expireEffect(entityID, effectID)
		return
	}

	switch {
	case ef.Magnitude > 0:
		core.CurrentHealth -= ef.Magnitude
		if core.CurrentHealth < 1 {
			core.CurrentHealth = 1
		}
		if target.IsPlayer() {
			e.send(entityID, fmt.Sprintf("*%s* sears you for %d damage.", ef.Name, ef.Magnitude))
		}
	case ef.Magnitude < 0:
		core.Heal(-ef.Magnitude)
		if target.IsPlayer() {
			e.send(entityID, fmt.Sprintf("*%s* restores %d health.", ef.Name, -ef.Magnitude))
		}
	}
	if p, ok := e.world.Players[entityID]; ok {
		e.sendStats(p)
		e.markDirty(DirtyPlayer, entityID)
	}

	if ef.Duration <= 0 {
		return
	}
	elapsed := e.now().Sub(ef.AppliedAt)
	if elapsed+ef.Interval >= ef.Duration {
		// No further tick lands strictly before expiry. Swap the recurring
		// tick for a one-shot expiration at the exact deadline.
		e.sched.Cancel("effect-tick-" + effectID)
		ef.PeriodicEventID = ""
		ef.ExpirationEventID = e.sched.ScheduleID(
			"effect-exp-"+effectID, ef.Duration-elapsed,
			func() { e.expireEffect(entityID, effectID) })
	}
}

// expireEffect removes an effect and cancels its outstanding events.
func (e *Engine) expireEffect(entityID, effectID string) {
	target, ok := e.world.Entity(entityID)
	if !ok {
		return
	}
	core := target.Core()
	ef, ok := core.RemoveEffect(effectID)
	if !ok {
		return
	}
	e.sched.Cancel("effect-tick-" + effectID)
	e.sched.Cancel("effect-exp-" + effectID)

	if target.IsPlayer() {
		e.send(entityID, fmt.Sprintf("*%s* wears off.", ef.Name))
		if p, ok := e.world.Players[entityID]; ok {
			e.sendStats(p)
			e.markDirty(DirtyPlayer, entityID)
		}
	}
}

// RemoveAllEffects strips every active effect from an entity, cancelling
// their events. Used on death and respawn.
func (e *Engine) RemoveAllEffects(entityID string) {
	target, ok := e.world.Entity(entityID)
	if !ok {
		return
	}
	core := target.Core()
	for id := range core.ActiveEffects {
		if _, ok := core.RemoveEffect(id); ok {
			e.sched.Cancel("effect-tick-" + id)
			e.sched.Cancel("effect-exp-" + id)
		}
	}
	if len(core.ActiveEffects) > 0 {
		e.logger.Warn("effects remained after removal", zap.String("entity_id", entityID))
	}
}
