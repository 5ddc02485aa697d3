package engine

import (
	"fmt"
	"time"

	"github.com/embervale/mud/internal/game/behavior"
	"github.com/embervale/mud/internal/game/world"
)

// Default bounds for the per-NPC behavior timers. Templates override them
// through behavior_config.
const (
	defaultIdleIntervalMin   = 10 * time.Second
	defaultIdleIntervalMax   = 20 * time.Second
	defaultWanderIntervalMin = 20 * time.Second
	defaultWanderIntervalMax = 45 * time.Second
)

// npcContext assembles a hook context for n.
func (e *Engine) npcContext(n *world.Npc, actorID string) *behavior.Context {
	var cfg map[string]any
	if tmpl, ok := e.world.NpcTemplates[n.TemplateID]; ok {
		cfg = tmpl.BehaviorConfig
	}
	return &behavior.Context{
		World:   e.world,
		Npc:     n,
		Dice:    e.dice,
		Now:     e.now(),
		Config:  cfg,
		ActorID: actorID,
	}
}

// runNpcHook evaluates one hook across n's behavior chain.
func (e *Engine) runNpcHook(n *world.Npc, actorID string, hook func(behavior.Behavior, *behavior.Context) behavior.Result) behavior.Result {
	chain := e.chainFor(n.TemplateID)
	if len(chain) == 0 {
		return behavior.Result{}
	}
	return behavior.RunHook(chain, e.npcContext(n, actorID), hook)
}

// applyBehaviorResult turns a behavior decision into world changes.
func (e *Engine) applyBehaviorResult(n *world.Npc, res behavior.Result) {
	if res.Message != "" {
		e.sendRoom(n.RoomID, "", fmt.Sprintf("%s says, \"%s\"", capitalized(n.Name), res.Message))
	}
	if res.EmoteText != "" {
		e.sendRoom(n.RoomID, "", res.EmoteText)
	}
	if res.CallForHelp {
		e.callForHelp(n)
	}
	switch {
	case res.Flee:
		e.npcFlee(n)
	case res.AttackTargetID != "":
		if !n.Combat.InCombat() || n.Combat.TargetID != res.AttackTargetID {
			e.startAttack(n.ID, res.AttackTargetID)
		} else {
			e.beginWindup(n.ID)
		}
	case res.MoveDirection != "":
		e.moveNpc(n, res.MoveDirection)
	}
}

// StartNpcTimers schedules the idle timer, and the wander timer when the
// template's configuration enables wandering. Called at spawn and respawn;
// each tick reschedules itself while the NPC lives.
func (e *Engine) StartNpcTimers(n *world.Npc) {
	cfg := e.behaviorConfigFor(n)
	e.scheduleIdleTick(n)
	if e.wanderEnabled(n, cfg) {
		e.scheduleWanderTick(n)
	}
}

// behaviorConfigFor returns the template's merged behavior configuration.
func (e *Engine) behaviorConfigFor(n *world.Npc) map[string]any {
	if tmpl, ok := e.world.NpcTemplates[n.TemplateID]; ok {
		return tmpl.BehaviorConfig
	}
	return nil
}

// wanderEnabled reports whether n wanders: the template carries the wander
// tag and the config does not switch it off.
func (e *Engine) wanderEnabled(n *world.Npc, cfg map[string]any) bool {
	tmpl, ok := e.world.NpcTemplates[n.TemplateID]
	if !ok {
		return false
	}
	for _, tag := range tmpl.Behaviors {
		if tag == "wander" {
			if v, ok := cfg["wander_enabled"].(bool); ok {
				return v
			}
			return true
		}
	}
	return false
}

// configSeconds reads a seconds value from a behavior config map. YAML
// decodes numbers as int or float64 depending on their spelling.
func configSeconds(cfg map[string]any, key string, def time.Duration) time.Duration {
	switch v := cfg[key].(type) {
	case int:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	default:
		return def
	}
}

// uniformDelay draws a uniform duration in [min, max].
func (e *Engine) uniformDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(e.dice.Intn(int(max-min)+1))
}

func (e *Engine) scheduleIdleTick(n *world.Npc) {
	cfg := e.behaviorConfigFor(n)
	delay := e.uniformDelay(
		configSeconds(cfg, "idle_interval_min", defaultIdleIntervalMin),
		configSeconds(cfg, "idle_interval_max", defaultIdleIntervalMax))
	id := n.ID
	n.IdleEventID = e.sched.ScheduleID("npc-idle-"+id, delay, func() {
		e.npcIdleTick(id)
	})
}

func (e *Engine) scheduleWanderTick(n *world.Npc) {
	cfg := e.behaviorConfigFor(n)
	delay := e.uniformDelay(
		configSeconds(cfg, "wander_interval_min", defaultWanderIntervalMin),
		configSeconds(cfg, "wander_interval_max", defaultWanderIntervalMax))
	id := n.ID
	n.WanderEventID = e.sched.ScheduleID("npc-wander-"+id, delay, func() {
		e.npcWanderTick(id)
	})
}

// npcIdleTick runs the OnIdle hook for a live NPC, then reschedules.
func (e *Engine) npcIdleTick(npcID string) {
	n, ok := e.world.Npcs[npcID]
	if !ok || !n.IsAlive() {
		return
	}
	if !n.Combat.InCombat() {
		res := e.runNpcHook(n, "", func(b behavior.Behavior, ctx *behavior.Context) behavior.Result {
			return b.OnIdle(ctx)
		})
		if res.Handled {
			e.applyBehaviorResult(n, res)
		}
	}
	if n, ok := e.world.Npcs[npcID]; ok && n.IsAlive() {
		e.scheduleIdleTick(n)
	}
}

// npcWanderTick runs the OnWander hook for a live NPC, then reschedules.
func (e *Engine) npcWanderTick(npcID string) {
	n, ok := e.world.Npcs[npcID]
	if !ok || !n.IsAlive() {
		return
	}
	if !n.Combat.InCombat() {
		res := e.runNpcHook(n, "", func(b behavior.Behavior, ctx *behavior.Context) behavior.Result {
			return b.OnWander(ctx)
		})
		if res.Handled {
			e.applyBehaviorResult(n, res)
		}
	}
	if n, ok := e.world.Npcs[npcID]; ok && n.IsAlive() {
		e.scheduleWanderTick(n)
	}
}

// notifyNpcsPlayerEntered fires OnPlayerEnter for every NPC in the room.
func (e *Engine) notifyNpcsPlayerEntered(p *world.Player, roomID string) {
	for _, n := range e.world.NpcsInRoom(roomID) {
		if !n.IsAlive() {
			continue
		}
		res := e.runNpcHook(n, p.ID, func(b behavior.Behavior, ctx *behavior.Context) behavior.Result {
			return b.OnPlayerEnter(ctx)
		})
		if res.Handled {
			e.applyBehaviorResult(n, res)
		}
	}
}

// npcDamaged fires the OnDamaged hook after a surviving hit. NPCs without a
// handling behavior still fight back.
func (e *Engine) npcDamaged(n *world.Npc, attackerID string) {
	res := e.runNpcHook(n, attackerID, func(b behavior.Behavior, ctx *behavior.Context) behavior.Result {
		return b.OnDamaged(ctx)
	})
	if res.Handled {
		e.applyBehaviorResult(n, res)
	}
	if !n.Combat.InCombat() {
		e.startAttack(n.ID, attackerID)
	}
}

// callForHelp aggros same-faction (or same-template) idle NPCs in the room
// onto n's top threat.
func (e *Engine) callForHelp(n *world.Npc) {
	target, ok := n.Combat.TopThreat()
	if !ok {
		target = n.Combat.TargetID
	}
	if target == "" {
		return
	}
	tmpl := e.world.NpcTemplates[n.TemplateID]
	for _, ally := range e.world.NpcsInRoom(n.RoomID) {
		if ally.ID == n.ID || !ally.IsAlive() || ally.Combat.InCombat() {
			continue
		}
		allyTmpl := e.world.NpcTemplates[ally.TemplateID]
		sameFaction := tmpl != nil && allyTmpl != nil && tmpl.Faction != "" && tmpl.Faction == allyTmpl.Faction
		if !sameFaction && ally.TemplateID != n.TemplateID {
			continue
		}
		e.startAttack(ally.ID, target)
	}
}

// moveNpc walks an NPC through an exit with room messaging.
func (e *Engine) moveNpc(n *world.Npc, dir world.Direction) {
	room, ok := e.world.Room(n.RoomID)
	if !ok {
		return
	}
	dest, ok := room.ExitTo(dir)
	if !ok {
		return
	}
	e.sendRoom(room.ID, "", fmt.Sprintf("%s leaves %s.", capitalized(n.Name), dir))
	if err := e.world.MoveEntity(n.ID, dest); err != nil {
		return
	}
	e.sendRoom(dest, "", fmt.Sprintf("%s arrives %s.", capitalized(n.Name), dir.ArrivalPhrase()))
}

// npcFlee moves a fleeing NPC through a random exit and breaks combat.
func (e *Engine) npcFlee(n *world.Npc) {
	room, ok := e.world.Room(n.RoomID)
	if !ok {
		return
	}
	dirs := room.ExitDirections()
	if len(dirs) == 0 {
		return
	}
	dir := dirs[e.dice.Intn(len(dirs))]
	e.disengage(n.ID, "")
	e.disengageAttackersOf(n.ID, room.ID)
	e.sendRoom(room.ID, "", fmt.Sprintf("%s flees %s!", capitalized(n.Name), dir))
	dest, _ := room.ExitTo(dir)
	if err := e.world.MoveEntity(n.ID, dest); err != nil {
		return
	}
	e.sendRoom(dest, "", fmt.Sprintf("%s rushes in, panicked.", capitalized(n.Name)))
}
