package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/embervale/mud/internal/dispatch"
	"github.com/embervale/mud/internal/game/look"
	"github.com/embervale/mud/internal/game/world"
)

// Admin commands are hidden from non-admins: the router reports them as
// unknown rather than forbidden, so their existence leaks nothing.

func cmdAdminHeal(e *Engine, p *world.Player, args string) {
	target := resolveAdminTarget(e, p, args)
	if target == nil {
		e.send(p.ID, "Heal whom?")
		return
	}
	core := target.Core()
	core.Heal(core.MaxHealth)
	e.send(p.ID, fmt.Sprintf("%s is restored to full health.", capitalized(core.Name)))
	if tp, ok := target.(*world.Player); ok {
		e.send(tp.ID, "A warm light knits your wounds closed.")
		e.sendStats(tp)
		e.markDirty(DirtyPlayer, tp.ID)
	}
}

func cmdAdminHurt(e *Engine, p *world.Player, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		e.send(p.ID, "Usage: hurt <target> <amount>")
		return
	}
	amount, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || amount < 1 {
		e.send(p.ID, "Usage: hurt <target> <amount>")
		return
	}
	target := resolveAdminTarget(e, p, strings.Join(fields[:len(fields)-1], " "))
	if target == nil {
		e.send(p.ID, "Hurt whom?")
		return
	}
	core := target.Core()
	died := core.ApplyDamage(amount)
	e.send(p.ID, fmt.Sprintf("%s takes %d damage.", capitalized(core.Name), amount))
	if tp, ok := target.(*world.Player); ok {
		e.send(tp.ID, fmt.Sprintf("An unseen force strikes you for %d damage.", amount))
		e.sendStats(tp)
		e.markDirty(DirtyPlayer, tp.ID)
	}
	if died {
		e.handleDeath(core.ID, p.ID)
	}
}

func cmdAdminWho(e *Engine, p *world.Player, _ string) {
	ids := make([]string, 0, len(e.world.Players))
	for id := range e.world.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString("Players:")
	for _, id := range ids {
		other := e.world.Players[id]
		status := "online"
		if !other.IsConnected {
			status = "offline"
		}
		if other.DeathTime != nil {
			status = "dead"
		}
		fmt.Fprintf(&b, "\n  %s (level %d, %s) in %s", other.Name, other.Level, status, other.RoomID)
	}
	e.send(p.ID, b.String())
}

func cmdAdminWhere(e *Engine, p *world.Player, args string) {
	if args == "" {
		area := "nowhere"
		if a, ok := e.world.AreaForRoom(p.RoomID); ok {
			area = a.Name
		}
		e.send(p.ID, fmt.Sprintf("You are in %s (%s).", p.RoomID, area))
		return
	}

	for _, other := range e.world.Players {
		if strings.EqualFold(other.Name, args) {
			e.send(p.ID, fmt.Sprintf("%s is in %s.", other.Name, other.RoomID))
			return
		}
	}
	ids := make([]string, 0, len(e.world.Npcs))
	for id := range e.world.Npcs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var b strings.Builder
	for _, id := range ids {
		n := e.world.Npcs[id]
		if n.MatchesKeyword(args) {
			fmt.Fprintf(&b, "\n  %s in %s", n.Name, n.RoomID)
		}
	}
	if b.Len() == 0 {
		e.send(p.ID, "Nothing by that name exists.")
		return
	}
	e.send(p.ID, "Matches:"+b.String())
}

func cmdAdminGoto(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Usage: goto <room-id>")
		return
	}
	if err := e.triggerEnv().Teleport(p.ID, args); err != nil {
		e.send(p.ID, fmt.Sprintf("No such room: %s", args))
	}
}

func cmdAdminSummon(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Usage: summon <player>")
		return
	}
	for _, other := range e.world.Players {
		if !strings.EqualFold(other.Name, args) || other.ID == p.ID {
			continue
		}
		if err := e.triggerEnv().Teleport(other.ID, p.RoomID); err == nil {
			e.send(p.ID, fmt.Sprintf("%s is summoned to you.", other.Name))
		}
		return
	}
	e.send(p.ID, "No such player.")
}

func cmdAdminSpawn(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Usage: spawn <npc-template-id>")
		return
	}
	n, err := e.SpawnNpc(args, p.RoomID, 0)
	if err != nil {
		e.send(p.ID, fmt.Sprintf("No such NPC template: %s", args))
		return
	}
	e.sendRoom(p.RoomID, "", fmt.Sprintf("%s appears in a puff of smoke.", capitalized(n.Name)))
}

func cmdAdminDespawn(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Usage: despawn <npc>")
		return
	}
	target, ok := look.FindEntity(e.world, p.RoomID, args, p.ID)
	if !ok || target.IsPlayer() {
		e.send(p.ID, "No such NPC here.")
		return
	}
	n := target.(*world.Npc)
	e.disengageAttackersOf(n.ID, n.RoomID)
	e.disengage(n.ID, "")
	if n.IdleEventID != "" {
		e.sched.Cancel(n.IdleEventID)
	}
	if n.WanderEventID != "" {
		e.sched.Cancel(n.WanderEventID)
	}
	name := n.Name
	e.world.DetachFromRoom(n.ID)
	_ = e.world.RemoveNpc(n.ID)
	e.sendRoom(p.RoomID, "", fmt.Sprintf("%s vanishes.", capitalized(name)))
}

func cmdAdminGrant(e *Engine, p *world.Player, args string) {
	fields := strings.Fields(args)
	if len(fields) < 1 {
		e.send(p.ID, "Usage: grant <item-template-id> [quantity]")
		return
	}
	qty := 1
	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 {
			qty = n
		}
	}
	if err := e.triggerEnv().GrantItem(p.ID, fields[0], qty); err != nil {
		e.send(p.ID, fmt.Sprintf("No such item template: %s", fields[0]))
	}
}

func cmdAdminInspect(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Usage: inspect <target>")
		return
	}
	target, ok := look.FindEntity(e.world, p.RoomID, args, p.ID)
	if !ok {
		e.send(p.ID, "You don't see that here.")
		return
	}
	core := target.Core()
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]", core.Name, core.ID)
	fmt.Fprintf(&b, "\n  health %d/%d, ac %d", core.CurrentHealth, core.MaxHealth, core.EffectiveArmorClass())
	fmt.Fprintf(&b, "\n  str %d dex %d int %d vit %d",
		core.EffectiveStrength(), core.EffectiveDexterity(),
		core.EffectiveStat(world.StatIntelligence), core.EffectiveStat(world.StatVitality))
	fmt.Fprintf(&b, "\n  combat: %s (target %q)", core.Combat.Phase, core.Combat.TargetID)
	fmt.Fprintf(&b, "\n  effects: %d active", len(core.ActiveEffects))
	e.send(p.ID, b.String())
}

func cmdAdminBroadcast(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Usage: broadcast <message>")
		return
	}
	e.disp.ToAll(dispatch.Message(fmt.Sprintf("[announcement] %s", args)))
}

// resolveAdminTarget resolves "self" (already expanded to the admin's name),
// a room target, or any player by exact name.
func resolveAdminTarget(e *Engine, p *world.Player, args string) world.Entity {
	if args == "" {
		return nil
	}
	if strings.EqualFold(args, p.Name) {
		return p
	}
	if target, ok := look.FindEntity(e.world, p.RoomID, args, p.ID); ok {
		return target
	}
	for _, other := range e.world.Players {
		if strings.EqualFold(other.Name, args) {
			return other
		}
	}
	return nil
}
