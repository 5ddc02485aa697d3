package behavior

import (
	"github.com/embervale/mud/internal/game/dice"
	"github.com/embervale/mud/internal/game/world"
)

// idleBehavior occasionally performs one of the template's idle messages.
type idleBehavior struct {
	Base
	chance   float64
	messages []string
}

func newIdle(cfg map[string]any) Behavior {
	return &idleBehavior{
		chance:   configFloat(cfg, "idle_chance", 0.3),
		messages: configStrings(cfg, "idle_messages"),
	}
}

func (b *idleBehavior) Name() string  { return "idle" }
func (b *idleBehavior) Priority() int { return 40 }

func (b *idleBehavior) OnIdle(ctx *Context) Result {
	if ctx.Npc.Combat.InCombat() {
		return Result{}
	}
	messages := b.messages
	if len(messages) == 0 {
		if tmpl, ok := ctx.World.NpcTemplates[ctx.Npc.TemplateID]; ok {
			messages = tmpl.IdleMessages
		}
	}
	if len(messages) == 0 || !dice.Chance(ctx.Dice, b.chance) {
		return Result{}
	}
	return Result{
		Handled:   true,
		EmoteText: messages[ctx.Dice.Intn(len(messages))],
	}
}

// wanderBehavior occasionally walks through a random exit. By default it
// stays inside its spawn area.
type wanderBehavior struct {
	Base
	chance     float64
	stayInArea bool
}

func newWander(cfg map[string]any) Behavior {
	return &wanderBehavior{
		chance:     configFloat(cfg, "wander_chance", 0.25),
		stayInArea: configBool(cfg, "stay_in_area", true),
	}
}

func (b *wanderBehavior) Name() string  { return "wander" }
func (b *wanderBehavior) Priority() int { return 30 }

func (b *wanderBehavior) OnWander(ctx *Context) Result {
	if ctx.Npc.Combat.InCombat() || !dice.Chance(ctx.Dice, b.chance) {
		return Result{}
	}
	room, ok := ctx.World.Room(ctx.Npc.RoomID)
	if !ok {
		return Result{}
	}

	var options []world.Direction
	for _, dir := range room.ExitDirections() {
		target, _ := room.ExitTo(dir)
		if b.stayInArea {
			dest, ok := ctx.World.Room(target)
			if !ok || dest.AreaID != room.AreaID {
				continue
			}
		}
		options = append(options, dir)
	}
	if len(options) == 0 {
		return Result{}
	}
	return Result{
		Handled:       true,
		MoveDirection: options[ctx.Dice.Intn(len(options))],
	}
}

// aggressiveBehavior attacks players on sight and presses the attack while
// in combat. An optional flee_threshold makes it run when badly hurt.
type aggressiveBehavior struct {
	Base
	fleeThreshold float64
}

func newAggressive(cfg map[string]any) Behavior {
	return &aggressiveBehavior{
		fleeThreshold: configFloat(cfg, "flee_threshold", 0),
	}
}

func (b *aggressiveBehavior) Name() string  { return "aggressive" }
func (b *aggressiveBehavior) Priority() int { return 20 }

func (b *aggressiveBehavior) OnPlayerEnter(ctx *Context) Result {
	if ctx.Npc.Combat.InCombat() || !ctx.Npc.IsAlive() {
		return Result{}
	}
	return Result{Handled: true, AttackTargetID: ctx.ActorID}
}

func (b *aggressiveBehavior) OnIdle(ctx *Context) Result {
	if ctx.Npc.Combat.InCombat() {
		return Result{}
	}
	for _, p := range ctx.World.PlayersInRoom(ctx.Npc.RoomID) {
		if p.IsAlive() && p.IsConnected {
			return Result{Handled: true, AttackTargetID: p.ID}
		}
	}
	return Result{}
}

func (b *aggressiveBehavior) OnCombatTurn(ctx *Context) Result {
	npc := ctx.Npc
	if b.fleeThreshold > 0 && npc.MaxHealth > 0 {
		frac := float64(npc.CurrentHealth) / float64(npc.MaxHealth)
		if frac < b.fleeThreshold {
			return Result{Handled: true, Flee: true}
		}
	}
	if target, ok := npc.Combat.TopThreat(); ok {
		return Result{Handled: true, AttackTargetID: target}
	}
	return Result{}
}

// protectiveBehavior rallies same-faction NPCs in the room when hurt.
type protectiveBehavior struct {
	Base
	helpMessage string
}

func newProtective(cfg map[string]any) Behavior {
	msg := "Help! To arms!"
	if v, ok := cfg["help_message"].(string); ok && v != "" {
		msg = v
	}
	return &protectiveBehavior{helpMessage: msg}
}

func (b *protectiveBehavior) Name() string  { return "protective" }
func (b *protectiveBehavior) Priority() int { return 10 }

func (b *protectiveBehavior) OnDamaged(ctx *Context) Result {
	if ctx.ActorID == "" {
		return Result{}
	}
	return Result{
		Handled:     true,
		Message:     b.helpMessage,
		CallForHelp: true,
	}
}
