package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/embervale/mud/internal/game/look"
	"github.com/embervale/mud/internal/game/trigger"
	"github.com/embervale/mud/internal/game/world"
)

// newCommandSet builds the full command registry. Handlers live in the
// commands_*.go files grouped by concern.
func newCommandSet() *commandSet {
	cs := &commandSet{byVerb: make(map[string]*command)}

	for _, dir := range world.StandardDirections {
		dir := dir
		cs.add(&command{
			name:    string(dir),
			aliases: []string{string(dir)[:1]},
			help:    "walk " + string(dir),
			fn: func(e *Engine, p *world.Player, _ string) {
				e.movePlayer(p, dir)
			},
		})
	}

	cs.add(&command{name: "look", aliases: []string{"l"}, help: "look at the room or a target", fn: cmdLook})
	cs.add(&command{name: "stats", aliases: []string{"score"}, help: "show your character sheet", fn: cmdStats})
	cs.add(&command{name: "effects", help: "list your active effects", fn: cmdEffects})
	cs.add(&command{name: "inventory", aliases: []string{"i", "inv"}, help: "list carried items", fn: cmdInventory})
	cs.add(&command{name: "help", whileDead: true, help: "show this list", fn: cmdHelp})

	cs.add(&command{name: "say", aliases: []string{"'"}, help: "speak to the room", fn: cmdSay})
	cs.add(&command{name: "emote", aliases: []string{"em"}, help: "perform an action", fn: cmdEmote})
	cs.add(&command{name: "talk", help: "talk with someone", fn: cmdTalk})

	cs.add(&command{name: "get", aliases: []string{"take"}, help: "pick up an item", fn: cmdGet})
	cs.add(&command{name: "drop", help: "drop an item", fn: cmdDrop})
	cs.add(&command{name: "put", help: "put an item in a container", fn: cmdPut})
	cs.add(&command{name: "equip", aliases: []string{"wield", "wear"}, help: "equip an item", fn: cmdEquip})
	cs.add(&command{name: "unequip", aliases: []string{"remove"}, help: "unequip an item", fn: cmdUnequip})
	cs.add(&command{name: "use", help: "use an item", fn: cmdUse})
	cs.add(&command{name: "give", help: "give an item to someone", fn: cmdGive})

	cs.add(&command{name: "attack", aliases: []string{"kill", "k"}, help: "attack a target", fn: cmdAttack})
	cs.add(&command{name: "stop", help: "stop attacking", fn: cmdStop})
	cs.add(&command{name: "flee", help: "try to escape combat", fn: cmdFlee})
	cs.add(&command{name: "combat", help: "show your combat status", fn: cmdCombat})

	cs.add(&command{name: "journal", aliases: []string{"j"}, help: "review your quests", fn: cmdJournal})
	cs.add(&command{name: "quest", help: "show one quest's progress", fn: cmdQuest})
	cs.add(&command{name: "abandon", help: "abandon a quest", fn: cmdAbandon})

	cs.add(&command{name: "quit", whileDead: true, help: "leave the game", fn: cmdQuit})

	cs.add(&command{name: "heal", admin: true, fn: cmdAdminHeal})
	cs.add(&command{name: "hurt", admin: true, fn: cmdAdminHurt})
	cs.add(&command{name: "who", admin: true, fn: cmdAdminWho})
	cs.add(&command{name: "where", admin: true, fn: cmdAdminWhere})
	cs.add(&command{name: "goto", admin: true, fn: cmdAdminGoto})
	cs.add(&command{name: "summon", admin: true, fn: cmdAdminSummon})
	cs.add(&command{name: "spawn", admin: true, fn: cmdAdminSpawn})
	cs.add(&command{name: "despawn", admin: true, fn: cmdAdminDespawn})
	cs.add(&command{name: "grant", admin: true, fn: cmdAdminGrant})
	cs.add(&command{name: "inspect", admin: true, fn: cmdAdminInspect})
	cs.add(&command{name: "broadcast", admin: true, fn: cmdAdminBroadcast})

	return cs
}

func cmdLook(e *Engine, p *world.Player, args string) {
	room, ok := e.world.Room(p.RoomID)
	if !ok {
		e.send(p.ID, "You are nowhere at all.")
		return
	}
	if args == "" {
		e.send(p.ID, look.RoomView(e.world, room, p.ID))
		return
	}
	if strings.EqualFold(args, p.Name) || strings.EqualFold(args, "me") {
		e.send(p.ID, look.EntityView(e.world, p))
		return
	}
	if target, ok := look.FindEntity(e.world, p.RoomID, args, p.ID); ok {
		e.send(p.ID, look.EntityView(e.world, target))
		return
	}
	if it, ok := look.FindItemNearby(e.world, p.ID, p.RoomID, args); ok {
		e.send(p.ID, look.ItemView(it))
		return
	}
	e.send(p.ID, "You don't see that here.")
}

func cmdStats(e *Engine, p *world.Player, _ string) {
	e.send(p.ID, look.StatsView(p))
}

func cmdEffects(e *Engine, p *world.Player, _ string) {
	e.send(p.ID, look.EffectsView(p, e.now()))
}

func cmdInventory(e *Engine, p *world.Player, _ string) {
	e.send(p.ID, look.InventoryView(e.world, p))
}

func cmdHelp(e *Engine, p *world.Player, _ string) {
	e.send(p.ID, e.helpText(p))
}

func cmdSay(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Say what?")
		return
	}
	e.send(p.ID, fmt.Sprintf("You say, \"%s\"", args))
	e.sendRoom(p.RoomID, p.ID, fmt.Sprintf("%s says, \"%s\"", p.Name, args))
}

func cmdEmote(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Emote what?")
		return
	}
	line := fmt.Sprintf("%s %s", p.Name, args)
	e.send(p.ID, line)
	e.sendRoom(p.RoomID, p.ID, line)
}

func cmdQuit(e *Engine, p *world.Player, _ string) {
	e.disp.ToPlayer(p.ID, quitEvent())
	e.Leave(p.ID)
}

// movePlayer walks a player through an exit, firing exit/enter triggers and
// notifying both rooms.
func (e *Engine) movePlayer(p *world.Player, dir world.Direction) {
	if p.Combat.InCombat() {
		e.send(p.ID, "You can't just walk away from a fight! Try 'flee'.")
		return
	}
	room, ok := e.world.Room(p.RoomID)
	if !ok {
		return
	}
	targetID, ok := room.EffectiveExits()[dir]
	if !ok {
		e.send(p.ID, "You can't go that way.")
		return
	}
	dest, ok := e.world.Room(targetID)
	if !ok {
		e.send(p.ID, "You can't go that way.")
		return
	}

	fromArea, _ := e.world.AreaForRoom(room.ID)
	toArea, _ := e.world.AreaForRoom(dest.ID)

	e.fireRoomTriggers(trigger.OnExit, p, room.ID, "")
	if fromArea != nil && fromArea != toArea {
		e.fireAreaTriggers(trigger.OnAreaExit, p, fromArea.ID)
	}

	e.sendRoom(room.ID, p.ID, fmt.Sprintf("%s leaves %s.", p.Name, dir))
	if err := e.world.MoveEntity(p.ID, dest.ID); err != nil {
		e.logger.Error("move failed", zap.String("player_id", p.ID), zap.Error(err))
		e.send(p.ID, "Something went wrong.")
		return
	}
	e.markDirty(DirtyPlayer, p.ID)
	e.sendRoom(dest.ID, p.ID, fmt.Sprintf("%s arrives %s.", p.Name, dir.ArrivalPhrase()))
	e.send(p.ID, fmt.Sprintf("You move %s.\n%s", dir, look.RoomView(e.world, dest, p.ID)))

	if p.OnMoveEffect != "" {
		e.ApplyEffect(p.ID, p.OnMoveEffect)
	}

	if fromArea != toArea && toArea != nil {
		e.fireAreaTriggers(trigger.OnAreaEnter, p, toArea.ID)
	}
	e.fireRoomTriggers(trigger.OnEnter, p, dest.ID, "")

	e.notifyNpcsPlayerEntered(p, dest.ID)
}
