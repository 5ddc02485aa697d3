package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/embervale/mud/internal/game/look"
	"github.com/embervale/mud/internal/game/trigger"
	"github.com/embervale/mud/internal/game/world"
	"github.com/embervale/mud/internal/scripting"
)

// triggerEnv adapts the engine to the trigger action surface.
type triggerEnv struct {
	e *Engine
}

func (e *Engine) triggerEnv() trigger.Env { return &triggerEnv{e: e} }

func (t *triggerEnv) MessagePlayer(playerID, text string) {
	t.e.send(playerID, text)
}

func (t *triggerEnv) MessageRoom(roomID, excludePlayerID, text string) {
	t.e.sendRoom(roomID, excludePlayerID, text)
}

func (t *triggerEnv) SetFlag(playerID, flag string, value bool) {
	if p, ok := t.e.world.Players[playerID]; ok {
		p.PlayerFlags[flag] = value
		t.e.markDirty(DirtyPlayer, playerID)
	}
}

func (t *triggerEnv) GrantItem(playerID, templateID string, quantity int) error {
	tmpl, ok := t.e.world.ItemTemplates[templateID]
	if !ok {
		return fmt.Errorf("item template %q not found", templateID)
	}
	it := world.NewItem(tmpl, quantity)
	if err := t.e.world.RegisterItem(it); err != nil {
		return err
	}
	if err := t.e.world.GiveItemToPlayer(it.ID, playerID); err != nil {
		return err
	}
	t.e.markDirty(DirtyItem, it.ID)
	t.e.send(playerID, fmt.Sprintf("You receive %s.", it.Name))
	return nil
}

func (t *triggerEnv) Teleport(playerID, roomID string) error {
	p, ok := t.e.world.Players[playerID]
	if !ok {
		return fmt.Errorf("player %q not found", playerID)
	}
	from := p.RoomID
	if err := t.e.world.MoveEntity(playerID, roomID); err != nil {
		return err
	}
	t.e.markDirty(DirtyPlayer, playerID)
	t.e.sendRoom(from, playerID, fmt.Sprintf("%s vanishes.", p.Name))
	t.e.sendRoom(roomID, playerID, fmt.Sprintf("%s appears out of nowhere.", p.Name))
	if dest, ok := t.e.world.Room(roomID); ok {
		t.e.send(playerID, look.RoomView(t.e.world, dest, playerID))
	}
	return nil
}

func (t *triggerEnv) OverrideRoomDescription(roomID, description string) {
	if room, ok := t.e.world.Room(roomID); ok {
		room.DynamicDescriptionOverride = description
	}
}

func (t *triggerEnv) OverrideRoomExits(roomID string, exits map[world.Direction]string) {
	if room, ok := t.e.world.Room(roomID); ok {
		room.DynamicExitsOverride = exits
	}
}

func (t *triggerEnv) ScheduleActions(delay time.Duration, actions []trigger.Action, playerID, roomID string) {
	e := t.e
	e.sched.Schedule(delay, func() {
		ctx := &trigger.Context{
			World:    e.world,
			PlayerID: playerID,
			RoomID:   roomID,
			Now:      e.now(),
		}
		trigger.RunActions(actions, ctx, e.triggerEnv())
	})
}

func (t *triggerEnv) RunScript(script string, ctx *trigger.Context) error {
	err := t.e.scripts.RunAction(script, t.e.scriptBind(ctx))
	if err != nil {
		t.e.logger.Warn("trigger action script failed", zap.Error(err))
	}
	return err
}

func (t *triggerEnv) EvalScript(script string, ctx *trigger.Context) (bool, error) {
	ok, err := t.e.scripts.RunPredicate(script, t.e.scriptBind(ctx))
	if err != nil {
		t.e.logger.Warn("trigger condition script failed", zap.Error(err))
	}
	return ok, err
}

// scriptBind wires the Lua game API to the firing context.
func (e *Engine) scriptBind(ctx *trigger.Context) *scripting.Bind {
	playerID := ctx.PlayerID
	roomID := ctx.RoomID
	return &scripting.Bind{
		PlayerID: playerID,
		RoomID:   roomID,
		Command:  ctx.Command,
		GetFlag: func(flag string) bool {
			if p, ok := e.world.Players[playerID]; ok {
				return p.PlayerFlags[flag]
			}
			return false
		},
		SetFlag: func(flag string, value bool) {
			e.triggerEnv().SetFlag(playerID, flag, value)
		},
		PlayerLevel: func() int {
			if p, ok := e.world.Players[playerID]; ok {
				return p.Level
			}
			return 0
		},
		HasItem: func(templateID string) bool {
			for _, it := range e.world.ItemsHeldBy(playerID) {
				if it.TemplateID == templateID {
					return true
				}
			}
			return false
		},
		MessagePlayer: func(text string) { e.send(playerID, text) },
		MessageRoom:   func(text string) { e.sendRoom(roomID, "", text) },
		Teleport:      func(target string) error { return e.triggerEnv().Teleport(playerID, target) },
	}
}

// fireRoomTriggers fires a room's triggers for event on behalf of p.
func (e *Engine) fireRoomTriggers(event trigger.Event, p *world.Player, roomID, commandLine string) {
	ctx := &trigger.Context{
		World:    e.world,
		PlayerID: p.ID,
		RoomID:   roomID,
		Command:  commandLine,
		Now:      e.now(),
	}
	for _, t := range e.triggers.RoomMatching(roomID, event) {
		t.Fire(ctx, e.triggerEnv())
	}
}

// fireAreaTriggers fires an area's triggers for event on behalf of p.
func (e *Engine) fireAreaTriggers(event trigger.Event, p *world.Player, areaID string) {
	ctx := &trigger.Context{
		World:    e.world,
		PlayerID: p.ID,
		RoomID:   p.RoomID,
		Now:      e.now(),
	}
	for _, t := range e.triggers.AreaMatching(areaID, event) {
		t.Fire(ctx, e.triggerEnv())
	}
}

// ScheduleTimerTriggers registers one recurring event per on_timer trigger.
// Called once at boot after content load.
func (e *Engine) ScheduleTimerTriggers() {
	e.triggers.TimerTriggers(func(t *trigger.Trigger, roomID, areaID string) {
		e.sched.ScheduleRecurring("trigger-timer-"+t.ID, t.Interval, t.Interval, func() {
			e.fireTimerTrigger(t, roomID, areaID)
		})
	})
}

// fireTimerTrigger fires an on_timer trigger with no acting player. Rooms
// fire as themselves; area timers fire once against each room of the area
// that has players in it.
func (e *Engine) fireTimerTrigger(t *trigger.Trigger, roomID, areaID string) {
	fire := func(room string) {
		ctx := &trigger.Context{World: e.world, RoomID: room, Now: e.now()}
		t.Fire(ctx, e.triggerEnv())
	}
	if roomID != "" {
		fire(roomID)
		return
	}
	area, ok := e.world.Area(areaID)
	if !ok {
		return
	}
	for rid := range area.RoomIDs {
		if len(e.world.PlayersInRoom(rid)) > 0 {
			fire(rid)
		}
	}
}
