// Package trigger implements scripted room and area triggers: declarative
// reactions to players entering, leaving, or typing commands, plus timers.
// A trigger gates on conditions, then runs a list of actions. Actions execute
// through an Env supplied by the engine, so this package stays free of
// dispatcher and scheduler dependencies.
package trigger

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/embervale/mud/internal/game/world"
)

// Event names the hook a trigger listens on.
type Event string

const (
	OnEnter     Event = "on_enter"
	OnExit      Event = "on_exit"
	OnCommand   Event = "on_command"
	OnTimer     Event = "on_timer"
	OnAreaEnter Event = "on_area_enter"
	OnAreaExit  Event = "on_area_exit"
)

// Condition gates trigger firing. Exactly one condition type is used per
// entry, selected by Type.
type Condition struct {
	// Type is one of flag_set, has_item, at_room, player_level, script.
	Type string

	// Flag names a player flag for flag_set.
	Flag string
	// Negate inverts the condition's outcome.
	Negate bool
	// ItemTemplateID names an item template for has_item.
	ItemTemplateID string
	// RoomID names a room for at_room.
	RoomID string
	// MinLevel is the inclusive minimum for player_level.
	MinLevel int
	// Script is a Lua predicate for script conditions.
	Script string
}

// Action is one step of a trigger's effect list. Type selects which fields
// are meaningful.
type Action struct {
	// Type is one of message_player, message_room, set_flag, grant_item,
	// teleport, override_room_description, override_room_exits,
	// schedule_event, script.
	Type string

	Text           string
	Flag           string
	Value          bool
	ItemTemplateID string
	Quantity       int
	RoomID         string
	Description    string
	Exits          map[world.Direction]string
	DelaySeconds   float64
	Actions        []Action
	Script         string
}

// Context is the situation a trigger fires in.
type Context struct {
	World    *world.World
	PlayerID string
	RoomID   string
	// Command is the raw command line, for on_command triggers.
	Command string
	Now     time.Time
}

// Env is the engine surface trigger actions run against.
type Env interface {
	MessagePlayer(playerID, text string)
	MessageRoom(roomID, excludePlayerID, text string)
	SetFlag(playerID, flag string, value bool)
	GrantItem(playerID, templateID string, quantity int) error
	Teleport(playerID, roomID string) error
	OverrideRoomDescription(roomID, description string)
	OverrideRoomExits(roomID string, exits map[world.Direction]string)
	// ScheduleActions runs the nested actions after the delay, against a
	// snapshot of the firing context's player and room IDs.
	ScheduleActions(delay time.Duration, actions []Action, playerID, roomID string)
	// RunScript executes a Lua action script.
	RunScript(script string, ctx *Context) error
	// EvalScript evaluates a Lua condition predicate.
	EvalScript(script string, ctx *Context) (bool, error)
}

// Trigger is one declarative reaction.
type Trigger struct {
	ID    string
	Event Event

	// CommandPattern is a glob matched against the full command line for
	// on_command triggers ("pull *", "say password").
	CommandPattern string

	Conditions []Condition
	Actions    []Action

	// Interval is the period for on_timer triggers.
	Interval time.Duration

	// Cooldown is the minimum gap between fires; zero means none.
	Cooldown time.Duration
	// MaxFires caps total fires; zero means unlimited.
	MaxFires int
	Enabled  bool

	FireCount int
	LastFired time.Time
}

// Validate checks structural soundness at content load.
func (t *Trigger) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("trigger has no ID")
	}
	switch t.Event {
	case OnEnter, OnExit, OnCommand, OnTimer, OnAreaEnter, OnAreaExit:
	default:
		return fmt.Errorf("trigger %q: unknown event %q", t.ID, t.Event)
	}
	if t.Event == OnCommand && t.CommandPattern == "" {
		return fmt.Errorf("trigger %q: on_command requires a command_pattern", t.ID)
	}
	if t.Event == OnTimer && t.Interval <= 0 {
		return fmt.Errorf("trigger %q: on_timer requires a positive interval", t.ID)
	}
	if _, err := path.Match(t.CommandPattern, "sample"); t.CommandPattern != "" && err != nil {
		return fmt.Errorf("trigger %q: bad command_pattern: %w", t.ID, err)
	}
	if len(t.Actions) == 0 {
		return fmt.Errorf("trigger %q: no actions", t.ID)
	}
	for i, c := range t.Conditions {
		switch c.Type {
		case "flag_set", "has_item", "at_room", "player_level", "script":
		default:
			return fmt.Errorf("trigger %q: condition %d: unknown type %q", t.ID, i, c.Type)
		}
	}
	for i, a := range t.Actions {
		switch a.Type {
		case "message_player", "message_room", "set_flag", "grant_item",
			"teleport", "override_room_description", "override_room_exits",
			"schedule_event", "script":
		default:
			return fmt.Errorf("trigger %q: action %d: unknown type %q", t.ID, i, a.Type)
		}
	}
	return nil
}

// MatchesCommand reports whether the command line matches the trigger's
// pattern. Matching is case-insensitive.
func (t *Trigger) MatchesCommand(command string) bool {
	if t.CommandPattern == "" {
		return false
	}
	ok, err := path.Match(strings.ToLower(t.CommandPattern), strings.ToLower(strings.TrimSpace(command)))
	return err == nil && ok
}

// Eligible applies the firing policy without running anything: enabled,
// max_fires, cooldown, and all conditions.
func (t *Trigger) Eligible(ctx *Context, env Env) bool {
	if !t.Enabled {
		return false
	}
	if t.MaxFires > 0 && t.FireCount >= t.MaxFires {
		return false
	}
	if t.Cooldown > 0 && !t.LastFired.IsZero() && ctx.Now.Sub(t.LastFired) < t.Cooldown {
		return false
	}
	for i := range t.Conditions {
		if !t.Conditions[i].Check(ctx, env) {
			return false
		}
	}
	return true
}

// Fire runs the trigger if eligible.
//
// Postcondition: Returns true iff the actions ran; FireCount and LastFired
// are updated on a fire.
func (t *Trigger) Fire(ctx *Context, env Env) bool {
	if !t.Eligible(ctx, env) {
		return false
	}
	t.FireCount++
	t.LastFired = ctx.Now
	RunActions(t.Actions, ctx, env)
	return true
}

// Check evaluates one condition.
func (c *Condition) Check(ctx *Context, env Env) bool {
	result := false
	switch c.Type {
	case "flag_set":
		if p, ok := ctx.World.Players[ctx.PlayerID]; ok {
			result = p.PlayerFlags[c.Flag]
		}
	case "has_item":
		for _, it := range ctx.World.ItemsHeldBy(ctx.PlayerID) {
			if it.TemplateID == c.ItemTemplateID {
				result = true
				break
			}
		}
	case "at_room":
		if p, ok := ctx.World.Players[ctx.PlayerID]; ok {
			result = p.RoomID == c.RoomID
		}
	case "player_level":
		if p, ok := ctx.World.Players[ctx.PlayerID]; ok {
			result = p.Level >= c.MinLevel
		}
	case "script":
		ok, err := env.EvalScript(c.Script, ctx)
		result = err == nil && ok
	}
	if c.Negate {
		return !result
	}
	return result
}

// RunActions executes an action list in order. Individual action failures do
// not abort the list; the Env is expected to log them.
func RunActions(actions []Action, ctx *Context, env Env) {
	for i := range actions {
		actions[i].run(ctx, env)
	}
}

func (a *Action) run(ctx *Context, env Env) {
	switch a.Type {
	case "message_player":
		env.MessagePlayer(ctx.PlayerID, a.Text)
	case "message_room":
		env.MessageRoom(ctx.RoomID, "", a.Text)
	case "set_flag":
		env.SetFlag(ctx.PlayerID, a.Flag, a.Value)
	case "grant_item":
		qty := a.Quantity
		if qty <= 0 {
			qty = 1
		}
		_ = env.GrantItem(ctx.PlayerID, a.ItemTemplateID, qty)
	case "teleport":
		_ = env.Teleport(ctx.PlayerID, a.RoomID)
	case "override_room_description":
		env.OverrideRoomDescription(ctx.RoomID, a.Description)
	case "override_room_exits":
		env.OverrideRoomExits(ctx.RoomID, a.Exits)
	case "schedule_event":
		env.ScheduleActions(time.Duration(a.DelaySeconds*float64(time.Second)), a.Actions, ctx.PlayerID, ctx.RoomID)
	case "script":
		_ = env.RunScript(a.Script, ctx)
	}
}
