package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Bind is the game API exposed to a single script execution as the global
// `game` table. Nil function fields become no-ops (or false/zero returns), so
// the engine only wires what the firing context supports.
type Bind struct {
	PlayerID string
	RoomID   string
	// Command is the raw command line for on_command triggers, empty
	// otherwise.
	Command string

	GetFlag       func(flag string) bool
	SetFlag       func(flag string, value bool)
	PlayerLevel   func() int
	HasItem       func(templateID string) bool
	MessagePlayer func(text string)
	MessageRoom   func(text string)
	Teleport      func(roomID string) error
}

// Runner executes scripts. Each execution gets a fresh sandboxed VM, so
// scripts cannot leak state into each other.
type Runner struct {
	instLimit int
	logger    *zap.Logger
}

// NewRunner creates a Runner.
//
// Precondition: logger must be non-nil; instLimit <= 0 uses the default.
func NewRunner(instLimit int, logger *zap.Logger) *Runner {
	return &Runner{instLimit: instLimit, logger: logger}
}

// RunPredicate executes a condition script and interprets its return value
// as a boolean (Lua truthiness: only nil and false are false).
//
// Postcondition: Returns an error for compile failures, runtime errors, or
// exceeding the instruction limit; the error is never a game-fatal state.
func (r *Runner) RunPredicate(script string, bind *Bind) (bool, error) {
	L := NewSandboxedState(r.instLimit)
	defer L.Close()
	r.register(L, bind)

	if err := L.DoString(script); err != nil {
		return false, fmt.Errorf("condition script: %w", err)
	}
	ret := L.Get(-1)
	return lua.LVAsBool(ret), nil
}

// RunAction executes an action script for its side effects.
func (r *Runner) RunAction(script string, bind *Bind) error {
	L := NewSandboxedState(r.instLimit)
	defer L.Close()
	r.register(L, bind)

	if err := L.DoString(script); err != nil {
		return fmt.Errorf("action script: %w", err)
	}
	return nil
}

// register installs the `game` table. Missing Bind callbacks degrade to
// harmless defaults rather than Lua errors.
func (r *Runner) register(L *lua.LState, bind *Bind) {
	game := L.NewTable()

	L.SetField(game, "player_id", lua.LString(bind.PlayerID))
	L.SetField(game, "room_id", lua.LString(bind.RoomID))
	L.SetField(game, "command", lua.LString(bind.Command))

	L.SetField(game, "get_flag", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		val := false
		if bind.GetFlag != nil {
			val = bind.GetFlag(flag)
		}
		L.Push(lua.LBool(val))
		return 1
	}))
	L.SetField(game, "set_flag", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		value := L.OptBool(2, true)
		if bind.SetFlag != nil {
			bind.SetFlag(flag, value)
		}
		return 0
	}))
	L.SetField(game, "player_level", L.NewFunction(func(L *lua.LState) int {
		level := 0
		if bind.PlayerLevel != nil {
			level = bind.PlayerLevel()
		}
		L.Push(lua.LNumber(level))
		return 1
	}))
	L.SetField(game, "has_item", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		val := false
		if bind.HasItem != nil {
			val = bind.HasItem(id)
		}
		L.Push(lua.LBool(val))
		return 1
	}))
	L.SetField(game, "message_player", L.NewFunction(func(L *lua.LState) int {
		if bind.MessagePlayer != nil {
			bind.MessagePlayer(L.CheckString(1))
		}
		return 0
	}))
	L.SetField(game, "message_room", L.NewFunction(func(L *lua.LState) int {
		if bind.MessageRoom != nil {
			bind.MessageRoom(L.CheckString(1))
		}
		return 0
	}))
	L.SetField(game, "teleport", L.NewFunction(func(L *lua.LState) int {
		roomID := L.CheckString(1)
		if bind.Teleport == nil {
			L.Push(lua.LBool(false))
			return 1
		}
		if err := bind.Teleport(roomID); err != nil {
			r.logger.Warn("script teleport failed",
				zap.String("room_id", roomID), zap.Error(err))
			L.Push(lua.LBool(false))
			return 1
		}
		L.Push(lua.LBool(true))
		return 1
	}))

	L.SetGlobal("game", game)
}
