package scripting_test

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/embervale/mud/internal/scripting"
)

func TestNewSandboxedState_UnsafeLibsNil(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	require.NotNil(t, L)
	defer L.Close()
	for _, name := range []string{"os", "io", "debug"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandboxedState_DangerousGlobalsNil(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	require.NotNil(t, L)
	defer L.Close()
	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandboxedState_InstructionLimitExceeded(t *testing.T) {
	L := scripting.NewSandboxedState(10)
	require.NotNil(t, L)
	defer L.Close()
	err := L.DoString(`while true do end`)
	assert.Error(t, err, "expected instruction limit error")
}

func TestRunPredicate(t *testing.T) {
	r := scripting.NewRunner(0, zap.NewNop())

	got, err := r.RunPredicate(`return game.player_level() >= 3`, &scripting.Bind{
		PlayerLevel: func() int { return 5 },
	})
	require.NoError(t, err)
	assert.True(t, got)

	got, err = r.RunPredicate(`return game.get_flag("met_hermit")`, &scripting.Bind{
		GetFlag: func(flag string) bool { return flag == "other" },
	})
	require.NoError(t, err)
	assert.False(t, got)

	_, err = r.RunPredicate(`this is not lua`, &scripting.Bind{})
	assert.Error(t, err)
}

func TestRunPredicate_MissingCallbacksDegrade(t *testing.T) {
	r := scripting.NewRunner(0, zap.NewNop())
	got, err := r.RunPredicate(`return game.has_item("key") or game.get_flag("x")`, &scripting.Bind{})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestRunAction_SideEffects(t *testing.T) {
	r := scripting.NewRunner(0, zap.NewNop())
	var sent []string
	flags := map[string]bool{}

	err := r.RunAction(`
		game.set_flag("lever_pulled")
		game.message_player("The mechanism clicks.")
		game.message_room("Dust falls from the ceiling.")
	`, &scripting.Bind{
		SetFlag:       func(flag string, v bool) { flags[flag] = v },
		MessagePlayer: func(text string) { sent = append(sent, "p:"+text) },
		MessageRoom:   func(text string) { sent = append(sent, "r:"+text) },
	})
	require.NoError(t, err)
	assert.True(t, flags["lever_pulled"])
	assert.Equal(t, []string{"p:The mechanism clicks.", "r:Dust falls from the ceiling."}, sent)
}

func TestRunAction_ContextFields(t *testing.T) {
	r := scripting.NewRunner(0, zap.NewNop())
	var got string
	err := r.RunAction(`game.message_player(game.player_id .. "@" .. game.room_id)`, &scripting.Bind{
		PlayerID:      "p1",
		RoomID:        "shrine",
		MessagePlayer: func(text string) { got = text },
	})
	require.NoError(t, err)
	assert.Equal(t, "p1@shrine", got)
}

func TestRunAction_RunawayScriptErrors(t *testing.T) {
	r := scripting.NewRunner(500, zap.NewNop())
	err := r.RunAction(`while true do end`, &scripting.Bind{})
	assert.Error(t, err)
}

func TestProperty_InstructionLimitAlwaysErrors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, 50).Draw(t, "limit")
		L := scripting.NewSandboxedState(limit)
		defer L.Close()
		err := L.DoString(`while true do end`)
		if err == nil {
			t.Fatalf("expected error with limit=%d but got nil", limit)
		}
	})
}
