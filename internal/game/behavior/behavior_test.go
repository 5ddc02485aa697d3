package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embervale/mud/internal/game/combat"
	"github.com/embervale/mud/internal/game/dice"
	"github.com/embervale/mud/internal/game/world"
)

func behaviorWorld(t *testing.T) (*world.World, *world.Npc) {
	t.Helper()
	w := world.New()

	area := world.NewArea("camp", "Goblin Camp")
	area.RoomIDs["den"] = struct{}{}
	area.RoomIDs["pit"] = struct{}{}
	area.EntryPoints = []string{"den"}
	require.NoError(t, w.AddArea(area))

	den := world.NewRoom("den", "The Den", "Bones everywhere.")
	den.AreaID = "camp"
	den.Exits[world.North] = "pit"
	den.Exits[world.East] = "road"
	pit := world.NewRoom("pit", "The Pit", "A reeking pit.")
	pit.AreaID = "camp"
	pit.Exits[world.South] = "den"
	road := world.NewRoom("road", "Open Road", "Outside the camp.")
	road.Exits[world.West] = "den"
	require.NoError(t, w.AddRoom(den))
	require.NoError(t, w.AddRoom(pit))
	require.NoError(t, w.AddRoom(road))

	tmpl := &world.NpcTemplate{
		ID: "goblin", Name: "a goblin", MaxHealth: 20,
		Behaviors:    []string{"idle", "wander", "aggressive"},
		IdleMessages: []string{"The goblin picks its teeth."},
	}
	require.NoError(t, tmpl.Validate())
	w.NpcTemplates[tmpl.ID] = tmpl

	npc := world.NewNpc(tmpl, "den")
	require.NoError(t, w.AddNpc(npc))
	return w, npc
}

func ctxFor(w *world.World, npc *world.Npc, src dice.Source) *Context {
	return &Context{World: w, Npc: npc, Dice: src, Now: time.Now(), Config: nil}
}

func TestResolve_PriorityOrderAndUnknownTag(t *testing.T) {
	r := NewRegistry()
	tmpl := &world.NpcTemplate{ID: "g", Name: "g", MaxHealth: 1,
		Behaviors: []string{"idle", "aggressive", "wander"}}

	chain, err := r.Resolve(tmpl)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, "aggressive", chain[0].Name())
	assert.Equal(t, "wander", chain[1].Name())
	assert.Equal(t, "idle", chain[2].Name())

	tmpl.Behaviors = []string{"idle", "berserk"}
	_, err = r.Resolve(tmpl)
	assert.ErrorContains(t, err, "berserk")
}

func TestRunHook_StopsAtFirstHandled(t *testing.T) {
	w, npc := behaviorWorld(t)
	p := world.NewPlayer("p1", "Hero")
	p.RoomID = "den"
	p.MaxHealth, p.CurrentHealth = 10, 10
	p.IsConnected = true
	require.NoError(t, w.AddPlayer(p))

	chain, err := NewRegistry().Resolve(w.NpcTemplates["goblin"])
	require.NoError(t, err)

	// Aggressive outranks idle and wander, so the idle pulse becomes an
	// attack when a player is present.
	res := RunHook(chain, ctxFor(w, npc, dice.NewRandSource()), func(b Behavior, ctx *Context) Result {
		return b.OnIdle(ctx)
	})
	assert.True(t, res.Handled)
	assert.Equal(t, "p1", res.AttackTargetID)
}

func TestIdle_EmotesTemplateMessage(t *testing.T) {
	w, npc := behaviorWorld(t)
	b := newIdle(nil)

	src := &dice.SeqSource{Floats: []float64{0.0}, Ints: []int{0}}
	res := b.OnIdle(ctxFor(w, npc, src))
	assert.True(t, res.Handled)
	assert.Equal(t, "The goblin picks its teeth.", res.EmoteText)

	// Chance roll fails.
	src = &dice.SeqSource{Floats: []float64{0.99}}
	res = b.OnIdle(ctxFor(w, npc, src))
	assert.False(t, res.Handled)
}

func TestIdle_ConfigOverridesMessages(t *testing.T) {
	w, npc := behaviorWorld(t)
	b := newIdle(map[string]any{
		"idle_chance":   1.0,
		"idle_messages": []any{"The goblin sharpens a crude knife."},
	})

	src := &dice.SeqSource{Floats: []float64{0.0}, Ints: []int{0}}
	res := b.OnIdle(ctxFor(w, npc, src))
	assert.Equal(t, "The goblin sharpens a crude knife.", res.EmoteText)
}

func TestWander_StaysInArea(t *testing.T) {
	w, npc := behaviorWorld(t)
	b := newWander(map[string]any{"wander_chance": 1.0})

	// The den has exits north (in area) and east (out of area); only north
	// qualifies regardless of the pick roll.
	for pick := 0; pick < 3; pick++ {
		src := &dice.SeqSource{Floats: []float64{0.0}, Ints: []int{pick}}
		res := b.OnWander(ctxFor(w, npc, src))
		require.True(t, res.Handled)
		assert.Equal(t, world.North, res.MoveDirection)
	}
}

func TestWander_LeavesAreaWhenAllowed(t *testing.T) {
	w, npc := behaviorWorld(t)
	b := newWander(map[string]any{"wander_chance": 1.0, "stay_in_area": false})

	src := &dice.SeqSource{Floats: []float64{0.0}, Ints: []int{1}}
	res := b.OnWander(ctxFor(w, npc, src))
	require.True(t, res.Handled)
	// Standard order puts north before east; index 1 is the out-of-area exit.
	assert.Equal(t, world.East, res.MoveDirection)
}

func TestAggressive_AttacksOnEnter(t *testing.T) {
	w, npc := behaviorWorld(t)
	b := newAggressive(nil)

	ctx := ctxFor(w, npc, dice.NewRandSource())
	ctx.ActorID = "p9"
	res := b.OnPlayerEnter(ctx)
	assert.True(t, res.Handled)
	assert.Equal(t, "p9", res.AttackTargetID)

	// Already fighting: the hook declines.
	npc.Combat.Enter(combat.Windup, time.Now(), time.Second)
	res = b.OnPlayerEnter(ctx)
	assert.False(t, res.Handled)
}

func TestAggressive_FleesBelowThreshold(t *testing.T) {
	w, npc := behaviorWorld(t)
	b := newAggressive(map[string]any{"flee_threshold": 0.25})
	npc.Combat.AddThreat("p1", 5)

	npc.CurrentHealth = npc.MaxHealth
	res := b.OnCombatTurn(ctxFor(w, npc, dice.NewRandSource()))
	assert.Equal(t, "p1", res.AttackTargetID)
	assert.False(t, res.Flee)

	npc.CurrentHealth = 2
	res = b.OnCombatTurn(ctxFor(w, npc, dice.NewRandSource()))
	assert.True(t, res.Flee)
}

func TestProtective_CallsForHelp(t *testing.T) {
	w, npc := behaviorWorld(t)
	b := newProtective(map[string]any{"help_message": "Guards! Guards!"})

	ctx := ctxFor(w, npc, dice.NewRandSource())
	ctx.ActorID = "p1"
	res := b.OnDamaged(ctx)
	assert.True(t, res.Handled)
	assert.True(t, res.CallForHelp)
	assert.Equal(t, "Guards! Guards!", res.Message)

	ctx.ActorID = ""
	assert.False(t, b.OnDamaged(ctx).Handled)
}
