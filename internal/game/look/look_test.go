package look

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embervale/mud/internal/game/effect"
	"github.com/embervale/mud/internal/game/world"
)

func lookWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.New()
	room := world.NewRoom("yard", "Castle Yard", "Trampled mud and straw.")
	room.Exits[world.North] = "keep"
	keep := world.NewRoom("keep", "The Keep", "Cold stone walls.")
	require.NoError(t, w.AddRoom(room))
	require.NoError(t, w.AddRoom(keep))

	p := world.NewPlayer("p1", "Aldric")
	p.RoomID = "yard"
	p.MaxHealth, p.CurrentHealth = 50, 50
	require.NoError(t, w.AddPlayer(p))
	return w
}

func spawnGoblins(t *testing.T, w *world.World, count int) []*world.Npc {
	t.Helper()
	tmpl := &world.NpcTemplate{ID: "goblin", Name: "a goblin", Keywords: []string{"gob"}, MaxHealth: 10}
	w.NpcTemplates[tmpl.ID] = tmpl
	out := make([]*world.Npc, count)
	for i := range out {
		n := world.NewNpc(tmpl, "yard")
		require.NoError(t, w.AddNpc(n))
		out[i] = n
	}
	return out
}

func TestParseTarget(t *testing.T) {
	cases := []struct {
		in      string
		keyword string
		ordinal int
	}{
		{"goblin", "goblin", 1},
		{"2.goblin", "goblin", 2},
		{"10.rat", "rat", 10},
		{"0.rat", "0.rat", 1},
		{"x.rat", "x.rat", 1},
		{".rat", ".rat", 1},
		{"  sword  ", "sword", 1},
	}
	for _, c := range cases {
		kw, n := ParseTarget(c.in)
		assert.Equal(t, c.keyword, kw, c.in)
		assert.Equal(t, c.ordinal, n, c.in)
	}
}

func TestFindEntity_OrdinalAcrossNpcs(t *testing.T) {
	w := lookWorld(t)
	goblins := spawnGoblins(t, w, 3)

	first, ok := FindEntity(w, "yard", "goblin", "p1")
	require.True(t, ok)
	second, ok := FindEntity(w, "yard", "2.goblin", "p1")
	require.True(t, ok)
	assert.NotEqual(t, first.Core().ID, second.Core().ID)

	_, ok = FindEntity(w, "yard", "4.goblin", "p1")
	assert.False(t, ok)

	// Repeated lookups are stable.
	again, ok := FindEntity(w, "yard", "2.goblin", "p1")
	require.True(t, ok)
	assert.Equal(t, second.Core().ID, again.Core().ID)

	_ = goblins
}

func TestFindEntity_SkipsSelfAndDead(t *testing.T) {
	w := lookWorld(t)
	goblins := spawnGoblins(t, w, 1)

	_, ok := FindEntity(w, "yard", "aldric", "p1")
	assert.False(t, ok, "the viewer never matches itself")

	goblins[0].CurrentHealth = 0
	w.DetachFromRoom(goblins[0].ID)
	_, ok = FindEntity(w, "yard", "goblin", "p1")
	assert.False(t, ok)
}

func TestFindEntity_MatchesOtherPlayers(t *testing.T) {
	w := lookWorld(t)
	other := world.NewPlayer("p2", "Brannoc")
	other.RoomID = "yard"
	other.MaxHealth, other.CurrentHealth = 50, 50
	require.NoError(t, w.AddPlayer(other))

	got, ok := FindEntity(w, "yard", "bran", "p1")
	require.True(t, ok)
	assert.Equal(t, "p2", got.Core().ID)
}

func TestFindItemNearby_InventoryBeforeFloor(t *testing.T) {
	w := lookWorld(t)
	tmpl := &world.ItemTemplate{ID: "torch", Name: "a torch"}
	w.ItemTemplates[tmpl.ID] = tmpl

	held := world.NewItem(tmpl, 1)
	floor := world.NewItem(tmpl, 1)
	require.NoError(t, w.RegisterItem(held))
	require.NoError(t, w.RegisterItem(floor))
	require.NoError(t, w.GiveItemToPlayer(held.ID, "p1"))
	require.NoError(t, w.PlaceItemInRoom(floor.ID, "yard", time.Now()))

	got, ok := FindItemNearby(w, "p1", "yard", "torch")
	require.True(t, ok)
	assert.Equal(t, held.ID, got.ID)

	got, ok = FindItemNearby(w, "p1", "yard", "2.torch")
	require.True(t, ok)
	assert.Equal(t, floor.ID, got.ID)
}

func TestRoomView(t *testing.T) {
	w := lookWorld(t)
	spawnGoblins(t, w, 1)
	room, _ := w.Room("yard")

	view := RoomView(w, room, "p1")
	assert.Contains(t, view, "**Castle Yard**")
	assert.Contains(t, view, "Trampled mud")
	assert.Contains(t, view, "Exits: north")
	assert.Contains(t, view, "A goblin is here.")
	assert.NotContains(t, view, "Aldric", "the viewer is not listed")
}

func TestRoomView_OverridesAndNoExits(t *testing.T) {
	w := lookWorld(t)
	room, _ := w.Room("keep")
	room.DynamicDescriptionOverride = "The walls drip with sudden frost."

	view := RoomView(w, room, "p1")
	assert.Contains(t, view, "sudden frost")
	assert.NotContains(t, view, "Cold stone walls")
	assert.Contains(t, view, "no obvious exits")
}

func TestStatsView(t *testing.T) {
	w := lookWorld(t)
	p := w.Players["p1"]
	p.CharacterClass = "warden"
	p.Level = 3
	p.Strength = 14
	p.Experience = 950

	view := StatsView(p)
	assert.Contains(t, view, "**Aldric**, warden (level 3)")
	assert.Contains(t, view, "Health: 50/50")
	assert.Contains(t, view, "Strength: 14")
	assert.Contains(t, view, "Experience: 950")
}

func TestEffectsView(t *testing.T) {
	w := lookWorld(t)
	p := w.Players["p1"]
	now := time.Now()

	assert.Equal(t, "You are not affected by anything.", EffectsView(p, now))

	p.AddEffect(effect.New(&effect.Template{
		ID: "regen", Name: "Regeneration", Type: effect.HoT,
		DurationSeconds: 30, IntervalSeconds: 5, Magnitude: -2,
	}, now))
	view := EffectsView(p, now.Add(10*time.Second))
	assert.Contains(t, view, "*Regeneration* (hot)")
	assert.Contains(t, view, "20s remaining")
}

func TestEntityView_HealthDescription(t *testing.T) {
	w := lookWorld(t)
	goblins := spawnGoblins(t, w, 1)
	goblins[0].CurrentHealth = 3

	view := EntityView(w, goblins[0])
	assert.Contains(t, view, "looks heavily wounded")
}

func TestInventoryView(t *testing.T) {
	w := lookWorld(t)
	p := w.Players["p1"]
	assert.Equal(t, "You are carrying nothing.", InventoryView(w, p))

	tmpl := &world.ItemTemplate{ID: "coin", Name: "a copper coin", Stackable: true}
	w.ItemTemplates[tmpl.ID] = tmpl
	coins := world.NewItem(tmpl, 7)
	require.NoError(t, w.RegisterItem(coins))
	require.NoError(t, w.GiveItemToPlayer(coins.ID, "p1"))

	view := InventoryView(w, p)
	assert.Contains(t, view, "a copper coin (x7)")
}