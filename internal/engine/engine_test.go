package engine_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/embervale/mud/internal/config"
	"github.com/embervale/mud/internal/dispatch"
	"github.com/embervale/mud/internal/engine"
	"github.com/embervale/mud/internal/game/combat"
	"github.com/embervale/mud/internal/game/dice"
	"github.com/embervale/mud/internal/game/effect"
	"github.com/embervale/mud/internal/game/trigger"
	"github.com/embervale/mud/internal/game/world"
)

// testRig drives the engine deterministically: synchronous posting, an
// injected clock shared with the scheduler, and replayed dice.
type testRig struct {
	e      *engine.Engine
	w      *world.World
	clock  *time.Time
	seq    *dice.SeqSource
	events map[string]<-chan dispatch.Event
}

func newRig(t *testing.T) *testRig {
	t.Helper()

	w := world.New()

	area := world.NewArea("vale", "The Vale")
	area.TimeScale = 0
	area.EntryPoints = []string{"vale:green"}
	area.RoomIDs["vale:green"] = struct{}{}
	area.RoomIDs["vale:lane"] = struct{}{}
	require.NoError(t, w.AddArea(area))

	green := world.NewRoom("vale:green", "Village Green", "A wide green ringed by cottages.")
	green.AreaID = "vale"
	green.Exits[world.North] = "vale:lane"
	require.NoError(t, w.AddRoom(green))

	lane := world.NewRoom("vale:lane", "Quiet Lane", "A narrow lane between hedgerows.")
	lane.AreaID = "vale"
	lane.Exits[world.South] = "vale:green"
	require.NoError(t, w.AddRoom(lane))

	w.NpcTemplates["rat"] = &world.NpcTemplate{
		ID:               "rat",
		Name:             "rat",
		Keywords:         []string{"rat"},
		MaxHealth:        4,
		ExperienceReward: 25,
		DropTable: []world.DropEntry{
			{TemplateID: "rat-tail", Chance: 1, MinQty: 1, MaxQty: 1},
		},
	}
	w.ItemTemplates["rat-tail"] = &world.ItemTemplate{
		ID: "rat-tail", Name: "rat tail", Keywords: []string{"tail"},
	}
	w.EffectTemplates["poison"] = &effect.Template{
		ID: "poison", Name: "Poison", Type: effect.DoT,
		DurationSeconds: 15, IntervalSeconds: 3, Magnitude: 5,
	}

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &start
	seq := &dice.SeqSource{Ints: []int{1}}

	cfg := config.Config{
		Engine:  config.EngineConfig{InboundQueueSize: 64},
		Combat:  config.CombatConfig{CritChance: 0, CritMultiplier: 1.5, RecoveryInterval: time.Second},
		Respawn: config.RespawnConfig{CountdownSeconds: 10},
		Content: config.ContentConfig{Dir: "testdata"},
	}

	e := engine.New(w, cfg, zap.NewNop(),
		engine.WithSynchronous(),
		engine.WithClock(func() time.Time { return *clock }),
		engine.WithDice(seq),
	)
	require.NoError(t, e.SetStartRoom("vale:green"))

	return &testRig{
		e:      e,
		w:      w,
		clock:  clock,
		seq:    seq,
		events: make(map[string]<-chan dispatch.Event),
	}
}

func (r *testRig) join(t *testing.T, id, name string, admin bool) {
	t.Helper()
	r.events[id] = r.e.Dispatcher().Register(id, 256)
	r.e.Join(engine.JoinRequest{PlayerID: id, Name: name, IsAdmin: admin})
}

// drain empties a player's event channel and returns the collected events.
func (r *testRig) drain(id string) []dispatch.Event {
	var out []dispatch.Event
	for {
		select {
		case ev := <-r.events[id]:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// advance steps the clock forward in fixed increments, running due scheduled
// work after each step so event ordering mirrors the live driver.
func (r *testRig) advance(total, step time.Duration) {
	for elapsed := time.Duration(0); elapsed < total; elapsed += step {
		*r.clock = r.clock.Add(step)
		r.e.RunDue(*r.clock)
	}
}

func hasText(events []dispatch.Event, substr string) bool {
	for _, ev := range events {
		if strings.Contains(ev.Text, substr) {
			return true
		}
	}
	return false
}

func countText(events []dispatch.Event, substr string) int {
	n := 0
	for _, ev := range events {
		if strings.Contains(ev.Text, substr) {
			n++
		}
	}
	return n
}

func TestMovement_RoomMessagesAndViews(t *testing.T) {
	r := newRig(t)
	r.join(t, "p1", "Alma", false)
	r.join(t, "p2", "Brin", false)
	r.drain("p1")
	r.drain("p2")

	r.e.SubmitCommand("p1", "north")

	p1Events := r.drain("p1")
	require.True(t, hasText(p1Events, "You move north."), "mover should get a movement acknowledgement")
	require.True(t, hasText(p1Events, "Quiet Lane"), "mover should see the destination room")
	assert.False(t, hasText(p1Events, "leaves"), "mover should not see their own departure")

	p2Events := r.drain("p2")
	assert.True(t, hasText(p2Events, "Alma leaves north."))

	p1 := r.w.Players["p1"]
	assert.Equal(t, "vale:lane", p1.RoomID)

	// No exit east from the lane.
	r.e.SubmitCommand("p1", "east")
	assert.True(t, hasText(r.drain("p1"), "You can't go that way."))
	assert.Equal(t, "vale:lane", p1.RoomID)
}

func TestMovement_ArrivalSeenFromOtherSide(t *testing.T) {
	r := newRig(t)
	r.join(t, "p1", "Alma", false)
	r.join(t, "p2", "Brin", false)
	r.e.SubmitCommand("p2", "north")
	r.drain("p1")
	r.drain("p2")

	r.e.SubmitCommand("p1", "north")
	assert.True(t, hasText(r.drain("p2"), "Alma arrives from the south."))
}

func TestCombat_KillAwardsExperienceAndLoot(t *testing.T) {
	r := newRig(t)
	r.join(t, "p1", "Alma", false)
	_, err := r.e.SpawnNpc("rat", "vale:green", 0)
	require.NoError(t, err)
	r.drain("p1")

	r.e.SubmitCommand("p1", "attack rat")
	require.True(t, hasText(r.drain("p1"), "You attack rat!"))

	// Unarmed cycle: 800ms windup, then swing+recovery between turns. Two
	// 2-damage swings finish a 4 HP rat.
	r.advance(5*time.Second, 100*time.Millisecond)

	events := r.drain("p1")
	assert.True(t, hasText(events, "You hit rat for 2 damage."))
	assert.True(t, hasText(events, "Rat dies!"))
	assert.True(t, hasText(events, "Rat tail falls to the ground."))
	assert.True(t, hasText(events, "You gain 25 experience."))

	assert.Empty(t, r.w.Npcs, "corpse should be removed")
	p1 := r.w.Players["p1"]
	assert.Equal(t, 25, p1.Experience)
	assert.Equal(t, 1, p1.Level)
	assert.False(t, p1.Combat.InCombat())

	items := r.w.ItemsInRoom("vale:green")
	require.Len(t, items, 1)
	assert.Equal(t, "rat-tail", items[0].TemplateID)

	// The spawn point refills after the default respawn delay.
	r.advance(61*time.Second, time.Second)
	assert.Len(t, r.w.Npcs, 1)
	assert.True(t, hasText(r.drain("p1"), "Rat arrives."))
}

func TestEffects_PoisonTicksClampAndExpire(t *testing.T) {
	r := newRig(t)
	r.join(t, "p1", "Alma", false)
	p1 := r.w.Players["p1"]
	p1.MaxHealth = 100
	p1.CurrentHealth = 100
	r.drain("p1")

	_, err := r.e.ApplyEffect("p1", "poison")
	require.NoError(t, err)
	require.True(t, hasText(r.drain("p1"), "You are affected by *Poison*."))

	r.advance(3*time.Second, time.Second)
	assert.Equal(t, 95, p1.CurrentHealth)
	r.advance(3*time.Second, time.Second)
	assert.Equal(t, 90, p1.CurrentHealth)
	r.advance(3*time.Second, time.Second)
	assert.Equal(t, 85, p1.CurrentHealth)
	r.advance(3*time.Second, time.Second)
	assert.Equal(t, 80, p1.CurrentHealth)

	// The duration boundary at 15s is the expiration, not a fifth dose.
	r.advance(3*time.Second, time.Second)
	assert.Equal(t, 80, p1.CurrentHealth)
	assert.Empty(t, p1.ActiveEffects)

	events := r.drain("p1")
	assert.Equal(t, 4, countText(events, "sears you for 5 damage"))
	assert.True(t, hasText(events, "*Poison* wears off."))

	// Nothing fires past expiry.
	r.advance(6*time.Second, time.Second)
	assert.Equal(t, 80, p1.CurrentHealth)
	assert.Equal(t, 0, countText(r.drain("p1"), "sears"))
}

func TestEffects_DamageTickNeverKills(t *testing.T) {
	r := newRig(t)
	r.join(t, "p1", "Alma", false)
	p1 := r.w.Players["p1"]
	p1.CurrentHealth = 3
	r.drain("p1")

	_, err := r.e.ApplyEffect("p1", "poison")
	require.NoError(t, err)

	r.advance(3*time.Second, time.Second)
	assert.Equal(t, 1, p1.CurrentHealth)
	assert.True(t, p1.IsAlive())

	r.advance(3*time.Second, time.Second)
	assert.Equal(t, 1, p1.CurrentHealth, "ticks clamp at 1, never kill")
}

func TestFlee_RollAgainstDifficulty(t *testing.T) {
	r := newRig(t)
	r.join(t, "p1", "Alma", false)
	_, err := r.e.SpawnNpc("rat", "vale:green", 0)
	require.NoError(t, err)

	p1 := r.w.Players["p1"]
	p1.MaxHealth = 100
	p1.CurrentHealth = 10 // 90% missing health brings the escape DC down to 6

	// First d20 shows 5 (fail against DC 6), second shows 6 (exact success),
	// then the exit pick.
	r.seq.Ints = []int{4, 5, 0}

	r.e.SubmitCommand("p1", "attack rat")
	r.drain("p1")

	r.e.SubmitCommand("p1", "flee")
	events := r.drain("p1")
	assert.True(t, hasText(events, "You try to flee, but can't get away! (5 vs 6)"))
	assert.Equal(t, "vale:green", p1.RoomID)
	assert.True(t, p1.Combat.InCombat())

	r.e.SubmitCommand("p1", "flee")
	events = r.drain("p1")
	assert.True(t, hasText(events, "You flee north!"))
	assert.Equal(t, "vale:lane", p1.RoomID)
	assert.False(t, p1.Combat.InCombat())
}

func TestMove_BlockedWhileFighting(t *testing.T) {
	r := newRig(t)
	r.join(t, "p1", "Alma", false)
	_, err := r.e.SpawnNpc("rat", "vale:green", 0)
	require.NoError(t, err)
	r.e.SubmitCommand("p1", "attack rat")
	r.drain("p1")

	r.e.SubmitCommand("p1", "north")
	assert.True(t, hasText(r.drain("p1"), "You can't just walk away from a fight! Try 'flee'."))
	assert.Equal(t, "vale:green", r.w.Players["p1"].RoomID)
}

func TestRespawn_CountdownAndDisconnectCancel(t *testing.T) {
	r := newRig(t)
	r.join(t, "p1", "Alma", false)
	r.join(t, "adm", "Warden", true)
	r.drain("p1")
	r.drain("adm")

	r.e.SubmitCommand("adm", "hurt alma 60")

	p1 := r.w.Players["p1"]
	require.NotNil(t, p1.DeathTime)
	events := r.drain("p1")
	assert.True(t, hasText(events, "You are slain by Warden!"))
	assert.True(t, hasText(events, "Respawning in 10..."))

	// Dead players can only wait.
	r.e.SubmitCommand("p1", "north")
	assert.True(t, hasText(r.drain("p1"), "You are dead."))

	r.advance(3*time.Second, time.Second)
	events = r.drain("p1")
	assert.True(t, hasText(events, "Respawning in 9..."))
	assert.True(t, hasText(events, "Respawning in 7..."))

	// Disconnecting cancels the countdown entirely.
	r.e.Leave("p1")
	r.advance(20*time.Second, time.Second)
	require.NotNil(t, p1.DeathTime, "no respawn while disconnected")

	// Reconnecting restarts the countdown from the top.
	r.join(t, "p1", "Alma", false)
	events = r.drain("p1")
	assert.True(t, hasText(events, "Welcome back, Alma."))
	assert.True(t, hasText(events, "Respawning in 10..."))

	r.advance(10*time.Second, time.Second)
	assert.Nil(t, p1.DeathTime)
	assert.Equal(t, p1.MaxHealth, p1.CurrentHealth)
	assert.Equal(t, "vale:green", p1.RoomID)
	assert.True(t, hasText(r.drain("p1"), "The world fades back in."))
}

func TestCommandTrigger_GlobAndMaxFires(t *testing.T) {
	r := newRig(t)
	r.join(t, "p1", "Alma", false)
	r.drain("p1")

	lever := &trigger.Trigger{
		ID:             "green-lever",
		Event:          trigger.OnCommand,
		CommandPattern: "pull *",
		MaxFires:       1,
		Enabled:        true,
		Actions: []trigger.Action{
			{Type: "message_player", Text: "The lever grinds. Somewhere a gate opens."},
			{Type: "set_flag", Flag: "pulled_lever", Value: true},
		},
	}
	require.NoError(t, lever.Validate())
	require.NoError(t, r.e.Triggers().AddRoomTrigger("vale:green", lever))

	r.e.SubmitCommand("p1", "pull lever")
	events := r.drain("p1")
	assert.True(t, hasText(events, "The lever grinds."))
	assert.True(t, r.w.Players["p1"].PlayerFlags["pulled_lever"])

	// Spent triggers fall through to the unknown-command reply.
	r.e.SubmitCommand("p1", "pull lever")
	events = r.drain("p1")
	assert.False(t, hasText(events, "The lever grinds."))
	assert.True(t, hasText(events, "Huh? That's not a command you know."))
}

func TestRouter_RepeatAndSelfExpansion(t *testing.T) {
	r := newRig(t)
	r.join(t, "p1", "Alma", false)
	r.drain("p1")

	r.e.SubmitCommand("p1", "!")
	assert.True(t, hasText(r.drain("p1"), "You haven't done anything yet."))

	r.e.SubmitCommand("p1", "say hello")
	require.True(t, hasText(r.drain("p1"), "You say, \"hello\""))
	r.e.SubmitCommand("p1", "!")
	assert.True(t, hasText(r.drain("p1"), "You say, \"hello\""))

	r.e.SubmitCommand("p1", "look self")
	assert.True(t, hasText(r.drain("p1"), "Alma"))
}

func TestCombat_DamageLandsAfterWindupPlusSwing(t *testing.T) {
	r := newRig(t)
	r.join(t, "p1", "Alma", false)
	_, err := r.e.SpawnNpc("rat", "vale:green", 0)
	require.NoError(t, err)
	r.drain("p1")

	r.e.SubmitCommand("p1", "attack rat")
	r.drain("p1")
	p1 := r.w.Players["p1"]

	// The unarmed windup completes at 800ms: the swing phase begins, but
	// nothing has landed yet.
	r.advance(800*time.Millisecond, 100*time.Millisecond)
	assert.Equal(t, combat.Swing, p1.Combat.Phase)
	assert.False(t, hasText(r.drain("p1"), "You hit"))

	// The hit lands only at windup + swing = 1.2s.
	r.advance(300*time.Millisecond, 100*time.Millisecond)
	assert.False(t, hasText(r.drain("p1"), "You hit"))
	r.advance(100*time.Millisecond, 100*time.Millisecond)
	assert.True(t, hasText(r.drain("p1"), "You hit rat for 2 damage."))
	assert.Equal(t, combat.Recovery, p1.Combat.Phase)
}

func TestCombat_PlayerRetaliatesWhenHit(t *testing.T) {
	r := newRig(t)
	r.w.NpcTemplates["wolf"] = &world.NpcTemplate{
		ID: "wolf", Name: "wolf", Keywords: []string{"wolf"},
		MaxHealth: 30, Behaviors: []string{"aggressive"},
	}
	r.join(t, "p1", "Alma", false)
	wolf, err := r.e.SpawnNpc("wolf", "vale:lane", 0)
	require.NoError(t, err)
	r.drain("p1")

	r.e.SubmitCommand("p1", "north")
	r.drain("p1")

	p1 := r.w.Players["p1"]
	require.True(t, wolf.Combat.InCombat(), "aggressive NPC pounces on entry")
	assert.False(t, p1.Combat.InCombat())

	// The wolf's first hit lands at 1.2s; the surviving player fights back.
	r.advance(1200*time.Millisecond, 100*time.Millisecond)
	assert.True(t, hasText(r.drain("p1"), "hits you for"))
	assert.True(t, p1.Combat.InCombat())
	assert.Equal(t, wolf.ID, p1.Combat.TargetID)
}

func TestRespawn_UsesAreaEntryPoint(t *testing.T) {
	r := newRig(t)

	crypt := world.NewArea("crypt", "The Crypt")
	crypt.TimeScale = 0
	crypt.EntryPoints = []string{"crypt:gate"}
	crypt.RoomIDs["crypt:gate"] = struct{}{}
	crypt.RoomIDs["crypt:depths"] = struct{}{}
	require.NoError(t, r.w.AddArea(crypt))
	gate := world.NewRoom("crypt:gate", "Crypt Gate", "A rusted iron gate.")
	gate.AreaID = "crypt"
	gate.Exits[world.Down] = "crypt:depths"
	depths := world.NewRoom("crypt:depths", "The Depths", "Stale air and old bones.")
	depths.AreaID = "crypt"
	depths.Exits[world.Up] = "crypt:gate"
	require.NoError(t, r.w.AddRoom(gate))
	require.NoError(t, r.w.AddRoom(depths))

	r.join(t, "p1", "Alma", false)
	r.join(t, "adm", "Warden", true)
	r.e.SubmitCommand("adm", "goto crypt:depths")
	r.e.SubmitCommand("adm", "summon alma")
	r.drain("p1")
	r.drain("adm")

	r.e.SubmitCommand("adm", "hurt alma 60")
	p1 := r.w.Players["p1"]
	require.NotNil(t, p1.DeathTime)
	require.Equal(t, "crypt:gate", p1.RespawnRoomID)

	var countdown *dispatch.Event
	events := r.drain("p1")
	for i := range events {
		if events[i].Type == dispatch.TypeRespawnCountdown {
			countdown = &events[i]
			break
		}
	}
	require.NotNil(t, countdown)
	assert.Equal(t, 10, countdown.Payload["seconds_remaining"])
	assert.Equal(t, "crypt:gate", countdown.Payload["respawn_location"])

	// The player wakes at the area entry point, not the global start room.
	r.advance(10*time.Second, time.Second)
	assert.Nil(t, p1.DeathTime)
	assert.Equal(t, "crypt:gate", p1.RoomID)
}

func TestTimerTrigger_RepeatsOnInterval(t *testing.T) {
	r := newRig(t)
	r.join(t, "p1", "Alma", false)
	r.drain("p1")

	bell := &trigger.Trigger{
		ID:       "green-bell",
		Event:    trigger.OnTimer,
		Interval: 5 * time.Second,
		Enabled:  true,
		Actions: []trigger.Action{
			{Type: "message_room", Text: "A distant bell tolls."},
		},
	}
	require.NoError(t, bell.Validate())
	require.NoError(t, r.e.Triggers().AddRoomTrigger("vale:green", bell))
	r.e.ScheduleTimerTriggers()

	r.advance(5*time.Second, time.Second)
	assert.Equal(t, 1, countText(r.drain("p1"), "A distant bell tolls."))
	r.advance(5*time.Second, time.Second)
	assert.Equal(t, 1, countText(r.drain("p1"), "A distant bell tolls."))
}

func TestQuest_DialogueAcceptCompleteAbandon(t *testing.T) {
	r := newRig(t)
	r.w.NpcTemplates["elder"] = &world.NpcTemplate{
		ID: "elder", Name: "the village elder", Keywords: []string{"elder"},
		MaxHealth: 10,
		BehaviorConfig: map[string]any{
			"dialogue_lines":  []any{"The cellar crawls with rats."},
			"quest_id":        "rat-cull",
			"quest_name":      "Rat Cull",
			"quest_stages":    1,
			"quest_reward_xp": 10,
		},
	}
	r.join(t, "p1", "Alma", false)
	_, err := r.e.SpawnNpc("elder", "vale:green", 0)
	require.NoError(t, err)
	r.drain("p1")
	p1 := r.w.Players["p1"]

	r.e.SubmitCommand("p1", "journal")
	assert.True(t, hasText(r.drain("p1"), "Your journal is empty."))

	r.e.SubmitCommand("p1", "talk elder")
	require.True(t, p1.InDialogue)
	r.drain("p1")

	r.e.SubmitCommand("p1", "accept")
	assert.True(t, hasText(r.drain("p1"), "You accept *Rat Cull*."))
	assert.Equal(t, 1, p1.QuestProgress["rat-cull"])

	r.e.SubmitCommand("p1", "leave")
	require.False(t, p1.InDialogue)
	r.drain("p1")

	r.e.SubmitCommand("p1", "journal")
	assert.True(t, hasText(r.drain("p1"), "rat-cull (stage 1)"))
	r.e.SubmitCommand("p1", "quest rat-cull")
	assert.True(t, hasText(r.drain("p1"), "stage 1"))

	r.e.SubmitCommand("p1", "abandon rat-cull")
	assert.True(t, hasText(r.drain("p1"), "You abandon *rat-cull*."))
	_, active := p1.QuestProgress["rat-cull"]
	assert.False(t, active)

	// Take it again and turn it in.
	r.e.SubmitCommand("p1", "talk elder")
	r.e.SubmitCommand("p1", "accept")
	r.e.SubmitCommand("p1", "complete")
	events := r.drain("p1")
	assert.True(t, hasText(events, "You complete *Rat Cull*!"))
	assert.True(t, hasText(events, "You gain 10 experience."))
	_, done := p1.CompletedQuests["rat-cull"]
	assert.True(t, done)
	assert.Equal(t, 10, p1.Experience)
}

func TestCombatCommand_ReportsStatus(t *testing.T) {
	r := newRig(t)
	r.join(t, "p1", "Alma", false)
	_, err := r.e.SpawnNpc("rat", "vale:green", 0)
	require.NoError(t, err)
	r.drain("p1")

	r.e.SubmitCommand("p1", "combat")
	assert.True(t, hasText(r.drain("p1"), "You are not fighting anyone."))

	r.e.SubmitCommand("p1", "attack rat")
	r.drain("p1")
	r.e.SubmitCommand("p1", "combat")
	events := r.drain("p1")
	assert.True(t, hasText(events, "You are fighting rat"))
	assert.True(t, hasText(events, "fists"))
}

func TestAdminWhere_ReportsLocations(t *testing.T) {
	r := newRig(t)
	r.join(t, "adm", "Warden", true)
	r.join(t, "p1", "Alma", false)
	_, err := r.e.SpawnNpc("rat", "vale:lane", 0)
	require.NoError(t, err)
	r.drain("adm")

	r.e.SubmitCommand("adm", "where")
	assert.True(t, hasText(r.drain("adm"), "You are in vale:green (The Vale)."))

	r.e.SubmitCommand("adm", "where alma")
	assert.True(t, hasText(r.drain("adm"), "Alma is in vale:green."))

	r.e.SubmitCommand("adm", "where rat")
	assert.True(t, hasText(r.drain("adm"), "rat in vale:lane"))

	r.e.SubmitCommand("adm", "where dragon")
	assert.True(t, hasText(r.drain("adm"), "Nothing by that name exists."))
}

func TestBehavior_IdleAndWanderRunOnSeparateTimers(t *testing.T) {
	r := newRig(t)
	r.w.NpcTemplates["sheep"] = &world.NpcTemplate{
		ID: "sheep", Name: "a sheep", Keywords: []string{"sheep"},
		MaxHealth: 10,
		Behaviors: []string{"idle", "wander"},
		BehaviorConfig: map[string]any{
			"idle_chance":         1.0,
			"idle_messages":       []any{"The sheep bleats."},
			"wander_chance":       1.0,
			"idle_interval_min":   5,
			"idle_interval_max":   5,
			"wander_interval_min": 8,
			"wander_interval_max": 8,
		},
	}
	r.join(t, "p1", "Alma", false)
	sheep, err := r.e.SpawnNpc("sheep", "vale:green", 0)
	require.NoError(t, err)
	r.drain("p1")

	require.NotEmpty(t, sheep.IdleEventID)
	require.NotEmpty(t, sheep.WanderEventID)

	// The idle timer fires at 5s without moving the sheep.
	r.advance(5*time.Second, time.Second)
	assert.True(t, hasText(r.drain("p1"), "The sheep bleats."))
	assert.Equal(t, "vale:green", sheep.RoomID)

	// The wander timer fires independently at 8s.
	r.advance(3*time.Second, time.Second)
	assert.True(t, hasText(r.drain("p1"), "A sheep leaves north."))
	assert.Equal(t, "vale:lane", sheep.RoomID)
}

func TestAdmin_CommandsHiddenFromPlayers(t *testing.T) {
	r := newRig(t)
	r.join(t, "p1", "Alma", false)
	r.drain("p1")

	r.e.SubmitCommand("p1", "broadcast hi")
	assert.True(t, hasText(r.drain("p1"), "Huh? That's not a command you know."))
}
