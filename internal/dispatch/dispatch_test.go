package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func drain(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func testDispatcher(rooms map[string][]string) *Dispatcher {
	return New(func(roomID string) []string { return rooms[roomID] }, zap.NewNop())
}

func TestToPlayer(t *testing.T) {
	d := testDispatcher(nil)
	ch := d.Register("p1", 4)

	d.ToPlayer("p1", Message("hello"))
	d.ToPlayer("ghost", Message("nobody home"))

	got := drain(ch)
	require.Len(t, got, 1)
	assert.Equal(t, TypeMessage, got[0].Type)
	assert.Equal(t, "hello", got[0].Text)
}

func TestToRoom_ExcludesActor(t *testing.T) {
	d := testDispatcher(map[string][]string{"hall": {"p1", "p2", "p3"}})
	ch1 := d.Register("p1", 4)
	ch2 := d.Register("p2", 4)
	ch3 := d.Register("p3", 4)

	d.ToRoom("hall", "p2", Message("P2 waves."))

	assert.Len(t, drain(ch1), 1)
	assert.Len(t, drain(ch2), 0)
	assert.Len(t, drain(ch3), 1)
}

func TestToRoom_SkipsUnregistered(t *testing.T) {
	d := testDispatcher(map[string][]string{"hall": {"p1", "offline"}})
	ch := d.Register("p1", 4)

	assert.NotPanics(t, func() { d.ToRoom("hall", "", Message("boo")) })
	assert.Len(t, drain(ch), 1)
}

func TestToAll(t *testing.T) {
	d := testDispatcher(nil)
	ch1 := d.Register("p1", 4)
	ch2 := d.Register("p2", 4)

	d.ToAll(Message("The server is restarting."))

	assert.Len(t, drain(ch1), 1)
	assert.Len(t, drain(ch2), 1)
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
	d := testDispatcher(nil)
	ch := d.Register("p1", 2)

	for i := 0; i < 5; i++ {
		d.ToPlayer("p1", Message("spam"))
	}
	assert.Len(t, drain(ch), 2)
}

func TestRegisterReplacesPriorChannel(t *testing.T) {
	d := testDispatcher(nil)
	old := d.Register("p1", 4)
	fresh := d.Register("p1", 4)

	_, open := <-old
	assert.False(t, open, "prior channel must be closed")

	d.ToPlayer("p1", Message("hi"))
	assert.Len(t, drain(fresh), 1)
}

func TestUnregister(t *testing.T) {
	d := testDispatcher(nil)
	ch := d.Register("p1", 4)
	d.Unregister("p1")

	_, open := <-ch
	assert.False(t, open)
	assert.False(t, d.Registered("p1"))
	assert.NotPanics(t, func() { d.ToPlayer("p1", Message("gone")) })
}

func TestEventConstructors(t *testing.T) {
	ev := StatUpdate(42, 100, 10, 20, 12, 3, 450)
	assert.Equal(t, TypeStatUpdate, ev.Type)
	assert.Equal(t, 42, ev.Payload["health"])
	assert.Equal(t, 12, ev.Payload["armor_class"])
	assert.Equal(t, 3, ev.Payload["level"])
	assert.Equal(t, 450, ev.Payload["experience"])

	cd := RespawnCountdown(3, "vale:green", "Respawning in 3...")
	assert.Equal(t, 3, cd.Payload["seconds_remaining"])
	assert.Equal(t, "vale:green", cd.Payload["respawn_location"])
	assert.Equal(t, "Respawning in 3...", cd.Text)

	lv := LevelUp(5, "You have reached level 5!")
	assert.Equal(t, 5, lv.Payload["level"])
}
