package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"
)

// testScheduler returns a scheduler with a direct-call executor and a
// caller-controlled clock.
func testScheduler() (*Scheduler, *time.Time) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New(func(f func()) { f() }, zap.NewNop(), WithNow(func() time.Time { return now }))
	return s, &now
}

func TestRunDue_FiresInDeadlineOrder(t *testing.T) {
	s, now := testScheduler()
	var fired []string

	s.ScheduleID("b", 2*time.Second, func() { fired = append(fired, "b") })
	s.ScheduleID("a", 1*time.Second, func() { fired = append(fired, "a") })
	s.ScheduleID("c", 3*time.Second, func() { fired = append(fired, "c") })

	assert.Equal(t, 0, s.RunDue(*now))
	assert.Equal(t, 3, s.RunDue(now.Add(3*time.Second)))
	assert.Equal(t, []string{"a", "b", "c"}, fired)
}

func TestRunDue_StableForEqualDeadlines(t *testing.T) {
	s, now := testScheduler()
	var fired []int

	for i := 0; i < 10; i++ {
		i := i
		s.Schedule(time.Second, func() { fired = append(fired, i) })
	}
	s.RunDue(now.Add(time.Second))

	require.Len(t, fired, 10)
	for i, got := range fired {
		assert.Equal(t, i, got, "insertion order must be preserved")
	}
}

func TestCancel(t *testing.T) {
	s, now := testScheduler()
	ran := false
	id := s.Schedule(time.Second, func() { ran = true })

	assert.True(t, s.Pending(id))
	assert.True(t, s.Cancel(id))
	assert.False(t, s.Pending(id))
	assert.False(t, s.Cancel(id), "second cancel is a no-op")

	s.RunDue(now.Add(time.Minute))
	assert.False(t, ran)
}

func TestScheduleID_CollisionCancelsPrior(t *testing.T) {
	s, now := testScheduler()
	var fired []string

	s.ScheduleID("respawn-p1", time.Second, func() { fired = append(fired, "old") })
	s.ScheduleID("respawn-p1", 2*time.Second, func() { fired = append(fired, "new") })

	s.RunDue(now.Add(time.Minute))
	assert.Equal(t, []string{"new"}, fired)
}

func TestRecurring_ReenqueuesAfterCallback(t *testing.T) {
	s, now := testScheduler()
	ticks := 0

	s.ScheduleRecurring("dot", 3*time.Second, 3*time.Second, func() { ticks++ })

	// The follow-up is anchored at the clock value seen during requeue, so
	// the clock advances before each pass.
	*now = now.Add(3 * time.Second)
	assert.Equal(t, 1, s.RunDue(*now))
	assert.Equal(t, 0, s.RunDue(*now), "next tick is not due yet")
	*now = now.Add(3 * time.Second)
	assert.Equal(t, 1, s.RunDue(*now))
	assert.Equal(t, 2, ticks)
}

func TestRecurring_CancelFromInsideCallback(t *testing.T) {
	s, now := testScheduler()
	ticks := 0

	s.ScheduleRecurring("poison", time.Second, time.Second, func() {
		ticks++
		if ticks == 2 {
			s.Cancel("poison")
		}
	})

	for i := 0; i < 5; i++ {
		*now = now.Add(time.Second)
		s.RunDue(*now)
	}
	assert.Equal(t, 2, ticks)
}

func TestCallbackSchedulingIsNotObservedEarly(t *testing.T) {
	s, now := testScheduler()
	var fired []string

	s.Schedule(time.Second, func() {
		fired = append(fired, "outer")
		s.Schedule(0, func() { fired = append(fired, "inner") })
	})

	// One pass dispatches both: the inner event is due immediately, but only
	// after the outer callback has returned.
	n := s.RunDue(now.Add(time.Second))
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"outer", "inner"}, fired)
}

func TestCallbackPanicIsContained(t *testing.T) {
	s, now := testScheduler()
	ran := false

	s.Schedule(time.Second, func() { panic("boom") })
	s.Schedule(2*time.Second, func() { ran = true })

	assert.NotPanics(t, func() { s.RunDue(now.Add(time.Minute)) })
	assert.True(t, ran)
}

func TestNextAt_SkipsCancelled(t *testing.T) {
	s, now := testScheduler()

	first := s.Schedule(time.Second, func() {})
	s.Schedule(5*time.Second, func() {})
	s.Cancel(first)

	next, ok := s.NextAt()
	require.True(t, ok)
	assert.Equal(t, now.Add(5*time.Second), next)
}

func TestDriver_DispatchesDueEntries(t *testing.T) {
	done := make(chan struct{})
	s := New(func(f func()) { f() }, zap.NewNop())
	require.NoError(t, s.Start())
	defer s.Stop()

	s.Schedule(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled callback never fired")
	}
}

func TestPropertyHeapOrdering(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s, now := testScheduler()
		delays := rapid.SliceOfN(rapid.IntRange(0, 60), 1, 30).Draw(t, "delays")

		type rec struct {
			at  time.Time
			seq int
		}
		var fired []rec
		for i, d := range delays {
			at := now.Add(time.Duration(d) * time.Second)
			i := i
			s.Schedule(time.Duration(d)*time.Second, func() {
				fired = append(fired, rec{at: at, seq: i})
			})
		}
		s.RunDue(now.Add(2 * time.Minute))

		if len(fired) != len(delays) {
			t.Fatalf("fired %d of %d", len(fired), len(delays))
		}
		for i := 1; i < len(fired); i++ {
			prev, cur := fired[i-1], fired[i]
			if cur.at.Before(prev.at) {
				t.Fatalf("deadline order violated at %d", i)
			}
			if cur.at.Equal(prev.at) && cur.seq < prev.seq {
				t.Fatalf("insertion order violated at %d", i)
			}
		}
	})
}
