// Package schedule provides the priority-queue time event manager that drives
// every deferred or recurring game action. There is no global tick: combat
// swings, effect ticks, NPC behavior, respawns, and area clocks are all
// individually scheduled entries.
//
// The scheduler never runs callbacks itself; due entries are handed to an
// executor (the engine mailbox), which serializes them with command handling.
package schedule

import (
	"container/heap"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Callback is deferred game logic. Callbacks capture IDs, not pointers, and
// re-resolve their referents when they run.
type Callback func()

type entry struct {
	executeAt time.Time
	seq       uint64
	id        string
	cb        Callback
	recurring bool
	interval  time.Duration
	cancelled bool
}

// entryHeap is a stable min-heap: equal deadlines fire in insertion order.
type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].executeAt.Equal(h[j].executeAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].executeAt.Before(h[j].executeAt)
}
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)        { *h = append(*h, x.(*entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Executor runs a due callback. The engine supplies its mailbox post
// function; tests may supply a direct call.
type Executor func(func())

// Scheduler is the time event manager.
//
// Concurrency: all methods are safe for concurrent use. Schedule and Cancel
// are called from the engine goroutine (including from inside running
// callbacks); the driver goroutine only pops due entries.
type Scheduler struct {
	mu   sync.Mutex
	heap entryHeap
	live map[string]*entry
	seq  uint64

	exec   Executor
	now    func() time.Time
	logger *zap.Logger

	wake    chan struct{}
	stopCh  chan struct{}
	stopped sync.WaitGroup
	running bool
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithNow substitutes the wall clock, for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New creates a stopped Scheduler.
//
// Precondition: exec and logger must be non-nil.
// Postcondition: Returns a Scheduler ready for Schedule and Start.
func New(exec Executor, logger *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		live:   make(map[string]*entry),
		exec:   exec,
		now:    time.Now,
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule enqueues cb to run after delay and returns its event ID.
//
// Precondition: cb must be non-nil; delay may be zero for "as soon as possible".
// Postcondition: Returns a unique event ID.
func (s *Scheduler) Schedule(delay time.Duration, cb Callback) string {
	return s.add(uuid.New().String(), delay, 0, false, cb)
}

// ScheduleID enqueues cb under a caller-chosen event ID. If the ID collides
// with a live entry, the prior entry is cancelled first.
//
// Precondition: cb must be non-nil.
// Postcondition: Returns id, or a fresh UUID when id is empty.
func (s *Scheduler) ScheduleID(id string, delay time.Duration, cb Callback) string {
	if id == "" {
		id = uuid.New().String()
	}
	return s.add(id, delay, 0, false, cb)
}

// ScheduleRecurring enqueues cb to first run after delay and then repeat
// every interval.
//
// Precondition: cb must be non-nil; interval > 0.
// Postcondition: Returns id, or a fresh UUID when id is empty.
func (s *Scheduler) ScheduleRecurring(id string, delay, interval time.Duration, cb Callback) string {
	if id == "" {
		id = uuid.New().String()
	}
	return s.add(id, delay, interval, true, cb)
}

func (s *Scheduler) add(id string, delay, interval time.Duration, recurring bool, cb Callback) string {
	s.mu.Lock()
	if prior, ok := s.live[id]; ok {
		prior.cancelled = true
	}
	s.seq++
	e := &entry{
		executeAt: s.now().Add(delay),
		seq:       s.seq,
		id:        id,
		cb:        cb,
		recurring: recurring,
		interval:  interval,
	}
	s.live[id] = e
	heap.Push(&s.heap, e)
	s.mu.Unlock()

	s.kick()
	return id
}

// Cancel marks the event cancelled. Removal from the heap is lazy on pop. A
// cancelled callback that has already begun executing is not interrupted,
// but a cancelled recurring event will not re-enqueue.
//
// Postcondition: Returns true iff a live entry was cancelled.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live[id]
	if !ok || e.cancelled {
		return false
	}
	e.cancelled = true
	delete(s.live, id)
	return true
}

// Pending reports whether id identifies a live (not cancelled) event.
func (s *Scheduler) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live[id]
	return ok && !e.cancelled
}

// Len returns the number of heap entries, including lazily-cancelled ones.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.heap)
}

// NextAt returns the deadline of the earliest live entry.
//
// Postcondition: Returns (zero, false) when nothing is scheduled.
func (s *Scheduler) NextAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.heap) > 0 {
		if s.heap[0].cancelled {
			heap.Pop(&s.heap)
			continue
		}
		return s.heap[0].executeAt, true
	}
	return time.Time{}, false
}

// popDue removes and returns the earliest live entry due at or before now.
// Cancelled entries encountered on top are discarded.
func (s *Scheduler) popDue(now time.Time) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.heap) > 0 {
		top := s.heap[0]
		if top.cancelled {
			heap.Pop(&s.heap)
			continue
		}
		if top.executeAt.After(now) {
			return nil
		}
		heap.Pop(&s.heap)
		if !top.recurring {
			delete(s.live, top.id)
		}
		return top
	}
	return nil
}

// dispatch hands e to the executor. Recurring entries re-enqueue only after
// the callback returns, so work scheduled inside a callback is never observed
// before the callback completes. Callback panics are logged and swallowed.
func (s *Scheduler) dispatch(e *entry) {
	s.exec(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("time event callback panicked",
					zap.String("event_id", e.id),
					zap.Any("panic", r),
				)
			}
			if e.recurring {
				s.requeue(e)
			}
		}()
		e.cb()
	})
}

func (s *Scheduler) requeue(e *entry) {
	s.mu.Lock()
	if e.cancelled || s.live[e.id] != e {
		// Cancelled mid-flight, or replaced by a colliding ScheduleID.
		if s.live[e.id] == e {
			delete(s.live, e.id)
		}
		s.mu.Unlock()
		return
	}
	s.seq++
	e.seq = s.seq
	e.executeAt = s.now().Add(e.interval)
	heap.Push(&s.heap, e)
	s.mu.Unlock()
	s.kick()
}

// RunDue synchronously dispatches every entry due at or before now, in
// deadline order. Intended for tests and for callers embedding the scheduler
// without the driver goroutine.
//
// Postcondition: Returns the number of callbacks dispatched.
func (s *Scheduler) RunDue(now time.Time) int {
	count := 0
	for {
		e := s.popDue(now)
		if e == nil {
			return count
		}
		s.dispatch(e)
		count++
	}
}

func (s *Scheduler) kick() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Start launches the driver goroutine.
//
// Postcondition: Due entries are dispatched to the executor until Stop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.stopped.Add(1)
	go s.drive()
	return nil
}

// Stop terminates the driver goroutine and waits for it to exit. Entries
// remain queued; a subsequent Start resumes them.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()
	s.stopped.Wait()
}

func (s *Scheduler) drive() {
	defer s.stopped.Done()
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		now := s.now()
		if e := s.popDue(now); e != nil {
			s.dispatch(e)
			continue
		}

		var wait <-chan time.Time
		if next, ok := s.NextAt(); ok {
			timer.Reset(next.Sub(now))
			wait = timer.C
		}

		select {
		case <-s.stopCh:
			if wait != nil && !timer.Stop() {
				<-timer.C
			}
			return
		case <-s.wake:
			if wait != nil && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-wait:
		}
	}
}
