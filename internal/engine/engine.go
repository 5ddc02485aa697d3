// Package engine owns the authoritative game state and runs the single-writer
// loop. Every mutation of the world graph happens on the engine goroutine:
// player commands arrive through SubmitCommand, and scheduled callbacks are
// posted back through the same mailbox by the scheduler. Nothing else touches
// the world.
package engine

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/embervale/mud/internal/config"
	"github.com/embervale/mud/internal/dispatch"
	"github.com/embervale/mud/internal/game/behavior"
	"github.com/embervale/mud/internal/game/dice"
	"github.com/embervale/mud/internal/game/trigger"
	"github.com/embervale/mud/internal/game/world"
	"github.com/embervale/mud/internal/schedule"
	"github.com/embervale/mud/internal/scripting"
)

// DirtyKind classifies what changed for the persistence sidecar.
type DirtyKind string

const (
	DirtyPlayer DirtyKind = "player"
	DirtyItem   DirtyKind = "item"
)

// DirtyFunc receives change notifications. It is called on the engine
// goroutine and must not block.
type DirtyFunc func(kind DirtyKind, id string)

// Engine is the single-writer game core.
type Engine struct {
	world    *world.World
	cfg      config.Config
	logger   *zap.Logger
	dice     dice.Source
	now      func() time.Time
	sched    *schedule.Scheduler
	disp     *dispatch.Dispatcher
	triggers *trigger.Registry
	behaviors *behavior.Registry
	scripts  *scripting.Runner

	// chains caches resolved behavior chains per NPC template.
	chains map[string][]behavior.Behavior

	commands *commandSet

	spawns []SpawnConfig

	// startRoomID is where new and respawning players appear.
	startRoomID string

	onDirty DirtyFunc

	mailbox chan func()
	stopCh  chan struct{}
	wg      sync.WaitGroup
	// synchronous short-circuits the mailbox for tests: posted work runs
	// inline on the caller's goroutine.
	synchronous bool

	mu      sync.Mutex
	running bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithDice substitutes the randomness source.
func WithDice(src dice.Source) Option {
	return func(e *Engine) { e.dice = src }
}

// WithClock substitutes the wall clock for the engine and its scheduler.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSynchronous runs posted work inline instead of through the mailbox.
// For tests: commands and due callbacks execute deterministically on the
// calling goroutine, and the scheduler driver is never started.
func WithSynchronous() Option {
	return func(e *Engine) { e.synchronous = true }
}

// New assembles an Engine around an already-loaded world.
//
// Precondition: w and logger must be non-nil; cfg must validate.
// Postcondition: Returns a stopped Engine; Start launches the loop.
func New(w *world.World, cfg config.Config, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		world:     w,
		cfg:       cfg,
		logger:    logger,
		dice:      dice.NewRandSource(),
		now:       time.Now,
		triggers:  trigger.NewRegistry(),
		behaviors: behavior.NewRegistry(),
		chains:    make(map[string][]behavior.Behavior),
		mailbox:   make(chan func(), cfg.Engine.InboundQueueSize),
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sched = schedule.New(e.post, logger, schedule.WithNow(e.now))
	e.disp = dispatch.New(e.roomMembers, logger)
	e.scripts = scripting.NewRunner(cfg.Content.ScriptInstructionLimit, logger)
	e.commands = newCommandSet()
	return e
}

// World returns the engine's world. Outside the engine goroutine it may only
// be used before Start or after Stop.
func (e *Engine) World() *world.World { return e.world }

// Dispatcher returns the outbound event dispatcher for gateway wiring.
func (e *Engine) Dispatcher() *dispatch.Dispatcher { return e.disp }

// Scheduler returns the time event manager.
func (e *Engine) Scheduler() *schedule.Scheduler { return e.sched }

// Triggers returns the trigger registry for content loading.
func (e *Engine) Triggers() *trigger.Registry { return e.triggers }

// Behaviors returns the behavior registry.
func (e *Engine) Behaviors() *behavior.Registry { return e.behaviors }

// SetDirtyHook installs the persistence change listener.
func (e *Engine) SetDirtyHook(fn DirtyFunc) { e.onDirty = fn }

// SetStartRoom sets where new and respawning players appear.
//
// Precondition: roomID must exist in the world.
func (e *Engine) SetStartRoom(roomID string) error {
	if _, ok := e.world.Room(roomID); !ok {
		return fmt.Errorf("start room %q not found", roomID)
	}
	e.startRoomID = roomID
	return nil
}

// StartRoom returns the configured start room, falling back to the entry
// point of the lexically first area.
func (e *Engine) StartRoom() string {
	if e.startRoomID != "" {
		return e.startRoomID
	}
	var best string
	for id, area := range e.world.Areas {
		if len(area.EntryPoints) == 0 {
			continue
		}
		if best == "" || id < best {
			best = id
			e.startRoomID = area.EntryPoints[0]
		}
	}
	return e.startRoomID
}

// Start launches the engine loop and the scheduler driver.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = true
	e.mu.Unlock()

	if e.synchronous {
		return nil
	}
	e.wg.Add(1)
	go e.loop()
	return e.sched.Start()
}

// Stop drains the loop and stops the scheduler. Pending mailbox work is
// discarded; the persistence sidecar flushes separately on shutdown.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.mu.Unlock()

	if e.synchronous {
		return
	}
	e.sched.Stop()
	close(e.stopCh)
	e.wg.Wait()
}

func (e *Engine) loop() {
	defer e.wg.Done()
	for {
		select {
		case fn := <-e.mailbox:
			fn()
		case <-e.stopCh:
			return
		}
	}
}

// post hands fn to the engine goroutine. It is the scheduler's executor and
// the entry point for all cross-goroutine work. A full mailbox blocks the
// caller; the queue is sized to make that an overload signal, not a deadlock.
func (e *Engine) post(fn func()) {
	if e.synchronous {
		fn()
		return
	}
	select {
	case e.mailbox <- fn:
	case <-e.stopCh:
	}
}

// SubmitCommand queues one player command line for execution.
func (e *Engine) SubmitCommand(playerID, text string) {
	e.post(func() { e.handleCommand(playerID, text) })
}

// RunDue synchronously runs scheduled work due at or before now. Test-only
// companion to WithSynchronous and WithClock.
func (e *Engine) RunDue(now time.Time) int { return e.sched.RunDue(now) }

// roomMembers resolves connected player IDs in a room for the dispatcher.
func (e *Engine) roomMembers(roomID string) []string {
	players := e.world.PlayersInRoom(roomID)
	out := make([]string, 0, len(players))
	for _, p := range players {
		if p.IsConnected {
			out = append(out, p.ID)
		}
	}
	return out
}

func (e *Engine) markDirty(kind DirtyKind, id string) {
	if e.onDirty != nil {
		e.onDirty(kind, id)
	}
}

// send delivers a text message to one player.
func (e *Engine) send(playerID, text string) {
	e.disp.ToPlayer(playerID, dispatch.Message(text))
}

// sendRoom delivers a text message to everyone in a room except one player.
func (e *Engine) sendRoom(roomID, excludeID, text string) {
	e.disp.ToRoom(roomID, excludeID, dispatch.Message(text))
}

// sendStats pushes a vitals snapshot to a player.
func (e *Engine) sendStats(p *world.Player) {
	e.disp.ToPlayer(p.ID, dispatch.StatUpdate(
		p.CurrentHealth, p.MaxHealth, p.CurrentEnergy, p.MaxEnergy,
		p.EffectiveArmorClass(), p.Level, p.Experience))
}

// chainFor resolves and caches the behavior chain for an NPC template.
func (e *Engine) chainFor(templateID string) []behavior.Behavior {
	if chain, ok := e.chains[templateID]; ok {
		return chain
	}
	tmpl, ok := e.world.NpcTemplates[templateID]
	if !ok {
		return nil
	}
	chain, err := e.behaviors.Resolve(tmpl)
	if err != nil {
		e.logger.Error("behavior resolution failed",
			zap.String("npc_template", templateID), zap.Error(err))
		chain = nil
	}
	e.chains[templateID] = chain
	return chain
}
