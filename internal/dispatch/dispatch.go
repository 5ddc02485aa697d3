// Package dispatch routes outbound game events to connected sessions. The
// engine publishes events by player, by room, or to everyone; the gateway
// registers one listener per connection and serializes events onto the wire.
package dispatch

import (
	"sync"

	"go.uber.org/zap"
)

// Standard event types. The gateway forwards the envelope verbatim; clients
// switch on Type.
const (
	TypeMessage          = "message"
	TypeRoom             = "room"
	TypeStatUpdate       = "stat_update"
	TypeCombat           = "combat"
	TypeEffect           = "effect"
	TypeRespawnCountdown = "respawn_countdown"
	TypeRespawn          = "respawn"
	TypeDeath            = "death"
	TypeLevelUp          = "level_up"
	TypeQuit             = "quit"
	TypeError            = "error"
)

// Event is the outbound envelope. Routing scope is not part of the envelope;
// the publish method chosen decides who receives it.
type Event struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Message builds a plain text event.
func Message(text string) Event {
	return Event{Type: TypeMessage, Text: text}
}

// ErrorMessage builds an error-typed text event.
func ErrorMessage(text string) Event {
	return Event{Type: TypeError, Text: text}
}

// StatUpdate builds a stats snapshot event: vitals plus armor class, level,
// and experience.
func StatUpdate(health, maxHealth, energy, maxEnergy, armorClass, level, experience int) Event {
	return Event{Type: TypeStatUpdate, Payload: map[string]any{
		"health":      health,
		"max_health":  maxHealth,
		"energy":      energy,
		"max_energy":  maxEnergy,
		"armor_class": armorClass,
		"level":       level,
		"experience":  experience,
	}}
}

// RespawnCountdown builds one tick of the respawn countdown, carrying the
// room the player will wake up in.
func RespawnCountdown(secondsRemaining int, respawnLocation, text string) Event {
	return Event{Type: TypeRespawnCountdown, Text: text, Payload: map[string]any{
		"seconds_remaining": secondsRemaining,
		"respawn_location":  respawnLocation,
	}}
}

// LevelUp announces a level gain.
func LevelUp(level int, text string) Event {
	return Event{Type: TypeLevelUp, Text: text, Payload: map[string]any{
		"level": level,
	}}
}

// RoomMembersFunc resolves the player IDs currently in a room. The engine
// supplies it at construction; it is invoked on the engine goroutine only.
type RoomMembersFunc func(roomID string) []string

// Dispatcher fans events out to per-player listener channels.
//
// Listener channels are buffered. A full buffer drops the event for that
// player with a log line rather than blocking the engine.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string]chan Event

	members RoomMembersFunc
	logger  *zap.Logger
}

// New creates a Dispatcher.
//
// Precondition: members and logger must be non-nil.
func New(members RoomMembersFunc, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		listeners: make(map[string]chan Event),
		members:   members,
		logger:    logger,
	}
}

// Register creates the listener channel for a player, replacing any prior
// registration for the same ID.
//
// Precondition: buffer > 0.
// Postcondition: Returns the channel events for playerID will arrive on. The
// prior channel, if any, is closed.
func (d *Dispatcher) Register(playerID string, buffer int) <-chan Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	if prior, ok := d.listeners[playerID]; ok {
		close(prior)
	}
	ch := make(chan Event, buffer)
	d.listeners[playerID] = ch
	return ch
}

// Unregister removes and closes a player's listener channel.
func (d *Dispatcher) Unregister(playerID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ch, ok := d.listeners[playerID]; ok {
		close(ch)
		delete(d.listeners, playerID)
	}
}

// Registered reports whether playerID has a live listener.
func (d *Dispatcher) Registered(playerID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.listeners[playerID]
	return ok
}

// ToPlayer delivers ev to a single player. Unregistered players are skipped
// silently; a disconnected player is not an error.
func (d *Dispatcher) ToPlayer(playerID string, ev Event) {
	d.mu.RLock()
	ch, ok := d.listeners[playerID]
	d.mu.RUnlock()
	if !ok {
		return
	}
	d.deliver(playerID, ch, ev)
}

// ToRoom delivers ev to every registered player in the room, except the
// excluded ID (pass "" to exclude nobody).
func (d *Dispatcher) ToRoom(roomID, excludePlayerID string, ev Event) {
	for _, id := range d.members(roomID) {
		if id == excludePlayerID {
			continue
		}
		d.ToPlayer(id, ev)
	}
}

// ToAll delivers ev to every registered player.
func (d *Dispatcher) ToAll(ev Event) {
	d.mu.RLock()
	ids := make([]string, 0, len(d.listeners))
	for id := range d.listeners {
		ids = append(ids, id)
	}
	d.mu.RUnlock()
	for _, id := range ids {
		d.ToPlayer(id, ev)
	}
}

func (d *Dispatcher) deliver(playerID string, ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
		d.logger.Warn("event dropped, listener buffer full",
			zap.String("player_id", playerID),
			zap.String("event_type", ev.Type),
		)
	}
}
