package world

import "time"

// InventoryMeta tracks inventory capacity bookkeeping persisted per player.
type InventoryMeta struct {
	MaxWeight     float64
	MaxSlots      int
	CurrentWeight float64
	CurrentSlots  int
}

// Player is a connected (or recently disconnected) player character.
type Player struct {
	EntityCore

	// IsConnected reports whether a live connection is attached.
	IsConnected bool
	// CharacterClass is the player's class ID.
	CharacterClass string
	// Level is the current character level.
	Level int
	// Experience is cumulative and never decreases.
	Experience int

	MaxEnergy     int
	CurrentEnergy int

	// InventoryItems is the set of item IDs carried (not equipped slots).
	InventoryItems map[string]struct{}
	// InventoryMeta tracks capacity accounting for persistence.
	InventoryMeta InventoryMeta

	// OnMoveEffect is an effect template applied on every room change; empty = none.
	OnMoveEffect string

	// QuestProgress maps quest ID → current stage.
	QuestProgress map[string]int
	// CompletedQuests is the set of finished quest IDs.
	CompletedQuests map[string]struct{}
	// PlayerFlags holds named boolean flags set by triggers and quests.
	PlayerFlags map[string]bool

	// DeathTime is set while the player is dead awaiting respawn.
	DeathTime *time.Time
	// RespawnRoomID is the destination chosen at death time.
	RespawnRoomID string
	// RespawnEventID is the scheduled respawn event, cancelled on disconnect.
	RespawnEventID string
	// CountdownEventIDs are the scheduled respawn_countdown events.
	CountdownEventIDs []string

	// LastCommands holds recent non-"!" inputs, newest last, for "!" repeat.
	LastCommands []string

	// InDialogue marks an active NPC dialogue consuming raw input.
	InDialogue bool
	// DialogueNpcID is the NPC the player is talking to.
	DialogueNpcID string

	// IsAdmin grants access to the admin command set. Supplied by the
	// account layer at login.
	IsAdmin bool
}

// NewPlayer creates a player with sane empty collections.
//
// Precondition: id and name must be non-empty.
func NewPlayer(id, name string) *Player {
	return &Player{
		EntityCore: EntityCore{
			ID:            id,
			Name:          name,
			EquippedItems: make(map[string]string),
		},
		Level:           1,
		InventoryItems:  make(map[string]struct{}),
		QuestProgress:   make(map[string]int),
		CompletedQuests: make(map[string]struct{}),
		PlayerFlags:     make(map[string]bool),
	}
}

// Core returns the shared entity state.
func (p *Player) Core() *EntityCore { return &p.EntityCore }

// IsPlayer always reports true.
func (p *Player) IsPlayer() bool { return true }

// RecordCommand appends text to the recent-command history unless it is the
// repeat token itself. History is capped at 20 entries.
func (p *Player) RecordCommand(text string) {
	if text == "" || text == "!" {
		return
	}
	p.LastCommands = append(p.LastCommands, text)
	if len(p.LastCommands) > 20 {
		p.LastCommands = p.LastCommands[len(p.LastCommands)-20:]
	}
}

// LastCommand returns the most recent recorded command.
//
// Postcondition: Returns ("", false) when the history is empty.
func (p *Player) LastCommand() (string, bool) {
	if len(p.LastCommands) == 0 {
		return "", false
	}
	return p.LastCommands[len(p.LastCommands)-1], true
}
