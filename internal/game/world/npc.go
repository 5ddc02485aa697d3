package world

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/embervale/mud/internal/game/combat"
)

// DropEntry is one independently-rolled line of an NPC drop table.
type DropEntry struct {
	// TemplateID is the item template to create.
	TemplateID string
	// Chance is the drop probability in (0, 1].
	Chance float64
	// MinQty and MaxQty bound the dropped quantity; equal for a fixed count.
	MinQty int
	MaxQty int
}

// Validate checks drop table invariants.
//
// Postcondition: Returns nil iff TemplateID is set, Chance in (0, 1], and
// 1 <= MinQty <= MaxQty.
func (d DropEntry) Validate() error {
	if d.TemplateID == "" {
		return fmt.Errorf("drop entry: template id must not be empty")
	}
	if d.Chance <= 0 || d.Chance > 1.0 {
		return fmt.Errorf("drop entry %q: chance must be in (0, 1], got %f", d.TemplateID, d.Chance)
	}
	if d.MinQty < 1 {
		return fmt.Errorf("drop entry %q: min_qty must be >= 1, got %d", d.TemplateID, d.MinQty)
	}
	if d.MinQty > d.MaxQty {
		return fmt.Errorf("drop entry %q: min_qty (%d) must be <= max_qty (%d)", d.TemplateID, d.MinQty, d.MaxQty)
	}
	return nil
}

// NpcTemplate is a reusable NPC archetype. Loaders produce validated
// templates; the engine mints instances from them at spawn time.
type NpcTemplate struct {
	ID          string
	Name        string
	Keywords    []string
	Description string

	MaxHealth    int
	ArmorClass   int
	Strength     int
	Dexterity    int
	Intelligence int
	Vitality     int

	// Weapon is the NPC's attack profile; nil = unarmed.
	Weapon *combat.WeaponStats
	// Behaviors is the ordered list of behavior tags resolved at load.
	Behaviors []string
	// BehaviorConfig overrides behavior defaults (idle/wander intervals,
	// aggro radius, wandering enabled, and so on).
	BehaviorConfig map[string]any
	// ExperienceReward is granted to a player killer.
	ExperienceReward int
	// RespawnTime is the delay before respawn; 0 = use the area default.
	RespawnTime time.Duration
	// Faction groups NPCs for call-for-help; empty = template-mates only.
	Faction string
	// DropTable entries are rolled independently on death.
	DropTable []DropEntry
	// IdleMessages are flavor lines emitted by the idle behavior.
	IdleMessages []string
}

// Validate checks template invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty, MaxHealth >= 1,
// and every drop entry validates.
func (t *NpcTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.MaxHealth < 1 {
		return fmt.Errorf("npc template %q: max_health must be >= 1", t.ID)
	}
	for _, d := range t.DropTable {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("npc template %q: %w", t.ID, err)
		}
	}
	return nil
}

// Npc is a live NPC instance occupying a room.
type Npc struct {
	EntityCore

	// TemplateID is the source template.
	TemplateID string
	// SpawnRoomID is where the instance respawns.
	SpawnRoomID string
	// RespawnOverride, when non-nil, shadows the template and area defaults.
	RespawnOverride *time.Duration
	// LastKilledAt records the most recent death.
	LastKilledAt *time.Time
	// IdleEventID is the scheduled idle behavior tick.
	IdleEventID string
	// WanderEventID is the scheduled wander behavior tick.
	WanderEventID string
	// TargetID is the entity this NPC is fighting or stalking.
	TargetID string
	// InstanceData holds per-instance fields shadowing the template.
	InstanceData map[string]any
}

// NewNpc mints a live instance from tmpl placed in roomID.
//
// Precondition: tmpl must be non-nil and validated; roomID must be non-empty.
// Postcondition: CurrentHealth == tmpl.MaxHealth; ID is globally unique.
func NewNpc(tmpl *NpcTemplate, roomID string) *Npc {
	return &Npc{
		EntityCore: EntityCore{
			ID:            fmt.Sprintf("npc-%s-%s", tmpl.ID, uuid.New().String()[:8]),
			Name:          tmpl.Name,
			Keywords:      append([]string(nil), tmpl.Keywords...),
			RoomID:        roomID,
			MaxHealth:     tmpl.MaxHealth,
			CurrentHealth: tmpl.MaxHealth,
			ArmorClass:    tmpl.ArmorClass,
			Strength:      tmpl.Strength,
			Dexterity:     tmpl.Dexterity,
			Intelligence:  tmpl.Intelligence,
			Vitality:      tmpl.Vitality,
			EquippedItems: make(map[string]string),
		},
		TemplateID:   tmpl.ID,
		SpawnRoomID:  roomID,
		InstanceData: make(map[string]any),
	}
}

// Core returns the shared entity state.
func (n *Npc) Core() *EntityCore { return &n.EntityCore }

// IsPlayer always reports false.
func (n *Npc) IsPlayer() bool { return false }

// Weapon returns the NPC's attack profile from tmpl, or unarmed defaults.
func (n *Npc) Weapon(tmpl *NpcTemplate) combat.WeaponStats {
	if tmpl != nil && tmpl.Weapon != nil {
		return *tmpl.Weapon
	}
	return combat.Unarmed()
}
