package world

import (
	"strings"

	"github.com/embervale/mud/internal/game/combat"
	"github.com/embervale/mud/internal/game/effect"
)

// Stat names used by effect modifiers and effective-stat queries.
const (
	StatStrength     = "strength"
	StatDexterity    = "dexterity"
	StatIntelligence = "intelligence"
	StatVitality     = "vitality"
	StatArmorClass   = "armor_class"
)

// EntityCore holds the state shared by players and NPCs: identity, placement,
// health, base attributes, equipment, active effects, and combat state.
type EntityCore struct {
	// ID is globally unique across players, NPCs, and items.
	ID string
	// Name is the display name.
	Name string
	// Keywords are the targeting keywords in addition to the name.
	Keywords []string
	// RoomID is the room this entity occupies.
	RoomID string

	MaxHealth     int
	CurrentHealth int
	ArmorClass    int
	Strength      int
	Dexterity     int
	Intelligence  int
	Vitality      int

	// EquippedItems maps equipment slot → item template ID.
	EquippedItems map[string]string
	// ActiveEffects maps effect instance ID → applied effect.
	ActiveEffects map[string]*effect.Effect
	// Combat is the entity's attack state machine.
	Combat combat.State
}

// Entity is the unified supertype of Player and Npc.
type Entity interface {
	// Core returns the shared entity state.
	Core() *EntityCore
	// IsPlayer reports whether the entity is a player character.
	IsPlayer() bool
	// IsAlive reports whether the entity has health remaining.
	IsAlive() bool
}

// IsAlive reports whether the entity has health remaining.
func (c *EntityCore) IsAlive() bool {
	return c.CurrentHealth > 0
}

// MatchesKeyword reports whether word is a case-insensitive prefix of the
// entity's name, any word of its name, or any of its keywords.
//
// Precondition: word should be non-empty for a meaningful result.
func (c *EntityCore) MatchesKeyword(word string) bool {
	if word == "" {
		return false
	}
	lower := strings.ToLower(word)
	if strings.HasPrefix(strings.ToLower(c.Name), lower) {
		return true
	}
	for _, part := range strings.Fields(strings.ToLower(c.Name)) {
		if strings.HasPrefix(part, lower) {
			return true
		}
	}
	for _, kw := range c.Keywords {
		if strings.HasPrefix(strings.ToLower(kw), lower) {
			return true
		}
	}
	return false
}

// baseStat returns the unmodified value of the named stat.
func (c *EntityCore) baseStat(stat string) int {
	switch stat {
	case StatStrength:
		return c.Strength
	case StatDexterity:
		return c.Dexterity
	case StatIntelligence:
		return c.Intelligence
	case StatVitality:
		return c.Vitality
	case StatArmorClass:
		return c.ArmorClass
	default:
		return 0
	}
}

// EffectiveStat returns base + the sum of active effect modifiers for stat.
// Base stats are never mutated by effects.
func (c *EntityCore) EffectiveStat(stat string) int {
	return c.baseStat(stat) + effect.SumModifiers(c.ActiveEffects, stat)
}

// EffectiveStrength is shorthand for EffectiveStat(StatStrength).
func (c *EntityCore) EffectiveStrength() int { return c.EffectiveStat(StatStrength) }

// EffectiveDexterity is shorthand for EffectiveStat(StatDexterity).
func (c *EntityCore) EffectiveDexterity() int { return c.EffectiveStat(StatDexterity) }

// EffectiveArmorClass is shorthand for EffectiveStat(StatArmorClass).
func (c *EntityCore) EffectiveArmorClass() int { return c.EffectiveStat(StatArmorClass) }

// ApplyDamage reduces current health by amount, clamped to [0, MaxHealth].
//
// Precondition: amount >= 0.
// Postcondition: Returns true if the entity died from this damage.
func (c *EntityCore) ApplyDamage(amount int) (died bool) {
	wasAlive := c.IsAlive()
	c.CurrentHealth -= amount
	if c.CurrentHealth < 0 {
		c.CurrentHealth = 0
	}
	return wasAlive && !c.IsAlive()
}

// Heal raises current health by amount, clamped to MaxHealth.
//
// Precondition: amount >= 0.
func (c *EntityCore) Heal(amount int) {
	c.CurrentHealth += amount
	if c.CurrentHealth > c.MaxHealth {
		c.CurrentHealth = c.MaxHealth
	}
}

// AddEffect inserts e into the active set.
//
// Precondition: e must have a unique EffectID.
func (c *EntityCore) AddEffect(e *effect.Effect) {
	if c.ActiveEffects == nil {
		c.ActiveEffects = make(map[string]*effect.Effect)
	}
	c.ActiveEffects[e.EffectID] = e
}

// RemoveEffect deletes the effect with the given instance ID.
//
// Postcondition: Returns (effect, true) if it was present.
func (c *EntityCore) RemoveEffect(effectID string) (*effect.Effect, bool) {
	e, ok := c.ActiveEffects[effectID]
	if ok {
		delete(c.ActiveEffects, effectID)
	}
	return e, ok
}

// HealthDescription returns a visible health state string for look output.
//
// Postcondition: Returns a non-empty string.
func (c *EntityCore) HealthDescription() string {
	if c.CurrentHealth <= 0 {
		return "dead"
	}
	pct := float64(c.CurrentHealth) / float64(c.MaxHealth)
	switch {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.85:
		return "barely scratched"
	case pct >= 0.60:
		return "lightly wounded"
	case pct >= 0.40:
		return "moderately wounded"
	case pct >= 0.20:
		return "heavily wounded"
	default:
		return "critically wounded"
	}
}
