// Package effect provides timed buffs, debuffs, and periodic health effects.
// Effects never mutate an entity's base stats; readers derive effective stats
// by summing modifiers over the active set.
package effect

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies an effect.
type Type string

const (
	// Buff raises stats for its duration.
	Buff Type = "buff"
	// Debuff lowers stats for its duration.
	Debuff Type = "debuff"
	// DoT deals periodic damage.
	DoT Type = "dot"
	// HoT heals periodically.
	HoT Type = "hot"
)

// Valid reports whether t is a known effect type.
func (t Type) Valid() bool {
	switch t {
	case Buff, Debuff, DoT, HoT:
		return true
	}
	return false
}

// Template is the reusable definition an Effect instance is minted from.
type Template struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Type          Type           `yaml:"type"`
	StatModifiers map[string]int `yaml:"stat_modifiers"`
	// DurationSeconds is how long the effect lasts; 0 = until removed.
	DurationSeconds float64 `yaml:"duration_seconds"`
	// IntervalSeconds is the period between health ticks; 0 = no ticks.
	IntervalSeconds float64 `yaml:"interval_seconds"`
	// Magnitude is the health delta per tick. Positive harms, negative heals.
	Magnitude int `yaml:"magnitude"`
}

// Effect is one applied instance on an entity.
type Effect struct {
	// EffectID uniquely identifies this applied instance.
	EffectID string
	// Name is the display name shown in effect listings and messages.
	Name string
	// Type classifies the effect for message phrasing.
	Type Type
	// StatModifiers maps stat name → delta summed into effective stats.
	StatModifiers map[string]int
	// Duration is the total lifetime; 0 = indefinite.
	Duration time.Duration
	// AppliedAt is when the effect was applied.
	AppliedAt time.Time
	// Interval is the period between health ticks; 0 = no ticks.
	Interval time.Duration
	// Magnitude is the health delta per tick. Positive harms, negative heals.
	Magnitude int
	// ExpirationEventID is the scheduled expiration event, if Duration > 0.
	ExpirationEventID string
	// PeriodicEventID is the scheduled tick event, if periodic.
	PeriodicEventID string
}

// New mints a fresh Effect instance from tmpl applied at now.
//
// Precondition: tmpl must not be nil; now must not be zero.
// Postcondition: Returns an Effect with a unique EffectID and AppliedAt == now.
func New(tmpl *Template, now time.Time) *Effect {
	mods := make(map[string]int, len(tmpl.StatModifiers))
	for k, v := range tmpl.StatModifiers {
		mods[k] = v
	}
	return &Effect{
		EffectID:      uuid.New().String(),
		Name:          tmpl.Name,
		Type:          tmpl.Type,
		StatModifiers: mods,
		Duration:      time.Duration(tmpl.DurationSeconds * float64(time.Second)),
		AppliedAt:     now,
		Interval:      time.Duration(tmpl.IntervalSeconds * float64(time.Second)),
		Magnitude:     tmpl.Magnitude,
	}
}

// Periodic reports whether this effect produces health ticks.
func (e *Effect) Periodic() bool {
	return e.Magnitude != 0 && e.Interval > 0
}

// HasStatModifiers reports whether the effect carries any non-zero modifier.
func (e *Effect) HasStatModifiers() bool {
	for _, v := range e.StatModifiers {
		if v != 0 {
			return true
		}
	}
	return false
}

// RemainingDuration derives the time left from the wall clock.
//
// Postcondition: Returns 0 for expired or indefinite effects, never negative.
func (e *Effect) RemainingDuration(now time.Time) time.Duration {
	if e.Duration <= 0 {
		return 0
	}
	left := e.Duration - now.Sub(e.AppliedAt)
	if left < 0 {
		return 0
	}
	return left
}

// SumModifiers sums the named stat's modifiers across active effects.
//
// Postcondition: Returns 0 for a nil or empty set.
func SumModifiers(active map[string]*Effect, stat string) int {
	total := 0
	for _, e := range active {
		total += e.StatModifiers[stat]
	}
	return total
}
