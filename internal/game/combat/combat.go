// Package combat provides the attack state machine model and damage math.
// The engine drives phase transitions through scheduled callbacks; this
// package holds the pure state and arithmetic so it stays testable without a
// running loop.
package combat

import (
	"time"
)

// Phase is the current step of an entity's attack cycle.
type Phase string

const (
	// Idle means the entity is not attacking.
	Idle Phase = "idle"
	// Windup is the wind-up before a swing lands.
	Windup Phase = "windup"
	// Swing is the moment damage is being delivered.
	Swing Phase = "swing"
	// Recovery is the pause between auto-attack swings.
	Recovery Phase = "recovery"
)

// WeaponStats describes the combat profile of a weapon or unarmed strikes.
type WeaponStats struct {
	Name       string        `yaml:"name"`
	DamageMin  int           `yaml:"damage_min"`
	DamageMax  int           `yaml:"damage_max"`
	WindupTime time.Duration `yaml:"windup_time"`
	SwingTime  time.Duration `yaml:"swing_time"`
}

// Unarmed returns the default weapon used when nothing is equipped.
func Unarmed() WeaponStats {
	return WeaponStats{
		Name:       "fists",
		DamageMin:  1,
		DamageMax:  2,
		WindupTime: 800 * time.Millisecond,
		SwingTime:  400 * time.Millisecond,
	}
}

// State is the per-entity combat state machine.
//
// Transitions: idle → windup → swing → recovery → windup (auto-attack loop),
// or any phase → idle on break.
type State struct {
	Phase         Phase
	TargetID      string
	CurrentWeapon WeaponStats
	PhaseStart    time.Time
	PhaseDuration time.Duration
	// SwingEventID is the pending scheduled windup/swing callback, cancelled
	// on stop or flee.
	SwingEventID string
	AutoAttack   bool
	// ThreatTable accumulates damage-based threat per attacker, used by NPCs
	// to pick retaliation targets.
	ThreatTable map[string]float64
}

// NewState returns an idle combat state.
func NewState() State {
	return State{Phase: Idle}
}

// InCombat reports whether the entity is mid-cycle.
func (s *State) InCombat() bool {
	return s.Phase != Idle && s.Phase != ""
}

// Enter transitions into phase at now for the given duration.
func (s *State) Enter(phase Phase, now time.Time, duration time.Duration) {
	s.Phase = phase
	s.PhaseStart = now
	s.PhaseDuration = duration
}

// Clear breaks combat entirely: phase idle, no target, no pending swing.
// The threat table is preserved so NPCs remember recent attackers.
//
// Postcondition: InCombat() is false; SwingEventID is empty.
func (s *State) Clear() {
	s.Phase = Idle
	s.TargetID = ""
	s.PhaseStart = time.Time{}
	s.PhaseDuration = 0
	s.SwingEventID = ""
	s.AutoAttack = false
}

// AddThreat accrues threat from an attacker.
//
// Precondition: attackerID must be non-empty.
func (s *State) AddThreat(attackerID string, amount float64) {
	if s.ThreatTable == nil {
		s.ThreatTable = make(map[string]float64)
	}
	s.ThreatTable[attackerID] += amount
}

// TopThreat returns the attacker with the highest accrued threat.
//
// Postcondition: Returns ("", false) when the table is empty.
func (s *State) TopThreat() (string, bool) {
	var best string
	var bestScore float64
	for id, score := range s.ThreatTable {
		if best == "" || score > bestScore {
			best = id
			bestScore = score
		}
	}
	return best, best != ""
}
