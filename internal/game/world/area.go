package world

import (
	"fmt"
	"math"
	"time"
)

// TimePhase is a named phase of an area's game day.
type TimePhase string

const (
	PhaseNight     TimePhase = "night"
	PhaseDawn      TimePhase = "dawn"
	PhaseMorning   TimePhase = "morning"
	PhaseAfternoon TimePhase = "afternoon"
	PhaseDusk      TimePhase = "dusk"
	PhaseEvening   TimePhase = "evening"
)

const minutesPerDay = 24 * 60

// Area groups rooms under a shared theme, clock, and respawn policy. Each
// area's clock advances independently: TimeScale converts real seconds into
// game minutes for this area.
type Area struct {
	ID              string
	Name            string
	Biome           string
	Climate         string
	AmbientLighting string

	// AreaMinutes is the game-clock minute of day in [0, 1440).
	AreaMinutes float64
	// TimeScale is game minutes per real second.
	TimeScale float64
	// TimePhases maps phase name → flavor text for look output.
	TimePhases map[TimePhase]string

	// EntryPoints are rooms nominated as spawn/respawn locations.
	EntryPoints []string
	// RoomIDs is the set of rooms belonging to this area.
	RoomIDs map[string]struct{}
	// DefaultRespawnTime applies to NPCs whose template does not override it.
	DefaultRespawnTime time.Duration
}

// NewArea creates an area with empty collections and a 1:1 noon clock.
func NewArea(id, name string) *Area {
	return &Area{
		ID:          id,
		Name:        name,
		AreaMinutes: 12 * 60,
		TimeScale:   1,
		TimePhases:  make(map[TimePhase]string),
		RoomIDs:     make(map[string]struct{}),
	}
}

// AdvanceClock moves the area clock forward by realSeconds of wall time.
//
// Precondition: realSeconds >= 0.
// Postcondition: AreaMinutes stays in [0, 1440).
func (a *Area) AdvanceClock(realSeconds float64) {
	a.AreaMinutes = math.Mod(a.AreaMinutes+realSeconds*a.TimeScale, minutesPerDay)
	if a.AreaMinutes < 0 {
		a.AreaMinutes += minutesPerDay
	}
}

// Phase returns the named phase for the current clock position.
func (a *Area) Phase() TimePhase {
	hour := int(a.AreaMinutes) / 60
	switch {
	case hour >= 5 && hour <= 6:
		return PhaseDawn
	case hour >= 7 && hour <= 11:
		return PhaseMorning
	case hour >= 12 && hour <= 16:
		return PhaseAfternoon
	case hour >= 17 && hour <= 18:
		return PhaseDusk
	case hour >= 19 && hour <= 21:
		return PhaseEvening
	default:
		return PhaseNight
	}
}

// PhaseText returns the configured flavor text for the current phase.
//
// Postcondition: Returns ("", false) when the phase has no configured text.
func (a *Area) PhaseText() (string, bool) {
	text, ok := a.TimePhases[a.Phase()]
	return text, ok && text != ""
}

// Validate checks area invariants in isolation.
func (a *Area) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("area: id must not be empty")
	}
	if a.Name == "" {
		return fmt.Errorf("area %q: name must not be empty", a.ID)
	}
	if a.TimeScale < 0 {
		return fmt.Errorf("area %q: time_scale must be >= 0", a.ID)
	}
	if a.DefaultRespawnTime < 0 {
		return fmt.Errorf("area %q: default_respawn_time must be >= 0", a.ID)
	}
	for _, rid := range a.EntryPoints {
		if _, ok := a.RoomIDs[rid]; !ok {
			return fmt.Errorf("area %q: entry point %q is not one of the area's rooms", a.ID, rid)
		}
	}
	return nil
}
