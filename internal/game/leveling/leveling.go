// Package leveling provides the experience thresholds and per-level stat
// gains applied when a player levels up.
package leveling

// MaxLevel is the highest attainable player level.
const MaxLevel = 20

// StatGains is the per-level increase applied on advancement. Current pools
// are refilled to the new maxima when the gain is applied.
type StatGains struct {
	MaxHealth    int
	MaxEnergy    int
	Strength     int
	Dexterity    int
	Intelligence int
	Vitality     int
}

// xpThresholds[n] is the cumulative experience required to reach level n.
// Index 0 and 1 are zero: characters start at level 1.
var xpThresholds = [MaxLevel + 1]int{
	0,      // unused
	0,      // level 1
	300,    // level 2
	900,    // level 3
	2700,   // level 4
	6500,   // level 5
	14000,  // level 6
	23000,  // level 7
	34000,  // level 8
	48000,  // level 9
	64000,  // level 10
	85000,  // level 11
	100000, // level 12
	120000, // level 13
	140000, // level 14
	165000, // level 15
	195000, // level 16
	225000, // level 17
	265000, // level 18
	305000, // level 19
	355000, // level 20
}

// levelUpStatGains[n] is the gain applied upon reaching level n.
var levelUpStatGains = [MaxLevel + 1]StatGains{}

func init() {
	for lvl := 2; lvl <= MaxLevel; lvl++ {
		g := StatGains{MaxHealth: 8, MaxEnergy: 5}
		switch {
		case lvl%4 == 0:
			// Every fourth level grants a full attribute bump.
			g.Strength = 1
			g.Dexterity = 1
			g.Intelligence = 1
			g.Vitality = 1
		case lvl%2 == 0:
			g.Vitality = 1
		}
		levelUpStatGains[lvl] = g
	}
}

// ThresholdFor returns the cumulative experience required to reach level.
//
// Postcondition: Returns 0 for level <= 1; for level > MaxLevel the result is
// unreachable (one past the final threshold).
func ThresholdFor(level int) int {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		return xpThresholds[MaxLevel] + 1
	}
	return xpThresholds[level]
}

// GainsFor returns the stat gains applied upon reaching level.
//
// Postcondition: Returns the zero value for levels outside [2, MaxLevel].
func GainsFor(level int) StatGains {
	if level < 2 || level > MaxLevel {
		return StatGains{}
	}
	return levelUpStatGains[level]
}

// Advance computes the levels crossed given a current level and total
// experience. The returned slice holds the gains for each new level in
// ascending order; empty when no threshold was crossed.
//
// Postcondition: newLevel >= level; len(gains) == newLevel - level.
func Advance(level, experience int) (newLevel int, gains []StatGains) {
	newLevel = level
	for newLevel < MaxLevel && experience >= ThresholdFor(newLevel+1) {
		newLevel++
		gains = append(gains, GainsFor(newLevel))
	}
	return newLevel, gains
}
