// Package world provides the in-memory world graph: areas, rooms, entities,
// items, and templates. The graph stores IDs, never pointers, in all
// collections; scheduled callbacks re-resolve IDs through the World and no-op
// when the referent is gone. The graph is mutated only on the engine
// goroutine, so no locks guard it.
package world

// Direction is a compass direction or vertical movement.
type Direction string

// The six standard directions.
const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
	Up    Direction = "up"
	Down  Direction = "down"
)

// StandardDirections lists all supported movement directions.
var StandardDirections = []Direction{North, South, East, West, Up, Down}

// IsStandard reports whether d is a supported direction.
func (d Direction) IsStandard() bool {
	for _, sd := range StandardDirections {
		if d == sd {
			return true
		}
	}
	return false
}

// Opposite returns the reverse of a standard direction, or "" otherwise.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Up:
		return Down
	case Down:
		return Up
	default:
		return ""
	}
}

// ArrivalPhrase describes an arrival to observers in the destination room,
// phrased from the direction the mover came from. Vertical movement reads
// "from above"/"from below" rather than "from the up".
//
// Precondition: d is the direction of travel, not the reverse.
func (d Direction) ArrivalPhrase() string {
	switch d {
	case Up:
		return "from below"
	case Down:
		return "from above"
	case North, South, East, West:
		return "from the " + string(d.Opposite())
	default:
		return "from somewhere"
	}
}
