// Package look resolves player-typed target words against the world and
// renders the textual views: room descriptions, entity inspection, stats,
// and active effects.
package look

import (
	"strconv"
	"strings"

	"github.com/embervale/mud/internal/game/world"
)

// ParseTarget splits ordinal prefixes off a target word: "2.goblin" means
// the second goblin match. The ordinal defaults to 1.
//
// Postcondition: Returns the keyword and a 1-based ordinal >= 1.
func ParseTarget(input string) (keyword string, ordinal int) {
	input = strings.TrimSpace(input)
	if idx := strings.Index(input, "."); idx > 0 {
		if n, err := strconv.Atoi(input[:idx]); err == nil && n >= 1 {
			return input[idx+1:], n
		}
	}
	return input, 1
}

// FindEntity resolves a target word against the living entities in a room.
// NPCs are matched before players, by case-insensitive prefix; the ordinal
// counts across both groups in that order. The viewer never matches itself.
//
// Postcondition: Returns (nil, false) when no nth match exists.
func FindEntity(w *world.World, roomID, input, viewerID string) (world.Entity, bool) {
	keyword, ordinal := ParseTarget(input)
	if keyword == "" {
		return nil, false
	}
	seen := 0
	for _, n := range w.NpcsInRoom(roomID) {
		if !n.IsAlive() || !n.MatchesKeyword(keyword) {
			continue
		}
		seen++
		if seen == ordinal {
			return n, true
		}
	}
	for _, p := range w.PlayersInRoom(roomID) {
		if p.ID == viewerID || !p.IsAlive() || !p.MatchesKeyword(keyword) {
			continue
		}
		seen++
		if seen == ordinal {
			return p, true
		}
	}
	return nil, false
}

// FindItemInRoom resolves a target word against the items on a room's floor.
func FindItemInRoom(w *world.World, roomID, input string) (*world.Item, bool) {
	keyword, ordinal := ParseTarget(input)
	return nthItem(w.ItemsInRoom(roomID), keyword, ordinal)
}

// FindItemHeld resolves a target word against a player's inventory.
func FindItemHeld(w *world.World, playerID, input string) (*world.Item, bool) {
	keyword, ordinal := ParseTarget(input)
	return nthItem(w.ItemsHeldBy(playerID), keyword, ordinal)
}

// FindItemNearby resolves against the player's inventory first, then the
// room floor, with a single ordinal counter across both.
func FindItemNearby(w *world.World, playerID, roomID, input string) (*world.Item, bool) {
	keyword, ordinal := ParseTarget(input)
	if keyword == "" {
		return nil, false
	}
	pool := append(w.ItemsHeldBy(playerID), w.ItemsInRoom(roomID)...)
	return nthItem(pool, keyword, ordinal)
}

func nthItem(items []*world.Item, keyword string, ordinal int) (*world.Item, bool) {
	if keyword == "" {
		return nil, false
	}
	seen := 0
	for _, it := range items {
		if !it.MatchesKeyword(keyword) {
			continue
		}
		seen++
		if seen == ordinal {
			return it, true
		}
	}
	return nil, false
}
