// Package dice provides the randomness source used by combat, loot, and
// behavior scheduling. All game systems draw through the Source interface so
// tests can substitute deterministic sequences.
package dice

import "math/rand"

// Source produces random values for game rolls.
type Source interface {
	// Intn returns a uniform int in [0, n). Panics if n <= 0.
	Intn(n int) int
	// Float64 returns a uniform float64 in [0.0, 1.0).
	Float64() float64
}

// randSource implements Source using math/rand's global generator.
type randSource struct{}

// NewRandSource returns a Source backed by math/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewRandSource() Source {
	return randSource{}
}

func (randSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	return rand.Intn(n)
}

func (randSource) Float64() float64 {
	return rand.Float64()
}
