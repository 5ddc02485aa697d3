package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestD20_Range(t *testing.T) {
	src := NewRandSource()
	for i := 0; i < 200; i++ {
		v := D20(src)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 20)
	}
}

func TestBetween_Degenerate(t *testing.T) {
	src := NewRandSource()
	assert.Equal(t, 5, Between(src, 5, 5))
	assert.Equal(t, 7, Between(src, 7, 3))
}

func TestChance_Extremes(t *testing.T) {
	src := NewRandSource()
	assert.False(t, Chance(src, 0))
	assert.False(t, Chance(src, -1))
	assert.True(t, Chance(src, 1))
	assert.True(t, Chance(src, 2))
}

func TestSeqSource_Replays(t *testing.T) {
	src := &SeqSource{Ints: []int{3, 1}, Floats: []float64{0.5}}
	assert.Equal(t, 4, D20(src))
	assert.Equal(t, 2, D20(src))
	assert.Equal(t, 2, D20(src)) // last value repeats
	assert.Equal(t, 0.5, src.Float64())
	assert.Equal(t, 0.5, src.Float64())
}

func TestPropertyBetweenStaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		min := rapid.IntRange(-100, 100).Draw(t, "min")
		max := rapid.IntRange(min, min+200).Draw(t, "max")
		v := Between(NewRandSource(), min, max)
		if v < min || v > max {
			t.Fatalf("Between(%d, %d) = %d out of range", min, max, v)
		}
	})
}
