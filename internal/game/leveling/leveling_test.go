package leveling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestThresholdFor(t *testing.T) {
	assert.Equal(t, 0, ThresholdFor(0))
	assert.Equal(t, 0, ThresholdFor(1))
	assert.Equal(t, 300, ThresholdFor(2))
	assert.Equal(t, 900, ThresholdFor(3))
	assert.Greater(t, ThresholdFor(MaxLevel+1), ThresholdFor(MaxLevel))
}

func TestThresholdsMonotonic(t *testing.T) {
	for lvl := 2; lvl <= MaxLevel; lvl++ {
		assert.Greater(t, ThresholdFor(lvl), ThresholdFor(lvl-1), "level %d", lvl)
	}
}

func TestAdvance_NoCrossing(t *testing.T) {
	lvl, gains := Advance(1, 299)
	assert.Equal(t, 1, lvl)
	assert.Empty(t, gains)
}

func TestAdvance_SingleLevel(t *testing.T) {
	lvl, gains := Advance(1, 300)
	assert.Equal(t, 2, lvl)
	assert.Len(t, gains, 1)
	assert.Equal(t, 8, gains[0].MaxHealth)
}

func TestAdvance_MultipleLevels(t *testing.T) {
	lvl, gains := Advance(1, 2700)
	assert.Equal(t, 4, lvl)
	assert.Len(t, gains, 3)
	// Level 4 is a full attribute bump level.
	assert.Equal(t, 1, gains[2].Strength)
	assert.Equal(t, 1, gains[2].Intelligence)
}

func TestAdvance_CapsAtMaxLevel(t *testing.T) {
	lvl, gains := Advance(1, 100_000_000)
	assert.Equal(t, MaxLevel, lvl)
	assert.Len(t, gains, MaxLevel-1)

	lvl, gains = Advance(MaxLevel, 100_000_000)
	assert.Equal(t, MaxLevel, lvl)
	assert.Empty(t, gains)
}

func TestPropertyLevelMonotonicity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		level := rapid.IntRange(1, MaxLevel).Draw(t, "level")
		xp := rapid.IntRange(0, 400000).Draw(t, "xp")
		more := rapid.IntRange(0, 50000).Draw(t, "more")

		first, _ := Advance(level, xp)
		second, _ := Advance(first, xp+more)
		if second < first {
			t.Fatalf("xp increase decreased level: %d -> %d", first, second)
		}
	})
}
