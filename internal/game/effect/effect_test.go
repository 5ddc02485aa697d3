package effect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poisonTemplate() *Template {
	return &Template{
		ID:              "poison",
		Name:            "Poison",
		Type:            DoT,
		DurationSeconds: 15,
		IntervalSeconds: 3,
		Magnitude:       5,
	}
}

func TestNew_MintsUniqueInstances(t *testing.T) {
	now := time.Now()
	a := New(poisonTemplate(), now)
	b := New(poisonTemplate(), now)
	require.NotEmpty(t, a.EffectID)
	assert.NotEqual(t, a.EffectID, b.EffectID)
	assert.Equal(t, 15*time.Second, a.Duration)
	assert.Equal(t, 3*time.Second, a.Interval)
	assert.Equal(t, now, a.AppliedAt)
	assert.True(t, a.Periodic())
}

func TestNew_CopiesModifiers(t *testing.T) {
	tmpl := &Template{Name: "Bark Skin", Type: Buff, StatModifiers: map[string]int{"armor_class": 4}}
	e := New(tmpl, time.Now())
	e.StatModifiers["armor_class"] = 99
	assert.Equal(t, 4, tmpl.StatModifiers["armor_class"])
}

func TestRemainingDuration(t *testing.T) {
	now := time.Now()
	e := New(poisonTemplate(), now)

	assert.Equal(t, 15*time.Second, e.RemainingDuration(now))
	assert.Equal(t, 9*time.Second, e.RemainingDuration(now.Add(6*time.Second)))
	assert.Equal(t, time.Duration(0), e.RemainingDuration(now.Add(time.Minute)))
}

func TestRemainingDuration_Indefinite(t *testing.T) {
	e := New(&Template{Name: "Curse", Type: Debuff}, time.Now())
	assert.Equal(t, time.Duration(0), e.RemainingDuration(time.Now().Add(time.Hour)))
}

func TestHasStatModifiers(t *testing.T) {
	e := New(&Template{Name: "x", Type: Buff, StatModifiers: map[string]int{"strength": 0}}, time.Now())
	assert.False(t, e.HasStatModifiers())
	e.StatModifiers["strength"] = 2
	assert.True(t, e.HasStatModifiers())
}

func TestSumModifiers(t *testing.T) {
	now := time.Now()
	a := New(&Template{Name: "a", Type: Buff, StatModifiers: map[string]int{"strength": 2}}, now)
	b := New(&Template{Name: "b", Type: Debuff, StatModifiers: map[string]int{"strength": -1, "dexterity": 3}}, now)
	active := map[string]*Effect{a.EffectID: a, b.EffectID: b}

	assert.Equal(t, 1, SumModifiers(active, "strength"))
	assert.Equal(t, 3, SumModifiers(active, "dexterity"))
	assert.Equal(t, 0, SumModifiers(active, "vitality"))
	assert.Equal(t, 0, SumModifiers(nil, "strength"))
}

func TestTypeValid(t *testing.T) {
	assert.True(t, Buff.Valid())
	assert.True(t, HoT.Valid())
	assert.False(t, Type("blessing").Valid())
}
