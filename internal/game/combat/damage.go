package combat

import (
	"math"

	"github.com/embervale/mud/internal/game/dice"
)

// DamageInput carries everything the damage roll needs.
type DamageInput struct {
	Weapon            WeaponStats
	EffectiveStrength int
	TargetArmorClass  int
	CritChance        float64
	CritMultiplier    float64
}

// DamageResult is the outcome of one swing.
type DamageResult struct {
	Amount int
	Crit   bool
}

// AbilityModifier converts an ability score into its bonus:
// floor((score - 10) / 2). Scores below 10 yield negative modifiers.
func AbilityModifier(score int) int {
	return int(math.Floor(float64(score-10) / 2))
}

// ArmorMitigation converts armor class into flat damage reduction:
// floor(ac / 5).
func ArmorMitigation(ac int) int {
	return int(math.Floor(float64(ac) / 5))
}

// RollDamage computes one swing's damage: a uniform pick in
// [DamageMin, DamageMax], plus the strength modifier (clamped to at least 1),
// minus armor mitigation (clamped to at least 1), then a critical check that
// multiplies the result.
//
// Precondition: src must be non-nil; Weapon.DamageMin <= Weapon.DamageMax.
// Postcondition: Amount >= 1.
func RollDamage(src dice.Source, in DamageInput) DamageResult {
	dmg := dice.Between(src, in.Weapon.DamageMin, in.Weapon.DamageMax)

	dmg += AbilityModifier(in.EffectiveStrength)
	if dmg < 1 {
		dmg = 1
	}

	dmg -= ArmorMitigation(in.TargetArmorClass)
	if dmg < 1 {
		dmg = 1
	}

	crit := dice.Chance(src, in.CritChance)
	if crit {
		dmg = int(float64(dmg) * in.CritMultiplier)
		if dmg < 1 {
			dmg = 1
		}
	}

	return DamageResult{Amount: dmg, Crit: crit}
}

// FleeDC computes the difficulty of escaping combat. The more hurt the
// fleer, the easier the escape: max(5, 15 - floor(10 * missingHPFraction)).
//
// Precondition: maxHealth > 0.
func FleeDC(currentHealth, maxHealth int) int {
	missing := 1.0 - float64(currentHealth)/float64(maxHealth)
	dc := 15 - int(math.Floor(10*missing))
	if dc < 5 {
		dc = 5
	}
	return dc
}

// TryFlee rolls d20 + dexterity modifier against FleeDC.
//
// Precondition: src must be non-nil; maxHealth > 0.
// Postcondition: success iff roll >= dc.
func TryFlee(src dice.Source, currentHealth, maxHealth, effectiveDex int) (success bool, roll, dc int) {
	dc = FleeDC(currentHealth, maxHealth)
	roll = dice.D20(src) + AbilityModifier(effectiveDex)
	return roll >= dc, roll, dc
}
