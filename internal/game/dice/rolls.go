package dice

// D20 rolls a twenty-sided die.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a value in [1, 20].
func D20(src Source) int {
	return src.Intn(20) + 1
}

// Between returns a uniform int in [min, max]. When min >= max it returns min.
//
// Precondition: src must be non-nil.
func Between(src Source, min, max int) int {
	if min >= max {
		return min
	}
	return min + src.Intn(max-min+1)
}

// Chance reports whether a probability roll succeeds.
//
// Precondition: src must be non-nil; p is interpreted as a probability in [0, 1].
// Postcondition: Always false for p <= 0, always true for p >= 1.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}
