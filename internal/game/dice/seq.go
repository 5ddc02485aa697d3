package dice

// SeqSource is a deterministic Source that replays fixed value sequences.
// Intn returns the next entry of Ints verbatim (the caller is responsible for
// providing in-range values); Float64 returns the next entry of Floats.
// Each sequence repeats its final value once exhausted. Intended for tests.
type SeqSource struct {
	Ints   []int
	Floats []float64
	i, f   int
}

func (s *SeqSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	if len(s.Ints) == 0 {
		return 0
	}
	v := s.Ints[s.i]
	if s.i < len(s.Ints)-1 {
		s.i++
	}
	if v >= n {
		v = n - 1
	}
	return v
}

func (s *SeqSource) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0
	}
	v := s.Floats[s.f]
	if s.f < len(s.Floats)-1 {
		s.f++
	}
	return v
}
