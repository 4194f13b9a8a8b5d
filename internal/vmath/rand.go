package vmath

import (
	"math"
	"math/rand/v2"
)

// Source is the random stream the simulation draws from. Every gameplay
// roll goes through one Source so a run can be replayed from its seed.
type Source interface {
	Float64() float64 // [0, 1)
}

// Rand is a seedable PCG-backed Source.
type Rand struct {
	seed uint64
	r    *rand.Rand
}

func NewRand(seed uint64) *Rand {
	return &Rand{seed: seed, r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *Rand) Seed() uint64     { return r.seed }
func (r *Rand) Float64() float64 { return r.r.Float64() }

// Sequence replays a fixed list of draws, cycling when exhausted.
// Used by tests to force specific rolls.
type Sequence struct {
	vals []float64
	pos  int
}

func NewSequence(vals ...float64) *Sequence {
	if len(vals) == 0 {
		vals = []float64{0}
	}
	return &Sequence{vals: vals}
}

func (s *Sequence) Float64() float64 {
	v := s.vals[s.pos%len(s.vals)]
	s.pos++
	return v
}

// Draws returns how many values have been consumed.
func (s *Sequence) Draws() int { return s.pos }

// Range draws uniformly from [lo, hi).
func Range(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

// Chance draws once and reports whether the roll fell under p.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		src.Float64()
		return false
	}
	return src.Float64() < p
}

// Intn draws an int in [0, n).
func Intn(src Source, n int) int {
	if n <= 1 {
		return 0
	}
	i := int(math.Floor(src.Float64() * float64(n)))
	if i >= n {
		i = n - 1
	}
	return i
}

// Weighted picks an index proportional to weights. Non-positive weights
// never win; if every weight is non-positive the first index is returned.
func Weighted(src Source, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}
	roll := src.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if roll < w {
			return i
		}
		roll -= w
	}
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return 0
}

// PointOnRing samples a point uniformly by angle on an annulus around center.
func PointOnRing(src Source, center Vec2, minR, maxR float64) Vec2 {
	ang := src.Float64() * 2 * math.Pi
	r := Range(src, minR, maxR)
	return center.Add(FromAngle(ang).Scale(r))
}
