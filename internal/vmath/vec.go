package vmath

import "math"

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X, Y float64
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (a Vec2) Add(b Vec2) Vec2       { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2       { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(s float64) Vec2  { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) Dot(b Vec2) float64    { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Len() float64          { return math.Hypot(a.X, a.Y) }
func (a Vec2) LenSq() float64        { return a.X*a.X + a.Y*a.Y }
func (a Vec2) Dist(b Vec2) float64   { return a.Sub(b).Len() }
func (a Vec2) DistSq(b Vec2) float64 { return a.Sub(b).LenSq() }
func (a Vec2) IsZero() bool          { return a.X == 0 && a.Y == 0 }
func (a Vec2) Angle() float64        { return math.Atan2(a.Y, a.X) }

// Norm returns the unit vector, or zero for a zero-length input.
func (a Vec2) Norm() Vec2 {
	l := a.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

// ClampLen limits the vector length to max, preserving direction.
func (a Vec2) ClampLen(max float64) Vec2 {
	l := a.Len()
	if l <= max || l == 0 {
		return a
	}
	return a.Scale(max / l)
}

// FromAngle returns the unit vector at angle rad.
func FromAngle(rad float64) Vec2 {
	return Vec2{math.Cos(rad), math.Sin(rad)}
}

// Lerp interpolates between a and b; t is not clamped.
func Lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// CirclesOverlap reports whether two circles touch or intersect.
func CirclesOverlap(a Vec2, ra float64, b Vec2, rb float64) bool {
	r := ra + rb
	return a.DistSq(b) <= r*r
}

// SegmentCircle returns the path fraction at which a point moving from a to
// b first touches the circle of radius r at c. A start inside the circle
// reports 0.
func SegmentCircle(a, b, c Vec2, r float64) (float64, bool) {
	f := a.Sub(c)
	cc := f.LenSq() - r*r
	if cc <= 0 {
		return 0, true
	}
	ab := b.Sub(a)
	l := ab.LenSq()
	if l == 0 {
		return 0, false
	}
	half := f.Dot(ab)
	disc := half*half - l*cc
	if disc < 0 {
		return 0, false
	}
	t := (-half - math.Sqrt(disc)) / l
	if t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Finite returns v, or 0 when v is NaN or infinite.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Snap rounds v to the nearest multiple of step offset from base.
// Rounding happens on the step count so accumulated drift cannot leak through.
func Snap(v, base, step float64) float64 {
	if step <= 0 {
		return v
	}
	n := math.Round((v - base) / step)
	return base + n*step
}
