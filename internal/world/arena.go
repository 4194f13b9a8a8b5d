package world

import (
	"github.com/tgarena/survivor/internal/data"
	"github.com/tgarena/survivor/internal/vmath"
)

// Arena bounds movement. Implementations come from the map table or fall
// back to a plain circle around the origin.
type Arena interface {
	// Clamp moves a circle of radius r to the nearest legal position.
	Clamp(p vmath.Vec2, r float64) vmath.Vec2
	// Contains reports whether a point is inside the playable bounds.
	Contains(p vmath.Vec2) bool
	// Blocked reports the path fraction at which a circle of radius r moving
	// from a to b first meets an obstacle.
	Blocked(a, b vmath.Vec2, r float64) (float64, bool)
	Key() string
}

// CircleArena is the fallback arena used when no map is selected.
type CircleArena struct {
	Radius float64
}

func (a CircleArena) Key() string { return "" }

func (a CircleArena) Contains(p vmath.Vec2) bool {
	return p.LenSq() <= a.Radius*a.Radius
}

func (a CircleArena) Blocked(_, _ vmath.Vec2, _ float64) (float64, bool) {
	return 0, false
}

func (a CircleArena) Clamp(p vmath.Vec2, r float64) vmath.Vec2 {
	limit := a.Radius - r
	if limit <= 0 {
		return vmath.Vec2{}
	}
	return p.ClampLen(limit)
}

// RectArena is a map-table arena: an origin-centred rectangle with circular
// obstacles that push entities out.
type RectArena struct {
	key       string
	halfW     float64
	halfH     float64
	obstacles []data.Obstacle
}

func NewRectArena(m *data.MapInfo) *RectArena {
	return &RectArena{
		key:       m.Key,
		halfW:     m.Width / 2,
		halfH:     m.Height / 2,
		obstacles: m.Obstacles,
	}
}

func (a *RectArena) Key() string { return a.key }

func (a *RectArena) Contains(p vmath.Vec2) bool {
	return p.X >= -a.halfW && p.X <= a.halfW && p.Y >= -a.halfH && p.Y <= a.halfH
}

func (a *RectArena) Blocked(from, to vmath.Vec2, r float64) (float64, bool) {
	first, hit := 1.0, false
	for _, o := range a.obstacles {
		if t, ok := vmath.SegmentCircle(from, to, vmath.V(o.X, o.Y), o.R+r); ok && (!hit || t < first) {
			first, hit = t, true
		}
	}
	return first, hit
}

func (a *RectArena) Clamp(p vmath.Vec2, r float64) vmath.Vec2 {
	for _, o := range a.obstacles {
		c := vmath.V(o.X, o.Y)
		d := p.Sub(c)
		gap := o.R + r
		if d.LenSq() >= gap*gap {
			continue
		}
		if d.IsZero() {
			d = vmath.V(1, 0)
		}
		p = c.Add(d.Norm().Scale(gap))
	}
	p.X = vmath.Clamp(p.X, -a.halfW+r, a.halfW-r)
	p.Y = vmath.Clamp(p.Y, -a.halfH+r, a.halfH-r)
	return p
}

// ArenaFor resolves a map key. Unknown or empty keys fall back to a circle.
func ArenaFor(maps *data.MapTable, key string, radius float64) Arena {
	if m := maps.Get(key); m != nil {
		return NewRectArena(m)
	}
	return CircleArena{Radius: radius}
}
