package system

import (
	"time"

	"github.com/tgarena/survivor/internal/core/ecs"
	coresys "github.com/tgarena/survivor/internal/core/system"
	"github.com/tgarena/survivor/internal/world"
)

// MovementSystem integrates the player, bullets and zombies, and records
// previous positions for interpolation. Phase 0 (Movement).
type MovementSystem struct {
	deps *Deps
}

func NewMovementSystem(deps *Deps) *MovementSystem {
	return &MovementSystem{deps: deps}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMovement }

func (s *MovementSystem) Update(_ time.Duration) {
	ws := s.deps.World
	sec := stepSeconds(s.deps)
	p := &ws.Player

	p.Prev = p.Pos
	p.Vel = ws.Input.Move.ClampLen(1).Scale(PlayerSpeed(s.deps))
	p.Pos = ws.Arena.Clamp(p.Pos.Add(p.Vel.Scale(sec)), p.Radius)

	ws.Bullets.Each(func(_ ecs.EntityID, b *world.Bullet) {
		b.Prev = b.Pos
		b.Pos = b.Pos.Add(b.Vel.Scale(sec))
	})

	ws.Zombies.Each(func(_ ecs.EntityID, z *world.Zombie) {
		z.Prev = z.Pos
		to := p.Pos.Sub(z.Pos)
		if to.IsZero() {
			z.Vel = to
		} else {
			z.Vel = to.Norm().Scale(z.Speed)
		}
		z.Pos = ws.Arena.Clamp(z.Pos.Add(z.Vel.Scale(sec)), z.Radius)
	})

	ws.Pickups.Each(func(_ ecs.EntityID, pk *world.Pickup) {
		pk.Prev = pk.Pos
	})
}

// PlayerSpeed is the effective move speed after the perk multiplier, the
// weapon's movement penalty and the plating slowdown.
func PlayerSpeed(d *Deps) float64 {
	ws := d.World
	speed := d.Config.Player.Speed * ws.Perks.Mods().MoveSpeed * (1 - ws.Weapon.MovePenalty)
	if ws.Player.Plating == world.Plating {
		speed *= d.Config.Player.PlatingMoveFactor
	}
	return speed
}

func stepSeconds(d *Deps) float64 {
	return d.Config.Clock.FixedStepMs / 1000
}
