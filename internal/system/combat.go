package system

import (
	"math"
	"sort"
	"time"

	"github.com/tgarena/survivor/internal/core/ecs"
	"github.com/tgarena/survivor/internal/core/event"
	coresys "github.com/tgarena/survivor/internal/core/system"
	"github.com/tgarena/survivor/internal/hook"
	"github.com/tgarena/survivor/internal/vmath"
	"github.com/tgarena/survivor/internal/world"
	"go.uber.org/zap"
)

// CombatSystem prunes spent bullets, resolves bullet-zombie hits and
// zombie-player contact. Phase 2 (Combat).
type CombatSystem struct {
	deps *Deps
	loot *Loot
	grid *world.Grid

	cand []uint64
	hits []sweepHit
}

type sweepHit struct {
	id ecs.EntityID
	t  float64
}

func NewCombatSystem(deps *Deps, loot *Loot) *CombatSystem {
	return &CombatSystem{
		deps: deps,
		loot: loot,
		grid: world.NewGrid(64),
	}
}

func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseCombat }

func (s *CombatSystem) Update(_ time.Duration) {
	ws := s.deps.World
	now := ws.NowMs()

	ws.Bullets.Each(func(id ecs.EntityID, b *world.Bullet) {
		if b.Expired(now) || !ws.Arena.Contains(b.Pos) {
			ws.Despawn(id)
		}
	})

	s.grid.Clear()
	ws.Zombies.Each(func(id ecs.EntityID, z *world.Zombie) {
		if !ws.Gone(id) {
			s.grid.Insert(uint64(id), z.Pos, z.Radius)
		}
	})
	ws.Bullets.Each(func(id ecs.EntityID, b *world.Bullet) {
		if !ws.Gone(id) {
			s.resolveBullet(id, b, now)
		}
	})

	s.resolveContacts(now)
}

// resolveBullet sweeps the bullet's path this step and applies hits in
// path order until the bullet is spent. An obstacle on the path stops the
// bullet; zombies behind it are not hit.
func (s *CombatSystem) resolveBullet(bid ecs.EntityID, b *world.Bullet, now float64) {
	ws := s.deps.World
	wall, blocked := ws.Arena.Blocked(b.Prev, b.Pos, b.Radius)
	seg := b.Pos.Sub(b.Prev)
	mid := b.Prev.Add(seg.Scale(0.5))
	s.cand = s.grid.Query(s.cand[:0], mid, seg.Len()/2+b.Radius)

	s.hits = s.hits[:0]
	for _, raw := range s.cand {
		zid := ecs.EntityID(raw)
		z, ok := ws.Zombies.Get(zid)
		if !ok || ws.Gone(zid) || z.HP <= 0 || b.HasHit(raw) {
			continue
		}
		t, hit := sweep(b.Prev, b.Pos, z.Pos, z.Radius+b.Radius)
		if !hit {
			continue
		}
		if blocked {
			if enter, _ := vmath.SegmentCircle(b.Prev, b.Pos, z.Pos, z.Radius+b.Radius); enter > wall {
				continue
			}
		}
		s.hits = append(s.hits, sweepHit{id: zid, t: t})
	}
	sort.SliceStable(s.hits, func(i, j int) bool { return s.hits[i].t < s.hits[j].t })

	for _, h := range s.hits {
		z, _ := ws.Zombies.Get(h.id)
		if s.applyHit(bid, b, h.id, z, now) {
			ws.Despawn(bid)
			return
		}
	}
	if blocked {
		ws.Despawn(bid)
	}
}

// applyHit damages one zombie and reports whether the bullet is spent.
func (s *CombatSystem) applyHit(bid ecs.EntityID, b *world.Bullet, zid ecs.EntityID, z *world.Zombie, now float64) bool {
	ws := s.deps.World
	dmg := b.Damage
	if b.Crit {
		dmg *= s.deps.Config.Combat.CritMultiplier
	}
	lethal := ws.Events.Active(world.EventOneShotKill, now)
	consume := b.Pierce <= 0
	costsPierce := true

	if z.Boss {
		res, ok := s.deps.Hooks.BulletHit(hook.BulletHit{
			ZombieID: uint64(zid),
			Tag:      z.Tag,
			HP:       z.HP,
			MaxHP:    z.MaxHP,
			Damage:   dmg,
			Critical: b.Crit,
			Lethal:   lethal,
			TimeMs:   now,
		})
		if ok && res.Handled {
			dmg = math.Max(0, vmath.Finite(res.Damage))
			lethal = false
			consume = res.Consume
			costsPierce = false
		}
	}

	b.Hits = append(b.Hits, uint64(zid))
	if lethal {
		z.HP = 0
	} else {
		z.HP -= dmg
	}
	if z.HP <= 0 {
		s.kill(zid, z)
	}
	if consume {
		return true
	}
	if costsPierce {
		b.Pierce--
	}
	return false
}

func (s *CombatSystem) kill(id ecs.EntityID, z *world.Zombie) {
	ws := s.deps.World
	cfg := s.deps.Config.Loot
	z.HP = 0
	ws.Despawn(id)
	ws.Run.Kills++

	xp := cfg.KillXP
	switch {
	case z.Boss:
		xp = cfg.BossXP
	case z.Elite:
		xp = cfg.EliteXP
	}
	if n := ws.AddXP(xp); n > 0 {
		s.deps.Log.Debug("level up", zap.Int("level", ws.Level()))
	}

	event.Emit(s.deps.Bus, event.ZombieKilled{
		ZombieID: uint64(id),
		Tag:      z.Tag,
		Elite:    z.Elite,
		Boss:     z.Boss,
		X:        z.Pos.X,
		Y:        z.Pos.Y,
	})
	if z.Boss {
		s.deps.Log.Info("boss killed", zap.String("tag", z.Tag), zap.Int("wave", ws.Run.Wave))
	}
	s.loot.OnKill(z)
}

func (s *CombatSystem) resolveContacts(now float64) {
	ws := s.deps.World
	p := &ws.Player
	cooldown := s.deps.Config.Combat.ContactCooldownMs
	ws.Zombies.EachUntil(func(id ecs.EntityID, z *world.Zombie) bool {
		if p.Dead() {
			return false
		}
		if ws.Gone(id) || now < z.NextTouchMs {
			return true
		}
		if !vmath.CirclesOverlap(p.Pos, p.Radius, z.Pos, z.Radius) {
			return true
		}
		if DamagePlayer(s.deps, z.Damage) {
			z.NextTouchMs = now + cooldown
		}
		return true
	})
}

// DamagePlayer applies incoming damage to the player. Hits inside the
// invulnerability window after the previous hit are ignored and reported
// as false. A lethal hit ends the run.
func DamagePlayer(d *Deps, dmg float64) bool {
	ws := d.World
	p := &ws.Player
	now := ws.NowMs()
	if p.Dead() || dmg <= 0 || now-p.LastHitMs < d.Config.Player.InvulnerableMs {
		return false
	}
	absorbed, _ := p.TakeDamage(dmg, d.Config.Player.ArmorAbsorb)
	p.LastHitMs = now
	event.Emit(d.Bus, event.PlayerDamaged{Damage: dmg, Absorbed: absorbed, HP: p.HP()})

	if p.Dead() {
		ws.Run.Running = false
		ws.Run.GameOver = true
		event.Emit(d.Bus, event.PlayerDied{Wave: ws.Run.Wave, X: p.Pos.X, Y: p.Pos.Y, AtMs: now})
		d.Log.Info("player died",
			zap.Int("wave", ws.Run.Wave),
			zap.Int("kills", ws.Run.Kills),
			zap.Float64("at_ms", now),
		)
	}
	return true
}

// sweep tests a moving point from a to b against a circle of radius r at
// c and returns the path fraction of the closest approach.
func sweep(a, b, c vmath.Vec2, r float64) (float64, bool) {
	ab := b.Sub(a)
	t := 0.0
	if l := ab.LenSq(); l > 0 {
		t = vmath.Clamp(c.Sub(a).Dot(ab)/l, 0, 1)
	}
	closest := a.Add(ab.Scale(t))
	return t, closest.DistSq(c) <= r*r
}
