package system

import (
	"time"

	coresys "github.com/tgarena/survivor/internal/core/system"
	"github.com/tgarena/survivor/internal/vmath"
	"github.com/tgarena/survivor/internal/world"
	"go.uber.org/zap"
)

// WeaponSystem resolves reload and plating timers, then fires the held
// weapon while the trigger is down. Phase 1 (Weapon).
type WeaponSystem struct {
	deps *Deps
}

func NewWeaponSystem(deps *Deps) *WeaponSystem {
	return &WeaponSystem{deps: deps}
}

func (s *WeaponSystem) Phase() coresys.Phase { return coresys.PhaseWeapon }

func (s *WeaponSystem) Update(_ time.Duration) {
	ws := s.deps.World
	now := ws.NowMs()
	wp := &ws.Weapon

	freeAmmo := ws.Events.Active(world.EventAmmoRefill, now)
	if freeAmmo {
		wp.CancelReload()
		wp.Fill()
	}
	wp.FinishReload(now)
	if ws.Player.FinishPlating(now, s.deps.Config.Player.PlateArmor) {
		s.deps.Log.Debug("plate applied",
			zap.Float64("armor", ws.Player.Armor()),
			zap.Int("plates", ws.Player.Plates()),
		)
	}

	if !ws.Input.Aim.IsZero() {
		ws.Facing = ws.Input.Aim
	}
	if !ws.Input.Shooting || wp.Reload == world.Reloading || ws.Player.Dead() {
		return
	}
	if wp.Magazine() == 0 {
		wp.StartReload(now)
		return
	}
	if !wp.Fire(now, !freeAmmo) {
		return
	}
	s.spawnBullets(now)
}

func (s *WeaponSystem) spawnBullets(now float64) {
	ws := s.deps.World
	cfg := s.deps.Config.Combat
	wp := &ws.Weapon
	base := ws.Facing.Angle()
	for i := 0; i < wp.Bullets; i++ {
		dir := vmath.FromAngle(base + (s.deps.Rand.Float64()-0.5)*wp.Spread)
		crit := vmath.Chance(s.deps.Rand, wp.Crit)
		ws.SpawnBullet(world.Bullet{
			Pos:    ws.Player.Pos.Add(dir.Scale(ws.Player.Radius)),
			Vel:    dir.Scale(wp.BulletSpeed),
			Damage: wp.Damage,
			Pierce: wp.Pierce,
			Radius: cfg.BulletRadius,
			Crit:   crit,
			BornMs: now,
			LifeMs: cfg.BulletLifetimeMs,
		})
	}
}

// ManualReload starts a reload on request. It fails while already
// reloading, with an empty reserve or with a full magazine.
func ManualReload(d *Deps) bool {
	return d.World.Weapon.StartReload(d.World.NowMs())
}
