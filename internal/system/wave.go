package system

import (
	"math"
	"time"

	"github.com/tgarena/survivor/internal/core/event"
	coresys "github.com/tgarena/survivor/internal/core/system"
	"github.com/tgarena/survivor/internal/vmath"
	"github.com/tgarena/survivor/internal/world"
	"go.uber.org/zap"
)

// WaveSystem starts the next wave once the zombie population reaches zero
// and pays the clear reward. Phase 4 (Director).
type WaveSystem struct {
	deps *Deps
}

func NewWaveSystem(deps *Deps) *WaveSystem {
	return &WaveSystem{deps: deps}
}

func (s *WaveSystem) Phase() coresys.Phase { return coresys.PhaseDirector }

func (s *WaveSystem) Update(_ time.Duration) {
	ws := s.deps.World
	if ws.Player.Dead() {
		return
	}
	if total, _ := ws.CountZombies(); total > 0 {
		return
	}
	if ws.Run.Wave > 0 {
		s.reward(ws.Run.Wave)
	}
	ws.Run.Wave++
	s.spawn(ws.Run.Wave)
}

// WaveScale holds the per-wave multipliers.
type WaveScale struct {
	Count       int
	HPMul       float64
	SpeedMul    float64
	DamageMul   float64
	EliteChance float64
}

// ScaleFor computes wave scaling: count grows linearly, hp and speed
// geometrically (speed capped), elite chance linearly (capped).
func ScaleFor(d *Deps, wave int) WaveScale {
	cfg := d.Config.Waves
	n := float64(max(0, wave-1))
	return WaveScale{
		Count:       max(0, cfg.BaseCount+(wave-1)*cfg.CountGrowth),
		HPMul:       math.Pow(cfg.HPGrowth, n),
		SpeedMul:    math.Min(cfg.MaxSpeedMul, math.Pow(cfg.SpeedGrowth, n)),
		DamageMul:   1 + n*cfg.DamageGrowth,
		EliteChance: math.Min(cfg.MaxEliteChance, n*cfg.EliteChancePerWave),
	}
}

func (s *WaveSystem) spawn(wave int) {
	ws := s.deps.World
	cfg := s.deps.Config
	sc := ScaleFor(s.deps, wave)
	elites := 0
	for i := 0; i < sc.Count; i++ {
		elite := vmath.Chance(s.deps.Rand, sc.EliteChance)
		pos := vmath.PointOnRing(s.deps.Rand, ws.Player.Pos, cfg.Waves.SpawnMinRadius, cfg.Waves.SpawnMaxRadius)
		z := world.Zombie{
			HP:     cfg.Combat.ZombieHP * sc.HPMul,
			Speed:  cfg.Combat.ZombieSpeed * sc.SpeedMul,
			Radius: cfg.Combat.ZombieRadius,
			Damage: cfg.Combat.ContactDamage * sc.DamageMul,
			Tag:    "zombie",
		}
		if elite {
			elites++
			z.Elite = true
			z.Tag = "elite"
			z.HP *= cfg.Combat.EliteHPMul
			z.Speed *= cfg.Combat.EliteSpeedMul
			z.Radius *= cfg.Combat.EliteSizeMul
			z.Damage *= cfg.Combat.EliteDamageMul
		}
		z.MaxHP = z.HP
		z.Pos = ws.Arena.Clamp(pos, z.Radius)
		ws.SpawnZombie(z)
	}

	event.Emit(s.deps.Bus, event.WaveStarted{
		Wave:     wave,
		Count:    sc.Count,
		Elites:   elites,
		HPMul:    sc.HPMul,
		SpeedMul: sc.SpeedMul,
	})
	s.deps.Log.Info("wave started",
		zap.Int("wave", wave),
		zap.Int("count", sc.Count),
		zap.Int("elites", elites),
	)
}

// reward pays for clearing wave: XP always; in the economy mode a coin
// stipend and a chance at a timed-event pickup beside the player.
func (s *WaveSystem) reward(wave int) {
	ws := s.deps.World
	cfg := s.deps.Config.Waves
	ws.AddXP(cfg.ClearXPPerWave * wave)
	if !ws.Economy() {
		return
	}
	ws.AddCoins(cfg.StipendBase + cfg.StipendPerWave*wave)
	if vmath.Chance(s.deps.Rand, cfg.EventPickupChance) {
		at := ws.Player.Pos.Add(vmath.FromAngle(s.deps.Rand.Float64() * 2 * math.Pi).Scale(cfg.EventPickupRadius))
		kind := world.EventKinds[vmath.Intn(s.deps.Rand, len(world.EventKinds))]
		ws.SpawnPickup(world.Pickup{
			Pos:     ws.Arena.Clamp(at, 0),
			Kind:    world.PickupEvent,
			Payload: world.Payload{Event: kind},
			BornMs:  ws.NowMs(),
			LifeMs:  s.deps.Config.Pickups.LifetimeMs,
		})
	}
}
