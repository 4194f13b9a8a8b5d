package system

import (
	"time"

	coresys "github.com/tgarena/survivor/internal/core/system"
	"github.com/tgarena/survivor/internal/hook"
	"github.com/tgarena/survivor/internal/vmath"
	"github.com/tgarena/survivor/internal/world"
	"go.uber.org/zap"
)

// BossSystem hands the step to the installed OnTick hook and places any
// bosses it requests. Without a hook it does nothing. Phase 4 (Director),
// after the wave system.
type BossSystem struct {
	deps *Deps
}

func NewBossSystem(deps *Deps) *BossSystem {
	return &BossSystem{deps: deps}
}

func (s *BossSystem) Phase() coresys.Phase { return coresys.PhaseDirector }

func (s *BossSystem) Update(_ time.Duration) {
	ws := s.deps.World
	total, bosses := ws.CountZombies()
	res, ok := s.deps.Hooks.Tick(hook.TickInfo{
		Step:    ws.Step(),
		TimeMs:  ws.NowMs(),
		Wave:    ws.Run.Wave,
		Mode:    string(ws.Run.Mode),
		MapKey:  ws.Run.MapKey,
		Zombies: total,
		Bosses:  bosses,
		PlayerX: ws.Player.Pos.X,
		PlayerY: ws.Player.Pos.Y,
	})
	if !ok {
		return
	}
	for _, b := range res.Spawns {
		s.spawn(b)
	}
}

func (s *BossSystem) spawn(b hook.BossSpawn) {
	ws := s.deps.World
	cfg := s.deps.Config.Combat
	hp := vmath.Finite(b.HP)
	if hp <= 0 {
		s.deps.Log.Warn("boss spawn ignored", zap.String("tag", b.Tag), zap.Float64("hp", b.HP))
		return
	}
	radius := vmath.Finite(b.Radius)
	if radius <= 0 {
		radius = cfg.ZombieRadius * cfg.EliteSizeMul
	}
	damage := vmath.Finite(b.Damage)
	if damage <= 0 {
		damage = cfg.BossContactDamage
	}
	tag := b.Tag
	if tag == "" {
		tag = "boss"
	}
	at := ws.Player.Pos.Add(vmath.FromAngle(vmath.Finite(b.Angle)).Scale(vmath.Finite(b.Distance)))
	ws.SpawnZombie(world.Zombie{
		Pos:    ws.Arena.Clamp(at, radius),
		HP:     hp,
		MaxHP:  hp,
		Speed:  vmath.Finite(b.Speed),
		Radius: radius,
		Damage: damage,
		Boss:   true,
		Tag:    tag,
	})
	s.deps.Log.Info("boss spawned",
		zap.String("tag", tag),
		zap.Float64("hp", hp),
		zap.Int("wave", ws.Run.Wave),
	)
}
