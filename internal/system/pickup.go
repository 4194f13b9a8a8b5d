package system

import (
	"math"
	"time"

	"github.com/tgarena/survivor/internal/core/ecs"
	"github.com/tgarena/survivor/internal/core/event"
	coresys "github.com/tgarena/survivor/internal/core/system"
	"github.com/tgarena/survivor/internal/world"
	"go.uber.org/zap"
)

// PickupSystem drifts, magnetises, expires and collects pickups.
// Phase 3 (Economy).
type PickupSystem struct {
	deps *Deps
}

func NewPickupSystem(deps *Deps) *PickupSystem {
	return &PickupSystem{deps: deps}
}

func (s *PickupSystem) Phase() coresys.Phase { return coresys.PhaseEconomy }

func (s *PickupSystem) Update(_ time.Duration) {
	ws := s.deps.World
	cfg := s.deps.Config.Pickups
	now := ws.NowMs()
	sec := stepSeconds(s.deps)
	decay := math.Max(0, 1-cfg.Friction*sec)
	p := &ws.Player
	if p.Dead() {
		return
	}

	ws.Pickups.Each(func(id ecs.EntityID, pk *world.Pickup) {
		if ws.Gone(id) {
			return
		}
		if pk.Expired(now) {
			ws.Despawn(id)
			return
		}
		to := p.Pos.Sub(pk.Pos)
		dist := to.Len()
		if dist <= cfg.PickupRadius+p.Radius {
			ws.Despawn(id)
			Collect(s.deps, pk)
			return
		}
		if dist <= cfg.MagnetRadius {
			pull := math.Min(cfg.MaxMagnetSpeed, cfg.MagnetSpeed*cfg.MagnetRadius/math.Max(dist, 1))
			pk.Vel = to.Norm().Scale(pull)
		} else {
			pk.Vel = pk.Vel.Scale(decay)
		}
		pk.Pos = ws.Arena.Clamp(pk.Pos.Add(pk.Vel.Scale(sec)), 0)
	})
}

// Collect applies a pickup's effect to the run.
func Collect(d *Deps, pk *world.Pickup) {
	ws := d.World
	now := ws.NowMs()
	amount := 1

	switch pk.Kind {
	case world.PickupCoins:
		amount = pk.Payload.Coins
		if ws.Events.Active(world.EventDoubleRewards, now) {
			amount *= 2
		}
		ws.AddCoins(amount)

	case world.PickupAmmo:
		amount = refillReserve(d)

	case world.PickupPlate:
		amount = ws.Player.AddPlates(1)

	case world.PickupWeapon:
		if ws.Weapon.Wonder {
			// the wonder weapon is never swapped out by a floor drop
			amount = refillReserve(d)
			break
		}
		if Equip(d, pk.Payload.Weapon) {
			d.Log.Debug("weapon picked up",
				zap.String("key", pk.Payload.Weapon.Key),
				zap.Int("rarity", pk.Payload.Weapon.Rarity),
				zap.Int("level", pk.Payload.Weapon.Level),
			)
		}

	case world.PickupEvent:
		ws.Events.Activate(pk.Payload.Event, now, EventDuration(d, pk.Payload.Event))
		if pk.Payload.Event == world.EventAmmoRefill {
			ws.Weapon.CancelReload()
			ws.Weapon.Fill()
		}

	case world.PickupRelic:
		if ws.AddRelic() {
			event.Emit(d.Bus, event.RelicCollected{Relics: ws.Relics(), Needed: ws.RelicsNeeded()})
		} else {
			amount = 0
		}
	}

	event.Emit(d.Bus, event.PickupCollected{Kind: pk.Kind.String(), Amount: amount})
}

func refillReserve(d *Deps) int {
	w := &d.World.Weapon
	return w.AddReserve(int(math.Round(float64(w.ReserveMax) * d.Config.Pickups.AmmoRefill)))
}

// EventDuration returns the configured length of a timed event.
func EventDuration(d *Deps, k world.EventKind) float64 {
	cfg := d.Config.Events
	switch k {
	case world.EventAmmoRefill:
		return cfg.AmmoRefillMs
	case world.EventDoubleRewards:
		return cfg.DoubleRewardsMs
	case world.EventOneShotKill:
		return cfg.OneShotKillMs
	}
	return 0
}
