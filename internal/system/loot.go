package system

import (
	"math"

	"github.com/tgarena/survivor/internal/config"
	"github.com/tgarena/survivor/internal/vmath"
	"github.com/tgarena/survivor/internal/world"
)

// Loot rolls drops when a zombie dies. Every roll draws from the random
// source whether or not it can succeed, so the draw sequence depends only
// on the kill sequence.
type Loot struct {
	deps *Deps
}

func NewLoot(deps *Deps) *Loot {
	return &Loot{deps: deps}
}

// Chances returns the effective per-kill drop chances for an ordinary or
// elite kill at the current wave, mode and perks.
func (l *Loot) Chances(elite bool) config.DropChances {
	ws := l.deps.World
	cfg := l.deps.Config.Loot
	base := cfg.Normal
	if elite {
		base = cfg.Elite
	}
	mul := (1 + float64(ws.Run.Wave)*cfg.WaveBonus) * ws.Perks.Mods().Loot
	adj := func(p float64) float64 { return math.Min(cfg.MaxChance, p*mul) }

	out := config.DropChances{
		Coin:   adj(base.Coin),
		Ammo:   adj(base.Ammo),
		Weapon: base.Weapon,
		Event:  adj(base.Event),
	}
	if ws.Economy() {
		out.Plate = adj(base.Plate)
	} else {
		out.Weapon *= cfg.ClassicWeaponMul
	}
	out.Weapon = adj(out.Weapon)
	if !ws.WonderUnlocked() {
		out.Relic = adj(base.Relic)
	}
	return out
}

// CoinValue is the coin payload of an ordinary drop at the current wave.
func (l *Loot) CoinValue(elite bool) int {
	cfg := l.deps.Config.Loot
	n := cfg.CoinBase + cfg.CoinPerWave*l.deps.World.Run.Wave
	if elite {
		n *= cfg.EliteCoinMul
	}
	return n
}

func (l *Loot) OnKill(z *world.Zombie) {
	if z.Boss {
		l.bossDrops(z)
		return
	}
	rnd := l.deps.Rand
	ch := l.Chances(z.Elite)
	if vmath.Chance(rnd, ch.Coin) {
		l.drop(z.Pos, world.PickupCoins, world.Payload{Coins: l.CoinValue(z.Elite)})
	}
	if vmath.Chance(rnd, ch.Ammo) {
		l.drop(z.Pos, world.PickupAmmo, world.Payload{})
	}
	if vmath.Chance(rnd, ch.Plate) {
		l.drop(z.Pos, world.PickupPlate, world.Payload{})
	}
	if vmath.Chance(rnd, ch.Weapon) {
		l.drop(z.Pos, world.PickupWeapon, world.Payload{Weapon: RollWeapon(l.deps)})
	}
	if vmath.Chance(rnd, ch.Event) {
		kind := world.EventKinds[vmath.Intn(rnd, len(world.EventKinds))]
		l.drop(z.Pos, world.PickupEvent, world.Payload{Event: kind})
	}
	if vmath.Chance(rnd, ch.Relic) {
		l.drop(z.Pos, world.PickupRelic, world.Payload{})
	}
}

// bossDrops guarantees a multiplied coin drop and rolls a relic at a high
// fixed chance while the quest is open.
func (l *Loot) bossDrops(z *world.Zombie) {
	cfg := l.deps.Config.Loot
	l.drop(z.Pos, world.PickupCoins, world.Payload{Coins: l.CoinValue(false) * cfg.BossCoinMul})
	chance := cfg.BossRelicChance
	if l.deps.World.WonderUnlocked() {
		chance = 0
	}
	if vmath.Chance(l.deps.Rand, chance) {
		l.drop(z.Pos, world.PickupRelic, world.Payload{})
	}
}

// drop spawns a pickup with a random scatter velocity.
func (l *Loot) drop(at vmath.Vec2, kind world.PickupKind, payload world.Payload) {
	ws := l.deps.World
	cfg := l.deps.Config
	life := cfg.Pickups.LifetimeMs
	if kind == world.PickupWeapon || kind == world.PickupRelic {
		life = cfg.Pickups.RareLifetimeMs
	}
	dir := vmath.FromAngle(l.deps.Rand.Float64() * 2 * math.Pi)
	speed := vmath.Range(l.deps.Rand, cfg.Loot.ScatterMin, cfg.Loot.ScatterMax)
	ws.SpawnPickup(world.Pickup{
		Pos:     ws.Arena.Clamp(at, 0),
		Vel:     dir.Scale(speed),
		Kind:    kind,
		Payload: payload,
		BornMs:  ws.NowMs(),
		LifeMs:  life,
	})
}
