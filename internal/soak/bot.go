package soak

import (
	"math"

	"github.com/tgarena/survivor/internal/sim"
	"github.com/tgarena/survivor/internal/vmath"
)

// Controls is the slice of the simulation API the bot drives.
type Controls interface {
	SetMove(x, y float64)
	SetAim(x, y float64)
	SetShooting(on bool)
	Reload() bool
	BuyUpgrade() bool
	BuyReload() bool
	UsePlate() bool
	BuyPerk(id string) bool
}

// Bot is a deterministic policy: it reads only the snapshot, so a seeded
// run replays exactly.
type Bot struct {
	KeepAway   float64 // flee zombies closer than this
	PlateSafe  float64 // only plate with no zombie this close
	CoinBuffer int     // coins kept back for emergency reloads
}

func NewBot() *Bot {
	return &Bot{KeepAway: 220, PlateSafe: 160, CoinBuffer: 200}
}

// Act writes this frame's input and makes at most one purchase.
func (b *Bot) Act(c Controls, f sim.Snapshot) {
	me := vmath.V(f.Player.X, f.Player.Y)

	target, dist := nearestZombie(f, me)
	if target != nil {
		c.SetAim(target.X-me.X, target.Y-me.Y)
		c.SetShooting(true)
	} else {
		c.SetShooting(false)
	}

	var move vmath.Vec2
	switch {
	case target != nil && dist < b.KeepAway:
		move = me.Sub(vmath.V(target.X, target.Y)).Norm()
	default:
		if pk := nearestPickup(f, me); pk != nil {
			move = vmath.V(pk.X, pk.Y).Sub(me).Norm()
		}
	}
	c.SetMove(move.X, move.Y)

	w := f.HUD.Weapon
	if w.Magazine == 0 && !w.Reloading && w.Reserve > 0 {
		c.Reload()
	}
	if !f.HUD.Shop.Open {
		return
	}
	b.shop(c, f, dist)
}

func (b *Bot) shop(c Controls, f sim.Snapshot, threat float64) {
	hud := f.HUD
	shop := hud.Shop
	switch {
	case hud.Weapon.Magazine == 0 && hud.Weapon.Reserve == 0 && hud.Coins >= shop.ReloadCost:
		c.BuyReload()
		return
	case hud.Plates > 0 && !hud.Plating && hud.Armor < hud.MaxArmor/2 && threat > b.PlateSafe:
		c.UsePlate()
		return
	case shop.CanUpgrade && hud.Coins >= shop.UpgradeCost+b.CoinBuffer:
		c.BuyUpgrade()
		return
	}
	for _, p := range shop.Perks {
		if !p.Owned && hud.Coins >= p.Cost+b.CoinBuffer {
			c.BuyPerk(p.ID)
			return
		}
	}
}

func nearestZombie(f sim.Snapshot, me vmath.Vec2) (*sim.ZombieView, float64) {
	var best *sim.ZombieView
	bestD := math.Inf(1)
	for i := range f.Zombies {
		z := &f.Zombies[i]
		d := me.Dist(vmath.V(z.X, z.Y)) - z.Radius
		if d < bestD {
			best, bestD = z, d
		}
	}
	return best, bestD
}

func nearestPickup(f sim.Snapshot, me vmath.Vec2) *sim.PickupView {
	var best *sim.PickupView
	bestD := math.Inf(1)
	for i := range f.Pickups {
		p := &f.Pickups[i]
		if d := me.DistSq(vmath.V(p.X, p.Y)); d < bestD {
			best, bestD = p, d
		}
	}
	return best
}
