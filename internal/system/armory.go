package system

import (
	"github.com/tgarena/survivor/internal/vmath"
	"github.com/tgarena/survivor/internal/world"
	"go.uber.org/zap"
)

// RollRarity picks a rarity tier. Higher tiers gain weight with the wave
// number and with a loot perk.
func RollRarity(d *Deps) int {
	cfg := d.Config.Weapon
	shift := float64(d.World.Run.Wave) * cfg.RarityWaveShift
	if d.World.Perks.Mods().Loot > 1 {
		shift += cfg.RarityPerkShift
	}
	tiers := d.Weapons.Rarities()
	weights := make([]float64, len(tiers))
	for i, r := range tiers {
		weights[i] = r.Weight * (1 + shift*float64(i))
	}
	return vmath.Weighted(d.Rand, weights)
}

// RollWeapon rolls a droppable template, a rarity and an upgrade level.
// Wonder templates are never part of the pool.
func RollWeapon(d *Deps) world.WeaponRoll {
	keys := d.Weapons.Droppable()
	return world.WeaponRoll{
		Key:    keys[vmath.Intn(d.Rand, len(keys))],
		Rarity: RollRarity(d),
		Level:  vmath.Intn(d.Rand, d.Config.Weapon.MaxDropUpgrade+1),
	}
}

// Compose builds a weapon for roll with the current perk mods applied.
func Compose(d *Deps, roll world.WeaponRoll) (world.Weapon, bool) {
	tpl := d.Weapons.Get(roll.Key)
	if tpl == nil {
		return world.Weapon{}, false
	}
	rarity := vmath.ClampInt(roll.Rarity, 0, len(d.Weapons.Rarities())-1)
	return world.Compose(tpl, d.Weapons.Rarity(rarity), rarity, roll.Level, d.Config.Weapon, d.World.Perks.Mods()), true
}

// Equip replaces the held weapon with roll at full ammo. Any reload in
// progress is dropped with the old weapon.
func Equip(d *Deps, roll world.WeaponRoll) bool {
	w, ok := Compose(d, roll)
	if !ok {
		d.Log.Debug("unknown weapon", zap.String("key", roll.Key))
		return false
	}
	w.Fill()
	d.World.Weapon = w
	return true
}

// Restat recomputes the held weapon after an upgrade or a perk change,
// keeping its ammo.
func Restat(d *Deps, level int) {
	cur := &d.World.Weapon
	w, ok := Compose(d, world.WeaponRoll{Key: cur.Key, Rarity: cur.Rarity, Level: level})
	if !ok {
		return
	}
	cur.Restat(w)
}

// Held returns the roll describing the current weapon.
func Held(d *Deps) world.WeaponRoll {
	w := &d.World.Weapon
	return world.WeaponRoll{Key: w.Key, Rarity: w.Rarity, Level: w.Level}
}
