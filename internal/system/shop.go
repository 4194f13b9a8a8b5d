package system

import (
	"math"

	"github.com/tgarena/survivor/internal/core/event"
	"github.com/tgarena/survivor/internal/hook"
	"github.com/tgarena/survivor/internal/vmath"
	"github.com/tgarena/survivor/internal/world"
	"go.uber.org/zap"
)

// Shop implements the in-run purchases. Every operation is allowed only in
// the economy mode, validates its preconditions and reports success as a
// bool; rejections are logged at debug level and never change state.
type Shop struct {
	deps *Deps
}

func NewShop(deps *Deps) *Shop {
	return &Shop{deps: deps}
}

// UpgradeCost is the price of the next upgrade level of the held weapon.
func (s *Shop) UpgradeCost() int {
	cfg := s.deps.Config.Economy
	return cfg.UpgradeBase + cfg.UpgradeStep*s.deps.World.Weapon.Level
}

func (s *Shop) RerollCost() int {
	cfg := s.deps.Config.Economy
	return cfg.RerollBase + cfg.RerollPerWave*s.deps.World.Run.Wave
}

func (s *Shop) ReloadCost() int {
	cfg := s.deps.Config.Economy
	return cfg.ReloadBase + cfg.ReloadPerWave*s.deps.World.Run.Wave
}

// CanUpgrade reports whether the held weapon is below the upgrade cap.
func (s *Shop) CanUpgrade() bool {
	return s.deps.World.Weapon.Level < s.deps.Config.Weapon.MaxUpgrade
}

// BuyUpgrade raises the held weapon's upgrade level by one and refills part
// of its reserve.
func (s *Shop) BuyUpgrade() bool {
	ws := s.deps.World
	if !s.open("upgrade") {
		return false
	}
	if !s.CanUpgrade() {
		return s.reject("upgrade", "max level")
	}
	cost := s.UpgradeCost()
	if !ws.SpendCoins(cost) {
		return s.reject("upgrade", "coins")
	}
	Restat(s.deps, ws.Weapon.Level+1)
	w := &ws.Weapon
	w.AddReserve(int(math.Round(float64(w.ReserveMax) * s.deps.Config.Economy.UpgradeRefill)))
	s.record("upgrade", cost)
	return true
}

// RerollWeapon swaps the held weapon for a freshly rolled one at full ammo.
func (s *Shop) RerollWeapon() bool {
	ws := s.deps.World
	if !s.open("reroll") {
		return false
	}
	cost := s.RerollCost()
	if !ws.SpendCoins(cost) {
		return s.reject("reroll", "coins")
	}
	roll := RollWeapon(s.deps)
	Equip(s.deps, roll)
	s.record("reroll", cost)
	return true
}

// BuyReload fills magazine and reserve, cancelling any reload.
func (s *Shop) BuyReload() bool {
	ws := s.deps.World
	if !s.open("reload") {
		return false
	}
	w := &ws.Weapon
	if w.Magazine() == w.MagazineMax && w.Reserve() == w.ReserveMax {
		return s.reject("reload", "ammo full")
	}
	cost := s.ReloadCost()
	if !ws.SpendCoins(cost) {
		return s.reject("reload", "coins")
	}
	w.CancelReload()
	w.Fill()
	s.record("reload", cost)
	return true
}

// UsePlate starts plating when a charge is carried and armor is below cap.
// The charge is consumed when plating completes.
func (s *Shop) UsePlate() bool {
	ws := s.deps.World
	if !s.open("plate") {
		return false
	}
	dur := s.deps.Config.Player.PlatingMs * ws.Perks.Mods().Plating
	if !ws.Player.BeginPlating(ws.NowMs(), dur) {
		return s.reject("plate", "not ready")
	}
	return true
}

// BuyPerk buys a perk once per run and applies its effect.
func (s *Shop) BuyPerk(id string) bool {
	ws := s.deps.World
	item := "perk:" + id
	if !s.open(item) {
		return false
	}
	def := s.deps.Perks.Get(id)
	if def == nil {
		return s.reject(item, "unknown")
	}
	if ws.Perks.Owned(id) {
		return s.reject(item, "owned")
	}
	if !ws.SpendCoins(def.Cost) {
		return s.reject(item, "coins")
	}
	ws.Perks.Grant(def)
	ws.Player.RaiseMaxHP(def.MaxHP)
	ws.Player.AddPlates(def.Plates)
	Restat(s.deps, ws.Weapon.Level)

	if res, ok := s.deps.Hooks.PerkPurchase(hook.PerkInfo{
		ID:     id,
		Cost:   def.Cost,
		Coins:  ws.Coins(),
		Wave:   ws.Run.Wave,
		TimeMs: ws.NowMs(),
	}); ok {
		ws.Player.RaiseMaxHP(vmath.Finite(res.MaxHP))
		ws.Player.AddPlates(max(0, res.Plates))
		ws.AddCoins(res.Coins)
	}
	s.record(item, def.Cost)
	return true
}

func (s *Shop) open(item string) bool {
	if !s.deps.World.Economy() {
		return s.reject(item, "mode")
	}
	if !s.deps.World.Run.Running || s.deps.World.Player.Dead() {
		return s.reject(item, "not running")
	}
	return true
}

func (s *Shop) reject(item, reason string) bool {
	s.deps.Log.Debug("purchase rejected", zap.String("item", item), zap.String("reason", reason))
	return false
}

func (s *Shop) record(item string, cost int) {
	ws := s.deps.World
	event.Emit(s.deps.Bus, event.Purchase{
		Item:  item,
		Cost:  cost,
		Coins: ws.Coins(),
		Wave:  ws.Run.Wave,
		AtMs:  ws.NowMs(),
	})
	s.deps.Log.Debug("purchase", zap.String("item", item), zap.Int("cost", cost), zap.Int("coins", ws.Coins()))
}

// SwitchWeapon recomputes the held weapon for another template at the same
// rarity and upgrade level. Ammo carries over, clamped to the new caps, and
// any reload is cancelled. The wonder template requires the quest.
func SwitchWeapon(d *Deps, key string) bool {
	ws := d.World
	tpl := d.Weapons.Get(key)
	if tpl == nil || key == ws.Weapon.Key {
		return false
	}
	if tpl.Wonder && !ws.WonderUnlocked() {
		d.Log.Debug("weapon locked", zap.String("key", key))
		return false
	}
	w, ok := Compose(d, world.WeaponRoll{Key: key, Rarity: ws.Weapon.Rarity, Level: ws.Weapon.Level})
	if !ok {
		return false
	}
	ws.Weapon.CancelReload()
	ws.Weapon.Restat(w)
	return true
}

