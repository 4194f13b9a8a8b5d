package world

import (
	"math"

	"github.com/tgarena/survivor/internal/config"
	"github.com/tgarena/survivor/internal/data"
	"github.com/tgarena/survivor/internal/vmath"
)

// timeEpsilon absorbs float drift when comparing step timestamps, so an
// interval of exactly N steps is never missed by a rounding error.
const timeEpsilon = 1e-6

// ReloadState is the reload state machine.
type ReloadState uint8

const (
	ReloadIdle ReloadState = iota
	Reloading
)

// Weapon is a composed weapon instance plus its ammo and reload state.
// Stats are derived by Compose and must not be edited directly.
type Weapon struct {
	Key        string
	Name       string
	Rarity     int
	RarityName string
	Level      int
	Wonder     bool

	Damage      float64
	RPM         float64
	Spread      float64
	Bullets     int
	MagazineMax int
	ReserveMax  int
	ReloadMs    float64
	Crit        float64
	Pierce      int
	MovePenalty float64
	BulletSpeed float64

	magazine int
	reserve  int

	Reload        ReloadState
	ReloadStartMs float64
	ReloadEndMs   float64
	LastShotMs    float64 // -Inf before the first shot
}

// Compose derives a weapon from a template, a rarity tier and an upgrade
// level. Rarity and upgrade multiply independently; perk mods apply last.
func Compose(tpl *data.WeaponTemplate, rarity data.Rarity, rarityIdx, level int, cfg config.WeaponConfig, mods Mods) Weapon {
	level = vmath.ClampInt(level, 0, cfg.MaxUpgrade)
	lv := float64(level)
	upDamage := 1 + lv*cfg.UpgradeDamage
	upFire := 1 + lv*cfg.UpgradeFireRate
	upSpread := math.Max(0.2, 1-lv*cfg.UpgradeSpread)
	upAmmo := 1 + lv*cfg.UpgradeAmmo
	upReload := math.Max(0.3, 1-lv*cfg.UpgradeReload)

	return Weapon{
		Key:         tpl.Key,
		Name:        tpl.Name,
		Rarity:      rarityIdx,
		RarityName:  rarity.Name,
		Level:       level,
		Wonder:      tpl.Wonder,
		Damage:      tpl.Damage * data.Mul(rarity.Damage) * upDamage,
		RPM:         tpl.RPM * data.Mul(rarity.FireRate) * upFire,
		Spread:      tpl.Spread * data.Mul(rarity.Spread) * upSpread,
		Bullets:     max(1, tpl.Bullets),
		MagazineMax: max(1, int(math.Round(float64(tpl.Magazine)*data.Mul(rarity.Ammo)*upAmmo*mods.Magazine))),
		ReserveMax:  max(0, int(math.Round(float64(tpl.Reserve)*data.Mul(rarity.Ammo)*upAmmo))),
		ReloadMs:    tpl.ReloadMs * data.Mul(rarity.Reload) * upReload * mods.Reload,
		Crit:        vmath.Clamp(tpl.Crit+rarity.Crit+mods.Crit, 0, 1),
		Pierce:      max(0, tpl.Pierce+mods.Pierce),
		MovePenalty: vmath.Clamp(tpl.MovePenalty*mods.MovePenalty, 0, 0.9),
		BulletSpeed: tpl.BulletSpeed,
		LastShotMs:  math.Inf(-1),
	}
}

func (w *Weapon) Magazine() int { return w.magazine }
func (w *Weapon) Reserve() int  { return w.reserve }

// Interval returns the minimum time between shots.
func (w *Weapon) Interval() float64 {
	if w.RPM <= 0 {
		return math.Inf(1)
	}
	return 60000 / w.RPM
}

// Fill sets magazine and reserve to their maxima.
func (w *Weapon) Fill() {
	w.magazine = w.MagazineMax
	w.reserve = w.ReserveMax
}

// SetAmmo stores ammo counts clamped to the current maxima.
func (w *Weapon) SetAmmo(magazine, reserve int) {
	w.magazine = vmath.ClampInt(magazine, 0, w.MagazineMax)
	w.reserve = vmath.ClampInt(reserve, 0, w.ReserveMax)
}

// AddReserve adds rounds to the reserve up to its cap.
func (w *Weapon) AddReserve(n int) int {
	before := w.reserve
	w.reserve = vmath.ClampInt(w.reserve+n, 0, w.ReserveMax)
	return w.reserve - before
}

// Restat replaces the derived stats with those of next while keeping ammo
// and reload state; ammo is clamped to the new maxima.
func (w *Weapon) Restat(next Weapon) {
	mag, res := w.magazine, w.reserve
	reload, start, end, last := w.Reload, w.ReloadStartMs, w.ReloadEndMs, w.LastShotMs
	*w = next
	w.Reload, w.ReloadStartMs, w.ReloadEndMs, w.LastShotMs = reload, start, end, last
	w.SetAmmo(mag, res)
}

// CanFire reports whether a shot is allowed at nowMs.
func (w *Weapon) CanFire(nowMs float64) bool {
	return w.Reload == ReloadIdle && w.magazine > 0 && nowMs-w.LastShotMs+timeEpsilon >= w.Interval()
}

// Fire records a shot. consume is false while ammo is free.
func (w *Weapon) Fire(nowMs float64, consume bool) bool {
	if !w.CanFire(nowMs) {
		return false
	}
	if consume {
		w.magazine--
	}
	w.LastShotMs = nowMs
	return true
}

// CanReload reports whether a reload may begin.
func (w *Weapon) CanReload() bool {
	return w.Reload == ReloadIdle && w.reserve > 0 && w.magazine < w.MagazineMax
}

func (w *Weapon) StartReload(nowMs float64) bool {
	if !w.CanReload() {
		return false
	}
	w.Reload = Reloading
	w.ReloadStartMs = nowMs
	w.ReloadEndMs = nowMs + w.ReloadMs
	return true
}

// FinishReload completes a due reload, moving min(space, reserve) rounds
// from the reserve into the magazine.
func (w *Weapon) FinishReload(nowMs float64) bool {
	if w.Reload != Reloading || nowMs+timeEpsilon < w.ReloadEndMs {
		return false
	}
	n := min(w.MagazineMax-w.magazine, w.reserve)
	w.magazine += n
	w.reserve -= n
	w.Reload = ReloadIdle
	return true
}

func (w *Weapon) CancelReload() {
	w.Reload = ReloadIdle
}

// ReloadProgress returns 0..1 while reloading, else 0.
func (w *Weapon) ReloadProgress(nowMs float64) float64 {
	if w.Reload != Reloading || w.ReloadEndMs <= w.ReloadStartMs {
		return 0
	}
	return vmath.Clamp((nowMs-w.ReloadStartMs)/(w.ReloadEndMs-w.ReloadStartMs), 0, 1)
}
