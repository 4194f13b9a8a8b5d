// Package hook defines the contracts optional collaborators implement to
// extend a run: boss spawning, scripted boss damage phases and perk
// side effects. The simulation never depends on a concrete collaborator.
package hook

import "fmt"

// TickInfo is passed to OnTick once per fixed step.
type TickInfo struct {
	Step    uint64
	TimeMs  float64
	Wave    int
	Mode    string
	MapKey  string
	Zombies int // live zombies, bosses included
	Bosses  int
	PlayerX float64
	PlayerY float64
}

// BossSpawn asks the simulation to place a boss relative to the player.
type BossSpawn struct {
	Tag      string
	HP       float64
	Speed    float64
	Radius   float64
	Damage   float64 // contact damage; 0 uses the configured boss default
	Angle    float64 // radians
	Distance float64
}

type TickResult struct {
	Spawns []BossSpawn
}

// BulletHit describes a bullet touching a boss.
type BulletHit struct {
	ZombieID uint64
	Tag      string
	HP       float64
	MaxHP    float64
	Damage   float64 // after the crit multiplier
	Critical bool
	Lethal   bool // one-shot-kill event active
	TimeMs   float64
}

// HitResult overrides normal hit resolution when Handled is set. Damage is
// then authoritative and Consume decides whether the bullet is spent; an
// unconsumed bullet keeps flying without losing pierce.
type HitResult struct {
	Handled bool
	Consume bool
	Damage  float64
}

// PerkInfo is passed to OnPerkPurchase after the purchase is committed.
type PerkInfo struct {
	ID     string
	Cost   int
	Coins  int // balance after payment
	Wave   int
	TimeMs float64
}

// PerkResult carries extra effects granted by a perk module. Values are
// applied through the same clamping mutators as built-in effects.
type PerkResult struct {
	MaxHP  float64
	Plates int
	Coins  int
}

// Set bundles the optional hooks. Any field may be nil.
type Set struct {
	OnTick         func(TickInfo) (TickResult, error)
	OnPerkPurchase func(PerkInfo) (PerkResult, error)
	OnBulletHit    func(BulletHit) (HitResult, error)
}

// Empty reports whether no hook is installed.
func (s Set) Empty() bool {
	return s.OnTick == nil && s.OnPerkPurchase == nil && s.OnBulletHit == nil
}

// Call invokes fn and converts a panic into an error so a broken
// collaborator cannot unwind the step.
func Call[In, Out any](fn func(In) (Out, error), in In) (out Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero Out
			out = zero
			err = fmt.Errorf("hook panic: %v", r)
		}
	}()
	return fn(in)
}
