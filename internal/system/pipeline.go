package system

import coresys "github.com/tgarena/survivor/internal/core/system"

// NewPipeline registers the step systems in their fixed order. Once the
// player is dead only cleanup still runs for the rest of the step.
func NewPipeline(deps *Deps) *coresys.Runner {
	loot := NewLoot(deps)
	r := coresys.NewRunner()
	r.Register(NewMovementSystem(deps))
	r.Register(NewWeaponSystem(deps))
	r.Register(NewCombatSystem(deps, loot))
	r.Register(NewPickupSystem(deps))
	r.Register(NewWaveSystem(deps))
	r.Register(NewBossSystem(deps))
	r.Register(NewQuestSystem(deps))
	r.Register(NewCleanupSystem(deps.World))
	r.HaltWhen(func() bool { return deps.World.Player.Dead() })
	return r
}
