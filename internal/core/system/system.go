package system

import "time"

// Phase defines execution ordering within a single fixed step.
type Phase int

const (
	PhaseMovement Phase = iota // 0: player, bullet, zombie integration
	PhaseWeapon                // 1: reload/plating timers, firing
	PhaseCombat                // 2: collisions and damage
	PhaseEconomy               // 3: drops, pickups, magnetism
	PhaseDirector              // 4: waves, quest, collaborator tick
	PhaseCleanup               // 5: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseMovement:
		return "movement"
	case PhaseWeapon:
		return "weapon"
	case PhaseCombat:
		return "combat"
	case PhaseEconomy:
		return "economy"
	case PhaseDirector:
		return "director"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every step system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
