package world

import (
	"github.com/tgarena/survivor/internal/config"
	"github.com/tgarena/survivor/internal/core/ecs"
	"github.com/tgarena/survivor/internal/vmath"
)

// Mode selects the run rules.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeEconomy Mode = "economy" // shop enabled
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeClassic, ModeEconomy:
		return Mode(s), true
	}
	return "", false
}

// Input is written by the host between frames and consumed by the next
// step. Last write wins.
type Input struct {
	Move     vmath.Vec2 // components within [-1, 1]
	Aim      vmath.Vec2 // unit vector or zero
	Shooting bool
}

// Run is the run metadata and lifecycle flags.
type Run struct {
	Mode      Mode
	MapKey    string
	Character string
	Skin      string
	Wave      int
	Kills     int
	Running   bool
	GameOver  bool
}

// State owns every entity and counter of one run. Accessed only from the
// goroutine driving the simulation; no locks.
type State struct {
	cfg *config.Config

	ECS     *ecs.World
	Zombies *ecs.Store[Zombie]
	Bullets *ecs.Store[Bullet]
	Pickups *ecs.Store[Pickup]

	Player Player
	Weapon Weapon
	Perks  *Perks
	Events TimedEvents
	Input  Input
	Facing vmath.Vec2 // last non-zero aim, used when the stick is released
	Arena  Arena
	Run    Run

	step   uint64
	coins  int
	xp     int
	level  int
	nextXP int
	relics int
	wonder bool
}

func NewState(cfg *config.Config) *State {
	w := ecs.NewWorld()
	s := &State{
		cfg:     cfg,
		ECS:     w,
		Zombies: ecs.NewStore[Zombie](128),
		Bullets: ecs.NewStore[Bullet](256),
		Pickups: ecs.NewStore[Pickup](128),
		Perks:   NewPerks(),
		Arena:   CircleArena{Radius: cfg.Arena.Radius},
	}
	w.Registry().Register(s.Zombies)
	w.Registry().Register(s.Bullets)
	w.Registry().Register(s.Pickups)
	s.Reset(Run{Mode: ModeClassic}, s.Arena)
	return s
}

// Reset wipes every entity and counter and starts a fresh run record. The
// weapon is left for the caller to equip.
func (s *State) Reset(run Run, arena Arena) {
	s.ECS.Reset()
	pc := s.cfg.Player
	s.Player = newPlayer(pc.Radius, pc.MaxHP, pc.MaxArmor, pc.StartPlates, pc.MaxPlates)
	s.Weapon = Weapon{}
	s.Perks.Reset()
	s.Events.Reset()
	s.Input = Input{}
	s.Facing = vmath.V(1, 0)
	s.Arena = arena
	s.Run = run
	s.step = 0
	s.coins = max(0, s.cfg.Economy.StartCoins)
	s.xp = 0
	s.level = 1
	s.nextXP = s.levelCost(1)
	s.relics = 0
	s.wonder = false
}

func (s *State) Config() *config.Config { return s.cfg }

// Advance moves the clock forward one fixed step.
func (s *State) Advance() { s.step++ }

func (s *State) Step() uint64 { return s.step }

// NowMs is simulation time. It is derived from the step count so it never
// accumulates float error across a long run.
func (s *State) NowMs() float64 {
	return float64(s.step) * s.cfg.Clock.FixedStepMs
}

func (s *State) Economy() bool { return s.Run.Mode == ModeEconomy }

// ── coins ──

func (s *State) Coins() int { return s.coins }

func (s *State) AddCoins(n int) {
	if n > 0 {
		s.coins += n
	}
}

// SpendCoins deducts n if affordable.
func (s *State) SpendCoins(n int) bool {
	if n < 0 || s.coins < n {
		return false
	}
	s.coins -= n
	return true
}

// ── experience ──

func (s *State) XP() int          { return s.xp }
func (s *State) Level() int       { return s.level }
func (s *State) NextLevelXP() int { return s.nextXP }

func (s *State) levelCost(level int) int {
	return max(1, s.cfg.Progress.LevelBase+s.cfg.Progress.LevelStep*(level-1))
}

// AddXP credits experience and returns the number of levels gained. XP is
// cumulative; NextLevelXP is the total needed for the next level.
func (s *State) AddXP(n int) int {
	if n <= 0 {
		return 0
	}
	s.xp += n
	gained := 0
	for s.xp >= s.nextXP {
		s.level++
		s.nextXP += s.levelCost(s.level)
		gained++
	}
	return gained
}

// ── relic quest ──

func (s *State) Relics() int          { return s.relics }
func (s *State) RelicsNeeded() int    { return s.cfg.Quest.RelicsNeeded }
func (s *State) WonderUnlocked() bool { return s.wonder }

// AddRelic counts a relic. It reports false once the quest is complete or
// the counter is at its cap.
func (s *State) AddRelic() bool {
	if s.wonder || s.relics >= s.cfg.Quest.RelicsNeeded {
		return false
	}
	s.relics++
	return true
}

// UnlockWonder sets the one-way completion flag. It returns true only on
// the transition.
func (s *State) UnlockWonder() bool {
	if s.wonder {
		return false
	}
	s.wonder = true
	s.relics = s.cfg.Quest.RelicsNeeded
	return true
}

// ── entities ──

func (s *State) SpawnZombie(z Zombie) ecs.EntityID {
	id := s.ECS.CreateEntity()
	z.Prev = z.Pos
	s.Zombies.Set(id, &z)
	return id
}

func (s *State) SpawnBullet(b Bullet) ecs.EntityID {
	id := s.ECS.CreateEntity()
	b.Prev = b.Pos
	s.Bullets.Set(id, &b)
	return id
}

func (s *State) SpawnPickup(p Pickup) ecs.EntityID {
	id := s.ECS.CreateEntity()
	p.Prev = p.Pos
	s.Pickups.Set(id, &p)
	return id
}

// Despawn queues an entity for removal at the end of the step.
func (s *State) Despawn(id ecs.EntityID) {
	s.ECS.MarkForDestruction(id)
}

func (s *State) Gone(id ecs.EntityID) bool {
	return s.ECS.Pending(id)
}

// CountZombies returns live zombies not queued for removal, and how many
// of them are bosses.
func (s *State) CountZombies() (total, bosses int) {
	s.Zombies.Each(func(id ecs.EntityID, z *Zombie) {
		if s.ECS.Pending(id) {
			return
		}
		total++
		if z.Boss {
			bosses++
		}
	})
	return total, bosses
}
