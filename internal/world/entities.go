package world

import "github.com/tgarena/survivor/internal/vmath"

// Zombie is an enemy. Ordinary zombies come from the wave director; bosses
// are placed by an installed collaborator and carry its tag.
type Zombie struct {
	Pos    vmath.Vec2
	Prev   vmath.Vec2
	Vel    vmath.Vec2
	HP     float64
	MaxHP  float64
	Speed  float64 // units per second
	Radius float64
	Damage float64 // contact damage per touch
	Elite  bool
	Boss   bool
	Tag    string // "zombie", "elite" or a boss tag

	NextTouchMs float64 // contact damage allowed again at this time
}

// Bullet is a projectile. Hits records zombies already struck so a
// piercing bullet never damages the same target twice.
type Bullet struct {
	Pos    vmath.Vec2
	Prev   vmath.Vec2
	Vel    vmath.Vec2
	Damage float64
	Pierce int // extra targets the bullet may pass through
	Radius float64
	Crit   bool
	BornMs float64
	LifeMs float64
	Hits   []uint64
}

func (b *Bullet) HasHit(id uint64) bool {
	for _, h := range b.Hits {
		if h == id {
			return true
		}
	}
	return false
}

func (b *Bullet) Expired(nowMs float64) bool {
	return nowMs-b.BornMs >= b.LifeMs
}

// PickupKind tags a pickup's payload.
type PickupKind uint8

const (
	PickupCoins PickupKind = iota
	PickupAmmo
	PickupPlate
	PickupWeapon
	PickupEvent
	PickupRelic
)

func (k PickupKind) String() string {
	switch k {
	case PickupCoins:
		return "coins"
	case PickupAmmo:
		return "ammo"
	case PickupPlate:
		return "plate"
	case PickupWeapon:
		return "weapon"
	case PickupEvent:
		return "event"
	case PickupRelic:
		return "relic"
	}
	return "unknown"
}

// WeaponRoll identifies a weapon instance before it is composed.
type WeaponRoll struct {
	Key    string
	Rarity int
	Level  int
}

// Payload holds kind-specific pickup data. Only the field matching the
// pickup's kind is meaningful.
type Payload struct {
	Coins  int
	Weapon WeaponRoll
	Event  EventKind
}

// Pickup is a collectible lying in the arena. Vel decays each step so a
// fresh drop scatters and then settles.
type Pickup struct {
	Pos     vmath.Vec2
	Prev    vmath.Vec2
	Vel     vmath.Vec2
	Kind    PickupKind
	Payload Payload
	BornMs  float64
	LifeMs  float64
}

func (p *Pickup) Expired(nowMs float64) bool {
	return nowMs-p.BornMs >= p.LifeMs
}
