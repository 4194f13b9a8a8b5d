package world

import (
	"math"

	"github.com/tgarena/survivor/internal/vmath"
)

// PlatingState is the armor-plate action state machine.
type PlatingState uint8

const (
	PlatingIdle PlatingState = iota
	Plating
)

// Player is the single controllable entity. Vital stats are unexported so
// every change goes through a mutator that keeps them within bounds.
type Player struct {
	Pos    vmath.Vec2
	Prev   vmath.Vec2
	Vel    vmath.Vec2
	Radius float64

	hp       float64
	maxHP    float64
	armor    float64
	maxArmor float64
	plates   int
	maxPlate int

	Plating        PlatingState
	PlatingStartMs float64
	PlatingEndMs   float64

	LastHitMs float64 // -Inf until the first hit
}

func newPlayer(radius, maxHP, maxArmor float64, plates, maxPlates int) Player {
	p := Player{
		Radius:    radius,
		maxHP:     math.Max(1, maxHP),
		maxArmor:  math.Max(0, maxArmor),
		maxPlate:  max(0, maxPlates),
		LastHitMs: math.Inf(-1),
	}
	p.hp = p.maxHP
	p.plates = vmath.ClampInt(plates, 0, p.maxPlate)
	return p
}

func (p *Player) HP() float64       { return p.hp }
func (p *Player) MaxHP() float64    { return p.maxHP }
func (p *Player) Armor() float64    { return p.armor }
func (p *Player) MaxArmor() float64 { return p.maxArmor }
func (p *Player) Plates() int       { return p.plates }
func (p *Player) MaxPlates() int    { return p.maxPlate }
func (p *Player) Dead() bool        { return p.hp <= 0 }

// Heal adds hp up to the current maximum.
func (p *Player) Heal(amount float64) {
	if amount <= 0 || p.Dead() {
		return
	}
	p.hp = math.Min(p.maxHP, p.hp+amount)
}

// RaiseMaxHP increases the cap and heals by the same amount.
func (p *Player) RaiseMaxHP(amount float64) {
	if amount <= 0 {
		return
	}
	p.maxHP += amount
	p.Heal(amount)
}

func (p *Player) AddArmor(amount float64) {
	p.armor = vmath.Clamp(p.armor+amount, 0, p.maxArmor)
}

// AddPlates grants plate charges up to the carry cap and reports how many
// were actually added.
func (p *Player) AddPlates(n int) int {
	before := p.plates
	p.plates = vmath.ClampInt(p.plates+n, 0, p.maxPlate)
	return p.plates - before
}

// TakeDamage applies a hit after mitigation: armor soaks absorb of the
// damage while it lasts, the rest comes off hp. Any plating in progress is
// cancelled without using the charge.
func (p *Player) TakeDamage(dmg, absorb float64) (absorbed, taken float64) {
	if dmg <= 0 {
		return 0, 0
	}
	absorbed = math.Min(p.armor, dmg*vmath.Clamp(absorb, 0, 1))
	p.armor -= absorbed
	taken = dmg - absorbed
	p.hp = math.Max(0, p.hp-taken)
	p.CancelPlating()
	return absorbed, taken
}

// CanPlate reports whether a plating action may start.
func (p *Player) CanPlate() bool {
	return p.Plating == PlatingIdle && p.plates > 0 && p.armor < p.maxArmor && !p.Dead()
}

func (p *Player) BeginPlating(nowMs, durMs float64) bool {
	if !p.CanPlate() {
		return false
	}
	p.Plating = Plating
	p.PlatingStartMs = nowMs
	p.PlatingEndMs = nowMs + durMs
	return true
}

// FinishPlating completes a due plating action, consuming one charge.
func (p *Player) FinishPlating(nowMs, plateArmor float64) bool {
	if p.Plating != Plating || nowMs+timeEpsilon < p.PlatingEndMs {
		return false
	}
	p.Plating = PlatingIdle
	if p.plates > 0 {
		p.plates--
		p.AddArmor(plateArmor)
	}
	return true
}

func (p *Player) CancelPlating() {
	p.Plating = PlatingIdle
}

// PlatingProgress returns 0..1 for an in-progress action, else 0.
func (p *Player) PlatingProgress(nowMs float64) float64 {
	if p.Plating != Plating || p.PlatingEndMs <= p.PlatingStartMs {
		return 0
	}
	return vmath.Clamp((nowMs-p.PlatingStartMs)/(p.PlatingEndMs-p.PlatingStartMs), 0, 1)
}
