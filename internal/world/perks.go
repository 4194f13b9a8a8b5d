package world

import "github.com/tgarena/survivor/internal/data"

// Mods is the aggregate effect of every owned perk. Multipliers start at 1.
type Mods struct {
	MoveSpeed   float64
	Magazine    float64
	Pierce      int
	Reload      float64
	Plating     float64
	Crit        float64
	Loot        float64
	MovePenalty float64
}

func baseMods() Mods {
	return Mods{MoveSpeed: 1, Magazine: 1, Reload: 1, Plating: 1, Loot: 1, MovePenalty: 1}
}

// Perks tracks one-time perk purchases for a run.
type Perks struct {
	owned map[string]bool
	order []string
	mods  Mods
}

func NewPerks() *Perks {
	return &Perks{owned: make(map[string]bool), mods: baseMods()}
}

func (p *Perks) Owned(id string) bool { return p.owned[id] }
func (p *Perks) Mods() Mods           { return p.mods }

// List returns owned perk ids in purchase order.
func (p *Perks) List() []string {
	return append([]string(nil), p.order...)
}

// Grant records a perk and folds its multipliers into Mods. Returns false
// if the perk is already owned.
func (p *Perks) Grant(def *data.Perk) bool {
	if def == nil || p.owned[def.ID] {
		return false
	}
	p.owned[def.ID] = true
	p.order = append(p.order, def.ID)
	p.mods.MoveSpeed *= data.Mul(def.MoveSpeed)
	p.mods.Magazine *= data.Mul(def.Magazine)
	p.mods.Pierce += def.Pierce
	p.mods.Reload *= data.Mul(def.Reload)
	p.mods.Plating *= data.Mul(def.Plating)
	p.mods.Crit += def.Crit
	p.mods.Loot *= data.Mul(def.Loot)
	p.mods.MovePenalty *= data.Mul(def.MovePenalty)
	return true
}

func (p *Perks) Reset() {
	clear(p.owned)
	p.order = p.order[:0]
	p.mods = baseMods()
}
