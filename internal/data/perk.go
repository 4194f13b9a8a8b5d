package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Perk is a one-time purchase. Multiplier fields left at zero have no effect.
type Perk struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Cost        int     `yaml:"cost"`
	MaxHP       float64 `yaml:"max_hp"`       // added to max HP
	MoveSpeed   float64 `yaml:"move_speed"`   // multiplier
	Magazine    float64 `yaml:"magazine"`     // multiplier on magazine size
	Pierce      int     `yaml:"pierce"`       // added to weapon pierce
	Plates      int     `yaml:"plates"`       // plate charges granted on purchase
	Reload      float64 `yaml:"reload"`       // multiplier on reload time
	Plating     float64 `yaml:"plating"`      // multiplier on plating time
	Crit        float64 `yaml:"crit"`         // added to crit chance
	Loot        float64 `yaml:"loot"`         // multiplier on drop chances
	MovePenalty float64 `yaml:"move_penalty"` // multiplier on weapon movement penalty
}

type perkListFile struct {
	Perks []Perk `yaml:"perks"`
}

// PerkTable holds perks by id, preserving file order.
type PerkTable struct {
	perks map[string]*Perk
	order []string
}

func (t *PerkTable) Get(id string) *Perk {
	return t.perks[id]
}

func (t *PerkTable) Count() int {
	return len(t.perks)
}

// IDs returns perk ids in file order.
func (t *PerkTable) IDs() []string {
	return t.order
}

func LoadPerkTable(path string) (*PerkTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read perk_list: %w", err)
	}
	return ParsePerkTable(raw)
}

func DefaultPerkTable() *PerkTable {
	t, err := ParsePerkTable(mustStock("perks.yaml"))
	if err != nil {
		panic(fmt.Sprintf("data: stock perk table: %v", err))
	}
	return t
}

func ParsePerkTable(raw []byte) (*PerkTable, error) {
	var f perkListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse perk_list: %w", err)
	}
	t := &PerkTable{perks: make(map[string]*Perk, len(f.Perks))}
	for i := range f.Perks {
		p := &f.Perks[i]
		if p.ID == "" {
			return nil, errors.New("perk_list: perk without id")
		}
		if _, dup := t.perks[p.ID]; dup {
			return nil, fmt.Errorf("perk_list: duplicate id %q", p.ID)
		}
		if p.Cost < 0 {
			return nil, fmt.Errorf("perk_list: %s has negative cost", p.ID)
		}
		t.perks[p.ID] = p
		t.order = append(t.order, p.ID)
	}
	return t, nil
}

// Mul returns m, treating an unset multiplier as 1.
func Mul(m float64) float64 {
	if m == 0 {
		return 1
	}
	return m
}
