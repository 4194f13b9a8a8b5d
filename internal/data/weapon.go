package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WeaponTemplate is the hand-authored base of a weapon. A playable weapon is
// derived from it by applying a rarity tier and an upgrade level.
type WeaponTemplate struct {
	Key         string  `yaml:"key"`
	Name        string  `yaml:"name"`
	Damage      float64 `yaml:"damage"`
	RPM         float64 `yaml:"rpm"`
	Spread      float64 `yaml:"spread"` // full cone width, radians
	Bullets     int     `yaml:"bullets"`
	Magazine    int     `yaml:"magazine"`
	Reserve     int     `yaml:"reserve"`
	ReloadMs    float64 `yaml:"reload_ms"`
	Crit        float64 `yaml:"crit"`
	Pierce      int     `yaml:"pierce"`
	MovePenalty float64 `yaml:"move_penalty"` // 0.0-1.0 fraction of move speed lost
	BulletSpeed float64 `yaml:"bullet_speed"`
	Droppable   bool    `yaml:"droppable"`
	Wonder      bool    `yaml:"wonder"`
}

// Rarity is one quality tier. Index in the table is the tier ordinal.
type Rarity struct {
	Key      string  `yaml:"key"`
	Name     string  `yaml:"name"`
	Damage   float64 `yaml:"damage"`
	FireRate float64 `yaml:"fire_rate"`
	Spread   float64 `yaml:"spread"`
	Ammo     float64 `yaml:"ammo"`
	Reload   float64 `yaml:"reload"`
	Crit     float64 `yaml:"crit"`
	Weight   float64 `yaml:"weight"`
}

type weaponListFile struct {
	Rarities []Rarity         `yaml:"rarities"`
	Weapons  []WeaponTemplate `yaml:"weapons"`
}

// WeaponTable holds templates by key and the rarity tiers in order.
type WeaponTable struct {
	weapons   map[string]*WeaponTemplate
	order     []string // file order, for deterministic rolls
	droppable []string
	rarities  []Rarity
}

func (t *WeaponTable) Get(key string) *WeaponTemplate {
	return t.weapons[key]
}

// Count returns the number of weapon templates.
func (t *WeaponTable) Count() int {
	return len(t.weapons)
}

// Keys returns every template key in file order.
func (t *WeaponTable) Keys() []string {
	return append([]string(nil), t.order...)
}

// Droppable returns the keys eligible for drops and rerolls, in file order.
// Wonder templates are never included.
func (t *WeaponTable) Droppable() []string {
	return t.droppable
}

func (t *WeaponTable) Rarities() []Rarity {
	return t.rarities
}

// Rarity returns tier i, clamped into range.
func (t *WeaponTable) Rarity(i int) Rarity {
	if i < 0 {
		i = 0
	}
	if i >= len(t.rarities) {
		i = len(t.rarities) - 1
	}
	return t.rarities[i]
}

// LoadWeaponTable loads weapon templates and rarity tiers from a YAML file.
func LoadWeaponTable(path string) (*WeaponTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weapon_list: %w", err)
	}
	return ParseWeaponTable(raw)
}

// DefaultWeaponTable returns the embedded stock table.
func DefaultWeaponTable() *WeaponTable {
	t, err := ParseWeaponTable(mustStock("weapons.yaml"))
	if err != nil {
		panic(fmt.Sprintf("data: stock weapon table: %v", err))
	}
	return t
}

func ParseWeaponTable(raw []byte) (*WeaponTable, error) {
	var f weaponListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse weapon_list: %w", err)
	}
	if len(f.Rarities) == 0 {
		return nil, errors.New("weapon_list: no rarity tiers")
	}
	if len(f.Weapons) == 0 {
		return nil, errors.New("weapon_list: no weapons")
	}
	t := &WeaponTable{
		weapons:  make(map[string]*WeaponTemplate, len(f.Weapons)),
		rarities: f.Rarities,
	}
	for i := range f.Weapons {
		w := &f.Weapons[i]
		if w.Key == "" {
			return nil, fmt.Errorf("weapon_list: entry %d has no key", i)
		}
		if _, dup := t.weapons[w.Key]; dup {
			return nil, fmt.Errorf("weapon_list: duplicate key %q", w.Key)
		}
		if w.RPM <= 0 || w.Magazine <= 0 {
			return nil, fmt.Errorf("weapon_list: %s needs positive rpm and magazine", w.Key)
		}
		if w.Bullets < 1 {
			w.Bullets = 1
		}
		t.weapons[w.Key] = w
		t.order = append(t.order, w.Key)
		if w.Droppable && !w.Wonder {
			t.droppable = append(t.droppable, w.Key)
		}
	}
	if len(t.droppable) == 0 {
		return nil, errors.New("weapon_list: no droppable weapons")
	}
	return t, nil
}
