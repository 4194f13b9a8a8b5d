package data

import "github.com/tgarena/survivor/internal/config"

// Tables bundles every static table a run reads.
type Tables struct {
	Weapons *WeaponTable
	Perks   *PerkTable
	Maps    *MapTable
}

// DefaultTables returns the embedded stock tables.
func DefaultTables() *Tables {
	return &Tables{
		Weapons: DefaultWeaponTable(),
		Perks:   DefaultPerkTable(),
		Maps:    DefaultMapTable(),
	}
}

// LoadTables loads each configured table, falling back to the embedded
// copy for empty paths.
func LoadTables(cfg config.DataConfig) (*Tables, error) {
	t := DefaultTables()
	var err error
	if cfg.Weapons != "" {
		if t.Weapons, err = LoadWeaponTable(cfg.Weapons); err != nil {
			return nil, err
		}
	}
	if cfg.Perks != "" {
		if t.Perks, err = LoadPerkTable(cfg.Perks); err != nil {
			return nil, err
		}
	}
	if cfg.Maps != "" {
		if t.Maps, err = LoadMapTable(cfg.Maps); err != nil {
			return nil, err
		}
	}
	return t, nil
}
