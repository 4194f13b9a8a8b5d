package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable of the simulation plus the ambient settings of
// the soak runner. All time values in gameplay sections are milliseconds of
// simulation time.
type Config struct {
	Clock     ClockConfig     `toml:"clock"`
	Player    PlayerConfig    `toml:"player"`
	Combat    CombatConfig    `toml:"combat"`
	Weapon    WeaponConfig    `toml:"weapon"`
	Waves     WaveConfig      `toml:"waves"`
	Loot      LootConfig      `toml:"loot"`
	Pickups   PickupConfig    `toml:"pickups"`
	Economy   EconomyConfig   `toml:"economy"`
	Progress  ProgressConfig  `toml:"progress"`
	Events    EventsConfig    `toml:"events"`
	Quest     QuestConfig     `toml:"quest"`
	Zoom      ZoomConfig      `toml:"zoom"`
	Arena     ArenaConfig     `toml:"arena"`
	Data      DataConfig      `toml:"data"`
	Logging   LoggingConfig   `toml:"logging"`
	Database  DatabaseConfig  `toml:"database"`
	Scripting ScriptingConfig `toml:"scripting"`
	Soak      SoakConfig      `toml:"soak"`
}

type ClockConfig struct {
	FixedStepMs     float64 `toml:"fixed_step_ms"`
	MaxFrameDeltaMs float64 `toml:"max_frame_delta_ms"` // clamp on a single frame's delta
	MaxSubSteps     int     `toml:"max_sub_steps"`
}

type PlayerConfig struct {
	Speed             float64 `toml:"speed"` // units per second
	Radius            float64 `toml:"radius"`
	MaxHP             float64 `toml:"max_hp"`
	MaxArmor          float64 `toml:"max_armor"`
	PlateArmor        float64 `toml:"plate_armor"` // armor restored per plate
	MaxPlates         int     `toml:"max_plates"`  // carried plate charges
	StartPlates       int     `toml:"start_plates"`
	PlatingMs         float64 `toml:"plating_ms"`
	PlatingMoveFactor float64 `toml:"plating_move_factor"`
	InvulnerableMs    float64 `toml:"invulnerable_ms"`
	ArmorAbsorb       float64 `toml:"armor_absorb"` // fraction of a hit taken by armor (0.0-1.0)
}

type CombatConfig struct {
	ZombieHP          float64 `toml:"zombie_hp"`
	ZombieSpeed       float64 `toml:"zombie_speed"`
	ZombieRadius      float64 `toml:"zombie_radius"`
	ContactDamage     float64 `toml:"contact_damage"`
	ContactCooldownMs float64 `toml:"contact_cooldown_ms"`
	EliteHPMul        float64 `toml:"elite_hp_mul"`
	EliteSpeedMul     float64 `toml:"elite_speed_mul"`
	EliteSizeMul      float64 `toml:"elite_size_mul"`
	EliteDamageMul    float64 `toml:"elite_damage_mul"`
	BossContactDamage float64 `toml:"boss_contact_damage"`
	CritMultiplier    float64 `toml:"crit_multiplier"`
	BulletRadius      float64 `toml:"bullet_radius"`
	BulletLifetimeMs  float64 `toml:"bullet_lifetime_ms"`
}

type WeaponConfig struct {
	StartWeapon     string  `toml:"start_weapon"`
	MaxUpgrade      int     `toml:"max_upgrade"`
	UpgradeDamage   float64 `toml:"upgrade_damage"`    // per level, additive to 1.0
	UpgradeFireRate float64 `toml:"upgrade_fire_rate"` // per level, additive to 1.0
	UpgradeSpread   float64 `toml:"upgrade_spread"`    // per level, subtracted from 1.0
	UpgradeAmmo     float64 `toml:"upgrade_ammo"`      // per level, additive to 1.0
	UpgradeReload   float64 `toml:"upgrade_reload"`    // per level, subtracted from 1.0
	RarityWaveShift float64 `toml:"rarity_wave_shift"` // per wave, per tier index
	RarityPerkShift float64 `toml:"rarity_perk_shift"` // loot perk, per tier index
	MaxDropUpgrade  int     `toml:"max_drop_upgrade"`  // upgrade level rolled on drops/rerolls
	AimDeadzone     float64 `toml:"aim_deadzone"`
}

type WaveConfig struct {
	BaseCount          int     `toml:"base_count"`
	CountGrowth        int     `toml:"count_growth"`
	HPGrowth           float64 `toml:"hp_growth"`
	SpeedGrowth        float64 `toml:"speed_growth"`
	MaxSpeedMul        float64 `toml:"max_speed_mul"`
	DamageGrowth       float64 `toml:"damage_growth"` // per wave, additive to 1.0
	EliteChancePerWave float64 `toml:"elite_chance_per_wave"`
	MaxEliteChance     float64 `toml:"max_elite_chance"`
	SpawnMinRadius     float64 `toml:"spawn_min_radius"`
	SpawnMaxRadius     float64 `toml:"spawn_max_radius"`
	ClearXPPerWave     int     `toml:"clear_xp_per_wave"`
	StipendBase        int     `toml:"stipend_base"`
	StipendPerWave     int     `toml:"stipend_per_wave"`
	EventPickupChance  float64 `toml:"event_pickup_chance"`
	EventPickupRadius  float64 `toml:"event_pickup_radius"`
}

// DropChances are independent per-kill probabilities (0.0-1.0).
type DropChances struct {
	Coin   float64 `toml:"coin"`
	Ammo   float64 `toml:"ammo"`
	Plate  float64 `toml:"plate"`
	Weapon float64 `toml:"weapon"`
	Event  float64 `toml:"event"`
	Relic  float64 `toml:"relic"`
}

type LootConfig struct {
	Normal           DropChances `toml:"normal"`
	Elite            DropChances `toml:"elite"`
	ClassicWeaponMul float64     `toml:"classic_weapon_mul"`
	WaveBonus        float64     `toml:"wave_bonus"` // per wave, additive to 1.0
	MaxChance        float64     `toml:"max_chance"`
	BossCoinMul      int         `toml:"boss_coin_mul"`
	BossRelicChance  float64     `toml:"boss_relic_chance"`
	CoinBase         int         `toml:"coin_base"`
	CoinPerWave      int         `toml:"coin_per_wave"`
	EliteCoinMul     int         `toml:"elite_coin_mul"`
	KillXP           int         `toml:"kill_xp"`
	EliteXP          int         `toml:"elite_xp"`
	BossXP           int         `toml:"boss_xp"`
	ScatterMin       float64     `toml:"scatter_min"`
	ScatterMax       float64     `toml:"scatter_max"`
}

type PickupConfig struct {
	LifetimeMs     float64 `toml:"lifetime_ms"`
	RareLifetimeMs float64 `toml:"rare_lifetime_ms"` // weapon and relic pickups
	MagnetRadius   float64 `toml:"magnet_radius"`
	PickupRadius   float64 `toml:"pickup_radius"`
	MagnetSpeed    float64 `toml:"magnet_speed"`
	MaxMagnetSpeed float64 `toml:"max_magnet_speed"`
	Friction       float64 `toml:"friction"` // velocity decay per second
	AmmoRefill     float64 `toml:"ammo_refill"`
}

type EconomyConfig struct {
	StartCoins    int     `toml:"start_coins"`
	UpgradeBase   int     `toml:"upgrade_base"`
	UpgradeStep   int     `toml:"upgrade_step"`
	UpgradeRefill float64 `toml:"upgrade_refill"` // fraction of reserve max granted by an upgrade
	RerollBase    int     `toml:"reroll_base"`
	RerollPerWave int     `toml:"reroll_per_wave"`
	ReloadBase    int     `toml:"reload_base"`
	ReloadPerWave int     `toml:"reload_per_wave"`
}

type ProgressConfig struct {
	LevelBase int `toml:"level_base"`
	LevelStep int `toml:"level_step"`
}

type EventsConfig struct {
	AmmoRefillMs    float64 `toml:"ammo_refill_ms"`
	DoubleRewardsMs float64 `toml:"double_rewards_ms"`
	OneShotKillMs   float64 `toml:"one_shot_kill_ms"`
}

type QuestConfig struct {
	RelicsNeeded int     `toml:"relics_needed"`
	CoinBonus    int     `toml:"coin_bonus"`
	MaxHPBonus   float64 `toml:"max_hp_bonus"`
	WonderWeapon string  `toml:"wonder_weapon"`
}

type ZoomConfig struct {
	Min     float64 `toml:"min"`
	Max     float64 `toml:"max"`
	Step    float64 `toml:"step"`
	Default float64 `toml:"default"`
}

type ArenaConfig struct {
	Radius float64 `toml:"radius"` // fallback circular arena
}

// DataConfig points at YAML tables; empty paths use the embedded defaults.
type DataConfig struct {
	Weapons string `toml:"weapons"`
	Perks   string `toml:"perks"`
	Maps    string `toml:"maps"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables persistence
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type ScriptingConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type SoakConfig struct {
	Runs       int     `toml:"runs"`
	Seed       uint64  `toml:"seed"`
	Mode       string  `toml:"mode"`
	MapKey     string  `toml:"map"`
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	MaxMinutes float64 `toml:"max_minutes"` // simulation minutes per run
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Clock.FixedStepMs <= 0 {
		errs = append(errs, errors.New("clock.fixed_step_ms must be positive"))
	}
	if c.Clock.MaxSubSteps < 1 {
		errs = append(errs, errors.New("clock.max_sub_steps must be at least 1"))
	}
	if c.Zoom.Step <= 0 || c.Zoom.Min > c.Zoom.Max {
		errs = append(errs, fmt.Errorf("zoom range invalid: min=%v max=%v step=%v", c.Zoom.Min, c.Zoom.Max, c.Zoom.Step))
	}
	if c.Quest.RelicsNeeded < 1 {
		errs = append(errs, errors.New("quest.relics_needed must be at least 1"))
	}
	if c.Player.ArmorAbsorb < 0 || c.Player.ArmorAbsorb > 1 {
		errs = append(errs, errors.New("player.armor_absorb must be within 0..1"))
	}
	if c.Waves.SpawnMinRadius > c.Waves.SpawnMaxRadius {
		errs = append(errs, errors.New("waves.spawn_min_radius exceeds spawn_max_radius"))
	}
	return errors.Join(errs...)
}

// Default returns the stock tuning.
func Default() *Config {
	return &Config{
		Clock: ClockConfig{
			FixedStepMs:     1000.0 / 60.0,
			MaxFrameDeltaMs: 1000.0 / 18.0,
			MaxSubSteps:     6,
		},
		Player: PlayerConfig{
			Speed:             260,
			Radius:            18,
			MaxHP:             100,
			MaxArmor:          150,
			PlateArmor:        50,
			MaxPlates:         5,
			StartPlates:       1,
			PlatingMs:         1200,
			PlatingMoveFactor: 0.6,
			InvulnerableMs:    450,
			ArmorAbsorb:       0.75,
		},
		Combat: CombatConfig{
			ZombieHP:          60,
			ZombieSpeed:       70,
			ZombieRadius:      16,
			ContactDamage:     10,
			ContactCooldownMs: 700,
			EliteHPMul:        2.2,
			EliteSpeedMul:     1.2,
			EliteSizeMul:      1.35,
			EliteDamageMul:    1.5,
			BossContactDamage: 25,
			CritMultiplier:    2.0,
			BulletRadius:      4,
			BulletLifetimeMs:  900,
		},
		Weapon: WeaponConfig{
			StartWeapon:     "carbine",
			MaxUpgrade:      5,
			UpgradeDamage:   0.15,
			UpgradeFireRate: 0.04,
			UpgradeSpread:   0.04,
			UpgradeAmmo:     0.10,
			UpgradeReload:   0.05,
			RarityWaveShift: 0.08,
			RarityPerkShift: 0.25,
			MaxDropUpgrade:  2,
			AimDeadzone:     0.05,
		},
		Waves: WaveConfig{
			BaseCount:          7,
			CountGrowth:        2,
			HPGrowth:           1.12,
			SpeedGrowth:        1.03,
			MaxSpeedMul:        1.8,
			DamageGrowth:       0.04,
			EliteChancePerWave: 0.02,
			MaxEliteChance:     0.35,
			SpawnMinRadius:     420,
			SpawnMaxRadius:     620,
			ClearXPPerWave:     50,
			StipendBase:        100,
			StipendPerWave:     25,
			EventPickupChance:  0.3,
			EventPickupRadius:  90,
		},
		Loot: LootConfig{
			Normal:           DropChances{Coin: 0.55, Ammo: 0.08, Plate: 0.05, Weapon: 0.02, Event: 0.012, Relic: 0.006},
			Elite:            DropChances{Coin: 0.9, Ammo: 0.2, Plate: 0.15, Weapon: 0.08, Event: 0.05, Relic: 0.05},
			ClassicWeaponMul: 2.5,
			WaveBonus:        0.01,
			MaxChance:        0.95,
			BossCoinMul:      8,
			BossRelicChance:  0.6,
			CoinBase:         10,
			CoinPerWave:      2,
			EliteCoinMul:     3,
			KillXP:           10,
			EliteXP:          30,
			BossXP:           200,
			ScatterMin:       80,
			ScatterMax:       200,
		},
		Pickups: PickupConfig{
			LifetimeMs:     20000,
			RareLifetimeMs: 40000,
			MagnetRadius:   140,
			PickupRadius:   28,
			MagnetSpeed:    420,
			MaxMagnetSpeed: 1100,
			Friction:       6,
			AmmoRefill:     0.5,
		},
		Economy: EconomyConfig{
			StartCoins:    0,
			UpgradeBase:   500,
			UpgradeStep:   350,
			UpgradeRefill: 0.5,
			RerollBase:    300,
			RerollPerWave: 60,
			ReloadBase:    150,
			ReloadPerWave: 25,
		},
		Progress: ProgressConfig{
			LevelBase: 100,
			LevelStep: 50,
		},
		Events: EventsConfig{
			AmmoRefillMs:    15000,
			DoubleRewardsMs: 15000,
			OneShotKillMs:   15000,
		},
		Quest: QuestConfig{
			RelicsNeeded: 5,
			CoinBonus:    1000,
			MaxHPBonus:   25,
			WonderWeapon: "wonder_ray",
		},
		Zoom: ZoomConfig{
			Min:     1.0,
			Max:     3.0,
			Step:    0.5,
			Default: 1.5,
		},
		Arena: ArenaConfig{
			Radius: 1400,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Scripting: ScriptingConfig{
			Enabled: true,
			Dir:     "scripts",
		},
		Soak: SoakConfig{
			Runs:       5,
			Seed:       1,
			Mode:       "economy",
			Width:      390,
			Height:     844,
			MaxMinutes: 15,
		},
	}
}
