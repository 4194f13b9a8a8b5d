package sim

import (
	"github.com/tgarena/survivor/internal/core/ecs"
	"github.com/tgarena/survivor/internal/vmath"
	"github.com/tgarena/survivor/internal/world"
)

// Snapshot is a read-only frame for drawing. Every slice is freshly
// allocated, so a caller may keep a snapshot across later steps.
type Snapshot struct {
	Alpha   float64
	Run     RunInfo
	HUD     HUD
	Camera  Camera
	Player  PlayerView
	Bullets []BulletView
	Zombies []ZombieView
	Pickups []PickupView
}

type RunInfo struct {
	Mode         string
	MapKey       string
	Character    string
	Skin         string
	Seed         uint64
	Running      bool
	GameOver     bool
	HookFailures int
}

type HUD struct {
	TimeMs       float64
	Wave         int
	Kills        int
	Coins        int
	CoinsText    string // grouped for display, "1,234"
	XP           int
	XPText       string
	Level        int
	NextLevelXP  int
	Relics       int
	RelicsNeeded int
	Wonder       bool

	HP              float64
	MaxHP           float64
	Armor           float64
	MaxArmor        float64
	Plates          int
	MaxPlates       int
	Plating         bool
	PlatingProgress float64

	Weapon WeaponView
	Events []EventView
	Shop   ShopView
}

type WeaponView struct {
	Key            string
	Name           string
	Rarity         int
	RarityName     string
	Level          int
	Wonder         bool
	Magazine       int
	MagazineMax    int
	Reserve        int
	Reloading      bool
	ReloadProgress float64
}

type EventView struct {
	Kind        string
	Active      bool
	RemainingMs float64
}

// ShopView carries current prices so a host never duplicates the formulas.
type ShopView struct {
	Open        bool
	UpgradeCost int
	CanUpgrade  bool
	RerollCost  int
	ReloadCost  int
	Perks       []PerkView
}

type PerkView struct {
	ID    string
	Name  string
	Cost  int
	Owned bool
}

type Camera struct {
	X, Y   float64
	Zoom   float64
	Width  float64
	Height float64
}

type PlayerView struct {
	X, Y    float64
	Radius  float64
	FacingX float64
	FacingY float64
	Hurt    bool // inside the invulnerability window
}

type BulletView struct {
	ID     uint64
	X, Y   float64
	Radius float64
	Crit   bool
}

type ZombieView struct {
	ID     uint64
	X, Y   float64
	Radius float64
	HP     float64
	MaxHP  float64
	Elite  bool
	Boss   bool
	Tag    string
}

type PickupView struct {
	ID     uint64
	X, Y   float64
	Kind   string
	Weapon string // template key for weapon pickups
	Rarity int
}

// FrameData projects the current and previous step into a Snapshot using
// the interpolation factor left by the last UpdateFrame. It never mutates
// the world.
func (s *Simulation) FrameData() Snapshot {
	ws := s.world
	now := ws.NowMs()
	a := s.alpha

	pp := vmath.Lerp(ws.Player.Prev, ws.Player.Pos, a)
	snap := Snapshot{
		Alpha: a,
		Run: RunInfo{
			Mode:         string(ws.Run.Mode),
			MapKey:       ws.Run.MapKey,
			Character:    ws.Run.Character,
			Skin:         ws.Run.Skin,
			Seed:         s.seed,
			Running:      s.running,
			GameOver:     ws.Run.GameOver,
			HookFailures: s.hooks.Failures(),
		},
		HUD: s.hud(now),
		Camera: Camera{
			X:      pp.X,
			Y:      pp.Y,
			Zoom:   s.zoom,
			Width:  s.width,
			Height: s.height,
		},
		Player: PlayerView{
			X:       pp.X,
			Y:       pp.Y,
			Radius:  ws.Player.Radius,
			FacingX: ws.Facing.X,
			FacingY: ws.Facing.Y,
			Hurt:    now-ws.Player.LastHitMs < s.cfg.Player.InvulnerableMs,
		},
		Bullets: make([]BulletView, 0, ws.Bullets.Len()),
		Zombies: make([]ZombieView, 0, ws.Zombies.Len()),
		Pickups: make([]PickupView, 0, ws.Pickups.Len()),
	}

	ws.Bullets.Each(func(id ecs.EntityID, b *world.Bullet) {
		if ws.Gone(id) {
			return
		}
		p := vmath.Lerp(b.Prev, b.Pos, a)
		snap.Bullets = append(snap.Bullets, BulletView{ID: uint64(id), X: p.X, Y: p.Y, Radius: b.Radius, Crit: b.Crit})
	})
	ws.Zombies.Each(func(id ecs.EntityID, z *world.Zombie) {
		if ws.Gone(id) {
			return
		}
		p := vmath.Lerp(z.Prev, z.Pos, a)
		snap.Zombies = append(snap.Zombies, ZombieView{
			ID:     uint64(id),
			X:      p.X,
			Y:      p.Y,
			Radius: z.Radius,
			HP:     z.HP,
			MaxHP:  z.MaxHP,
			Elite:  z.Elite,
			Boss:   z.Boss,
			Tag:    z.Tag,
		})
	})
	ws.Pickups.Each(func(id ecs.EntityID, pk *world.Pickup) {
		if ws.Gone(id) {
			return
		}
		p := vmath.Lerp(pk.Prev, pk.Pos, a)
		v := PickupView{ID: uint64(id), X: p.X, Y: p.Y, Kind: pk.Kind.String()}
		if pk.Kind == world.PickupWeapon {
			v.Weapon = pk.Payload.Weapon.Key
			v.Rarity = pk.Payload.Weapon.Rarity
		}
		snap.Pickups = append(snap.Pickups, v)
	})
	return snap
}

func (s *Simulation) hud(now float64) HUD {
	ws := s.world
	pl := &ws.Player
	w := &ws.Weapon

	h := HUD{
		TimeMs:       now,
		Wave:         ws.Run.Wave,
		Kills:        ws.Run.Kills,
		Coins:        ws.Coins(),
		CoinsText:    s.printer.Sprintf("%d", ws.Coins()),
		XP:           ws.XP(),
		XPText:       s.printer.Sprintf("%d", ws.XP()),
		Level:        ws.Level(),
		NextLevelXP:  ws.NextLevelXP(),
		Relics:       ws.Relics(),
		RelicsNeeded: ws.RelicsNeeded(),
		Wonder:       ws.WonderUnlocked(),

		HP:              pl.HP(),
		MaxHP:           pl.MaxHP(),
		Armor:           pl.Armor(),
		MaxArmor:        pl.MaxArmor(),
		Plates:          pl.Plates(),
		MaxPlates:       pl.MaxPlates(),
		Plating:         pl.Plating == world.Plating,
		PlatingProgress: pl.PlatingProgress(now),

		Weapon: WeaponView{
			Key:            w.Key,
			Name:           w.Name,
			Rarity:         w.Rarity,
			RarityName:     w.RarityName,
			Level:          w.Level,
			Wonder:         w.Wonder,
			Magazine:       w.Magazine(),
			MagazineMax:    w.MagazineMax,
			Reserve:        w.Reserve(),
			Reloading:      w.Reload == world.Reloading,
			ReloadProgress: w.ReloadProgress(now),
		},
		Events: make([]EventView, 0, len(world.EventKinds)),
	}
	for _, k := range world.EventKinds {
		h.Events = append(h.Events, EventView{
			Kind:        k.String(),
			Active:      ws.Events.Active(k, now),
			RemainingMs: ws.Events.Remaining(k, now),
		})
	}

	h.Shop = ShopView{
		Open:        ws.Economy() && s.running,
		UpgradeCost: s.shop.UpgradeCost(),
		CanUpgrade:  s.shop.CanUpgrade(),
		RerollCost:  s.shop.RerollCost(),
		ReloadCost:  s.shop.ReloadCost(),
		Perks:       make([]PerkView, 0, s.tables.Perks.Count()),
	}
	for _, id := range s.tables.Perks.IDs() {
		p := s.tables.Perks.Get(id)
		h.Shop.Perks = append(h.Shop.Perks, PerkView{ID: p.ID, Name: p.Name, Cost: p.Cost, Owned: ws.Perks.Owned(id)})
	}
	return h
}
