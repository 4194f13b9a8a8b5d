package soak

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgarena/survivor/internal/config"
	"github.com/tgarena/survivor/internal/hook"
	"github.com/tgarena/survivor/internal/sim"
	"go.uber.org/zap"
)

type recorder struct {
	move, aim [2]float64
	shooting  bool
	calls     []string
}

func (r *recorder) SetMove(x, y float64) { r.move = [2]float64{x, y} }
func (r *recorder) SetAim(x, y float64)  { r.aim = [2]float64{x, y} }
func (r *recorder) SetShooting(on bool)  { r.shooting = on }

func (r *recorder) Reload() bool           { return r.call("reload") }
func (r *recorder) BuyUpgrade() bool       { return r.call("upgrade") }
func (r *recorder) BuyReload() bool        { return r.call("buy_reload") }
func (r *recorder) UsePlate() bool         { return r.call("plate") }
func (r *recorder) BuyPerk(id string) bool { return r.call("perk:" + id) }

func (r *recorder) call(name string) bool {
	r.calls = append(r.calls, name)
	return true
}

func frame() sim.Snapshot {
	return sim.Snapshot{
		HUD: sim.HUD{
			MaxArmor: 150,
			Armor:    150,
			Weapon:   sim.WeaponView{Magazine: 10, Reserve: 50},
			Shop: sim.ShopView{
				Open:        true,
				UpgradeCost: 500,
				CanUpgrade:  true,
				ReloadCost:  150,
				Perks:       []sim.PerkView{{ID: "vitality", Cost: 800}},
			},
		},
	}
}

func TestBotAimsAndFleesNearestZombie(t *testing.T) {
	f := frame()
	f.Zombies = []sim.ZombieView{
		{X: 400, Y: 0, Radius: 16},
		{X: 0, Y: 100, Radius: 16},
	}
	r := &recorder{}
	NewBot().Act(r, f)

	assert.True(t, r.shooting)
	assert.Equal(t, [2]float64{0, 100}, r.aim)
	assert.InDelta(t, -1, r.move[1], 1e-12, "backs away from the close one")
	assert.Empty(t, r.calls)
}

func TestBotCollectsWhenSafe(t *testing.T) {
	f := frame()
	f.Pickups = []sim.PickupView{{X: 30, Y: 40}, {X: 300, Y: 0}}
	r := &recorder{}
	NewBot().Act(r, f)

	assert.False(t, r.shooting)
	assert.InDelta(t, 0.6, r.move[0], 1e-12)
	assert.InDelta(t, 0.8, r.move[1], 1e-12)
}

func TestBotShopping(t *testing.T) {
	tests := []struct {
		name string
		edit func(*sim.Snapshot)
		want []string
	}{
		{"broke", func(f *sim.Snapshot) { f.HUD.Coins = 100 }, nil},
		{"upgrade first", func(f *sim.Snapshot) { f.HUD.Coins = 5000 }, []string{"upgrade"}},
		{"perk when capped", func(f *sim.Snapshot) {
			f.HUD.Coins = 5000
			f.HUD.Shop.CanUpgrade = false
		}, []string{"perk:vitality"}},
		{"out of ammo", func(f *sim.Snapshot) {
			f.HUD.Coins = 5000
			f.HUD.Weapon = sim.WeaponView{}
		}, []string{"buy_reload"}},
		{"plates when armor low", func(f *sim.Snapshot) {
			f.HUD.Armor = 10
			f.HUD.Plates = 1
		}, []string{"plate"}},
		{"empty magazine reloads", func(f *sim.Snapshot) {
			f.HUD.Weapon.Magazine = 0
		}, []string{"reload"}},
		{"closed shop", func(f *sim.Snapshot) {
			f.HUD.Coins = 5000
			f.HUD.Shop.Open = false
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := frame()
			tt.edit(&f)
			r := &recorder{}
			NewBot().Act(r, f)
			assert.Equal(t, tt.want, r.calls)
		})
	}
}

func soakConfig() *config.Config {
	cfg := config.Default()
	cfg.Soak.Mode = "economy"
	cfg.Soak.MaxMinutes = 0.25
	cfg.Soak.Width = 800
	cfg.Soak.Height = 600
	cfg.Economy.StartCoins = 3000
	return cfg
}

func TestRunIsDeterministic(t *testing.T) {
	cfg := soakConfig()
	r := NewRunner(cfg, nil, nil, zap.NewNop())

	a, err := r.Run(context.Background(), 11)
	require.NoError(t, err)
	b, err := r.Run(context.Background(), 11)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, uint64(11), a.Run.Seed)
	assert.Equal(t, "economy", a.Run.Mode)
	assert.Positive(t, a.Run.Wave)
	assert.LessOrEqual(t, a.Run.ElapsedMs, 15_000+2*cfg.Clock.FixedStepMs)
	require.NotEmpty(t, a.Ledger)
	assert.Equal(t, "upgrade", a.Ledger[0].Item)
	assert.Equal(t, 500, a.Ledger[0].Cost)
	assert.Equal(t, 2500, a.Ledger[0].Balance)
}

func TestRunInstallsHooksPerRun(t *testing.T) {
	cfg := soakConfig()
	cfg.Soak.Mode = "classic"
	cfg.Soak.MaxMinutes = 0.05

	sets := 0
	ticks := 0
	r := NewRunner(cfg, nil, func() hook.Set {
		sets++
		return hook.Set{OnTick: func(hook.TickInfo) (hook.TickResult, error) {
			ticks++
			return hook.TickResult{}, nil
		}}
	}, zap.NewNop())

	res, err := r.Run(context.Background(), 1)
	require.NoError(t, err)
	_, err = r.Run(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, sets)
	assert.Positive(t, ticks)
	assert.Zero(t, res.Run.HookFailures)
	assert.Empty(t, res.Ledger, "no shop in classic")
}

func TestRunHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(soakConfig(), nil, nil, zap.NewNop()).Run(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsUnknownMode(t *testing.T) {
	cfg := soakConfig()
	cfg.Soak.Mode = "arcade"
	_, err := NewRunner(cfg, nil, nil, zap.NewNop()).Run(context.Background(), 1)
	assert.Error(t, err)
}
