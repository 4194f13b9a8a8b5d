package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgarena/survivor/internal/core/event"
	"github.com/tgarena/survivor/internal/hook"
	"github.com/tgarena/survivor/internal/vmath"
	"github.com/tgarena/survivor/internal/world"
)

func TestBuyUpgradeNeedsCoins(t *testing.T) {
	d := newDeps(t, world.ModeEconomy, vmath.NewSequence(0.5))
	ws := d.World
	shop := NewShop(d)

	require.Equal(t, 0, ws.Coins())
	assert.False(t, shop.BuyUpgrade())
	assert.Equal(t, 0, ws.Weapon.Level)

	ws.AddCoins(shop.UpgradeCost())
	ws.Weapon.SetAmmo(32, 0)
	require.True(t, shop.BuyUpgrade())
	assert.Equal(t, 1, ws.Weapon.Level)
	assert.Equal(t, 0, ws.Coins())
	assert.Equal(t, 850, shop.UpgradeCost())
	assert.Equal(t, int(float64(ws.Weapon.ReserveMax)*0.5+0.5), ws.Weapon.Reserve())
}

func TestBuyUpgradeCapped(t *testing.T) {
	d := newDeps(t, world.ModeEconomy, vmath.NewSequence(0.5))
	ws := d.World
	shop := NewShop(d)
	ws.AddCoins(1_000_000)
	for i := 0; i < d.Config.Weapon.MaxUpgrade; i++ {
		require.True(t, shop.BuyUpgrade())
	}
	coins := ws.Coins()
	assert.False(t, shop.CanUpgrade())
	assert.False(t, shop.BuyUpgrade())
	assert.Equal(t, coins, ws.Coins())
}

func TestShopClosedOutsideEconomy(t *testing.T) {
	d := newDeps(t, world.ModeClassic, vmath.NewSequence(0.5))
	ws := d.World
	shop := NewShop(d)
	ws.AddCoins(100_000)
	ws.Weapon.SetAmmo(1, 1)

	assert.False(t, shop.BuyUpgrade())
	assert.False(t, shop.RerollWeapon())
	assert.False(t, shop.BuyReload())
	assert.False(t, shop.UsePlate())
	assert.False(t, shop.BuyPerk("vitality"))
	assert.Equal(t, 100_000, ws.Coins())
}

func TestBuyPerkOnce(t *testing.T) {
	d := newDeps(t, world.ModeEconomy, vmath.NewSequence(0.5))
	ws := d.World
	shop := NewShop(d)
	ws.AddCoins(2000)

	require.True(t, shop.BuyPerk("vitality"))
	assert.Equal(t, 150.0, ws.Player.MaxHP())
	assert.Equal(t, 500, ws.Coins())

	assert.False(t, shop.BuyPerk("vitality"))
	assert.Equal(t, 500, ws.Coins())
	assert.Equal(t, 150.0, ws.Player.MaxHP())

	assert.False(t, shop.BuyPerk("no_such_perk"))
	assert.False(t, shop.BuyPerk("bandolier"), "cannot afford")
}

func TestBuyPerkRestatsWeapon(t *testing.T) {
	d := newDeps(t, world.ModeEconomy, vmath.NewSequence(0.5))
	ws := d.World
	ws.AddCoins(10_000)
	shop := NewShop(d)

	require.True(t, shop.BuyPerk("bandolier"))
	assert.Equal(t, 40, ws.Weapon.MagazineMax)
	assert.Equal(t, 1, ws.Weapon.Pierce)
	assert.Equal(t, 32, ws.Weapon.Magazine(), "ammo carries over")

	require.True(t, shop.BuyPerk("plate_carrier"))
	assert.Equal(t, 3, ws.Player.Plates())
}

func TestBuyPerkHook(t *testing.T) {
	d := newDeps(t, world.ModeEconomy, vmath.NewSequence(0.5))
	ws := d.World
	ws.AddCoins(1500)
	var got []hook.PerkInfo
	d.Hooks.Install(hook.Set{OnPerkPurchase: func(p hook.PerkInfo) (hook.PerkResult, error) {
		got = append(got, p)
		return hook.PerkResult{Coins: 40, Plates: 1}, nil
	}})

	require.True(t, NewShop(d).BuyPerk("vitality"))
	require.Len(t, got, 1)
	assert.Equal(t, "vitality", got[0].ID)
	assert.Equal(t, 0, got[0].Coins)
	assert.Equal(t, 40, ws.Coins())
	assert.Equal(t, 2, ws.Player.Plates())
}

func TestRerollNeverRollsWonder(t *testing.T) {
	d := newDeps(t, world.ModeEconomy, vmath.NewRand(3))
	ws := d.World
	shop := NewShop(d)
	ws.AddCoins(1_000_000)
	for i := 0; i < 200; i++ {
		require.True(t, shop.RerollWeapon())
		assert.False(t, ws.Weapon.Wonder)
		assert.Contains(t, d.Weapons.Droppable(), ws.Weapon.Key)
		assert.Equal(t, ws.Weapon.MagazineMax, ws.Weapon.Magazine())
	}
}

func TestRerollCostScalesWithWave(t *testing.T) {
	d := newDeps(t, world.ModeEconomy, vmath.NewSequence(0.5))
	shop := NewShop(d)
	assert.Equal(t, 300, shop.RerollCost())
	assert.Equal(t, 150, shop.ReloadCost())
	d.World.Run.Wave = 4
	assert.Equal(t, 540, shop.RerollCost())
	assert.Equal(t, 250, shop.ReloadCost())
}

func TestBuyReload(t *testing.T) {
	d := newDeps(t, world.ModeEconomy, vmath.NewSequence(0.5))
	ws := d.World
	shop := NewShop(d)
	ws.AddCoins(1000)

	assert.False(t, shop.BuyReload(), "already full")
	ws.Weapon.SetAmmo(2, 10)
	require.True(t, ws.Weapon.StartReload(0))

	var purchases []event.Purchase
	event.Subscribe(d.Bus, func(p event.Purchase) { purchases = append(purchases, p) })
	require.True(t, shop.BuyReload())
	assert.Equal(t, world.ReloadIdle, ws.Weapon.Reload)
	assert.Equal(t, 32, ws.Weapon.Magazine())
	assert.Equal(t, 160, ws.Weapon.Reserve())
	assert.Equal(t, 850, ws.Coins())

	d.Bus.Flush()
	require.Len(t, purchases, 1)
	assert.Equal(t, "reload", purchases[0].Item)
}

func TestUsePlateConsumesChargeOnCompletion(t *testing.T) {
	d := newDeps(t, world.ModeEconomy, vmath.NewSequence(0.5))
	ws := d.World
	r := runnerOf(NewWeaponSystem(d))
	shop := NewShop(d)

	require.True(t, shop.UsePlate())
	assert.False(t, shop.UsePlate(), "already plating")
	assert.Equal(t, 1, ws.Player.Plates())

	for ws.Player.Plating == world.Plating {
		tick(d, r)
	}
	assert.Equal(t, 0, ws.Player.Plates())
	assert.Equal(t, d.Config.Player.PlateArmor, ws.Player.Armor())
	assert.False(t, shop.UsePlate(), "no charges")
}

func TestPlatingSlowsMovement(t *testing.T) {
	d := newDeps(t, world.ModeEconomy, vmath.NewSequence(0.5))
	normal := PlayerSpeed(d)
	require.True(t, NewShop(d).UsePlate())
	assert.InDelta(t, normal*d.Config.Player.PlatingMoveFactor, PlayerSpeed(d), 1e-9)
}

func TestSwitchWeapon(t *testing.T) {
	d := newDeps(t, world.ModeClassic, vmath.NewSequence(0.5))
	ws := d.World

	assert.False(t, SwitchWeapon(d, "carbine"), "already held")
	assert.False(t, SwitchWeapon(d, "wonder_ray"), "locked")
	assert.False(t, SwitchWeapon(d, "nope"))

	ws.Weapon.StartReload(0)
	require.True(t, SwitchWeapon(d, "shotgun"))
	assert.Equal(t, "shotgun", ws.Weapon.Key)
	assert.Equal(t, world.ReloadIdle, ws.Weapon.Reload)
	assert.Equal(t, 6, ws.Weapon.Magazine(), "clamped to the smaller magazine")
}
