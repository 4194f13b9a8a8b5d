package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgarena/survivor/internal/config"
	"github.com/tgarena/survivor/internal/core/ecs"
	"github.com/tgarena/survivor/internal/core/event"
	coresys "github.com/tgarena/survivor/internal/core/system"
	"github.com/tgarena/survivor/internal/data"
	"github.com/tgarena/survivor/internal/vmath"
	"github.com/tgarena/survivor/internal/world"
	"go.uber.org/zap"
)

func newDeps(t *testing.T, mode world.Mode, src vmath.Source) *Deps {
	t.Helper()
	cfg := config.Default()
	tables := data.DefaultTables()
	ws := world.NewState(cfg)
	ws.Reset(world.Run{Mode: mode, Running: true}, world.CircleArena{Radius: cfg.Arena.Radius})
	bus := event.NewBus()
	log := zap.NewNop()
	d := &Deps{
		Config:  cfg,
		Log:     log,
		World:   ws,
		Weapons: tables.Weapons,
		Perks:   tables.Perks,
		Rand:    src,
		Bus:     bus,
		Hooks:   NewHooks(log, bus),
	}
	require.True(t, Equip(d, world.WeaponRoll{Key: "carbine"}))
	return d
}

// tick advances the clock and runs one step the way the simulation does.
func tick(d *Deps, r *coresys.Runner) {
	d.World.Advance()
	d.Bus.SwapBuffers()
	d.Bus.DispatchAll()
	r.Tick(0)
}

func runnerOf(systems ...coresys.System) *coresys.Runner {
	r := coresys.NewRunner()
	for _, s := range systems {
		r.Register(s)
	}
	return r
}

func TestContinuousFireEmptiesThenReloads(t *testing.T) {
	d := newDeps(t, world.ModeClassic, vmath.NewSequence(0.5))
	ws := d.World
	r := runnerOf(NewWeaponSystem(d))
	ws.Input.Shooting = true
	ws.Input.Aim = vmath.V(1, 0)

	interval := ws.Weapon.Interval()
	firstShot, emptiedAt := -1.0, -1.0
	for i := 0; i < 1000 && ws.Weapon.Reload == world.ReloadIdle; i++ {
		tick(d, r)
		if firstShot < 0 && ws.Weapon.Magazine() < 32 {
			firstShot = ws.NowMs()
		}
		if emptiedAt < 0 && ws.Weapon.Magazine() == 0 {
			emptiedAt = ws.NowMs()
		}
	}
	require.Equal(t, world.Reloading, ws.Weapon.Reload)
	assert.InDelta(t, 31*interval, emptiedAt-firstShot, 1e-6)
	assert.Equal(t, 32, ws.Bullets.Len())
	assert.InDelta(t, emptiedAt+d.Config.Clock.FixedStepMs, ws.Weapon.ReloadStartMs, 1e-6, "auto-reload on the next trigger pull")

	ws.Input.Shooting = false
	start := ws.Weapon.ReloadStartMs
	for ws.Weapon.Reload == world.Reloading {
		tick(d, r)
	}
	elapsed := ws.NowMs() - start
	assert.GreaterOrEqual(t, elapsed+1e-6, ws.Weapon.ReloadMs)
	assert.Less(t, elapsed, ws.Weapon.ReloadMs+d.Config.Clock.FixedStepMs)
	assert.Equal(t, 32, ws.Weapon.Magazine())
	assert.Equal(t, 128, ws.Weapon.Reserve())
}

func TestAmmoRefillEventMakesShotsFree(t *testing.T) {
	d := newDeps(t, world.ModeClassic, vmath.NewSequence(0.5))
	ws := d.World
	r := runnerOf(NewWeaponSystem(d))
	ws.Weapon.SetAmmo(3, 0)
	ws.Events.Activate(world.EventAmmoRefill, 0, 1000)
	ws.Input.Shooting = true

	for i := 0; i < 30; i++ {
		tick(d, r)
	}
	assert.Equal(t, ws.Weapon.MagazineMax, ws.Weapon.Magazine())
	assert.Equal(t, ws.Weapon.ReserveMax, ws.Weapon.Reserve())
	assert.Equal(t, 5, ws.Bullets.Len())
}

func TestManualReloadBlockedWhenFull(t *testing.T) {
	d := newDeps(t, world.ModeClassic, vmath.NewSequence(0.5))
	assert.False(t, ManualReload(d))

	d.World.Weapon.SetAmmo(10, 160)
	assert.True(t, ManualReload(d))
	assert.False(t, ManualReload(d))
}

func TestWaveCountGrowth(t *testing.T) {
	d := newDeps(t, world.ModeEconomy, vmath.NewSequence(0.5))
	ws := d.World
	waves := NewWaveSystem(d)

	var started []event.WaveStarted
	event.Subscribe(d.Bus, func(e event.WaveStarted) { started = append(started, e) })

	waves.Update(0)
	assert.Equal(t, 1, ws.Run.Wave)
	assert.Equal(t, 7, ws.Zombies.Len())

	waves.Update(0)
	assert.Equal(t, 1, ws.Run.Wave, "no advance while zombies remain")

	ws.Zombies.Each(func(id ecs.EntityID, _ *world.Zombie) { ws.Despawn(id) })
	ws.ECS.FlushDestroyQueue()
	waves.Update(0)

	assert.Equal(t, 2, ws.Run.Wave)
	assert.Equal(t, 9, ws.Zombies.Len())
	assert.Equal(t, 50, ws.XP())
	assert.Equal(t, 125, ws.Coins(), "economy stipend for clearing wave 1")

	d.Bus.Flush()
	require.Len(t, started, 2)
	assert.Equal(t, 9, started[1].Count)
}

func TestScaleFor(t *testing.T) {
	d := newDeps(t, world.ModeClassic, vmath.NewSequence(0.5))
	s1 := ScaleFor(d, 1)
	assert.Equal(t, 7, s1.Count)
	assert.Equal(t, 1.0, s1.HPMul)
	assert.Equal(t, 0.0, s1.EliteChance)

	s5 := ScaleFor(d, 5)
	assert.Equal(t, 15, s5.Count)
	assert.InDelta(t, 1.12*1.12*1.12*1.12, s5.HPMul, 1e-9)
	assert.InDelta(t, 0.08, s5.EliteChance, 1e-9)

	s99 := ScaleFor(d, 99)
	assert.Equal(t, d.Config.Waves.MaxSpeedMul, s99.SpeedMul)
	assert.Equal(t, d.Config.Waves.MaxEliteChance, s99.EliteChance)
}

func TestFifthRelicUnlocksWonderInSameStep(t *testing.T) {
	d := newDeps(t, world.ModeEconomy, vmath.NewSequence(0.5))
	ws := d.World
	for i := 0; i < 4; i++ {
		require.True(t, ws.AddRelic())
	}
	ws.SpawnPickup(world.Pickup{Pos: ws.Player.Pos, Kind: world.PickupRelic, LifeMs: 1000})

	tick(d, NewPipeline(d))

	assert.True(t, ws.WonderUnlocked())
	assert.Equal(t, 5, ws.Relics())
	assert.Equal(t, "wonder_ray", ws.Weapon.Key)
	assert.True(t, ws.Weapon.Wonder)
	assert.Equal(t, len(d.Weapons.Rarities())-1, ws.Weapon.Rarity)
	assert.Equal(t, ws.Weapon.MagazineMax, ws.Weapon.Magazine())
	assert.Equal(t, 1000, ws.Coins())
	assert.Equal(t, 125.0, ws.Player.MaxHP())

	ws.SpawnPickup(world.Pickup{Pos: ws.Player.Pos, Kind: world.PickupRelic, LifeMs: 1000})
	tick(d, NewPipeline(d))
	assert.Equal(t, 5, ws.Relics())
	assert.Equal(t, 1000, ws.Coins(), "quest pays once")
}

func TestDamageArmorThenHPAndCancelsPlating(t *testing.T) {
	d := newDeps(t, world.ModeEconomy, vmath.NewSequence(0.5))
	ws := d.World
	p := &ws.Player
	p.AddArmor(20)
	require.True(t, NewShop(d).UsePlate())
	require.Equal(t, world.Plating, p.Plating)

	require.True(t, DamagePlayer(d, 40))
	assert.Equal(t, 0.0, p.Armor())
	assert.Equal(t, 80.0, p.HP())
	assert.Equal(t, world.PlatingIdle, p.Plating)
	assert.Equal(t, 1, p.Plates())

	assert.False(t, DamagePlayer(d, 40), "invulnerable right after a hit")
	assert.Equal(t, 80.0, p.HP())

	for ws.NowMs() < d.Config.Player.InvulnerableMs {
		ws.Advance()
	}
	assert.True(t, DamagePlayer(d, 10))
	assert.Equal(t, 70.0, p.HP())
}

func TestArmorAbsorbsFractionWhenPlentiful(t *testing.T) {
	d := newDeps(t, world.ModeClassic, vmath.NewSequence(0.5))
	p := &d.World.Player
	p.AddArmor(100)

	require.True(t, DamagePlayer(d, 40))
	assert.Equal(t, 70.0, p.Armor())
	assert.Equal(t, 90.0, p.HP())
}

func TestLethalDamageEndsRun(t *testing.T) {
	d := newDeps(t, world.ModeClassic, vmath.NewSequence(0.5))
	ws := d.World
	var died []event.PlayerDied
	event.Subscribe(d.Bus, func(e event.PlayerDied) { died = append(died, e) })

	require.True(t, DamagePlayer(d, 1000))
	assert.True(t, ws.Player.Dead())
	assert.False(t, ws.Run.Running)
	assert.True(t, ws.Run.GameOver)
	assert.False(t, DamagePlayer(d, 10))

	d.Bus.Flush()
	assert.Len(t, died, 1)
}

func TestPipelineInvariantsHoldOverLongRun(t *testing.T) {
	d := newDeps(t, world.ModeEconomy, vmath.NewRand(7))
	ws := d.World
	r := NewPipeline(d)
	shop := NewShop(d)
	ids := d.Perks.IDs()

	wonder := false
	for i := 0; i < 20000 && !ws.Run.GameOver; i++ {
		ang := float64(i) / 180
		ws.Input.Move = vmath.FromAngle(ang)
		ws.Input.Aim = vmath.FromAngle(-ang * 3)
		ws.Input.Shooting = true
		if i%240 == 0 {
			shop.BuyUpgrade()
			shop.BuyPerk(ids[(i/240)%len(ids)])
			shop.UsePlate()
			shop.BuyReload()
		}
		tick(d, r)

		w := &ws.Weapon
		require.GreaterOrEqual(t, w.Magazine(), 0)
		require.LessOrEqual(t, w.Magazine(), w.MagazineMax)
		require.GreaterOrEqual(t, w.Reserve(), 0)
		require.LessOrEqual(t, w.Reserve(), w.ReserveMax)
		require.GreaterOrEqual(t, ws.Player.HP(), 0.0)
		require.LessOrEqual(t, ws.Player.HP(), ws.Player.MaxHP())
		require.GreaterOrEqual(t, ws.Player.Armor(), 0.0)
		require.LessOrEqual(t, ws.Player.Armor(), ws.Player.MaxArmor())
		require.GreaterOrEqual(t, ws.Relics(), 0)
		require.LessOrEqual(t, ws.Relics(), 5)
		if wonder {
			require.True(t, ws.WonderUnlocked())
		}
		wonder = ws.WonderUnlocked()
	}
	assert.Greater(t, ws.Run.Kills, 0)
	assert.GreaterOrEqual(t, ws.Run.Wave, 1)
}
