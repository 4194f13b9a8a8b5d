package system

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgarena/survivor/internal/core/ecs"
	"github.com/tgarena/survivor/internal/core/event"
	"github.com/tgarena/survivor/internal/data"
	"github.com/tgarena/survivor/internal/hook"
	"github.com/tgarena/survivor/internal/vmath"
	"github.com/tgarena/survivor/internal/world"
)

// noDrops never passes a drop roll.
func noDrops() vmath.Source { return vmath.NewSequence(0.99) }

func fireAt(ws *world.State, from, to vmath.Vec2, dmg float64, pierce int) ecs.EntityID {
	id := ws.SpawnBullet(world.Bullet{Pos: to, Damage: dmg, Pierce: pierce, Radius: 4, LifeMs: 900})
	b, _ := ws.Bullets.Get(id)
	b.Prev = from
	return id
}

func TestBulletPierceHitsInPathOrder(t *testing.T) {
	cases := []struct {
		name       string
		pierce     int
		wantKills  int
		wantFarHP  float64
		bulletLeft bool
	}{
		{"no pierce", 0, 1, 10, false},
		{"pierce one", 1, 2, 0, false},
		{"pierce spare", 3, 2, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newDeps(t, world.ModeClassic, noDrops())
			ws := d.World
			far := ws.SpawnZombie(world.Zombie{Pos: vmath.V(70, 300), HP: 10, MaxHP: 10, Radius: 16})
			ws.SpawnZombie(world.Zombie{Pos: vmath.V(30, 300), HP: 10, MaxHP: 10, Radius: 16})
			bid := fireAt(ws, vmath.V(0, 300), vmath.V(100, 300), 24, tc.pierce)

			NewCombatSystem(d, NewLoot(d)).Update(0)

			assert.Equal(t, tc.wantKills, ws.Run.Kills)
			z, _ := ws.Zombies.Get(far)
			assert.Equal(t, tc.wantFarHP, z.HP)
			assert.Equal(t, tc.bulletLeft, !ws.Gone(bid))
		})
	}
}

func TestOneShotKillIsLethal(t *testing.T) {
	d := newDeps(t, world.ModeClassic, noDrops())
	ws := d.World
	zid := ws.SpawnZombie(world.Zombie{Pos: vmath.V(50, 0), HP: 1e6, MaxHP: 1e6, Radius: 16})
	ws.Events.Activate(world.EventOneShotKill, 0, 1000)
	fireAt(ws, vmath.V(40, 0), vmath.V(50, 0), 1, 0)

	NewCombatSystem(d, NewLoot(d)).Update(0)

	assert.True(t, ws.Gone(zid))
	assert.Equal(t, 1, ws.Run.Kills)
	assert.Equal(t, d.Config.Loot.KillXP, ws.XP())
}

func TestCritMultipliesDamage(t *testing.T) {
	d := newDeps(t, world.ModeClassic, noDrops())
	ws := d.World
	zid := ws.SpawnZombie(world.Zombie{Pos: vmath.V(50, 0), HP: 100, MaxHP: 100, Radius: 16})
	bid := fireAt(ws, vmath.V(40, 0), vmath.V(50, 0), 20, 0)
	b, _ := ws.Bullets.Get(bid)
	b.Crit = true

	NewCombatSystem(d, NewLoot(d)).Update(0)

	z, _ := ws.Zombies.Get(zid)
	assert.Equal(t, 60.0, z.HP)
}

func TestBossHitHookCanVetoConsumption(t *testing.T) {
	d := newDeps(t, world.ModeClassic, noDrops())
	ws := d.World
	var seen []hook.BulletHit
	d.Hooks.Install(hook.Set{OnBulletHit: func(h hook.BulletHit) (hook.HitResult, error) {
		seen = append(seen, h)
		return hook.HitResult{Handled: true, Consume: false, Damage: 5}, nil
	}})
	zid := ws.SpawnZombie(world.Zombie{Pos: vmath.V(50, 0), HP: 100, MaxHP: 100, Radius: 30, Boss: true, Tag: "brute"})
	bid := fireAt(ws, vmath.V(40, 0), vmath.V(50, 0), 24, 0)

	c := NewCombatSystem(d, NewLoot(d))
	c.Update(0)

	require.Len(t, seen, 1)
	assert.Equal(t, "brute", seen[0].Tag)
	assert.Equal(t, 24.0, seen[0].Damage)
	z, _ := ws.Zombies.Get(zid)
	assert.Equal(t, 95.0, z.HP)
	assert.False(t, ws.Gone(bid), "unconsumed bullet keeps flying")
	b, _ := ws.Bullets.Get(bid)
	assert.Equal(t, 0, b.Pierce)

	c.Update(0)
	assert.Len(t, seen, 1, "same bullet never hits the same boss twice")
}

func TestBossHitHookFailureFallsBack(t *testing.T) {
	for name, fn := range map[string]func(hook.BulletHit) (hook.HitResult, error){
		"error": func(hook.BulletHit) (hook.HitResult, error) {
			return hook.HitResult{Handled: true}, errors.New("script error")
		},
		"panic": func(hook.BulletHit) (hook.HitResult, error) {
			panic("nil table")
		},
	} {
		t.Run(name, func(t *testing.T) {
			d := newDeps(t, world.ModeClassic, noDrops())
			ws := d.World
			var failed []event.HookFailed
			event.Subscribe(d.Bus, func(e event.HookFailed) { failed = append(failed, e) })
			d.Hooks.Install(hook.Set{OnBulletHit: fn})
			zid := ws.SpawnZombie(world.Zombie{Pos: vmath.V(50, 0), HP: 100, MaxHP: 100, Radius: 30, Boss: true})
			bid := fireAt(ws, vmath.V(40, 0), vmath.V(50, 0), 24, 0)

			NewCombatSystem(d, NewLoot(d)).Update(0)

			z, _ := ws.Zombies.Get(zid)
			assert.Equal(t, 76.0, z.HP)
			assert.True(t, ws.Gone(bid))
			assert.Equal(t, 1, d.Hooks.Failures())

			d.Bus.Flush()
			require.Len(t, failed, 1)
			assert.Equal(t, HookOnBulletHit, failed[0].Hook)
		})
	}
}

func TestContactDamageRespectsCooldown(t *testing.T) {
	d := newDeps(t, world.ModeClassic, noDrops())
	ws := d.World
	ws.SpawnZombie(world.Zombie{Pos: vmath.V(10, 0), HP: 100, MaxHP: 100, Radius: 16, Damage: 10})
	c := NewCombatSystem(d, NewLoot(d))

	ws.Advance()
	c.Update(0)
	assert.Equal(t, 90.0, ws.Player.HP())

	ws.Advance()
	c.Update(0)
	assert.Equal(t, 90.0, ws.Player.HP(), "cooldown")

	start := ws.NowMs()
	for ws.NowMs()-start < d.Config.Combat.ContactCooldownMs {
		ws.Advance()
		c.Update(0)
	}
	assert.Equal(t, 80.0, ws.Player.HP())
}

func TestObstacleStopsBullets(t *testing.T) {
	cases := []struct {
		name      string
		front     bool
		pierce    int
		wantKills int
	}{
		{"zombie behind wall", false, 0, 0},
		{"pierce stops at wall", true, 5, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newDeps(t, world.ModeClassic, noDrops())
			ws := d.World
			// parking has an obstacle at (900,0) r=120
			ws.Arena = world.ArenaFor(data.DefaultMapTable(), "parking", d.Config.Arena.Radius)
			behind := ws.SpawnZombie(world.Zombie{Pos: vmath.V(1040, 0), HP: 10, MaxHP: 10, Radius: 16})
			if tc.front {
				ws.SpawnZombie(world.Zombie{Pos: vmath.V(740, 0), HP: 10, MaxHP: 10, Radius: 16})
			}
			bid := fireAt(ws, vmath.V(700, 0), vmath.V(1060, 0), 24, tc.pierce)

			NewCombatSystem(d, NewLoot(d)).Update(0)

			assert.Equal(t, tc.wantKills, ws.Run.Kills)
			assert.False(t, ws.Gone(behind))
			z, _ := ws.Zombies.Get(behind)
			assert.Equal(t, 10.0, z.HP)
			assert.True(t, ws.Gone(bid))
		})
	}
}

func TestContactCooldownStartsOnLandedHit(t *testing.T) {
	d := newDeps(t, world.ModeClassic, noDrops())
	ws := d.World
	var hits []float64
	event.Subscribe(d.Bus, func(e event.PlayerDamaged) { hits = append(hits, e.Damage) })
	ws.SpawnZombie(world.Zombie{Pos: vmath.V(10, 0), HP: 100, MaxHP: 100, Radius: 16, Damage: 10})
	c := NewCombatSystem(d, NewLoot(d))

	ws.Advance()
	c.Update(0)
	for ws.NowMs() < 100 {
		ws.Advance()
		c.Update(0)
	}
	// touches while the player is still invulnerable from the first hit
	ws.SpawnZombie(world.Zombie{Pos: vmath.V(-10, 0), HP: 100, MaxHP: 100, Radius: 16, Damage: 7})
	for ws.NowMs() < 1400 {
		ws.Advance()
		c.Update(0)
	}

	d.Bus.Flush()
	assert.Contains(t, hits, 7.0, "second zombie lands a hit once invulnerability ends")
	assert.GreaterOrEqual(t, len(hits), 4)
}

func TestExpiredAndStrayBulletsArePruned(t *testing.T) {
	d := newDeps(t, world.ModeClassic, noDrops())
	ws := d.World
	old := ws.SpawnBullet(world.Bullet{Pos: vmath.V(0, 0), LifeMs: 10})
	stray := ws.SpawnBullet(world.Bullet{Pos: vmath.V(5000, 0), LifeMs: 900})
	live := ws.SpawnBullet(world.Bullet{Pos: vmath.V(100, 0), LifeMs: 900})
	ws.Advance()

	NewCombatSystem(d, NewLoot(d)).Update(0)

	assert.True(t, ws.Gone(old))
	assert.True(t, ws.Gone(stray))
	assert.False(t, ws.Gone(live))
}

func TestSweep(t *testing.T) {
	tt, hit := sweep(vmath.V(0, 0), vmath.V(100, 0), vmath.V(50, 10), 12)
	assert.True(t, hit)
	assert.InDelta(t, 0.5, tt, 1e-9)

	_, hit = sweep(vmath.V(0, 0), vmath.V(100, 0), vmath.V(50, 20), 12)
	assert.False(t, hit)

	_, hit = sweep(vmath.V(5, 5), vmath.V(5, 5), vmath.V(0, 0), 8)
	assert.True(t, hit)
}
