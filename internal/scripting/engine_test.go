package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgarena/survivor/internal/hook"
	"go.uber.org/zap"
)

const scriptsDir = "../../scripts"

func shipped(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(scriptsDir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func bare(t *testing.T, src string) *Engine {
	t.Helper()
	e, err := NewEngine(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	require.NoError(t, e.LoadString("test", src))
	return e
}

func TestHooksFollowDefinedFunctions(t *testing.T) {
	e := bare(t, `function on_tick(ctx) return nil end`)
	set := e.Hooks()
	assert.NotNil(t, set.OnTick)
	assert.Nil(t, set.OnBulletHit)
	assert.Nil(t, set.OnPerkPurchase)

	assert.True(t, bare(t, `x = 1`).Hooks().Empty())

	set = shipped(t).Hooks()
	assert.NotNil(t, set.OnTick)
	assert.NotNil(t, set.OnBulletHit)
	assert.NotNil(t, set.OnPerkPurchase)
}

func TestBruteJoinsEveryFifthWave(t *testing.T) {
	e := shipped(t)

	for wave := 1; wave <= 4; wave++ {
		res, err := e.OnTick(hook.TickInfo{Step: uint64(wave), Wave: wave})
		require.NoError(t, err)
		assert.Empty(t, res.Spawns, "wave %d", wave)
	}

	res, err := e.OnTick(hook.TickInfo{Step: 300, Wave: 5})
	require.NoError(t, err)
	require.Len(t, res.Spawns, 1)
	b := res.Spawns[0]
	assert.Equal(t, "brute", b.Tag)
	assert.Equal(t, 1200.0, b.HP)
	assert.Equal(t, 520.0, b.Distance)
	assert.Positive(t, b.Speed)

	res, err = e.OnTick(hook.TickInfo{Step: 301, Wave: 5})
	require.NoError(t, err)
	assert.Empty(t, res.Spawns, "once per wave")

	res, err = e.OnTick(hook.TickInfo{Step: 900, Wave: 10})
	require.NoError(t, err)
	require.Len(t, res.Spawns, 1)
	assert.Equal(t, 2400.0, res.Spawns[0].HP)

	// A fresh run starts over at wave 1.
	_, err = e.OnTick(hook.TickInfo{Step: 1, Wave: 1})
	require.NoError(t, err)
	res, err = e.OnTick(hook.TickInfo{Step: 300, Wave: 5})
	require.NoError(t, err)
	assert.Len(t, res.Spawns, 1)
}

func TestBruteShieldBelowHalf(t *testing.T) {
	e := shipped(t)

	tests := []struct {
		name    string
		hit     hook.BulletHit
		handled bool
	}{
		{"healthy", hook.BulletHit{Tag: "brute", HP: 900, MaxHP: 1200, Damage: 20}, false},
		{"shielded", hook.BulletHit{Tag: "brute", HP: 500, MaxHP: 1200, Damage: 20}, true},
		{"crit pierces shield", hook.BulletHit{Tag: "brute", HP: 500, MaxHP: 1200, Damage: 40, Critical: true}, false},
		{"other boss", hook.BulletHit{Tag: "boss", HP: 10, MaxHP: 1200, Damage: 20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.OnBulletHit(tt.hit)
			require.NoError(t, err)
			assert.Equal(t, tt.handled, res.Handled)
			if tt.handled {
				assert.True(t, res.Consume)
				assert.Zero(t, res.Damage)
			}
		})
	}
}

func TestPerkModule(t *testing.T) {
	e := shipped(t)

	res, err := e.OnPerkPurchase(hook.PerkInfo{ID: "plate_carrier", Cost: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Plates)

	res, err = e.OnPerkPurchase(hook.PerkInfo{ID: "scavenger", Cost: 1400, Wave: 12})
	require.NoError(t, err)
	assert.Equal(t, 140, res.Coins)

	res, err = e.OnPerkPurchase(hook.PerkInfo{ID: "sprint", Cost: 800})
	require.NoError(t, err)
	assert.Equal(t, hook.PerkResult{}, res)
}

func TestScriptErrorsAreReturned(t *testing.T) {
	e := bare(t, `
function on_tick(ctx) error("bad tick") end
function on_bullet_hit(hit) return 42 end
`)
	_, err := e.OnTick(hook.TickInfo{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad tick")

	_, err = e.OnBulletHit(hook.BulletHit{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want table")

	_, err = e.OnPerkPurchase(hook.PerkInfo{})
	assert.Error(t, err, "undefined function")

	// The VM stays usable after a failed call.
	require.NoError(t, e.LoadString("fix", `function on_tick(ctx) return { spawns = {} } end`))
	res, err := e.OnTick(hook.TickInfo{})
	require.NoError(t, err)
	assert.Empty(t, res.Spawns)
}

func TestNewEngineRejectsBrokenScript(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "boss"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "boss", "bad.lua"), []byte("function ("), 0o644))

	_, err := NewEngine(dir, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load boss scripts")
}

func TestLoadStringSyntaxError(t *testing.T) {
	e := bare(t, `x = 1`)
	err := e.LoadString("broken", "local = ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load broken")
}
