package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tgarena/survivor/internal/hook"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Global function names a script may define. Each one found becomes the
// matching collaborator hook.
const (
	fnOnTick         = "on_tick"
	fnOnBulletHit    = "on_bullet_hit"
	fnOnPerkPurchase = "on_perk_purchase"
)

// APIVersion is exposed to scripts as the API_VERSION global.
const APIVersion = 1

// Engine wraps a single gopher-lua VM that implements the collaborator hooks.
// Single-goroutine access only: hooks are called from inside a step.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory: core helpers first, then boss and perk modules.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	e := newEngine(log)
	for _, sub := range []string{"core", "boss", "perk"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			e.vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))
	return &Engine{vm: vm, log: log}
}

// loadDir loads all .lua files in a directory in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source in the engine's VM.
func (e *Engine) LoadString(name, src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	e.log.Debug("loaded lua chunk", zap.String("name", name))
	return nil
}

// Hooks returns a hook set bound to whichever hook functions the loaded
// scripts define. Functions are looked up at call time, so a script
// reloaded later replaces the behaviour without reinstalling.
func (e *Engine) Hooks() hook.Set {
	var set hook.Set
	if e.defined(fnOnTick) {
		set.OnTick = e.OnTick
	}
	if e.defined(fnOnBulletHit) {
		set.OnBulletHit = e.OnBulletHit
	}
	if e.defined(fnOnPerkPurchase) {
		set.OnPerkPurchase = e.OnPerkPurchase
	}
	return set
}

func (e *Engine) defined(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// OnTick calls Lua on_tick(ctx). The script returns nil or a table with a
// "spawns" array of boss rows.
func (e *Engine) OnTick(info hook.TickInfo) (hook.TickResult, error) {
	t := e.vm.NewTable()
	t.RawSetString("step", lua.LNumber(info.Step))
	t.RawSetString("time_ms", lua.LNumber(info.TimeMs))
	t.RawSetString("wave", lua.LNumber(info.Wave))
	t.RawSetString("mode", lua.LString(info.Mode))
	t.RawSetString("map", lua.LString(info.MapKey))
	t.RawSetString("zombies", lua.LNumber(info.Zombies))
	t.RawSetString("bosses", lua.LNumber(info.Bosses))
	t.RawSetString("player_x", lua.LNumber(info.PlayerX))
	t.RawSetString("player_y", lua.LNumber(info.PlayerY))

	rt, err := e.call(fnOnTick, t)
	if err != nil || rt == nil {
		return hook.TickResult{}, err
	}

	var res hook.TickResult
	if spawns, ok := rt.RawGetString("spawns").(*lua.LTable); ok {
		spawns.ForEach(func(_, v lua.LValue) {
			row, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			res.Spawns = append(res.Spawns, hook.BossSpawn{
				Tag:      lStr(row, "tag"),
				HP:       lNum(row, "hp"),
				Speed:    lNum(row, "speed"),
				Radius:   lNum(row, "radius"),
				Damage:   lNum(row, "damage"),
				Angle:    lNum(row, "angle"),
				Distance: lNum(row, "distance"),
			})
		})
	}
	return res, nil
}

// OnBulletHit calls Lua on_bullet_hit(hit). A nil return leaves the hit to
// the default resolution.
func (e *Engine) OnBulletHit(hit hook.BulletHit) (hook.HitResult, error) {
	t := e.vm.NewTable()
	t.RawSetString("zombie_id", lua.LNumber(hit.ZombieID))
	t.RawSetString("tag", lua.LString(hit.Tag))
	t.RawSetString("hp", lua.LNumber(hit.HP))
	t.RawSetString("max_hp", lua.LNumber(hit.MaxHP))
	t.RawSetString("damage", lua.LNumber(hit.Damage))
	t.RawSetString("critical", lua.LBool(hit.Critical))
	t.RawSetString("lethal", lua.LBool(hit.Lethal))
	t.RawSetString("time_ms", lua.LNumber(hit.TimeMs))

	rt, err := e.call(fnOnBulletHit, t)
	if err != nil || rt == nil {
		return hook.HitResult{}, err
	}
	return hook.HitResult{
		Handled: lua.LVAsBool(rt.RawGetString("handled")),
		Consume: lua.LVAsBool(rt.RawGetString("consume")),
		Damage:  lNum(rt, "damage"),
	}, nil
}

// OnPerkPurchase calls Lua on_perk_purchase(info) for extra perk effects.
func (e *Engine) OnPerkPurchase(info hook.PerkInfo) (hook.PerkResult, error) {
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LString(info.ID))
	t.RawSetString("cost", lua.LNumber(info.Cost))
	t.RawSetString("coins", lua.LNumber(info.Coins))
	t.RawSetString("wave", lua.LNumber(info.Wave))
	t.RawSetString("time_ms", lua.LNumber(info.TimeMs))

	rt, err := e.call(fnOnPerkPurchase, t)
	if err != nil || rt == nil {
		return hook.PerkResult{}, err
	}
	return hook.PerkResult{
		MaxHP:  lNum(rt, "max_hp"),
		Plates: lInt(rt, "plates"),
		Coins:  lInt(rt, "coins"),
	}, nil
}

// call invokes a global Lua function with one table argument. A nil
// return yields a nil table; any other non-table return is an error.
func (e *Engine) call(name string, arg *lua.LTable) (*lua.LTable, error) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return nil, fmt.Errorf("lua function %s not found", name)
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		return nil, fmt.Errorf("lua %s: %w", name, err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	switch rt := result.(type) {
	case *lua.LTable:
		return rt, nil
	case *lua.LNilType:
		return nil, nil
	default:
		return nil, fmt.Errorf("lua %s returned %s, want table", name, result.Type())
	}
}

// lNum reads a number field from a Lua table.
func lNum(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
