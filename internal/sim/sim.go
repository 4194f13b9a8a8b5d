// Package sim is the host-facing simulation core. A host calls UpdateFrame
// once per visual frame, writes input through the setters between frames
// and reads FrameData for drawing. Everything runs on the caller's
// goroutine; a Simulation must not be shared between goroutines.
package sim

import (
	"context"
	"math"
	"time"

	"github.com/tgarena/survivor/internal/config"
	"github.com/tgarena/survivor/internal/core/event"
	coresys "github.com/tgarena/survivor/internal/core/system"
	"github.com/tgarena/survivor/internal/data"
	"github.com/tgarena/survivor/internal/hook"
	"github.com/tgarena/survivor/internal/system"
	"github.com/tgarena/survivor/internal/vmath"
	"github.com/tgarena/survivor/internal/world"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Options carries run metadata chosen by the host.
type Options struct {
	MapKey    string // empty or unknown selects the circular arena
	Character string
	Skin      string
	Seed      uint64 // reported in RunStarted; the random source is injected at New
}

// Simulation owns one run at a time.
type Simulation struct {
	cfg    *config.Config
	tables *data.Tables
	log    *zap.Logger
	bus    *event.Bus
	world  *world.State
	deps   *system.Deps
	hooks  *system.Hooks
	runner *coresys.Runner
	shop   *system.Shop

	running bool
	lastTs  float64
	acc     float64
	alpha   float64
	stepDur time.Duration
	width   float64
	height  float64
	zoom    float64
	seed    uint64

	steps   metric.Int64Counter
	printer *message.Printer
}

// New builds a simulation. Nil arguments fall back to the stock config and
// tables, a random source seeded from the soak seed, and a no-op logger.
func New(cfg *config.Config, tables *data.Tables, rng vmath.Source, log *zap.Logger) *Simulation {
	if cfg == nil {
		cfg = config.Default()
	}
	if tables == nil {
		tables = data.DefaultTables()
	}
	if rng == nil {
		rng = vmath.NewRand(cfg.Soak.Seed)
	}
	if log == nil {
		log = zap.NewNop()
	}
	bus := event.NewBus()
	ws := world.NewState(cfg)
	hooks := system.NewHooks(log, bus)
	deps := &system.Deps{
		Config:  cfg,
		Log:     log,
		World:   ws,
		Weapons: tables.Weapons,
		Perks:   tables.Perks,
		Rand:    rng,
		Bus:     bus,
		Hooks:   hooks,
	}
	s := &Simulation{
		cfg:     cfg,
		tables:  tables,
		log:     log,
		bus:     bus,
		world:   ws,
		deps:    deps,
		hooks:   hooks,
		runner:  system.NewPipeline(deps),
		shop:    system.NewShop(deps),
		stepDur: time.Duration(cfg.Clock.FixedStepMs * float64(time.Millisecond)),
		zoom:    snapZoom(cfg.Zoom, cfg.Zoom.Default),
		printer: message.NewPrinter(language.English),
	}
	c, err := meter().Int64Counter(
		"survivor.steps",
		metric.WithDescription("Fixed simulation steps executed"),
	)
	if err != nil {
		log.Warn("step counter unavailable", zap.Error(err))
	} else {
		s.steps = c
	}
	return s
}

// ── lifecycle ──

// Start resets the world and begins a run. It fails for an unknown mode or
// a non-positive viewport.
func (s *Simulation) Start(mode string, width, height float64, opts Options, ts float64) bool {
	m, ok := world.ParseMode(mode)
	if !ok {
		s.log.Warn("unknown run mode", zap.String("mode", mode))
		return false
	}
	if !s.Resize(width, height) {
		s.log.Warn("invalid viewport", zap.Float64("width", width), zap.Float64("height", height))
		return false
	}
	arena := world.ArenaFor(s.tables.Maps, opts.MapKey, s.cfg.Arena.Radius)
	s.bus.Reset()
	s.hooks.NewRun()
	s.world.Reset(world.Run{
		Mode:      m,
		MapKey:    arena.Key(),
		Character: opts.Character,
		Skin:      opts.Skin,
		Running:   true,
	}, arena)
	if !system.Equip(s.deps, world.WeaponRoll{Key: s.cfg.Weapon.StartWeapon}) {
		system.Equip(s.deps, world.WeaponRoll{Key: s.tables.Weapons.Droppable()[0]})
	}

	s.running = true
	s.lastTs = vmath.Finite(ts)
	s.acc = 0
	s.alpha = 0
	s.seed = opts.Seed
	s.zoom = snapZoom(s.cfg.Zoom, s.cfg.Zoom.Default)

	event.Emit(s.bus, event.RunStarted{Mode: string(m), MapKey: arena.Key(), Seed: opts.Seed})
	s.log.Info("run started",
		zap.String("mode", string(m)),
		zap.String("map", arena.Key()),
		zap.Uint64("seed", opts.Seed),
	)
	return true
}

// Stop ends the run. The final step's events are delivered before it
// returns. Returns false when no run is active.
func (s *Simulation) Stop() bool {
	if !s.running {
		return false
	}
	s.finish(false)
	return true
}

func (s *Simulation) Resize(width, height float64) bool {
	width, height = vmath.Finite(width), vmath.Finite(height)
	if width <= 0 || height <= 0 {
		return false
	}
	s.width, s.height = width, height
	return true
}

func (s *Simulation) Running() bool { return s.running }

// TimeMs is the simulation time of the last completed step.
func (s *Simulation) TimeMs() float64 { return s.world.NowMs() }

// UpdateFrame advances the clock to ts (milliseconds) and runs as many fixed
// steps as the accumulated time allows, up to the sub-step cap. It is a
// no-op returning false when no run is active.
func (s *Simulation) UpdateFrame(ts float64) bool {
	if !s.running {
		return false
	}
	clk := s.cfg.Clock
	ts = vmath.Finite(ts)
	delta := vmath.Clamp(ts-s.lastTs, 0, clk.MaxFrameDeltaMs)
	s.lastTs = ts
	s.acc += delta

	for n := 0; s.acc >= clk.FixedStepMs && n < clk.MaxSubSteps && s.running; n++ {
		s.step()
		s.acc -= clk.FixedStepMs
	}
	if s.acc >= clk.FixedStepMs {
		s.acc = math.Mod(s.acc, clk.FixedStepMs)
	}
	s.alpha = vmath.Clamp(s.acc/clk.FixedStepMs, 0, 1)
	return true
}

func (s *Simulation) step() {
	s.world.Advance()
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
	s.runner.Tick(s.stepDur)
	if s.steps != nil {
		s.steps.Add(context.Background(), 1)
	}
	if s.world.Run.GameOver {
		s.finish(true)
	}
}

func (s *Simulation) finish(died bool) {
	ws := s.world
	s.running = false
	ws.Run.Running = false
	event.Emit(s.bus, event.RunEnded{
		Wave:      ws.Run.Wave,
		Kills:     ws.Run.Kills,
		Coins:     ws.Coins(),
		ElapsedMs: ws.NowMs(),
		Died:      died,
	})
	s.bus.Flush()
	s.log.Info("run ended",
		zap.Bool("died", died),
		zap.Int("wave", ws.Run.Wave),
		zap.Int("kills", ws.Run.Kills),
		zap.Int("coins", ws.Coins()),
		zap.Float64("elapsed_ms", ws.NowMs()),
	)
}

// ── input ──

// SetMove stores the movement stick. Components are clamped to [-1, 1];
// non-finite values count as zero.
func (s *Simulation) SetMove(x, y float64) {
	s.world.Input.Move = vmath.V(
		vmath.Clamp(vmath.Finite(x), -1, 1),
		vmath.Clamp(vmath.Finite(y), -1, 1),
	)
}

// SetAim stores the aim direction, normalised. Inputs inside the dead
// zone clear the aim so the last facing is kept.
func (s *Simulation) SetAim(x, y float64) {
	v := vmath.V(
		vmath.Clamp(vmath.Finite(x), -1, 1),
		vmath.Clamp(vmath.Finite(y), -1, 1),
	)
	if v.Len() < s.cfg.Weapon.AimDeadzone {
		s.world.Input.Aim = vmath.Vec2{}
		return
	}
	s.world.Input.Aim = v.Norm()
}

func (s *Simulation) SetShooting(on bool) {
	s.world.Input.Shooting = on
}

// ── weapon and shop ──

func (s *Simulation) SetWeapon(key string) bool {
	return s.running && system.SwitchWeapon(s.deps, key)
}

func (s *Simulation) Reload() bool {
	return s.running && system.ManualReload(s.deps)
}

func (s *Simulation) BuyUpgrade() bool       { return s.shop.BuyUpgrade() }
func (s *Simulation) RerollWeapon() bool     { return s.shop.RerollWeapon() }
func (s *Simulation) BuyReload() bool        { return s.shop.BuyReload() }
func (s *Simulation) UsePlate() bool         { return s.shop.UsePlate() }
func (s *Simulation) BuyPerk(id string) bool { return s.shop.BuyPerk(id) }

// ── zoom ──

func (s *Simulation) GetZoom() float64 { return s.zoom }

// SetZoomLevel sets an absolute zoom, clamped and snapped to the zoom step.
func (s *Simulation) SetZoomLevel(v float64) float64 {
	s.zoom = snapZoom(s.cfg.Zoom, v)
	return s.zoom
}

// SetZoomDelta moves the zoom by delta, clamped and snapped.
func (s *Simulation) SetZoomDelta(delta float64) float64 {
	s.zoom = snapZoom(s.cfg.Zoom, s.zoom+vmath.Finite(delta))
	return s.zoom
}

func snapZoom(z config.ZoomConfig, v float64) float64 {
	return vmath.Clamp(vmath.Snap(vmath.Finite(v), z.Min, z.Step), z.Min, z.Max)
}

// ── collaborators ──

// Install replaces the collaborator hooks. Pass an empty Set to remove them.
func (s *Simulation) Install(set hook.Set) {
	s.hooks.Install(set)
}

// Bus exposes gameplay events. Handlers run at the start of the step after
// the one that emitted them and must not call back into the simulation.
func (s *Simulation) Bus() *event.Bus { return s.bus }

// HookFailures counts hook calls that errored or panicked since New.
func (s *Simulation) HookFailures() int { return s.hooks.Failures() }
