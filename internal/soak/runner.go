// Package soak drives headless simulation runs with a bot, for balance
// checks and long-run stability testing.
package soak

import (
	"context"
	"fmt"

	"github.com/tgarena/survivor/internal/config"
	"github.com/tgarena/survivor/internal/core/event"
	"github.com/tgarena/survivor/internal/data"
	"github.com/tgarena/survivor/internal/hook"
	"github.com/tgarena/survivor/internal/persist"
	"github.com/tgarena/survivor/internal/sim"
	"github.com/tgarena/survivor/internal/vmath"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ctxCheckFrames is how often a run polls its context.
const ctxCheckFrames = 600

// Result is one finished run: its summary row and shop ledger, ready to be
// persisted.
type Result struct {
	Run    persist.RunRow
	Ledger []persist.LedgerEntry
}

// Runner plays runs back to back. Hooks, when set, is called once per run
// so each run gets the collaborator set fresh.
type Runner struct {
	cfg    *config.Config
	tables *data.Tables
	hooks  func() hook.Set
	log    *zap.Logger
	bot    *Bot
	waves  metric.Int64Histogram
}

func NewRunner(cfg *config.Config, tables *data.Tables, hooks func() hook.Set, log *zap.Logger) *Runner {
	r := &Runner{cfg: cfg, tables: tables, hooks: hooks, log: log, bot: NewBot()}
	h, err := meter().Int64Histogram(
		"survivor.soak.wave",
		metric.WithDescription("Wave reached by a soak run"),
	)
	if err != nil {
		log.Warn("soak wave histogram unavailable", zap.Error(err))
	} else {
		r.waves = h
	}
	return r
}

// Run plays one run with the given seed until the player dies or the
// configured simulation time runs out.
func (r *Runner) Run(ctx context.Context, seed uint64) (*Result, error) {
	sc := r.cfg.Soak
	s := sim.New(r.cfg, r.tables, vmath.NewRand(seed), r.log.With(zap.Uint64("seed", seed)))
	if r.hooks != nil {
		s.Install(r.hooks())
	}

	res := &Result{}
	event.Subscribe(s.Bus(), func(p event.Purchase) {
		res.Ledger = append(res.Ledger, persist.LedgerEntry{
			Item:    p.Item,
			Cost:    p.Cost,
			Balance: p.Coins,
			Wave:    p.Wave,
			AtMs:    p.AtMs,
		})
	})
	event.Subscribe(s.Bus(), func(w event.WaveStarted) {
		r.log.Debug("soak wave", zap.Uint64("seed", seed), zap.Int("wave", w.Wave), zap.Int("count", w.Count))
	})

	opts := sim.Options{MapKey: sc.MapKey, Character: "bot", Seed: seed}
	if !s.Start(sc.Mode, float64(sc.Width), float64(sc.Height), opts, 0) {
		return nil, fmt.Errorf("start run: mode %q, viewport %dx%d", sc.Mode, sc.Width, sc.Height)
	}

	step := r.cfg.Clock.FixedStepMs
	limitMs := sc.MaxMinutes * 60_000
	for i := 0; s.Running(); i++ {
		if i%ctxCheckFrames == 0 {
			if err := ctx.Err(); err != nil {
				s.Stop()
				return nil, err
			}
		}
		r.bot.Act(s, s.FrameData())
		// Half a step of slack keeps exactly one step per frame.
		s.UpdateFrame((float64(i) + 1.5) * step)
		if limitMs > 0 && s.TimeMs() >= limitMs {
			s.Stop()
		}
	}

	f := s.FrameData()
	res.Run = persist.RunRow{
		Seed:         seed,
		Mode:         f.Run.Mode,
		MapKey:       f.Run.MapKey,
		Character:    f.Run.Character,
		Wave:         f.HUD.Wave,
		Kills:        f.HUD.Kills,
		Coins:        f.HUD.Coins,
		XP:           f.HUD.XP,
		Level:        f.HUD.Level,
		Relics:       f.HUD.Relics,
		Wonder:       f.HUD.Wonder,
		ElapsedMs:    f.HUD.TimeMs,
		Died:         f.Run.GameOver,
		HookFailures: f.Run.HookFailures,
	}
	if r.waves != nil {
		r.waves.Record(ctx, int64(f.HUD.Wave), metric.WithAttributes(attribute.String("mode", f.Run.Mode)))
	}
	return res, nil
}
