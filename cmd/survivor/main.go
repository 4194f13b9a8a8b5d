package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tgarena/survivor/internal/config"
	"github.com/tgarena/survivor/internal/data"
	"github.com/tgarena/survivor/internal/hook"
	"github.com/tgarena/survivor/internal/persist"
	"github.com/tgarena/survivor/internal/scripting"
	"github.com/tgarena/survivor/internal/soak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m          survivor soak runner             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := max(3, 46-len(title)-1)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value any) {
	s := fmt.Sprint(value)
	dotsLen := max(3, 42-len(label)-len(s))
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), s)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// ── Soak logic ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Load tables
	printSection("data")
	tables, err := data.LoadTables(cfg.Data)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}
	printStat("weapons", tables.Weapons.Count())
	printStat("perks", tables.Perks.Count())
	printStat("maps", tables.Maps.Count())

	// 4. Scripts
	var hooks func() hook.Set
	if cfg.Scripting.Enabled {
		eng, err := scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer eng.Close()
		hooks = eng.Hooks
		printOK("lua scripts loaded from " + cfg.Scripting.Dir)
	}

	// 5. Optional database
	var runs *persist.RunRepo
	var ledger *persist.LedgerRepo
	if persist.Enabled(cfg.Database) {
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		cancel()
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		runs = persist.NewRunRepo(db)
		ledger = persist.NewLedgerRepo(db)
		printOK("PostgreSQL connected, migrations applied")
	}
	fmt.Println()

	// 6. Play
	sc := cfg.Soak
	printSection("soak")
	printStat("runs", sc.Runs)
	printStat("mode", sc.Mode)
	printStat("seed", sc.Seed)
	fmt.Println()

	runner := soak.NewRunner(cfg, tables, hooks, log)
	var played, bestWave, kills, spent int
	for i := 0; i < sc.Runs; i++ {
		seed := sc.Seed + uint64(i)
		res, err := runner.Run(ctx, seed)
		if errors.Is(err, context.Canceled) {
			log.Info("soak interrupted", zap.Int("played", played))
			break
		}
		if err != nil {
			return fmt.Errorf("run %d: %w", seed, err)
		}
		played++
		bestWave = max(bestWave, res.Run.Wave)
		kills += res.Run.Kills
		spent += persist.Spent(res.Ledger)
		logSummary(log, res)

		if runs != nil {
			if err := record(ctx, runs, ledger, res); err != nil {
				log.Error("record run failed", zap.Uint64("seed", seed), zap.Error(err))
			}
		}
	}

	printSection("summary")
	printStat("runs played", played)
	printStat("best wave", bestWave)
	if played > 0 {
		printStat("avg kills", kills/played)
		printStat("avg coins spent", spent/played)
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	cfgPath := "config/survivor.toml"
	if p := os.Getenv("SURVIVOR_CONFIG"); p != "" {
		return config.Load(p)
	}
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return config.Load(cfgPath)
}

func logSummary(log *zap.Logger, res *soak.Result) {
	r := res.Run
	log.Info("run summary",
		zap.Uint64("seed", r.Seed),
		zap.String("mode", r.Mode),
		zap.Int("wave", r.Wave),
		zap.Int("kills", r.Kills),
		zap.Int("coins", r.Coins),
		zap.Int("level", r.Level),
		zap.Int("relics", r.Relics),
		zap.Bool("wonder", r.Wonder),
		zap.Bool("died", r.Died),
		zap.Duration("elapsed", time.Duration(r.ElapsedMs*float64(time.Millisecond))),
		zap.Int("purchases", len(res.Ledger)),
		zap.Int("hook_failures", r.HookFailures),
	)
}

// record stores the run summary, then its ledger in one transaction.
func record(ctx context.Context, runs *persist.RunRepo, ledger *persist.LedgerRepo, res *soak.Result) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	id, err := runs.Insert(ctx, &res.Run)
	if err != nil {
		return err
	}
	return ledger.Write(ctx, id, res.Ledger)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
