package system

import (
	"context"

	"github.com/tgarena/survivor/internal/core/event"
	"github.com/tgarena/survivor/internal/hook"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const (
	HookOnTick         = "on_tick"
	HookOnBulletHit    = "on_bullet_hit"
	HookOnPerkPurchase = "on_perk_purchase"
)

// Hooks calls the installed collaborator hooks. Every failure is counted;
// the first failure of each hook in a run is also logged at Warn and
// reported on the bus, repeats only at Debug. The caller then carries on
// as if no hook were installed.
type Hooks struct {
	set      hook.Set
	log      *zap.Logger
	bus      *event.Bus
	failures int
	counter  metric.Int64Counter
	reported map[string]bool
}

// NewHooks uses the global OTel meter (no-op if not configured).
func NewHooks(log *zap.Logger, bus *event.Bus) *Hooks {
	h := &Hooks{log: log, bus: bus, reported: make(map[string]bool)}
	c, err := meter().Int64Counter(
		"survivor.hook.failures",
		metric.WithDescription("Collaborator hook calls that returned an error or panicked"),
	)
	if err != nil {
		log.Warn("hook failure counter unavailable", zap.Error(err))
	} else {
		h.counter = c
	}
	return h
}

func (h *Hooks) Install(set hook.Set) { h.set = set }
func (h *Hooks) Set() hook.Set        { return h.set }
func (h *Hooks) Failures() int        { return h.failures }

// NewRun re-arms the once-per-run failure report.
func (h *Hooks) NewRun() { clear(h.reported) }

// Tick runs OnTick. ok is false when no hook ran successfully.
func (h *Hooks) Tick(info hook.TickInfo) (hook.TickResult, bool) {
	if h.set.OnTick == nil {
		return hook.TickResult{}, false
	}
	res, err := hook.Call(h.set.OnTick, info)
	if err != nil {
		h.fail(HookOnTick, err)
		return hook.TickResult{}, false
	}
	return res, true
}

func (h *Hooks) BulletHit(hit hook.BulletHit) (hook.HitResult, bool) {
	if h.set.OnBulletHit == nil {
		return hook.HitResult{}, false
	}
	res, err := hook.Call(h.set.OnBulletHit, hit)
	if err != nil {
		h.fail(HookOnBulletHit, err)
		return hook.HitResult{}, false
	}
	return res, true
}

func (h *Hooks) PerkPurchase(info hook.PerkInfo) (hook.PerkResult, bool) {
	if h.set.OnPerkPurchase == nil {
		return hook.PerkResult{}, false
	}
	res, err := hook.Call(h.set.OnPerkPurchase, info)
	if err != nil {
		h.fail(HookOnPerkPurchase, err)
		return hook.PerkResult{}, false
	}
	return res, true
}

func (h *Hooks) fail(name string, err error) {
	h.failures++
	if h.counter != nil {
		h.counter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("hook", name)))
	}
	if h.reported[name] {
		h.log.Debug("hook failed again", zap.String("hook", name), zap.Error(err), zap.Int("failures", h.failures))
		return
	}
	h.reported[name] = true
	h.log.Warn("hook failed", zap.String("hook", name), zap.Error(err))
	event.Emit(h.bus, event.HookFailed{Hook: name, Error: err.Error()})
}
