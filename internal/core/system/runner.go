package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each step. Systems sharing a
// phase run in registration order.
type Runner struct {
	systems []System
	sorted  bool
	halted  func() bool
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// HaltWhen installs a predicate checked between systems; once it reports
// true the remaining non-cleanup systems of the step are skipped.
func (r *Runner) HaltWhen(fn func() bool) {
	r.halted = fn
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if r.halted != nil && s.Phase() != PhaseCleanup && r.halted() {
			continue
		}
		s.Update(dt)
	}
}

// TickPhase runs only the systems registered for phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// Len returns the number of registered systems.
func (r *Runner) Len() int { return len(r.systems) }

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
