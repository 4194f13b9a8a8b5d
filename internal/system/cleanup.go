package system

import (
	"time"

	coresys "github.com/tgarena/survivor/internal/core/system"
	"github.com/tgarena/survivor/internal/world"
)

// CleanupSystem flushes the deferred entity destruction queue at step end.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	ws *world.State
}

func NewCleanupSystem(ws *world.State) *CleanupSystem {
	return &CleanupSystem{ws: ws}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.ws.ECS.FlushDestroyQueue()
}
