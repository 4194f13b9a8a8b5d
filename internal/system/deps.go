package system

import (
	"github.com/tgarena/survivor/internal/config"
	"github.com/tgarena/survivor/internal/core/event"
	"github.com/tgarena/survivor/internal/data"
	"github.com/tgarena/survivor/internal/vmath"
	"github.com/tgarena/survivor/internal/world"
	"go.uber.org/zap"
)

// Deps is shared by every step system and the shop.
type Deps struct {
	Config  *config.Config
	Log     *zap.Logger
	World   *world.State
	Weapons *data.WeaponTable
	Perks   *data.PerkTable
	Rand    vmath.Source
	Bus     *event.Bus
	Hooks   *Hooks
}
