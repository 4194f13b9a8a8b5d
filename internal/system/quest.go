package system

import (
	"time"

	"github.com/tgarena/survivor/internal/core/event"
	coresys "github.com/tgarena/survivor/internal/core/system"
	"github.com/tgarena/survivor/internal/world"
	"go.uber.org/zap"
)

// QuestSystem completes the relic quest in the step the last relic is
// collected. Phase 4 (Director).
type QuestSystem struct {
	deps *Deps
}

func NewQuestSystem(deps *Deps) *QuestSystem {
	return &QuestSystem{deps: deps}
}

func (s *QuestSystem) Phase() coresys.Phase { return coresys.PhaseDirector }

func (s *QuestSystem) Update(_ time.Duration) {
	ws := s.deps.World
	if !ws.WonderUnlocked() && ws.Relics() >= ws.RelicsNeeded() {
		UnlockWonder(s.deps)
	}
}

// UnlockWonder completes the quest: the wonder weapon is forced into hand
// at the top rarity with full ammo, and the coin and max HP bonuses are
// paid. It only acts once per run.
func UnlockWonder(d *Deps) bool {
	ws := d.World
	if !ws.UnlockWonder() {
		return false
	}
	cfg := d.Config.Quest
	roll := world.WeaponRoll{Key: cfg.WonderWeapon, Rarity: len(d.Weapons.Rarities()) - 1}
	if !Equip(d, roll) {
		d.Log.Warn("wonder weapon missing from table", zap.String("key", cfg.WonderWeapon))
	}
	ws.AddCoins(cfg.CoinBonus)
	ws.Player.RaiseMaxHP(cfg.MaxHPBonus)

	event.Emit(d.Bus, event.WonderUnlocked{Weapon: cfg.WonderWeapon, AtMs: ws.NowMs()})
	d.Log.Info("wonder weapon unlocked",
		zap.String("weapon", cfg.WonderWeapon),
		zap.Int("wave", ws.Run.Wave),
	)
	return true
}
