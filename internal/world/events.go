package world

// EventKind is one of the timed global buffs.
type EventKind uint8

const (
	EventAmmoRefill EventKind = iota
	EventDoubleRewards
	EventOneShotKill
	eventCount
)

// EventKinds lists every timed event in a fixed order.
var EventKinds = [eventCount]EventKind{EventAmmoRefill, EventDoubleRewards, EventOneShotKill}

func (k EventKind) String() string {
	switch k {
	case EventAmmoRefill:
		return "ammo_refill"
	case EventDoubleRewards:
		return "double_rewards"
	case EventOneShotKill:
		return "one_shot_kill"
	}
	return "unknown"
}

// TimedEvents stores one expiry timestamp per event. An event is active
// while the current time is before its expiry; nothing ticks them.
type TimedEvents struct {
	until [eventCount]float64
}

func (e *TimedEvents) Activate(k EventKind, nowMs, durMs float64) {
	if k >= eventCount {
		return
	}
	end := nowMs + durMs
	if end > e.until[k] {
		e.until[k] = end
	}
}

func (e *TimedEvents) Active(k EventKind, nowMs float64) bool {
	return k < eventCount && nowMs < e.until[k]
}

// Remaining returns milliseconds left on k, or 0 when inactive.
func (e *TimedEvents) Remaining(k EventKind, nowMs float64) float64 {
	if !e.Active(k, nowMs) {
		return 0
	}
	return e.until[k] - nowMs
}

func (e *TimedEvents) Reset() {
	e.until = [eventCount]float64{}
}
