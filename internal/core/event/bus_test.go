package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventsDeliveredAfterSwap(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(e WaveStarted) { got = append(got, e.Wave) })

	Emit(b, WaveStarted{Wave: 1})
	Emit(b, WaveStarted{Wave: 2})
	assert.Equal(t, 2, b.Pending())
	assert.Equal(t, 0, b.DispatchAll(), "nothing in front before swap")

	b.SwapBuffers()
	assert.Equal(t, 2, b.DispatchAll())
	assert.Equal(t, []int{1, 2}, got)

	// front is not redelivered after the next swap
	b.SwapBuffers()
	assert.Equal(t, 0, b.DispatchAll())
	assert.Equal(t, []int{1, 2}, got)
}

func TestDispatchOrderFollowsFirstEmission(t *testing.T) {
	b := NewBus()
	var trace []string
	Subscribe(b, func(RelicCollected) { trace = append(trace, "relic") })
	Subscribe(b, func(ZombieKilled) { trace = append(trace, "kill") })

	Emit(b, ZombieKilled{})
	Emit(b, RelicCollected{})
	Emit(b, ZombieKilled{})
	b.Flush()
	assert.Equal(t, []string{"kill", "kill", "relic"}, trace)
}

func TestEmitOnNilBusIsNoop(t *testing.T) {
	var b *Bus
	Emit(b, PlayerDied{})
}

func TestReset(t *testing.T) {
	b := NewBus()
	n := 0
	Subscribe(b, func(Purchase) { n++ })
	Emit(b, Purchase{})
	b.Reset()
	b.Flush()
	assert.Equal(t, 0, n)

	Emit(b, Purchase{})
	b.Flush()
	assert.Equal(t, 1, n, "subscriptions survive reset")
}
