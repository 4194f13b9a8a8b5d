package event

import "reflect"

// Bus is a double-buffered event bus. Events emitted during step N are
// delivered when SwapBuffers + DispatchAll run at the start of step N+1,
// so handlers always observe a completed step.
//
// Delivery order is deterministic: event types are dispatched in the order
// they were first emitted, events of one type in emission order. Handlers
// are observers; they must not mutate simulation state.
type Bus struct {
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	order    []reflect.Type
	known    map[reflect.Type]bool
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		known:    make(map[reflect.Type]bool),
		handlers: make(map[reflect.Type][]any),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer (delivered next dispatch).
func Emit[T any](b *Bus, event T) {
	if b == nil {
		return
	}
	t := typeOf[T]()
	if !b.known[t] {
		b.known[t] = true
		b.order = append(b.order, t)
	}
	b.back[t] = append(b.back[t], event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], fn)
}

// SwapBuffers rotates back→front and clears the new back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
func (b *Bus) DispatchAll() int {
	n := 0
	for _, t := range b.order {
		events := b.front[t]
		handlers := b.handlers[t]
		for _, ev := range events {
			for _, h := range handlers {
				callHandler(h, ev)
			}
			n++
		}
	}
	return n
}

// Flush swaps and dispatches in one call; used when a run stops so the
// final step's events are not stranded in the back buffer.
func (b *Bus) Flush() int {
	b.SwapBuffers()
	return b.DispatchAll()
}

// Pending returns the number of events waiting in the back buffer.
func (b *Bus) Pending() int {
	n := 0
	for _, evs := range b.back {
		n += len(evs)
	}
	return n
}

// Reset drops queued events but keeps subscriptions.
func (b *Bus) Reset() {
	for k := range b.front {
		b.front[k] = b.front[k][:0]
	}
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
