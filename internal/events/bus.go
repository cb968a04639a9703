// Package events is the in-process signal bus that decouples the router,
// progress store, quiz engine and search index.
//
// Delivery is synchronous and in registration order. Handlers may publish
// further events from inside a handler.
package events

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

// Event is a signal carried by the bus.
type Event interface {
	// Name is the wire name of the signal, e.g. "contentLoaded".
	Name() string
}

type subscription struct {
	id   uint64
	name string // empty matches every event
	fn   func(Event)
}

// Bus fans events out to subscribers.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for events of type E and returns a function that
// removes the registration.
func Subscribe[E Event](b *Bus, fn func(E)) (unsubscribe func()) {
	var zero E
	return b.add(zero.Name(), func(e Event) {
		if ev, ok := e.(E); ok {
			fn(ev)
		}
	})
}

// SubscribeAll registers fn for every event.
func (b *Bus) SubscribeAll(fn func(Event)) (unsubscribe func()) {
	return b.add("", fn)
}

func (b *Bus) add(name string, fn func(Event)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, name: name, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers e to every matching subscriber registered at the time of
// the call. A panicking handler is logged and does not stop delivery.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.name == "" || s.name == e.Name() {
			subs = append(subs, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range subs {
		deliver(s, e)
	}
}

func deliver(s subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked",
				"event", e.Name(),
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	s.fn(e)
}
