package server

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/p-n-ai/pai-parametric/internal/events"
)

// FrameSubscribed is the type of the frame that opens every stream.
const FrameSubscribed = "subscribed"

// Frame is one bus event as sent to websocket clients.
type Frame struct {
	Type string       `json:"type"`
	Data events.Event `json:"data,omitempty"`
}

// Broker fans bus events out to websocket subscribers. Slow subscribers
// miss events rather than block the publisher.
type Broker struct {
	mu   sync.RWMutex
	subs map[chan []byte]struct{}
}

// NewBroker creates a broker with no subscribers.
func NewBroker() *Broker {
	return &Broker{subs: make(map[chan []byte]struct{})}
}

// Attach forwards every event published on bus.
func (b *Broker) Attach(bus *events.Bus) (detach func()) {
	return bus.SubscribeAll(b.Publish)
}

// Subscribe returns a channel receiving JSON-encoded frames.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes ch.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Publish sends e to every subscriber.
func (b *Broker) Publish(e events.Event) {
	data, err := json.Marshal(Frame{Type: e.Name(), Data: e})
	if err != nil {
		slog.Warn("encoding event frame failed", "event", e.Name(), "error", err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- data:
		default:
			slog.Debug("dropping event for slow subscriber", "event", e.Name())
		}
	}
}
