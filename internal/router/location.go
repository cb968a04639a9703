package router

import (
	"slices"
	"sync"
)

// Location is the navigable address of the shell: the current fragment
// plus a linear history. Listeners are told about every fragment change,
// whatever caused it.
type Location struct {
	mu        sync.Mutex
	history   []string
	pos       int
	listeners []func(fragment string)
}

// NewLocation returns a location with an empty fragment.
func NewLocation() *Location {
	return &Location{pos: -1}
}

// Fragment returns the current fragment, "" before the first assignment.
func (l *Location) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fragment()
}

func (l *Location) fragment() string {
	if l.pos < 0 {
		return ""
	}
	return l.history[l.pos]
}

// OnChange registers fn to run after every fragment change.
func (l *Location) OnChange(fn func(fragment string)) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

// Assign sets the fragment, discarding any forward history. Assigning the
// current fragment changes nothing and notifies no one.
func (l *Location) Assign(fragment string) {
	l.mu.Lock()
	if l.pos >= 0 && l.history[l.pos] == fragment {
		l.mu.Unlock()
		return
	}
	l.history = append(l.history[:l.pos+1], fragment)
	l.pos++
	l.mu.Unlock()

	l.notify(fragment)
}

// Back moves one entry back in history. It reports false at the start.
func (l *Location) Back() bool {
	return l.move(-1)
}

// Forward moves one entry forward in history. It reports false at the end.
func (l *Location) Forward() bool {
	return l.move(1)
}

func (l *Location) move(delta int) bool {
	l.mu.Lock()
	next := l.pos + delta
	if next < 0 || next >= len(l.history) {
		l.mu.Unlock()
		return false
	}
	l.pos = next
	fragment := l.history[next]
	l.mu.Unlock()

	l.notify(fragment)
	return true
}

// History returns the entries and the index of the current one.
func (l *Location) History() ([]string, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.history), l.pos
}

func (l *Location) notify(fragment string) {
	l.mu.Lock()
	listeners := slices.Clone(l.listeners)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(fragment)
	}
}
