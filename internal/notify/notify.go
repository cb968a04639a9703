// Package notify holds transient notifications and the last audio cue.
package notify

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sound cues.
const (
	SoundClick        = "click"
	SoundSuccess      = "success"
	SoundError        = "error"
	SoundNotification = "notification"
)

var sounds = []string{SoundClick, SoundSuccess, SoundError, SoundNotification}

// Toast is a transient notification.
type Toast struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Cue is the most recent sound played.
type Cue struct {
	Sound string    `json:"sound"`
	At    time.Time `json:"at"`
	Count int       `json:"count"`
}

// Option configures a Center.
type Option func(*Center)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// WithSoundGate mutes cues whenever enabled returns false.
func WithSoundGate(enabled func() bool) Option {
	return func(c *Center) { c.soundsOn = enabled }
}

// Center keeps toasts until they expire or are dismissed.
type Center struct {
	mu       sync.Mutex
	toasts   []Toast
	cue      Cue
	now      func() time.Time
	soundsOn func() bool
}

// New creates an empty center.
func New(opts ...Option) *Center {
	c := &Center{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Toast shows a notification for ttl and returns its id.
func (c *Center) Toast(title, body string, ttl time.Duration) string {
	now := c.now()
	t := Toast{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	c.mu.Lock()
	c.toasts = append(c.toasts, t)
	c.mu.Unlock()
	return t.ID
}

// Active returns the toasts that have not expired, oldest first.
func (c *Center) Active() []Toast {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.toasts = slices.DeleteFunc(c.toasts, func(t Toast) bool { return !now.Before(t.ExpiresAt) })
	return slices.Clone(c.toasts)
}

// Dismiss closes a toast. It reports whether the toast was showing.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.toasts)
	c.toasts = slices.DeleteFunc(c.toasts, func(t Toast) bool { return t.ID == id })
	return len(c.toasts) != n
}

// Cue plays sound unless sounds are muted. Unknown sounds are ignored.
func (c *Center) Cue(sound string) {
	if !slices.Contains(sounds, sound) {
		slog.Debug("unknown sound cue", "sound", sound)
		return
	}
	if c.soundsOn != nil && !c.soundsOn() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cue = Cue{Sound: sound, At: c.now(), Count: c.cue.Count + 1}
}

// LastCue returns the most recent cue; Count is 0 if none has played.
func (c *Center) LastCue() Cue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cue
}
