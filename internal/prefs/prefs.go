// Package prefs stores the learner's display preferences.
package prefs

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/p-n-ai/pai-parametric/internal/events"
	"github.com/p-n-ai/pai-parametric/internal/kv"
)

// Themes.
const (
	ThemeLight      = "light"
	ThemeDark       = "dark"
	ThemeBlackboard = "blackboard"
	ThemeGrid       = "grid"
)

// Themes lists the accepted themes.
var Themes = []string{ThemeLight, ThemeDark, ThemeBlackboard, ThemeGrid}

// Ranges for percentage settings.
const (
	FontSizeMin  = 80
	FontSizeMax  = 120
	ContrastMin  = 90
	ContrastMax  = 110
	FontSizeStep = 5
	normal       = 100
)

// ErrInvalid is returned for a preference value outside its range.
var ErrInvalid = errors.New("prefs: invalid value")

// Preferences are the persisted display settings.
type Preferences struct {
	Theme      string `json:"theme"`
	FontSize   int    `json:"fontSize"`
	Contrast   int    `json:"contrast"`
	Animations bool   `json:"animations"`
	Sounds     bool   `json:"sounds"`
}

// Defaults returns the out-of-the-box preferences.
func Defaults() Preferences {
	return Preferences{
		Theme:      ThemeLight,
		FontSize:   normal,
		Contrast:   normal,
		Animations: true,
		Sounds:     true,
	}
}

// Validate checks every field.
func (p Preferences) Validate() error {
	if !slices.Contains(Themes, p.Theme) {
		return fmt.Errorf("%w: theme %q", ErrInvalid, p.Theme)
	}
	if p.FontSize < FontSizeMin || p.FontSize > FontSizeMax {
		return fmt.Errorf("%w: font size %d", ErrInvalid, p.FontSize)
	}
	if p.Contrast < ContrastMin || p.Contrast > ContrastMax {
		return fmt.Errorf("%w: contrast %d", ErrInvalid, p.Contrast)
	}
	return nil
}

// sanitize resets out-of-range fields to their defaults.
func (p *Preferences) sanitize() {
	d := Defaults()
	if !slices.Contains(Themes, p.Theme) {
		slog.Warn("stored theme is not valid, using default", "theme", p.Theme)
		p.Theme = d.Theme
	}
	if p.FontSize < FontSizeMin || p.FontSize > FontSizeMax {
		slog.Warn("stored font size is not valid, using default", "font_size", p.FontSize)
		p.FontSize = d.FontSize
	}
	if p.Contrast < ContrastMin || p.Contrast > ContrastMax {
		slog.Warn("stored contrast is not valid, using default", "contrast", p.Contrast)
		p.Contrast = d.Contrast
	}
}

// Manager owns the preferences.
type Manager struct {
	mu    sync.Mutex
	p     Preferences
	store kv.Store
	bus   *events.Bus
}

// New loads preferences from store over the defaults. bus may be nil.
func New(store kv.Store, bus *events.Bus) *Manager {
	p := Defaults()
	kv.GetJSON(store, kv.KeyPreferences, &p)
	p.sanitize()
	return &Manager{p: p, store: store, bus: bus}
}

// Get returns the current preferences.
func (m *Manager) Get() Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.p
}

// SoundsEnabled reports whether audio cues should play.
func (m *Manager) SoundsEnabled() bool {
	return m.Get().Sounds
}

// Update replaces every preference at once.
func (m *Manager) Update(p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	old := m.p.Theme
	m.p = p
	m.save()
	m.mu.Unlock()

	if p.Theme != old {
		m.themeChanged(p.Theme)
	}
	return nil
}

// SetTheme switches the theme and announces it.
func (m *Manager) SetTheme(theme string) error {
	if !slices.Contains(Themes, theme) {
		return fmt.Errorf("%w: theme %q", ErrInvalid, theme)
	}
	m.mu.Lock()
	m.p.Theme = theme
	m.save()
	m.mu.Unlock()

	m.themeChanged(theme)
	return nil
}

// SetFontSize sets the font size percentage.
func (m *Manager) SetFontSize(pct int) error {
	if pct < FontSizeMin || pct > FontSizeMax {
		return fmt.Errorf("%w: font size %d", ErrInvalid, pct)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p.FontSize = pct
	m.save()
	return nil
}

// IncreaseFontSize grows the font by one step, up to FontSizeMax.
func (m *Manager) IncreaseFontSize() int {
	return m.stepFontSize(FontSizeStep)
}

// DecreaseFontSize shrinks the font by one step, down to FontSizeMin.
func (m *Manager) DecreaseFontSize() int {
	return m.stepFontSize(-FontSizeStep)
}

func (m *Manager) stepFontSize(delta int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p.FontSize = min(max(m.p.FontSize+delta, FontSizeMin), FontSizeMax)
	m.save()
	return m.p.FontSize
}

// SetContrast sets the contrast percentage.
func (m *Manager) SetContrast(pct int) error {
	if pct < ContrastMin || pct > ContrastMax {
		return fmt.Errorf("%w: contrast %d", ErrInvalid, pct)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p.Contrast = pct
	m.save()
	return nil
}

// SetAnimations toggles animations.
func (m *Manager) SetAnimations(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p.Animations = on
	m.save()
}

// SetSounds toggles audio cues.
func (m *Manager) SetSounds(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p.Sounds = on
	m.save()
}

// Reset restores the defaults.
func (m *Manager) Reset() {
	if err := m.Update(Defaults()); err != nil {
		slog.Error("resetting preferences", "error", err)
	}
}

// save persists the preferences. Callers hold m.mu.
func (m *Manager) save() {
	if err := kv.SetJSON(m.store, kv.KeyPreferences, m.p); err != nil {
		slog.Error("saving preferences failed", "error", err)
	}
}

func (m *Manager) themeChanged(theme string) {
	slog.Debug("theme applied", "theme", theme)
	if m.bus != nil {
		m.bus.Publish(events.ThemeChanged{Theme: theme})
	}
}
