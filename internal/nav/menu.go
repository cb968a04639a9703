// Package nav builds the side menu: module entries with their course,
// quiz and resources items, progress decorations and the persisted
// collapse/expand state.
package nav

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/p-n-ai/pai-parametric/internal/curriculum"
	"github.com/p-n-ai/pai-parametric/internal/events"
	"github.com/p-n-ai/pai-parametric/internal/kv"
	"github.com/p-n-ai/pai-parametric/internal/progress"
)

// Item kinds.
const (
	ItemCourse    = "course"
	ItemQuiz      = "quiz"
	ItemResources = "resources"
)

const defaultModuleIcon = "📚"

// Item is one clickable entry inside a module.
type Item struct {
	RouteID   string `json:"routeId"`
	Title     string `json:"title"`
	Kind      string `json:"kind"`
	Active    bool   `json:"active"`
	Visited   bool   `json:"visited,omitempty"`
	Completed bool   `json:"completed,omitempty"`
	Percent   int    `json:"percent,omitempty"`
	BestScore int    `json:"bestScore,omitempty"`
}

// Entry is a module, or a top-level page when Items is empty.
type Entry struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Icon     string `json:"icon"`
	Active   bool   `json:"active,omitempty"`
	Expanded bool   `json:"expanded"`
	Items    []Item `json:"items,omitempty"`
}

// View is the rendered menu.
type View struct {
	Collapsed      bool    `json:"collapsed"`
	GlobalProgress int     `json:"globalProgress"`
	Home           Entry   `json:"home"`
	Modules        []Entry `json:"modules"`
	Utilities      []Entry `json:"utilities"`
}

// SidebarState is persisted under kv.KeySidebar.
type SidebarState struct {
	Collapsed       bool     `json:"collapsed"`
	ExpandedModules []string `json:"expandedModules"`
}

// ProgressSource supplies decorations.
type ProgressSource interface {
	Snapshot() progress.Record
	GlobalPercentage() int
}

// ActiveSource reports the highlighted module and course.
type ActiveSource interface {
	Active() (moduleID, courseID string)
}

// Menu is safe for concurrent use.
type Menu struct {
	structure *curriculum.Structure
	store     kv.Store
	progress  ProgressSource
	active    ActiveSource

	mu     sync.Mutex
	state  SidebarState
	record progress.Record
	global int
}

// New builds a menu over s. progress and active may be nil.
func New(s *curriculum.Structure, store kv.Store, prog ProgressSource, active ActiveSource) *Menu {
	if s == nil {
		s = &curriculum.Structure{}
	}
	m := &Menu{
		structure: s,
		store:     store,
		progress:  prog,
		active:    active,
		record:    progress.NewRecord(),
	}
	kv.GetJSON(store, kv.KeySidebar, &m.state)
	if m.state.ExpandedModules == nil {
		m.state.ExpandedModules = []string{}
	}
	m.Refresh()
	return m
}

// Refresh reloads decorations from the progress source.
func (m *Menu) Refresh() {
	if m.progress == nil {
		return
	}
	rec := m.progress.Snapshot()
	global := m.progress.GlobalPercentage()

	m.mu.Lock()
	m.record = rec
	m.global = global
	m.mu.Unlock()
}

// Strip removes every decoration.
func (m *Menu) Strip() {
	m.mu.Lock()
	m.record = progress.NewRecord()
	m.global = 0
	m.mu.Unlock()
}

// Attach keeps decorations in step with progress signals.
func (m *Menu) Attach(bus *events.Bus) (detach func()) {
	unsubs := []func(){
		events.Subscribe(bus, func(events.ProgressReset) { m.Strip() }),
		events.Subscribe(bus, func(events.ProgressChanged) { m.Refresh() }),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// State returns the sidebar state.
func (m *Menu) State() SidebarState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return SidebarState{
		Collapsed:       m.state.Collapsed,
		ExpandedModules: slices.Clone(m.state.ExpandedModules),
	}
}

// Expand opens a module.
func (m *Menu) Expand(moduleID string) {
	m.setExpanded(moduleID, true)
}

// Collapse closes a module.
func (m *Menu) Collapse(moduleID string) {
	m.setExpanded(moduleID, false)
}

// Toggle flips a module and reports whether it is now expanded.
func (m *Menu) Toggle(moduleID string) bool {
	m.mu.Lock()
	open := !slices.Contains(m.state.ExpandedModules, moduleID)
	m.mu.Unlock()

	m.setExpanded(moduleID, open)
	return open
}

func (m *Menu) setExpanded(moduleID string, open bool) {
	if _, ok := m.structure.FindModule(moduleID); !ok {
		slog.Debug("ignoring unknown module", "module", moduleID)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	has := slices.Contains(m.state.ExpandedModules, moduleID)
	switch {
	case open && !has:
		m.state.ExpandedModules = append(m.state.ExpandedModules, moduleID)
	case !open && has:
		m.state.ExpandedModules = slices.DeleteFunc(m.state.ExpandedModules, func(id string) bool { return id == moduleID })
	default:
		return
	}
	m.save()
}

// SetCollapsed collapses or restores the whole sidebar.
func (m *Menu) SetCollapsed(collapsed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Collapsed = collapsed
	m.save()
}

// save persists the sidebar state. Callers hold m.mu.
func (m *Menu) save() {
	if err := kv.SetJSON(m.store, kv.KeySidebar, m.state); err != nil {
		slog.Error("saving sidebar state failed", "error", err)
	}
}

// View renders the menu.
func (m *Menu) View() View {
	var activeModule, activeCourse string
	if m.active != nil {
		activeModule, activeCourse = m.active.Active()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{
		Collapsed:      m.state.Collapsed,
		GlobalProgress: m.global,
		Home:           Entry{ID: "home", Title: "Accueil", Icon: "🏠"},
		Utilities: []Entry{
			{ID: "glossary", Title: "Glossaire", Icon: "📘"},
			{ID: "about", Title: "À propos", Icon: "ℹ️"},
			{ID: "help", Title: "Aide", Icon: "❓"},
		},
	}

	for _, mod := range m.structure.Modules {
		e := Entry{
			ID:       mod.ID,
			Title:    mod.Title,
			Icon:     mod.Icon,
			Active:   mod.ID == activeModule,
			Expanded: slices.Contains(m.state.ExpandedModules, mod.ID),
		}
		if e.Icon == "" {
			e.Icon = defaultModuleIcon
		}
		for _, c := range mod.Courses {
			key := curriculum.CourseKey(mod.ID, c.ID)
			item := Item{
				RouteID: key,
				Title:   c.Title,
				Kind:    ItemCourse,
				Active:  mod.ID == activeModule && c.ID == activeCourse,
			}
			if cp, ok := m.record.Courses[key]; ok {
				item.Visited = cp.Visited
				item.Completed = cp.Completed
				item.Percent = cp.PercentCompleted
			}
			e.Items = append(e.Items, item)
		}

		quiz := Item{RouteID: mod.ID + "-quiz", Title: "Quiz du module", Kind: ItemQuiz}
		if qp, ok := m.record.Quizzes[mod.ID]; ok {
			quiz.Completed = qp.Completed
			quiz.BestScore = qp.BestScore
		}
		e.Items = append(e.Items,
			quiz,
			Item{RouteID: mod.ID + "-resources", Title: "Ressources supplémentaires", Kind: ItemResources},
		)
		v.Modules = append(v.Modules, e)
	}

	return v
}
