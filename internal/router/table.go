// Package router maps route identifiers to content resources, loads them
// into the document and announces each completed load on the event bus.
package router

import (
	"slices"

	"github.com/p-n-ai/pai-parametric/internal/content"
	"github.com/p-n-ai/pai-parametric/internal/curriculum"
	"github.com/p-n-ai/pai-parametric/internal/events"
)

// HomeRoute is the fallback route. It is always present in a table.
const HomeRoute = content.PageHome

// TitleSuffix ends every document title.
const TitleSuffix = " - Équations Paramétriques"

// Route is one navigable unit.
type Route struct {
	ID       string `json:"id"`
	Locator  string `json:"locator"`
	Title    string `json:"title"`
	Kind     string `json:"kind"`
	ModuleID string `json:"moduleId,omitempty"`
	CourseID string `json:"courseId,omitempty"`
}

// Table is the immutable route table.
type Table struct {
	routes map[string]Route
	order  []string
}

var staticRoutes = []struct{ id, title string }{
	{content.PageHome, "Accueil"},
	{content.PageAbout, "À propos"},
	{content.PageHelp, "Aide"},
	{content.PageGlossary, "Glossaire"},
}

// BuildTable registers the fixed pages plus, per module, one route per
// course and the module's quiz and resources pages. A nil structure yields
// the fixed pages only.
func BuildTable(s *curriculum.Structure) *Table {
	t := &Table{routes: make(map[string]Route)}
	for _, p := range staticRoutes {
		t.add(Route{
			ID:      p.id,
			Locator: content.StaticPath(p.id),
			Title:   p.title + TitleSuffix,
			Kind:    events.KindStatic,
		})
	}
	if s == nil {
		return t
	}

	for _, m := range s.Modules {
		for _, c := range m.Courses {
			t.add(Route{
				ID:       curriculum.CourseKey(m.ID, c.ID),
				Locator:  content.CoursePath(m.ID, c.ID),
				Title:    c.Title + TitleSuffix,
				Kind:     events.KindCourse,
				ModuleID: m.ID,
				CourseID: c.ID,
			})
		}
		t.add(Route{
			ID:       m.ID + "-quiz",
			Locator:  content.QuizPagePath(m.ID),
			Title:    "Quiz: " + m.Title + TitleSuffix,
			Kind:     events.KindQuiz,
			ModuleID: m.ID,
		})
		t.add(Route{
			ID:       m.ID + "-resources",
			Locator:  content.ResourcesPath(m.ID),
			Title:    "Ressources: " + m.Title + TitleSuffix,
			Kind:     events.KindResources,
			ModuleID: m.ID,
		})
	}
	return t
}

func (t *Table) add(r Route) {
	if _, dup := t.routes[r.ID]; !dup {
		t.order = append(t.order, r.ID)
	}
	t.routes[r.ID] = r
}

// Lookup returns the route registered under id.
func (t *Table) Lookup(id string) (Route, bool) {
	r, ok := t.routes[id]
	return r, ok
}

// Len returns the number of routes.
func (t *Table) Len() int { return len(t.order) }

// IDs returns the route ids in registration order.
func (t *Table) IDs() []string { return slices.Clone(t.order) }
