package router_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/p-n-ai/pai-parametric/internal/content"
	"github.com/p-n-ai/pai-parametric/internal/curriculum"
	"github.com/p-n-ai/pai-parametric/internal/events"
	"github.com/p-n-ai/pai-parametric/internal/page"
	"github.com/p-n-ai/pai-parametric/internal/router"
)

func testStructure() *curriculum.Structure {
	return &curriculum.Structure{Modules: []curriculum.Module{
		{ID: "vectors", Title: "Vecteurs", Courses: []curriculum.Course{
			{ID: "dot-product", Title: "Produit scalaire"},
			{ID: "cross-product", Title: "Produit vectoriel"},
		}},
		{ID: "lines", Title: "Droites", Courses: []curriculum.Course{
			{ID: "intro", Title: "Introduction"},
		}},
	}}
}

type fakeSource struct {
	mu    sync.Mutex
	pages map[string]string
	fail  map[string]error
	gates map[string]chan struct{}
}

func newFakeSource(table *router.Table) *fakeSource {
	f := &fakeSource{
		pages: make(map[string]string),
		fail:  make(map[string]error),
		gates: make(map[string]chan struct{}),
	}
	for _, id := range table.IDs() {
		r, _ := table.Lookup(id)
		f.pages[r.Locator] = "<h1>" + r.ID + "</h1>"
	}
	return f
}

func (f *fakeSource) Fetch(_ context.Context, locator string) (string, error) {
	f.mu.Lock()
	gate := f.gates[locator]
	markup, ok := f.pages[locator]
	err := f.fail[locator]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "", content.ErrNotFound
	}
	return markup, nil
}

func (f *fakeSource) setFail(locator string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, locator)
		return
	}
	f.fail[locator] = err
}

func (f *fakeSource) gate(locator string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[locator] = ch
	return ch
}

type harness struct {
	table  *router.Table
	loc    *router.Location
	src    *fakeSource
	doc    *page.Document
	bus    *events.Bus
	router *router.Router

	mu     sync.Mutex
	loaded []events.ContentLoaded
}

func newHarness(t *testing.T, opts ...router.Option) *harness {
	t.Helper()
	h := &harness{
		table: router.BuildTable(testStructure()),
		loc:   router.NewLocation(),
		doc:   page.NewDocument(),
		bus:   events.NewBus(),
	}
	h.src = newFakeSource(h.table)
	events.Subscribe(h.bus, func(e events.ContentLoaded) {
		h.mu.Lock()
		h.loaded = append(h.loaded, e)
		h.mu.Unlock()
	})
	opts = append([]router.Option{router.WithBus(h.bus)}, opts...)
	h.router = router.New(t.Context(), h.table, h.loc, h.src, h.doc, opts...)
	return h
}

func (h *harness) navigate(id string) {
	h.router.NavigateTo(id)
	h.router.Wait()
}

func (h *harness) loadedIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var ids []string
	for _, e := range h.loaded {
		ids = append(ids, e.RouteID)
	}
	return ids
}

func TestBuildTable(t *testing.T) {
	table := router.BuildTable(testStructure())
	if got := table.Len(); got != 11 {
		t.Fatalf("Len() = %d, want 11", got)
	}

	tests := []struct {
		id      string
		title   string
		locator string
		kind    string
	}{
		{"home", "Accueil - Équations Paramétriques", "content/home.html", events.KindStatic},
		{"glossary", "Glossaire - Équations Paramétriques", "content/glossary.html", events.KindStatic},
		{"vectors-dot-product", "Produit scalaire - Équations Paramétriques", "content/vectors/dot-product.html", events.KindCourse},
		{"lines-quiz", "Quiz: Droites - Équations Paramétriques", "content/lines/quiz.html", events.KindQuiz},
		{"vectors-resources", "Ressources: Vecteurs - Équations Paramétriques", "content/vectors/resources.html", events.KindResources},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r, ok := table.Lookup(tt.id)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.id)
			}
			if r.Title != tt.title || r.Locator != tt.locator || r.Kind != tt.kind {
				t.Errorf("route = %+v", r)
			}
		})
	}

	if got := router.BuildTable(nil).Len(); got != 4 {
		t.Errorf("BuildTable(nil).Len() = %d, want 4", got)
	}
}

func TestNavigateTo_EveryRoute(t *testing.T) {
	h := newHarness(t)

	for _, id := range h.table.IDs() {
		h.navigate(id)
		want, _ := h.table.Lookup(id)
		if got := h.doc.Title(); got != want.Title {
			t.Errorf("after %s: Title() = %q, want %q", id, got, want.Title)
		}
		if cur, _ := h.router.State(); cur != id {
			t.Errorf("after %s: current = %q", id, cur)
		}
		if h.doc.State() != page.StateReady {
			t.Errorf("after %s: state = %q", id, h.doc.State())
		}
	}
	if got := h.loadedIDs(); len(got) != h.table.Len() {
		t.Errorf("ContentLoaded fired %d times, want %d", len(got), h.table.Len())
	}
}

func TestStart_DefaultsHome(t *testing.T) {
	h := newHarness(t)
	h.router.Start()
	h.router.Wait()

	if cur, prev := h.router.State(); cur != "home" || prev != "" {
		t.Errorf("State() = %q, %q, want home and empty", cur, prev)
	}
	if h.loc.Fragment() != "home" {
		t.Errorf("Fragment() = %q", h.loc.Fragment())
	}
}

func TestUnknownRouteRedirectsHome(t *testing.T) {
	h := newHarness(t)
	h.navigate("vectors-dot-product")
	h.navigate("nope-missing")

	cur, prev := h.router.State()
	if cur != "home" {
		t.Errorf("current = %q, want home", cur)
	}
	if prev != "vectors-dot-product" {
		t.Errorf("previous = %q, want vectors-dot-product", prev)
	}
	if h.loc.Fragment() != "home" {
		t.Errorf("Fragment() = %q, want home", h.loc.Fragment())
	}
	for _, id := range h.loadedIDs() {
		if id == "nope-missing" {
			t.Error("unknown route must never load")
		}
	}
}

func TestFetchFailureShowsRetry(t *testing.T) {
	h := newHarness(t)
	locator := content.CoursePath("lines", "intro")
	h.src.setFail(locator, errors.New("HTTP 503"))

	h.navigate("lines-intro")
	snap := h.doc.Snapshot()
	if snap.State != page.StateError || snap.RetryRoute != "lines-intro" {
		t.Fatalf("Snapshot() = %+v, want error with retry", snap)
	}
	if !strings.Contains(snap.Error, "HTTP 503") {
		t.Errorf("Error = %q", snap.Error)
	}
	if len(h.loadedIDs()) != 0 {
		t.Error("a failed load must not announce ContentLoaded")
	}

	h.src.setFail(locator, nil)
	if err := h.router.Retry(); err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	h.router.Wait()
	if h.doc.State() != page.StateReady {
		t.Errorf("state after retry = %q", h.doc.State())
	}
	if ids := h.loadedIDs(); len(ids) != 1 || ids[0] != "lines-intro" {
		t.Errorf("loaded = %v", ids)
	}
}

func TestRetry_BeforeNavigation(t *testing.T) {
	h := newHarness(t)
	if err := h.router.Retry(); !errors.Is(err, router.ErrNoRoute) {
		t.Errorf("Retry() error = %v, want ErrNoRoute", err)
	}
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	h := newHarness(t)
	slow := h.src.gate(content.CoursePath("vectors", "dot-product"))

	h.router.NavigateTo("vectors-dot-product")
	h.router.NavigateTo("lines-intro")
	close(slow)
	h.router.Wait()

	if got := h.doc.Snapshot().Body; got != "<h1>lines-intro</h1>" {
		t.Errorf("Body = %q, want the latest route's content", got)
	}
	if got := h.doc.Title(); got != "Introduction - Équations Paramétriques" {
		t.Errorf("Title() = %q", got)
	}
	if ids := h.loadedIDs(); len(ids) != 1 || ids[0] != "lines-intro" {
		t.Errorf("loaded = %v, want only lines-intro", ids)
	}
}

func TestBackForwardFunnelThroughHandler(t *testing.T) {
	h := newHarness(t)
	h.navigate("home")
	h.navigate("vectors-dot-product")
	h.navigate("vectors-quiz")

	if !h.router.Back() {
		t.Fatal("Back() = false")
	}
	h.router.Wait()
	if cur, prev := h.router.State(); cur != "vectors-dot-product" || prev != "vectors-quiz" {
		t.Errorf("State() = %q, %q", cur, prev)
	}
	if got := h.doc.Title(); got != "Produit scalaire - Équations Paramétriques" {
		t.Errorf("Title() = %q", got)
	}

	if !h.router.Forward() {
		t.Fatal("Forward() = false")
	}
	h.router.Wait()
	if cur, _ := h.router.State(); cur != "vectors-quiz" {
		t.Errorf("current = %q", cur)
	}
	if h.router.Forward() {
		t.Error("Forward() at the end of history should report false")
	}

	ids := h.loadedIDs()
	if len(ids) != 5 {
		t.Errorf("loaded = %v, want 5 loads", ids)
	}
}

func TestNavigateTo_SameRouteDoesNotReload(t *testing.T) {
	h := newHarness(t)
	h.navigate("about")
	h.navigate("about")

	if ids := h.loadedIDs(); len(ids) != 1 {
		t.Errorf("loaded = %v, want a single load", ids)
	}
}

type recordingExpander struct {
	mu      sync.Mutex
	modules []string
}

func (e *recordingExpander) Expand(moduleID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.modules = append(e.modules, moduleID)
}

type failingTypesetter struct {
	mu    sync.Mutex
	calls int
}

func (f *failingTypesetter) Typeset(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return errors.New("mathjax unavailable")
}

func TestLoadPipeline(t *testing.T) {
	expander := &recordingExpander{}
	typesetter := &failingTypesetter{}
	var order []string
	var entered []router.Route

	h := newHarness(t,
		router.WithExpander(expander),
		router.WithTypesetter(typesetter),
		router.WithEnter(events.KindCourse, func(_ context.Context, r router.Route) {
			order = append(order, "enter")
			entered = append(entered, r)
		}),
		router.WithEnter("glossary", func(context.Context, router.Route) {
			order = append(order, "glossary")
		}),
	)
	events.Subscribe(h.bus, func(events.ContentLoaded) { order = append(order, "loaded") })

	h.navigate("vectors-cross-product")
	h.navigate("glossary")

	if len(entered) != 1 || entered[0].CourseID != "cross-product" {
		t.Errorf("entered = %+v", entered)
	}
	want := []string{"enter", "loaded", "glossary", "loaded"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", order, want)
	}
	if len(expander.modules) != 1 || expander.modules[0] != "vectors" {
		t.Errorf("expanded = %v", expander.modules)
	}
	if typesetter.calls != 2 {
		t.Errorf("typesetter calls = %d, want 2", typesetter.calls)
	}

	snap := h.doc.Snapshot()
	if snap.ActiveModule != "" || snap.ActiveCourse != "" {
		t.Errorf("static page should clear highlight, got %s/%s", snap.ActiveModule, snap.ActiveCourse)
	}
}

func TestEnterHookMayNavigate(t *testing.T) {
	h := newHarness(t)
	loc := router.NewLocation()
	var r *router.Router
	r = router.New(t.Context(), h.table, loc, h.src, h.doc,
		router.WithBus(h.bus),
		router.WithEnter("about", func(context.Context, router.Route) {
			r.NavigateTo("help")
		}),
	)

	r.NavigateTo("about")
	r.Wait()

	if cur, prev := r.State(); cur != "help" || prev != "about" {
		t.Errorf("State() = %q, %q, want help after about", cur, prev)
	}
}
