package router

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/p-n-ai/pai-parametric/internal/content"
	"github.com/p-n-ai/pai-parametric/internal/events"
	"github.com/p-n-ai/pai-parametric/internal/page"
	"github.com/p-n-ai/pai-parametric/internal/platform/metrics"
)

// ErrUnknownRoute is returned when a route id is not in the table.
var ErrUnknownRoute = errors.New("router: unknown route")

// ErrNoRoute is returned by Retry before the first navigation.
var ErrNoRoute = errors.New("router: no current route")

// Typesetter renders math in freshly injected markup.
type Typesetter interface {
	Typeset(ctx context.Context, markup string) error
}

// Expander opens a module in the navigation menu.
type Expander interface {
	Expand(moduleID string)
}

// EnterFunc runs after a route's content has been rendered. ctx is
// cancelled as soon as a newer navigation starts.
type EnterFunc func(ctx context.Context, r Route)

// Option configures a Router.
type Option func(*Router)

// WithBus publishes ContentLoaded after every load.
func WithBus(bus *events.Bus) Option {
	return func(r *Router) { r.bus = bus }
}

// WithTypesetter sets the math typesetter.
func WithTypesetter(ts Typesetter) Option {
	return func(r *Router) { r.typesetter = ts }
}

// WithExpander sets the menu that owns module expansion.
func WithExpander(e Expander) Option {
	return func(r *Router) { r.expander = e }
}

// WithMetrics records load and fetch counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

// WithEnter registers fn for routes whose id, or failing that whose kind,
// equals key.
func WithEnter(key string, fn EnterFunc) Option {
	return func(r *Router) { r.enter[key] = fn }
}

// Router drives navigation. Every fragment change funnels through one
// handler; NavigateTo, Back and Forward only move the Location.
type Router struct {
	table *Table
	loc   *Location
	src   content.Source
	doc   *page.Document

	bus        *events.Bus
	typesetter Typesetter
	expander   Expander
	metrics    *metrics.Metrics
	enter      map[string]EnterFunc

	ctx context.Context

	mu       sync.Mutex
	current  string
	previous string
	gen      uint64
	cancel   context.CancelFunc

	// steps serialises the post-render phase of loads.
	steps sync.Mutex
	wg    sync.WaitGroup
}

// New creates a router and subscribes it to loc. Loads run under ctx; its
// cancellation aborts in-flight fetches.
func New(ctx context.Context, table *Table, loc *Location, src content.Source, doc *page.Document, opts ...Option) *Router {
	r := &Router{
		table: table,
		loc:   loc,
		src:   src,
		doc:   doc,
		enter: make(map[string]EnterFunc),
		ctx:   ctx,
	}
	for _, opt := range opts {
		opt(r)
	}
	loc.OnChange(r.handle)
	return r
}

// Start loads the route named by the current fragment, or home when there
// is none.
func (r *Router) Start() {
	fragment := r.loc.Fragment()
	if fragment == "" {
		r.NavigateTo(HomeRoute)
		return
	}
	r.handle(fragment)
}

// NavigateTo moves the location to id. Loading follows from the fragment
// change, so navigating to the current route does nothing.
func (r *Router) NavigateTo(id string) {
	r.loc.Assign(id)
}

// Back moves one step back in history.
func (r *Router) Back() bool { return r.loc.Back() }

// Forward moves one step forward in history.
func (r *Router) Forward() bool { return r.loc.Forward() }

// Retry reloads the current route without touching history.
func (r *Router) Retry() error {
	r.mu.Lock()
	id := r.current
	r.mu.Unlock()

	if id == "" {
		return ErrNoRoute
	}
	route, ok := r.table.Lookup(id)
	if !ok {
		return ErrUnknownRoute
	}
	r.begin(route, false)
	return nil
}

// State returns the current and previous route ids.
func (r *Router) State() (current, previous string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.previous
}

// Table returns the route table.
func (r *Router) Table() *Table { return r.table }

// Wait blocks until every load started so far has settled.
func (r *Router) Wait() {
	r.wg.Wait()
}

func (r *Router) handle(fragment string) {
	id := fragment
	if id == "" {
		id = HomeRoute
	}
	route, ok := r.table.Lookup(id)
	if !ok {
		slog.Error("route not found, redirecting home", "route_id", id)
		if id == HomeRoute {
			return
		}
		r.NavigateTo(HomeRoute)
		return
	}
	r.begin(route, true)
}

// begin supersedes any in-flight load and starts loading route.
func (r *Router) begin(route Route, record bool) {
	r.mu.Lock()
	if record {
		r.previous = r.current
		r.current = route.ID
	}
	r.gen++
	gen := r.gen
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(r.ctx)
	r.cancel = cancel

	r.doc.SetTitle(route.Title)
	r.doc.ShowLoading()
	r.wg.Add(1)
	r.mu.Unlock()

	go r.load(ctx, gen, route)
}

// isCurrent reports whether gen is the latest load. Callers hold r.mu.
func (r *Router) isCurrent(gen uint64) bool {
	return gen == r.gen
}

func (r *Router) load(ctx context.Context, gen uint64, route Route) {
	defer r.wg.Done()

	markup, err := r.src.Fetch(ctx, route.Locator)

	r.mu.Lock()
	if !r.isCurrent(gen) {
		r.mu.Unlock()
		slog.Debug("discarding stale load", "route_id", route.ID)
		if r.metrics != nil {
			r.metrics.StaleLoads.Inc()
		}
		return
	}
	if err != nil {
		r.doc.ShowError("Impossible de charger le contenu demandé. Détails: "+err.Error(), route.ID)
		r.mu.Unlock()

		slog.Error("loading content failed", "route_id", route.ID, "locator", route.Locator, "error", err)
		if r.metrics != nil {
			r.metrics.FetchFailures.WithLabelValues("content").Inc()
		}
		return
	}
	r.doc.Render(markup)
	r.doc.Highlight(route.ModuleID, route.CourseID)
	r.mu.Unlock()

	if route.ModuleID != "" && r.expander != nil {
		r.expander.Expand(route.ModuleID)
	}

	r.steps.Lock()
	defer r.steps.Unlock()

	if fn := r.enterFor(route); fn != nil && ctx.Err() == nil {
		fn(ctx, route)
	}
	if r.typesetter != nil {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			if err := r.typesetter.Typeset(ctx, markup); err != nil {
				slog.Warn("typesetting failed", "route_id", route.ID, "error", err)
			}
		}()
	}
	r.doc.ScrollTop()

	r.mu.Lock()
	stale := !r.isCurrent(gen)
	r.mu.Unlock()
	if stale {
		return
	}

	if r.metrics != nil {
		r.metrics.RouteLoads.WithLabelValues(route.Kind).Inc()
	}
	slog.Debug("content loaded", "route_id", route.ID)
	if r.bus != nil {
		r.bus.Publish(events.ContentLoaded{
			RouteID:  route.ID,
			Kind:     route.Kind,
			ModuleID: route.ModuleID,
			CourseID: route.CourseID,
		})
	}
}

func (r *Router) enterFor(route Route) EnterFunc {
	if fn, ok := r.enter[route.ID]; ok {
		return fn
	}
	return r.enter[route.Kind]
}
