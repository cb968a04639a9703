// Package app is the composition root of the learning shell. It builds every
// component once, injects their collaborators explicitly and wires the
// per-route behaviour the router runs after each load.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/p-n-ai/pai-parametric/internal/content"
	"github.com/p-n-ai/pai-parametric/internal/curriculum"
	"github.com/p-n-ai/pai-parametric/internal/events"
	"github.com/p-n-ai/pai-parametric/internal/kv"
	"github.com/p-n-ai/pai-parametric/internal/nav"
	"github.com/p-n-ai/pai-parametric/internal/notify"
	"github.com/p-n-ai/pai-parametric/internal/page"
	"github.com/p-n-ai/pai-parametric/internal/platform/cache"
	"github.com/p-n-ai/pai-parametric/internal/platform/config"
	"github.com/p-n-ai/pai-parametric/internal/platform/database"
	"github.com/p-n-ai/pai-parametric/internal/platform/metrics"
	"github.com/p-n-ai/pai-parametric/internal/prefs"
	"github.com/p-n-ai/pai-parametric/internal/progress"
	"github.com/p-n-ai/pai-parametric/internal/quiz"
	"github.com/p-n-ai/pai-parametric/internal/router"
	"github.com/p-n-ai/pai-parametric/internal/search"
)

// HealthChecker is a dependency that can report its readiness.
type HealthChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies of an App. Nil fields get in-process
// defaults: a memory store, no journal and fresh metrics.
type Deps struct {
	Settings *config.Config
	Store    kv.Store
	Source   content.Source
	Recorder events.Recorder
	Metrics  *metrics.Metrics
	Checkers []HealthChecker
	Closers  []func()
}

// App owns every component of one learner's shell.
type App struct {
	Settings *config.Config
	Bus      *events.Bus
	Store    kv.Store
	Source   content.Source
	Metrics  *metrics.Metrics

	Curriculum *curriculum.Structure
	Loader     *curriculum.Loader

	Document *page.Document
	Location *router.Location
	Router   *router.Router
	Progress *progress.Tracker
	Search   *search.Index
	Menu     *nav.Menu
	Prefs    *prefs.Manager
	Notify   *notify.Center

	checkers []HealthChecker
	closers  []func()

	mu   sync.Mutex
	quiz *quiz.Session
	// loads tracks quiz data fetches started by the quiz hook.
	loads sync.WaitGroup
}

// Build opens the infrastructure named by cfg and assembles the app on top
// of it.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	deps := Deps{Settings: cfg, Metrics: metrics.New()}

	closeAll := func() {
		for i := len(deps.Closers) - 1; i >= 0; i-- {
			deps.Closers[i]()
		}
	}

	var db *database.DB
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		deps.Store = kv.NewMemoryStore()
	case config.BackendFile:
		fs, err := kv.NewFileStore(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("opening file store: %w", err)
		}
		deps.Store = fs
	case config.BackendRedis:
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return nil, fmt.Errorf("connecting to cache: %w", err)
		}
		deps.Closers = append(deps.Closers, func() { _ = c.Close() })
		deps.Checkers = append(deps.Checkers, c)
		rs, err := kv.NewRedisStore(c)
		if err != nil {
			closeAll()
			return nil, err
		}
		deps.Store = rs
	case config.BackendPostgres:
		var err error
		db, err = database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		deps.Closers = append(deps.Closers, db.Close)
		deps.Checkers = append(deps.Checkers, db)
		ps, err := kv.NewPostgresStore(db.Pool)
		if err != nil {
			closeAll()
			return nil, err
		}
		deps.Store = ps
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Journal.Enabled && db != nil {
		deps.Recorder = events.NewPostgresRecorder(db.Pool)
	}

	src, err := newSource(cfg)
	if err != nil {
		closeAll()
		return nil, err
	}
	deps.Source = src

	return New(ctx, deps)
}

func newSource(cfg *config.Config) (content.Source, error) {
	var (
		src content.Source
		err error
	)
	if cfg.UsesRemoteContent() {
		src, err = content.NewHTTPSource(cfg.Content.BaseURL)
	} else {
		src, err = content.NewDirSource(cfg.Content.Root)
	}
	if err != nil {
		return nil, fmt.Errorf("opening content source: %w", err)
	}
	if cfg.Content.Cache {
		src = content.NewCachedSource(src, kv.NewMemoryStore())
	}
	return src, nil
}

// New assembles an app from deps. The course structure is loaded once; when
// it cannot be loaded the shell starts with the fixed pages only. ctx bounds
// every content load.
func New(ctx context.Context, deps Deps) (*App, error) {
	if deps.Settings == nil {
		return nil, errors.New("app: settings are required")
	}
	if deps.Source == nil {
		return nil, errors.New("app: content source is required")
	}
	cfg := deps.Settings

	a := &App{
		Settings: cfg,
		Bus:      events.NewBus(),
		Store:    deps.Store,
		Source:   deps.Source,
		Metrics:  deps.Metrics,
		Document: page.NewDocument(),
		Location: router.NewLocation(),
		checkers: deps.Checkers,
		closers:  deps.Closers,
	}
	if a.Store == nil {
		a.Store = kv.NewMemoryStore()
	}
	if a.Metrics == nil {
		a.Metrics = metrics.New()
	}

	loader, err := curriculum.NewLoader(ctx, a.Source, cfg.CurriculumPath)
	if err != nil {
		slog.Error("course structure unavailable, serving fixed pages only", "error", err)
		a.Metrics.FetchFailures.WithLabelValues("structure").Inc()
		a.Curriculum = &curriculum.Structure{}
	} else {
		a.Loader = loader
		a.Curriculum = loader.Structure()
	}

	if deps.Recorder != nil {
		a.closers = append(a.closers, events.Journal(a.Bus, deps.Recorder))
	}

	a.Prefs = prefs.New(a.Store, a.Bus)
	a.Notify = notify.New(notify.WithSoundGate(a.Prefs.SoundsEnabled))

	a.Progress = progress.New(a.Store,
		progress.WithBus(a.Bus),
		progress.WithExerciseCounter(a.Document),
		progress.WithNotifier(a.Notify),
		progress.WithCatalogSize(a.Curriculum.CourseCount()),
		progress.WithMetrics(a.Metrics),
	)
	a.closers = append(a.closers, a.Progress.Attach(a.Bus))

	a.Search = search.New(a.Curriculum, search.Options{
		MinQuery:   cfg.Search.MinQuery,
		MaxResults: cfg.Search.MaxResults,
		Metrics:    a.Metrics,
	})
	a.closers = append(a.closers, a.Search.Attach(a.Bus, a.Document))

	a.Menu = nav.New(a.Curriculum, a.Store, a.Progress, a.Document)
	a.closers = append(a.closers, a.Menu.Attach(a.Bus))

	a.Router = router.New(ctx, router.BuildTable(a.Curriculum), a.Location, a.Source, a.Document,
		router.WithBus(a.Bus),
		router.WithTypesetter(mathTypesetter{}),
		router.WithExpander(a.Menu),
		router.WithMetrics(a.Metrics),
		router.WithEnter(events.KindCourse, a.enterCourse),
		router.WithEnter(events.KindQuiz, a.enterQuiz),
	)
	return a, nil
}

// Start loads the initial route.
func (a *App) Start() {
	a.Router.Start()
}

// Run accrues study time until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.Progress.RunStudyTimer(ctx, a.Settings.Study.Tick)
}

// Wait blocks until in-flight route loads and the quiz fetches they started
// have settled.
func (a *App) Wait() {
	a.Router.Wait()
	a.loads.Wait()
}

// Checkers returns the dependencies reported by the readiness probe.
func (a *App) Checkers() []HealthChecker {
	return a.checkers
}

// Close waits for in-flight loads, detaches subscribers and releases
// infrastructure in reverse order of acquisition.
func (a *App) Close() {
	a.Wait()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
