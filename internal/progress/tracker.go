package progress

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/p-n-ai/pai-parametric/internal/curriculum"
	"github.com/p-n-ai/pai-parametric/internal/events"
	"github.com/p-n-ai/pai-parametric/internal/kv"
	"github.com/p-n-ai/pai-parametric/internal/platform/metrics"
)

// PassScore is the quiz score at which a quiz counts as completed.
const PassScore = 70

// BadgeToastTTL is how long a badge notification stays visible.
const BadgeToastTTL = 5 * time.Second

// Sound cues played by the tracker.
const (
	CueSuccess      = "success"
	CueNotification = "notification"
)

// ExerciseCounter reports the number of exercises in the rendered page.
type ExerciseCounter interface {
	ExerciseCount() int
}

// Notifier shows transient notifications and plays audio cues.
type Notifier interface {
	Toast(title, body string, ttl time.Duration) string
	Cue(sound string)
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithBus publishes progress signals on bus.
func WithBus(bus *events.Bus) Option {
	return func(t *Tracker) { t.bus = bus }
}

// WithExerciseCounter sets the source of the exercise denominator.
func WithExerciseCounter(c ExerciseCounter) Option {
	return func(t *Tracker) { t.counter = c }
}

// WithNotifier sets where badge toasts and sound cues go.
func WithNotifier(n Notifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

// WithCatalogSize sets the number of courses in the curriculum, used by the
// all_courses badge.
func WithCatalogSize(n int) Option {
	return func(t *Tracker) { t.catalogSize = n }
}

// WithMetrics records badge, quiz and persistence counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// Tracker owns the progress record. Every mutation is applied and persisted
// under one lock; signals are published after the lock is released so
// subscribers may read the tracker.
type Tracker struct {
	mu  sync.Mutex
	rec Record

	// current is the course whose exercises are being tracked.
	current *curriculum.CourseRef

	store       kv.Store
	bus         *events.Bus
	counter     ExerciseCounter
	notifier    Notifier
	catalogSize int
	metrics     *metrics.Metrics
	now         func() time.Time
}

// New creates a tracker hydrated from store. A missing or unreadable stored
// record leaves the defaults in place.
func New(store kv.Store, opts ...Option) *Tracker {
	t := &Tracker{
		rec:   NewRecord(),
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	loaded := NewRecord()
	if kv.GetJSON(store, kv.KeyProgress, &loaded) {
		loaded.normalize()
		t.rec = loaded
	}
	return t
}

// effects are side effects collected under the lock and applied after it.
type effects struct {
	events []events.Event
	badges []Badge
	cues   []string
}

func (fx *effects) changed() {
	fx.events = append(fx.events, events.ProgressChanged{})
}

func (t *Tracker) apply(fx *effects) {
	for _, b := range fx.badges {
		slog.Info("badge earned", "badge", b.ID)
		if t.metrics != nil {
			t.metrics.BadgesEarned.WithLabelValues(b.ID).Inc()
		}
		if t.notifier != nil {
			t.notifier.Toast("Badge débloqué !", b.Title+" : "+b.Description, BadgeToastTTL)
			t.notifier.Cue(CueNotification)
		}
		fx.events = append(fx.events, events.BadgeEarned{ID: b.ID, Title: b.Title, Description: b.Description})
	}
	if t.notifier != nil {
		for _, c := range fx.cues {
			t.notifier.Cue(c)
		}
	}
	if t.bus != nil {
		for _, e := range fx.events {
			t.bus.Publish(e)
		}
	}
}

// persist writes the record. Failures are logged and the in-memory state is
// kept. Callers hold t.mu.
func (t *Tracker) persist() {
	if err := kv.SetJSON(t.store, kv.KeyProgress, t.rec); err != nil {
		slog.Error("saving progress failed", "error", err)
		if t.metrics != nil {
			t.metrics.PersistenceFailures.Inc()
		}
	}
}

// course returns the course record, creating it as visited when absent.
// Callers hold t.mu.
func (t *Tracker) course(key string) *CourseProgress {
	c, ok := t.rec.Courses[key]
	if !ok {
		now := t.now()
		c = &CourseProgress{
			Visited:            true,
			LastVisit:          &now,
			ExercisesCompleted: map[string]bool{},
		}
		t.rec.Courses[key] = c
	}
	return c
}

// MarkVisited records a visit to a course.
func (t *Tracker) MarkVisited(moduleID, courseID string) {
	var fx effects

	t.mu.Lock()
	c := t.course(curriculum.CourseKey(moduleID, courseID))
	now := t.now()
	c.Visited = true
	c.LastVisit = &now
	t.persist()
	fx.changed()
	t.mu.Unlock()

	t.apply(&fx)
}

// MarkExerciseCompleted flags exerciseID as done and recomputes the course
// percentage against the exercises on the rendered page. Exactly 100%
// completes the course. A page without exercises reads as 100% but does not
// complete it, and more recorded exercises than the page holds never does.
func (t *Tracker) MarkExerciseCompleted(moduleID, courseID, exerciseID string) {
	var fx effects

	t.mu.Lock()
	key := curriculum.CourseKey(moduleID, courseID)
	c := t.course(key)
	c.ExercisesCompleted[exerciseID] = true

	total := 0
	if t.counter != nil {
		total = t.counter.ExerciseCount()
	}
	pct := 100
	if total > 0 {
		pct = int(math.Round(float64(len(c.ExercisesCompleted)) / float64(total) * 100))
		if pct == 100 {
			t.complete(key, &fx)
		}
	}
	c.PercentCompleted = min(pct, 100)
	t.persist()
	fx.changed()
	fx.cues = append(fx.cues, CueSuccess)
	t.mu.Unlock()

	slog.Debug("exercise completed", "course_key", key, "exercise", exerciseID, "percent", pct)
	t.apply(&fx)
}

// MarkCompleted completes a course. The completed-course counter is
// incremented at most once per course.
func (t *Tracker) MarkCompleted(moduleID, courseID string) {
	var fx effects

	t.mu.Lock()
	t.complete(curriculum.CourseKey(moduleID, courseID), &fx)
	t.persist()
	fx.changed()
	t.mu.Unlock()

	t.apply(&fx)
}

// SetCoursePercentage overrides a course's completion percentage. 100
// completes the course.
func (t *Tracker) SetCoursePercentage(moduleID, courseID string, pct int) {
	var fx effects
	pct = min(max(pct, 0), 100)

	t.mu.Lock()
	key := curriculum.CourseKey(moduleID, courseID)
	c := t.course(key)
	c.PercentCompleted = pct
	if pct == 100 {
		t.complete(key, &fx)
	}
	t.persist()
	fx.changed()
	t.mu.Unlock()

	t.apply(&fx)
}

// complete marks key completed and evaluates badges. Callers hold t.mu.
func (t *Tracker) complete(key string, fx *effects) {
	c := t.course(key)
	c.Completed = true
	c.PercentCompleted = 100
	if !c.WasCountedAsCompleted {
		t.rec.CompletedCourses++
		c.WasCountedAsCompleted = true
		slog.Info("course completed", "course_key", key, "completed_courses", t.rec.CompletedCourses)
	}
	t.evaluateBadges(fx)
	fx.cues = append(fx.cues, CueSuccess)
}

// RecordQuizScore records an attempt at a module quiz. score is clamped to
// 0..100.
func (t *Tracker) RecordQuizScore(moduleID string, score int) {
	var fx effects
	score = min(max(score, 0), 100)

	t.mu.Lock()
	q, ok := t.rec.Quizzes[moduleID]
	if !ok {
		q = &QuizProgress{}
		t.rec.Quizzes[moduleID] = q
	}
	now := t.now()
	q.LastScore = score
	q.Attempts++
	q.LastAttempt = &now
	q.BestScore = max(q.BestScore, score)
	if score >= PassScore {
		q.Completed = true
	}
	t.persist()
	fx.changed()
	t.evaluateBadges(&fx)
	t.mu.Unlock()

	if t.metrics != nil {
		outcome := "failed"
		if score >= PassScore {
			outcome = "passed"
		}
		t.metrics.QuizAttempts.WithLabelValues(outcome).Inc()
	}
	slog.Info("quiz score recorded", "module", moduleID, "score", score)
	t.apply(&fx)
}

// Tick accrues one minute of study time.
func (t *Tracker) Tick() {
	var fx effects

	t.mu.Lock()
	now := t.now()
	t.rec.TotalStudyTime++
	t.rec.LastStudySession = &now
	t.evaluateBadges(&fx)
	t.persist()
	fx.changed()
	t.mu.Unlock()

	t.apply(&fx)
}

// RunStudyTimer calls Tick every interval until ctx is cancelled.
func (t *Tracker) RunStudyTimer(ctx context.Context, interval time.Duration) error {
	t.mu.Lock()
	if t.rec.LastStudySession == nil {
		now := t.now()
		t.rec.LastStudySession = &now
		t.persist()
	}
	t.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("study timer stopped")
			return nil
		case <-ticker.C:
			t.Tick()
		}
	}
}

// ResetAll restores the default record and persists it.
func (t *Tracker) ResetAll() {
	var fx effects

	t.mu.Lock()
	t.rec = NewRecord()
	t.persist()
	fx.events = append(fx.events, events.ProgressReset{})
	fx.changed()
	fx.cues = append(fx.cues, CueNotification)
	t.mu.Unlock()

	slog.Info("progress reset")
	t.apply(&fx)
}

// evaluateBadges awards every badge whose rule holds and that has not been
// earned yet. Callers hold t.mu.
func (t *Tracker) evaluateBadges(fx *effects) {
	for _, rule := range badgeRules {
		if t.rec.HasBadge(rule.id) || !rule.earned(&t.rec, t.catalogSize) {
			continue
		}
		b := Badge{
			ID:          rule.id,
			Title:       rule.title,
			Description: rule.description,
			EarnedDate:  t.now(),
		}
		t.rec.Badges = append(t.rec.Badges, b)
		fx.badges = append(fx.badges, b)
	}
}

// CompletionPercentage returns a course's percentage, 0 when unknown.
func (t *Tracker) CompletionPercentage(moduleID, courseID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.rec.Courses[curriculum.CourseKey(moduleID, courseID)]; ok {
		return c.PercentCompleted
	}
	return 0
}

// IsCompleted reports whether a course is completed.
func (t *Tracker) IsCompleted(moduleID, courseID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.rec.Courses[curriculum.CourseKey(moduleID, courseID)]
	return ok && c.Completed
}

// GlobalPercentage returns the share of tracked courses that are completed.
func (t *Tracker) GlobalPercentage() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.rec.Courses) == 0 {
		return 0
	}
	done := 0
	for _, c := range t.rec.Courses {
		if c.Completed {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(t.rec.Courses)) * 100))
}

// Snapshot returns a deep copy of the record.
func (t *Tracker) Snapshot() Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rec.Clone()
}

// Current returns the course whose exercises are tracked, if any.
func (t *Tracker) Current() (curriculum.CourseRef, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return curriculum.CourseRef{}, false
	}
	return *t.current, true
}

// Attach subscribes the tracker to content, exercise and quiz signals.
func (t *Tracker) Attach(bus *events.Bus) (detach func()) {
	unsubs := []func(){
		events.Subscribe(bus, func(e events.ContentLoaded) {
			if e.Kind != events.KindCourse {
				t.mu.Lock()
				t.current = nil
				t.mu.Unlock()
				return
			}
			t.mu.Lock()
			t.current = &curriculum.CourseRef{ModuleID: e.ModuleID, CourseID: e.CourseID}
			t.mu.Unlock()
			t.MarkVisited(e.ModuleID, e.CourseID)
		}),
		events.Subscribe(bus, func(e events.ExerciseCompleted) {
			ref, ok := t.Current()
			if !ok {
				slog.Debug("exercise completed outside a course", "exercise", e.ExerciseID)
				return
			}
			t.MarkExerciseCompleted(ref.ModuleID, ref.CourseID, e.ExerciseID)
		}),
		events.Subscribe(bus, func(e events.QuizCompleted) {
			t.RecordQuizScore(e.ModuleID, e.Score)
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
