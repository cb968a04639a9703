package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/p-n-ai/pai-parametric/internal/curriculum"
	"github.com/p-n-ai/pai-parametric/internal/events"
	"github.com/p-n-ai/pai-parametric/internal/kv"
	"github.com/p-n-ai/pai-parametric/internal/notify"
	"github.com/p-n-ai/pai-parametric/internal/quiz"
	"github.com/p-n-ai/pai-parametric/internal/router"
)

var (
	// ErrNoExercise is returned when the rendered page has no exercise with
	// the requested id.
	ErrNoExercise = errors.New("app: exercise not found on page")

	// ErrNoQuiz is returned when no quiz has been opened.
	ErrNoQuiz = errors.New("app: no quiz open")
)

// quizErrorPrefix starts the message shown in the quiz region when its data
// cannot be loaded.
const quizErrorPrefix = "Impossible de charger le quiz. Détails: "

// HomeInfo holds the targets of the home page buttons. Either id is empty
// when there is nothing to start or resume.
type HomeInfo struct {
	Start  string `json:"start,omitempty"`
	Resume string `json:"resume,omitempty"`
}

func (a *App) enterCourse(_ context.Context, r router.Route) {
	if err := a.Store.Set(kv.KeyLastCourse, []byte(r.ID)); err != nil {
		slog.Warn("saving last course failed", "route_id", r.ID, "error", err)
		a.Metrics.PersistenceFailures.Inc()
	}
	a.Document.SetCourseNav(a.Curriculum.Neighbors(r.ModuleID, r.CourseID))
}

// enterQuiz fetches the module's quiz data in the background so the rest of
// the page load does not wait on it. A superseded navigation cancels ctx and
// the result is dropped.
func (a *App) enterQuiz(ctx context.Context, r router.Route) {
	a.Document.ClearQuizError()
	if a.Loader == nil {
		a.Document.ShowQuizError(quizErrorPrefix + "structure des cours indisponible")
		return
	}

	a.loads.Add(1)
	go func() {
		defer a.loads.Done()
		a.openQuiz(ctx, r.ModuleID)
	}()
}

func (a *App) openQuiz(ctx context.Context, moduleID string) {
	questions, err := a.Loader.Quiz(ctx, moduleID)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		slog.Error("loading quiz failed", "module", moduleID, "error", err)
		a.Metrics.FetchFailures.WithLabelValues("quiz").Inc()
		a.Document.ShowQuizError(quizErrorPrefix + err.Error())
		return
	}

	s := quiz.NewSession(moduleID, questions, a.Settings.Quiz.PassThreshold, a.Bus)
	a.mu.Lock()
	if ctx.Err() != nil {
		a.mu.Unlock()
		return
	}
	a.quiz = s
	a.mu.Unlock()
	slog.Info("quiz opened", "module", moduleID, "questions", s.Len())
}

// Home returns the start and resume targets. Resume is the last visited
// course when it still exists in the route table.
func (a *App) Home() HomeInfo {
	var h HomeInfo
	for _, m := range a.Curriculum.Modules {
		if len(m.Courses) > 0 {
			h.Start = curriculum.CourseKey(m.ID, m.Courses[0].ID)
			break
		}
	}
	data, err := a.Store.Get(kv.KeyLastCourse)
	if err != nil {
		return h
	}
	if id := string(data); id != "" {
		if _, ok := a.Router.Table().Lookup(id); ok {
			h.Resume = id
		}
	}
	return h
}

// Quiz returns the most recently opened quiz session.
func (a *App) Quiz() (*quiz.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.quiz == nil {
		return nil, ErrNoQuiz
	}
	return a.quiz, nil
}

// CheckExercise grades an exercise of the rendered page and announces the
// attempt. Incomplete submissions return quiz.ErrIncomplete and are not
// announced.
func (a *App) CheckExercise(id string, sub quiz.Submission) (bool, error) {
	ex, ok := a.Document.Exercise(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNoExercise, id)
	}
	correct, err := quiz.CheckExercise(ex, sub)
	if err != nil {
		return false, err
	}

	// The tracker cues success for every attempt; a wrong answer overrides it.
	a.Bus.Publish(events.ExerciseCompleted{ExerciseID: id, Correct: correct})
	if !correct {
		a.Notify.Cue(notify.SoundError)
	}
	return correct, nil
}

// mathTypesetter checks that inline and display math delimiters in freshly
// rendered markup are balanced.
type mathTypesetter struct{}

var mathDelimiters = []struct{ open, close string }{
	{`\(`, `\)`},
	{`\[`, `\]`},
}

func (mathTypesetter) Typeset(ctx context.Context, markup string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, d := range mathDelimiters {
		if o, c := strings.Count(markup, d.open), strings.Count(markup, d.close); o != c {
			return fmt.Errorf("unbalanced math delimiters %s%s: %d opening, %d closing", d.open, d.close, o, c)
		}
	}
	if n := strings.Count(markup, "$$"); n%2 != 0 {
		return fmt.Errorf("unbalanced $$ display math: %d markers", n)
	}
	return nil
}
