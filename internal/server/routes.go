package server

import (
	"log/slog"
	"net/http"

	"github.com/p-n-ai/pai-parametric/internal/app"
)

func newMux(logger *slog.Logger, a *app.App, broker *Broker) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealthz())
	mux.HandleFunc("GET /readyz", handleReadyz(logger, a.Checkers()))
	mux.Handle("GET /metrics", a.Metrics.Handler())
	mux.HandleFunc("GET /ws/events", handleEvents(logger, broker, a.Settings.Server.AllowedOrigins))

	api := http.NewServeMux()

	api.HandleFunc("POST /api/navigate", handleNavigate(a))
	api.HandleFunc("POST /api/back", handleBack(a))
	api.HandleFunc("POST /api/forward", handleForward(a))
	api.HandleFunc("POST /api/retry", handleRetry(a))
	api.HandleFunc("GET /api/page", handlePage(a))

	api.HandleFunc("POST /api/exercises/{id}/check", handleCheckExercise(a))
	api.HandleFunc("GET /api/quiz", handleQuiz(a))
	api.HandleFunc("PUT /api/quiz/answers/{index}", handleQuizAnswer(a))
	api.HandleFunc("DELETE /api/quiz/answers/{index}", handleQuizClear(a))
	api.HandleFunc("PUT /api/quiz/current", handleQuizGoto(a))
	api.HandleFunc("POST /api/quiz/submit", handleQuizSubmit(a))
	api.HandleFunc("POST /api/quiz/reset", handleQuizReset(a))

	api.HandleFunc("GET /api/progress", handleProgress(a))
	api.HandleFunc("POST /api/progress/reset", handleProgressReset(a))
	api.HandleFunc("POST /api/progress/courses/{module}/{course}/complete", handleCourseComplete(a))
	api.HandleFunc("GET /api/progress/export.xlsx", handleProgressExport(a))

	api.HandleFunc("GET /api/search", handleSearch(a))
	api.HandleFunc("GET /api/glossary", handleGlossary(a))

	api.HandleFunc("GET /api/preferences", handlePreferences(a))
	api.HandleFunc("PUT /api/preferences", handleUpdatePreferences(a))
	api.HandleFunc("POST /api/preferences/reset", handleResetPreferences(a))

	api.HandleFunc("GET /api/nav", handleNav(a))
	api.HandleFunc("PUT /api/nav/sidebar", handleSidebar(a))
	api.HandleFunc("POST /api/nav/modules/{id}/toggle", handleToggleModule(a))

	api.HandleFunc("GET /api/notifications", handleNotifications(a))
	api.HandleFunc("DELETE /api/notifications/{id}", handleDismissNotification(a))

	mux.Handle("/api/", withGuard(a, api))
	return mux
}
