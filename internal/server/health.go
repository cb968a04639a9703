package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/p-n-ai/pai-parametric/internal/app"
)

func handleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// handleReadyz checks every storage dependency. Backends without remote
// dependencies are always ready.
func handleReadyz(logger *slog.Logger, checkers []app.HealthChecker) http.HandlerFunc {
	type response struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		resp := response{Status: "ready"}
		status := http.StatusOK
		for _, c := range checkers {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string)
			}
			resp.Checks[c.Name()] = "ok"
			if err := c.HealthCheck(ctx); err != nil {
				logger.Error("health check failed", "name", c.Name(), "error", err)
				resp.Checks[c.Name()] = "error"
				resp.Status = "unavailable"
				status = http.StatusServiceUnavailable
			}
		}
		writeJSON(w, status, resp)
	}
}
