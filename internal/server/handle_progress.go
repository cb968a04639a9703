package server

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/p-n-ai/pai-parametric/internal/app"
	"github.com/p-n-ai/pai-parametric/internal/progress"
	"github.com/p-n-ai/pai-parametric/internal/report"
)

type progressResponse struct {
	Record progress.Record `json:"record"`
	Global int             `json:"globalPercentage"`
}

func currentProgress(a *app.App) progressResponse {
	return progressResponse{
		Record: a.Progress.Snapshot(),
		Global: a.Progress.GlobalPercentage(),
	}
}

func handleProgress(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, currentProgress(a))
	}
}

func handleProgressReset(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.Progress.ResetAll()
		writeJSON(w, http.StatusOK, currentProgress(a))
	}
}

func handleCourseComplete(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		moduleID, courseID := r.PathValue("module"), r.PathValue("course")
		if _, ok := a.Curriculum.FindCourse(moduleID, courseID); !ok {
			writeError(w, http.StatusNotFound, "unknown course")
			return
		}
		a.Progress.MarkCompleted(moduleID, courseID)
		writeJSON(w, http.StatusOK, currentProgress(a))
	}
}

// handleProgressExport renders the workbook into memory first so a failure
// can still produce an error response.
func handleProgressExport(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := report.WriteWorkbook(&buf, a.Curriculum, a.Progress.Snapshot()); err != nil {
			slog.Error("exporting progress failed", "error", err)
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
		w.Header().Set("Content-Type", report.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="progression.xlsx"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
