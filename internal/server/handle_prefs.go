package server

import (
	"errors"
	"net/http"

	"github.com/p-n-ai/pai-parametric/internal/app"
	"github.com/p-n-ai/pai-parametric/internal/notify"
	"github.com/p-n-ai/pai-parametric/internal/prefs"
)

func handlePreferences(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, a.Prefs.Get())
	}
}

// handleUpdatePreferences merges the body over the current preferences.
func handleUpdatePreferences(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := a.Prefs.Get()
		if err := readJSON(r, &p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := a.Prefs.Update(p); err != nil {
			if errors.Is(err, prefs.ErrInvalid) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, a.Prefs.Get())
	}
}

func handleResetPreferences(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.Prefs.Reset()
		writeJSON(w, http.StatusOK, a.Prefs.Get())
	}
}

func handleNotifications(a *app.App) http.HandlerFunc {
	type response struct {
		Toasts []notify.Toast `json:"toasts"`
		Cue    notify.Cue     `json:"cue"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		toasts := a.Notify.Active()
		if toasts == nil {
			toasts = []notify.Toast{}
		}
		writeJSON(w, http.StatusOK, response{Toasts: toasts, Cue: a.Notify.LastCue()})
	}
}

func handleDismissNotification(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.Notify.Dismiss(r.PathValue("id")) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
