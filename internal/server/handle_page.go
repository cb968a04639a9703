package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/p-n-ai/pai-parametric/internal/app"
	"github.com/p-n-ai/pai-parametric/internal/page"
	"github.com/p-n-ai/pai-parametric/internal/quiz"
	"github.com/p-n-ai/pai-parametric/internal/router"
)

type pageResponse struct {
	Route     string          `json:"route"`
	Previous  string          `json:"previous,omitempty"`
	Page      page.Snapshot   `json:"page"`
	Exercises []quiz.Exercise `json:"exercises"`
	Home      *app.HomeInfo   `json:"home,omitempty"`
}

func currentPage(a *app.App) pageResponse {
	current, previous := a.Router.State()
	resp := pageResponse{
		Route:     current,
		Previous:  previous,
		Page:      a.Document.Snapshot(),
		Exercises: a.Document.Exercises(),
	}
	if resp.Exercises == nil {
		resp.Exercises = []quiz.Exercise{}
	}
	if current == router.HomeRoute {
		h := a.Home()
		resp.Home = &h
	}
	return resp
}

type navigateRequest struct {
	Route string `json:"route"`
}

// handleNavigate moves to a route and answers once the load has settled.
// Unknown routes end on the home page.
func handleNavigate(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req navigateRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Route = strings.TrimSpace(req.Route)
		if req.Route == "" {
			writeError(w, http.StatusBadRequest, "route is required")
			return
		}

		a.Router.NavigateTo(req.Route)
		a.Wait()
		writeJSON(w, http.StatusOK, currentPage(a))
	}
}

func handleBack(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.Router.Back() {
			writeError(w, http.StatusConflict, "no earlier page")
			return
		}
		a.Wait()
		writeJSON(w, http.StatusOK, currentPage(a))
	}
}

func handleForward(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.Router.Forward() {
			writeError(w, http.StatusConflict, "no later page")
			return
		}
		a.Wait()
		writeJSON(w, http.StatusOK, currentPage(a))
	}
}

func handleRetry(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := a.Router.Retry(); err != nil {
			if errors.Is(err, router.ErrNoRoute) {
				writeError(w, http.StatusConflict, "nothing to retry")
				return
			}
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		a.Wait()
		writeJSON(w, http.StatusOK, currentPage(a))
	}
}

func handlePage(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, currentPage(a))
	}
}

func handleNav(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, a.Menu.View())
	}
}

type sidebarRequest struct {
	Collapsed *bool `json:"collapsed"`
}

func handleSidebar(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sidebarRequest
		if err := readJSON(r, &req); err != nil || req.Collapsed == nil {
			writeError(w, http.StatusBadRequest, "collapsed is required")
			return
		}
		a.Menu.SetCollapsed(*req.Collapsed)
		writeJSON(w, http.StatusOK, a.Menu.State())
	}
}

func handleToggleModule(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, ok := a.Curriculum.FindModule(id); !ok {
			writeError(w, http.StatusNotFound, "unknown module")
			return
		}
		expanded := a.Menu.Toggle(id)
		writeJSON(w, http.StatusOK, map[string]any{"module": id, "expanded": expanded})
	}
}
