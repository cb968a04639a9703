package server

import (
	"net/http"

	"github.com/p-n-ai/pai-parametric/internal/app"
	"github.com/p-n-ai/pai-parametric/internal/page"
	"github.com/p-n-ai/pai-parametric/internal/search"
)

func handleSearch(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := a.Search.Query(r.URL.Query().Get("q"))
		if results == nil {
			results = []search.Result{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func handleGlossary(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		terms := a.Search.Glossary(q.Get("q"), q.Get("category"), q.Get("order"))
		if terms == nil {
			terms = []page.GlossaryTerm{}
		}
		writeJSON(w, http.StatusOK, terms)
	}
}
