// Package apptest builds a complete app over a small on-disk site for
// tests.
package apptest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/p-n-ai/pai-parametric/internal/app"
	"github.com/p-n-ai/pai-parametric/internal/platform/config"
)

// Structure is the course structure of the test site.
const Structure = `{
  "modules": [
    {
      "id": "vectors",
      "title": "Vecteurs",
      "icon": "➡️",
      "courses": [
        {"id": "intro", "title": "Introduction aux vecteurs", "description": "Notions de base", "keywords": ["norme"]},
        {"id": "dot-product", "title": "Produit scalaire"}
      ]
    },
    {
      "id": "curves",
      "title": "Courbes paramétrées",
      "courses": [{"id": "cycloid", "title": "La cycloïde", "keywords": ["roulette"]}]
    }
  ]
}`

// Quiz is the quiz data of the vectors module. The curves module has none.
const Quiz = `{
  "questions": [
    {"id": "q1", "type": "multiple-choice", "text": "Le produit scalaire de (1,2) et (3,4) ?",
     "options": ["11", "10"], "correctAnswer": 0},
    {"id": "q2", "type": "true-false", "text": "Un vecteur nul a une direction.", "correctAnswer": false}
  ]
}`

// Files maps site locators to their contents.
var Files = map[string]string{
	"data/courses-structure.json":      Structure,
	"data/exercises/vectors/quiz.json": Quiz,
	"content/home.html":                `<h1>Bienvenue</h1><p>Apprenez les équations paramétriques.</p>`,
	"content/about.html":               `<h1>À propos</h1>`,
	"content/help.html":                `<h1>Aide</h1>`,
	"content/glossary.html": `
<div class="glossary-term" data-category="vecteurs">
  <h3 class="term-title">Vecteur directeur</h3>
  <p class="term-definition">Vecteur non nul parallèle à la droite.</p>
</div>
<div class="glossary-term" data-category="courbes">
  <h3 class="term-title">Cycloïde</h3>
  <p class="term-definition">Courbe décrite par un point d'un cercle qui roule.</p>
</div>`,
	"content/vectors/intro.html": `
<h1 id="intro">Introduction aux vecteurs</h1>
<p>Un vecteur \(\vec u\) possède une direction et une longueur.</p>
<div class="exercise" id="ex-dot">
  <div class="exercise-option" data-correct="true">11</div>
  <div class="exercise-option">10</div>
</div>
<div class="exercise" id="ex-norm">
  <input class="exercise-input" name="n" data-correct="5" data-type="number" data-tolerance="0.01">
</div>`,
	"content/vectors/dot-product.html": `<h1>Produit scalaire</h1><p>Projection orthogonale.</p>`,
	"content/vectors/quiz.html":        `<h1>Quiz</h1><div id="quiz-container"></div>`,
	"content/vectors/resources.html":   `<h1>Ressources</h1>`,
	"content/curves/cycloid.html":      `<h1>La cycloïde</h1><p>Une roulette classique.</p>`,
	"content/curves/quiz.html":         `<h1>Quiz</h1><div id="quiz-container"></div>`,
	"content/curves/resources.html":    `<h1>Ressources</h1>`,
}

// Site writes Files under a temporary directory and returns it.
func Site(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	for name, body := range Files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

// Config returns settings for a memory-backed app serving root.
func Config(root string) *config.Config {
	return &config.Config{
		Storage:        config.StorageConfig{Backend: config.BackendMemory},
		Content:        config.ContentConfig{Root: root},
		Quiz:           config.QuizConfig{PassThreshold: 70},
		Study:          config.StudyConfig{Tick: time.Minute},
		Search:         config.SearchConfig{MinQuery: 2, MaxResults: 10},
		Log:            config.LogConfig{Level: "debug", Format: "text"},
		CurriculumPath: "data/courses-structure.json",
	}
}

// New builds an app over a fresh copy of the test site. The app is closed
// when the test ends.
func New(t *testing.T) *app.App {
	t.Helper()
	return NewWithConfig(t, Config(Site(t)))
}

// NewWithConfig builds an app from cfg and closes it when the test ends.
func NewWithConfig(t *testing.T, cfg *config.Config) *app.App {
	t.Helper()

	a, err := app.Build(t.Context(), cfg)
	if err != nil {
		t.Fatalf("app.Build() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

// Navigate moves a to route id and waits for the load, and any quiz fetch
// it started, to settle.
func Navigate(a *app.App, id string) {
	a.Router.NavigateTo(id)
	a.Wait()
}
