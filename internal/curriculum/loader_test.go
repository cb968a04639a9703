package curriculum_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/p-n-ai/pai-parametric/internal/content"
	"github.com/p-n-ai/pai-parametric/internal/curriculum"
	"github.com/p-n-ai/pai-parametric/internal/quiz"
)

const structureJSON = `{
  "modules": [
    {
      "id": "vectors",
      "title": "Vecteurs",
      "icon": "➡️",
      "courses": [
        {"id": "intro", "title": "Introduction", "description": "Notions de base", "keywords": ["vecteur", "norme"]},
        {"id": "dot-product", "title": "Produit scalaire"}
      ]
    },
    {"id": "empty", "title": "Bientôt", "courses": []},
    {
      "id": "curves",
      "title": "Courbes paramétrées",
      "courses": [{"id": "cycloid", "title": "La cycloïde"}]
    }
  ]
}`

const structureYAML = `
modules:
  - id: vectors
    title: Vecteurs
    courses:
      - id: intro
        title: Introduction
        keywords: [vecteur]
`

func TestParseStructure(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		format      string
		wantModules int
		wantErr     bool
	}{
		{"json", structureJSON, curriculum.FormatJSON, 3, false},
		{"yaml", structureYAML, curriculum.FormatYAML, 1, false},
		{"not json", `{"modules": [`, curriculum.FormatJSON, 0, true},
		{"missing modules", `{}`, curriculum.FormatJSON, 0, true},
		{"course without title", `{"modules":[{"id":"m","title":"M","courses":[{"id":"c"}]}]}`, curriculum.FormatJSON, 0, true},
		{"empty module id", `{"modules":[{"id":"","title":"M"}]}`, curriculum.FormatJSON, 0, true},
		{"yaml empty course id", "modules:\n  - id: m\n    title: M\n    courses:\n      - title: C\n", curriculum.FormatYAML, 0, true},
		{"colliding routes", `{"modules":[
			{"id":"a-b","title":"AB","courses":[{"id":"c","title":"C"}]},
			{"id":"a","title":"A","courses":[{"id":"b-c","title":"BC"}]}]}`, curriculum.FormatJSON, 0, true},
		{"course named quiz", `{"modules":[{"id":"m","title":"M","courses":[{"id":"quiz","title":"Q"}]}]}`, curriculum.FormatJSON, 0, true},
		{"unknown format", structureJSON, "toml", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := curriculum.ParseStructure([]byte(tt.data), tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStructure() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(s.Modules) != tt.wantModules {
				t.Errorf("len(Modules) = %d, want %d", len(s.Modules), tt.wantModules)
			}
		})
	}
}

func TestParseStructure_InvalidIsSentinel(t *testing.T) {
	_, err := curriculum.ParseStructure([]byte(`[]`), curriculum.FormatJSON)
	if !errors.Is(err, curriculum.ErrInvalidStructure) {
		t.Errorf("error = %v, want ErrInvalidStructure", err)
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]string{
		"data/courses-structure.json": curriculum.FormatJSON,
		"data/courses.yaml":           curriculum.FormatYAML,
		"data/courses.YML":            curriculum.FormatYAML,
		"data/courses":                curriculum.FormatJSON,
	}
	for in, want := range tests {
		if got := curriculum.FormatOf(in); got != want {
			t.Errorf("FormatOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func setupSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"data/courses-structure.json":      structureJSON,
		"data/exercises/vectors/quiz.json": `{"questions":[{"id":"q1","type":"true-false","text":"Un vecteur a une norme.","correctAnswer":true}]}`,
		"data/exercises/broken/quiz.json":  `{"questions":[{"id":"q1","text":"?"}]}`,
	}
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		os.MkdirAll(filepath.Dir(path), 0o755)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoader(t *testing.T) {
	dir := setupSite(t)
	src, err := content.NewDirSource(dir)
	if err != nil {
		t.Fatal(err)
	}

	loader, err := curriculum.NewLoader(t.Context(), src, "data/courses-structure.json")
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	if got := loader.Structure().CourseCount(); got != 3 {
		t.Errorf("CourseCount() = %d, want 3", got)
	}

	questions, err := loader.Quiz(t.Context(), "vectors")
	if err != nil {
		t.Fatalf("Quiz() error = %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("len(questions) = %d, want 1", len(questions))
	}
	if _, ok := questions[0].(quiz.TrueFalse); !ok {
		t.Errorf("questions[0] = %T, want quiz.TrueFalse", questions[0])
	}

	if _, err := loader.Quiz(t.Context(), "missing"); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("Quiz(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := loader.Quiz(t.Context(), "broken"); !errors.Is(err, curriculum.ErrInvalidQuiz) {
		t.Errorf("Quiz(broken) error = %v, want ErrInvalidQuiz", err)
	}
}

func TestLoader_ReloadKeepsLastGoodCopy(t *testing.T) {
	dir := setupSite(t)
	src, _ := content.NewDirSource(dir)

	loader, err := curriculum.NewLoader(t.Context(), src, "data/courses-structure.json")
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	os.WriteFile(filepath.Join(dir, "data", "courses-structure.json"), []byte("{broken"), 0o644)
	if err := loader.Reload(t.Context()); err == nil {
		t.Fatal("Reload() should fail on a broken document")
	}
	if loader.Structure() == nil || len(loader.Structure().Modules) != 3 {
		t.Error("Reload() failure should keep the previous structure")
	}
}

func TestNewLoader_Missing(t *testing.T) {
	src, _ := content.NewDirSource(t.TempDir())
	if _, err := curriculum.NewLoader(t.Context(), src, "data/courses-structure.json"); err == nil {
		t.Fatal("NewLoader() should fail when the document is missing")
	}
}
