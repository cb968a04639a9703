// Package curriculum parses and serves the course-structure and quiz-data
// documents that drive routing, navigation and search.
package curriculum

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/pai-parametric/internal/content"
	"github.com/p-n-ai/pai-parametric/internal/quiz"
)

// Document formats accepted by ParseStructure.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	// ErrInvalidStructure wraps every course-structure parse or validation failure.
	ErrInvalidStructure = errors.New("curriculum: invalid course structure")
	// ErrInvalidQuiz wraps every quiz-data parse or validation failure.
	ErrInvalidQuiz = errors.New("curriculum: invalid quiz data")
)

//go:embed schema/*.json
var schemaFS embed.FS

var loadSchemas = sync.OnceValues(func() (map[string]*gojsonschema.Schema, error) {
	out := make(map[string]*gojsonschema.Schema)
	for _, name := range []string{"structure", "quiz"} {
		raw, err := schemaFS.ReadFile("schema/" + name + ".json")
		if err != nil {
			return nil, err
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compiling %s schema: %w", name, err)
		}
		out[name] = s
	}
	return out, nil
})

func validateJSON(schema string, data []byte, sentinel error) error {
	schemas, err := loadSchemas()
	if err != nil {
		return err
	}
	result, err := schemas[schema].Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", sentinel, strings.Join(msgs, "; "))
	}
	return nil
}

// FormatOf guesses the document format from a locator's extension.
func FormatOf(locator string) string {
	switch strings.ToLower(path.Ext(locator)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ParseStructure decodes and validates a course-structure document.
func ParseStructure(data []byte, format string) (*Structure, error) {
	var s Structure

	switch format {
	case FormatJSON:
		if err := validateJSON("structure", data, ErrInvalidStructure); err != nil {
			return nil, err
		}
		if err := decodeJSON(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
		}
	default:
		return nil, fmt.Errorf("unsupported structure format %q", format)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// validate rejects empty ids and structures whose generated route ids
// collide, e.g. module "a-b" course "c" and module "a" course "b-c".
func (s *Structure) validate() error {
	routes := make(map[string]string)
	claim := func(id, owner string) error {
		if prev, ok := routes[id]; ok {
			return fmt.Errorf("%w: route id %q produced by both %s and %s", ErrInvalidStructure, id, prev, owner)
		}
		routes[id] = owner
		return nil
	}

	for _, m := range s.Modules {
		if m.ID == "" {
			return fmt.Errorf("%w: module without id", ErrInvalidStructure)
		}
		if err := claim(m.ID+"-quiz", "module "+m.ID); err != nil {
			return err
		}
		if err := claim(m.ID+"-resources", "module "+m.ID); err != nil {
			return err
		}
		for _, c := range m.Courses {
			if c.ID == "" {
				return fmt.Errorf("%w: course without id in module %s", ErrInvalidStructure, m.ID)
			}
			if err := claim(CourseKey(m.ID, c.ID), "course "+m.ID+"/"+c.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// Loader fetches the course structure from a content source and keeps the
// latest good copy.
type Loader struct {
	src       content.Source
	locator   string
	structure *Structure
	mu        sync.RWMutex
}

// NewLoader creates a loader and loads the structure at locator.
func NewLoader(ctx context.Context, src content.Source, locator string) (*Loader, error) {
	l := &Loader{src: src, locator: locator}
	if err := l.Reload(ctx); err != nil {
		return nil, fmt.Errorf("loading curriculum: %w", err)
	}
	return l, nil
}

// Structure returns the current structure. Callers must not modify it.
func (l *Loader) Structure() *Structure {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.structure
}

// Reload fetches the structure again. On failure the previous copy is kept.
func (l *Loader) Reload(ctx context.Context) error {
	s, err := LoadStructure(ctx, l.src, l.locator)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.structure = s
	l.mu.Unlock()

	slog.Info("curriculum loaded",
		"modules", len(s.Modules),
		"courses", s.CourseCount(),
	)
	return nil
}

// Quiz fetches and parses the quiz-data document of a module.
func (l *Loader) Quiz(ctx context.Context, moduleID string) ([]quiz.Question, error) {
	data, err := l.src.Fetch(ctx, content.QuizDataPath(moduleID))
	if err != nil {
		return nil, fmt.Errorf("fetching quiz for %s: %w", moduleID, err)
	}
	return ParseQuiz([]byte(data))
}

// LoadStructure fetches and parses the structure document at locator.
func LoadStructure(ctx context.Context, src content.Source, locator string) (*Structure, error) {
	data, err := src.Fetch(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("fetching course structure: %w", err)
	}
	return ParseStructure([]byte(data), FormatOf(locator))
}
