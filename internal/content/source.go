// Package content fetches lesson fragments and data documents by locator.
//
// A locator is a slash-separated path relative to the site root, for
// example "content/vectors/dot-product.html".
package content

import (
	"context"
	"errors"
	"path"
)

// ErrNotFound is returned when no resource exists at a locator.
var ErrNotFound = errors.New("content: not found")

// Source fetches the text of a resource.
type Source interface {
	Fetch(ctx context.Context, locator string) (string, error)
}

// Fixed top-level pages.
const (
	PageHome     = "home"
	PageAbout    = "about"
	PageHelp     = "help"
	PageGlossary = "glossary"
)

// CoursePath locates a course lesson fragment.
func CoursePath(moduleID, courseID string) string {
	return path.Join("content", moduleID, courseID+".html")
}

// QuizPagePath locates a module's quiz page.
func QuizPagePath(moduleID string) string {
	return path.Join("content", moduleID, "quiz.html")
}

// ResourcesPath locates a module's resources page.
func ResourcesPath(moduleID string) string {
	return path.Join("content", moduleID, "resources.html")
}

// StaticPath locates a fixed top-level page such as PageHome.
func StaticPath(page string) string {
	return path.Join("content", page+".html")
}

// QuizDataPath locates a module's quiz-data document.
func QuizDataPath(moduleID string) string {
	return path.Join("data", "exercises", moduleID, "quiz.json")
}
