// Package page models the content region of the learning shell: the
// document title, the rendered lesson markup, navigation highlighting and
// inline error panels.
package page

import (
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/p-n-ai/pai-parametric/internal/curriculum"
)

// State is the content region's lifecycle state.
type State string

const (
	StateEmpty   State = "empty"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// LoadingMarkup is shown while a route's content is fetched.
const LoadingMarkup = `<div class="loading-container"><div class="loading-spinner"></div><p>Chargement du contenu...</p></div>`

// Document is the in-memory content region. It is safe for concurrent use.
type Document struct {
	mu sync.RWMutex

	title      string
	state      State
	body       string
	root       *html.Node
	errMsg     string
	retryRoute string

	activeModule string
	activeCourse string
	prev, next   *curriculum.CourseRef
	scrollY      int

	quizErr string
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{state: StateEmpty}
}

// Snapshot is a copy of the document's visible state.
type Snapshot struct {
	Title        string                `json:"title"`
	State        State                 `json:"state"`
	Body         string                `json:"body"`
	Error        string                `json:"error,omitempty"`
	RetryRoute   string                `json:"retryRoute,omitempty"`
	ActiveModule string                `json:"activeModule,omitempty"`
	ActiveCourse string                `json:"activeCourse,omitempty"`
	Prev         *curriculum.CourseRef `json:"prev,omitempty"`
	Next         *curriculum.CourseRef `json:"next,omitempty"`
	ScrollY      int                   `json:"scrollY"`
	QuizError    string                `json:"quizError,omitempty"`
}

// SetTitle sets the document title.
func (d *Document) SetTitle(title string) {
	d.mu.Lock()
	d.title = title
	d.mu.Unlock()
}

// Title returns the document title.
func (d *Document) Title() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.title
}

// State returns the content state.
func (d *Document) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// ShowLoading replaces the content with the loading placeholder.
func (d *Document) ShowLoading() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state = StateLoading
	d.setBody(LoadingMarkup)
	d.errMsg, d.retryRoute, d.quizErr = "", "", ""
	d.prev, d.next = nil, nil
}

// Render injects markup as the new content.
func (d *Document) Render(markup string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state = StateReady
	d.setBody(markup)
	d.errMsg, d.retryRoute = "", ""
}

// ShowError replaces the content with an error panel offering a retry of
// retryRoute.
func (d *Document) ShowError(msg, retryRoute string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state = StateError
	d.errMsg = msg
	d.retryRoute = retryRoute
	d.setBody(errorMarkup(msg))
}

// Highlight marks moduleID and courseID as the active navigation entries,
// clearing the previous ones. Empty values clear the highlight.
func (d *Document) Highlight(moduleID, courseID string) {
	d.mu.Lock()
	d.activeModule = moduleID
	d.activeCourse = courseID
	d.mu.Unlock()
}

// Active returns the highlighted module and course.
func (d *Document) Active() (moduleID, courseID string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.activeModule, d.activeCourse
}

// SetCourseNav sets the previous and next course links. A nil link is hidden.
func (d *Document) SetCourseNav(prev, next *curriculum.CourseRef) {
	d.mu.Lock()
	d.prev, d.next = prev, next
	d.mu.Unlock()
}

// ScrollTo records the viewport position.
func (d *Document) ScrollTo(y int) {
	d.mu.Lock()
	d.scrollY = max(y, 0)
	d.mu.Unlock()
}

// ScrollTop resets the viewport to the top.
func (d *Document) ScrollTop() {
	d.ScrollTo(0)
}

// ShowQuizError shows an error inside the quiz region only.
func (d *Document) ShowQuizError(msg string) {
	d.mu.Lock()
	d.quizErr = msg
	d.mu.Unlock()
}

// ClearQuizError hides the quiz region error.
func (d *Document) ClearQuizError() {
	d.ShowQuizError("")
}

// Snapshot returns a copy of the visible state.
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := Snapshot{
		Title:        d.title,
		State:        d.state,
		Body:         d.body,
		Error:        d.errMsg,
		RetryRoute:   d.retryRoute,
		ActiveModule: d.activeModule,
		ActiveCourse: d.activeCourse,
		ScrollY:      d.scrollY,
		QuizError:    d.quizErr,
	}
	if d.prev != nil {
		p := *d.prev
		s.Prev = &p
	}
	if d.next != nil {
		n := *d.next
		s.Next = &n
	}
	return s
}

// setBody stores markup and its parsed tree. Callers hold d.mu.
func (d *Document) setBody(markup string) {
	d.body = markup
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		root = nil
	}
	d.root = root
}

func errorMarkup(msg string) string {
	return `<div class="error-container"><h2>Erreur de chargement</h2><p>` +
		html.EscapeString(msg) +
		`</p><button class="btn btn-primary retry-btn">Réessayer</button></div>`
}
