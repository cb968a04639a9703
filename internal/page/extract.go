package page

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/p-n-ai/pai-parametric/internal/quiz"
)

// Heading is a section title in the rendered content.
type Heading struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
	ID    string `json:"id,omitempty"`
}

// Outline is the searchable text of the rendered content.
type Outline struct {
	Headings   []Heading `json:"headings"`
	Paragraphs []string  `json:"paragraphs"`
	ListItems  []string  `json:"listItems"`
}

// GlossaryTerm is one entry of the glossary page.
type GlossaryTerm struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Definition string `json:"definition"`
	Category   string `json:"category,omitempty"`
}

// ExerciseCount returns the number of exercises in the rendered content.
func (d *Document) ExerciseCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := 0
	walk(d.root, func(node *html.Node) bool {
		if hasClass(node, "exercise") {
			n++
		}
		return true
	})
	return n
}

// Exercises returns the exercise definitions in the rendered content, in
// document order. Exercises without an id are numbered "exercise-<i>".
func (d *Document) Exercises() []quiz.Exercise {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []quiz.Exercise
	walk(d.root, func(node *html.Node) bool {
		if !hasClass(node, "exercise") {
			return true
		}
		out = append(out, parseExercise(node, len(out)))
		return false
	})
	return out
}

// Exercise returns the rendered exercise with id.
func (d *Document) Exercise(id string) (quiz.Exercise, bool) {
	for _, ex := range d.Exercises() {
		if ex.ID == id {
			return ex, true
		}
	}
	return quiz.Exercise{}, false
}

func parseExercise(n *html.Node, index int) quiz.Exercise {
	ex := quiz.Exercise{ID: attr(n, "id")}
	if ex.ID == "" {
		ex.ID = "exercise-" + strconv.Itoa(index)
	}

	options := findAll(n, func(c *html.Node) bool { return hasClass(c, "exercise-option") })
	inputs := findAll(n, func(c *html.Node) bool { return hasClass(c, "exercise-input") })

	switch {
	case len(options) > 0:
		ex.Kind = quiz.KindChoice
		for _, o := range options {
			ex.Options = append(ex.Options, quiz.ExerciseOption{
				Text:    text(o),
				Correct: attr(o, "data-correct") == "true",
			})
		}
		ex.Multiple = len(findAll(n, func(c *html.Node) bool {
			return c.DataAtom == atom.Input && attr(c, "type") == "checkbox"
		})) > 0

	case len(inputs) > 0:
		ex.Kind = quiz.KindInput
		for _, in := range inputs {
			tol, _ := strconv.ParseFloat(attr(in, "data-tolerance"), 64)
			ex.Inputs = append(ex.Inputs, quiz.ExerciseInput{
				Name:      attr(in, "name"),
				Correct:   attr(in, "data-correct"),
				Numeric:   attr(in, "data-type") == "number",
				Tolerance: tol,
			})
		}

	case len(findAll(n, func(c *html.Node) bool { return hasClass(c, "drag-drop-container") })) > 0:
		ex.Kind = quiz.KindDragDrop
		for _, z := range findAll(n, func(c *html.Node) bool { return hasClass(c, "drop-zone") }) {
			ex.DropZones = append(ex.DropZones, quiz.DropZone{
				ID:          attr(z, "id"),
				CorrectItem: attr(z, "data-correct-item"),
			})
		}
	}
	return ex
}

// Outline extracts headings, paragraphs and list items from the rendered
// content.
func (d *Document) Outline() Outline {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var o Outline
	walk(d.root, func(n *html.Node) bool {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			o.Headings = append(o.Headings, Heading{
				Text:  text(n),
				Level: int(n.Data[1] - '0'),
				ID:    attr(n, "id"),
			})
		case atom.P:
			if t := text(n); t != "" {
				o.Paragraphs = append(o.Paragraphs, t)
			}
		case atom.Li:
			if t := text(n); t != "" {
				o.ListItems = append(o.ListItems, t)
			}
		}
		return true
	})
	return o
}

// GlossaryTerms extracts glossary entries from the rendered content.
// Entries missing a title or a definition are skipped.
func (d *Document) GlossaryTerms() []GlossaryTerm {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []GlossaryTerm
	walk(d.root, func(n *html.Node) bool {
		if !hasClass(n, "glossary-term") {
			return true
		}
		title := first(n, "term-title")
		def := first(n, "term-definition")
		if title == nil || def == nil {
			return false
		}
		t := text(title)
		out = append(out, GlossaryTerm{
			ID:         "glossary-" + strings.Join(strings.Fields(strings.ToLower(t)), "-"),
			Title:      t,
			Definition: text(def),
			Category:   attr(n, "data-category"),
		})
		return false
	})
	return out
}

// walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}
	if n.Type == html.ElementNode && !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, func(x *html.Node) bool {
			if match(x) {
				out = append(out, x)
			}
			return true
		})
	}
	return out
}

func first(n *html.Node, class string) *html.Node {
	found := findAll(n, func(c *html.Node) bool { return hasClass(c, class) })
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// text returns the node's text content with whitespace collapsed.
func text(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(x *html.Node) {
		if x.Type == html.TextNode {
			b.WriteString(x.Data)
			b.WriteByte(' ')
		}
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
