// Package search is an in-memory index over course metadata, glossary
// terms and the content of pages the learner has opened.
package search

import (
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/p-n-ai/pai-parametric/internal/content"
	"github.com/p-n-ai/pai-parametric/internal/curriculum"
	"github.com/p-n-ai/pai-parametric/internal/events"
	"github.com/p-n-ai/pai-parametric/internal/page"
	"github.com/p-n-ai/pai-parametric/internal/platform/metrics"
)

// Defaults for Options.
const (
	DefaultMinQuery   = 2
	DefaultMaxResults = 10
)

// Scores per match kind.
const (
	scoreTitleExact  = 10
	scoreTitlePart   = 5
	scoreKeyword     = 4
	scoreDescription = 3
	scoreParagraph   = 2
	headingBase      = 7

	excerptRadius = 30
)

// Options tunes an Index.
type Options struct {
	MinQuery   int
	MaxResults int
	Metrics    *metrics.Metrics
}

// Result is one search hit.
type Result struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
	Score int    `json:"score"`
	Match string `json:"match,omitempty"`
}

type courseEntry struct {
	id          string
	title       string
	moduleTitle string
	description string
	keywords    []string

	normTitle       string
	normDescription string
	normKeywords    []string
}

func (c courseEntry) path() string { return c.moduleTitle + " > " + c.title }

type glossaryEntry struct {
	term     page.GlossaryTerm
	normTerm string
	normDef  string
}

type pageEntry struct {
	fingerprint [16]byte
	outline     page.Outline
}

// Index is safe for concurrent use.
type Index struct {
	opts Options

	// courses is built once and never modified.
	courses  []courseEntry
	byCourse map[string]int

	mu       sync.RWMutex
	glossary []glossaryEntry
	pages    map[string]pageEntry
}

// New indexes the course metadata of s.
func New(s *curriculum.Structure, opts Options) *Index {
	if opts.MinQuery < 1 {
		opts.MinQuery = DefaultMinQuery
	}
	if opts.MaxResults < 1 {
		opts.MaxResults = DefaultMaxResults
	}
	ix := &Index{
		opts:     opts,
		byCourse: make(map[string]int),
		pages:    make(map[string]pageEntry),
	}
	if s == nil {
		return ix
	}
	for _, m := range s.Modules {
		for _, c := range m.Courses {
			e := courseEntry{
				id:              curriculum.CourseKey(m.ID, c.ID),
				title:           c.Title,
				moduleTitle:     m.Title,
				description:     c.Description,
				keywords:        c.Keywords,
				normTitle:       Normalize(c.Title),
				normDescription: Normalize(c.Description),
			}
			for _, k := range c.Keywords {
				e.normKeywords = append(e.normKeywords, Normalize(k))
			}
			ix.byCourse[e.id] = len(ix.courses)
			ix.courses = append(ix.courses, e)
		}
	}
	return ix
}

// IndexPage records the outline of a course page, replacing any earlier
// outline for that course. It reports whether the index changed.
func (ix *Index) IndexPage(courseKey string, o page.Outline) bool {
	if _, ok := ix.byCourse[courseKey]; !ok {
		slog.Debug("not indexing page outside the catalog", "course_key", courseKey)
		return false
	}
	fp := fingerprint(o)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if prev, ok := ix.pages[courseKey]; ok && prev.fingerprint == fp {
		return false
	}
	ix.pages[courseKey] = pageEntry{fingerprint: fp, outline: o}
	return true
}

// IndexGlossary replaces the glossary terms.
func (ix *Index) IndexGlossary(terms []page.GlossaryTerm) {
	entries := make([]glossaryEntry, 0, len(terms))
	for _, t := range terms {
		entries = append(entries, glossaryEntry{
			term:     t,
			normTerm: Normalize(t.Title),
			normDef:  Normalize(t.Definition),
		})
	}

	ix.mu.Lock()
	ix.glossary = entries
	ix.mu.Unlock()
}

// Indexed returns the course keys whose content has been indexed.
func (ix *Index) Indexed() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	keys := make([]string, 0, len(ix.pages))
	for k := range ix.pages {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Query searches every source. Queries shorter than the minimum length
// return nil without consulting the index.
func (ix *Index) Query(q string) []Result {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < ix.opts.MinQuery {
		return nil
	}
	if ix.opts.Metrics != nil {
		ix.opts.Metrics.SearchQueries.Inc()
	}
	nq := Normalize(q)

	results := ix.searchCourses(nq)

	ix.mu.RLock()
	results = append(results, ix.searchGlossary(nq)...)
	results = append(results, ix.searchContent(nq)...)
	ix.mu.RUnlock()

	slices.SortStableFunc(results, func(a, b Result) int { return b.Score - a.Score })
	if len(results) > ix.opts.MaxResults {
		results = results[:ix.opts.MaxResults]
	}
	return results
}

func (ix *Index) searchCourses(q string) []Result {
	var out []Result
	for _, c := range ix.courses {
		score := 0
		switch {
		case c.normTitle == q:
			score += scoreTitleExact
		case strings.Contains(c.normTitle, q):
			score += scoreTitlePart
		}
		if strings.Contains(c.normDescription, q) {
			score += scoreDescription
		}
		if slices.ContainsFunc(c.normKeywords, func(k string) bool { return strings.Contains(k, q) }) {
			score += scoreKeyword
		}
		if score == 0 {
			continue
		}
		out = append(out, Result{
			ID:    c.id,
			Title: c.title,
			Path:  c.path(),
			Score: score,
			Match: excerpt(c.description, q, excerptRadius),
		})
	}
	return out
}

// searchGlossary requires ix.mu held.
func (ix *Index) searchGlossary(q string) []Result {
	var out []Result
	for _, g := range ix.glossary {
		score := 0
		switch {
		case g.normTerm == q:
			score += scoreTitleExact
		case strings.Contains(g.normTerm, q):
			score += scoreTitlePart
		}
		if strings.Contains(g.normDef, q) {
			score += scoreDescription
		}
		if score == 0 {
			continue
		}
		out = append(out, Result{
			ID:    g.term.ID,
			Title: g.term.Title,
			Path:  "Glossaire > " + g.term.Category,
			Score: score,
			Match: excerpt(g.term.Definition, q, excerptRadius),
		})
	}
	return out
}

// searchContent requires ix.mu held.
func (ix *Index) searchContent(q string) []Result {
	keys := make([]string, 0, len(ix.pages))
	for k := range ix.pages {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int { return ix.byCourse[a] - ix.byCourse[b] })

	var out []Result
	for _, key := range keys {
		c := ix.courses[ix.byCourse[key]]
		o := ix.pages[key].outline

		for _, h := range o.Headings {
			if !strings.Contains(Normalize(h.Text), q) {
				continue
			}
			id := key
			if h.ID != "" {
				id += "#" + h.ID
			}
			out = append(out, Result{
				ID:    id,
				Title: h.Text,
				Path:  c.path(),
				Score: max(headingBase-h.Level, 1),
				Match: h.Text,
			})
		}
		for _, text := range slices.Concat(o.Paragraphs, o.ListItems) {
			m := excerpt(text, q, excerptRadius)
			if m == "" {
				continue
			}
			out = append(out, Result{
				ID:    key,
				Title: c.title,
				Path:  c.path(),
				Score: scoreParagraph,
				Match: m,
			})
		}
	}
	return out
}

// Sort orders accepted by Glossary.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Glossary filters the indexed glossary terms by query and category and
// sorts them by title in French collation order. An empty or "all"
// category keeps every category; a query below the minimum length keeps
// every term; an unknown order keeps document order.
func (ix *Index) Glossary(query, category, order string) []page.GlossaryTerm {
	nq := Normalize(strings.TrimSpace(query))
	filterText := len([]rune(nq)) >= ix.opts.MinQuery

	ix.mu.RLock()
	var out []page.GlossaryTerm
	for _, g := range ix.glossary {
		if category != "" && category != "all" && g.term.Category != category {
			continue
		}
		if filterText && !strings.Contains(g.normTerm, nq) && !strings.Contains(g.normDef, nq) {
			continue
		}
		out = append(out, g.term)
	}
	ix.mu.RUnlock()

	if order != SortAsc && order != SortDesc {
		return out
	}
	col := collate.New(language.French, collate.IgnoreCase)
	slices.SortStableFunc(out, func(a, b page.GlossaryTerm) int {
		c := col.CompareString(a.Title, b.Title)
		if order == SortDesc {
			return -c
		}
		return c
	})
	return out
}

// PageSource exposes the rendered page to the indexer.
type PageSource interface {
	Outline() page.Outline
	GlossaryTerms() []page.GlossaryTerm
}

// Attach indexes each course page and the glossary as they are loaded.
func (ix *Index) Attach(bus *events.Bus, src PageSource) (detach func()) {
	return events.Subscribe(bus, func(e events.ContentLoaded) {
		switch {
		case e.Kind == events.KindCourse:
			if ix.IndexPage(e.CourseKey(), src.Outline()) {
				slog.Debug("indexed page content", "course_key", e.CourseKey())
			}
		case e.RouteID == content.PageGlossary:
			terms := src.GlossaryTerms()
			ix.IndexGlossary(terms)
			slog.Debug("indexed glossary", "terms", len(terms))
		}
	})
}

func fingerprint(o page.Outline) [16]byte {
	var fp [16]byte
	data, err := json.Marshal(o)
	if err != nil {
		return fp
	}
	sum := blake2b.Sum256(data)
	copy(fp[:], sum[:16])
	return fp
}
