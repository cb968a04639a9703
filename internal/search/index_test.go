package search_test

import (
	"bufio"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/p-n-ai/pai-parametric/internal/curriculum"
	"github.com/p-n-ai/pai-parametric/internal/events"
	"github.com/p-n-ai/pai-parametric/internal/page"
	"github.com/p-n-ai/pai-parametric/internal/platform/metrics"
	"github.com/p-n-ai/pai-parametric/internal/search"
)

func testStructure() *curriculum.Structure {
	return &curriculum.Structure{Modules: []curriculum.Module{
		{ID: "vectors", Title: "Vecteurs", Courses: []curriculum.Course{
			{
				ID:          "dot-product",
				Title:       "Produit scalaire",
				Description: "Définition du produit scalaire de deux vecteurs et interprétation géométrique.",
				Keywords:    []string{"orthogonalité", "projection"},
			},
			{ID: "cross-product", Title: "Produit vectoriel", Description: "Vecteur normal à un plan."},
		}},
		{ID: "curves", Title: "Courbes", Courses: []curriculum.Course{
			{ID: "cycloid", Title: "Cycloïde", Keywords: []string{"roulette"}},
		}},
	}}
}

// scrape returns the exposed value of an unlabelled metric.
func scrape(t *testing.T, m *metrics.Metrics, name string) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	sc := bufio.NewScanner(rec.Body)
	for sc.Scan() {
		if value, ok := strings.CutPrefix(sc.Text(), name+" "); ok {
			return value
		}
	}
	t.Fatalf("metric %s not exposed", name)
	return ""
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Élément":       "element",
		"CYCLOÏDE":      "cycloide",
		"déjà vu":       "deja vu",
		"plain":         "plain",
		"Orthogonalité": "orthogonalite",
	}
	for in, want := range tests {
		if got := search.Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuery_ShortQueryTouchesNothing(t *testing.T) {
	m := metrics.New()
	ix := search.New(testStructure(), search.Options{Metrics: m})

	for _, q := range []string{"", "p", "  p  ", "é"} {
		if got := ix.Query(q); got != nil {
			t.Errorf("Query(%q) = %v, want nil", q, got)
		}
	}
	if got := scrape(t, m, "learn_search_queries_total"); got != "0" {
		t.Errorf("search queries counted = %s, want 0", got)
	}

	ix.Query("pr")
	if got := scrape(t, m, "learn_search_queries_total"); got != "1" {
		t.Errorf("search queries counted = %s, want 1", got)
	}
}

func TestQuery_CourseScores(t *testing.T) {
	ix := search.New(testStructure(), search.Options{})

	tests := []struct {
		query     string
		wantFirst string
		wantScore int
	}{
		{"produit scalaire", "vectors-dot-product", 10 + 3},
		{"cycloide", "curves-cycloid", 10},
		{"orthogonal", "vectors-dot-product", 4},
		{"roulette", "curves-cycloid", 4},
		{"normal", "vectors-cross-product", 3},
		{"vectoriel", "vectors-cross-product", 5},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := ix.Query(tt.query)
			if len(got) == 0 {
				t.Fatalf("Query(%q) returned nothing", tt.query)
			}
			if got[0].ID != tt.wantFirst || got[0].Score != tt.wantScore {
				t.Errorf("first = %+v, want %s with score %d", got[0], tt.wantFirst, tt.wantScore)
			}
		})
	}

	res := ix.Query("produit scalaire")
	if res[0].Path != "Vecteurs > Produit scalaire" {
		t.Errorf("Path = %q", res[0].Path)
	}
	if !strings.HasPrefix(res[0].Match, "...") || !strings.Contains(res[0].Match, "produit scalaire") {
		t.Errorf("Match = %q", res[0].Match)
	}
}

func TestQuery_SortedAndTruncated(t *testing.T) {
	ix := search.New(testStructure(), search.Options{MaxResults: 1})

	got := ix.Query("produit")
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}

	ix = search.New(testStructure(), search.Options{})
	got = ix.Query("produit")
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("results not sorted: %+v", got)
		}
	}
}

func TestQuery_PageContentIsLazy(t *testing.T) {
	ix := search.New(testStructure(), search.Options{})

	if got := ix.Query("trochoide"); len(got) != 0 {
		t.Fatalf("Query before indexing = %+v", got)
	}

	outline := page.Outline{
		Headings: []page.Heading{
			{Text: "La trochoïde", Level: 2, ID: "trochoid"},
			{Text: "Trochoïde allongée", Level: 4},
		},
		Paragraphs: []string{"Une trochoïde est la courbe décrite par un point lié à un cercle qui roule sans glisser le long d'une droite."},
		ListItems:  []string{"Trochoïde raccourcie"},
	}
	if !ix.IndexPage("curves-cycloid", outline) {
		t.Fatal("IndexPage() = false on first indexing")
	}
	if ix.IndexPage("curves-cycloid", outline) {
		t.Error("IndexPage() = true for an unchanged outline")
	}
	if ix.IndexPage("unknown-course", outline) {
		t.Error("IndexPage() should ignore courses outside the catalog")
	}

	got := ix.Query("trochoide")
	if len(got) != 4 {
		t.Fatalf("Query = %+v, want 4 hits", got)
	}
	if got[0].ID != "curves-cycloid#trochoid" || got[0].Score != 5 || got[0].Title != "La trochoïde" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].ID != "curves-cycloid" || got[1].Score != 3 {
		t.Errorf("second = %+v", got[1])
	}
	para := got[2]
	if para.Score != 2 || para.Title != "Cycloïde" || para.Path != "Courbes > Cycloïde" {
		t.Errorf("paragraph hit = %+v", para)
	}
	if !strings.HasPrefix(para.Match, "...Une trochoïde") || len([]rune(para.Match)) > 3+9+60+3 {
		t.Errorf("paragraph excerpt = %q", para.Match)
	}
}

func TestQuery_Glossary(t *testing.T) {
	ix := search.New(testStructure(), search.Options{})
	ix.IndexGlossary([]page.GlossaryTerm{
		{ID: "glossary-parametre", Title: "Paramètre", Definition: "Variable réelle décrivant une courbe.", Category: "courbes"},
		{ID: "glossary-courbe", Title: "Courbe", Definition: "Ensemble de points décrit par un paramètre.", Category: "courbes"},
	})

	got := ix.Query("parametre")
	if len(got) != 2 {
		t.Fatalf("Query = %+v", got)
	}
	if got[0].ID != "glossary-parametre" || got[0].Score != 10 || got[0].Path != "Glossaire > courbes" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].ID != "glossary-courbe" || got[1].Score != 3 {
		t.Errorf("second = %+v", got[1])
	}
}

func TestGlossary_FilterAndSort(t *testing.T) {
	ix := search.New(nil, search.Options{})
	ix.IndexGlossary([]page.GlossaryTerm{
		{Title: "Vecteur", Definition: "Segment orienté.", Category: "vecteurs"},
		{Title: "équation", Definition: "Égalité.", Category: "algebre"},
		{Title: "Droite", Definition: "Ensemble de points alignés.", Category: "courbes"},
		{Title: "Ellipse", Definition: "Courbe fermée.", Category: "courbes"},
	})

	titles := func(terms []page.GlossaryTerm) string {
		var out []string
		for _, t := range terms {
			out = append(out, t.Title)
		}
		return strings.Join(out, ",")
	}

	tests := []struct {
		name, query, category, order, want string
	}{
		{"document order", "", "all", "", "Vecteur,équation,Droite,Ellipse"},
		{"ascending collation", "", "", "asc", "Droite,Ellipse,équation,Vecteur"},
		{"descending", "", "all", "desc", "Vecteur,équation,Ellipse,Droite"},
		{"category", "", "courbes", "asc", "Droite,Ellipse"},
		{"query on definition", "points", "all", "", "Droite"},
		{"short query keeps all", "e", "courbes", "", "Droite,Ellipse"},
		{"accent-insensitive query", "egalite", "", "", "équation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titles(ix.Glossary(tt.query, tt.category, tt.order)); got != tt.want {
				t.Errorf("Glossary() = %s, want %s", got, tt.want)
			}
		})
	}
}

type fakePage struct {
	outline page.Outline
	terms   []page.GlossaryTerm
}

func (f fakePage) Outline() page.Outline              { return f.outline }
func (f fakePage) GlossaryTerms() []page.GlossaryTerm { return f.terms }

func TestAttach(t *testing.T) {
	bus := events.NewBus()
	ix := search.New(testStructure(), search.Options{})
	src := fakePage{
		outline: page.Outline{Headings: []page.Heading{{Text: "Projection orthogonale", Level: 2}}},
		terms:   []page.GlossaryTerm{{ID: "glossary-norme", Title: "Norme", Definition: "Longueur d'un vecteur."}},
	}
	detach := ix.Attach(bus, src)
	defer detach()

	bus.Publish(events.ContentLoaded{RouteID: "vectors-quiz", Kind: events.KindQuiz, ModuleID: "vectors"})
	if len(ix.Indexed()) != 0 {
		t.Fatal("quiz pages must not be indexed")
	}

	bus.Publish(events.ContentLoaded{RouteID: "vectors-dot-product", Kind: events.KindCourse, ModuleID: "vectors", CourseID: "dot-product"})
	if got := ix.Indexed(); len(got) != 1 || got[0] != "vectors-dot-product" {
		t.Errorf("Indexed() = %v", got)
	}

	bus.Publish(events.ContentLoaded{RouteID: "glossary", Kind: events.KindStatic})
	if got := ix.Query("norme"); len(got) == 0 || got[0].ID != "glossary-norme" {
		t.Errorf("Query(norme) = %+v", got)
	}
}
