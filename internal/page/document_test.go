package page_test

import (
	"strings"
	"testing"

	"github.com/p-n-ai/pai-parametric/internal/curriculum"
	"github.com/p-n-ai/pai-parametric/internal/page"
	"github.com/p-n-ai/pai-parametric/internal/quiz"
)

const lesson = `
<h1 id="intro">Droites paramétriques</h1>
<p>Une droite est définie par un point et un vecteur directeur.</p>
<ul><li>Point A</li><li>Vecteur u</li></ul>
<h3>Sans identifiant</h3>
<div class="exercise" id="ex-dot">
  <div class="exercise-option" data-correct="true">12</div>
  <div class="exercise-option">7</div>
  <input type="radio">
</div>
<div class="exercise">
  <input class="exercise-input" name="x" data-correct="2.5" data-type="number" data-tolerance="0.01">
  <input class="exercise-input" name="y" data-correct="-1">
</div>
<div class="exercise" id="ex-drag">
  <div class="drag-drop-container">
    <div class="drag-item" id="item-a">a</div>
    <div class="drop-zone" id="zone-1" data-correct-item="item-a"></div>
  </div>
</div>
`

func TestDocument_Lifecycle(t *testing.T) {
	doc := page.NewDocument()
	if got := doc.State(); got != page.StateEmpty {
		t.Fatalf("State() = %q, want empty", got)
	}

	doc.SetTitle("Accueil - Équations Paramétriques")
	doc.ShowLoading()
	if got := doc.State(); got != page.StateLoading {
		t.Errorf("State() after ShowLoading = %q, want loading", got)
	}

	doc.ShowError("réseau indisponible <timeout>", "vectors-dot-product")
	snap := doc.Snapshot()
	if snap.State != page.StateError || snap.RetryRoute != "vectors-dot-product" {
		t.Errorf("Snapshot() = %+v, want error state with retry route", snap)
	}
	if strings.Contains(snap.Body, "<timeout>") {
		t.Error("error message should be escaped in the body")
	}

	doc.Render("<p>ok</p>")
	snap = doc.Snapshot()
	if snap.State != page.StateReady || snap.Error != "" || snap.RetryRoute != "" {
		t.Errorf("Snapshot() after Render = %+v, want ready without error", snap)
	}
	if snap.Title != "Accueil - Équations Paramétriques" {
		t.Errorf("Title = %q", snap.Title)
	}
}

func TestDocument_NavigationState(t *testing.T) {
	doc := page.NewDocument()

	doc.Highlight("vectors", "dot-product")
	doc.SetCourseNav(nil, &curriculum.CourseRef{ModuleID: "vectors", CourseID: "cross-product", Title: "Produit vectoriel"})
	doc.ScrollTo(420)
	doc.ShowQuizError("quiz indisponible")

	snap := doc.Snapshot()
	if snap.ActiveModule != "vectors" || snap.ActiveCourse != "dot-product" {
		t.Errorf("active = %s/%s", snap.ActiveModule, snap.ActiveCourse)
	}
	if snap.Prev != nil || snap.Next == nil || snap.Next.CourseID != "cross-product" {
		t.Errorf("course nav = %v / %v", snap.Prev, snap.Next)
	}
	if snap.ScrollY != 420 || snap.QuizError == "" {
		t.Errorf("Snapshot() = %+v", snap)
	}

	snap.Next.Title = "mutated"
	if doc.Snapshot().Next.Title != "Produit vectoriel" {
		t.Error("Snapshot() should copy course links")
	}

	doc.ScrollTop()
	doc.ClearQuizError()
	doc.ShowLoading()
	snap = doc.Snapshot()
	if snap.ScrollY != 0 || snap.QuizError != "" || snap.Next != nil {
		t.Errorf("Snapshot() after reset = %+v", snap)
	}
}

func TestDocument_Exercises(t *testing.T) {
	doc := page.NewDocument()
	if got := doc.ExerciseCount(); got != 0 {
		t.Fatalf("ExerciseCount() on empty document = %d", got)
	}

	doc.Render(lesson)
	if got := doc.ExerciseCount(); got != 3 {
		t.Fatalf("ExerciseCount() = %d, want 3", got)
	}

	exercises := doc.Exercises()
	if len(exercises) != 3 {
		t.Fatalf("len(Exercises()) = %d, want 3", len(exercises))
	}

	choice := exercises[0]
	if choice.ID != "ex-dot" || choice.Kind != quiz.KindChoice || choice.Multiple {
		t.Errorf("choice exercise = %+v", choice)
	}
	if len(choice.Options) != 2 || !choice.Options[0].Correct || choice.Options[1].Correct {
		t.Errorf("choice options = %+v", choice.Options)
	}

	input := exercises[1]
	if input.ID != "exercise-1" || input.Kind != quiz.KindInput {
		t.Errorf("input exercise = %+v", input)
	}
	if len(input.Inputs) != 2 || !input.Inputs[0].Numeric || input.Inputs[0].Tolerance != 0.01 || input.Inputs[1].Numeric {
		t.Errorf("inputs = %+v", input.Inputs)
	}

	drag, ok := doc.Exercise("ex-drag")
	if !ok || drag.Kind != quiz.KindDragDrop || len(drag.DropZones) != 1 || drag.DropZones[0].CorrectItem != "item-a" {
		t.Errorf("Exercise(ex-drag) = %+v, %v", drag, ok)
	}
	if _, ok := doc.Exercise("missing"); ok {
		t.Error("Exercise(missing) should not be found")
	}
}

func TestDocument_Outline(t *testing.T) {
	doc := page.NewDocument()
	doc.Render(lesson)

	o := doc.Outline()
	if len(o.Headings) != 2 {
		t.Fatalf("headings = %+v", o.Headings)
	}
	if o.Headings[0] != (page.Heading{Text: "Droites paramétriques", Level: 1, ID: "intro"}) {
		t.Errorf("heading[0] = %+v", o.Headings[0])
	}
	if o.Headings[1].Level != 3 || o.Headings[1].ID != "" {
		t.Errorf("heading[1] = %+v", o.Headings[1])
	}
	if len(o.Paragraphs) != 1 || !strings.HasPrefix(o.Paragraphs[0], "Une droite") {
		t.Errorf("paragraphs = %q", o.Paragraphs)
	}
	if len(o.ListItems) != 2 || o.ListItems[1] != "Vecteur u" {
		t.Errorf("list items = %q", o.ListItems)
	}
}

func TestDocument_GlossaryTerms(t *testing.T) {
	doc := page.NewDocument()
	doc.Render(`
<div class="glossary-term" data-category="vecteurs">
  <h3 class="term-title">Vecteur  directeur</h3>
  <p class="term-definition">Vecteur non nul parallèle à la droite.</p>
</div>
<div class="glossary-term"><h3 class="term-title">Orphelin</h3></div>
<div class="glossary-term" data-category="courbes">
  <h3 class="term-title">Paramètre</h3>
  <p class="term-definition">Variable réelle t.</p>
</div>`)

	terms := doc.GlossaryTerms()
	if len(terms) != 2 {
		t.Fatalf("GlossaryTerms() = %+v, want 2 terms", terms)
	}
	want := page.GlossaryTerm{
		ID:         "glossary-vecteur-directeur",
		Title:      "Vecteur directeur",
		Definition: "Vecteur non nul parallèle à la droite.",
		Category:   "vecteurs",
	}
	if terms[0] != want {
		t.Errorf("terms[0] = %+v, want %+v", terms[0], want)
	}
	if terms[1].ID != "glossary-paramètre" {
		t.Errorf("terms[1].ID = %q", terms[1].ID)
	}
}
