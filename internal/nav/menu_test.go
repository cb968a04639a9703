package nav_test

import (
	"testing"

	"github.com/p-n-ai/pai-parametric/internal/curriculum"
	"github.com/p-n-ai/pai-parametric/internal/events"
	"github.com/p-n-ai/pai-parametric/internal/kv"
	"github.com/p-n-ai/pai-parametric/internal/nav"
	"github.com/p-n-ai/pai-parametric/internal/progress"
)

func testStructure() *curriculum.Structure {
	return &curriculum.Structure{Modules: []curriculum.Module{
		{ID: "vectors", Title: "Vecteurs", Icon: "➡️", Courses: []curriculum.Course{
			{ID: "dot-product", Title: "Produit scalaire"},
			{ID: "cross-product", Title: "Produit vectoriel"},
		}},
		{ID: "lines", Title: "Droites", Courses: []curriculum.Course{
			{ID: "intro", Title: "Introduction"},
		}},
	}}
}

type staticActive struct{ module, course string }

func (s staticActive) Active() (string, string) { return s.module, s.course }

func TestView_Structure(t *testing.T) {
	m := nav.New(testStructure(), kv.NewMemoryStore(), nil, staticActive{"vectors", "cross-product"})
	v := m.View()

	if len(v.Modules) != 2 || len(v.Utilities) != 3 || v.Home.ID != "home" {
		t.Fatalf("View() = %+v", v)
	}
	vectors := v.Modules[0]
	if !vectors.Active || vectors.Icon != "➡️" {
		t.Errorf("vectors entry = %+v", vectors)
	}
	if v.Modules[1].Icon != "📚" || v.Modules[1].Active {
		t.Errorf("lines entry = %+v", v.Modules[1])
	}

	wantRoutes := []string{"vectors-dot-product", "vectors-cross-product", "vectors-quiz", "vectors-resources"}
	if len(vectors.Items) != len(wantRoutes) {
		t.Fatalf("items = %+v", vectors.Items)
	}
	for i, want := range wantRoutes {
		if vectors.Items[i].RouteID != want {
			t.Errorf("item[%d] = %q, want %q", i, vectors.Items[i].RouteID, want)
		}
	}
	if vectors.Items[0].Active || !vectors.Items[1].Active {
		t.Error("only the active course item should be highlighted")
	}
}

func TestSidebarState_Persisted(t *testing.T) {
	store := kv.NewMemoryStore()
	m := nav.New(testStructure(), store, nil, nil)

	m.Expand("vectors")
	m.Expand("vectors")
	m.Expand("ghost")
	if open := m.Toggle("lines"); !open {
		t.Error("Toggle(lines) should expand a closed module")
	}
	m.Collapse("vectors")
	m.SetCollapsed(true)

	reopened := nav.New(testStructure(), store, nil, nil)
	st := reopened.State()
	if !st.Collapsed || len(st.ExpandedModules) != 1 || st.ExpandedModules[0] != "lines" {
		t.Errorf("State() = %+v", st)
	}
	v := reopened.View()
	if v.Modules[0].Expanded || !v.Modules[1].Expanded || !v.Collapsed {
		t.Errorf("View() expansion = %v/%v collapsed %v", v.Modules[0].Expanded, v.Modules[1].Expanded, v.Collapsed)
	}
}

func TestSidebarState_CorruptFallsBack(t *testing.T) {
	store := kv.NewMemoryStore()
	if err := store.Set(kv.KeySidebar, []byte(`not json`)); err != nil {
		t.Fatal(err)
	}
	st := nav.New(testStructure(), store, nil, nil).State()
	if st.Collapsed || len(st.ExpandedModules) != 0 {
		t.Errorf("State() = %+v, want defaults", st)
	}
}

type fixedCounter int

func (c fixedCounter) ExerciseCount() int { return int(c) }

func TestDecorations_FollowProgress(t *testing.T) {
	bus := events.NewBus()
	tracker := progress.New(kv.NewMemoryStore(), progress.WithBus(bus), progress.WithExerciseCounter(fixedCounter(2)))
	m := nav.New(testStructure(), kv.NewMemoryStore(), tracker, nil)
	m.Attach(bus)

	tracker.MarkExerciseCompleted("vectors", "dot-product", "ex-1")
	tracker.RecordQuizScore("vectors", 85)
	tracker.MarkCompleted("lines", "intro")

	v := m.View()
	dot := v.Modules[0].Items[0]
	if !dot.Visited || dot.Completed || dot.Percent != 50 {
		t.Errorf("dot-product item = %+v", dot)
	}
	quiz := v.Modules[0].Items[2]
	if !quiz.Completed || quiz.BestScore != 85 {
		t.Errorf("quiz item = %+v", quiz)
	}
	if !v.Modules[1].Items[0].Completed {
		t.Error("completed course should be decorated")
	}
	if v.GlobalProgress != 50 {
		t.Errorf("GlobalProgress = %d, want 50", v.GlobalProgress)
	}

	tracker.ResetAll()
	v = m.View()
	if it := v.Modules[0].Items[0]; it.Visited || it.Percent != 0 {
		t.Errorf("decorations survived reset: %+v", it)
	}
	if q := v.Modules[0].Items[2]; q.BestScore != 0 || q.Completed {
		t.Errorf("quiz decorations survived reset: %+v", q)
	}
}
