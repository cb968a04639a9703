package quiz

import (
	"errors"
	"fmt"
)

// ErrIncomplete is returned when an exercise is checked with a required
// field left empty.
var ErrIncomplete = errors.New("quiz: fill all fields")

// Exercise kinds found in lesson pages.
const (
	KindChoice   = "choice"
	KindInput    = "input"
	KindDragDrop = "drag-drop"
)

// Exercise is an in-page exercise definition.
type Exercise struct {
	ID        string           `json:"id"`
	Kind      string           `json:"kind"`
	Options   []ExerciseOption `json:"options,omitempty"`
	Multiple  bool             `json:"multiple,omitempty"`
	Inputs    []ExerciseInput  `json:"inputs,omitempty"`
	DropZones []DropZone       `json:"dropZones,omitempty"`
}

// ExerciseOption is one selectable option of a choice exercise.
type ExerciseOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"-"`
}

// ExerciseInput is one free-form field of an input exercise.
type ExerciseInput struct {
	Name      string  `json:"name,omitempty"`
	Correct   string  `json:"-"`
	Numeric   bool    `json:"numeric,omitempty"`
	Tolerance float64 `json:"-"`
}

// DropZone is one target of a drag-and-drop exercise.
type DropZone struct {
	ID          string `json:"id,omitempty"`
	CorrectItem string `json:"-"`
}

// Submission carries the learner's input for one exercise. Only the field
// matching the exercise kind is read.
type Submission struct {
	Selected   []int    `json:"selected,omitempty"`
	Values     []string `json:"values,omitempty"`
	Placements []string `json:"placements,omitempty"`
}

// CheckExercise grades a single exercise. It returns ErrIncomplete when a
// required selection or field is missing; the exercise then does not count
// as attempted.
func CheckExercise(ex Exercise, sub Submission) (bool, error) {
	switch ex.Kind {
	case KindChoice:
		if len(sub.Selected) == 0 {
			return false, ErrIncomplete
		}
		var correct []int
		for i, o := range ex.Options {
			if o.Correct {
				correct = append(correct, i)
			}
		}
		if !ex.Multiple && len(sub.Selected) > 1 {
			return false, nil
		}
		return sameSet(sub.Selected, correct), nil

	case KindInput:
		if len(sub.Values) < len(ex.Inputs) {
			return false, ErrIncomplete
		}
		for i := range ex.Inputs {
			if trimSpace(sub.Values[i]) == "" {
				return false, ErrIncomplete
			}
		}
		ok := true
		for i, in := range ex.Inputs {
			if !MatchText(in.Correct, sub.Values[i], false, in.Numeric, in.Tolerance) {
				ok = false
			}
		}
		return ok, nil

	case KindDragDrop:
		if len(sub.Placements) < len(ex.DropZones) {
			return false, ErrIncomplete
		}
		for i := range ex.DropZones {
			if sub.Placements[i] == "" {
				return false, ErrIncomplete
			}
		}
		for i, z := range ex.DropZones {
			if sub.Placements[i] != z.CorrectItem {
				return false, nil
			}
		}
		return true, nil
	}
	return false, fmt.Errorf("unknown exercise kind %q", ex.Kind)
}
