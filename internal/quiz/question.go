// Package quiz scores learner answers against question answer keys.
//
// Questions are a closed set of variants. Check dispatches over them with a
// single type switch, so adding a variant means extending that switch.
package quiz

// Question type names as they appear in quiz-data documents.
const (
	TypeMultipleChoice = "multiple-choice"
	TypeTrueFalse      = "true-false"
	TypeTextInput      = "text-input"
	TypeMatching       = "matching"
)

// DefaultTolerance is the absolute tolerance for numeric text answers.
const DefaultTolerance = 0.001

// DefaultPassThreshold is the minimum percentage for a passing quiz.
const DefaultPassThreshold = 70

// Question is one of MultipleChoice, TrueFalse, TextInput or Matching.
type Question interface {
	Info() Meta
	question()
}

// Meta carries the fields every question shares.
type Meta struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Explanation string `json:"explanation,omitempty"`
}

// MultipleChoice is answered with a Choice, or with Choices when Multiple.
type MultipleChoice struct {
	Meta
	Options  []string
	Correct  []int
	Multiple bool
}

// TrueFalse is answered with a Bool.
type TrueFalse struct {
	Meta
	Correct bool
}

// TextInput is answered with Text. An Answer of the form /pattern/ is a
// regular expression matched against the submission.
type TextInput struct {
	Meta
	Answer        string
	CaseSensitive bool
	Numeric       bool
	Tolerance     float64
	Placeholder   string
}

// Matching pairs left items with right items. Correct[i] is the right index
// that belongs to left item i. It is answered with Pairs.
type Matching struct {
	Meta
	Left    []string
	Right   []string
	Correct []int
}

func (q MultipleChoice) Info() Meta { return q.Meta }
func (q TrueFalse) Info() Meta      { return q.Meta }
func (q TextInput) Info() Meta      { return q.Meta }
func (q Matching) Info() Meta       { return q.Meta }

func (MultipleChoice) question() {}
func (TrueFalse) question()      {}
func (TextInput) question()      {}
func (Matching) question()       {}

// TypeOf returns the document type name of q.
func TypeOf(q Question) string {
	switch q.(type) {
	case MultipleChoice:
		return TypeMultipleChoice
	case TrueFalse:
		return TypeTrueFalse
	case TextInput:
		return TypeTextInput
	case Matching:
		return TypeMatching
	}
	return ""
}

// View is the learner-facing rendition of a question with its answer key
// removed.
type View struct {
	Meta
	Type        string   `json:"type"`
	Options     []string `json:"options,omitempty"`
	Multiple    bool     `json:"multiple,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Left        []string `json:"left,omitempty"`
	Right       []string `json:"right,omitempty"`
}

// Describe returns the view of q.
func Describe(q Question) View {
	v := View{Meta: q.Info(), Type: TypeOf(q)}
	// explanations are only revealed with results
	v.Explanation = ""

	switch q := q.(type) {
	case MultipleChoice:
		v.Options = q.Options
		v.Multiple = q.Multiple
	case TrueFalse:
		v.Options = []string{"Vrai", "Faux"}
	case TextInput:
		v.Placeholder = q.Placeholder
		if v.Placeholder == "" {
			v.Placeholder = "Votre réponse..."
		}
	case Matching:
		v.Left = q.Left
		v.Right = q.Right
	}
	return v
}
