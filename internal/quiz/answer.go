package quiz

// Answer is a learner submission: Choice, Choices, Bool, Text or Pairs.
// A nil Answer means the question was not answered.
type Answer interface {
	answer()
}

// Choice selects one option by index.
type Choice int

// Choices selects a set of options by index.
type Choices []int

// Bool answers a true/false question.
type Bool bool

// Text is free-form input.
type Text string

// Pair connects left item Left to right item Right.
type Pair struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// Pairs answers a matching question.
type Pairs []Pair

func (Choice) answer()  {}
func (Choices) answer() {}
func (Bool) answer()    {}
func (Text) answer()    {}
func (Pairs) answer()   {}

// Answered reports whether a carries a submission.
func Answered(a Answer) bool {
	switch a := a.(type) {
	case nil:
		return false
	case Choices:
		return len(a) > 0
	case Text:
		return trimSpace(string(a)) != ""
	case Pairs:
		return len(a) > 0
	}
	return true
}
