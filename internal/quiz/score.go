package quiz

// Outcome is the per-question part of a Result.
type Outcome struct {
	ID          string `json:"id"`
	Answered    bool   `json:"answered"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation,omitempty"`
}

// Result summarises a scored quiz.
type Result struct {
	Correct    int       `json:"correctAnswers"`
	Total      int       `json:"totalQuestions"`
	Answered   int       `json:"answeredQuestions"`
	Percentage float64   `json:"percentage"`
	Passed     bool      `json:"passed"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Score grades answers against questions. answers[i] belongs to
// questions[i]; missing or nil answers count as unanswered. threshold is a
// percentage.
func Score(questions []Question, answers []Answer, threshold float64) Result {
	r := Result{Total: len(questions), Outcomes: make([]Outcome, len(questions))}

	for i, q := range questions {
		var a Answer
		if i < len(answers) {
			a = answers[i]
		}

		info := q.Info()
		o := Outcome{ID: info.ID, Explanation: info.Explanation}
		if Answered(a) {
			o.Answered = true
			r.Answered++
			if Check(q, a) {
				o.Correct = true
				r.Correct++
			}
		}
		r.Outcomes[i] = o
	}

	if r.Total > 0 {
		r.Percentage = 100 * float64(r.Correct) / float64(r.Total)
	}
	r.Passed = r.Percentage >= threshold
	return r
}
