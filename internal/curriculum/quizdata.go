package curriculum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/p-n-ai/pai-parametric/internal/quiz"
)

type quizDocument struct {
	Questions []rawQuestion `json:"questions"`
}

type rawQuestion struct {
	ID            any             `json:"id"`
	Type          string          `json:"type"`
	Text          string          `json:"text"`
	Options       []rawOption     `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Multiple      *bool           `json:"multiple"`
	CaseSensitive bool            `json:"caseSensitive"`
	Numeric       bool            `json:"numeric"`
	Tolerance     float64         `json:"tolerance"`
	Explanation   string          `json:"explanation"`
	Placeholder   string          `json:"placeholder"`
	Matches       []rawMatch      `json:"matches"`
}

type rawMatch struct {
	Left         string `json:"left"`
	Right        string `json:"right"`
	CorrectIndex int    `json:"correctIndex"`
}

// rawOption accepts both "text" and {"text": "..."}.
type rawOption string

func (o *rawOption) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = rawOption(s)
		return nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*o = rawOption(obj.Text)
	return nil
}

// ParseQuiz decodes a quiz-data document into questions. Questions without
// a type are multiple choice.
func ParseQuiz(data []byte) ([]quiz.Question, error) {
	if err := validateJSON("quiz", data, ErrInvalidQuiz); err != nil {
		return nil, err
	}

	var doc quizDocument
	if err := decodeJSON(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}

	questions := make([]quiz.Question, 0, len(doc.Questions))
	for i, raw := range doc.Questions {
		q, err := raw.toQuestion()
		if err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrInvalidQuiz, i, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (r rawQuestion) toQuestion() (quiz.Question, error) {
	meta := quiz.Meta{ID: questionID(r.ID), Text: r.Text, Explanation: r.Explanation}

	switch r.Type {
	case "", quiz.TypeMultipleChoice:
		q := quiz.MultipleChoice{Meta: meta, Options: make([]string, len(r.Options))}
		for i, o := range r.Options {
			q.Options[i] = string(o)
		}

		var single int
		var set []int
		switch {
		case json.Unmarshal(r.CorrectAnswer, &single) == nil:
			q.Correct = []int{single}
		case json.Unmarshal(r.CorrectAnswer, &set) == nil:
			q.Correct = set
		default:
			return nil, fmt.Errorf("correctAnswer must be an index or a list of indices")
		}
		q.Multiple = len(q.Correct) > 1
		if r.Multiple != nil {
			q.Multiple = *r.Multiple
		}
		if !q.Multiple && len(q.Correct) != 1 {
			return nil, fmt.Errorf("single-select question has %d correct answers", len(q.Correct))
		}
		for _, c := range q.Correct {
			if c < 0 || c >= len(q.Options) {
				return nil, fmt.Errorf("correct index %d out of range", c)
			}
		}
		return q, nil

	case quiz.TypeTrueFalse:
		q := quiz.TrueFalse{Meta: meta}
		if err := json.Unmarshal(r.CorrectAnswer, &q.Correct); err != nil {
			return nil, fmt.Errorf("correctAnswer must be a boolean")
		}
		return q, nil

	case quiz.TypeTextInput:
		q := quiz.TextInput{
			Meta:          meta,
			CaseSensitive: r.CaseSensitive,
			Numeric:       r.Numeric,
			Tolerance:     r.Tolerance,
			Placeholder:   r.Placeholder,
		}
		var num float64
		switch {
		case json.Unmarshal(r.CorrectAnswer, &q.Answer) == nil:
		case json.Unmarshal(r.CorrectAnswer, &num) == nil:
			q.Answer = strconv.FormatFloat(num, 'f', -1, 64)
			q.Numeric = true
		default:
			return nil, fmt.Errorf("correctAnswer must be a string or a number")
		}
		if q.Answer == "" {
			return nil, fmt.Errorf("correctAnswer is empty")
		}
		return q, nil

	case quiz.TypeMatching:
		q := quiz.Matching{Meta: meta}
		for _, m := range r.Matches {
			q.Left = append(q.Left, m.Left)
			q.Right = append(q.Right, m.Right)
			q.Correct = append(q.Correct, m.CorrectIndex)
		}
		if len(q.Left) == 0 {
			return nil, fmt.Errorf("matching question has no pairs")
		}
		for _, c := range q.Correct {
			if c >= len(q.Right) {
				return nil, fmt.Errorf("correctIndex %d out of range", c)
			}
		}
		return q, nil
	}
	return nil, fmt.Errorf("unknown question type %q", r.Type)
}

func questionID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func decodeJSON(data []byte, v any) error {
	return json.NewDecoder(bytes.NewReader(data)).Decode(v)
}
