package curriculum_test

import (
	"errors"
	"testing"

	"github.com/p-n-ai/pai-parametric/internal/curriculum"
	"github.com/p-n-ai/pai-parametric/internal/quiz"
)

const quizJSON = `{
  "questions": [
    {"id": "q1", "type": "multiple-choice", "text": "x(t) = cos t décrit ?",
     "options": [{"text": "un cercle"}, {"text": "une droite"}], "correctAnswer": 0},
    {"id": 2, "text": "Lesquelles sont périodiques ?",
     "options": ["cos t", "t", "sin t"], "correctAnswer": [0, 2]},
    {"id": "q3", "type": "true-false", "text": "La cycloïde est périodique.", "correctAnswer": false},
    {"id": "q4", "type": "text-input", "text": "Valeur de t ?", "correctAnswer": "/^-?\\d+(\\.\\d+)?$/"},
    {"id": "q5", "type": "text-input", "text": "π/2 ≈ ?", "correctAnswer": 1.5708, "tolerance": 0.01},
    {"id": "q6", "type": "matching", "text": "Associez",
     "matches": [
       {"left": "cos", "right": "sin", "correctIndex": 2},
       {"left": "t", "right": "t²", "correctIndex": 0},
       {"left": "t²", "right": "cos", "correctIndex": 1}
     ]}
  ]
}`

func TestParseQuiz(t *testing.T) {
	questions, err := curriculum.ParseQuiz([]byte(quizJSON))
	if err != nil {
		t.Fatalf("ParseQuiz() error = %v", err)
	}
	if len(questions) != 6 {
		t.Fatalf("len(questions) = %d, want 6", len(questions))
	}

	mc, ok := questions[0].(quiz.MultipleChoice)
	if !ok || mc.Multiple || mc.Options[0] != "un cercle" {
		t.Errorf("questions[0] = %+v", questions[0])
	}

	multi, ok := questions[1].(quiz.MultipleChoice)
	if !ok || !multi.Multiple || multi.Info().ID != "2" {
		t.Errorf("questions[1] = %+v", questions[1])
	}
	if !quiz.Check(multi, quiz.Choices{2, 0}) {
		t.Error("multi-select key not decoded")
	}

	if !quiz.Check(questions[3], quiz.Text("42")) || quiz.Check(questions[3], quiz.Text("forty-two")) {
		t.Error("regex text-input not decoded")
	}

	num, ok := questions[4].(quiz.TextInput)
	if !ok || !num.Numeric || num.Tolerance != 0.01 {
		t.Errorf("questions[4] = %+v", questions[4])
	}
	if !quiz.Check(num, quiz.Text("1.57")) {
		t.Error("numeric answer within tolerance rejected")
	}

	if !quiz.Check(questions[5], quiz.Pairs{{Left: 0, Right: 2}, {Left: 1, Right: 0}, {Left: 2, Right: 1}}) {
		t.Error("matching key not decoded")
	}
}

func TestParseQuiz_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"missing questions", `{}`},
		{"unknown type", `{"questions":[{"id":"q","type":"essay","text":"?"}]}`},
		{"choice without key", `{"questions":[{"id":"q","text":"?","options":["a"]}]}`},
		{"choice index out of range", `{"questions":[{"id":"q","text":"?","options":["a"],"correctAnswer":3}]}`},
		{"single select with two keys", `{"questions":[{"id":"q","text":"?","options":["a","b"],"correctAnswer":[0,1],"multiple":false}]}`},
		{"true-false with string", `{"questions":[{"id":"q","type":"true-false","text":"?","correctAnswer":"yes"}]}`},
		{"matching without pairs", `{"questions":[{"id":"q","type":"matching","text":"?","matches":[]}]}`},
		{"negative tolerance", `{"questions":[{"id":"q","type":"text-input","text":"?","correctAnswer":"1","tolerance":-1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := curriculum.ParseQuiz([]byte(tt.data))
			if !errors.Is(err, curriculum.ErrInvalidQuiz) {
				t.Errorf("ParseQuiz() error = %v, want ErrInvalidQuiz", err)
			}
		})
	}
}
