package quiz

import (
	"fmt"
	"math"
	"sync"

	"github.com/p-n-ai/pai-parametric/internal/events"
)

// Session is one learner's pass through a module quiz.
type Session struct {
	mu        sync.Mutex
	moduleID  string
	questions []Question
	answers   []Answer
	current   int
	threshold float64
	result    *Result
	bus       *events.Bus
}

// SessionView is a read-only snapshot of a Session.
type SessionView struct {
	ModuleID  string  `json:"moduleId"`
	Questions []View  `json:"questions"`
	Current   int     `json:"currentQuestion"`
	Answered  []bool  `json:"answered"`
	Result    *Result `json:"result,omitempty"`
	Threshold float64 `json:"passThreshold"`
}

// NewSession starts a quiz for moduleID. Submit publishes QuizCompleted on
// bus when it is non-nil. A threshold <= 0 selects DefaultPassThreshold.
func NewSession(moduleID string, questions []Question, threshold float64, bus *events.Bus) *Session {
	if threshold <= 0 {
		threshold = DefaultPassThreshold
	}
	return &Session{
		moduleID:  moduleID,
		questions: questions,
		answers:   make([]Answer, len(questions)),
		threshold: threshold,
		bus:       bus,
	}
}

// ModuleID returns the module the quiz belongs to.
func (s *Session) ModuleID() string { return s.moduleID }

// Len returns the number of questions.
func (s *Session) Len() int { return len(s.questions) }

// Answer records a for question index and makes it current.
func (s *Session) Answer(index int, a Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.answers[index] = a
	s.current = index
	return nil
}

// Clear forgets the answer to question index.
func (s *Session) Clear(index int) error {
	return s.Answer(index, nil)
}

// Current returns the index of the question on display.
func (s *Session) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Goto moves to question index.
func (s *Session) Goto(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.current = index
	return nil
}

// Submit scores the session and publishes the rounded percentage.
func (s *Session) Submit() Result {
	s.mu.Lock()
	r := Score(s.questions, s.answers, s.threshold)
	s.result = &r
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(events.QuizCompleted{
			ModuleID: s.moduleID,
			Score:    int(math.Round(r.Percentage)),
		})
	}
	return r
}

// Reset clears every answer and the last result.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.answers = make([]Answer, len(s.questions))
	s.current = 0
	s.result = nil
}

// View returns a snapshot safe to hand to callers.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := SessionView{
		ModuleID:  s.moduleID,
		Questions: make([]View, len(s.questions)),
		Current:   s.current,
		Answered:  make([]bool, len(s.questions)),
		Threshold: s.threshold,
	}
	for i, q := range s.questions {
		v.Questions[i] = Describe(q)
		v.Answered[i] = Answered(s.answers[i])
	}
	if s.result != nil {
		r := *s.result
		r.Outcomes = append([]Outcome(nil), s.result.Outcomes...)
		v.Result = &r
	}
	return v
}

func (s *Session) checkIndex(index int) error {
	if index < 0 || index >= len(s.questions) {
		return fmt.Errorf("question %d out of range [0,%d)", index, len(s.questions))
	}
	return nil
}
