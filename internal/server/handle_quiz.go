package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/p-n-ai/pai-parametric/internal/app"
	"github.com/p-n-ai/pai-parametric/internal/quiz"
)

func handleCheckExercise(a *app.App) http.HandlerFunc {
	type response struct {
		ID      string `json:"id"`
		Correct bool   `json:"correct"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var sub quiz.Submission
		if err := readJSON(r, &sub); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		id := r.PathValue("id")
		correct, err := a.CheckExercise(id, sub)
		switch {
		case errors.Is(err, quiz.ErrIncomplete):
			writeError(w, http.StatusUnprocessableEntity, "Veuillez remplir tous les champs.")
			return
		case errors.Is(err, app.ErrNoExercise):
			writeError(w, http.StatusNotFound, "exercise not found")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, response{ID: id, Correct: correct})
	}
}

// withQuiz resolves the open quiz session.
func withQuiz(a *app.App, fn func(http.ResponseWriter, *http.Request, *quiz.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := a.Quiz()
		if err != nil {
			writeError(w, http.StatusNotFound, "no quiz open")
			return
		}
		fn(w, r, s)
	}
}

func handleQuiz(a *app.App) http.HandlerFunc {
	return withQuiz(a, func(w http.ResponseWriter, r *http.Request, s *quiz.Session) {
		writeJSON(w, http.StatusOK, s.View())
	})
}

// answerRequest carries exactly one answer form.
type answerRequest struct {
	Choice  *int        `json:"choice"`
	Choices []int       `json:"choices"`
	Bool    *bool       `json:"bool"`
	Text    *string     `json:"text"`
	Pairs   []quiz.Pair `json:"pairs"`
}

func (req answerRequest) answer() (quiz.Answer, error) {
	var out []quiz.Answer
	if req.Choice != nil {
		out = append(out, quiz.Choice(*req.Choice))
	}
	if req.Choices != nil {
		out = append(out, quiz.Choices(req.Choices))
	}
	if req.Bool != nil {
		out = append(out, quiz.Bool(*req.Bool))
	}
	if req.Text != nil {
		out = append(out, quiz.Text(*req.Text))
	}
	if req.Pairs != nil {
		out = append(out, quiz.Pairs(req.Pairs))
	}
	if len(out) != 1 {
		return nil, errors.New("exactly one of choice, choices, bool, text or pairs is required")
	}
	return out[0], nil
}

func pathIndex(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("index"))
}

func handleQuizAnswer(a *app.App) http.HandlerFunc {
	return withQuiz(a, func(w http.ResponseWriter, r *http.Request, s *quiz.Session) {
		index, err := pathIndex(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid question index")
			return
		}
		var req answerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		ans, err := req.answer()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.Answer(index, ans); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.View())
	})
}

func handleQuizClear(a *app.App) http.HandlerFunc {
	return withQuiz(a, func(w http.ResponseWriter, r *http.Request, s *quiz.Session) {
		index, err := pathIndex(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid question index")
			return
		}
		if err := s.Clear(index); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.View())
	})
}

func handleQuizGoto(a *app.App) http.HandlerFunc {
	type request struct {
		Index *int `json:"index"`
	}

	return withQuiz(a, func(w http.ResponseWriter, r *http.Request, s *quiz.Session) {
		var req request
		if err := readJSON(r, &req); err != nil || req.Index == nil {
			writeError(w, http.StatusBadRequest, "index is required")
			return
		}
		if err := s.Goto(*req.Index); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.View())
	})
}

func handleQuizSubmit(a *app.App) http.HandlerFunc {
	return withQuiz(a, func(w http.ResponseWriter, r *http.Request, s *quiz.Session) {
		writeJSON(w, http.StatusOK, s.Submit())
	})
}

func handleQuizReset(a *app.App) http.HandlerFunc {
	return withQuiz(a, func(w http.ResponseWriter, r *http.Request, s *quiz.Session) {
		s.Reset()
		writeJSON(w, http.StatusOK, s.View())
	})
}
