package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-assessment/internal/quiz"
)

// POST /courses/{courseID}/quizzes
func StartQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := courseParam(w, r)
		if !ok {
			return
		}
		var req struct {
			Count int `json:"count"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		in, err := svc.Start(r.Context(), courseID, req.Count)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, in)
	}
}

// GET /quizzes/{quizID}
func GetQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := svc.Get(r.Context(), quizParam(r))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, in)
	}
}

// captureHandler decodes a body of type T and applies it to one answer.
func captureHandler[T any](apply func(r *http.Request, quizID, questionID string, body T) (quiz.Instance, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body T
		if !decodeJSON(w, r, &body) {
			return
		}
		questionID := strings.TrimSpace(chi.URLParam(r, "questionID"))
		in, err := apply(r, quizParam(r), questionID, body)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, in)
	}
}

type answerReq struct {
	Value interface{} `json:"value"`
}

// PUT /quizzes/{quizID}/answers/{questionID}
func SetAnswerHandler(svc *quiz.Service) http.HandlerFunc {
	return captureHandler(func(r *http.Request, quizID, questionID string, b answerReq) (quiz.Instance, error) {
		return svc.Answer(r.Context(), quizID, questionID, b.Value)
	})
}

type toggleReq struct {
	Index int `json:"index"`
}

// POST /quizzes/{quizID}/answers/{questionID}/toggle
func ToggleOptionHandler(svc *quiz.Service) http.HandlerFunc {
	return captureHandler(func(r *http.Request, quizID, questionID string, b toggleReq) (quiz.Instance, error) {
		return svc.Toggle(r.Context(), quizID, questionID, b.Index)
	})
}

type matchReq struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// POST /quizzes/{quizID}/answers/{questionID}/match
func MatchPairHandler(svc *quiz.Service) http.HandlerFunc {
	return captureHandler(func(r *http.Request, quizID, questionID string, b matchReq) (quiz.Instance, error) {
		return svc.Match(r.Context(), quizID, questionID, b.Left, b.Right)
	})
}

type moveReq struct {
	From int `json:"from"`
	Dir  int `json:"dir"`
}

// POST /quizzes/{quizID}/answers/{questionID}/move
func MoveItemHandler(svc *quiz.Service) http.HandlerFunc {
	return captureHandler(func(r *http.Request, quizID, questionID string, b moveReq) (quiz.Instance, error) {
		return svc.Move(r.Context(), quizID, questionID, b.From, b.Dir)
	})
}

// POST /quizzes/{quizID}/answers/{questionID}/hotspot
func HotspotHandler(svc *quiz.Service) http.HandlerFunc {
	return captureHandler(func(r *http.Request, quizID, questionID string, b quiz.Point) (quiz.Instance, error) {
		return svc.Hotspot(r.Context(), quizID, questionID, b.X, b.Y)
	})
}

type runReq struct {
	Code string `json:"code"`
}

// POST /quizzes/{quizID}/answers/{questionID}/run
func RunCodeHandler(svc *quiz.Service) http.HandlerFunc {
	return captureHandler(func(r *http.Request, quizID, questionID string, b runReq) (quiz.Instance, error) {
		return svc.RunCode(r.Context(), quizID, questionID, b.Code)
	})
}

// POST /quizzes/{quizID}/answers/{questionID}/file
func AttachFileHandler(svc *quiz.Service) http.HandlerFunc {
	return captureHandler(func(r *http.Request, quizID, questionID string, b quiz.FileRef) (quiz.Instance, error) {
		return svc.AttachFile(r.Context(), quizID, questionID, b)
	})
}
