package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-assessment/internal/bank"
	"github.com/mind-engage/mindengage-assessment/internal/question"
)

// GET /courses/{courseID}/bank
func ListBankHandler(store *bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := courseParam(w, r)
		if !ok {
			return
		}
		qs, err := store.List(r.Context(), courseID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, qs)
	}
}

// POST /courses/{courseID}/bank
func AddQuestionHandler(store *bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := courseParam(w, r)
		if !ok {
			return
		}
		var q question.Question
		if !decodeJSON(w, r, &q) {
			return
		}
		added, err := store.Add(r.Context(), courseID, q)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, added)
	}
}

// DELETE /courses/{courseID}/bank/{questionID}
func RemoveQuestionHandler(store *bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := courseParam(w, r)
		if !ok {
			return
		}
		id := strings.TrimSpace(chi.URLParam(r, "questionID"))
		if err := store.Remove(r.Context(), courseID, id); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func courseParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "courseID"))
	if id == "" {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "courseID required"})
		return "", false
	}
	return id, true
}

func quizParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "quizID"))
}
