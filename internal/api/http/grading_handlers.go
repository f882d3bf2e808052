package http

import (
	"net/http"

	"github.com/mind-engage/mindengage-assessment/internal/grading"
)

// POST /quizzes/{quizID}/submit
func SubmitQuizHandler(svc *grading.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.Submit(r.Context(), quizParam(r))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, rec)
	}
}

type reviewReq struct {
	Scores map[string]interface{} `json:"scores"` // question_id -> number or numeric string
}

// POST /quizzes/{quizID}/review
func ReviewHandler(svc *grading.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewReq
		if !decodeJSON(w, r, &req) {
			return
		}
		rec, err := svc.SubmitRubricScores(r.Context(), quizParam(r), grading.ParseScores(req.Scores))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, rec)
	}
}

// POST /quizzes/{quizID}/similarity
func SimilarityHandler(svc *grading.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.ComputeSimilarity(r.Context(), quizParam(r))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, rec)
	}
}

// GET /courses/{courseID}/grades
func ListGradesHandler(svc *grading.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := courseParam(w, r)
		if !ok {
			return
		}
		list, err := svc.Records(r.Context(), courseID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// POST /grading/evaluate grades a submission without storing it.
func EvaluateHandler(svc *grading.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub grading.Submission
		if !decodeJSON(w, r, &sub) {
			return
		}
		rec, err := svc.Evaluate(sub)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, rec)
	}
}
