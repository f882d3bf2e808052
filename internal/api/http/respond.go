package http

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-assessment/internal/grading"
	"github.com/mind-engage/mindengage-assessment/internal/quiz"
	"github.com/mind-engage/mindengage-assessment/internal/validation"
)

type errorBody struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps service errors onto status codes. Internal failures
// are not echoed to the client.
func respondError(w http.ResponseWriter, err error) {
	var ve *validation.ValidationError
	switch {
	case errors.As(err, &ve):
		msg := "validation failed"
		if ve.Err != nil {
			msg = ve.Err.Error()
		}
		respondJSON(w, http.StatusBadRequest, errorBody{Error: msg, Fields: ve.Fields})
	case errors.Is(err, quiz.ErrNotFound),
		errors.Is(err, quiz.ErrUnknownQuestion),
		errors.Is(err, grading.ErrRecordNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, quiz.ErrAlreadySubmitted):
		respondJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		zap.L().Error("request failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad json: " + err.Error()})
		return false
	}
	return true
}
