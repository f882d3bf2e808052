package http

import (
	"io"
	"net/http"

	"github.com/mind-engage/mindengage-assessment/internal/exchange"
)

// maxDocumentBytes caps exchange document uploads.
const maxDocumentBytes = 8 << 20

func respondDocument(w http.ResponseWriter, d exchange.Document, filename string) {
	b, err := exchange.Encode(d)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func readDocument(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "read body: " + err.Error()})
		return nil, false
	}
	return b, true
}

// GET /quizzes/{quizID}/export
func ExportQuizHandler(svc *exchange.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := quizParam(r)
		d, err := svc.ExportInstance(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		respondDocument(w, d, "exchange_"+id+".json")
	}
}

// POST /quizzes/{quizID}/import
func ImportQuizHandler(svc *exchange.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := readDocument(w, r)
		if !ok {
			return
		}
		in, err := svc.ImportInstance(r.Context(), quizParam(r), b)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, in)
	}
}

// GET /courses/{courseID}/bank/export
func ExportBankHandler(svc *exchange.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := courseParam(w, r)
		if !ok {
			return
		}
		d, err := svc.ExportBank(r.Context(), courseID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondDocument(w, d, "bank_"+courseID+".json")
	}
}

// POST /courses/{courseID}/bank/import
func ImportBankHandler(svc *exchange.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := courseParam(w, r)
		if !ok {
			return
		}
		b, ok := readDocument(w, r)
		if !ok {
			return
		}
		qs, err := svc.ImportBank(r.Context(), courseID, b)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, qs)
	}
}
