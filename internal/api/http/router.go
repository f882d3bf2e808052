package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-assessment/internal/bank"
	"github.com/mind-engage/mindengage-assessment/internal/exchange"
	"github.com/mind-engage/mindengage-assessment/internal/grading"
	"github.com/mind-engage/mindengage-assessment/internal/quiz"
)

// Services are the collaborators behind the HTTP surface.
type Services struct {
	Bank     *bank.Store
	Quizzes  *quiz.Service
	Grading  *grading.Service
	Exchange *exchange.Service
}

// Mount registers every assessment route on r.
func Mount(r chi.Router, s Services) {
	r.Route("/courses/{courseID}", func(cr chi.Router) {
		cr.Get("/bank", ListBankHandler(s.Bank))
		cr.Post("/bank", AddQuestionHandler(s.Bank))
		cr.Get("/bank/export", ExportBankHandler(s.Exchange))
		cr.Post("/bank/import", ImportBankHandler(s.Exchange))
		cr.Delete("/bank/{questionID}", RemoveQuestionHandler(s.Bank))
		cr.Post("/quizzes", StartQuizHandler(s.Quizzes))
		cr.Get("/grades", ListGradesHandler(s.Grading))
	})

	r.Route("/quizzes/{quizID}", func(qr chi.Router) {
		qr.Get("/", GetQuizHandler(s.Quizzes))
		qr.Route("/answers/{questionID}", func(ar chi.Router) {
			ar.Put("/", SetAnswerHandler(s.Quizzes))
			ar.Post("/toggle", ToggleOptionHandler(s.Quizzes))
			ar.Post("/match", MatchPairHandler(s.Quizzes))
			ar.Post("/move", MoveItemHandler(s.Quizzes))
			ar.Post("/hotspot", HotspotHandler(s.Quizzes))
			ar.Post("/run", RunCodeHandler(s.Quizzes))
			ar.Post("/file", AttachFileHandler(s.Quizzes))
		})
		qr.Post("/submit", SubmitQuizHandler(s.Grading))
		qr.Post("/review", ReviewHandler(s.Grading))
		qr.Post("/similarity", SimilarityHandler(s.Grading))
		qr.Get("/export", ExportQuizHandler(s.Exchange))
		qr.Post("/import", ImportQuizHandler(s.Exchange))
	})

	r.Post("/grading/evaluate", EvaluateHandler(s.Grading))
}

// Probes registers liveness and readiness. ready may be nil.
func Probes(r chi.Router, ready func() error) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
}
