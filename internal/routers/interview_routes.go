package routers

import (
	"github.com/go-chi/chi/v5"

	"voicehire/backend/internal/handlers"
	"voicehire/backend/internal/middleware"
	"voicehire/backend/internal/models"
)

func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler) {
	router.Route("/api", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.StartInterviewRequest]()).Post("/start-interview", interviewHandler.StartHandler)
		r.With(middleware.ValidateRequest[*models.SubmitAnswerRequest]()).Post("/submit-answer", interviewHandler.SubmitAnswerHandler)
		r.With(middleware.ValidateRequest[*models.EndInterviewRequest]()).Post("/end-interview", interviewHandler.EndInterviewHandler)
		r.Get("/interview/{sessionID}/report", interviewHandler.GetReportHandler)
	})
}

// DataRoutes registers the stored-data endpoints. dataHandler is nil when the
// persistence sink is disabled.
func DataRoutes(router *chi.Mux, dataHandler *handlers.DataHandler) {
	router.Route("/api/data", func(r chi.Router) {
		if dataHandler == nil {
			r.Get("/interviews", handlers.StorageDisabledHandler)
			r.Get("/interview/{sessionID}", handlers.StorageDisabledHandler)
			r.Get("/statistics", handlers.StorageDisabledHandler)
			return
		}
		r.Get("/interviews", dataHandler.ListInterviewsHandler)
		r.Get("/interview/{sessionID}", dataHandler.GetInterviewHandler)
		r.Get("/statistics", dataHandler.StatisticsHandler)
	})
}
