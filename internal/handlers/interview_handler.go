package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"voicehire/backend/internal/interview"
	"voicehire/backend/internal/middleware"
	"voicehire/backend/internal/models"
	"voicehire/backend/internal/utils"
)

// InterviewService is what the handlers need from the session registry.
type InterviewService interface {
	Start(ctx context.Context, cfg models.InterviewConfig) (*interview.StartResult, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (*interview.TurnResult, error)
	EndInterview(ctx context.Context, sessionID string) (*models.Report, error)
	GetReport(sessionID string) (*models.Report, error)
}

type InterviewHandler struct {
	service InterviewService
	logger  *zap.Logger
}

func NewInterviewHandler(service InterviewService, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{
		service: service,
		logger:  logger,
	}
}

func (h *InterviewHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartInterviewRequest](r)

	result, err := h.service.Start(r.Context(), models.InterviewConfig{
		JobDescription:  req.JobDescription,
		CandidateName:   req.CandidateName,
		ExperienceYears: req.ExperienceYears,
		Difficulty:      req.Difficulty,
		TotalQuestions:  req.TotalQuestions,
	})
	if err != nil {
		h.logger.Error("Failed to start interview", zap.Error(err))
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, models.StartInterviewResponse{
		Status:         "started",
		SessionID:      result.SessionID,
		Question:       result.Question,
		QuestionNumber: 1,
		TotalQuestions: result.TotalQuestions,
	})
}

func (h *InterviewHandler) SubmitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SubmitAnswerRequest](r)

	result, err := h.service.SubmitAnswer(r.Context(), req.SessionID, req.Answer)
	if err != nil {
		h.logger.Error("Failed to submit answer",
			zap.String("session_id", req.SessionID),
			zap.Error(err))
		writeDomainError(w, err)
		return
	}

	if result.Completed {
		utils.JSON(w, http.StatusOK, models.InterviewCompleteResponse{
			Status:     "interview_complete",
			Evaluation: &result.Evaluation,
			Report:     result.Report,
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.NextQuestionResponse{
		Status:         "next_question",
		Evaluation:     result.Evaluation,
		Question:       result.NextQuestion,
		QuestionNumber: result.QuestionNumber,
		TotalQuestions: result.TotalQuestions,
		Progress:       result.Progress,
	})
}

func (h *InterviewHandler) EndInterviewHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.EndInterviewRequest](r)

	report, err := h.service.EndInterview(r.Context(), req.SessionID)
	if err != nil {
		h.logger.Error("Failed to end interview",
			zap.String("session_id", req.SessionID),
			zap.Error(err))
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, models.InterviewCompleteResponse{
		Status: "completed",
		Report: report,
	})
}

func (h *InterviewHandler) GetReportHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	report, err := h.service.GetReport(sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, report)
}
