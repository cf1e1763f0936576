package handlers

import (
	"errors"
	"net/http"

	"voicehire/backend/internal/interview"
	"voicehire/backend/internal/llm"
	"voicehire/backend/internal/models"
	"voicehire/backend/internal/utils"
)

// writeDomainError maps operation-boundary errors onto HTTP responses.
// Transient evaluator failures come back retryable so the client can simply
// resubmit the same request.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interview.ErrInvalidConfig):
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_config",
			Message: err.Error(),
		})
	case errors.Is(err, interview.ErrSessionNotFound):
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "session_not_found",
			Message: "No interview session with that id",
		})
	case errors.Is(err, interview.ErrSessionAlreadyCompleted):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "session_already_completed",
			Message: "This interview has already completed",
		})
	case errors.Is(err, interview.ErrSessionNotCompleted):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "session_not_completed",
			Message: "This interview is still in progress",
		})
	case errors.Is(err, interview.ErrEmptyAnswer):
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "empty_answer",
			Message: "Answer must not be empty",
		})
	case errors.Is(err, interview.ErrSessionBusy):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "session_busy",
			Message: "Another operation is in flight for this session, try again",
		})
	case llm.Retryable(err):
		utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{
			Code:    "evaluator_unavailable",
			Message: "The evaluator is temporarily unavailable, try submitting again",
		})
	case llm.Malformed(err):
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "evaluator_malformed_response",
			Message: "The evaluator returned an unusable response, try submitting again",
		})
	default:
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Unexpected error",
		})
	}
}
