package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"voicehire/backend/internal/models"
	"voicehire/backend/internal/storage"
	"voicehire/backend/internal/utils"
)

// DataHandler exposes stored interview data. Constructed only when the
// persistence sink is enabled; otherwise the routes answer with
// storage_disabled.
type DataHandler struct {
	store  *storage.Store
	logger *zap.Logger
}

func NewDataHandler(store *storage.Store, logger *zap.Logger) *DataHandler {
	return &DataHandler{
		store:  store,
		logger: logger,
	}
}

type interviewListResponse struct {
	Total      int                      `json:"total"`
	Interviews []models.InterviewRecord `json:"interviews"`
}

func (h *DataHandler) ListInterviewsHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListInterviews()
	if err != nil {
		h.logger.Error("Failed to list interviews", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "storage_error",
			Message: "Failed to list stored interviews",
		})
		return
	}

	utils.JSON(w, http.StatusOK, interviewListResponse{
		Total:      len(records),
		Interviews: records,
	})
}

func (h *DataHandler) GetInterviewHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	report, err := h.store.GetReport(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
				Code:    "interview_not_found",
				Message: "No stored interview with that session id",
			})
			return
		}
		h.logger.Error("Failed to fetch interview",
			zap.String("session_id", sessionID),
			zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "storage_error",
			Message: "Failed to fetch stored interview",
		})
		return
	}

	utils.JSON(w, http.StatusOK, report)
}

func (h *DataHandler) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStatistics()
	if err != nil {
		h.logger.Error("Failed to compute statistics", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "storage_error",
			Message: "Failed to compute interview statistics",
		})
		return
	}

	utils.JSON(w, http.StatusOK, stats)
}

// StorageDisabledHandler answers data routes when STORAGE_MODE=off.
func StorageDisabledHandler(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
		Code:    "storage_disabled",
		Message: "Persistent storage is disabled. Set STORAGE_MODE=db to enable.",
	})
}
