package handlers

import (
	"net/http"

	"voicehire/backend/internal/config"
	"voicehire/backend/internal/llm"
	"voicehire/backend/internal/prompts"
	"voicehire/backend/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Checks  map[string]ReadinessCheck `json:"checks"`  // Individual check results
}

type HealthHandler struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	config        *config.Config
}

func NewHealthHandler(provider llm.Provider, promptManager prompts.PromptProvider, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		promptManager: promptManager,
		config:        cfg,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	evaluatorReady := handler.provider != nil

	provider := ""
	if evaluatorReady {
		provider = handler.provider.GetProviderName()
	}

	utils.JSON(writer, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"service":         "interview",
		"evaluator_ready": evaluatorReady,
		"provider":        provider,
		"storage_mode":    handler.config.StorageMode,
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	// verify evaluator provider is initialized
	if handler.provider == nil {
		checks["provider"] = ReadinessCheck{
			Status:  "failed",
			Message: "Evaluator provider not initialized",
		}
		allChecksPass = false
	} else {
		checks["provider"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify prompt manager has templates loaded
	if handler.promptManager == nil {
		checks["prompt_manager"] = ReadinessCheck{
			Status:  "failed",
			Message: "Prompt manager not initialized",
		}
		allChecksPass = false
	} else {
		templates := handler.promptManager.GetTemplates()
		if len(templates) == 0 {
			checks["prompt_manager"] = ReadinessCheck{
				Status:  "failed",
				Message: "No prompt templates loaded",
			}
			allChecksPass = false
		} else {
			checks["prompt_manager"] = ReadinessCheck{
				Status: "ok",
			}
		}
	}

	// verify configuration is valid
	if handler.config == nil {
		checks["configuration"] = ReadinessCheck{
			Status:  "failed",
			Message: "Configuration not loaded",
		}
		allChecksPass = false
	} else {
		checks["configuration"] = ReadinessCheck{
			Status: "ok",
		}
	}

	response := ReadinessResponse{
		Service: "interview",
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
