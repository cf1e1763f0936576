package llm

import (
	"context"
	"errors"

	"voicehire/backend/internal/models"
)

// EvaluationResult bundles the scored judgment of the latest answer with the
// next question. NextQuestion is empty when the answered question was the
// final one.
type EvaluationResult struct {
	Evaluation   models.Evaluation
	NextQuestion string
}

// Provider is the external evaluator capability. Every call is a blocking
// network round trip bounded by the caller's context; implementations never
// substitute defaults for output they could not parse.
type Provider interface {
	// OpeningQuestion produces the first interview question for a session.
	OpeningQuestion(ctx context.Context, config models.InterviewConfig) (string, error)
	// EvaluateAnswer scores the most recent answer and, unless final is set,
	// produces the next question in the same round trip.
	EvaluateAnswer(ctx context.Context, config models.InterviewConfig, transcript []models.Turn, question, answer string, final bool) (*EvaluationResult, error)
	// FinalReport produces the whole-session narrative for a completed transcript.
	FinalReport(ctx context.Context, config models.InterviewConfig, transcript []models.Turn) (*models.ReportNarrative, error)
	GetProviderName() string
}

// represents an error from an evaluator provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes across providers. Unavailable/timeout are transient and
// safe to retry; malformed means the remote call succeeded but the reply
// could not be interpreted.
const (
	ErrCodeAPIKey      = "invalid_api_key"
	ErrCodeUnavailable = "evaluator_unavailable"
	ErrCodeMalformed   = "evaluator_malformed_response"
	ErrCodeTimeout     = "timeout"
)

// Retryable reports whether err is a transient provider failure that the
// caller may resubmit without side effects.
func Retryable(err error) bool {
	var perr *ProviderError
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Code == ErrCodeUnavailable || perr.Code == ErrCodeTimeout
}

// Malformed reports whether err means the provider replied with something
// that could not be validated into the typed model.
func Malformed(err error) bool {
	var perr *ProviderError
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Code == ErrCodeMalformed
}
