package gemini

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"voicehire/backend/internal/llm"
	"voicehire/backend/internal/models"
)

// wire shape of an evaluation reply
type evaluationPayload struct {
	Score        *float64 `json:"score"`
	Evaluation   string   `json:"evaluation"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	NextQuestion string   `json:"next_question"`
}

// wire shape of a final report reply
type narrativePayload struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// extractJSON pulls the outermost JSON object out of a model reply, which may
// be wrapped in prose or markdown fences.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return text[start : end+1], nil
}

// clampScore bounds a score to [0,10]. Slightly out-of-range values are a
// formatting quirk of the model, not a contract violation.
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func malformed(message string, err error) *llm.ProviderError {
	return &llm.ProviderError{
		Provider: "gemini",
		Code:     llm.ErrCodeMalformed,
		Message:  message,
		Err:      err,
	}
}

// parseEvaluation validates a combined evaluate-and-continue reply. When final
// is false a non-empty next question is part of the contract.
func parseEvaluation(text string, final bool) (*llm.EvaluationResult, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, malformed("Evaluation response is not JSON", err)
	}

	var payload evaluationPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, malformed("Failed to decode evaluation JSON", err)
	}

	if payload.Score == nil {
		return nil, malformed("Evaluation is missing a score", nil)
	}

	nextQuestion := strings.TrimSpace(payload.NextQuestion)
	if !final && nextQuestion == "" {
		return nil, malformed("Evaluation is missing the next question", nil)
	}
	if final {
		nextQuestion = ""
	}

	return &llm.EvaluationResult{
		Evaluation: models.Evaluation{
			Score:        clampScore(*payload.Score),
			Feedback:     strings.TrimSpace(payload.Evaluation),
			Strengths:    payload.Strengths,
			Improvements: payload.Improvements,
		},
		NextQuestion: nextQuestion,
	}, nil
}

// parseNarrative validates a final report reply.
func parseNarrative(text string) (*models.ReportNarrative, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, malformed("Report response is not JSON", err)
	}

	var payload narrativePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, malformed("Failed to decode report JSON", err)
	}

	if strings.TrimSpace(payload.Summary) == "" {
		return nil, malformed("Report is missing a summary", nil)
	}

	return &models.ReportNarrative{
		Summary:         strings.TrimSpace(payload.Summary),
		Strengths:       payload.Strengths,
		Weaknesses:      payload.Weaknesses,
		Recommendations: payload.Recommendations,
	}, nil
}

// formatTranscript renders prior turns for inclusion in a prompt.
func formatTranscript(transcript []models.Turn) string {
	if len(transcript) == 0 {
		return "(none yet)"
	}

	var b strings.Builder
	for _, turn := range transcript {
		fmt.Fprintf(&b, "Q%d: %s\n", turn.QuestionNumber, turn.Question)
		fmt.Fprintf(&b, "A%d: %s\n", turn.QuestionNumber, turn.Answer)
		fmt.Fprintf(&b, "Score: %.1f/10\n", turn.Evaluation.Score)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatScores(scores []float64) string {
	parts := make([]string, 0, len(scores))
	for _, s := range scores {
		parts = append(parts, strconv.FormatFloat(s, 'f', 1, 64))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatAverage(scores []float64) string {
	if len(scores) == 0 {
		return "0.0"
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return strconv.FormatFloat(sum/float64(len(scores)), 'f', 1, 64)
}
