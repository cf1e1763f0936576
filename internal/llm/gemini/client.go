package gemini

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"voicehire/backend/internal/llm"
	"voicehire/backend/internal/models"
	"voicehire/backend/internal/prompts"
)

// Client is the Gemini-backed evaluator.
type Client struct {
	client  *genai.Client
	config  *Config
	prompts prompts.PromptProvider
}

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &Client{
		client:  client,
		config:  config,
		prompts: promptManager,
	}, nil
}

func (c *Client) OpeningQuestion(ctx context.Context, config models.InterviewConfig) (string, error) {
	prompt, err := c.prompts.BuildPrompt("opening", config.Difficulty, map[string]string{
		"JobDescription":  config.JobDescription,
		"CandidateName":   config.CandidateName,
		"ExperienceYears": strconv.Itoa(config.ExperienceYears),
	})
	if err != nil {
		return "", fmt.Errorf("build opening prompt: %w", err)
	}

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	question := strings.TrimSpace(text)
	if question == "" {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeMalformed,
			Message:  "Empty opening question generated",
		}
	}

	return question, nil
}

func (c *Client) EvaluateAnswer(ctx context.Context, config models.InterviewConfig, transcript []models.Turn, question, answer string, final bool) (*llm.EvaluationResult, error) {
	nextQuestionRule := "5. Generate the NEXT interview question in the next_question field, relevant to the job description and different from previous questions"
	if final {
		nextQuestionRule = "5. This was the final question of the interview; return an empty string in the next_question field"
	}

	prompt, err := c.prompts.BuildPrompt("evaluate", config.Difficulty, map[string]string{
		"JobDescription":   config.JobDescription,
		"Transcript":       formatTranscript(transcript),
		"Question":         question,
		"Answer":           answer,
		"NextQuestionRule": nextQuestionRule,
	})
	if err != nil {
		return nil, fmt.Errorf("build evaluate prompt: %w", err)
	}

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseEvaluation(text, final)
}

func (c *Client) FinalReport(ctx context.Context, config models.InterviewConfig, transcript []models.Turn) (*models.ReportNarrative, error) {
	scores := make([]float64, 0, len(transcript))
	for _, turn := range transcript {
		scores = append(scores, turn.Evaluation.Score)
	}

	prompt, err := c.prompts.BuildPrompt("report", config.Difficulty, map[string]string{
		"JobDescription":  config.JobDescription,
		"CandidateName":   config.CandidateName,
		"ExperienceYears": strconv.Itoa(config.ExperienceYears),
		"Transcript":      formatTranscript(transcript),
		"Scores":          formatScores(scores),
		"AverageScore":    formatAverage(scores),
	})
	if err != nil {
		return nil, fmt.Errorf("build report prompt: %w", err)
	}

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseNarrative(text)
}

func (c *Client) GetProviderName() string {
	return "gemini"
}

// generate performs one model round trip and extracts the raw response text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(
		ctx,
		c.config.Model,
		genai.Text(prompt),
		nil,
	)
	if err != nil {
		code := llm.ErrCodeUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			code = llm.ErrCodeTimeout
		}
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     code,
			Message:  "Failed to generate content",
			Err:      err,
		}
	}

	if result == nil {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeMalformed,
			Message:  "No response generated",
		}
	}

	text, err := result.Text()
	if err != nil {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeMalformed,
			Message:  "Failed to extract response text",
			Err:      err,
		}
	}

	return text, nil
}
