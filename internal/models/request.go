package models

import (
	"strings"
)

type StartInterviewRequest struct {
	JobDescription  string `json:"job_description"`
	CandidateName   string `json:"candidate_name"`
	ExperienceYears int    `json:"experience_years"`
	Difficulty      string `json:"difficulty"`
	TotalQuestions  int    `json:"total_questions,omitempty"`
}

// implements the Validator interface
func (r *StartInterviewRequest) Validate() error {
	if strings.TrimSpace(r.JobDescription) == "" {
		return &ErrorResponse{
			Code:    "missing_job_description",
			Message: "Job description is required",
		}
	}

	if r.ExperienceYears < 0 {
		return &ErrorResponse{
			Code:    "invalid_experience",
			Message: "experience_years must be zero or positive",
		}
	}

	if r.CandidateName == "" {
		r.CandidateName = DefaultCandidateName
	}

	if r.Difficulty == "" {
		r.Difficulty = DefaultDifficulty
	}
	r.Difficulty = strings.ToLower(strings.TrimSpace(r.Difficulty))

	if !ValidDifficulties[r.Difficulty] {
		return &ErrorResponse{
			Code:    "invalid_difficulty",
			Message: "Difficulty must be one of: beginner, intermediate, advanced",
		}
	}

	// zero means "use the server default"; anything else must be positive
	if r.TotalQuestions < 0 {
		return &ErrorResponse{
			Code:    "invalid_total_questions",
			Message: "total_questions must be positive",
		}
	}

	return nil
}

type SubmitAnswerRequest struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

func (r *SubmitAnswerRequest) Validate() error {
	if r.SessionID == "" {
		return &ErrorResponse{Code: "missing_session_id", Message: "session_id is required"}
	}
	if strings.TrimSpace(r.Answer) == "" {
		return &ErrorResponse{Code: "empty_answer", Message: "Answer must not be empty"}
	}
	return nil
}

type EndInterviewRequest struct {
	SessionID string `json:"session_id"`
}

func (r *EndInterviewRequest) Validate() error {
	if r.SessionID == "" {
		return &ErrorResponse{Code: "missing_session_id", Message: "session_id is required"}
	}
	return nil
}
