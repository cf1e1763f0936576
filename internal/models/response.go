package models

// returned by POST /api/start-interview
type StartInterviewResponse struct {
	Status         string `json:"status"`
	SessionID      string `json:"session_id"`
	Question       string `json:"question"`
	QuestionNumber int    `json:"question_number"`
	TotalQuestions int    `json:"total_questions"`
}

// returned by POST /api/submit-answer while questions remain
type NextQuestionResponse struct {
	Status         string     `json:"status"`
	Evaluation     Evaluation `json:"evaluation"`
	Question       string     `json:"question"`
	QuestionNumber int        `json:"question_number"`
	TotalQuestions int        `json:"total_questions"`
	Progress       float64    `json:"progress"`
}

// returned by POST /api/submit-answer on the final answer, and by
// POST /api/end-interview
type InterviewCompleteResponse struct {
	Status     string      `json:"status"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
	Report     *Report     `json:"report"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse doubles as a validation error
func (e *ErrorResponse) Error() string {
	return e.Message
}
