package models

import "time"

// Session status values. A session only ever moves forward.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// InterviewConfig holds the immutable parameters of one interview session.
type InterviewConfig struct {
	JobDescription  string `json:"job_description"`
	CandidateName   string `json:"candidate_name"`
	ExperienceYears int    `json:"experience_years"`
	Difficulty      string `json:"difficulty"`
	TotalQuestions  int    `json:"total_questions"`
}

// Evaluation is the scored judgment of a single answer, as returned by the
// evaluator. Score is clamped to [0,10] at the provider boundary.
type Evaluation struct {
	Score        float64  `json:"score"`
	Feedback     string   `json:"evaluation"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Turn is one question/answer exchange. Immutable once appended to a transcript.
type Turn struct {
	QuestionNumber int        `json:"question_number"`
	Question       string     `json:"question"`
	Answer         string     `json:"answer"`
	Evaluation     Evaluation `json:"evaluation"`
	AnsweredAt     time.Time  `json:"answered_at"`
}

// ReportNarrative is the free-text portion of the final report, supplied by
// the evaluator for the session as a whole.
type ReportNarrative struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// Report is produced exactly once, when a session completes. AverageScore and
// HireRecommendation are computed locally; only the narrative comes from the
// evaluator.
type Report struct {
	SessionID          string          `json:"session_id"`
	CandidateName      string          `json:"candidate_name"`
	JobDescription     string          `json:"job_description"`
	ExperienceYears    int             `json:"experience_years"`
	Difficulty         string          `json:"difficulty"`
	TotalQuestions     int             `json:"total_questions"`
	Transcript         []Turn          `json:"questions_and_answers"`
	IndividualScores   []float64       `json:"individual_scores"`
	AverageScore       float64         `json:"average_score"`
	HireRecommendation string          `json:"hire_recommendation"`
	Narrative          ReportNarrative `json:"narrative"`
	StartedAt          time.Time       `json:"started_at"`
	EndedAt            time.Time       `json:"ended_at"`
}

// Supported difficulty levels (lowercase).
var ValidDifficulties = map[string]bool{
	"beginner":     true,
	"intermediate": true,
	"advanced":     true,
}

const (
	DefaultDifficulty    = "intermediate"
	DefaultCandidateName = "Candidate"
)
