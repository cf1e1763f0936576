package models

import (
	"time"

	"gorm.io/gorm"
)

// InterviewRecord is the persisted form of a completed interview Report.
// Written by the persistence sink after a session completes; Exported tracks
// the spreadsheet export job.
type InterviewRecord struct {
	gorm.Model
	SessionID          string     `gorm:"uniqueIndex;not null" json:"session_id"`
	CandidateName      string     `gorm:"not null" json:"candidate_name"`
	JobDescription     string     `gorm:"type:text;not null" json:"job_description"`
	ExperienceYears    int        `gorm:"not null" json:"experience_years"`
	Difficulty         string     `gorm:"not null" json:"difficulty"`
	TotalQuestions     int        `gorm:"not null" json:"total_questions"`
	AverageScore       float64    `gorm:"not null" json:"average_score"`
	HireRecommendation string     `gorm:"not null" json:"hire_recommendation"`
	ReportJSON         string     `gorm:"type:text;not null" json:"-"`
	StartedAt          time.Time  `gorm:"not null" json:"started_at"`
	EndedAt            time.Time  `gorm:"not null" json:"ended_at"`
	Exported           bool       `gorm:"not null;default:false;index" json:"exported"`
	ExportedAt         *time.Time `json:"exported_at"`
}

// AnswerRecord is written immediately after each Turn is appended, so the
// sink keeps progress even when a session never completes.
type AnswerRecord struct {
	gorm.Model
	SessionID      string    `gorm:"index;not null" json:"session_id"`
	QuestionNumber int       `gorm:"not null" json:"question_number"`
	Question       string    `gorm:"type:text;not null" json:"question"`
	Answer         string    `gorm:"type:text;not null" json:"answer"`
	Score          float64   `gorm:"not null" json:"score"`
	Feedback       string    `gorm:"type:text" json:"feedback"`
	AnsweredAt     time.Time `gorm:"not null" json:"answered_at"`
}
