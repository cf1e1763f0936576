package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"voicehire/backend/internal/models"
)

// Store is the persistence sink. It records per-answer progress and completed
// interview reports, and feeds the spreadsheet export job. All writes are
// best-effort from the caller's point of view.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// RecordAnswer persists one evaluated turn, immediately after it was
// appended to a session transcript.
func (s *Store) RecordAnswer(sessionID string, turn models.Turn) error {
	record := &models.AnswerRecord{
		SessionID:      sessionID,
		QuestionNumber: turn.QuestionNumber,
		Question:       turn.Question,
		Answer:         turn.Answer,
		Score:          turn.Evaluation.Score,
		Feedback:       turn.Evaluation.Feedback,
		AnsweredAt:     turn.AnsweredAt,
	}

	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to store answer: %w", err)
	}

	log.Printf("Stored answer: session=%s question=%d score=%.1f", sessionID, turn.QuestionNumber, turn.Evaluation.Score)
	return nil
}

// RecordInterview persists a completed interview report.
func (s *Store) RecordInterview(report *models.Report) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	record := &models.InterviewRecord{
		SessionID:          report.SessionID,
		CandidateName:      report.CandidateName,
		JobDescription:     report.JobDescription,
		ExperienceYears:    report.ExperienceYears,
		Difficulty:         report.Difficulty,
		TotalQuestions:     report.TotalQuestions,
		AverageScore:       report.AverageScore,
		HireRecommendation: report.HireRecommendation,
		ReportJSON:         string(reportJSON),
		StartedAt:          report.StartedAt,
		EndedAt:            report.EndedAt,
		Exported:           false,
	}

	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to store interview: %w", err)
	}

	log.Printf("Stored interview: session=%s average=%.1f recommendation=%s",
		report.SessionID, report.AverageScore, report.HireRecommendation)
	return nil
}

// ListInterviews returns all stored interview records, oldest first.
func (s *Store) ListInterviews() ([]models.InterviewRecord, error) {
	var records []models.InterviewRecord
	if err := s.db.Order("ended_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	return records, nil
}

// GetReport retrieves the full stored report for one session. Returns
// gorm.ErrRecordNotFound when the session was never persisted.
func (s *Store) GetReport(sessionID string) (*models.Report, error) {
	var record models.InterviewRecord
	if err := s.db.First(&record, "session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}

	var report models.Report
	if err := json.Unmarshal([]byte(record.ReportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to decode stored report: %w", err)
	}
	return &report, nil
}

// Statistics summarizes everything the sink has recorded.
type Statistics struct {
	TotalInterviews int64   `json:"total_interviews"`
	AverageScore    float64 `json:"average_score"`
	TotalAnswers    int64   `json:"total_answers"`
}

func (s *Store) GetStatistics() (*Statistics, error) {
	stats := &Statistics{}

	if err := s.db.Model(&models.InterviewRecord{}).Count(&stats.TotalInterviews).Error; err != nil {
		return nil, fmt.Errorf("failed to count interviews: %w", err)
	}

	if stats.TotalInterviews > 0 {
		row := s.db.Model(&models.InterviewRecord{}).Select("AVG(average_score)").Row()
		if err := row.Scan(&stats.AverageScore); err != nil {
			return nil, fmt.Errorf("failed to average scores: %w", err)
		}
	}

	if err := s.db.Model(&models.AnswerRecord{}).Count(&stats.TotalAnswers).Error; err != nil {
		return nil, fmt.Errorf("failed to count answers: %w", err)
	}

	return stats, nil
}

// GetUnexported retrieves interview records the spreadsheet job has not
// exported yet, oldest first.
func (s *Store) GetUnexported(limit int) ([]models.InterviewRecord, error) {
	var records []models.InterviewRecord

	query := s.db.Where("exported = ?", false).Order("ended_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get unexported interviews: %w", err)
	}

	return records, nil
}

// MarkExported flags interview records as exported.
func (s *Store) MarkExported(recordIDs []uint) error {
	now := time.Now()
	result := s.db.Model(&models.InterviewRecord{}).
		Where("id IN ?", recordIDs).
		Updates(map[string]interface{}{
			"exported":    true,
			"exported_at": now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark interviews as exported: %w", result.Error)
	}

	log.Printf("Marked %d interview records as exported", result.RowsAffected)
	return nil
}
