package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"voicehire/backend/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.InterviewRecord{}, &models.AnswerRecord{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewStore(db)
}

func sampleReport(sessionID string, average float64) *models.Report {
	started := time.Now().Add(-10 * time.Minute)
	return &models.Report{
		SessionID:       sessionID,
		CandidateName:   "Dana",
		JobDescription:  "Backend engineer",
		ExperienceYears: 3,
		Difficulty:      "intermediate",
		TotalQuestions:  2,
		Transcript: []models.Turn{
			{QuestionNumber: 1, Question: "Q1?", Answer: "A1", Evaluation: models.Evaluation{Score: average}},
			{QuestionNumber: 2, Question: "Q2?", Answer: "A2", Evaluation: models.Evaluation{Score: average}},
		},
		IndividualScores:   []float64{average, average},
		AverageScore:       average,
		HireRecommendation: "yes",
		Narrative:          models.ReportNarrative{Summary: "Fine."},
		StartedAt:          started,
		EndedAt:            started.Add(9 * time.Minute),
	}
}

func TestRecordAnswer(t *testing.T) {
	store := setupTestStore(t)

	turn := models.Turn{
		QuestionNumber: 1,
		Question:       "What is a channel?",
		Answer:         "A typed conduit.",
		Evaluation:     models.Evaluation{Score: 8, Feedback: "good"},
		AnsweredAt:     time.Now(),
	}
	if err := store.RecordAnswer("session-1", turn); err != nil {
		t.Fatalf("RecordAnswer returned error: %v", err)
	}

	var records []models.AnswerRecord
	if err := store.db.Find(&records).Error; err != nil {
		t.Fatalf("failed to read back answers: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 answer record, got %d", len(records))
	}
	if records[0].SessionID != "session-1" || records[0].Score != 8 {
		t.Fatalf("unexpected stored answer: %+v", records[0])
	}
}

func TestRecordInterviewAndGetReport(t *testing.T) {
	store := setupTestStore(t)

	report := sampleReport("session-1", 7.5)
	if err := store.RecordInterview(report); err != nil {
		t.Fatalf("RecordInterview returned error: %v", err)
	}

	loaded, err := store.GetReport("session-1")
	if err != nil {
		t.Fatalf("GetReport returned error: %v", err)
	}
	if loaded.SessionID != report.SessionID {
		t.Fatalf("session id = %q, want %q", loaded.SessionID, report.SessionID)
	}
	if loaded.AverageScore != 7.5 {
		t.Fatalf("average = %v, want 7.5", loaded.AverageScore)
	}
	if len(loaded.Transcript) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(loaded.Transcript))
	}
	if loaded.Narrative.Summary != "Fine." {
		t.Fatalf("narrative summary = %q", loaded.Narrative.Summary)
	}
}

func TestGetReportNotFound(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.GetReport("missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}
}

func TestListInterviewsOrdered(t *testing.T) {
	store := setupTestStore(t)

	newer := sampleReport("session-new", 6)
	older := sampleReport("session-old", 7)
	older.EndedAt = newer.EndedAt.Add(-time.Hour)

	if err := store.RecordInterview(newer); err != nil {
		t.Fatalf("RecordInterview returned error: %v", err)
	}
	if err := store.RecordInterview(older); err != nil {
		t.Fatalf("RecordInterview returned error: %v", err)
	}

	records, err := store.ListInterviews()
	if err != nil {
		t.Fatalf("ListInterviews returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].SessionID != "session-old" {
		t.Fatalf("expected oldest first, got %q", records[0].SessionID)
	}
}

func TestGetStatistics(t *testing.T) {
	store := setupTestStore(t)

	empty, err := store.GetStatistics()
	if err != nil {
		t.Fatalf("GetStatistics returned error: %v", err)
	}
	if empty.TotalInterviews != 0 || empty.AverageScore != 0 || empty.TotalAnswers != 0 {
		t.Fatalf("expected zero statistics, got %+v", empty)
	}

	if err := store.RecordInterview(sampleReport("s1", 6)); err != nil {
		t.Fatalf("RecordInterview returned error: %v", err)
	}
	if err := store.RecordInterview(sampleReport("s2", 8)); err != nil {
		t.Fatalf("RecordInterview returned error: %v", err)
	}
	if err := store.RecordAnswer("s1", models.Turn{QuestionNumber: 1, Question: "q", Answer: "a"}); err != nil {
		t.Fatalf("RecordAnswer returned error: %v", err)
	}

	stats, err := store.GetStatistics()
	if err != nil {
		t.Fatalf("GetStatistics returned error: %v", err)
	}
	if stats.TotalInterviews != 2 {
		t.Fatalf("total interviews = %d, want 2", stats.TotalInterviews)
	}
	if stats.AverageScore != 7 {
		t.Fatalf("average = %v, want 7", stats.AverageScore)
	}
	if stats.TotalAnswers != 1 {
		t.Fatalf("total answers = %d, want 1", stats.TotalAnswers)
	}
}

func TestGetUnexportedAndMarkExported(t *testing.T) {
	store := setupTestStore(t)

	if err := store.RecordInterview(sampleReport("s1", 6)); err != nil {
		t.Fatalf("RecordInterview returned error: %v", err)
	}
	if err := store.RecordInterview(sampleReport("s2", 8)); err != nil {
		t.Fatalf("RecordInterview returned error: %v", err)
	}

	pending, err := store.GetUnexported(0)
	if err != nil {
		t.Fatalf("GetUnexported returned error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 unexported records, got %d", len(pending))
	}

	if err := store.MarkExported([]uint{pending[0].ID}); err != nil {
		t.Fatalf("MarkExported returned error: %v", err)
	}

	remaining, err := store.GetUnexported(0)
	if err != nil {
		t.Fatalf("GetUnexported returned error: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 unexported record left, got %d", len(remaining))
	}
	if remaining[0].ID == pending[0].ID {
		t.Fatal("exported record still reported as pending")
	}

	var exported models.InterviewRecord
	if err := store.db.First(&exported, pending[0].ID).Error; err != nil {
		t.Fatalf("failed to reload exported record: %v", err)
	}
	if !exported.Exported || exported.ExportedAt == nil {
		t.Fatalf("exported flags not set: %+v", exported)
	}
}

func TestGetUnexportedRespectsLimit(t *testing.T) {
	store := setupTestStore(t)

	for i := 0; i < 3; i++ {
		if err := store.RecordInterview(sampleReport(fmt.Sprintf("s%d", i), 6)); err != nil {
			t.Fatalf("RecordInterview returned error: %v", err)
		}
	}

	records, err := store.GetUnexported(2)
	if err != nil {
		t.Fatalf("GetUnexported returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records with limit, got %d", len(records))
	}
}
