package interview

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"voicehire/backend/internal/config"
	"voicehire/backend/internal/llm"
	"voicehire/backend/internal/models"
)

type mockProvider struct {
	openingQuestionFn func(ctx context.Context, config models.InterviewConfig) (string, error)
	evaluateAnswerFn  func(ctx context.Context, config models.InterviewConfig, transcript []models.Turn, question, answer string, final bool) (*llm.EvaluationResult, error)
	finalReportFn     func(ctx context.Context, config models.InterviewConfig, transcript []models.Turn) (*models.ReportNarrative, error)
}

func (m *mockProvider) OpeningQuestion(ctx context.Context, config models.InterviewConfig) (string, error) {
	if m.openingQuestionFn == nil {
		return "Tell me about yourself.", nil
	}
	return m.openingQuestionFn(ctx, config)
}

func (m *mockProvider) EvaluateAnswer(ctx context.Context, config models.InterviewConfig, transcript []models.Turn, question, answer string, final bool) (*llm.EvaluationResult, error) {
	if m.evaluateAnswerFn == nil {
		result := &llm.EvaluationResult{
			Evaluation: models.Evaluation{
				Score:        7,
				Feedback:     "Solid answer.",
				Strengths:    []string{"clear"},
				Improvements: []string{"more detail"},
			},
		}
		if !final {
			result.NextQuestion = fmt.Sprintf("Question %d?", len(transcript)+2)
		}
		return result, nil
	}
	return m.evaluateAnswerFn(ctx, config, transcript, question, answer, final)
}

func (m *mockProvider) FinalReport(ctx context.Context, config models.InterviewConfig, transcript []models.Turn) (*models.ReportNarrative, error) {
	if m.finalReportFn == nil {
		return &models.ReportNarrative{
			Summary:         "A competent candidate.",
			Strengths:       []string{"communication"},
			Weaknesses:      []string{"depth"},
			Recommendations: []string{"practice system design"},
		}, nil
	}
	return m.finalReportFn(ctx, config, transcript)
}

func (m *mockProvider) GetProviderName() string {
	return "mock"
}

type recordingSink struct {
	mu         sync.Mutex
	answers    []models.Turn
	interviews []*models.Report
	notified   chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{notified: make(chan struct{}, 16)}
}

func (s *recordingSink) RecordAnswer(sessionID string, turn models.Turn) error {
	s.mu.Lock()
	s.answers = append(s.answers, turn)
	s.mu.Unlock()
	s.notified <- struct{}{}
	return nil
}

func (s *recordingSink) RecordInterview(report *models.Report) error {
	s.mu.Lock()
	s.interviews = append(s.interviews, report)
	s.mu.Unlock()
	s.notified <- struct{}{}
	return nil
}

func (s *recordingSink) waitNotifications(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.notified:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for sink notification %d of %d", i+1, n)
		}
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Provider:           "gemini",
		TotalQuestions:     5,
		EvaluatorTimeout:   5 * time.Second,
		StrongYesThreshold: 7.0,
		YesThreshold:       6.0,
		MaybeThreshold:     5.0,
		SessionRetention:   15 * time.Minute,
		StorageMode:        config.StorageModeOff,
	}
}

func newTestRegistry(t *testing.T, provider llm.Provider, sink Sink) *Registry {
	t.Helper()
	r := NewRegistry(provider, sink, zap.NewNop(), testConfig())
	t.Cleanup(r.Close)
	return r
}

func interviewConfig(totalQuestions int) models.InterviewConfig {
	return models.InterviewConfig{
		JobDescription:  "Backend engineer building Go services.",
		CandidateName:   "Dana",
		ExperienceYears: 3,
		Difficulty:      "intermediate",
		TotalQuestions:  totalQuestions,
	}
}

func TestStartCreatesActiveSession(t *testing.T) {
	r := newTestRegistry(t, &mockProvider{}, nil)

	result, err := r.Start(context.Background(), interviewConfig(2))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if result.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if result.Question == "" {
		t.Fatal("expected an opening question")
	}
	if result.TotalQuestions != 2 {
		t.Fatalf("expected 2 total questions, got %d", result.TotalQuestions)
	}
	if r.SessionCount() != 1 {
		t.Fatalf("expected 1 registered session, got %d", r.SessionCount())
	}
}

func TestStartAppliesDefaults(t *testing.T) {
	r := newTestRegistry(t, &mockProvider{}, nil)

	result, err := r.Start(context.Background(), models.InterviewConfig{
		JobDescription: "Backend engineer.",
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if result.TotalQuestions != 5 {
		t.Fatalf("expected server default of 5 questions, got %d", result.TotalQuestions)
	}

	s, ok := r.lookup(result.SessionID)
	if !ok {
		t.Fatal("session not registered")
	}
	if s.config.CandidateName != models.DefaultCandidateName {
		t.Fatalf("expected default candidate name, got %q", s.config.CandidateName)
	}
	if s.config.Difficulty != models.DefaultDifficulty {
		t.Fatalf("expected default difficulty, got %q", s.config.Difficulty)
	}
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	r := newTestRegistry(t, &mockProvider{}, nil)

	cases := []struct {
		name string
		cfg  models.InterviewConfig
	}{
		{"empty job description", models.InterviewConfig{JobDescription: "   "}},
		{"negative experience", models.InterviewConfig{JobDescription: "jd", ExperienceYears: -1}},
		{"unknown difficulty", models.InterviewConfig{JobDescription: "jd", Difficulty: "impossible"}},
		{"negative question count", models.InterviewConfig{JobDescription: "jd", TotalQuestions: -3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := r.Start(context.Background(), tc.cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if r.SessionCount() != 0 {
		t.Fatalf("invalid configs must not register sessions, got %d", r.SessionCount())
	}
}

func TestStartFailsAtomicallyWhenEvaluatorDown(t *testing.T) {
	provider := &mockProvider{
		openingQuestionFn: func(ctx context.Context, config models.InterviewConfig) (string, error) {
			return "", &llm.ProviderError{Provider: "mock", Code: llm.ErrCodeUnavailable, Message: "down"}
		},
	}
	r := newTestRegistry(t, provider, nil)

	if _, err := r.Start(context.Background(), interviewConfig(2)); err == nil {
		t.Fatal("expected error when evaluator is down")
	}
	if r.SessionCount() != 0 {
		t.Fatalf("no partial session may be registered, got %d", r.SessionCount())
	}
}

func TestSubmitAnswerUnknownSession(t *testing.T) {
	r := newTestRegistry(t, &mockProvider{}, nil)

	if _, err := r.SubmitAnswer(context.Background(), "no-such-id", "answer"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if r.SessionCount() != 0 {
		t.Fatal("submit on an unknown id must not create a session")
	}
}

func TestSubmitAnswerEmpty(t *testing.T) {
	r := newTestRegistry(t, &mockProvider{}, nil)
	result, err := r.Start(context.Background(), interviewConfig(2))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if _, err := r.SubmitAnswer(context.Background(), result.SessionID, "   \n\t "); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("expected ErrEmptyAnswer, got %v", err)
	}
}

func TestFullInterviewFlow(t *testing.T) {
	scores := []float64{8, 6}
	call := 0
	provider := &mockProvider{
		evaluateAnswerFn: func(ctx context.Context, config models.InterviewConfig, transcript []models.Turn, question, answer string, final bool) (*llm.EvaluationResult, error) {
			result := &llm.EvaluationResult{
				Evaluation: models.Evaluation{Score: scores[call], Feedback: "ok"},
			}
			call++
			if !final {
				result.NextQuestion = "And a follow-up?"
			}
			return result, nil
		},
	}
	r := newTestRegistry(t, provider, nil)

	start, err := r.Start(context.Background(), interviewConfig(2))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	first, err := r.SubmitAnswer(context.Background(), start.SessionID, "answer A")
	if err != nil {
		t.Fatalf("first SubmitAnswer returned error: %v", err)
	}
	if first.Completed {
		t.Fatal("interview must not complete after the first of two answers")
	}
	if first.QuestionNumber != 2 {
		t.Fatalf("expected question_number 2, got %d", first.QuestionNumber)
	}
	if first.Progress != 0.5 {
		t.Fatalf("expected progress 0.5, got %v", first.Progress)
	}
	if first.NextQuestion != "And a follow-up?" {
		t.Fatalf("unexpected next question %q", first.NextQuestion)
	}

	second, err := r.SubmitAnswer(context.Background(), start.SessionID, "answer B")
	if err != nil {
		t.Fatalf("second SubmitAnswer returned error: %v", err)
	}
	if !second.Completed {
		t.Fatal("interview must complete after the final answer")
	}
	if second.Report == nil {
		t.Fatal("expected a report on completion")
	}
	if len(second.Report.IndividualScores) != 2 {
		t.Fatalf("expected 2 individual scores, got %d", len(second.Report.IndividualScores))
	}
	if math.Abs(second.Report.AverageScore-7.0) > 1e-9 {
		t.Fatalf("expected average 7.0, got %v", second.Report.AverageScore)
	}
	if second.Report.HireRecommendation != RecommendStrongYes {
		t.Fatalf("expected %q, got %q", RecommendStrongYes, second.Report.HireRecommendation)
	}
	if second.Report.Narrative.Summary == "" {
		t.Fatal("expected a narrative summary")
	}

	s, _ := r.lookup(start.SessionID)
	if s.turnIndex != 3 {
		t.Fatalf("expected final turn index 3, got %d", s.turnIndex)
	}
	if s.status != models.StatusCompleted {
		t.Fatalf("expected completed status, got %q", s.status)
	}
}

func TestAverageScoreMatchesTranscript(t *testing.T) {
	scores := []float64{8, 7, 9, 7, 8}
	call := 0
	provider := &mockProvider{
		evaluateAnswerFn: func(ctx context.Context, config models.InterviewConfig, transcript []models.Turn, question, answer string, final bool) (*llm.EvaluationResult, error) {
			result := &llm.EvaluationResult{Evaluation: models.Evaluation{Score: scores[call]}}
			call++
			if !final {
				result.NextQuestion = "Next?"
			}
			return result, nil
		},
	}
	r := newTestRegistry(t, provider, nil)

	start, err := r.Start(context.Background(), interviewConfig(5))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	var last *TurnResult
	for i := 0; i < 5; i++ {
		last, err = r.SubmitAnswer(context.Background(), start.SessionID, fmt.Sprintf("answer %d", i+1))
		if err != nil {
			t.Fatalf("SubmitAnswer %d returned error: %v", i+1, err)
		}
	}

	if !last.Completed {
		t.Fatal("expected completion after five answers")
	}
	if math.Abs(last.Report.AverageScore-7.8) > 1e-9 {
		t.Fatalf("expected average 7.8, got %v", last.Report.AverageScore)
	}
	if last.Report.HireRecommendation != RecommendStrongYes {
		t.Fatalf("expected strong yes at 7.8, got %q", last.Report.HireRecommendation)
	}
}

func TestEvaluatorFailureLeavesSessionUnchanged(t *testing.T) {
	fail := true
	provider := &mockProvider{
		evaluateAnswerFn: func(ctx context.Context, config models.InterviewConfig, transcript []models.Turn, question, answer string, final bool) (*llm.EvaluationResult, error) {
			if fail {
				return nil, &llm.ProviderError{Provider: "mock", Code: llm.ErrCodeUnavailable, Message: "down"}
			}
			result := &llm.EvaluationResult{Evaluation: models.Evaluation{Score: 8}}
			if !final {
				result.NextQuestion = "Next?"
			}
			return result, nil
		},
	}
	r := newTestRegistry(t, provider, nil)

	start, err := r.Start(context.Background(), interviewConfig(2))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	s, _ := r.lookup(start.SessionID)

	if _, err := r.SubmitAnswer(context.Background(), start.SessionID, "answer"); err == nil {
		t.Fatal("expected evaluator failure to surface")
	}
	if len(s.transcript) != 0 || s.turnIndex != 1 {
		t.Fatalf("failed submit must not mutate session: transcript=%d turnIndex=%d", len(s.transcript), s.turnIndex)
	}

	// the same answer can be resubmitted once the evaluator recovers
	fail = false
	if _, err := r.SubmitAnswer(context.Background(), start.SessionID, "answer"); err != nil {
		t.Fatalf("retry after recovery failed: %v", err)
	}
	if len(s.transcript) != 1 || s.turnIndex != 2 {
		t.Fatalf("retry must append exactly one turn: transcript=%d turnIndex=%d", len(s.transcript), s.turnIndex)
	}
}

func TestFinalReportFailureLeavesSessionUnchanged(t *testing.T) {
	fail := true
	provider := &mockProvider{
		finalReportFn: func(ctx context.Context, config models.InterviewConfig, transcript []models.Turn) (*models.ReportNarrative, error) {
			if fail {
				return nil, &llm.ProviderError{Provider: "mock", Code: llm.ErrCodeUnavailable, Message: "down"}
			}
			return &models.ReportNarrative{Summary: "fine"}, nil
		},
	}
	r := newTestRegistry(t, provider, nil)

	start, err := r.Start(context.Background(), interviewConfig(1))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	s, _ := r.lookup(start.SessionID)

	if _, err := r.SubmitAnswer(context.Background(), start.SessionID, "only answer"); err == nil {
		t.Fatal("expected report failure to surface")
	}
	if len(s.transcript) != 0 || s.status != models.StatusActive {
		t.Fatalf("failed final submit must not mutate session: transcript=%d status=%s", len(s.transcript), s.status)
	}

	fail = false
	result, err := r.SubmitAnswer(context.Background(), start.SessionID, "only answer")
	if err != nil {
		t.Fatalf("retry after recovery failed: %v", err)
	}
	if !result.Completed {
		t.Fatal("expected completion on retry")
	}
}

func TestSubmitAfterCompletion(t *testing.T) {
	r := newTestRegistry(t, &mockProvider{}, nil)

	start, err := r.Start(context.Background(), interviewConfig(1))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := r.SubmitAnswer(context.Background(), start.SessionID, "answer"); err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	if _, err := r.SubmitAnswer(context.Background(), start.SessionID, "another"); !errors.Is(err, ErrSessionAlreadyCompleted) {
		t.Fatalf("expected ErrSessionAlreadyCompleted, got %v", err)
	}
}

func TestGetReport(t *testing.T) {
	r := newTestRegistry(t, &mockProvider{}, nil)

	start, err := r.Start(context.Background(), interviewConfig(1))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if _, err := r.GetReport(start.SessionID); !errors.Is(err, ErrSessionNotCompleted) {
		t.Fatalf("expected ErrSessionNotCompleted while active, got %v", err)
	}
	if _, err := r.GetReport("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	if _, err := r.SubmitAnswer(context.Background(), start.SessionID, "answer"); err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	first, err := r.GetReport(start.SessionID)
	if err != nil {
		t.Fatalf("GetReport returned error: %v", err)
	}
	second, err := r.GetReport(start.SessionID)
	if err != nil {
		t.Fatalf("repeated GetReport returned error: %v", err)
	}
	if first != second {
		t.Fatal("repeated GetReport must return the same report value")
	}
}

func TestEndInterviewEarlyAndIdempotent(t *testing.T) {
	r := newTestRegistry(t, &mockProvider{}, nil)

	start, err := r.Start(context.Background(), interviewConfig(5))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := r.SubmitAnswer(context.Background(), start.SessionID, "answer"); err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	report, err := r.EndInterview(context.Background(), start.SessionID)
	if err != nil {
		t.Fatalf("EndInterview returned error: %v", err)
	}
	if len(report.Transcript) != 1 {
		t.Fatalf("expected 1 answered turn in early report, got %d", len(report.Transcript))
	}

	again, err := r.EndInterview(context.Background(), start.SessionID)
	if err != nil {
		t.Fatalf("repeated EndInterview returned error: %v", err)
	}
	if again != report {
		t.Fatal("EndInterview must be idempotent once completed")
	}
}

func TestConcurrentSubmitsOnlyOneAppends(t *testing.T) {
	release := make(chan struct{})
	provider := &mockProvider{
		evaluateAnswerFn: func(ctx context.Context, config models.InterviewConfig, transcript []models.Turn, question, answer string, final bool) (*llm.EvaluationResult, error) {
			<-release
			result := &llm.EvaluationResult{Evaluation: models.Evaluation{Score: 7}}
			if !final {
				result.NextQuestion = "Next?"
			}
			return result, nil
		},
	}
	r := newTestRegistry(t, provider, nil)

	start, err := r.Start(context.Background(), interviewConfig(3))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := r.SubmitAnswer(context.Background(), start.SessionID, "racing answer")
			errs <- err
		}()
	}

	// let the loser hit the busy session before releasing the winner
	time.Sleep(50 * time.Millisecond)
	close(release)

	var busy, succeeded int
	for i := 0; i < 2; i++ {
		switch err := <-errs; {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSessionBusy):
			busy++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 || busy != 1 {
		t.Fatalf("expected exactly one winner and one busy, got %d winners, %d busy", succeeded, busy)
	}

	s, _ := r.lookup(start.SessionID)
	if len(s.transcript) != 1 {
		t.Fatalf("expected exactly one appended turn, got %d", len(s.transcript))
	}
}

func TestSinkReceivesSnapshots(t *testing.T) {
	sink := newRecordingSink()
	r := newTestRegistry(t, &mockProvider{}, sink)

	start, err := r.Start(context.Background(), interviewConfig(1))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := r.SubmitAnswer(context.Background(), start.SessionID, "answer"); err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	// one answer record plus one interview record
	sink.waitNotifications(t, 2)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.answers) != 1 {
		t.Fatalf("expected 1 answer record, got %d", len(sink.answers))
	}
	if len(sink.interviews) != 1 {
		t.Fatalf("expected 1 interview record, got %d", len(sink.interviews))
	}
	if sink.interviews[0].SessionID != start.SessionID {
		t.Fatalf("report carries wrong session id: %s", sink.interviews[0].SessionID)
	}
}

func TestEvictExpiredRemovesOnlyRetiredSessions(t *testing.T) {
	cfg := testConfig()
	cfg.SessionRetention = time.Millisecond
	r := NewRegistry(&mockProvider{}, nil, zap.NewNop(), cfg)
	t.Cleanup(r.Close)

	completed, err := r.Start(context.Background(), interviewConfig(1))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := r.SubmitAnswer(context.Background(), completed.SessionID, "answer"); err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	active, err := r.Start(context.Background(), interviewConfig(1))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	r.evictExpired()

	if _, ok := r.lookup(completed.SessionID); ok {
		t.Fatal("completed session past retention must be evicted")
	}
	if _, ok := r.lookup(active.SessionID); !ok {
		t.Fatal("active session must never be evicted")
	}
}
