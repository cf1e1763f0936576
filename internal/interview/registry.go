package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"voicehire/backend/internal/config"
	"voicehire/backend/internal/llm"
	"voicehire/backend/internal/metrics"
	"voicehire/backend/internal/models"
)

// Sink receives immutable snapshots of interview data for out-of-band
// storage. Calls are fire-and-forget from the registry's point of view:
// failures are logged and never affect session state.
type Sink interface {
	RecordAnswer(sessionID string, turn models.Turn) error
	RecordInterview(report *models.Report) error
}

// Registry owns every live Session: it generates ids, serializes per-session
// operations, and evicts completed sessions after a retention window.
type Registry struct {
	provider llm.Provider
	sink     Sink
	logger   *zap.Logger

	policy                Policy
	defaultTotalQuestions int
	evaluatorTimeout      time.Duration
	retention             time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session

	stopJanitor chan struct{}
}

// StartResult is returned when a session is created.
type StartResult struct {
	SessionID      string
	Question       string
	TotalQuestions int
}

func NewRegistry(provider llm.Provider, sink Sink, logger *zap.Logger, cfg *config.Config) *Registry {
	r := &Registry{
		provider: provider,
		sink:     sink,
		logger:   logger,
		policy: Policy{
			StrongYes: cfg.StrongYesThreshold,
			Yes:       cfg.YesThreshold,
			Maybe:     cfg.MaybeThreshold,
		},
		defaultTotalQuestions: cfg.TotalQuestions,
		evaluatorTimeout:      cfg.EvaluatorTimeout,
		retention:             cfg.SessionRetention,
		sessions:              make(map[string]*Session),
		stopJanitor:           make(chan struct{}),
	}

	go r.janitorLoop()

	return r
}

// Start validates the config, fetches the opening question, and registers a
// new session. If the evaluator call fails no session is created.
func (r *Registry) Start(ctx context.Context, cfg models.InterviewConfig) (*StartResult, error) {
	cfg, err := r.normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	tctx, cancel := context.WithTimeout(ctx, r.evaluatorTimeout)
	defer cancel()

	question, err := r.provider.OpeningQuestion(tctx, cfg)
	if err != nil {
		metrics.EvaluatorFailures.Inc()
		return nil, fmt.Errorf("opening question: %w", err)
	}

	sessionID := uuid.New().String()
	r.mu.Lock()
	r.sessions[sessionID] = newSession(sessionID, cfg, question)
	r.mu.Unlock()

	metrics.SessionsStarted.Inc()
	metrics.ActiveSessions.Inc()

	r.logger.Info("interview session started",
		zap.String("session_id", sessionID),
		zap.String("candidate", cfg.CandidateName),
		zap.String("difficulty", cfg.Difficulty),
		zap.Int("total_questions", cfg.TotalQuestions))

	return &StartResult{
		SessionID:      sessionID,
		Question:       question,
		TotalQuestions: cfg.TotalQuestions,
	}, nil
}

// SubmitAnswer scores the pending question's answer and advances the session.
// The transcript only grows after every evaluator result needed for the turn
// has been obtained, so a failed call leaves the session unchanged and the
// caller can safely resubmit.
func (r *Registry) SubmitAnswer(ctx context.Context, sessionID, answer string) (*TurnResult, error) {
	s, ok := r.lookup(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	if !s.mu.TryLock() {
		return nil, ErrSessionBusy
	}
	defer s.mu.Unlock()

	if s.status == models.StatusCompleted {
		return nil, ErrSessionAlreadyCompleted
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, ErrEmptyAnswer
	}

	final := s.onFinalQuestion()

	tctx, cancel := context.WithTimeout(ctx, r.evaluatorTimeout)
	result, err := r.provider.EvaluateAnswer(tctx, s.config, s.snapshotTranscript(), s.pendingQuestion, answer, final)
	cancel()
	if err != nil {
		metrics.EvaluatorFailures.Inc()
		return nil, fmt.Errorf("evaluate answer: %w", err)
	}

	turn := models.Turn{
		QuestionNumber: s.turnIndex,
		Question:       s.pendingQuestion,
		Answer:         answer,
		Evaluation:     result.Evaluation,
		AnsweredAt:     time.Now(),
	}

	if !final {
		s.appendTurn(turn)
		s.pendingQuestion = result.NextQuestion
		metrics.AnswersScored.Inc()
		r.notifyAnswer(s, turn)

		return &TurnResult{
			Evaluation:     result.Evaluation,
			NextQuestion:   result.NextQuestion,
			QuestionNumber: s.turnIndex,
			TotalQuestions: s.config.TotalQuestions,
			Progress:       float64(len(s.transcript)) / float64(s.config.TotalQuestions),
		}, nil
	}

	// Final turn: fetch the narrative before committing anything, so that a
	// failed report call leaves the transcript untouched and the whole
	// submit can be retried.
	candidate := append(s.snapshotTranscript(), turn)

	rctx, cancel := context.WithTimeout(ctx, r.evaluatorTimeout)
	narrative, err := r.provider.FinalReport(rctx, s.config, candidate)
	cancel()
	if err != nil {
		metrics.EvaluatorFailures.Inc()
		return nil, fmt.Errorf("final report: %w", err)
	}

	s.appendTurn(turn)
	report := s.complete(*narrative, r.policy)

	metrics.AnswersScored.Inc()
	metrics.SessionsCompleted.Inc()
	metrics.ActiveSessions.Dec()

	r.notifyAnswer(s, turn)
	r.notifyCompleted(report)

	r.logger.Info("interview session completed",
		zap.String("session_id", s.id),
		zap.Float64("average_score", report.AverageScore),
		zap.String("hire_recommendation", report.HireRecommendation))

	return &TurnResult{
		Completed:      true,
		Evaluation:     result.Evaluation,
		QuestionNumber: s.turnIndex,
		TotalQuestions: s.config.TotalQuestions,
		Progress:       1.0,
		Report:         report,
	}, nil
}

// EndInterview completes a session early (or returns the existing report if
// it already completed, making the operation idempotent).
func (r *Registry) EndInterview(ctx context.Context, sessionID string) (*models.Report, error) {
	s, ok := r.lookup(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	if !s.mu.TryLock() {
		return nil, ErrSessionBusy
	}
	defer s.mu.Unlock()

	if s.status == models.StatusCompleted {
		return s.report, nil
	}

	tctx, cancel := context.WithTimeout(ctx, r.evaluatorTimeout)
	narrative, err := r.provider.FinalReport(tctx, s.config, s.snapshotTranscript())
	cancel()
	if err != nil {
		metrics.EvaluatorFailures.Inc()
		return nil, fmt.Errorf("final report: %w", err)
	}

	report := s.complete(*narrative, r.policy)

	metrics.SessionsCompleted.Inc()
	metrics.ActiveSessions.Dec()

	r.notifyCompleted(report)

	r.logger.Info("interview session ended early",
		zap.String("session_id", s.id),
		zap.Int("answered", len(report.Transcript)))

	return report, nil
}

// GetReport returns the frozen report of a completed session. Repeated calls
// return the same value.
func (r *Registry) GetReport(sessionID string) (*models.Report, error) {
	s, ok := r.lookup(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	if !s.mu.TryLock() {
		return nil, ErrSessionBusy
	}
	defer s.mu.Unlock()

	if s.status != models.StatusCompleted {
		return nil, ErrSessionNotCompleted
	}

	return s.report, nil
}

// Remove drops a session regardless of state.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// SessionCount returns the number of registered sessions (active and retained).
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) lookup(sessionID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

// Close stops the eviction janitor.
func (r *Registry) Close() {
	close(r.stopJanitor)
}

func (r *Registry) normalizeConfig(cfg models.InterviewConfig) (models.InterviewConfig, error) {
	if strings.TrimSpace(cfg.JobDescription) == "" {
		return cfg, fmt.Errorf("%w: job description is empty", ErrInvalidConfig)
	}
	if cfg.ExperienceYears < 0 {
		return cfg, fmt.Errorf("%w: experience years is negative", ErrInvalidConfig)
	}

	if cfg.CandidateName == "" {
		cfg.CandidateName = models.DefaultCandidateName
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = models.DefaultDifficulty
	}
	cfg.Difficulty = strings.ToLower(strings.TrimSpace(cfg.Difficulty))
	if !models.ValidDifficulties[cfg.Difficulty] {
		return cfg, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfig, cfg.Difficulty)
	}

	if cfg.TotalQuestions == 0 {
		cfg.TotalQuestions = r.defaultTotalQuestions
	}
	if cfg.TotalQuestions < 1 {
		return cfg, fmt.Errorf("%w: total questions must be at least 1", ErrInvalidConfig)
	}

	return cfg, nil
}

func (r *Registry) notifyAnswer(s *Session, turn models.Turn) {
	if r.sink == nil {
		return
	}
	sessionID := s.id
	go func() {
		if err := r.sink.RecordAnswer(sessionID, turn); err != nil {
			r.logger.Error("failed to record answer",
				zap.String("session_id", sessionID),
				zap.Int("question_number", turn.QuestionNumber),
				zap.Error(err))
		}
	}()
}

func (r *Registry) notifyCompleted(report *models.Report) {
	if r.sink == nil {
		return
	}
	go func() {
		if err := r.sink.RecordInterview(report); err != nil {
			r.logger.Error("failed to record interview",
				zap.String("session_id", report.SessionID),
				zap.Error(err))
		}
	}()
}

// janitorLoop periodically evicts completed sessions past their retention
// window.
func (r *Registry) janitorLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopJanitor:
			return
		case <-ticker.C:
			r.evictExpired()
		}
	}
}

func (r *Registry) evictExpired() {
	now := time.Now()

	r.mu.RLock()
	candidates := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		candidates = append(candidates, s)
	}
	r.mu.RUnlock()

	for _, s := range candidates {
		if !s.mu.TryLock() {
			continue
		}
		expired := s.status == models.StatusCompleted && now.Sub(s.endedAt) > r.retention
		s.mu.Unlock()

		if expired {
			r.Remove(s.id)
			r.logger.Info("evicted completed session", zap.String("session_id", s.id))
		}
	}
}
