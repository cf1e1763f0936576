package interview

import (
	"sync"
	"time"

	"voicehire/backend/internal/models"
)

// Session is one interview's mutable state. It is owned exclusively by the
// Registry; all access goes through its mutex, and operations for the same
// session never interleave.
type Session struct {
	id     string
	config models.InterviewConfig

	// turnIndex is the 1-based number of the question currently awaiting an
	// answer. Invariant while active: len(transcript) == turnIndex-1.
	turnIndex       int
	pendingQuestion string
	transcript      []models.Turn

	status    string
	startedAt time.Time
	endedAt   time.Time
	report    *models.Report

	mu sync.Mutex
}

func newSession(id string, config models.InterviewConfig, firstQuestion string) *Session {
	return &Session{
		id:              id,
		config:          config,
		turnIndex:       1,
		pendingQuestion: firstQuestion,
		status:          models.StatusActive,
		startedAt:       time.Now(),
	}
}

// TurnResult is what submitting an answer yields: the evaluation of that
// answer plus either the next question or, on the final turn, the report.
type TurnResult struct {
	Completed      bool
	Evaluation     models.Evaluation
	NextQuestion   string
	QuestionNumber int
	TotalQuestions int
	Progress       float64
	Report         *models.Report
}

// onFinalQuestion reports whether the pending question is the last one.
// Caller holds the session mutex.
func (s *Session) onFinalQuestion() bool {
	return s.turnIndex >= s.config.TotalQuestions
}

// appendTurn commits an evaluated answer. Caller holds the session mutex and
// must have obtained every evaluator result needed for this turn first, so a
// failed operation never leaves a partial transcript.
func (s *Session) appendTurn(turn models.Turn) {
	s.transcript = append(s.transcript, turn)
	s.turnIndex++
}

// complete transitions the session to its terminal state and freezes the
// report. At most one caller ever reaches this for a given session.
func (s *Session) complete(narrative models.ReportNarrative, policy Policy) *models.Report {
	s.status = models.StatusCompleted
	s.endedAt = time.Now()

	scores := make([]float64, 0, len(s.transcript))
	sum := 0.0
	for _, turn := range s.transcript {
		scores = append(scores, turn.Evaluation.Score)
		sum += turn.Evaluation.Score
	}

	average := 0.0
	if len(scores) > 0 {
		average = sum / float64(len(scores))
	}

	transcript := make([]models.Turn, len(s.transcript))
	copy(transcript, s.transcript)

	s.report = &models.Report{
		SessionID:          s.id,
		CandidateName:      s.config.CandidateName,
		JobDescription:     s.config.JobDescription,
		ExperienceYears:    s.config.ExperienceYears,
		Difficulty:         s.config.Difficulty,
		TotalQuestions:     s.config.TotalQuestions,
		Transcript:         transcript,
		IndividualScores:   scores,
		AverageScore:       average,
		HireRecommendation: policy.Recommend(average),
		Narrative:          narrative,
		StartedAt:          s.startedAt,
		EndedAt:            s.endedAt,
	}
	return s.report
}

// snapshotTranscript returns a copy safe to hand to the evaluator or the
// persistence sink. Caller holds the session mutex.
func (s *Session) snapshotTranscript() []models.Turn {
	snapshot := make([]models.Turn, len(s.transcript))
	copy(snapshot, s.transcript)
	return snapshot
}
