package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voicehire",
		Name:      "interview_sessions_started_total",
		Help:      "Total number of interview sessions started",
	})

	SessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voicehire",
		Name:      "interview_sessions_completed_total",
		Help:      "Total number of interview sessions completed",
	})

	AnswersScored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voicehire",
		Name:      "interview_answers_scored_total",
		Help:      "Total number of answers scored by the evaluator",
	})

	EvaluatorFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voicehire",
		Name:      "evaluator_failures_total",
		Help:      "Total number of failed evaluator calls",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "voicehire",
		Name:      "interview_active_sessions",
		Help:      "Current number of active interview sessions",
	})
)

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
