// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StagesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_stages_completed_total",
			Help: "Total number of stages completed, by stage id",
		},
		[]string{"stage"},
	)

	StageCompletionRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_stage_completions_rejected_total",
			Help: "Total number of rejected stage completions, by error code",
		},
		[]string{"stage", "error_code"},
	)

	AIArtifactsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_ai_artifacts_generated_total",
			Help: "Total number of AI artifacts generated, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "onboarding_ai_request_duration_seconds",
			Help: "Duration of Gemini API calls in seconds",
		},
		[]string{"kind"},
	)

	LogoGenerations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_logo_generations_total",
			Help: "Total number of logo preview generations requested",
		},
	)

	SessionResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_session_resets_total",
			Help: "Total number of explicit session resets",
		},
	)
)
