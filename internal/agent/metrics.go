package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coach",
		Subsystem: "agent",
		Name:      "generations_total",
		Help:      "Generation requests by mode and status",
	}, []string{"mode", "status"})

	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "coach",
		Subsystem: "agent",
		Name:      "generation_duration_seconds",
		Help:      "End-to-end blocking generation time",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})
)
