package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	retrievalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coach",
		Subsystem: "pipeline",
		Name:      "retrievals_total",
		Help:      "Retrieval requests by status",
	}, []string{"status"})

	retrievalDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "coach",
		Subsystem: "pipeline",
		Name:      "retrieval_duration_seconds",
		Help:      "Time to embed a question and query the index",
		Buckets:   prometheus.DefBuckets,
	})

	indexedRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "coach",
		Subsystem: "pipeline",
		Name:      "indexed_records",
		Help:      "Records currently indexed in the vector store",
	})
)
