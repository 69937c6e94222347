package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Detection metrics
	DetectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restoran_pos_intent_detections_total",
		Help: "Total intent detections by confidence band",
	}, []string{"band"})

	DetectionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "restoran_pos_intent_detection_seconds",
		Help:    "Intent detection latency, embedding calls included",
		Buckets: prometheus.DefBuckets,
	})

	DetectionConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "restoran_pos_intent_confidence",
		Help:    "Distribution of fused detection confidence",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	ReviewEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restoran_pos_review_entries_total",
		Help: "Low confidence detections sent to review",
	}, []string{"status"})

	// Trigger store metrics
	TriggerMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restoran_pos_trigger_mutations_total",
		Help: "Trigger store mutations by operation and outcome",
	}, []string{"op", "outcome"})

	TriggerPhrases = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "restoran_pos_trigger_phrases",
		Help: "Trigger phrases in the loaded trigger set",
	})

	// Embedding metrics
	EmbeddingCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restoran_pos_embedding_cache_total",
		Help: "Embedding cache lookups by result",
	}, []string{"result"})

	EmbeddingBreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restoran_pos_embedding_breaker_transitions_total",
		Help: "Embedding circuit breaker state changes",
	}, []string{"from", "to"})

	EmbeddingFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restoran_pos_embedding_fallbacks_total",
		Help: "Embedding calls degraded to an empty vector",
	})

	// Queue metrics
	UtterancesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restoran_pos_utterances_total",
		Help: "Utterances consumed from the queue by outcome",
	}, []string{"outcome"})
)
