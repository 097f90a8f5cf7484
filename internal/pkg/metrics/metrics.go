// Package metrics holds the Prometheus collectors shared by the HTTP layer and the chain.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_chatbot_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status_code"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rag_chatbot_http_request_duration_seconds",
			Help:    "HTTP request duration distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	chainInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_chatbot_chain_invocations_total",
			Help: "Total number of RAG chain invocations by result",
		},
		[]string{"result"},
	)

	chainStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rag_chatbot_chain_stage_duration_seconds",
			Help:    "Duration of each RAG chain stage",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	chainReady = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rag_chatbot_chain_ready",
			Help: "1 when the RAG chain was composed at startup, 0 otherwise",
		},
	)

	embeddingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_chatbot_embedding_cache_lookups_total",
			Help: "Query embedding cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

func ObserveHTTPRequest(method, route, statusCode string, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, statusCode).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveChainInvocation records one chain run; result is "success" or an error class.
func ObserveChainInvocation(result string) {
	chainInvocations.WithLabelValues(result).Inc()
}

func ObserveChainStage(stage string, elapsed time.Duration) {
	chainStageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func SetChainReady(ready bool) {
	if ready {
		chainReady.Set(1)
		return
	}
	chainReady.Set(0)
}

func ObserveEmbeddingCache(hit bool) {
	if hit {
		embeddingCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	embeddingCacheLookups.WithLabelValues("miss").Inc()
}
