package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Latency of a full recommendation call, cache lookups included
	RecommendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommend_latency_seconds",
		Help:    "Latency of restaurant recommendation requests",
		Buckets: prometheus.DefBuckets,
	})

	RecommendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommend_requests_total",
		Help: "Total recommendation requests by outcome",
	}, []string{"status"})

	RecommendCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommend_cache_hits_total",
		Help: "Recommendation requests served from the result cache",
	})

	// Feature dimensions that fell back to zero vectors
	EncoderFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "encoder_failures_total",
		Help: "Encoder failures by feature dimension",
	}, []string{"feature"})
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			RecommendLatency,
			RecommendRequests,
			RecommendCacheHits,
			EncoderFailures,
		)
	})
}
