package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the application.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	CommentTreeSize prometheus.Histogram
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide collectors, registering them on first use.
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "kvartal_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "route", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "kvartal_http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route", "status"},
			),
			CacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "kvartal_cache_hits_total",
				Help: "Local page cache hits",
			}),
			CacheMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "kvartal_cache_misses_total",
				Help: "Local page cache misses",
			}),
			CommentTreeSize: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "kvartal_comment_tree_size",
				Help:    "Comments per rendered post thread",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			}),
		}
	})
	return instance
}

func RecordCacheHit() {
	Get().CacheHitsTotal.Inc()
}

func RecordCacheMiss() {
	Get().CacheMissesTotal.Inc()
}

// ObserveThread records how many comments a rendered thread held.
func ObserveThread(comments int) {
	Get().CommentTreeSize.Observe(float64(comments))
}
