// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recommendation sources.
const (
	SourceComputed = "computed"
	SourceCache    = "cache"
)

// Collector owns a private registry so independent instances never clash.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	recommendationsTotal   *prometheus.CounterVec
	recommendationDuration prometheus.Histogram
	recommendedRecipes     prometheus.Histogram
	cacheOperations        *prometheus.CounterVec
	rateLimited            *prometheus.CounterVec
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		recommendationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantrychef_recommendations_total",
				Help: "Recommendation lists served, by source",
			},
			[]string{"source"},
		),
		recommendationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pantrychef_recommendation_duration_seconds",
				Help:    "Time to compute a recommendation list",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
		),
		recommendedRecipes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pantrychef_recommended_recipes",
				Help:    "Number of eligible recipes per recommendation list",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		cacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantrychef_recommendation_cache_operations_total",
				Help: "Recommendation cache operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		rateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantrychef_rate_limited_requests_total",
				Help: "Requests rejected by a rate limiter",
			},
			[]string{"limiter"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) ObserveRequest(method, path string, status int, d time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveRecommendation records one served list. Duration is only observed
// for computed lists.
func (c *Collector) ObserveRecommendation(source string, results int, d time.Duration) {
	c.recommendationsTotal.WithLabelValues(source).Inc()
	c.recommendedRecipes.Observe(float64(results))
	if source == SourceComputed {
		c.recommendationDuration.Observe(d.Seconds())
	}
}

func (c *Collector) ObserveCache(operation, result string) {
	c.cacheOperations.WithLabelValues(operation, result).Inc()
}

func (c *Collector) ObserveRateLimited(limiter string) {
	c.rateLimited.WithLabelValues(limiter).Inc()
}
