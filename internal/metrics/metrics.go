package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HttpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HttpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
	// EntitiesCreated counts rows inserted by the services, by entity kind.
	EntitiesCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meetup_entities_created_total",
		Help: "Total number of entities created",
	}, []string{"kind"})
	// IDCollisions counts random identifiers that were drawn but already taken at insert time.
	IDCollisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meetup_id_collisions_total",
		Help: "Inserts retried because the random id was taken",
	}, []string{"kind"})
	CascadeDeletes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meetup_cascade_deletes_total",
		Help: "Total number of cascade deletions, by root entity kind",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(HttpRequestsTotal, HttpRequestDuration, EntitiesCreated, IDCollisions, CascadeDeletes)
}

// unmatchedPath labels requests that hit no route.
const unmatchedPath = "unmatched"

// GinMiddleware records request count and latency per route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		labels := prometheus.Labels{"method": c.Request.Method, "path": path, "status": status}
		HttpRequestsTotal.With(labels).Inc()
		HttpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}
