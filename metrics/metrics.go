// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scout_http_request_duration_seconds",
		Help:    "HTTP request latency by route, method and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	RequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scout_http_requests_in_flight",
		Help: "Requests currently being served.",
	})

	Signups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_signups_total",
		Help: "Completed registrations by role.",
	}, []string{"role"})

	SignInFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scout_signin_failures_total",
		Help: "Rejected sign-in attempts.",
	})

	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_uploads_total",
		Help: "Stored uploads by purpose (video, thumbnail, assessment, challenge).",
	}, []string{"purpose"})

	UploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scout_upload_bytes_total",
		Help: "Bytes written to blob storage.",
	})

	ModerationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_moderation_decisions_total",
		Help: "Admin review outcomes by subject (video, submission, assessment) and outcome.",
	}, []string{"subject", "outcome"})

	LevelAssignments = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scout_assigned_level",
		Help:    "Levels assigned by completed assessments.",
		Buckets: prometheus.LinearBuckets(1, 1, 10),
	})

	LevelUps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scout_level_ups_total",
		Help: "Players promoted by the level-up rule.",
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_cache_lookups_total",
		Help: "Redis cache lookups by cache and result (hit, miss).",
	}, []string{"cache", "result"})
)

// Middleware records latency and in-flight requests per route template.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := string([]byte(c.Method()))
		RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		route := c.Route().Path
		if route == "" || route == "/" {
			route = sanitizePath(string([]byte(c.Path())))
		}
		status := strconv.Itoa(c.Response().StatusCode())
		RequestDuration.WithLabelValues(route, method, status).Observe(time.Since(start).Seconds())
		RequestsInFlight.Dec()
		return err
	}
}

// Handler serves /metrics through the fasthttp adaptor.
func Handler() fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		h(c.Context())
		return nil
	}
}

// sanitizePath keeps label cardinality bounded for unmatched routes.
func sanitizePath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, "/")
}
