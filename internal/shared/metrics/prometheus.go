package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	incidentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "incidents_created_total",
			Help: "Total number of incidents reported",
		},
		[]string{"severity"},
	)

	incidentsStatusChanged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "incidents_status_changed_total",
			Help: "Total number of incident status changes",
		},
		[]string{"from_status", "to_status"},
	)

	incidentsByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "incidents_current",
			Help: "Incidents currently active or resolved, refreshed periodically",
		},
		[]string{"state"},
	)

	notificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notifications produced by the fanout",
		},
		[]string{"type", "target_role"},
	)

	reactorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_reactor_failures_total",
			Help: "Total number of failed event reactor invocations",
		},
		[]string{"reactor", "event_type"},
	)

	reportsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assignment_reports_submitted_total",
			Help: "Total number of responder assignment reports",
		},
	)

	responderStatusChanged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "responder_status_changed_total",
			Help: "Total number of responder status changes",
		},
		[]string{"to_status"},
	)

	authorizationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authorization_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"action", "role", "decision"},
	)

	// Database metrics
	dbConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of acquired database connections",
		},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware creates HTTP metrics middleware
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		path := routePattern(r)
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// routePattern labels requests by chi route template (/incidents/{incidentID})
// so IDs never become label values.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// --- Business metric helpers ---

// RecordIncidentCreated counts by severity only; incident type is free text
func RecordIncidentCreated(severity string) {
	incidentsCreated.WithLabelValues(severity).Inc()
}

func RecordIncidentStatusChange(fromStatus, toStatus string) {
	incidentsStatusChanged.WithLabelValues(fromStatus, toStatus).Inc()
}

// SetIncidentGauges publishes the latest active/resolved counts
func SetIncidentGauges(active, resolved int) {
	incidentsByState.WithLabelValues("active").Set(float64(active))
	incidentsByState.WithLabelValues("resolved").Set(float64(resolved))
}

func RecordNotificationCreated(notificationType, targetRole string) {
	notificationsCreated.WithLabelValues(notificationType, targetRole).Inc()
}

func RecordReactorFailure(reactor, eventType string) {
	reactorFailures.WithLabelValues(reactor, eventType).Inc()
}

func RecordReportSubmitted() {
	reportsSubmitted.Inc()
}

func RecordResponderStatusChange(toStatus string) {
	responderStatusChanged.WithLabelValues(toStatus).Inc()
}

// RecordAuthorizationDecision records an authorization decision
func RecordAuthorizationDecision(action, role string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	authorizationDecisions.WithLabelValues(action, role, decision).Inc()
}

// RecordDBConnections records acquired database connections
func RecordDBConnections(count int32) {
	dbConnectionsActive.Set(float64(count))
}

// RecordDBQuery records a database query duration
func RecordDBQuery(operation string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
