package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the form
// pipeline. All methods are nil-safe so instrumentation stays optional in
// tests.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	submissionsStored prometheus.Counter
	documentsRendered prometheus.Counter
	emailsSent        prometheus.Counter
	emailsFailed      prometheus.Counter
}

// NewMetricsService registers the core collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	submissionsStored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "form_submissions_stored_total",
		Help: "Total confirmation form submissions persisted",
	})

	documentsRendered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "form_documents_rendered_total",
		Help: "Total confirmation documents rendered",
	})

	emailsSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "form_emails_sent_total",
		Help: "Total confirmation emails delivered to the relay",
	})

	emailsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "form_emails_failed_total",
		Help: "Total confirmation email sends that failed",
	})

	registry.MustRegister(requestDuration, requestTotal, submissionsStored, documentsRendered, emailsSent, emailsFailed)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		submissionsStored: submissionsStored,
		documentsRendered: documentsRendered,
		emailsSent:        emailsSent,
		emailsFailed:      emailsFailed,
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	if s == nil {
		return http.NotFoundHandler()
	}
	return s.handler
}

// ObserveHTTPRequest records one request sample.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if s == nil {
		return
	}
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// SubmissionStored counts one persisted submission.
func (s *MetricsService) SubmissionStored() {
	if s == nil {
		return
	}
	s.submissionsStored.Inc()
}

// DocumentRendered counts one rendered confirmation PDF.
func (s *MetricsService) DocumentRendered() {
	if s == nil {
		return
	}
	s.documentsRendered.Inc()
}

// EmailSent counts one successful relay handoff.
func (s *MetricsService) EmailSent() {
	if s == nil {
		return
	}
	s.emailsSent.Inc()
}

// EmailFailed counts one failed send.
func (s *MetricsService) EmailFailed() {
	if s == nil {
		return
	}
	s.emailsFailed.Inc()
}
