package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadsTotal       *prometheus.CounterVec
	uploadBytes        *prometheus.HistogramVec
	statusPollsTotal   *prometheus.CounterVec
	analysisFetchTotal *prometheus.CounterVec
	eligibilityTotal   *prometheus.CounterVec
	matchScore         *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zipduck",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zipduck",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "zipduck",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zipduck",
			Subsystem: "pdf",
			Name:      "uploads_total",
			Help:      "Total upload attempts by outcome.",
		},
		[]string{"service", "outcome"},
	)
	uploadBytes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zipduck",
			Subsystem: "pdf",
			Name:      "upload_bytes",
			Help:      "Distribution of accepted upload sizes in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64*1024, 2, 9),
		},
		[]string{"service"},
	)
	statusPollsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zipduck",
			Subsystem: "pdf",
			Name:      "status_polls_total",
			Help:      "Total status poll requests by reported status.",
		},
		[]string{"service", "status"},
	)
	analysisFetchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zipduck",
			Subsystem: "pdf",
			Name:      "analysis_fetch_total",
			Help:      "Total analysis fetch requests by outcome.",
		},
		[]string{"service", "outcome"},
	)
	eligibilityTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zipduck",
			Subsystem: "eligibility",
			Name:      "checks_total",
			Help:      "Total eligibility checks by verdict.",
		},
		[]string{"service", "verdict"},
	)
	matchScore := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zipduck",
			Subsystem: "eligibility",
			Name:      "match_score",
			Help:      "Distribution of eligibility match scores.",
			Buckets:   []float64{0, 10, 25, 40, 55, 70, 85, 95, 100},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadsTotal,
		uploadBytes,
		statusPollsTotal,
		analysisFetchTotal,
		eligibilityTotal,
		matchScore,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		uploadsTotal:       uploadsTotal,
		uploadBytes:        uploadBytes,
		statusPollsTotal:   statusPollsTotal,
		analysisFetchTotal: analysisFetchTotal,
		eligibilityTotal:   eligibilityTotal,
		matchScore:         matchScore,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses resource ids so label cardinality stays bounded.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/v1/pdf/") && strings.HasSuffix(path, "/status"):
		return "/api/v1/pdf/{pdf_id}/status"
	case strings.HasPrefix(path, "/api/v1/pdf/") && strings.HasSuffix(path, "/analysis"):
		return "/api/v1/pdf/{pdf_id}/analysis"
	case strings.HasPrefix(path, "/api/v1/pdf/"):
		return "/api/v1/pdf/{pdf_id}"
	case strings.HasPrefix(path, "/api/v1/eligibility/") && strings.HasSuffix(path, "/report"):
		return "/api/v1/eligibility/{subscription_id}/report"
	case strings.HasPrefix(path, "/api/v1/eligibility/"):
		return "/api/v1/eligibility/{subscription_id}"
	case strings.HasPrefix(path, "/api/v1/users/") && strings.HasSuffix(path, "/profile"):
		return "/api/v1/users/{user_id}/profile"
	case strings.HasPrefix(path, "/api/v1/users/"):
		return "/api/v1/users/{user_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordUpload(service, outcome string, size int64) {
	m.uploadsTotal.WithLabelValues(service, outcome).Inc()
	if outcome == "accepted" && size > 0 {
		m.uploadBytes.WithLabelValues(service).Observe(float64(size))
	}
}

func (m *HTTPServerMetrics) RecordStatusPoll(service, status string) {
	if status == "" {
		status = "unknown"
	}
	m.statusPollsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordAnalysisFetch(service, outcome string) {
	m.analysisFetchTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordEligibilityCheck(service string, eligible bool, score int) {
	verdict := "eligible"
	if !eligible {
		verdict = "ineligible"
	}
	m.eligibilityTotal.WithLabelValues(service, verdict).Inc()
	m.matchScore.WithLabelValues(service).Observe(float64(score))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
