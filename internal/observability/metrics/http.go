package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics contains Prometheus metrics for the control API.
type HTTPMetrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	previewClients   prometheus.Gauge
	previewFramesOut prometheus.Counter
}

// NewHTTPMetrics creates and registers HTTP metrics on the given
// registry.
func NewHTTPMetrics(registry *prometheus.Registry) (*HTTPMetrics, error) {
	m := &HTTPMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize HTTP metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register HTTP metrics: %w", err)
	}
	return m, nil
}

func (m *HTTPMetrics) initMetrics() error {
	m.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "frameloop_http_requests_total",
		Help: "Total number of control API requests",
	}, []string{"method", "path", "status"})

	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "frameloop_http_request_duration_seconds",
		Help:    "Duration of control API requests",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"method", "path"})

	m.previewClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "frameloop_preview_clients",
		Help: "Number of connected MJPEG preview clients",
	})

	m.previewFramesOut = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frameloop_preview_frames_sent_total",
		Help: "Total number of JPEG frames written to preview clients",
	})

	return nil
}

// RecordRequest counts one completed request and its duration.
func (m *HTTPMetrics) RecordRequest(method, path string, status int, seconds float64) {
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(seconds)
}

// PreviewClientConnected adjusts the connected preview client gauge.
func (m *HTTPMetrics) PreviewClientConnected(delta int) {
	m.previewClients.Add(float64(delta))
}

// RecordPreviewFrame counts one JPEG frame sent to a preview client.
func (m *HTTPMetrics) RecordPreviewFrame() {
	m.previewFramesOut.Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *HTTPMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.requestsTotal.Describe(ch)
	m.requestDuration.Describe(ch)
	m.previewClients.Describe(ch)
	m.previewFramesOut.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *HTTPMetrics) Collect(ch chan<- prometheus.Metric) {
	m.requestsTotal.Collect(ch)
	m.requestDuration.Collect(ch)
	m.previewClients.Collect(ch)
	m.previewFramesOut.Collect(ch)
}
