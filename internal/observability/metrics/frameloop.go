// Package metrics provides custom Prometheus metrics for the frameloop
// engine and its host surfaces.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// FrameLoopMetrics contains all Prometheus metrics related to the frame
// loop engine: capture throughput, eviction pressure, playback activity
// and current buffer state.
type FrameLoopMetrics struct {
	registry *prometheus.Registry

	framesCaptured  prometheus.Counter
	framesEvicted   prometheus.Counter
	sampleFailures  prometheus.Counter
	playbackSteps   prometheus.Counter
	reversals       prometheus.Counter
	modeTransitions *prometheus.CounterVec

	bufferSize        prometheus.Gauge
	bufferCapacity    prometheus.Gauge
	bufferUtilization prometheus.Gauge
	playingGauge      prometheus.Gauge

	tickDuration prometheus.Histogram
}

// NewFrameLoopMetrics creates and registers frame loop metrics on the
// given registry.
func NewFrameLoopMetrics(registry *prometheus.Registry) (*FrameLoopMetrics, error) {
	m := &FrameLoopMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize frameloop metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register frameloop metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for FrameLoopMetrics.
func (m *FrameLoopMetrics) initMetrics() error {
	m.framesCaptured = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frameloop_frames_captured_total",
		Help: "Total number of frames pushed into the buffer",
	})

	m.framesEvicted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frameloop_frames_evicted_total",
		Help: "Total number of oldest frames evicted from the buffer",
	})

	m.sampleFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frameloop_sample_failures_total",
		Help: "Total number of capture ticks where the upstream sampler produced no frame",
	})

	m.playbackSteps = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frameloop_playback_steps_total",
		Help: "Total number of whole-frame cursor steps applied during playback",
	})

	m.reversals = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frameloop_reversals_total",
		Help: "Total number of ping-pong direction flips at buffer boundaries",
	})

	m.modeTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "frameloop_mode_transitions_total",
		Help: "Total number of mode transitions",
	}, []string{"from", "to"})

	m.bufferSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "frameloop_buffer_size_frames",
		Help: "Current number of frames held in the buffer",
	})

	m.bufferCapacity = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "frameloop_buffer_capacity_frames",
		Help: "Current maximum number of frames the buffer will hold",
	})

	m.bufferUtilization = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "frameloop_buffer_utilization_ratio",
		Help: "Buffer occupancy as a fraction of capacity",
	})

	m.playingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "frameloop_playing",
		Help: "Whether the engine is in playback mode (1) or capture mode (0)",
	})

	m.tickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "frameloop_tick_duration_seconds",
		Help:    "Duration of one advance plus render cycle",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	})

	return nil
}

// RecordCapture increments the captured frame counter.
func (m *FrameLoopMetrics) RecordCapture() {
	m.framesCaptured.Inc()
}

// RecordEvictions adds to the evicted frame counter.
func (m *FrameLoopMetrics) RecordEvictions(n int) {
	m.framesEvicted.Add(float64(n))
}

// RecordSampleFailure increments the sampler failure counter.
func (m *FrameLoopMetrics) RecordSampleFailure() {
	m.sampleFailures.Inc()
}

// RecordPlaybackSteps adds to the cursor step counter.
func (m *FrameLoopMetrics) RecordPlaybackSteps(n int) {
	m.playbackSteps.Add(float64(n))
}

// RecordReversals adds to the direction flip counter.
func (m *FrameLoopMetrics) RecordReversals(n int) {
	m.reversals.Add(float64(n))
}

// RecordModeTransition counts a mode change.
func (m *FrameLoopMetrics) RecordModeTransition(from, to string) {
	m.modeTransitions.WithLabelValues(from, to).Inc()
}

// UpdateMode sets the playing gauge.
func (m *FrameLoopMetrics) UpdateMode(playing bool) {
	if playing {
		m.playingGauge.Set(1)
	} else {
		m.playingGauge.Set(0)
	}
}

// UpdateBufferState sets the buffer occupancy gauges.
func (m *FrameLoopMetrics) UpdateBufferState(size, capacity int) {
	m.bufferSize.Set(float64(size))
	m.bufferCapacity.Set(float64(capacity))
	if capacity > 0 {
		m.bufferUtilization.Set(float64(size) / float64(capacity))
	} else {
		m.bufferUtilization.Set(0)
	}
}

// RecordTickDuration observes the duration of one driver cycle.
func (m *FrameLoopMetrics) RecordTickDuration(seconds float64) {
	m.tickDuration.Observe(seconds)
}

// Describe implements the prometheus.Collector interface.
func (m *FrameLoopMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.framesCaptured.Describe(ch)
	m.framesEvicted.Describe(ch)
	m.sampleFailures.Describe(ch)
	m.playbackSteps.Describe(ch)
	m.reversals.Describe(ch)
	m.modeTransitions.Describe(ch)
	m.bufferSize.Describe(ch)
	m.bufferCapacity.Describe(ch)
	m.bufferUtilization.Describe(ch)
	m.playingGauge.Describe(ch)
	m.tickDuration.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *FrameLoopMetrics) Collect(ch chan<- prometheus.Metric) {
	m.framesCaptured.Collect(ch)
	m.framesEvicted.Collect(ch)
	m.sampleFailures.Collect(ch)
	m.playbackSteps.Collect(ch)
	m.reversals.Collect(ch)
	m.modeTransitions.Collect(ch)
	m.bufferSize.Collect(ch)
	m.bufferCapacity.Collect(ch)
	m.bufferUtilization.Collect(ch)
	m.playingGauge.Collect(ch)
	m.tickDuration.Collect(ch)
}
