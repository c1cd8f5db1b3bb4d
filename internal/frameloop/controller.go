package frameloop

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tphakala/frameloop-go/internal/observability/metrics"
)

// Mode is the engine's operating state.
type Mode int

const (
	// Capturing samples the upstream image into the store each stride.
	Capturing Mode = iota
	// Playing advances the cursor and draws buffered frames.
	Playing
)

// String returns a human readable mode name.
func (m Mode) String() string {
	if m == Playing {
		return "playing"
	}
	return "capturing"
}

// captureLogInterval throttles the buffer occupancy log to every Nth
// captured frame.
const captureLogInterval = 30

// Status is a point-in-time snapshot of the engine for host-side
// panels and the control API.
type Status struct {
	ID             string `json:"id"`
	Mode           string `json:"mode"`
	Looping        bool   `json:"looping"`
	Size           int    `json:"size"`
	Capacity       int    `json:"capacity"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	CursorIndex    int    `json:"cursor_index"`
	Direction      string `json:"direction"`
	Reversals      uint64 `json:"reversals"`
	Captures       uint64 `json:"captures"`
	Evictions      uint64 `json:"evictions"`
	SampleFailures uint64 `json:"sample_failures"`
	Config         Config `json:"config"`
}

// Engine orchestrates capture and playback over a bounded frame store.
// All methods are safe for concurrent use: store, cursor and config
// are guarded by a single mutex held per logical operation, and the
// Sampler and Renderer collaborators are always invoked outside that
// mutex so slow upstream or GPU work cannot block the timing path.
type Engine struct {
	id       string
	sampler  Sampler
	renderer Renderer
	log      *slog.Logger

	mu      sync.Mutex
	cfg     Config
	hostFPS float64
	store   *Store
	cursor  Cursor
	width   int
	height  int
	mode    Mode
	closed  bool

	strideCount int

	// instance-scoped diagnostic counters
	captures       uint64
	evictions      uint64
	sampleFailures uint64

	metrics *metrics.FrameLoopMetrics
}

// New creates an engine in capture mode with an empty store sized for
// the given config and host frame rate. Dimensions start at zero;
// capture is a no-op until SetDimensions reports a valid upstream size.
func New(cfg Config, hostFPS float64, sampler Sampler, renderer Renderer) (*Engine, error) {
	if sampler == nil {
		return nil, ErrNilSampler
	}
	if renderer == nil {
		return nil, ErrNilRenderer
	}

	cfg = cfg.clamped()
	e := &Engine{
		id:       uuid.New().String(),
		sampler:  sampler,
		renderer: renderer,
		cfg:      cfg,
		hostFPS:  hostFPS,
	}
	e.log = slog.Default().With("service", "frameloop", "engine_id", e.id)
	e.store = NewStore(MaxFrames(cfg.DurationSeconds, hostFPS, cfg.CaptureStride, 0, 0, cfg.MemoryCeilingBytes))

	e.log.Info("engine created",
		"capacity", e.store.Capacity(),
		"host_fps", hostFPS,
		"duration", cfg.DurationSeconds,
		"ping_pong", cfg.PingPong)
	return e, nil
}

// ID returns the engine instance identifier used in logs and status.
func (e *Engine) ID() string { return e.id }

// SetLogger replaces the engine's logger. Pass nil to restore the
// default.
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	e.mu.Lock()
	e.log = logger.With("service", "frameloop", "engine_id", e.id)
	e.mu.Unlock()
}

// SetMetrics attaches Prometheus metrics recording. Pass nil to detach.
func (e *Engine) SetMetrics(m *metrics.FrameLoopMetrics) {
	e.mu.Lock()
	e.metrics = m
	if m != nil {
		m.UpdateBufferState(e.store.Len(), e.store.Capacity())
		m.UpdateMode(e.mode == Playing)
	}
	e.mu.Unlock()
}

// Advance is the clock input, called once per host frame with the
// wall-clock delta since the last call. In playback mode it converts
// elapsed time into cursor steps; in capture mode it is a no-op.
func (e *Engine) Advance(elapsedSeconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.mode != Playing {
		return
	}

	size := e.store.Len()
	before := e.cursor.Reversals
	steps := e.cursor.Advance(elapsedSeconds, size, e.playbackFPS(size), e.cfg.PingPong)
	if e.metrics != nil {
		if steps > 0 {
			e.metrics.RecordPlaybackSteps(steps)
		}
		if flips := reversalDelta(before, e.cursor.Reversals); flips > 0 {
			e.metrics.RecordReversals(flips)
		}
	}
}

// RenderTick is the render/sample input, called once per host frame.
// In capture mode it samples the upstream image at the configured
// stride and always passes the live image through; in playback mode it
// draws the frame under the cursor, falling back to pass-through when
// no valid frame exists.
func (e *Engine) RenderTick() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	if e.mode == Playing {
		// Index and size are validated in the same critical section so a
		// just-evicted slot can never be referenced.
		frame, ok := e.store.At(e.cursor.Index)
		width, height := e.width, e.height
		e.mu.Unlock()

		if ok {
			e.renderer.Draw(frame, width, height)
		} else {
			e.renderer.Passthrough()
		}
		return
	}

	// Capture mode. Zero dimensions mean the upstream is not ready and
	// the tick is a capture no-op.
	width, height := e.width, e.height
	sample := false
	if width > 0 && height > 0 {
		e.strideCount++
		if e.strideCount >= e.cfg.CaptureStride {
			e.strideCount = 0
			sample = true
		}
	}
	e.mu.Unlock()

	if sample {
		frame, ok := e.sampler.Sample(width, height)
		e.ingest(frame, ok, width, height)
	}
	e.renderer.Passthrough()
}

// ingest pushes a sampled frame under the lock, handling eviction and
// the throttled occupancy log. width and height are the dimensions the
// frame was sampled at; a frame whose geometry no longer matches the
// engine's is dropped, so a resize racing the unlocked Sample call can
// never mix resolutions in the store.
func (e *Engine) ingest(frame Frame, ok bool, width, height int) {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()
		if ok && frame != nil {
			frame.Close()
		}
		return
	}

	if ok && frame != nil && (width != e.width || height != e.height) {
		e.log.Debug("dropping frame sampled at stale dimensions",
			"sampled_width", width, "sampled_height", height,
			"width", e.width, "height", e.height)
		e.mu.Unlock()
		frame.Close()
		return
	}

	if !ok || frame == nil {
		e.sampleFailures++
		if e.metrics != nil {
			e.metrics.RecordSampleFailure()
		}
		e.mu.Unlock()
		return
	}

	evicted := e.store.Push(frame)
	e.captures++
	if evicted > 0 {
		e.evictions += uint64(evicted)
		// Keep the cursor pointing at the same content after the oldest
		// slot went away.
		if e.cursor.Index >= evicted {
			e.cursor.Index -= evicted
		} else {
			e.cursor.Index = 0
		}
	}

	if e.metrics != nil {
		e.metrics.RecordCapture()
		if evicted > 0 {
			e.metrics.RecordEvictions(evicted)
		}
		e.metrics.UpdateBufferState(e.store.Len(), e.store.Capacity())
	}

	if e.captures%captureLogInterval == 0 {
		e.log.Debug("buffer occupancy", "size", e.store.Len(), "capacity", e.store.Capacity())
	}
	e.mu.Unlock()
}

// Toggle switches between capture and playback. Entering playback
// requires a non-empty store; on an empty store the transition is
// refused, the mode stays at capturing and ok is false. Leaving
// playback always succeeds and preserves the captured content. The
// returned playing state is decided under the same lock as the
// transition, so callers report it without a second racy snapshot.
func (e *Engine) Toggle() (playing, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false, false
	}

	if e.mode == Playing {
		e.setMode(Capturing)
		return false, true
	}

	size := e.store.Len()
	if size == 0 {
		e.log.Warn("toggle refused, no frames buffered yet")
		return false, false
	}

	e.cursor.Reset(size)
	e.setMode(Playing)
	e.log.Info("playback started", "start_index", e.cursor.Index, "size", size)
	return true, true
}

// Clear releases every buffered frame and forces capture mode.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.clearLocked("clear requested")
}

// Hide handles the host's became-hidden notification: the buffer is
// cleared and the engine returns to capture mode.
func (e *Engine) Hide() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.clearLocked("source hidden")
}

// SetDimensions reports the current upstream image size. A change
// clears the store and forces capture mode: buffers never hold mixed
// resolutions. Capacity is recomputed since the memory guard depends
// on frame size.
func (e *Engine) SetDimensions(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || (width == e.width && height == e.height) {
		return
	}

	e.log.Info("dimensions changed",
		"old_width", e.width, "old_height", e.height,
		"new_width", width, "new_height", height)
	e.width = width
	e.height = height
	e.clearLocked("dimension change")
	e.resizeLocked()
}

// SetConfig applies new loop settings. Out-of-range values are clamped,
// capacity is recomputed and the store truncated synchronously when it
// shrank.
func (e *Engine) SetConfig(cfg Config) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.cfg = cfg.clamped()
	if e.cfg.CaptureStride < e.strideCount {
		e.strideCount = 0
	}
	e.resizeLocked()
	e.log.Info("config updated",
		"duration", e.cfg.DurationSeconds,
		"ping_pong", e.cfg.PingPong,
		"speed", e.cfg.Speed,
		"stride", e.cfg.CaptureStride,
		"capacity", e.store.Capacity())
}

// SetHostFPS updates the host frame rate used for capacity derivation.
func (e *Engine) SetHostFPS(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || fps <= 0 || fps == e.hostFPS {
		return
	}
	e.hostFPS = fps
	e.resizeLocked()
}

// Config returns a copy of the current loop settings.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Status returns a consistent snapshot of the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		ID:             e.id,
		Mode:           e.mode.String(),
		Looping:        e.mode == Playing,
		Size:           e.store.Len(),
		Capacity:       e.store.Capacity(),
		Width:          e.width,
		Height:         e.height,
		CursorIndex:    e.cursor.Index,
		Direction:      e.cursor.Direction.String(),
		Reversals:      e.cursor.Reversals,
		Captures:       e.captures,
		Evictions:      e.evictions,
		SampleFailures: e.sampleFailures,
		Config:         e.cfg,
	}
}

// Close tears the engine down: every buffered frame is released under
// the same lock used for normal mutation, and all later calls become
// no-ops. Close is idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.store.Clear()
	e.closed = true
	e.log.Info("engine closed",
		"captures", e.captures,
		"evictions", e.evictions,
		"reversals", e.cursor.Reversals)
}

// playbackFPS derives the playback frame rate from current store
// occupancy and the nominal duration, stretching captured content to
// fill the configured duration regardless of exact capture cadence.
func (e *Engine) playbackFPS(size int) float64 {
	if e.cfg.DurationSeconds <= 0 {
		return 0
	}
	return float64(size) / float64(e.cfg.DurationSeconds) * e.cfg.Speed
}

// clearLocked releases all frames, resets the cursor and forces
// capture mode. Caller holds e.mu.
func (e *Engine) clearLocked(reason string) {
	released := e.store.Len()
	e.store.Clear()
	e.cursor.Reset(0)
	e.strideCount = 0
	if e.mode != Capturing {
		e.setMode(Capturing)
	}
	if e.metrics != nil {
		e.metrics.UpdateBufferState(0, e.store.Capacity())
	}
	if released > 0 {
		e.log.Info("buffer cleared", "reason", reason, "released", released)
	}
}

// resizeLocked recomputes capacity from the current settings and
// truncates the store when it shrank. Caller holds e.mu.
func (e *Engine) resizeLocked() {
	capacity := MaxFrames(e.cfg.DurationSeconds, e.hostFPS, e.cfg.CaptureStride,
		e.width, e.height, e.cfg.MemoryCeilingBytes)
	evicted := e.store.SetCapacity(capacity)
	if evicted > 0 {
		e.evictions += uint64(evicted)
		if e.cursor.Index >= evicted {
			e.cursor.Index -= evicted
		} else {
			e.cursor.Index = 0
		}
		e.cursor.Clamp(e.store.Len())
	}
	if e.metrics != nil {
		if evicted > 0 {
			e.metrics.RecordEvictions(evicted)
		}
		e.metrics.UpdateBufferState(e.store.Len(), e.store.Capacity())
	}
}

// setMode transitions the mode and records it. Caller holds e.mu.
func (e *Engine) setMode(mode Mode) {
	if e.mode == mode {
		return
	}
	from := e.mode
	e.mode = mode
	if e.metrics != nil {
		e.metrics.RecordModeTransition(from.String(), mode.String())
		e.metrics.UpdateMode(mode == Playing)
	}
}

// reversalDelta accounts for the wraparound guard on the reversal
// counter.
func reversalDelta(before, after uint64) int {
	if after >= before {
		return int(after - before)
	}
	return int(after)
}
