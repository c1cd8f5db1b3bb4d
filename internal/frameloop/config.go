package frameloop

// Configuration bounds. Values outside these ranges are clamped, never
// rejected.
const (
	MinDurationSeconds = 10
	MaxDurationSeconds = 60
	MinSpeed           = 0.1
	MaxSpeed           = 2.0
)

// Config holds the loop settings owned by the engine. Changing any
// value through SetConfig triggers capacity recomputation and possible
// store truncation, synchronously.
type Config struct {
	// DurationSeconds is the nominal length of captured content kept in
	// the buffer, 10-60 seconds.
	DurationSeconds int `json:"duration_seconds" yaml:"duration"`

	// PingPong selects forward/backward playback at buffer boundaries
	// instead of a forward-only wrap.
	PingPong bool `json:"ping_pong" yaml:"pingpong"`

	// Speed is the playback speed multiplier, 0.1-2.0.
	Speed float64 `json:"speed" yaml:"speed"`

	// CaptureStride samples every Nth render tick during capture,
	// trading temporal resolution for memory and CPU.
	CaptureStride int `json:"capture_stride" yaml:"stride"`

	// MemoryCeilingBytes bounds the estimated memory held by buffered
	// frames. Zero disables the guard.
	MemoryCeilingBytes int64 `json:"memory_ceiling_bytes" yaml:"memorymax"`
}

// DefaultConfig returns the stock loop settings: a 30 second ping-pong
// loop at normal speed, capturing every 2nd frame.
func DefaultConfig() Config {
	return Config{
		DurationSeconds: 30,
		PingPong:        true,
		Speed:           1.0,
		CaptureStride:   2,
	}
}

// clamped returns a copy with every field pulled into its valid range.
func (c Config) clamped() Config {
	if c.DurationSeconds < MinDurationSeconds {
		c.DurationSeconds = MinDurationSeconds
	}
	if c.DurationSeconds > MaxDurationSeconds {
		c.DurationSeconds = MaxDurationSeconds
	}
	if c.Speed < MinSpeed {
		c.Speed = MinSpeed
	}
	if c.Speed > MaxSpeed {
		c.Speed = MaxSpeed
	}
	if c.CaptureStride < 1 {
		c.CaptureStride = 1
	}
	if c.MemoryCeilingBytes < 0 {
		c.MemoryCeilingBytes = 0
	}
	return c
}
