package frameloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesPerFrame(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(1280*720*4+512), BytesPerFrame(1280, 720))
	assert.Equal(t, int64(512), BytesPerFrame(0, 0), "overhead only for zero dimensions")
	assert.Equal(t, int64(512), BytesPerFrame(-10, 5), "negative dimensions are treated as zero")
}

func TestMaxFrames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration int
		hostFPS  float64
		stride   int
		width    int
		height   int
		ceiling  int64
		want     int
	}{
		{
			name:     "duration times effective rate",
			duration: 10, hostFPS: 30, stride: 3,
			want: 100,
		},
		{
			name:     "stride one keeps full rate",
			duration: 30, hostFPS: 60, stride: 1,
			want: 1800,
		},
		{
			name:     "fractional rate rounds",
			duration: 10, hostFPS: 25, stride: 2,
			want: 125,
		},
		{
			name:     "zero fps falls back to 60",
			duration: 10, hostFPS: 0, stride: 1,
			want: 600,
		},
		{
			name:     "zero stride floors to one",
			duration: 10, hostFPS: 30, stride: 0,
			want: 300,
		},
		{
			name:     "capacity never below two",
			duration: 10, hostFPS: 30, stride: 1000,
			want: MinFrames,
		},
		{
			name:     "memory guard shrinks capacity",
			duration: 10, hostFPS: 60, stride: 1,
			width: 100, height: 100,
			// per frame: 100*100*4+512 = 40512 bytes
			ceiling: 40512 * 10,
			want:    10,
		},
		{
			name:     "memory guard floor is two frames",
			duration: 10, hostFPS: 60, stride: 1,
			width: 1920, height: 1080,
			ceiling: 1,
			want:    MinFrames,
		},
		{
			name:     "zero ceiling disables the guard",
			duration: 60, hostFPS: 60, stride: 1,
			width: 3840, height: 2160,
			ceiling: 0,
			want:    3600,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MaxFrames(tt.duration, tt.hostFPS, tt.stride, tt.width, tt.height, tt.ceiling)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigClamped(t *testing.T) {
	t.Parallel()

	cfg := Config{
		DurationSeconds:    500,
		Speed:              99.0,
		CaptureStride:      0,
		MemoryCeilingBytes: -1,
	}.clamped()

	assert.Equal(t, MaxDurationSeconds, cfg.DurationSeconds)
	assert.Equal(t, MaxSpeed, cfg.Speed)
	assert.Equal(t, 1, cfg.CaptureStride)
	assert.Equal(t, int64(0), cfg.MemoryCeilingBytes)

	cfg = Config{DurationSeconds: 1, Speed: 0.001, CaptureStride: 4}.clamped()
	assert.Equal(t, MinDurationSeconds, cfg.DurationSeconds)
	assert.Equal(t, MinSpeed, cfg.Speed)
	assert.Equal(t, 4, cfg.CaptureStride)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, cfg, cfg.clamped(), "defaults must already be in range")
	assert.Equal(t, 30, cfg.DurationSeconds)
	assert.True(t, cfg.PingPong)
	assert.InDelta(t, 1.0, cfg.Speed, 1e-9)
	assert.Equal(t, 2, cfg.CaptureStride)
}
