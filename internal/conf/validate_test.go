package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestSettings() *Settings {
	return &Settings{
		Loop: LoopSettings{
			Duration: 30,
			PingPong: true,
			Speed:    1.0,
			Stride:   2,
		},
		Source: SourceSettings{
			Type:   "testpattern",
			FPS:    30,
			Width:  1280,
			Height: 720,
		},
		WebServer: WebServerSettings{
			Enabled: true,
			Port:    "8080",
			Quality: 80,
		},
	}
}

func TestValidateSettingsAcceptsDefaults(t *testing.T) {
	t.Parallel()

	settings := validTestSettings()
	require.NoError(t, ValidateSettings(settings))
	assert.Equal(t, 30, settings.Loop.Duration)
	assert.InDelta(t, 1.0, settings.Loop.Speed, 1e-9)
}

func TestValidateSettingsClampsLoopValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Settings)
		check  func(*testing.T, *Settings)
	}{
		{
			name:   "duration below minimum",
			mutate: func(s *Settings) { s.Loop.Duration = 3 },
			check:  func(t *testing.T, s *Settings) { assert.Equal(t, 10, s.Loop.Duration) },
		},
		{
			name:   "duration above maximum",
			mutate: func(s *Settings) { s.Loop.Duration = 900 },
			check:  func(t *testing.T, s *Settings) { assert.Equal(t, 60, s.Loop.Duration) },
		},
		{
			name:   "speed below minimum",
			mutate: func(s *Settings) { s.Loop.Speed = 0 },
			check:  func(t *testing.T, s *Settings) { assert.InDelta(t, 0.1, s.Loop.Speed, 1e-9) },
		},
		{
			name:   "speed above maximum",
			mutate: func(s *Settings) { s.Loop.Speed = 50 },
			check:  func(t *testing.T, s *Settings) { assert.InDelta(t, 2.0, s.Loop.Speed, 1e-9) },
		},
		{
			name:   "stride floors to one",
			mutate: func(s *Settings) { s.Loop.Stride = 0 },
			check:  func(t *testing.T, s *Settings) { assert.Equal(t, 1, s.Loop.Stride) },
		},
		{
			name:   "negative memory ceiling resets to zero",
			mutate: func(s *Settings) { s.Loop.MemoryMax = -1024 },
			check:  func(t *testing.T, s *Settings) { assert.Equal(t, int64(0), s.Loop.MemoryMax) },
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			settings := validTestSettings()
			tt.mutate(settings)
			require.NoError(t, ValidateSettings(settings))
			tt.check(t, settings)
		})
	}
}

func TestValidateSettingsSourceFallbacks(t *testing.T) {
	t.Parallel()

	settings := validTestSettings()
	settings.Source.FPS = 0
	settings.Source.Width = -1
	settings.Source.Height = 0
	require.NoError(t, ValidateSettings(settings))
	assert.InDelta(t, 30.0, settings.Source.FPS, 1e-9)
	assert.Equal(t, 1280, settings.Source.Width)
	assert.Equal(t, 720, settings.Source.Height)
}

func TestValidateSettingsRejectsBadSource(t *testing.T) {
	t.Parallel()

	settings := validTestSettings()
	settings.Source.Type = "webcam"
	assert.Error(t, ValidateSettings(settings))

	settings = validTestSettings()
	settings.Source.Type = "images"
	settings.Source.Path = ""
	assert.Error(t, ValidateSettings(settings))

	settings = validTestSettings()
	settings.Source.Type = "images"
	settings.Source.Path = "/tmp/frames"
	assert.NoError(t, ValidateSettings(settings))
}

func TestValidateSettingsWebServer(t *testing.T) {
	t.Parallel()

	settings := validTestSettings()
	settings.WebServer.Port = "not-a-port"
	assert.Error(t, ValidateSettings(settings))

	// A disabled web server skips port validation.
	settings = validTestSettings()
	settings.WebServer.Enabled = false
	settings.WebServer.Port = "not-a-port"
	assert.NoError(t, ValidateSettings(settings))

	settings = validTestSettings()
	settings.WebServer.Quality = 0
	require.NoError(t, ValidateSettings(settings))
	assert.Equal(t, 80, settings.WebServer.Quality)

	settings = validTestSettings()
	settings.WebServer.Quality = 101
	require.NoError(t, ValidateSettings(settings))
	assert.Equal(t, 80, settings.WebServer.Quality)
}
