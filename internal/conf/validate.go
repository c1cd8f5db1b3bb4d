package conf

import (
	"fmt"
	"strconv"
)

// ValidateSettings normalizes and validates the loaded settings.
// Out-of-range loop values are clamped rather than rejected; only
// settings with no sensible recovery produce an error.
func ValidateSettings(settings *Settings) error {
	clampLoopSettings(&settings.Loop)

	switch settings.Source.Type {
	case "testpattern", "images":
	default:
		return fmt.Errorf("invalid source type: %q, must be testpattern or images", settings.Source.Type)
	}
	if settings.Source.Type == "images" && settings.Source.Path == "" {
		return fmt.Errorf("source type images requires source.path")
	}
	if settings.Source.FPS <= 0 {
		settings.Source.FPS = 30
	}
	if settings.Source.Width <= 0 {
		settings.Source.Width = 1280
	}
	if settings.Source.Height <= 0 {
		settings.Source.Height = 720
	}

	if settings.WebServer.Enabled {
		if _, err := strconv.Atoi(settings.WebServer.Port); err != nil {
			return fmt.Errorf("invalid webserver port: %q", settings.WebServer.Port)
		}
	}
	if settings.WebServer.Quality < 1 || settings.WebServer.Quality > 100 {
		settings.WebServer.Quality = 80
	}

	return nil
}

// clampLoopSettings pulls the loop settings into their valid ranges.
func clampLoopSettings(loop *LoopSettings) {
	if loop.Duration < 10 {
		loop.Duration = 10
	}
	if loop.Duration > 60 {
		loop.Duration = 60
	}
	if loop.Speed < 0.1 {
		loop.Speed = 0.1
	}
	if loop.Speed > 2.0 {
		loop.Speed = 2.0
	}
	if loop.Stride < 1 {
		loop.Stride = 1
	}
	if loop.MemoryMax < 0 {
		loop.MemoryMax = 0
	}
}
