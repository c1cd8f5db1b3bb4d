// Package realtime wires the frameloop engine to a frame source, the
// MJPEG preview and the control API, and drives it from a wall-clock
// ticker the way a host compositor would.
package realtime

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tphakala/frameloop-go/internal/conf"
	"github.com/tphakala/frameloop-go/internal/frameloop"
	"github.com/tphakala/frameloop-go/internal/httpcontroller"
	"github.com/tphakala/frameloop-go/internal/logging"
	"github.com/tphakala/frameloop-go/internal/observability"
	"github.com/tphakala/frameloop-go/internal/preview"
	"github.com/tphakala/frameloop-go/internal/source"
)

// shutdownTimeout bounds the graceful HTTP shutdown on exit.
const shutdownTimeout = 5 * time.Second

// Run starts the realtime loop and blocks until SIGINT or SIGTERM.
func Run(settings *conf.Settings) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunContext(ctx, settings)
}

// RunContext starts the realtime loop and blocks until the context is
// canceled or a fatal server error occurs.
func RunContext(ctx context.Context, settings *conf.Settings) error {
	logger := slog.Default()
	if settings.Main.Log.Enabled {
		fileLogger, closeLogger, err := logging.NewFileLogger(settings.Main.Log.Path, "frameloop", slog.LevelInfo)
		if err != nil {
			logger.Warn("file logger setup failed, logging to stdout only", "error", err)
		} else {
			logger = fileLogger
			defer closeLogger() //nolint:errcheck
		}
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	src, err := source.New(&settings.Source)
	if err != nil {
		return err
	}

	broadcaster := preview.New(src.Current, settings.WebServer.Quality, logger)

	cfg := frameloop.Config{
		DurationSeconds:    settings.Loop.Duration,
		PingPong:           settings.Loop.PingPong,
		Speed:              settings.Loop.Speed,
		CaptureStride:      settings.Loop.Stride,
		MemoryCeilingBytes: settings.Loop.MemoryMax,
	}
	if cfg.MemoryCeilingBytes == 0 {
		cfg.MemoryCeilingBytes = conf.DefaultMemoryCeiling()
		logger.Info("derived frame memory ceiling from system memory",
			"ceiling_bytes", cfg.MemoryCeilingBytes)
	}

	engine, err := frameloop.New(cfg, settings.Source.FPS, src, broadcaster)
	if err != nil {
		return err
	}
	defer engine.Close()
	engine.SetLogger(logger)
	engine.SetMetrics(metrics.FrameLoop)

	width, height := src.Dimensions()
	engine.SetDimensions(width, height)

	errChan := make(chan error, 1)
	var server *httpcontroller.Server
	if settings.WebServer.Enabled {
		server = httpcontroller.New(settings, engine, broadcaster, metrics, logger)
		server.Start(errChan)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("control server shutdown error", "error", err)
			}
		}()
	}

	logger.Info("realtime loop starting",
		"source", src.Name(),
		"fps", settings.Source.FPS,
		"width", width,
		"height", height,
		"engine_id", engine.ID())

	interval := time.Duration(float64(time.Second) / settings.Source.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			logger.Info("realtime loop stopping")
			return nil
		case err := <-errChan:
			return err
		case now := <-ticker.C:
			elapsed := now.Sub(last).Seconds()
			last = now

			tickStart := time.Now()
			engine.Advance(elapsed)
			engine.RenderTick()
			metrics.FrameLoop.RecordTickDuration(time.Since(tickStart).Seconds())
		}
	}
}
