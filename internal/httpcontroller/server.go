// Package httpcontroller serves the host-side control surface for the
// frameloop engine: a JSON API for status and configuration, an MJPEG
// preview stream and the Prometheus metrics endpoint.
package httpcontroller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tphakala/frameloop-go/internal/conf"
	"github.com/tphakala/frameloop-go/internal/frameloop"
	"github.com/tphakala/frameloop-go/internal/observability"
	"github.com/tphakala/frameloop-go/internal/preview"
)

// Server encapsulates the Echo server and its collaborators.
type Server struct {
	Echo     *echo.Echo
	Settings *conf.Settings

	engine  *frameloop.Engine
	preview *preview.Broadcaster
	metrics *observability.Metrics
	log     *slog.Logger
}

// New initializes a new HTTP server for the given engine and preview
// broadcaster. Metrics may be nil.
func New(settings *conf.Settings, engine *frameloop.Engine, broadcaster *preview.Broadcaster, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Echo:     echo.New(),
		Settings: settings,
		engine:   engine,
		preview:  broadcaster,
		metrics:  metrics,
		log:      logger.With("service", "httpcontroller"),
	}

	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(s.requestMetrics)
	s.initRoutes()

	return s
}

// Start runs the HTTP server. Errors other than a clean shutdown are
// sent to errChan.
func (s *Server) Start(errChan chan<- error) {
	go func() {
		s.log.Info("control server starting", "port", s.Settings.WebServer.Port)
		if err := s.Echo.Start(":" + s.Settings.WebServer.Port); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("control server stopping")
	return s.Echo.Shutdown(ctx)
}

// initRoutes registers all endpoints.
func (s *Server) initRoutes() {
	api := s.Echo.Group("/api/v1")
	api.GET("/status", s.handleStatus)
	api.POST("/toggle", s.handleToggle)
	api.POST("/clear", s.handleClear)
	api.POST("/hide", s.handleHide)
	api.GET("/config", s.handleGetConfig)
	api.PATCH("/config", s.handlePatchConfig)

	s.Echo.GET("/preview", s.handlePreview)
	if s.metrics != nil {
		s.Echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}
}

// requestMetrics records per-request counters and durations.
func (s *Server) requestMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if s.metrics != nil {
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			s.metrics.HTTP.RecordRequest(c.Request().Method, c.Path(), status, time.Since(start).Seconds())
		}
		return err
	}
}
