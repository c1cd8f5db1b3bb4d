package httpcontroller

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/frameloop-go/internal/frameloop"
)

// toggleResponse is the body returned by the toggle endpoint.
type toggleResponse struct {
	OK      bool   `json:"ok"`
	Playing bool   `json:"playing"`
	Reason  string `json:"reason,omitempty"`
}

// configPatch carries a partial configuration update. Nil fields are
// left unchanged.
type configPatch struct {
	DurationSeconds    *int     `json:"duration_seconds"`
	PingPong           *bool    `json:"ping_pong"`
	Speed              *float64 `json:"speed"`
	CaptureStride      *int     `json:"capture_stride"`
	MemoryCeilingBytes *int64   `json:"memory_ceiling_bytes"`

	// Patching dimensions simulates an upstream size change, which
	// clears the buffer.
	Width  *int `json:"width"`
	Height *int `json:"height"`
}

// handleStatus returns an engine snapshot.
func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.engine.Status())
}

// handleToggle flips play/pause. An empty buffer refuses the
// transition; that is an expected condition, not an HTTP error. The
// reported playing state comes from the toggle itself, not a separate
// snapshot another client could have changed in between.
func (s *Server) handleToggle(c echo.Context) error {
	playing, ok := s.engine.Toggle()
	resp := toggleResponse{
		OK:      ok,
		Playing: playing,
	}
	if !ok {
		resp.Reason = frameloop.ErrEmptyBuffer.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// handleClear releases all buffered frames and returns to capture.
func (s *Server) handleClear(c echo.Context) error {
	s.engine.Clear()
	return c.JSON(http.StatusOK, s.engine.Status())
}

// handleHide simulates the host's became-hidden notification.
func (s *Server) handleHide(c echo.Context) error {
	s.engine.Hide()
	return c.JSON(http.StatusOK, s.engine.Status())
}

// handleGetConfig returns the current loop configuration.
func (s *Server) handleGetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, s.engine.Config())
}

// handlePatchConfig applies a partial configuration update. Values are
// clamped by the engine; capacity recomputation and truncation happen
// synchronously before the response.
func (s *Server) handlePatchConfig(c echo.Context) error {
	var patch configPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid config patch: %v", err))
	}

	cfg := s.engine.Config()
	if patch.DurationSeconds != nil {
		cfg.DurationSeconds = *patch.DurationSeconds
	}
	if patch.PingPong != nil {
		cfg.PingPong = *patch.PingPong
	}
	if patch.Speed != nil {
		cfg.Speed = *patch.Speed
	}
	if patch.CaptureStride != nil {
		cfg.CaptureStride = *patch.CaptureStride
	}
	if patch.MemoryCeilingBytes != nil {
		cfg.MemoryCeilingBytes = *patch.MemoryCeilingBytes
	}

	s.engine.SetConfig(cfg)

	if patch.Width != nil || patch.Height != nil {
		status := s.engine.Status()
		width, height := status.Width, status.Height
		if patch.Width != nil {
			width = *patch.Width
		}
		if patch.Height != nil {
			height = *patch.Height
		}
		s.engine.SetDimensions(width, height)
	}

	return c.JSON(http.StatusOK, s.engine.Config())
}

// handlePreview streams MJPEG frames until the client disconnects.
func (s *Server) handlePreview(c echo.Context) error {
	frames, cancel := s.preview.Subscribe()
	defer cancel()

	if s.metrics != nil {
		s.metrics.HTTP.PreviewClientConnected(1)
		defer s.metrics.HTTP.PreviewClientConnected(-1)
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "multipart/x-mixed-replace; boundary=frame")
	resp.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintf(resp, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(frame)); err != nil {
				return nil
			}
			if _, err := resp.Write(frame); err != nil {
				return nil
			}
			if _, err := fmt.Fprint(resp, "\r\n"); err != nil {
				return nil
			}
			resp.Flush()
			if s.metrics != nil {
				s.metrics.HTTP.RecordPreviewFrame()
			}
		}
	}
}
