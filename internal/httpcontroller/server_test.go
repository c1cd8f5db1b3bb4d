package httpcontroller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/frameloop-go/internal/conf"
	"github.com/tphakala/frameloop-go/internal/frameloop"
	"github.com/tphakala/frameloop-go/internal/observability"
	"github.com/tphakala/frameloop-go/internal/preview"
	"github.com/tphakala/frameloop-go/internal/source"
)

// newTestServer wires a real engine to a test pattern source and the
// preview broadcaster, the same shape as the realtime runner.
func newTestServer(t *testing.T) (*Server, *frameloop.Engine) {
	t.Helper()

	settings := &conf.Settings{
		WebServer: conf.WebServerSettings{Enabled: true, Port: "0", Quality: 80},
	}
	src := source.NewTestPattern(16, 16)
	broadcaster := preview.New(src.Current, 80, nil)

	metrics, err := observability.NewMetrics()
	require.NoError(t, err)

	cfg := frameloop.Config{DurationSeconds: 10, PingPong: true, Speed: 1.0, CaptureStride: 1}
	engine, err := frameloop.New(cfg, 60, src, broadcaster)
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	engine.SetMetrics(metrics.FrameLoop)
	engine.SetDimensions(16, 16)

	return New(settings, engine, broadcaster, metrics, nil), engine
}

func doRequest(s *Server, method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, http.NoBody)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	t.Parallel()

	s, engine := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status frameloop.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, engine.ID(), status.ID)
	assert.Equal(t, "capturing", status.Mode)
	assert.Equal(t, 16, status.Width)
}

func TestToggleRefusedOnEmptyBuffer(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/api/v1/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code, "a refused toggle is not an HTTP error")

	var resp toggleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.False(t, resp.Playing)
	assert.NotEmpty(t, resp.Reason)
}

func TestToggleStartsAndStopsPlayback(t *testing.T) {
	t.Parallel()

	s, engine := newTestServer(t)
	for i := 0; i < 3; i++ {
		engine.RenderTick()
	}

	rec := doRequest(s, http.MethodPost, "/api/v1/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp toggleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.True(t, resp.Playing)

	rec = doRequest(s, http.MethodPost, "/api/v1/toggle", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.False(t, resp.Playing)
}

func TestGetConfig(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/api/v1/config", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg frameloop.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, 10, cfg.DurationSeconds)
	assert.True(t, cfg.PingPong)
}

func TestPatchConfigPartialUpdate(t *testing.T) {
	t.Parallel()

	s, engine := newTestServer(t)
	rec := doRequest(s, http.MethodPatch, "/api/v1/config", `{"speed": 1.5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg frameloop.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.InDelta(t, 1.5, cfg.Speed, 1e-9)
	assert.Equal(t, 10, cfg.DurationSeconds, "untouched fields keep their values")
	assert.Equal(t, engine.Config(), cfg)
}

func TestPatchConfigClampsValues(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doRequest(s, http.MethodPatch, "/api/v1/config", `{"duration_seconds": 500, "speed": 99}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg frameloop.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, frameloop.MaxDurationSeconds, cfg.DurationSeconds)
	assert.InDelta(t, frameloop.MaxSpeed, cfg.Speed, 1e-9)
}

func TestPatchConfigDimensionChangeClearsBuffer(t *testing.T) {
	t.Parallel()

	s, engine := newTestServer(t)
	for i := 0; i < 3; i++ {
		engine.RenderTick()
	}
	require.Equal(t, 3, engine.Status().Size)

	rec := doRequest(s, http.MethodPatch, "/api/v1/config", `{"width": 32, "height": 32}`)
	require.Equal(t, http.StatusOK, rec.Code)

	status := engine.Status()
	assert.Equal(t, 32, status.Width)
	assert.Equal(t, 32, status.Height)
	assert.Equal(t, 0, status.Size, "dimension change drops the buffered frames")
}

func TestPatchConfigRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doRequest(s, http.MethodPatch, "/api/v1/config", `{"speed": "fast"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearEndpoint(t *testing.T) {
	t.Parallel()

	s, engine := newTestServer(t)
	for i := 0; i < 3; i++ {
		engine.RenderTick()
	}
	require.Equal(t, 3, engine.Status().Size)

	rec := doRequest(s, http.MethodPost, "/api/v1/clear", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status frameloop.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 0, status.Size)
	assert.Equal(t, "capturing", status.Mode)
}

func TestHideEndpoint(t *testing.T) {
	t.Parallel()

	s, engine := newTestServer(t)
	for i := 0; i < 3; i++ {
		engine.RenderTick()
	}
	_, ok := engine.Toggle()
	require.True(t, ok)

	rec := doRequest(s, http.MethodPost, "/api/v1/hide", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status frameloop.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 0, status.Size)
	assert.False(t, status.Looping)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	s, engine := newTestServer(t)
	engine.RenderTick()

	rec := doRequest(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "frameloop_frames_captured_total")
}

func TestPreviewStreamsMultipartJPEG(t *testing.T) {
	t.Parallel()

	s, engine := newTestServer(t)
	engine.RenderTick() // publishes one frame via passthrough

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/preview", http.NoBody).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		s.Echo.ServeHTTP(rec, req)
		close(done)
	}()

	// Give the handler time to deliver the replayed latest frame, then
	// disconnect the client.
	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("preview handler did not stop on client disconnect")
	}

	assert.Contains(t, rec.Header().Get("Content-Type"), "multipart/x-mixed-replace")
	assert.Contains(t, rec.Body.String(), "--frame")
	assert.Contains(t, rec.Body.String(), "Content-Type: image/jpeg")
}
