// Package preview renders engine output as an MJPEG stream for
// connected HTTP clients.
//
// The broadcaster follows a drop-frames-never-queue policy: each
// client holds a single-slot mailbox and a slow client simply misses
// frames instead of applying backpressure to the render path.
package preview

import (
	"bytes"
	"image"
	"image/jpeg"
	"log/slog"
	"sync"

	"github.com/tphakala/frameloop-go/internal/frameloop"
)

// imager is implemented by frame handles backed by an RGBA bitmap.
type imager interface {
	Image() *image.RGBA
}

// Broadcaster implements frameloop.Renderer by encoding drawn frames
// to JPEG and fanning them out to subscribed preview clients.
type Broadcaster struct {
	live    func() *image.RGBA
	quality int
	log     *slog.Logger

	mu        sync.Mutex
	clients   map[chan []byte]struct{}
	latest    []byte
	framesOut uint64
}

// New creates a broadcaster. live supplies the current upstream image
// for pass-through rendering; quality is the JPEG quality, 1-100.
func New(live func() *image.RGBA, quality int, logger *slog.Logger) *Broadcaster {
	if quality < 1 || quality > 100 {
		quality = 80
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		live:    live,
		quality: quality,
		log:     logger.With("service", "preview"),
		clients: make(map[chan []byte]struct{}),
	}
}

// Draw implements frameloop.Renderer. The frame is borrowed for the
// duration of the call only.
func (b *Broadcaster) Draw(frame frameloop.Frame, width, height int) {
	img, ok := frame.(imager)
	if !ok {
		return
	}
	if rgba := img.Image(); rgba != nil {
		b.publish(rgba)
	}
}

// Passthrough implements frameloop.Renderer by rendering the live
// upstream image.
func (b *Broadcaster) Passthrough() {
	if b.live == nil {
		return
	}
	if img := b.live(); img != nil {
		b.publish(img)
	}
}

// Subscribe registers a preview client. The returned channel carries
// encoded JPEG frames; cancel must be called when the client is done.
func (b *Broadcaster) Subscribe() (frames <-chan []byte, cancel func()) {
	ch := make(chan []byte, 1)

	b.mu.Lock()
	b.clients[ch] = struct{}{}
	if b.latest != nil {
		ch <- b.latest
	}
	b.mu.Unlock()

	cancel = func() {
		b.mu.Lock()
		if _, ok := b.clients[ch]; ok {
			delete(b.clients, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Latest returns the most recently encoded JPEG frame, or nil before
// the first frame.
func (b *Broadcaster) Latest() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest
}

// FramesOut returns the number of frames encoded so far.
func (b *Broadcaster) FramesOut() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.framesOut
}

// publish encodes one image and delivers it to all clients,
// overwriting each client's pending frame if it has not been consumed.
func (b *Broadcaster) publish(img *image.RGBA) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: b.quality}); err != nil {
		b.log.Warn("preview frame encode failed", "error", err)
		return
	}
	data := buf.Bytes()

	b.mu.Lock()
	b.latest = data
	b.framesOut++
	for ch := range b.clients {
		select {
		case ch <- data:
		default:
			// client still holds an unread frame, replace it
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- data:
			default:
			}
		}
	}
	b.mu.Unlock()
}
