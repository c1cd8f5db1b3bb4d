// Package source provides upstream frame samplers for the frameloop
// engine: a synthetic test pattern and an image-sequence directory.
//
// Frame pixel data is shared by reference between the engine's store
// and the live preview. Immutability contract: an image is never
// modified after Sample returns it.
package source

import (
	"image"

	"github.com/tphakala/frameloop-go/internal/conf"
	"github.com/tphakala/frameloop-go/internal/errors"
	"github.com/tphakala/frameloop-go/internal/frameloop"
)

// Source produces frames for the engine and exposes the live upstream
// image for pass-through rendering.
type Source interface {
	frameloop.Sampler

	// Current returns the most recently produced live image, or nil
	// before the first sample. Read-only by contract.
	Current() *image.RGBA

	// Dimensions returns the native frame size of the source.
	Dimensions() (width, height int)

	// Name identifies the source type in logs and status.
	Name() string
}

// New creates the source selected by the settings.
func New(settings *conf.SourceSettings) (Source, error) {
	switch settings.Type {
	case "testpattern":
		return NewTestPattern(settings.Width, settings.Height), nil
	case "images":
		return NewImageDir(settings.Path, settings.Width, settings.Height)
	default:
		return nil, errors.Newf("unknown source type: %s", settings.Type).
			Component("source").
			Category(errors.CategoryConfiguration).
			Context("source_type", settings.Type).
			Build()
	}
}

// ImageFrame is a frame handle backed by an RGBA bitmap.
type ImageFrame struct {
	img *image.RGBA
}

// NewImageFrame wraps an image in a frame handle.
func NewImageFrame(img *image.RGBA) *ImageFrame {
	return &ImageFrame{img: img}
}

// Image returns the bitmap behind the handle, or nil after Close.
func (f *ImageFrame) Image() *image.RGBA { return f.img }

// Close releases the handle. The bitmap itself is reclaimed by the
// garbage collector once the preview no longer references it.
func (f *ImageFrame) Close() { f.img = nil }
