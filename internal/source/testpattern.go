package source

import (
	"image"
	"image/color"
	"sync"

	"github.com/tphakala/frameloop-go/internal/frameloop"
)

// TestPattern generates a synthetic moving pattern: a color gradient
// with a sweeping vertical bar whose position encodes the sample count.
// The motion makes loop playback, direction reversals and speed changes
// visible in the preview without a camera.
type TestPattern struct {
	width  int
	height int

	mu      sync.Mutex
	tick    uint64
	current *image.RGBA
}

// NewTestPattern creates a test pattern source with the given native
// frame size.
func NewTestPattern(width, height int) *TestPattern {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	return &TestPattern{width: width, height: height}
}

// Name implements Source.
func (t *TestPattern) Name() string { return "testpattern" }

// Dimensions implements Source.
func (t *TestPattern) Dimensions() (width, height int) {
	return t.width, t.height
}

// Current implements Source.
func (t *TestPattern) Current() *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Sample implements frameloop.Sampler. It always succeeds for valid
// dimensions.
func (t *TestPattern) Sample(width, height int) (frameloop.Frame, bool) {
	if width <= 0 || height <= 0 {
		return nil, false
	}

	t.mu.Lock()
	tick := t.tick
	t.tick++
	t.mu.Unlock()

	img := renderPattern(width, height, tick)

	t.mu.Lock()
	t.current = img
	t.mu.Unlock()

	return NewImageFrame(img), true
}

// renderPattern draws the gradient background and the sweeping bar for
// the given tick.
func renderPattern(width, height int, tick uint64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	barWidth := width / 16
	if barWidth < 1 {
		barWidth = 1
	}
	barX := int(tick*4) % width

	for y := 0; y < height; y++ {
		g := uint8(y * 255 / height)
		for x := 0; x < width; x++ {
			r := uint8(x * 255 / width)
			c := color.RGBA{R: r, G: g, B: uint8(255 - int(r)/2), A: 255}
			if dx := x - barX; dx >= 0 && dx < barWidth {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
