package source

import (
	"image"
	"image/draw"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tphakala/frameloop-go/internal/errors"
	"github.com/tphakala/frameloop-go/internal/frameloop"
)

// ImageDir cycles through the PNG and JPEG files of a directory in
// lexical order, serving each file as one frame. Decoded frames are
// cached after first use so steady-state sampling does not touch the
// filesystem.
type ImageDir struct {
	width  int
	height int
	files  []string

	mu          sync.Mutex
	index       int
	cache       []*image.RGBA
	cacheWidth  int
	cacheHeight int
	current     *image.RGBA
}

// NewImageDir creates an image sequence source from the given
// directory.
func NewImageDir(dir string, width, height int) (*ImageDir, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.New(err).
			Component("source").
			Category(errors.CategoryFileIO).
			Context("operation", "read_image_dir").
			Context("path", dir).
			Build()
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, errors.Newf("no PNG or JPEG files found in %s", dir).
			Component("source").
			Category(errors.CategoryFileIO).
			Context("path", dir).
			Build()
	}

	return &ImageDir{
		width:       width,
		height:      height,
		files:       files,
		cache:       make([]*image.RGBA, len(files)),
		cacheWidth:  width,
		cacheHeight: height,
	}, nil
}

// Name implements Source.
func (d *ImageDir) Name() string { return "images" }

// Dimensions implements Source.
func (d *ImageDir) Dimensions() (width, height int) {
	return d.width, d.height
}

// Current implements Source.
func (d *ImageDir) Current() *image.RGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Sample implements frameloop.Sampler. A file that fails to decode is
// skipped for this tick; the cursor still moves on so a single bad file
// cannot stall the sequence.
func (d *ImageDir) Sample(width, height int) (frameloop.Frame, bool) {
	if width <= 0 || height <= 0 {
		return nil, false
	}

	d.mu.Lock()
	// The cache holds bitmaps at one size only; a resize throws the
	// stale decodes away so every served frame matches the request.
	if width != d.cacheWidth || height != d.cacheHeight {
		d.cache = make([]*image.RGBA, len(d.files))
		d.cacheWidth = width
		d.cacheHeight = height
	}
	idx := d.index
	d.index = (d.index + 1) % len(d.files)
	cached := d.cache[idx]
	d.mu.Unlock()

	img := cached
	if img == nil {
		decoded, err := decodeRGBA(d.files[idx], width, height)
		if err != nil {
			return nil, false
		}
		img = decoded
		d.mu.Lock()
		// Skip the cache write if another resize landed while decoding.
		if width == d.cacheWidth && height == d.cacheHeight {
			d.cache[idx] = img
		}
		d.mu.Unlock()
	}

	d.mu.Lock()
	d.current = img
	d.mu.Unlock()

	return NewImageFrame(img), true
}

// decodeRGBA loads a file and converts it to an RGBA bitmap at the
// requested size using nearest-neighbor scaling.
func decodeRGBA(path string, width, height int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		rgba := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
		return rgba, nil
	}

	return scaleNearest(src, width, height), nil
}

// scaleNearest resamples src to the target size with nearest-neighbor
// interpolation. Quality is secondary here; the preview is diagnostic.
func scaleNearest(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	bounds := src.Bounds()
	sw, sh := bounds.Dx(), bounds.Dy()
	for y := 0; y < height; y++ {
		sy := bounds.Min.Y + y*sh/height
		for x := 0; x < width; x++ {
			sx := bounds.Min.X + x*sw/width
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}
