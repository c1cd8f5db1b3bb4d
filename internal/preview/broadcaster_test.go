package preview

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/frameloop-go/internal/source"
)

var jpegMagic = []byte{0xff, 0xd8}

func testImage(width, height int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func TestBroadcasterDrawDeliversJPEG(t *testing.T) {
	t.Parallel()

	b := New(nil, 80, nil)
	frames, cancel := b.Subscribe()
	defer cancel()

	b.Draw(source.NewImageFrame(testImage(8, 8)), 8, 8)

	data := <-frames
	require.True(t, bytes.HasPrefix(data, jpegMagic), "delivered frame is a JPEG")

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, uint64(1), b.FramesOut())
}

func TestBroadcasterSlowClientGetsLatest(t *testing.T) {
	t.Parallel()

	b := New(nil, 80, nil)
	frames, cancel := b.Subscribe()
	defer cancel()

	// Two publishes without a read: the pending frame is replaced, not
	// queued.
	b.Draw(source.NewImageFrame(testImage(4, 4)), 4, 4)
	b.Draw(source.NewImageFrame(testImage(16, 16)), 16, 16)

	data := <-frames
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx(), "slow client sees only the newest frame")

	select {
	case extra := <-frames:
		t.Fatalf("unexpected queued frame of %d bytes", len(extra))
	default:
	}
}

func TestBroadcasterSubscribeReplaysLatest(t *testing.T) {
	t.Parallel()

	b := New(nil, 80, nil)
	b.Draw(source.NewImageFrame(testImage(4, 4)), 4, 4)

	frames, cancel := b.Subscribe()
	defer cancel()

	data := <-frames
	assert.True(t, bytes.HasPrefix(data, jpegMagic), "late joiner receives the latest frame immediately")
}

func TestBroadcasterPassthroughUsesLiveImage(t *testing.T) {
	t.Parallel()

	live := testImage(12, 12)
	b := New(func() *image.RGBA { return live }, 80, nil)
	frames, cancel := b.Subscribe()
	defer cancel()

	b.Passthrough()

	data := <-frames
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())
}

func TestBroadcasterPassthroughWithoutLiveIsNoop(t *testing.T) {
	t.Parallel()

	b := New(nil, 80, nil)
	b.Passthrough()
	assert.Nil(t, b.Latest())

	b = New(func() *image.RGBA { return nil }, 80, nil)
	b.Passthrough()
	assert.Nil(t, b.Latest())
}

func TestBroadcasterIgnoresForeignFrames(t *testing.T) {
	t.Parallel()

	b := New(nil, 80, nil)
	b.Draw(opaqueFrame{}, 8, 8)
	assert.Nil(t, b.Latest(), "frames without a bitmap are skipped")
}

// opaqueFrame implements frameloop.Frame without exposing an image.
type opaqueFrame struct{}

func (opaqueFrame) Close() {}

func TestBroadcasterCancelClosesChannel(t *testing.T) {
	t.Parallel()

	b := New(nil, 80, nil)
	frames, cancel := b.Subscribe()
	cancel()
	cancel() // second cancel is harmless

	_, open := <-frames
	assert.False(t, open)

	// Publishing after the only client left does not panic.
	b.Draw(source.NewImageFrame(testImage(4, 4)), 4, 4)
}

func TestBroadcasterQualityFallback(t *testing.T) {
	t.Parallel()

	b := New(nil, 0, nil)
	assert.Equal(t, 80, b.quality)
	b = New(nil, 500, nil)
	assert.Equal(t, 80, b.quality)
	b = New(nil, 55, nil)
	assert.Equal(t, 55, b.quality)
}
