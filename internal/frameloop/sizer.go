package frameloop

import "math"

const (
	// MinFrames is the capacity floor. A ping-pong needs at least two
	// distinct frames to reverse meaningfully.
	MinFrames = 2

	// bytesPerPixel assumes RGBA storage for the memory estimate.
	bytesPerPixel = 4

	// frameOverheadBytes is a fixed per-handle overhead estimate on top
	// of the pixel data.
	frameOverheadBytes = 512
)

// BytesPerFrame estimates the memory cost of one buffered frame at the
// given dimensions.
func BytesPerFrame(width, height int) int64 {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return int64(width)*int64(height)*bytesPerPixel + frameOverheadBytes
}

// MaxFrames derives the store capacity from the configured duration,
// the host frame rate, the capture stride and the current frame
// dimensions. A ceiling of zero disables the memory guard.
//
// The memory guard silently degrades capacity rather than failing: the
// contract is "never exceed the ceiling", not "always honor the
// requested duration".
func MaxFrames(durationSeconds int, hostFPS float64, stride, width, height int, ceilingBytes int64) int {
	if stride < 1 {
		stride = 1
	}
	if hostFPS <= 0 {
		hostFPS = 60
	}

	effectiveRate := hostFPS / float64(stride)
	maxFrames := int(math.Round(effectiveRate * float64(durationSeconds)))
	if maxFrames < MinFrames {
		maxFrames = MinFrames
	}

	if ceilingBytes > 0 {
		perFrame := BytesPerFrame(width, height)
		if int64(maxFrames)*perFrame > ceilingBytes {
			maxFrames = int(ceilingBytes / perFrame)
			if maxFrames < MinFrames {
				maxFrames = MinFrames
			}
		}
	}
	return maxFrames
}
