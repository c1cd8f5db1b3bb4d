package frameloop

import "math"

// Direction is the playback travel direction through the store.
type Direction int8

const (
	// Forward moves from older frames toward newer frames.
	Forward Direction = 1
	// Backward moves from newer frames toward older frames.
	Backward Direction = -1
)

// String returns a human readable direction name.
func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

const (
	// accumSentinel bounds the fractional accumulator. A pathological
	// elapsed-time spike (system suspend, debugger pause) would
	// otherwise turn into millions of index steps; resetting to zero
	// skips the spike instead.
	accumSentinel = 1e6

	// reversalWrap bounds the diagnostic reversal counter.
	reversalWrap = uint64(1) << 62
)

// Cursor tracks the playback position through the store: the current
// index, travel direction and the fractional frame accumulator that
// carries sub-frame remainders between Advance calls so variable tick
// intervals and speed changes do not accumulate drift.
//
// Cursor is not safe for concurrent use; the Engine serializes access.
type Cursor struct {
	Index     int
	Direction Direction
	Reversals uint64

	accum float64
}

// Reset positions the cursor for a fresh playback run: at the newest
// frame, moving backward, with no fractional remainder. Starting with a
// reverse swing keeps the first played frames continuous with the most
// recently captured content.
func (c *Cursor) Reset(size int) {
	c.Index = 0
	if size > 0 {
		c.Index = size - 1
	}
	c.Direction = Backward
	c.accum = 0
}

// Advance converts elapsed wall-clock time into whole-frame index
// steps at the given playback rate, retaining the fractional remainder
// for the next call. It returns the number of steps applied.
//
// Stores with fewer than two frames cannot animate; elapsed time is
// still consumed but the index does not move.
func (c *Cursor) Advance(elapsedSeconds float64, size int, playbackFPS float64, pingPong bool) int {
	if elapsedSeconds > 0 && playbackFPS > 0 {
		c.accum += elapsedSeconds * playbackFPS
	}
	if c.accum > accumSentinel || math.IsNaN(c.accum) {
		c.accum = 0
		return 0
	}

	steps := int(c.accum)
	c.accum -= float64(steps)

	if size < 2 {
		return 0
	}
	for i := 0; i < steps; i++ {
		c.step(size, pingPong)
	}
	return steps
}

// step applies the boundary rule for one whole-frame advance. In
// ping-pong mode the direction flips at either end and the cursor moves
// one step off the edge in the new direction when there is room, so the
// endpoint frames are each visited exactly once per half-cycle. In
// forward-only mode the index wraps.
func (c *Cursor) step(size int, pingPong bool) {
	if c.Direction == Forward {
		if c.Index+1 >= size {
			if pingPong {
				c.flip()
				if c.Index > 0 {
					c.Index--
				}
			} else {
				c.Index = 0
			}
		} else {
			c.Index++
		}
		return
	}

	if c.Index == 0 {
		if pingPong {
			c.flip()
			if size > 1 {
				c.Index++
			}
		} else {
			c.Index = size - 1
		}
	} else {
		c.Index--
	}
}

func (c *Cursor) flip() {
	c.Direction = -c.Direction
	c.Reversals++
	if c.Reversals >= reversalWrap {
		c.Reversals = 0
	}
}

// Clamp pulls the index back into [0, size-1] after the store shrank
// underneath the cursor.
func (c *Cursor) Clamp(size int) {
	if size <= 0 {
		c.Index = 0
		return
	}
	if c.Index >= size {
		c.Index = size - 1
	}
	if c.Index < 0 {
		c.Index = 0
	}
}
