package frameloop

// Frame is an opaque handle to one captured image, for example a
// GPU-resident render target or a decoded bitmap. Once pushed into the
// engine the handle is owned exclusively by the store and is closed
// exactly once, either on eviction or on buffer teardown.
type Frame interface {
	// Close releases the resources behind the handle.
	Close()
}

// Sampler is the upstream capture capability the engine invokes during
// capture mode to obtain one image into a handle it then owns.
//
// Sample returns ok=false when no frame is available this tick
// (upstream not ready, allocation failed); the engine treats that as a
// transient, silent skip.
type Sampler interface {
	Sample(width, height int) (frame Frame, ok bool)
}

// Renderer is the draw capability the engine invokes each render tick.
// Both calls are fire-and-forget from the engine's perspective.
type Renderer interface {
	// Draw renders a buffered frame at the given output size. The frame
	// is borrowed for the duration of the call and must not be retained.
	Draw(frame Frame, width, height int)

	// Passthrough renders the live upstream image for this tick. It is
	// used during capture mode and as the playback fallback when no
	// valid buffered frame exists.
	Passthrough()
}
