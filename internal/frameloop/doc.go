// Package frameloop implements a bounded circular frame buffer with
// dual-mode operation: continuous capture of incoming frames versus
// ping-pong playback of previously captured frames.
//
// # Philosophy
//
// "Never exceed the ceiling, never render nothing."
//
// The engine favors graceful degradation over hard failure: capacity is
// silently reduced under the memory ceiling, out-of-range settings are
// clamped, and a tick that cannot produce a buffered frame falls back
// to passing the live upstream image through. There is no fatal error
// path inside the engine.
//
// # Architecture
//
// The engine composes four pieces:
//
//	Store   - ordered, bounded sequence of frame handles (FIFO eviction)
//	Cursor  - playback position, direction and fractional accumulator
//	sizer   - derives capacity from duration, host rate and memory ceiling
//	Engine  - mode state machine driving capture and playback ticks
//
// The external driver invokes two entry points per cycle:
//
//	engine.Advance(elapsed)  // wall-clock delta since the previous call
//	engine.RenderTick()      // sample upstream or draw a buffered frame
//
// The two calls may come from different goroutines; all store and
// cursor state is serialized behind a single mutex held per logical
// operation. The externally supplied Sampler and Renderer calls always
// execute outside that mutex, with the handle and geometry copied out
// under it, so slow upstream or GPU work never blocks the timing path.
//
// # Frame Ownership
//
// A Frame handle pushed into the engine is owned exclusively by the
// store and closed exactly once: on eviction, on clear, or on engine
// teardown. The Renderer borrows a handle for the duration of one Draw
// call and must not retain it afterwards.
//
// # Basic Usage
//
//	engine, err := frameloop.New(frameloop.DefaultConfig(), 30, sampler, renderer)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer engine.Close()
//
//	engine.SetDimensions(1280, 720)
//	for {
//		elapsed := tick()             // seconds since previous tick
//		engine.Advance(elapsed)
//		engine.RenderTick()
//	}
//
//	// from a hotkey or UI button:
//	if _, ok := engine.Toggle(); !ok {
//		// nothing buffered yet, still capturing
//	}
package frameloop
