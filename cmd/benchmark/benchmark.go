// Package benchmark measures frame loop throughput with a synthetic
// source, without a window system or HTTP server in the way.
package benchmark

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/frameloop-go/internal/conf"
	"github.com/tphakala/frameloop-go/internal/frameloop"
)

// benchTicks is the number of engine ticks each phase runs.
const benchTicks = 200_000

// Command creates the benchmark command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "benchmark",
		Short: "Benchmark frame loop capture and playback throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(settings)
		},
	}
}

// nullFrame is a zero-cost frame handle for synthetic capture.
type nullFrame struct{}

func (nullFrame) Close() {}

// nullSampler produces nullFrames at zero cost.
type nullSampler struct{}

func (nullSampler) Sample(width, height int) (frameloop.Frame, bool) {
	return nullFrame{}, true
}

// nullRenderer discards every frame.
type nullRenderer struct{}

func (nullRenderer) Draw(frame frameloop.Frame, width, height int) {}
func (nullRenderer) Passthrough()                                  {}

func runBenchmark(settings *conf.Settings) error {
	cfg := frameloop.Config{
		DurationSeconds:    settings.Loop.Duration,
		PingPong:           settings.Loop.PingPong,
		Speed:              settings.Loop.Speed,
		CaptureStride:      1,
		MemoryCeilingBytes: settings.Loop.MemoryMax,
	}

	hostFPS := settings.Source.FPS
	if hostFPS <= 0 {
		hostFPS = 60
	}
	elapsed := 1.0 / hostFPS

	engine, err := frameloop.New(cfg, hostFPS, nullSampler{}, nullRenderer{})
	if err != nil {
		return err
	}
	defer engine.Close()
	engine.SetDimensions(settings.Source.Width, settings.Source.Height)

	fmt.Printf("frameloop benchmark: %d ticks per phase, %dx%d at %.0f fps\n",
		benchTicks, settings.Source.Width, settings.Source.Height, hostFPS)

	// Phase 1: capture. Every tick samples and ingests one frame.
	start := time.Now()
	for i := 0; i < benchTicks; i++ {
		engine.RenderTick()
	}
	captureDur := time.Since(start)
	status := engine.Status()
	fmt.Printf("capture:  %d ticks in %v (%.0f ticks/s), buffer %d/%d, %d evictions\n",
		benchTicks, captureDur.Round(time.Millisecond),
		float64(benchTicks)/captureDur.Seconds(),
		status.Size, status.Capacity, status.Evictions)

	// Phase 2: playback. Advance the cursor and render from the buffer.
	if _, ok := engine.Toggle(); !ok {
		return fmt.Errorf("benchmark buffer empty after capture phase")
	}
	start = time.Now()
	for i := 0; i < benchTicks; i++ {
		engine.Advance(elapsed)
		engine.RenderTick()
	}
	playbackDur := time.Since(start)
	status = engine.Status()
	fmt.Printf("playback: %d ticks in %v (%.0f ticks/s), %d reversals\n",
		benchTicks, playbackDur.Round(time.Millisecond),
		float64(benchTicks)/playbackDur.Seconds(),
		status.Reversals)

	return nil
}
