package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/frameloop-go/cmd/benchmark"
	"github.com/tphakala/frameloop-go/cmd/realtime"
	"github.com/tphakala/frameloop-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "frameloop",
		Short: "Frameloop ping-pong frame buffer CLI",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		realtime.Command(settings),
		benchmark.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := cmd.Flags().Parse(args); err != nil {
			return err
		}
		// Re-validate after flags have overridden file values so the
		// clamping rules apply to command-line input too.
		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().IntVar(&settings.Loop.Duration, "duration", viper.GetInt("loop.duration"), "Seconds of content kept in the loop buffer, 10-60")
	rootCmd.PersistentFlags().BoolVar(&settings.Loop.PingPong, "pingpong", viper.GetBool("loop.pingpong"), "Play the buffer forward and backward instead of wrapping")
	rootCmd.PersistentFlags().Float64Var(&settings.Loop.Speed, "speed", viper.GetFloat64("loop.speed"), "Playback speed multiplier, 0.1-2.0")
	rootCmd.PersistentFlags().IntVar(&settings.Loop.Stride, "stride", viper.GetInt("loop.stride"), "Capture every Nth host tick")
	rootCmd.PersistentFlags().Int64Var(&settings.Loop.MemoryMax, "memorymax", viper.GetInt64("loop.memorymax"), "Frame memory ceiling in bytes, 0 derives it from system memory")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
