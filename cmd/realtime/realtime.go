package realtime

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/frameloop-go/internal/conf"
	"github.com/tphakala/frameloop-go/internal/realtime"
)

// Command creates the command that runs the realtime frame loop.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realtime",
		Short: "Run the frame loop in realtime mode",
		Long:  "Capture frames from the configured source at the host tick rate and serve the control API and MJPEG preview.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return realtime.Run(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the realtime command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.Source.Type, "source", viper.GetString("source.type"), "Frame source type (\"testpattern\" or \"images\")")
	cmd.Flags().StringVar(&settings.Source.Path, "path", viper.GetString("source.path"), "Image directory for the images source")
	cmd.Flags().Float64Var(&settings.Source.FPS, "fps", viper.GetFloat64("source.fps"), "Host tick rate driving the engine")
	cmd.Flags().IntVar(&settings.Source.Width, "width", viper.GetInt("source.width"), "Source frame width")
	cmd.Flags().IntVar(&settings.Source.Height, "height", viper.GetInt("source.height"), "Source frame height")
	cmd.Flags().BoolVar(&settings.WebServer.Enabled, "webserver", viper.GetBool("webserver.enabled"), "Enable the HTTP control surface")
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port for the HTTP control surface")
	cmd.Flags().IntVar(&settings.WebServer.Quality, "quality", viper.GetInt("webserver.quality"), "JPEG quality for the MJPEG preview, 1-100")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
