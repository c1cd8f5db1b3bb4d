// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "FrameLoop-Go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "frameloop.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)

	viper.SetDefault("loop.duration", 30)
	viper.SetDefault("loop.pingpong", true)
	viper.SetDefault("loop.speed", 1.0)
	viper.SetDefault("loop.stride", 2)
	viper.SetDefault("loop.memorymax", 0)

	viper.SetDefault("source.type", "testpattern")
	viper.SetDefault("source.path", "frames/")
	viper.SetDefault("source.fps", 30.0)
	viper.SetDefault("source.width", 1280)
	viper.SetDefault("source.height", 720)

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.quality", 80)
}
