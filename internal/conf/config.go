// config.go: settings struct and functions to load and save the
// frameloop configuration.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configFiles embed.FS

// Log rotation policies.
const (
	RotationDaily  = "daily"
	RotationWeekly = "weekly"
	RotationSize   = "size"
)

// LogConfig defines the configuration for a log file.
type LogConfig struct {
	Enabled  bool   // true to enable this log
	Path     string // path to the log file
	Rotation string // rotation type: daily, weekly or size
	MaxSize  int64  // max size in bytes for size rotation
}

// MainSettings contains main application settings.
type MainSettings struct {
	Name string    // name of the node running this instance
	Log  LogConfig // main log file settings
}

// LoopSettings contains the frame loop buffer settings.
type LoopSettings struct {
	Duration  int     // seconds of content kept in the buffer, 10-60
	PingPong  bool    // forward/backward playback instead of forward wrap
	Speed     float64 // playback speed multiplier, 0.1-2.0
	Stride    int     // capture every Nth tick
	MemoryMax int64   // frame memory ceiling in bytes, 0 = derive from system memory
}

// SourceSettings selects and configures the upstream frame source.
type SourceSettings struct {
	Type   string  // frame source type: "testpattern" or "images"
	Path   string  // image directory for the images source
	FPS    float64 // host tick rate driving the engine
	Width  int     // source frame width
	Height int     // source frame height
}

// WebServerSettings contains the control API and preview settings.
type WebServerSettings struct {
	Enabled bool   // true to enable the HTTP control surface
	Port    string // port for the HTTP server
	Quality int    // JPEG quality for the MJPEG preview, 1-100
}

// Settings contains all application settings.
type Settings struct {
	Debug bool // true to enable debug level logging

	Main      MainSettings
	Loop      LoopSettings
	Source    SourceSettings
	WebServer WebServerSettings
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into the
// settings singleton.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the
// configuration file, creating a default one when none exists.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config to the first
// default config path and loads it.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	defaultConfig, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return fmt.Errorf("error reading embedded default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := os.WriteFile(configPath, defaultConfig, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	log.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// GetDefaultConfigPaths returns the directories viper searches for a
// config file: the working directory first, then the user config dir.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(userConfigDir, "frameloop"))
	}
	return paths, nil
}

// Setting returns the settings singleton, loading it on first use.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// GetSettings returns the current settings instance without loading.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveSettings writes the current settings to the given path as YAML
// using an atomic replace so a crash cannot leave a truncated file.
func SaveSettings(settings *Settings, configPath string) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("error writing temporary config file: %w", err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}
