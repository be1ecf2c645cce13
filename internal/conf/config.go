// config.go: loading, saving and accessing application settings
package conf

import (
	_ "embed" // Embedding the default configuration file.
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"github.com/tphakala/rave-go/internal/errors"
)

//go:embed config.yaml
var defaultConfigFile []byte

// LogConfig defines the configuration for file logging
type LogConfig struct {
	Enabled     bool         // true to enable file logging
	Path        string       // path to log file
	Rotation    string       // daily, weekly or size
	MaxSize     int64        // max size in bytes for size rotation
	RotationDay time.Weekday // day of the week for weekly rotation
}

// MainSettings contains general application settings
type MainSettings struct {
	Name string    // name of this node, used in logs
	Log  LogConfig // file logging settings
}

// ModelSettings contains settings for the RAVE model bundle
type ModelSettings struct {
	Name        string // model bundle name, e.g. "vintage"
	Directory   string // directory holding model artifacts
	EncoderPath string // explicit encoder graph path, overrides Name+Directory
	DecoderPath string // explicit decoder graph path, overrides Name+Directory
	BaseURL     string // base URL for fetching model bundles
	SampleRate  int    // sample rate the model was trained at
	Threads     int    // number of CPU threads, 0 = optimal
	UseXNNPACK  bool   // true to use XNNPACK delegate
}

// TransferSettings controls the latent alteration applied between encode
// and decode.
type TransferSettings struct {
	Channels  []int   // latent channels the bias is applied to
	BiasStart float64 // first value of the linearly spaced bias
	BiasStop  float64 // last value of the linearly spaced bias
	Gain      float64 // multiplier applied to the selected channels
	OutputDir string  // directory rendered WAV files are written to
	Play      bool    // play the result through the default output device
}

// PlaybackSettings contains audio output device settings
type PlaybackSettings struct {
	Device string // output device name, empty for system default
}

// ServerSettings contains audition server settings
type ServerSettings struct {
	Enabled  bool   // true to enable the audition server
	Listen   string // listen address, e.g. "127.0.0.1:8080"
	CacheTTL int    // file metadata cache TTL in seconds
}

// SentrySettings contains error tracking settings, opt-in
type SentrySettings struct {
	Enabled bool   // false by default
	DSN     string // project DSN, empty uses the built-in default
}

// Settings is the root of the configuration tree
type Settings struct {
	Debug bool // true to enable debug logging

	Main     MainSettings
	Model    ModelSettings
	Transfer TransferSettings
	Playback PlaybackSettings
	Server   ServerSettings
	Sentry   SentrySettings

	// Input holds the audio file path for single-shot commands. Not read
	// from the config file, set by the CLI.
	Input string `mapstructure:"-" yaml:"-"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
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

// initViper initializes viper with default values and reads the configuration file.
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

	// Set default values for each configuration parameter
	// function defined in defaults.go
	setDefaultConfig()

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config to the primary
// config path and re-reads it.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, defaultConfigFile, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// Setting returns the current settings instance, loading it on first use.
func Setting() *Settings {
	settingsMutex.RLock()
	loaded := settingsInstance != nil
	settingsMutex.RUnlock()

	if !loaded {
		if _, err := Load(); err != nil {
			return nil
		}
	}

	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GetSettings returns the current settings instance without triggering a load
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
