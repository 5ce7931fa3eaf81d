// Package config holds the clips host configuration.
package config

import (
	"fmt"
	"time"

	"github.com/charmbracelet/clips/pkg/clips"
)

// Config contains all clips configuration options.
type Config struct {
	// Source settings
	Mode    clips.Mode `yaml:"mode" env:"CLIPS_MODE" envDefault:"bundled"`
	DataDir string     `yaml:"data_dir" env:"CLIPS_DATA_DIR"`
	Names   []string   `yaml:"names" env:"CLIPS_NAMES" envSeparator:","`

	// Playback settings
	Volume          int `yaml:"volume" env:"CLIPS_VOLUME" envDefault:"100"`
	LoadConcurrency int `yaml:"load_concurrency" env:"CLIPS_LOAD_CONCURRENCY" envDefault:"4"`

	Device DeviceConfig `yaml:"device"`
}

// DeviceConfig contains audio output settings.
type DeviceConfig struct {
	BufferSize   time.Duration `yaml:"buffer_size" env:"CLIPS_DEVICE_BUFFER_SIZE" envDefault:"50ms"`
	ReadyTimeout time.Duration `yaml:"ready_timeout" env:"CLIPS_DEVICE_READY_TIMEOUT" envDefault:"5s"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Mode:            clips.ModeBundled,
		DataDir:         clips.DefaultDataDir(),
		Volume:          100,
		LoadConcurrency: clips.DefaultLoadConcurrency,
		Device: DeviceConfig{
			BufferSize:   50 * time.Millisecond,
			ReadyTimeout: 5 * time.Second,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Mode {
	case clips.ModeBundled, clips.ModeCustom, clips.ModeDisabled:
	default:
		return fmt.Errorf("invalid mode %d", int(c.Mode))
	}

	if c.Volume < 0 || c.Volume > 200 {
		return fmt.Errorf("volume must be between 0 and 200, got %d", c.Volume)
	}

	if c.LoadConcurrency < 1 || c.LoadConcurrency > 64 {
		return fmt.Errorf("load concurrency must be between 1 and 64, got %d", c.LoadConcurrency)
	}

	if c.Mode == clips.ModeCustom && c.DataDir == "" {
		return fmt.Errorf("data directory is required in %s mode", c.Mode)
	}

	for _, name := range c.Names {
		if name == "" {
			return fmt.Errorf("clip names must not be empty")
		}
	}

	if err := c.Device.Validate(); err != nil {
		return fmt.Errorf("device config: %w", err)
	}

	return nil
}

// Validate checks if the device configuration is valid.
func (c *DeviceConfig) Validate() error {
	if c.BufferSize < 0 {
		return fmt.Errorf("buffer size must not be negative, got %v", c.BufferSize)
	}
	if c.ReadyTimeout <= 0 {
		return fmt.Errorf("ready timeout must be positive, got %v", c.ReadyTimeout)
	}
	return nil
}
