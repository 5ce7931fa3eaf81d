package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/clips/assets"
	"github.com/charmbracelet/clips/pkg/clips"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Load reads the configuration from the environment and the global viper
// instance. cli names the viper keys that were set by command line flags.
func Load(cli ...string) (Config, error) {
	return LoadFrom(viper.GetViper(), cli...)
}

// LoadFrom reads defaults and environment variables, overlays the keys set
// in v, then validates the result. Precedence is flag, then environment,
// then config file: a key read from the config file yields to its
// environment variable unless it is also named in cli.
func LoadFrom(v *viper.Viper, cli ...string) (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return cfg, fmt.Errorf("error parsing environment: %w", err)
	}

	o := overlay{v: v, cli: cli}
	if o.has("clips.mode", "CLIPS_MODE") {
		mode, err := clips.ParseMode(v.GetString("clips.mode"))
		if err != nil {
			return cfg, err
		}
		cfg.Mode = mode
	}
	if o.has("clips.data_dir", "CLIPS_DATA_DIR") {
		cfg.DataDir = v.GetString("clips.data_dir")
	}
	if o.has("clips.names", "CLIPS_NAMES") {
		cfg.Names = v.GetStringSlice("clips.names")
	}
	if o.has("clips.volume", "CLIPS_VOLUME") {
		cfg.Volume = v.GetInt("clips.volume")
	}
	if o.has("clips.load_concurrency", "CLIPS_LOAD_CONCURRENCY") {
		cfg.LoadConcurrency = v.GetInt("clips.load_concurrency")
	}

	if cfg.Device, err = o.device(cfg.Device); err != nil {
		return cfg, err
	}

	if cfg.DataDir == "" {
		cfg.DataDir = clips.DefaultDataDir()
	}
	dir, err := homedir.Expand(cfg.DataDir)
	if err != nil {
		return cfg, fmt.Errorf("unable to expand data directory: %w", err)
	}
	cfg.DataDir = dir

	if len(cfg.Names) == 0 {
		cfg.Names = append([]string(nil), assets.Names...)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// overlay decides which viper keys override the environment.
type overlay struct {
	v   *viper.Viper
	cli []string
}

func (o overlay) has(key, envName string) bool {
	if !o.v.IsSet(key) {
		return false
	}
	if slices.Contains(o.cli, key) {
		return true
	}
	if os.Getenv(envName) != "" && o.v.InConfig(key) {
		return false
	}
	return true
}

// device overlays device settings from v.
func (o overlay) device(cfg DeviceConfig) (DeviceConfig, error) {
	var err error
	if o.has("clips.device.buffer_size", "CLIPS_DEVICE_BUFFER_SIZE") {
		if cfg.BufferSize, err = o.duration("clips.device.buffer_size"); err != nil {
			return cfg, err
		}
	}
	if o.has("clips.device.ready_timeout", "CLIPS_DEVICE_READY_TIMEOUT") {
		if cfg.ReadyTimeout, err = o.duration("clips.device.ready_timeout"); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func (o overlay) duration(key string) (time.Duration, error) {
	raw := o.v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
