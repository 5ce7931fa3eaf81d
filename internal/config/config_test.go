package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/clips/assets"
	"github.com/charmbracelet/clips/pkg/clips"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// TestDefaultConfig tests that default configuration is valid.
func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}

	if cfg.Mode != clips.ModeBundled {
		t.Errorf("Default mode should be bundled, got %s", cfg.Mode)
	}

	if cfg.Volume != 100 {
		t.Errorf("Default volume should be 100, got %d", cfg.Volume)
	}
}

// TestConfigValidation tests configuration validation.
func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "invalid mode",
			modify: func(c *Config) {
				c.Mode = clips.Mode(9)
			},
			wantErr: true,
			errMsg:  "invalid mode",
		},
		{
			name: "volume too high",
			modify: func(c *Config) {
				c.Volume = 250
			},
			wantErr: true,
			errMsg:  "volume must be between",
		},
		{
			name: "volume too low",
			modify: func(c *Config) {
				c.Volume = -1
			},
			wantErr: true,
			errMsg:  "volume must be between",
		},
		{
			name: "zero concurrency",
			modify: func(c *Config) {
				c.LoadConcurrency = 0
			},
			wantErr: true,
			errMsg:  "load concurrency",
		},
		{
			name: "custom mode without data dir",
			modify: func(c *Config) {
				c.Mode = clips.ModeCustom
				c.DataDir = ""
			},
			wantErr: true,
			errMsg:  "data directory is required",
		},
		{
			name: "empty clip name",
			modify: func(c *Config) {
				c.Names = []string{"mage.wav", ""}
			},
			wantErr: true,
			errMsg:  "clip names",
		},
		{
			name: "zero ready timeout",
			modify: func(c *Config) {
				c.Device.ReadyTimeout = 0
			},
			wantErr: true,
			errMsg:  "ready timeout",
		},
		{
			name: "negative buffer",
			modify: func(c *Config) {
				c.Device.BufferSize = -time.Millisecond
			},
			wantErr: true,
			errMsg:  "buffer size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil && tt.errMsg != "" {
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
				}
			}
		})
	}
}

// TestLoadFromDefaults tests loading with nothing set.
func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Mode != clips.ModeBundled {
		t.Errorf("Expected bundled mode, got %s", cfg.Mode)
	}
	if cfg.LoadConcurrency != 4 {
		t.Errorf("Expected load concurrency 4, got %d", cfg.LoadConcurrency)
	}
	if cfg.Device.BufferSize != 50*time.Millisecond {
		t.Errorf("Expected buffer size 50ms, got %v", cfg.Device.BufferSize)
	}
	if len(cfg.Names) != len(assets.Names) {
		t.Errorf("Expected bundled names by default, got %v", cfg.Names)
	}
	if cfg.DataDir == "" {
		t.Error("Expected a default data dir")
	}
}

// TestLoadFromEnv tests that environment variables are read.
func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CLIPS_MODE", "custom")
	t.Setenv("CLIPS_VOLUME", "40")
	t.Setenv("CLIPS_DATA_DIR", "/tmp/clips")
	t.Setenv("CLIPS_NAMES", "a.wav,b.wav")
	t.Setenv("CLIPS_DEVICE_READY_TIMEOUT", "2s")

	cfg, err := LoadFrom(viper.New())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Mode != clips.ModeCustom {
		t.Errorf("Expected custom mode, got %s", cfg.Mode)
	}
	if cfg.Volume != 40 {
		t.Errorf("Expected volume 40, got %d", cfg.Volume)
	}
	if cfg.DataDir != "/tmp/clips" {
		t.Errorf("Expected data dir /tmp/clips, got %s", cfg.DataDir)
	}
	if strings.Join(cfg.Names, ",") != "a.wav,b.wav" {
		t.Errorf("Unexpected names %v", cfg.Names)
	}
	if cfg.Device.ReadyTimeout != 2*time.Second {
		t.Errorf("Expected ready timeout 2s, got %v", cfg.Device.ReadyTimeout)
	}
}

// TestLoadFromViper tests that values set on viper are read.
func TestLoadFromViper(t *testing.T) {
	v := viper.New()
	v.Set("clips.mode", "Disabled")
	v.Set("clips.volume", 150)
	v.Set("clips.data_dir", "~/sounds")
	v.Set("clips.names", []string{"mage.wav"})
	v.Set("clips.load_concurrency", 2)
	v.Set("clips.device.buffer_size", "100ms")
	v.Set("clips.device.ready_timeout", "1s")

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Mode != clips.ModeDisabled {
		t.Errorf("Expected disabled mode, got %s", cfg.Mode)
	}
	if cfg.Volume != 150 {
		t.Errorf("Expected volume 150, got %d", cfg.Volume)
	}
	if cfg.LoadConcurrency != 2 {
		t.Errorf("Expected load concurrency 2, got %d", cfg.LoadConcurrency)
	}
	if cfg.Device.BufferSize != 100*time.Millisecond {
		t.Errorf("Expected buffer size 100ms, got %v", cfg.Device.BufferSize)
	}
	if cfg.Device.ReadyTimeout != time.Second {
		t.Errorf("Expected ready timeout 1s, got %v", cfg.Device.ReadyTimeout)
	}

	home, err := homedir.Dir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	if cfg.DataDir != filepath.Join(home, "sounds") {
		t.Errorf("Expected expanded data dir, got %s", cfg.DataDir)
	}
}

// TestLoadFromInvalid tests that bad values are rejected.
func TestLoadFromInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"bad mode", "clips.mode", "loud"},
		{"bad volume", "clips.volume", 500},
		{"bad concurrency", "clips.load_concurrency", 0},
		{"bad buffer size", "clips.device.buffer_size", "fast"},
		{"bad ready timeout", "clips.device.ready_timeout", "not a duration"},
		{"duration without unit", "clips.device.ready_timeout", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			if _, err := LoadFrom(v); err == nil {
				t.Errorf("Expected error for %s=%v", tt.key, tt.val)
			}
		})
	}
}

func readYAML(t *testing.T, doc string) *viper.Viper {
	t.Helper()

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(doc)); err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}
	return v
}

// TestLoadFromFileYieldsToEnv tests that environment variables override
// keys read from a config file.
func TestLoadFromFileYieldsToEnv(t *testing.T) {
	t.Setenv("CLIPS_MODE", "disabled")
	t.Setenv("CLIPS_VOLUME", "40")
	t.Setenv("CLIPS_DEVICE_READY_TIMEOUT", "2s")

	v := readYAML(t, `clips:
  mode: custom
  volume: 150
  load_concurrency: 2
  device:
    ready_timeout: 9s
`)

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Mode != clips.ModeDisabled {
		t.Errorf("Expected disabled mode from env, got %s", cfg.Mode)
	}
	if cfg.Volume != 40 {
		t.Errorf("Expected volume 40 from env, got %d", cfg.Volume)
	}
	if cfg.Device.ReadyTimeout != 2*time.Second {
		t.Errorf("Expected ready timeout 2s from env, got %v", cfg.Device.ReadyTimeout)
	}
	// no env var, so the file wins over the default
	if cfg.LoadConcurrency != 2 {
		t.Errorf("Expected load concurrency 2 from file, got %d", cfg.LoadConcurrency)
	}
}

// TestLoadFromFlagBeatsEnv tests that keys set by flags override the
// environment even when the config file also has them.
func TestLoadFromFlagBeatsEnv(t *testing.T) {
	t.Setenv("CLIPS_VOLUME", "40")

	v := readYAML(t, "clips:\n  volume: 150\n")
	v.Set("clips.volume", 80)

	cfg, err := LoadFrom(v, "clips.volume")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Volume != 80 {
		t.Errorf("Expected volume 80 from flag, got %d", cfg.Volume)
	}
}

// TestExampleYAML tests that the generated config file loads back to the
// defaults.
func TestExampleYAML(t *testing.T) {
	doc, err := ExampleYAML()
	if err != nil {
		t.Fatalf("Failed to render example: %v", err)
	}
	if !strings.HasPrefix(doc, "# clips configuration") {
		t.Errorf("Expected header comment, got %q", doc[:min(len(doc), 40)])
	}

	cfg, err := LoadFrom(readYAML(t, doc))
	if err != nil {
		t.Fatalf("Failed to load example: %v", err)
	}

	want := Default()
	if cfg.Mode != want.Mode || cfg.Volume != want.Volume || cfg.LoadConcurrency != want.LoadConcurrency {
		t.Errorf("Example differs from defaults: %+v", cfg)
	}
	if cfg.Device != want.Device {
		t.Errorf("Expected device %+v, got %+v", want.Device, cfg.Device)
	}
	if strings.Join(cfg.Names, ",") != strings.Join(assets.Names, ",") {
		t.Errorf("Expected bundled names, got %v", cfg.Names)
	}
}
