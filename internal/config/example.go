package config

import (
	"fmt"

	"github.com/charmbracelet/clips/assets"
	"gopkg.in/yaml.v3"
)

const exampleHeader = `# clips configuration
#
# mode: clip source, one of bundled, custom or disabled
# volume: percent, 0 to 200
# data_dir: directory custom clips are read from
# names: clips to load, by file name
# load_concurrency: clips read at once while loading
# device: audio output buffer and startup timeout
#
# CLIPS_* environment variables override this file. Flags override both.

`

// ExampleYAML renders the default configuration as a config file.
func ExampleYAML() (string, error) {
	cfg := Default()
	cfg.Names = append([]string(nil), assets.Names...)

	data, err := yaml.Marshal(struct {
		Clips Config `yaml:"clips"`
	}{cfg})
	if err != nil {
		return "", fmt.Errorf("unable to render default config: %w", err)
	}
	return exampleHeader + string(data), nil
}
