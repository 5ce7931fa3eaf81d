// Package main provides the entry point for the clips CLI application.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/clips/internal/config"
	"github.com/charmbracelet/clips/pkg/audio"
	"github.com/charmbracelet/clips/pkg/clips"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	mode       string
	volume     int
	dataDir    string
	debug      bool

	// cfg is resolved before any subcommand runs.
	cfg config.Config

	// flagKeys maps flags to the config keys they override.
	flagKeys = map[string]string{
		"mode":     "clips.mode",
		"volume":   "clips.volume",
		"data-dir": "clips.data_dir",
	}

	rootCmd = &cobra.Command{
		Use:   "clips",
		Short: "Play short sound clips from the command line",
		Long: paragraph(
			fmt.Sprintf("\nLoad sound clips once and %s on demand.", keyword("play them back")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
	}
)

func validateOptions(cmd *cobra.Command) error {
	debug = viper.GetBool("debug")
	if debug {
		log.SetLevel(log.DebugLevel)
	}

	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
		log.Debug("Using configuration file", "path", configFile)
	}

	var cli []string
	for flag, key := range flagKeys {
		if cmd.Flags().Changed(flag) {
			cli = append(cli, key)
		}
	}

	c, err := config.Load(cli...)
	if err != nil {
		return err //nolint:wrapcheck
	}
	cfg = c

	log.Debug("Configuration loaded",
		"mode", cfg.Mode,
		"volume", cfg.Volume,
		"data_dir", cfg.DataDir,
		"clips", len(cfg.Names))
	return nil
}

// newCache builds a cache over the system audio output.
func newCache() *clips.Cache {
	logger := log.Default().WithPrefix("clips")
	device := audio.NewOtoDevice(audio.OtoOptions{
		BufferSize:   cfg.Device.BufferSize,
		ReadyTimeout: cfg.Device.ReadyTimeout,
		Logger:       logger,
	})

	c := clips.New(device,
		clips.WithLogger(logger),
		clips.WithCustom(clips.NewFileSource(afero.NewOsFs(), cfg.DataDir)),
		clips.WithLoadConcurrency(cfg.LoadConcurrency),
	)
	c.SetVolume(cfg.Volume)
	return c
}

// clipNames returns args, or the configured clips when there are none.
func clipNames(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return cfg.Names
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVarP(&mode, "mode", "m", "", "clip source: bundled, custom or disabled")
	rootCmd.PersistentFlags().IntVar(&volume, "volume", 100, "volume in percent (0-200)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "directory custom clips are read from")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug output")

	// Config bindings
	for flag, key := range flagKeys {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(playCmd, listCmd, watchCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "clips")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "clips")}, dirs...)
	}

	if c := os.Getenv("CLIPS_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("clips")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "clips.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
