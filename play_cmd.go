package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/clips/pkg/clips"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	repeat int

	playCmd = &cobra.Command{
		Use:     "play [NAME...]",
		Short:   "Play sound clips",
		Long:    paragraph(fmt.Sprintf("\n%s each clip in order, waiting for one to finish before starting the next. Without arguments the configured clips are played.", keyword("Play"))),
		Example: paragraph("clips play\nclips play mage.wav range.wav --repeat 2\nclips play --mode custom --data-dir ~/sounds hit.wav"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c := newCache()
			names := clipNames(args)
			c.LoadAudio(cfg.Mode, names...)
			defer c.UnloadAudio()

			for range max(repeat, 1) {
				for _, name := range names {
					if ctx.Err() != nil {
						return nil
					}
					if !c.Loaded(name) {
						fmt.Fprintln(os.Stderr, faint("skipping "+name))
						continue
					}
					fmt.Println("Playing", keyword(name))
					c.PlaySoundClipContext(ctx, name)
				}
			}
			return nil
		},
	}

	listCmd = &cobra.Command{
		Use:   "list [NAME...]",
		Short: "List the clips that load",
		Args:  cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			c := newCache()
			c.LoadAudio(cfg.Mode, clipNames(args)...)
			defer c.UnloadAudio()

			if cfg.Mode == clips.ModeDisabled {
				fmt.Println(faint("audio is disabled"))
				return nil
			}

			for _, name := range c.Names() {
				size, _ := c.Size(name)
				fmt.Printf("%s %s\n", keyword(name), faint(humanize.IBytes(uint64(size)))) //nolint:gosec
			}

			stats := c.Stats()
			fmt.Printf("%d clips, %s from %s\n", stats.ItemCount, humanize.IBytes(uint64(stats.Size)), cfg.Mode) //nolint:gosec
			return nil
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch [NAME...]",
		Short: "Replay custom clips when their files change",
		Long:  paragraph(fmt.Sprintf("\n%s the data directory and play a clip again each time its file is written.", keyword("Watch"))),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c := newCache()
			names := clipNames(args)
			c.LoadAudio(clips.ModeCustom, names...)
			defer c.UnloadAudio()

			logger := log.Default().WithPrefix("clips")
			w, err := clips.NewWatcher(c, cfg.DataDir, names, logger)
			if err != nil {
				return err //nolint:wrapcheck
			}
			defer w.Close() //nolint:errcheck

			w.OnReload = func(name string) {
				fmt.Println("Reloaded", keyword(name))
				c.PlaySoundClipContext(ctx, name)
			}

			fmt.Println("Watching", keyword(cfg.DataDir), faint("(ctrl+c to stop)"))
			return w.Run(ctx) //nolint:wrapcheck
		},
	}
)

func init() {
	playCmd.Flags().IntVarP(&repeat, "repeat", "r", 1, "number of times to play the clips")
}
