package clips

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Loader is the part of a cache a Watcher reloads clips into.
type Loader interface {
	LoadAudio(mode Mode, names ...string)
}

// Watcher reloads custom clips when their files change.
type Watcher struct {
	target  Loader
	dir     string
	names   []string
	watcher *fsnotify.Watcher
	logger  *log.Logger

	// OnReload, when set, is called after a clip has been reloaded.
	OnReload func(name string)
}

// NewWatcher watches dir for changes to the named clips and reloads them
// into target in ModeCustom.
func NewWatcher(target Loader, dir string, names []string, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Default().WithPrefix("clips")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("unable to watch %s: %w", dir, err)
	}

	return &Watcher{
		target:  target,
		dir:     dir,
		names:   slices.Clone(names),
		watcher: fw,
		logger:  logger,
	}, nil
}

// Run handles file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("Missed file events, reloading all clips", "dir", w.dir)
				w.reload(w.names...)
				continue
			}
			w.logger.Error("Watcher error", "dir", w.dir, "err", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	rel, err := filepath.Rel(w.dir, event.Name)
	if err != nil || !slices.Contains(w.names, rel) {
		return
	}

	w.logger.Debug("Clip changed", "clip", rel, "op", event.Op)
	w.reload(rel)
}

func (w *Watcher) reload(names ...string) {
	w.target.LoadAudio(ModeCustom, names...)
	if w.OnReload == nil {
		return
	}
	for _, name := range names {
		w.OnReload(name)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
