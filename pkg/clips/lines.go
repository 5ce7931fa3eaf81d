package clips

import (
	"context"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/clips/pkg/audio"
	"github.com/charmbracelet/clips/pkg/decode"
	"github.com/charmbracelet/log"
)

// LineCache keeps an opened line per clip, so a play only rewinds and
// starts it. It trades one device line per loaded clip for lower latency.
type LineCache struct {
	device audio.Device
	opts   options
	logger *log.Logger

	mu    sync.Mutex
	lines map[string]audio.Line

	volume atomic.Uint64 // float64 bits
}

// NewLineCache returns an empty line cache playing through device.
func NewLineCache(device audio.Device, opts ...Option) *LineCache {
	o := buildOptions(opts)
	c := &LineCache{
		device: device,
		opts:   o,
		logger: o.logger,
		lines:  make(map[string]audio.Line),
	}
	c.volume.Store(math.Float64bits(DefaultVolume))
	return c
}

// LoadAudio reads, decodes and opens a line for each named clip. A clip
// that was already loaded has its old line closed before the new one is
// opened, so a reload needs no spare device line. If the new line cannot
// be opened the clip is dropped.
func (c *LineCache) LoadAudio(mode Mode, names ...string) {
	if mode == ModeDisabled {
		c.logger.Debug("Audio disabled, nothing to load")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	src := sourceFor(c.opts, mode)
	for _, clip := range readClips(c.opts, src, names, c.logger) {
		stream, err := c.opts.registry.Decode(clip.data)
		if err != nil {
			c.logger.Error("Unable to load sound", "clip", clip.name, "err", wrap("decode", clip.name, ErrDecode, err))
			continue
		}

		if old, ok := c.lines[clip.name]; ok {
			c.release(clip.name, old)
			delete(c.lines, clip.name)
		}

		line, err := c.openLine(clip.name, stream)
		if err != nil {
			c.logger.Error("Unable to load sound", "clip", clip.name, "err", err)
			continue
		}
		c.lines[clip.name] = line
	}

	c.logger.Debug("Loaded clips", "mode", mode, "requested", len(names), "loaded", len(c.lines))
}

func (c *LineCache) openLine(name string, stream decode.Stream) (audio.Line, error) {
	line, err := c.device.Line()
	if err != nil {
		return nil, wrap("load", name, ErrDevice, err)
	}
	if err := line.Open(stream); err != nil {
		_ = releaseLine(line)
		return nil, wrap("open", name, ErrDevice, err)
	}
	return line, nil
}

// UnloadAudio closes every line and drops every clip.
func (c *LineCache) UnloadAudio() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, line := range c.lines {
		c.release(name, line)
	}
	clear(c.lines)
}

func (c *LineCache) release(name string, line audio.Line) {
	if err := releaseLine(line); err != nil {
		c.logger.Debug("Line cleanup failed", "clip", name, "err", err)
	}
}

// PlaySoundClip plays a loaded clip and returns once it has finished.
// Unknown names return immediately.
func (c *LineCache) PlaySoundClip(name string) {
	c.PlaySoundClipContext(context.Background(), name)
}

// PlaySoundClipContext is PlaySoundClip with cancellation. A line that fails
// is closed and its clip dropped.
func (c *LineCache) PlaySoundClipContext(ctx context.Context, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.lines[name]
	if !ok {
		c.logger.Debug("Clip not loaded", "clip", name)
		return
	}

	err := runLine(ctx, name, line, c.Volume())
	if rerr := rewindLine(line); rerr != nil && err == nil {
		err = wrap("play", name, ErrDevice, rerr)
	}
	if err == nil {
		return
	}

	c.logger.Error("Unable to play sound", "clip", name, "err", err)
	if ctx.Err() != nil {
		// the line itself is fine
		return
	}
	c.release(name, line)
	delete(c.lines, name)
}

// SetVolume sets the volume for later plays as a percentage, clamped to
// [0, 200].
func (c *LineCache) SetVolume(percent int) {
	c.volume.Store(math.Float64bits(percentToVolume(percent)))
}

// Volume returns the current volume level in [0, 2].
func (c *LineCache) Volume() float64 {
	return math.Float64frombits(c.volume.Load())
}

// Loaded reports whether name has an open line.
func (c *LineCache) Loaded(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.lines[name]
	return ok
}

// Names returns the loaded clip names in sorted order.
func (c *LineCache) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.lines))
	for name := range c.lines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
