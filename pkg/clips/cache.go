package clips

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/clips/internal/store"
	"github.com/charmbracelet/clips/pkg/audio"
	"github.com/charmbracelet/clips/pkg/decode"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Player is the surface a host drives.
type Player interface {
	LoadAudio(mode Mode, names ...string)
	UnloadAudio()
	PlaySoundClip(name string)
	SetVolume(percent int)
}

var (
	_ Player = (*Cache)(nil)
	_ Player = (*LineCache)(nil)
)

// Volume bounds.
const (
	MinVolume     = 0.0
	MaxVolume     = 2.0
	DefaultVolume = 1.0
)

// DefaultLoadConcurrency is the number of clips read at once while loading.
const DefaultLoadConcurrency = 4

// Option configures a Cache or LineCache.
type Option func(*options)

type options struct {
	logger      *log.Logger
	bundled     Source
	custom      Source
	registry    *decode.Registry
	concurrency int
}

func defaultOptions() options {
	return options{
		logger:      log.Default().WithPrefix("clips"),
		bundled:     NewBundledSource(),
		custom:      NewFileSource(afero.NewOsFs(), DefaultDataDir()),
		registry:    decode.DefaultRegistry(),
		concurrency: DefaultLoadConcurrency,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger failures are reported to.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBundled sets the source used in ModeBundled.
func WithBundled(src Source) Option {
	return func(o *options) {
		o.bundled = src
	}
}

// WithCustom sets the source used in ModeCustom.
func WithCustom(src Source) Option {
	return func(o *options) {
		o.custom = src
	}
}

// WithRegistry sets the decoders clips are checked and played with.
func WithRegistry(r *decode.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithLoadConcurrency bounds how many clips are read at once.
func WithLoadConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// Cache holds clip payloads and plays each on a line acquired for the call.
//
// Load, unload and play are serialized, so at most one line is held at a
// time. Volume changes do not wait for a playback in progress.
type Cache struct {
	device audio.Device
	opts   options
	logger *log.Logger

	mu    sync.Mutex
	store *store.Store

	volume atomic.Uint64 // float64 bits
}

// New returns an empty cache playing through device.
func New(device audio.Device, opts ...Option) *Cache {
	o := buildOptions(opts)
	c := &Cache{
		device: device,
		opts:   o,
		logger: o.logger,
		store:  store.New(),
	}
	c.volume.Store(math.Float64bits(DefaultVolume))
	return c
}

// LoadAudio reads each named clip from the source mode selects and keeps
// it in memory. Clips that cannot be read are logged and left out; a clip
// loaded earlier under the same name is kept in that case.
func (c *Cache) LoadAudio(mode Mode, names ...string) {
	if mode == ModeDisabled {
		c.logger.Debug("Audio disabled, nothing to load")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	src := sourceFor(c.opts, mode)
	for _, clip := range readClips(c.opts, src, names, c.logger) {
		c.store.Put(clip.name, clip.data)
	}

	c.logger.Debug("Loaded clips",
		"mode", mode,
		"requested", len(names),
		"loaded", c.store.Len(),
		"size", humanize.IBytes(uint64(c.store.Size()))) //nolint:gosec
}

// UnloadAudio drops every loaded clip.
func (c *Cache) UnloadAudio() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Clear()
}

// PlaySoundClip plays a loaded clip and returns once it has finished.
// Unknown names return immediately.
func (c *Cache) PlaySoundClip(name string) {
	c.PlaySoundClipContext(context.Background(), name)
}

// PlaySoundClipContext is PlaySoundClip with cancellation. A cancelled ctx
// stops the playback early.
func (c *Cache) PlaySoundClipContext(ctx context.Context, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.store.Get(name)
	if !ok {
		c.logger.Debug("Clip not loaded", "clip", name)
		return
	}

	if err := c.play(ctx, name, data); err != nil {
		c.logger.Error("Unable to play sound", "clip", name, "err", err)
	}
}

func (c *Cache) play(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return wrap("play", name, ErrInterrupted, err)
	}

	line, err := c.device.Line()
	if err != nil {
		return wrap("play", name, ErrDevice, err)
	}
	defer func() {
		if cerr := releaseLine(line); cerr != nil {
			c.logger.Debug("Line cleanup failed", "clip", name, "err", cerr)
		}
	}()

	stream, err := c.opts.registry.Decode(data)
	if err != nil {
		return wrap("decode", name, ErrDecode, err)
	}

	if err := line.Open(stream); err != nil {
		return wrap("open", name, ErrDevice, err)
	}

	return runLine(ctx, name, line, c.Volume())
}

// SetVolume sets the volume for later plays as a percentage, clamped to
// [0, 200].
func (c *Cache) SetVolume(percent int) {
	c.volume.Store(math.Float64bits(percentToVolume(percent)))
}

// Volume returns the current volume level in [0, 2].
func (c *Cache) Volume() float64 {
	return math.Float64frombits(c.volume.Load())
}

// Loaded reports whether name is loaded.
func (c *Cache) Loaded(name string) bool {
	return c.store.Contains(name)
}

// Names returns the loaded clip names in sorted order.
func (c *Cache) Names() []string {
	return c.store.Keys()
}

// Size returns the payload size of a loaded clip in bytes.
func (c *Cache) Size(name string) (int64, bool) {
	md, ok := c.store.Metadata(name)
	return md.Size, ok
}

// Stats returns store statistics.
func (c *Cache) Stats() store.Stats {
	return c.store.Stats()
}

func percentToVolume(percent int) float64 {
	return max(MinVolume, min(MaxVolume, float64(percent)/100))
}

func sourceFor(o options, mode Mode) Source {
	if mode == ModeCustom {
		return o.custom
	}
	return o.bundled
}

type loadedClip struct {
	name string
	data []byte
}

// readClips reads names from src with bounded concurrency. The result is in
// request order; failures are logged and skipped.
func readClips(o options, src Source, names []string, logger *log.Logger) []loadedClip {
	results := make([]*loadedClip, len(names))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, name := range names {
		g.Go(func() error {
			data, err := readClip(src, o.registry, name)
			if err != nil {
				logger.Error("Unable to load sound", "clip", name, "err", err)
				return nil
			}
			results[i] = &loadedClip{name: name, data: data}
			return nil
		})
	}
	_ = g.Wait()

	clips := make([]loadedClip, 0, len(names))
	for _, r := range results {
		if r != nil {
			clips = append(clips, *r)
		}
	}
	return clips
}

func readClip(src Source, registry *decode.Registry, name string) ([]byte, error) {
	if src == nil {
		return nil, &ClipError{Op: "load", Clip: name, Err: ErrNilSource}
	}

	r, err := src.Open(name)
	if err != nil {
		return nil, wrap("load", name, ErrSourceUnavailable, err)
	}
	if r == nil {
		return nil, &ClipError{Op: "load", Clip: name, Err: ErrNilSource}
	}
	defer r.Close() //nolint:errcheck

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, wrap("load", name, ErrSourceUnavailable, err)
	}

	if _, _, err := registry.Lookup(data); err != nil {
		return nil, wrap("load", name, ErrDecode, err)
	}
	return data, nil
}

// runLine plays an opened line from the start and waits for it to end.
func runLine(ctx context.Context, name string, line audio.Line, volume float64) error {
	if err := line.SetGain(audio.VolumeToGain(volume)); err != nil {
		return wrap("play", name, ErrDevice, err)
	}
	if err := line.SetFramePosition(0); err != nil {
		return wrap("play", name, ErrDevice, err)
	}

	done, err := line.Start()
	if err != nil {
		return wrap("play", name, ErrDevice, err)
	}

	select {
	case <-done:
	case <-ctx.Done():
		return wrap("play", name, ErrInterrupted, ctx.Err())
	}

	if err := line.Err(); err != nil {
		return wrap("play", name, ErrDevice, err)
	}
	return nil
}

// releaseLine stops, flushes and closes line.
func releaseLine(line audio.Line) error {
	return errors.Join(
		ignoreClosed(line.Stop()),
		ignoreClosed(line.Flush()),
		ignoreClosed(line.Close()),
	)
}

// rewindLine stops and flushes line, keeping it open.
func rewindLine(line audio.Line) error {
	return errors.Join(
		ignoreClosed(line.Stop()),
		ignoreClosed(line.Flush()),
	)
}

func ignoreClosed(err error) error {
	if errors.Is(err, audio.ErrLineClosed) {
		return nil
	}
	return err
}
