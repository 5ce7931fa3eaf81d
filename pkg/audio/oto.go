//go:build !nocgo
// +build !nocgo

package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/clips/pkg/decode"
	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	otoMu       sync.Mutex
	otoCtx      *oto.Context
	otoRate     int
	otoChannels int
)

// drainInterval is how often a finished reader is checked for the output
// buffer to run dry.
const drainInterval = 10 * time.Millisecond

// OtoOptions configures OtoDevice.
type OtoOptions struct {
	// BufferSize is the output buffer length. Zero lets oto decide.
	BufferSize time.Duration
	// ReadyTimeout bounds the wait for the output to become ready.
	ReadyTimeout time.Duration
	// Logger receives device diagnostics. Defaults to log.Default().
	Logger *log.Logger
}

// DefaultOtoOptions returns the default device options.
func DefaultOtoOptions() OtoOptions {
	return OtoOptions{
		BufferSize:   50 * time.Millisecond,
		ReadyTimeout: 5 * time.Second,
	}
}

// OtoDevice plays lines through the system mixer.
//
// The output format is fixed by the first clip opened on any line; oto
// cannot reopen its context, so later clips of another rate or channel
// count fail with ErrFormatMismatch.
type OtoDevice struct {
	opts   OtoOptions
	logger *log.Logger
}

// NewOtoDevice returns a device. The output is initialized lazily.
func NewOtoDevice(opts OtoOptions) *OtoDevice {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultOtoOptions().ReadyTimeout
	}
	return &OtoDevice{opts: opts, logger: logger}
}

// Line implements Device.
func (d *OtoDevice) Line() (Line, error) {
	return &otoLine{dev: d}, nil
}

// context returns the shared oto context, creating it for the given format.
func (d *OtoDevice) context(sampleRate, channels int) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if sampleRate != otoRate || channels != otoChannels {
			return nil, fmt.Errorf("%w: clip is %d Hz/%d ch, output is %d Hz/%d ch",
				ErrFormatMismatch, sampleRate, channels, otoRate, otoChannels)
		}
		return otoCtx, nil
	}

	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrFormatMismatch, channels)
	}

	options := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   d.opts.BufferSize,
	}

	d.logger.Debug("Initializing audio output",
		"sample_rate", sampleRate,
		"channels", channels,
		"buffer_size", d.opts.BufferSize)

	ctx, ready, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	select {
	case <-ready:
	case <-time.After(d.opts.ReadyTimeout):
		return nil, fmt.Errorf("%w: output not ready after %v", ErrUnavailable, d.opts.ReadyTimeout)
	}

	otoCtx = ctx
	otoRate = sampleRate
	otoChannels = channels
	return otoCtx, nil
}

// otoLine is a Line backed by an oto.Player.
type otoLine struct {
	dev *OtoDevice

	mu     sync.Mutex
	ctx    *oto.Context
	clip   *Clip
	gain   float64
	frame  int64
	player *oto.Player
	stop   chan struct{}
	err    error
	closed bool
}

func (l *otoLine) Open(s decode.Stream) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLineClosed
	}

	clip, err := NewClip(s)
	if err != nil {
		return fmt.Errorf("reading stream: %w", err)
	}

	ctx, err := l.dev.context(clip.SampleRate(), clip.Channels())
	if err != nil {
		return err
	}

	l.ctx = ctx
	l.clip = clip
	l.frame = 0
	return nil
}

func (l *otoLine) SetGain(db float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLineClosed
	}
	l.gain = ClampGain(db)
	return nil
}

func (l *otoLine) SetFramePosition(frame int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLineClosed
	}
	if l.clip == nil {
		return ErrNotOpen
	}
	l.frame = max(0, min(frame, l.clip.Frames()))
	return nil
}

func (l *otoLine) Start() (<-chan struct{}, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrLineClosed
	}
	if l.clip == nil {
		return nil, ErrNotOpen
	}
	if l.stop != nil {
		return nil, ErrAlreadyStarted
	}

	reader := l.clip.Reader(l.frame, l.gain)
	player := l.ctx.NewPlayer(reader)
	if player == nil {
		return nil, errors.New("failed to create oto player")
	}

	done := make(chan struct{})
	stop := make(chan struct{})

	l.player = player
	l.stop = stop
	l.err = nil

	player.Play()
	go l.monitor(player, reader, stop, done)

	return done, nil
}

// monitor closes done once player has drained reader, or on stop.
func (l *otoLine) monitor(player *oto.Player, reader *PCMReader, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	select {
	case <-stop:
		return
	case <-reader.EOF():
	}

	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}

	if err := player.Err(); err != nil {
		l.mu.Lock()
		l.err = err
		l.mu.Unlock()
	}
}

func (l *otoLine) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *otoLine) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLineClosed
	}
	l.stopLocked()
	return nil
}

func (l *otoLine) stopLocked() {
	if l.player != nil {
		l.player.Pause()
	}
	if l.stop != nil {
		close(l.stop)
		l.stop = nil
	}
}

func (l *otoLine) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLineClosed
	}
	return l.flushLocked()
}

// flushLocked drops the player together with whatever it still buffers.
func (l *otoLine) flushLocked() error {
	l.frame = 0
	if l.player == nil {
		return nil
	}
	err := l.player.Close()
	l.player = nil
	return err
}

func (l *otoLine) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLineClosed
	}

	l.stopLocked()
	err := l.flushLocked()
	l.closed = true
	l.clip = nil
	return err
}
