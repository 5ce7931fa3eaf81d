package audio

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/clips/pkg/decode"
)

// MockOptions configures MockDevice.
type MockOptions struct {
	// MaxLines is the number of lines that may be open at once. Zero means one.
	MaxLines int
	// ManualEnd makes playback last until MockLine.End is called.
	ManualEnd bool
	// PlayDuration delays the simulated end-of-stream when ManualEnd is false.
	PlayDuration time.Duration
	// LineErr, when set, is returned by every Line call.
	LineErr error
	// OpenErr, when set, is returned by every MockLine.Open call.
	OpenErr error
}

// MockDevice implements Device without producing sound. Lines beyond
// MaxLines are rejected with ErrDeviceBusy and counted.
type MockDevice struct {
	opts MockOptions

	mu          sync.Mutex
	lines       []*MockLine
	open        int
	maxOpen     int
	opened      int
	closed      int
	rejected    int
	closedEarly int

	started chan *MockLine
}

// MockMetrics is a snapshot of MockDevice counters.
type MockMetrics struct {
	Opened      int // lines acquired
	Closed      int // lines closed
	Open        int // lines currently open
	MaxOpen     int // highest number of lines open at once
	Rejected    int // Line calls refused because the device was full
	ClosedEarly int // lines closed while playback had not reached its end
}

// NewMockDevice creates a mock device.
func NewMockDevice(opts MockOptions) *MockDevice {
	if opts.MaxLines <= 0 {
		opts.MaxLines = 1
	}
	return &MockDevice{
		opts:    opts,
		started: make(chan *MockLine, 64),
	}
}

// Line implements Device.
func (d *MockDevice) Line() (Line, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.opts.LineErr != nil {
		return nil, d.opts.LineErr
	}
	if d.open >= d.opts.MaxLines {
		d.rejected++
		return nil, ErrDeviceBusy
	}

	d.open++
	d.opened++
	d.maxOpen = max(d.maxOpen, d.open)

	l := &MockLine{dev: d}
	d.lines = append(d.lines, l)
	return l, nil
}

// Started delivers each line as it is started.
func (d *MockDevice) Started() <-chan *MockLine {
	return d.started
}

// Lines returns every line handed out so far.
func (d *MockDevice) Lines() []*MockLine {
	d.mu.Lock()
	defer d.mu.Unlock()

	lines := make([]*MockLine, len(d.lines))
	copy(lines, d.lines)
	return lines
}

// Metrics returns a snapshot of the device counters.
func (d *MockDevice) Metrics() MockMetrics {
	d.mu.Lock()
	defer d.mu.Unlock()

	return MockMetrics{
		Opened:      d.opened,
		Closed:      d.closed,
		Open:        d.open,
		MaxOpen:     d.maxOpen,
		Rejected:    d.rejected,
		ClosedEarly: d.closedEarly,
	}
}

func (d *MockDevice) release(early bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.open--
	d.closed++
	if early {
		d.closedEarly++
	}
}

// MockLine implements Line for MockDevice.
type MockLine struct {
	dev *MockDevice

	mu       sync.Mutex
	clip     *Clip
	gain     float64
	frame    int64
	done     chan struct{}
	signaled bool
	ended    bool
	running  bool
	closed   bool

	// counters
	starts  int
	stops   int
	flushes int
	closes  int
	played  int // bytes consumed by the last playback
}

func (l *MockLine) Open(s decode.Stream) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLineClosed
	}
	if l.dev.opts.OpenErr != nil {
		return l.dev.opts.OpenErr
	}

	clip, err := NewClip(s)
	if err != nil {
		return err
	}
	l.clip = clip
	l.frame = 0
	return nil
}

func (l *MockLine) SetGain(db float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLineClosed
	}
	l.gain = ClampGain(db)
	return nil
}

func (l *MockLine) SetFramePosition(frame int64) error {
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

func (l *MockLine) Start() (<-chan struct{}, error) {
	l.mu.Lock()

	if l.closed {
		l.mu.Unlock()
		return nil, ErrLineClosed
	}
	if l.clip == nil {
		l.mu.Unlock()
		return nil, ErrNotOpen
	}
	if l.running {
		l.mu.Unlock()
		return nil, ErrAlreadyStarted
	}

	done := make(chan struct{})
	l.done = done
	l.signaled = false
	l.ended = false
	l.running = true
	l.starts++
	reader := l.clip.Reader(l.frame, l.gain)
	l.mu.Unlock()

	if !l.dev.opts.ManualEnd {
		go l.simulatePlayback(reader, done)
	}

	select {
	case l.dev.started <- l:
	default:
	}

	return done, nil
}

// simulatePlayback consumes the clip, then signals end-of-stream for the
// playback that owns done.
func (l *MockLine) simulatePlayback(r io.Reader, done chan struct{}) {
	n, _ := io.Copy(io.Discard, r)

	l.mu.Lock()
	l.played = int(n)
	l.mu.Unlock()

	if d := l.dev.opts.PlayDuration; d > 0 {
		time.Sleep(d)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done == done {
		l.endLocked()
	}
}

// End signals end-of-stream for the current playback.
func (l *MockLine) End() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.endLocked()
}

func (l *MockLine) endLocked() {
	if l.done == nil || l.signaled {
		return
	}
	l.ended = true
	l.signal()
}

func (l *MockLine) signal() {
	if l.done != nil && !l.signaled {
		l.signaled = true
		close(l.done)
	}
}

func (l *MockLine) Err() error {
	return nil
}

func (l *MockLine) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLineClosed
	}
	l.stops++
	l.running = false
	// a stopped playback never reaches its end
	l.signal()
	return nil
}

func (l *MockLine) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLineClosed
	}
	l.flushes++
	l.frame = 0
	return nil
}

func (l *MockLine) Close() error {
	l.mu.Lock()

	l.closes++
	if l.closed {
		l.mu.Unlock()
		return ErrLineClosed
	}
	early := l.done != nil && !l.ended
	l.closed = true
	l.running = false
	// wake anyone still waiting on a playback cut short
	l.signal()
	l.mu.Unlock()

	l.dev.release(early)
	return nil
}

// Gain returns the gain set on the line in decibels.
func (l *MockLine) Gain() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gain
}

// Frame returns the frame position the next Start will begin at.
func (l *MockLine) Frame() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame
}

// Clip returns the clip opened on the line, if any.
func (l *MockLine) Clip() *Clip {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clip
}

// Ended reports whether the last playback reached end-of-stream.
func (l *MockLine) Ended() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ended
}

// Closed reports whether the line has been closed.
func (l *MockLine) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// MockLineMetrics counts calls made on a MockLine.
type MockLineMetrics struct {
	Starts  int
	Stops   int
	Flushes int
	Closes  int // Close calls, including ones on an already closed line
	Played  int // bytes consumed by the last simulated playback
}

// Metrics returns the line call counters.
func (l *MockLine) Metrics() MockLineMetrics {
	l.mu.Lock()
	defer l.mu.Unlock()

	return MockLineMetrics{
		Starts:  l.starts,
		Stops:   l.stops,
		Flushes: l.flushes,
		Closes:  l.closes,
		Played:  l.played,
	}
}
