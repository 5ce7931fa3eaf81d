package audio

import (
	"errors"

	"github.com/charmbracelet/clips/pkg/decode"
)

// Common errors for devices and lines.
var (
	// ErrDeviceBusy is returned when no more lines can be acquired.
	ErrDeviceBusy = errors.New("audio device busy")

	// ErrUnavailable is returned when no audio output exists.
	ErrUnavailable = errors.New("audio output unavailable")

	// ErrFormatMismatch is returned when a clip does not match the output
	// format the device was initialized with.
	ErrFormatMismatch = errors.New("clip format does not match output format")

	ErrLineClosed     = errors.New("line is closed")
	ErrNotOpen        = errors.New("line has no clip open")
	ErrAlreadyStarted = errors.New("line already started")
)

// Device hands out mixing lines.
type Device interface {
	// Line acquires a new line. The caller owns it and must Close it.
	Line() (Line, error)
}

// Line is a single playback channel on a Device.
//
// The usual sequence is Open, SetGain, SetFramePosition, Start, wait on the
// returned channel, then Stop, Flush and Close.
type Line interface {
	// Open decodes the whole stream into the line.
	Open(s decode.Stream) error
	// SetGain sets the gain in decibels for the next Start. Values are
	// clamped to [MinGain, MaxGain].
	SetGain(db float64) error
	// SetFramePosition moves the start position of the next Start.
	SetFramePosition(frame int64) error
	// Start begins playback. The returned channel is closed once playback
	// reaches the end of the clip or the line is stopped.
	Start() (<-chan struct{}, error)
	// Err reports an error raised by the output during the last playback.
	Err() error
	// Stop halts playback.
	Stop() error
	// Flush discards any audio queued on the output.
	Flush() error
	// Close releases the line. Further calls fail with ErrLineClosed.
	Close() error
}
