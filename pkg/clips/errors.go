package clips

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable is reported when a clip's bytes cannot be read.
	ErrSourceUnavailable = errors.New("clip source unavailable")
	// ErrDecode is reported when a clip's bytes are not playable audio.
	ErrDecode = errors.New("clip decode failed")
	// ErrDevice is reported when the audio device refuses a line.
	ErrDevice = errors.New("audio device failure")
	// ErrInterrupted is reported when a playback is cancelled.
	ErrInterrupted = errors.New("playback interrupted")
	// ErrNilSource is reported when a source yields no reader.
	ErrNilSource = errors.New("nil clip source")
)

// ClipError records the operation and clip a failure happened in.
type ClipError struct {
	Op   string
	Clip string
	Err  error
}

func (e *ClipError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Clip, e.Err)
}

func (e *ClipError) Unwrap() error {
	return e.Err
}

// wrap classifies err under kind unless it already is one.
func wrap(op, clip string, kind, err error) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, kind) {
		err = fmt.Errorf("%w: %w", kind, err)
	}
	return &ClipError{Op: op, Clip: clip, Err: err}
}
