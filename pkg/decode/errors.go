package decode

import "errors"

var (
	// ErrUnknownFormat is returned when the data matches no known container.
	ErrUnknownFormat = errors.New("unknown audio format")

	// ErrNoDecoder is returned when no decoder is registered for a format.
	ErrNoDecoder = errors.New("no decoder registered for format")

	ErrNotWAV  = errors.New("not a WAV file")
	ErrNotAIFF = errors.New("not an AIFF file")

	// ErrUnsupportedEncoding is returned for compressed or non-PCM payloads.
	ErrUnsupportedEncoding = errors.New("unsupported audio encoding")

	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")
)
