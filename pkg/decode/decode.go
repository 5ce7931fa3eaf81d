package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Stream is a decoded PCM source.
type Stream interface {
	// SampleRate of the stream in Hz.
	SampleRate() int
	// Channels count (1 = mono, 2 = stereo).
	Channels() int
	// ReadSamples fills dst with interleaved samples in [-1, 1] and returns
	// the number of values written. It returns io.EOF once the stream is
	// exhausted and no values were written.
	ReadSamples(dst []float32) (int, error)
}

// Decoder constructs a Stream from an encoded payload.
type Decoder interface {
	Decode(r io.ReadSeeker) (Stream, error)
}

// Format identifies an audio container.
type Format string

const (
	FormatWAV    Format = "wav"
	FormatAIFF   Format = "aiff"
	FormatMP3    Format = "mp3"
	FormatVorbis Format = "ogg vorbis"
)

// Detect sniffs the container format from the leading bytes of data.
func Detect(data []byte) (Format, bool) {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV, true
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("FORM")) &&
		(bytes.Equal(data[8:12], []byte("AIFF")) || bytes.Equal(data[8:12], []byte("AIFC"))):
		return FormatAIFF, true
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("OggS")):
		return FormatVorbis, true
	case len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")):
		return FormatMP3, true
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return FormatMP3, true
	}
	return "", false
}

// Registry maps formats to decoders. It is safe for concurrent use.
type Registry struct {
	codecs map[Format]Decoder
	mu     sync.RWMutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[Format]Decoder)}
}

// DefaultRegistry returns a registry with every built-in decoder.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(FormatWAV, WAVDecoder{})
	r.Register(FormatAIFF, AIFFDecoder{})
	r.Register(FormatMP3, MP3Decoder{})
	r.Register(FormatVorbis, VorbisDecoder{})
	return r
}

// Register installs d for format, replacing any previous decoder.
func (r *Registry) Register(format Format, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[format] = d
}

// Get returns the decoder registered for format.
func (r *Registry) Get(format Format) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Lookup sniffs the format of data and returns the decoder registered
// for it.
func (r *Registry) Lookup(data []byte) (Format, Decoder, error) {
	format, ok := Detect(data)
	if !ok {
		return "", nil, ErrUnknownFormat
	}

	d, ok := r.Get(format)
	if !ok {
		return format, nil, fmt.Errorf("%w: %s", ErrNoDecoder, format)
	}
	return format, d, nil
}

// Decode sniffs the format of data and decodes it.
func (r *Registry) Decode(data []byte) (Stream, error) {
	format, d, err := r.Lookup(data)
	if err != nil {
		return nil, err
	}

	s, err := d.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	return s, nil
}

// ReadAll drains s into memory.
func ReadAll(s Stream) ([]float32, error) {
	channels := s.Channels()
	if channels <= 0 {
		channels = 1
	}
	// whole frames per read
	buf := make([]float32, 4096-4096%channels)

	var out []float32
	for {
		n, err := s.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		if n == 0 {
			return out, nil
		}
	}
}
