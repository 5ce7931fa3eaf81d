package audio

import (
	"encoding/binary"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/clips/pkg/decode"
)

// Clip is a fully decoded clip held in memory.
type Clip struct {
	samples    []float32
	sampleRate int
	channels   int
}

// NewClip drains s into a Clip.
func NewClip(s decode.Stream) (*Clip, error) {
	samples, err := decode.ReadAll(s)
	if err != nil {
		return nil, err
	}

	channels := s.Channels()
	if channels <= 0 {
		channels = 1
	}

	return &Clip{
		samples:    samples,
		sampleRate: s.SampleRate(),
		channels:   channels,
	}, nil
}

// SampleRate returns the clip sample rate in Hz.
func (c *Clip) SampleRate() int { return c.sampleRate }

// Channels returns the clip channel count.
func (c *Clip) Channels() int { return c.channels }

// Frames returns the clip length in frames.
func (c *Clip) Frames() int64 {
	return int64(len(c.samples) / c.channels)
}

// Duration returns the clip length.
func (c *Clip) Duration() time.Duration {
	if c.sampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.sampleRate)
}

// Reader returns a signed 16-bit little-endian PCM reader starting at frame
// with the given gain in decibels applied.
func (c *Clip) Reader(frame int64, db float64) *PCMReader {
	frame = max(0, min(frame, c.Frames()))
	return &PCMReader{
		clip:   c,
		pos:    int(frame) * c.channels,
		linear: float32(GainToLinear(db)),
		eof:    make(chan struct{}),
	}
}

// PCMReader streams a Clip as int16 PCM.
type PCMReader struct {
	clip   *Clip
	pos    int
	linear float32

	mu      sync.Mutex
	eof     chan struct{}
	eofOnce sync.Once
}

// Read implements io.Reader.
func (r *PCMReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	samples := r.clip.samples
	if r.pos >= len(samples) {
		r.eofOnce.Do(func() { close(r.eof) })
		return 0, io.EOF
	}

	n := min(len(p)/2, len(samples)-r.pos)
	for i := range n {
		v := float32ToInt16(samples[r.pos+i] * r.linear)
		binary.LittleEndian.PutUint16(p[2*i:], uint16(v))
	}
	r.pos += n

	return 2 * n, nil
}

// EOF is closed once the reader has handed out every sample.
func (r *PCMReader) EOF() <-chan struct{} {
	return r.eof
}

func float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return int16(x * 32767.0)
}
