package decode

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

// intPCMReader is the common surface of the go-audio container decoders.
type intPCMReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// intStream adapts an integer PCM decoder to Stream.
type intStream struct {
	dec        intPCMReader
	format     *goaudio.Format
	sampleRate int
	channels   int
	scale      float32
	buf        *goaudio.IntBuffer
}

func newIntStream(dec intPCMReader, format *goaudio.Format, bitDepth int) (*intStream, error) {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	return &intStream{
		dec:        dec,
		format:     format,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		scale:      float32(int64(1) << (bitDepth - 1)),
	}, nil
}

func (s *intStream) SampleRate() int { return s.sampleRate }
func (s *intStream) Channels() int   { return s.channels }

func (s *intStream) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.buf == nil || cap(s.buf.Data) < len(dst) {
		s.buf = &goaudio.IntBuffer{
			Data:   make([]int, len(dst)),
			Format: s.format,
		}
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}

	for i := range n {
		dst[i] = float32(s.buf.Data[i]) / s.scale
	}
	return n, nil
}
