package decode

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

type vorbisStream struct {
	dec      *oggvorbis.Reader
	channels int
}

func (s *vorbisStream) SampleRate() int { return s.dec.SampleRate() }
func (s *vorbisStream) Channels() int   { return s.channels }

func (s *vorbisStream) ReadSamples(dst []float32) (int, error) {
	// the reader only hands out whole frames
	dst = dst[:len(dst)-len(dst)%s.channels]
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	if err == io.EOF {
		err = nil
	}
	return n, err
}

// VorbisDecoder decodes Ogg Vorbis audio.
type VorbisDecoder struct{}

// Decode implements Decoder.
func (VorbisDecoder) Decode(r io.ReadSeeker) (Stream, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &vorbisStream{
		dec:      dec,
		channels: dec.Channels(),
	}, nil
}
