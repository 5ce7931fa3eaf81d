package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces 16-bit little-endian stereo.
const mp3Channels = 2

type mp3Stream struct {
	dec        *gomp3.Decoder
	sampleRate int
	buf        []byte
}

func (s *mp3Stream) SampleRate() int { return s.sampleRate }
func (s *mp3Stream) Channels() int   { return mp3Channels }

func (s *mp3Stream) ReadSamples(dst []float32) (int, error) {
	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := io.ReadFull(s.dec, s.buf)
	samples := n / 2
	for i := range samples {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(s.buf[2*i:]))) / 32768.0
	}

	if samples == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return samples, err
}

// MP3Decoder decodes MPEG-1/2 Layer III audio.
type MP3Decoder struct{}

// Decode implements Decoder.
func (MP3Decoder) Decode(r io.ReadSeeker) (Stream, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &mp3Stream{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
