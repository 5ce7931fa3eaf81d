package decode

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag of the fmt chunk.
const wavFormatPCM = 1

// WAVDecoder decodes uncompressed PCM WAV files.
type WAVDecoder struct{}

// Decode implements Decoder.
func (WAVDecoder) Decode(r io.ReadSeeker) (Stream, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotWAV, err)
		}
		return nil, ErrNotWAV
	}

	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: wav format tag %d", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}

	format := dec.Format()
	if format == nil || format.NumChannels == 0 || format.SampleRate == 0 {
		return nil, ErrNotWAV
	}

	return newIntStream(dec, format, int(dec.BitDepth))
}
