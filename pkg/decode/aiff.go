package decode

import (
	"io"

	"github.com/go-audio/aiff"
)

// AIFFDecoder decodes uncompressed AIFF files.
type AIFFDecoder struct{}

// Decode implements Decoder.
func (AIFFDecoder) Decode(r io.ReadSeeker) (Stream, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotAIFF
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil || format.NumChannels == 0 || format.SampleRate == 0 {
		return nil, ErrNotAIFF
	}

	return newIntStream(dec, format, int(dec.BitDepth))
}
