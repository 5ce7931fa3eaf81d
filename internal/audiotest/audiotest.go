// Package audiotest builds in-memory audio fixtures for tests.
package audiotest

import (
	"bytes"
	"encoding/binary"
	"math"
)

// WAV returns a minimal 16-bit PCM WAV file holding samples.
func WAV(sampleRate, channels int, samples []int16) []byte {
	buf := new(bytes.Buffer)

	bits := uint16(16)
	blockAlign := uint16(channels) * bits / 8
	byteRate := uint32(sampleRate) * uint32(blockAlign)
	dataSize := uint32(len(samples) * 2)

	// RIFF header
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, byteRate)
	_ = binary.Write(buf, binary.LittleEndian, blockAlign)
	_ = binary.Write(buf, binary.LittleEndian, bits)

	// data chunk
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataSize)
	for _, s := range samples {
		_ = binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes()
}

// Tone returns a mono sine wave of the given number of frames.
func Tone(sampleRate, frames int, frequency float64) []int16 {
	samples := make([]int16, frames)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = int16(math.Sin(2*math.Pi*frequency*t) * 16384)
	}
	return samples
}

// ToneWAV is WAV(sampleRate, 1, Tone(sampleRate, frames, 440)).
func ToneWAV(sampleRate, frames int) []byte {
	return WAV(sampleRate, 1, Tone(sampleRate, frames, 440))
}
