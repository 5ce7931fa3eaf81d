// Package decode turns raw audio file bytes into PCM sample streams.
//
// Formats are sniffed from their container magic and dispatched through a
// Registry. WAV, AIFF, MP3 and Ogg Vorbis are supported by DefaultRegistry.
// No resampling or channel conversion happens here: a Stream reports the
// native sample rate and channel count of its source.
package decode
