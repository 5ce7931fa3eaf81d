// Package clips keeps named audio clips in memory and plays them back
// synchronously.
//
// A Cache is loaded once with LoadAudio, from either the bundled sounds or
// a user data directory, then played with PlaySoundClip. Playback blocks
// for the duration of the clip. Failures never reach the caller; they are
// logged and the clip stays silent.
package clips
