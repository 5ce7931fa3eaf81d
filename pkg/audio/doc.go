// Package audio provides the playback side of the clip cache: mixing lines
// acquired from a Device, gain control and end-of-stream notification.
//
// OtoDevice plays through the system mixer using oto/v3. MockDevice
// simulates lines for tests and counts every acquire and release.
package audio
