//go:build nocgo
// +build nocgo

package audio

import (
	"time"

	"github.com/charmbracelet/log"
)

// Stub implementations for builds without CGO

// OtoOptions configures OtoDevice.
type OtoOptions struct {
	BufferSize   time.Duration
	ReadyTimeout time.Duration
	Logger       *log.Logger
}

// DefaultOtoOptions returns the default device options.
func DefaultOtoOptions() OtoOptions {
	return OtoOptions{
		BufferSize:   50 * time.Millisecond,
		ReadyTimeout: 5 * time.Second,
	}
}

// OtoDevice stub for nocgo builds
type OtoDevice struct{}

// NewOtoDevice returns a device without output.
func NewOtoDevice(OtoOptions) *OtoDevice {
	return &OtoDevice{}
}

// Line always fails with ErrUnavailable.
func (d *OtoDevice) Line() (Line, error) {
	return nil, ErrUnavailable
}
