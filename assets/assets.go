// Package assets holds the sounds bundled with clips.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed sounds/*.wav
var sounds embed.FS

// Names lists the bundled clips.
var Names = []string{"mage.wav", "protect.wav", "range.wav"}

// Sounds returns the bundled sounds, rooted so that clips open by file name.
func Sounds() fs.FS {
	sub, err := fs.Sub(sounds, "sounds")
	if err != nil {
		return sounds
	}
	return sub
}
