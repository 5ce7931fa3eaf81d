package clips

import (
	"io"
	"io/fs"
	"path/filepath"

	"github.com/charmbracelet/clips/assets"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/afero"
)

// Source opens clip payloads by name.
type Source interface {
	Open(name string) (io.ReadCloser, error)
}

// BundledSource serves clips from a read-only resource namespace.
type BundledSource struct {
	FS fs.FS
}

// NewBundledSource returns a source over the sounds shipped in assets.
func NewBundledSource() BundledSource {
	return BundledSource{FS: assets.Sounds()}
}

// Open implements Source.
func (s BundledSource) Open(name string) (io.ReadCloser, error) {
	if s.FS == nil {
		return nil, fs.ErrNotExist
	}
	return s.FS.Open(name)
}

// FileSource serves clips from a directory.
type FileSource struct {
	fs  afero.Fs
	dir string
}

// NewFileSource returns a source reading <dir>/<name> from fsys.
func NewFileSource(fsys afero.Fs, dir string) *FileSource {
	return &FileSource{fs: fsys, dir: dir}
}

// Dir returns the directory clips are read from.
func (s *FileSource) Dir() string {
	return s.dir
}

// Path returns the file a clip name resolves to.
func (s *FileSource) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Open implements Source.
func (s *FileSource) Open(name string) (io.ReadCloser, error) {
	return s.fs.Open(s.Path(name))
}

// DefaultDataDir returns the user data directory custom clips are read from
// when no other directory is configured.
func DefaultDataDir() string {
	dirs, err := gap.NewScope(gap.User, "clips").DataDirs()
	if err != nil || len(dirs) == 0 {
		return "."
	}
	return dirs[0]
}
