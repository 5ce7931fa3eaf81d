package clips

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/clips/internal/audiotest"
	"github.com/charmbracelet/clips/pkg/decode"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const dataDir = "/data"

// countingSource records every Open call.
type countingSource struct {
	mu    sync.Mutex
	calls []string
	files map[string][]byte
}

func newCountingSource(files map[string][]byte) *countingSource {
	return &countingSource{files: files}
}

func (s *countingSource) Open(name string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, name)
	data, ok := s.files[name]
	if !ok {
		return nil, afero.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *countingSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// nilSource returns neither a reader nor an error.
type nilSource struct{}

func (nilSource) Open(string) (io.ReadCloser, error) { return nil, nil }

// failingDecoder rejects every payload.
type failingDecoder struct{}

var errBadPayload = errors.New("bad payload")

func (failingDecoder) Decode(io.ReadSeeker) (decode.Stream, error) {
	return nil, errBadPayload
}

// syncBuffer is a log sink safe for the load workers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testLogger() (*log.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	logger := log.NewWithOptions(buf, log.Options{Level: log.DebugLevel})
	return logger, buf
}

func clipWAV() []byte {
	return audiotest.ToneWAV(8000, 80)
}

// memFiles writes files into an in-memory data directory.
func memFiles(t *testing.T, names ...string) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(dataDir, 0o755))
	for _, name := range names {
		require.NoError(t, afero.WriteFile(fsys, dataDir+"/"+name, clipWAV(), 0o644))
	}
	return fsys
}
