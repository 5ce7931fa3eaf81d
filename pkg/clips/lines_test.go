package clips

import (
	"context"
	"testing"
	"time"

	"github.com/charmbracelet/clips/pkg/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLineCache(t *testing.T, dev audio.Device) (*LineCache, *syncBuffer) {
	t.Helper()

	logger, buf := testLogger()
	bundled := newCountingSource(map[string][]byte{
		"mage.wav":  clipWAV(),
		"range.wav": clipWAV(),
	})
	return NewLineCache(dev, WithLogger(logger), WithBundled(bundled)), buf
}

func TestLineCache_LoadPlayUnload(t *testing.T) {
	dev := audio.NewMockDevice(audio.MockOptions{MaxLines: 4})
	c, logs := newTestLineCache(t, dev)

	c.LoadAudio(ModeBundled, "mage.wav", "range.wav", "missing.wav")
	assert.Equal(t, []string{"mage.wav", "range.wav"}, c.Names())
	assert.Equal(t, 2, dev.Metrics().Open)

	c.PlaySoundClip("mage.wav")
	c.PlaySoundClip("mage.wav")
	c.PlaySoundClip("missing.wav")

	lines := dev.Lines()
	require.Len(t, lines, 2)
	lm := lines[0].Metrics()
	assert.Equal(t, 2, lm.Starts)
	assert.Equal(t, 2, lm.Stops)
	assert.Equal(t, 2, lm.Flushes)
	assert.Zero(t, lm.Closes)
	assert.True(t, lines[0].Ended())
	assert.NotContains(t, logs.String(), "Unable to play sound")

	c.UnloadAudio()
	m := dev.Metrics()
	assert.Equal(t, m.Opened, m.Closed)
	assert.Zero(t, m.Open)
	assert.Zero(t, m.ClosedEarly)
	assert.Empty(t, c.Names())

	c.UnloadAudio()
	assert.Equal(t, 2, dev.Metrics().Closed)
}

func TestLineCache_Disabled(t *testing.T) {
	src := newCountingSource(map[string][]byte{"mage.wav": clipWAV()})
	dev := audio.NewMockDevice(audio.MockOptions{})

	c := NewLineCache(dev, WithBundled(src), WithCustom(src))
	c.LoadAudio(ModeDisabled, "mage.wav")

	assert.Zero(t, src.Calls())
	assert.Zero(t, dev.Metrics().Opened)
}

func TestLineCache_ReloadClosesOldLine(t *testing.T) {
	dev := audio.NewMockDevice(audio.MockOptions{MaxLines: 4})
	c, _ := newTestLineCache(t, dev)

	c.LoadAudio(ModeBundled, "mage.wav")
	c.LoadAudio(ModeBundled, "mage.wav")

	lines := dev.Lines()
	require.Len(t, lines, 2)
	assert.True(t, lines[0].Closed())
	assert.False(t, lines[1].Closed())
	assert.Equal(t, []string{"mage.wav"}, c.Names())
}

func TestLineCache_ReloadAtCapacity(t *testing.T) {
	dev := audio.NewMockDevice(audio.MockOptions{MaxLines: 1})
	c, logs := newTestLineCache(t, dev)

	c.LoadAudio(ModeBundled, "mage.wav")
	c.LoadAudio(ModeBundled, "mage.wav")

	lines := dev.Lines()
	require.Len(t, lines, 2)
	assert.True(t, lines[0].Closed())
	assert.False(t, lines[1].Closed())
	assert.Zero(t, dev.Metrics().Rejected)
	assert.NotContains(t, logs.String(), audio.ErrDeviceBusy.Error())
	assert.Equal(t, []string{"mage.wav"}, c.Names())

	c.PlaySoundClip("mage.wav")
	assert.Equal(t, 1, lines[1].Metrics().Starts)
}

func TestLineCache_DeviceFull(t *testing.T) {
	dev := audio.NewMockDevice(audio.MockOptions{MaxLines: 1})
	c, logs := newTestLineCache(t, dev)

	c.LoadAudio(ModeBundled, "mage.wav", "range.wav")

	assert.Len(t, c.Names(), 1)
	assert.Equal(t, 1, dev.Metrics().Rejected)
	assert.Contains(t, logs.String(), audio.ErrDeviceBusy.Error())
}

func TestLineCache_FailedLineDropped(t *testing.T) {
	dev := audio.NewMockDevice(audio.MockOptions{MaxLines: 4})
	c, logs := newTestLineCache(t, dev)
	c.LoadAudio(ModeBundled, "mage.wav")

	lines := dev.Lines()
	require.Len(t, lines, 1)
	require.NoError(t, lines[0].Close())

	c.PlaySoundClip("mage.wav")

	assert.False(t, c.Loaded("mage.wav"))
	assert.Contains(t, logs.String(), "Unable to play sound")
}

func TestLineCache_InterruptKeepsLine(t *testing.T) {
	dev := audio.NewMockDevice(audio.MockOptions{MaxLines: 4, ManualEnd: true})
	c, _ := newTestLineCache(t, dev)
	c.LoadAudio(ModeBundled, "mage.wav")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.PlaySoundClipContext(ctx, "mage.wav")
	}()

	line := <-dev.Started()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("play did not return after cancel")
	}

	assert.False(t, line.Closed())
	assert.True(t, c.Loaded("mage.wav"))

	// the line can be started again
	go c.PlaySoundClip("mage.wav")
	again := <-dev.Started()
	assert.Same(t, line, again)
	again.End()

	c.UnloadAudio()
	assert.True(t, line.Closed())
}

func TestLineCache_SetVolume(t *testing.T) {
	c := NewLineCache(audio.NewMockDevice(audio.MockOptions{}))

	c.SetVolume(300)
	assert.Equal(t, MaxVolume, c.Volume())
	c.SetVolume(-50)
	assert.Equal(t, MinVolume, c.Volume())
}
