package audio

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu         sync.Mutex
	initErr    error
	inits      int
	sampleRate beep.SampleRate
	played     []beep.Streamer
	closed     bool
}

func (s *fakeSink) Init(sr beep.SampleRate, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inits++
	s.sampleRate = sr
	return s.initErr
}

func (s *fakeSink) Play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.played = append(s.played, st)
}

func (s *fakeSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeSink) playCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.played)
}

// writeCue writes the built-in cue to a WAV file in dir.
func writeCue(t *testing.T, dir string) string {
	t.Helper()
	buffer, err := builtinCue()
	require.NoError(t, err)

	path := filepath.Join(dir, "cue.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, wav.Encode(f, buffer.Streamer(0, buffer.Len()), buffer.Format()))
	require.NoError(t, f.Close())
	return path
}

func TestPlayer_PlayTone(t *testing.T) {
	sink := &fakeSink{}
	p := NewPlayerWithSink(sink, nil)

	require.NoError(t, p.PlayTone())
	require.NoError(t, p.PlayTone())

	assert.Equal(t, 1, sink.inits)
	assert.Equal(t, cueSampleRate, sink.sampleRate)
	assert.Equal(t, 2, sink.playCount())
}

func TestPlayer_PlayTone_InitError(t *testing.T) {
	sink := &fakeSink{initErr: errors.New("no device")}
	p := NewPlayerWithSink(sink, nil)

	err := p.PlayTone()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no device")
	assert.Zero(t, sink.playCount())
}

func TestPlayer_PlayFile(t *testing.T) {
	sink := &fakeSink{}
	p := NewPlayerWithSink(sink, nil)
	path := writeCue(t, t.TempDir())

	require.NoError(t, p.Play(path))
	assert.Equal(t, 1, sink.playCount())

	// Decoded sounds are cached.
	require.NoError(t, os.Remove(path))
	require.NoError(t, p.Play(path))
	assert.Equal(t, 2, sink.playCount())

	p.ClearCache()
	assert.Error(t, p.Play(path))
}

func TestPlayer_PlayErrors(t *testing.T) {
	p := NewPlayerWithSink(&fakeSink{}, nil)
	dir := t.TempDir()

	assert.NoError(t, p.Play(""))

	err := p.Play(filepath.Join(dir, "cue.flac"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported audio format")

	err = p.Play(filepath.Join(dir, "missing.wav"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open sound file")

	garbage := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("not a wav file"), 0644))
	err = p.Play(garbage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode sound")
}

func TestPlayer_Volume(t *testing.T) {
	sink := &fakeSink{}
	p := NewPlayerWithSink(sink, nil)

	assert.Equal(t, 1.0, p.Volume())
	p.SetVolume(1.5)
	assert.Equal(t, 1.0, p.Volume())
	p.SetVolume(-1)
	assert.Equal(t, 0.0, p.Volume())

	p.SetVolume(0.5)
	require.NoError(t, p.PlayTone())
	require.Equal(t, 1, sink.playCount())
	vol, ok := sink.played[0].(*effects.Volume)
	require.True(t, ok, "quiet playback is wrapped in a volume effect")
	assert.InDelta(t, -1.0, vol.Volume, 1e-9)
	assert.False(t, vol.Silent)
}

func TestVolumeToExponent(t *testing.T) {
	assert.InDelta(t, 0.0, volumeToExponent(1), 1e-9)
	assert.InDelta(t, -2.0, volumeToExponent(0.25), 1e-9)
	assert.Equal(t, -10.0, volumeToExponent(0))
}

func TestPlayer_Close(t *testing.T) {
	sink := &fakeSink{}
	p := NewPlayerWithSink(sink, nil)

	p.Close()
	assert.False(t, sink.closed, "sink never initialized")

	require.NoError(t, p.PlayTone())
	p.Close()
	assert.True(t, sink.closed)
}
