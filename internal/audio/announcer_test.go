package audio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/bannerd/internal/config"
)

func newTestAnnouncer(cfg config.AudioConfig) (*Announcer, *fakeSink) {
	sink := &fakeSink{}
	return NewAnnouncerWithPlayer(cfg, NewPlayerWithSink(sink, nil), nil), sink
}

func TestAnnouncer_Disabled(t *testing.T) {
	a, sink := newTestAnnouncer(config.AudioConfig{Enabled: false, Volume: 100})

	a.Announce("hello")
	a.FocusOn(nil)
	a.Wait()

	assert.Zero(t, sink.playCount())
}

func TestAnnouncer_PlaysBuiltinCue(t *testing.T) {
	a, sink := newTestAnnouncer(config.AudioConfig{Enabled: true, Volume: 100})

	a.Announce("Battery low, 10% remaining")
	a.FocusOn("banner")
	a.Wait()

	assert.Equal(t, 2, sink.playCount())
}

func TestAnnouncer_PlaysCueFile(t *testing.T) {
	path := writeCue(t, t.TempDir())
	a, sink := newTestAnnouncer(config.AudioConfig{Enabled: true, Volume: 80, Cue: path})

	a.Announce("hello")
	a.Wait()

	assert.Equal(t, 1, sink.playCount())
	assert.InDelta(t, 0.8, a.player.Volume(), 1e-9)
}

func TestAnnouncer_ReportsBrokenCueOnce(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.wav")
	a, sink := newTestAnnouncer(config.AudioConfig{Enabled: true, Volume: 100, Cue: missing})

	var errs []error
	a.SetErrorHandler(func(err error) { errs = append(errs, err) })

	a.Announce("one")
	a.Wait()
	a.Announce("two")
	a.Wait()

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "failed to open sound file")
	assert.Zero(t, sink.playCount())

	// A reload gives the cue another chance to be reported.
	a.UpdateConfig(config.AudioConfig{Enabled: true, Volume: 100, Cue: missing})
	a.Announce("three")
	a.Wait()
	assert.Len(t, errs, 2)
}

func TestAnnouncer_Close(t *testing.T) {
	a, sink := newTestAnnouncer(config.AudioConfig{Enabled: true, Volume: 100})

	a.Announce("hello")
	a.Close()

	assert.Equal(t, 1, sink.playCount())
	assert.True(t, sink.closed)
}
