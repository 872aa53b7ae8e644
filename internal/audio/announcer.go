package audio

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/bannerd/internal/config"
)

// Announcer plays the cue when a banner is announced or takes focus.
// It implements presenter.Announcer.
type Announcer struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	config  config.AudioConfig
	onError func(error)

	// failed is the cue that last failed to play, so a broken file is
	// reported once rather than on every banner.
	failed   string
	reported bool
	wg       sync.WaitGroup
}

// NewAnnouncer creates an announcer on the system speaker.
func NewAnnouncer(cfg config.AudioConfig, logger *slog.Logger) *Announcer {
	return NewAnnouncerWithPlayer(cfg, NewPlayer(logger), logger)
}

// NewAnnouncerWithPlayer creates an announcer using player.
func NewAnnouncerWithPlayer(cfg config.AudioConfig, player *Player, logger *slog.Logger) *Announcer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Announcer{logger: logger, player: player}
	a.UpdateConfig(cfg)
	return a
}

// SetErrorHandler sets the callback for cues that fail to play.
func (a *Announcer) SetErrorHandler(fn func(error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onError = fn
}

// UpdateConfig applies new audio settings. This is called when the
// config file is hot-reloaded; a changed cue file is decoded again.
func (a *Announcer) UpdateConfig(cfg config.AudioConfig) {
	a.mu.Lock()
	a.config = cfg
	a.failed = ""
	a.reported = false
	a.mu.Unlock()

	a.player.SetVolume(float64(cfg.Volume) / 100.0)
	a.player.ClearCache()
	a.logger.Debug("announcer config updated", "enabled", cfg.Enabled, "cue", cfg.Cue)
}

// Announce plays the cue for a banner that appeared.
func (a *Announcer) Announce(message string) {
	a.logger.Debug("announce", "message", message)
	a.cue()
}

// FocusOn plays the cue for a banner that took focus.
func (a *Announcer) FocusOn(any) {
	a.logger.Debug("announce focus")
	a.cue()
}

// cue plays in the background so decoding never blocks the UI loop.
func (a *Announcer) cue() {
	a.mu.RLock()
	enabled := a.config.Enabled
	a.mu.RUnlock()
	if !enabled {
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.play()
	}()
}

func (a *Announcer) play() {
	a.mu.RLock()
	path := a.config.Cue
	a.mu.RUnlock()

	var err error
	if path == "" {
		err = a.player.PlayTone()
	} else {
		err = a.player.Play(path)
	}
	if err == nil {
		return
	}

	a.mu.Lock()
	report := !a.reported || a.failed != path
	a.failed = path
	a.reported = true
	onError := a.onError
	a.mu.Unlock()

	a.logger.Warn("failed to play announcement cue", "cue", path, "error", err)
	if report && onError != nil {
		onError(err)
	}
}

// Wait blocks until cues already started have been handed to the
// speaker.
func (a *Announcer) Wait() {
	a.wg.Wait()
}

// Close stops playback.
func (a *Announcer) Close() {
	a.wg.Wait()
	a.player.Close()
}
