package daemon

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/bannerd/internal/clock"
	"github.com/jmylchreest/bannerd/internal/config"
	"github.com/jmylchreest/bannerd/internal/dbus"
	"github.com/jmylchreest/bannerd/internal/model"
	"github.com/jmylchreest/bannerd/internal/presenter"
	"github.com/jmylchreest/bannerd/internal/queue"
)

// Signaler reports the fate of notification ids back to D-Bus clients.
// *dbus.NotificationServer implements it.
type Signaler interface {
	IsActive(id uint32) bool
	CloseWithReason(id uint32, reason dbus.CloseReason) error
	EmitActionInvoked(id uint32, actionKey string) error
}

// Options configures a Daemon.
type Options struct {
	Config  *config.Config
	Queue   *queue.Queue
	Signals Signaler
	// Dispatch runs f on the UI loop. Queue and config are only touched
	// from there.
	Dispatch func(f func())
	Clock    clock.Clock
	Logger   *slog.Logger
}

// Daemon turns D-Bus notifications into queued banners and reports their
// closing.
type Daemon struct {
	cfg      *config.Config
	queue    *queue.Queue
	signals  Signaler
	dispatch func(func())
	states   *DisplayStateManager
	logger   *slog.Logger
}

// New wires a Daemon to its queue. The queue's close and event callbacks
// are taken over.
func New(opts Options) *Daemon {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Dispatch == nil {
		opts.Dispatch = func(f func()) { f() }
	}

	d := &Daemon{
		cfg:      opts.Config,
		queue:    opts.Queue,
		signals:  opts.Signals,
		dispatch: opts.Dispatch,
		states:   NewDisplayStateManager(opts.Clock),
		logger:   opts.Logger,
	}
	d.queue.SetCloseCallback(d.closed)
	d.queue.SetEventCallback(d.event)
	return d
}

// States returns the id tracker.
func (d *Daemon) States() *DisplayStateManager {
	return d.states
}

// HandleNotify is the server's notify handler. It may be called from any
// goroutine.
func (d *Daemon) HandleNotify(in *dbus.Incoming) {
	d.dispatch(func() { d.notify(in) })
}

// HandleClose is the server's close handler. It may be called from any
// goroutine.
func (d *Daemon) HandleClose(id uint32) {
	d.dispatch(func() { d.close(id) })
}

// ApplyConfig replaces the config used for subsequent banners.
func (d *Daemon) ApplyConfig(cfg *config.Config) {
	d.dispatch(func() {
		d.cfg = cfg
		d.queue.SetOptions(cfg.QueueOptions())
	})
}

func (d *Daemon) notify(in *dbus.Incoming) {
	id, b := in.ID, in.Banner
	cfg, err := d.ConfigFor(in.Presentation, b.Urgency)
	if err != nil {
		d.logger.Warn("ignored invalid banner hints", "id", id, "error", err)
	}

	_, replaced := d.states.Register(b.BannerID, id)
	if replaced != nil {
		d.logger.Debug("replacing banner", "id", id, "banner", replaced.BannerID)
		d.queue.HideMatching(func(content any) bool {
			old, ok := content.(*model.Banner)
			return ok && old.BannerID == replaced.BannerID
		})
	}

	if !d.queue.Enqueue(b, cfg) {
		if state, owner := d.states.Close(b.BannerID, DisplayStatusExpired); state != nil && owner {
			d.logger.Debug("banner not queued", "id", id, "banner", b.BannerID)
			d.report(id, dbus.CloseReasonExpired)
		}
	}
}

func (d *Daemon) close(id uint32) {
	state := d.states.GetByDBusID(id)
	if state == nil {
		d.report(id, dbus.CloseReasonClosed)
		return
	}
	found := d.queue.HideMatching(func(content any) bool {
		b, ok := content.(*model.Banner)
		return ok && b.BannerID == state.BannerID
	})
	if found == 0 {
		d.states.Close(state.BannerID, DisplayStatusClosed)
		d.report(id, dbus.CloseReasonClosed)
	}
}

func (d *Daemon) event(content any, e presenter.Event) {
	b, ok := content.(*model.Banner)
	if !ok {
		return
	}
	if e == presenter.DidShow {
		d.states.MarkShown(b.BannerID)
	}
}

func (d *Daemon) closed(content any, reason presenter.HideReason) {
	b, ok := content.(*model.Banner)
	if !ok {
		return
	}

	state, owner := d.states.Close(b.BannerID, statusFor(reason))
	if state == nil || !owner {
		return
	}
	d.logger.Debug("banner closed",
		"id", state.DBusID,
		"reason", reason.String(),
		"visible", state.Visible(),
	)

	if reason == presenter.HideDismissed && b.HasAction("default") {
		if err := d.signals.EmitActionInvoked(state.DBusID, "default"); err != nil {
			d.logger.Warn("failed to emit ActionInvoked", "id", state.DBusID, "error", err)
		}
	}
	d.report(state.DBusID, dbus.CloseReasonFor(reason))
}

func (d *Daemon) report(id uint32, reason dbus.CloseReason) {
	if id == 0 || d.signals == nil {
		return
	}
	if err := d.signals.CloseWithReason(id, reason); err != nil {
		d.logger.Warn("failed to emit NotificationClosed", "id", id, "error", err)
	}
}

func statusFor(reason presenter.HideReason) DisplayStatus {
	switch reason {
	case presenter.HideDismissed:
		return DisplayStatusDismissed
	case presenter.HideRequested:
		return DisplayStatusClosed
	default:
		return DisplayStatusExpired
	}
}

// ConfigFor derives the presentation of one banner from the config, the
// notification's hints and its urgency. Invalid hints are skipped and
// reported together in the returned error; the config is usable either way.
func (d *Daemon) ConfigFor(p dbus.Presentation, urgency int) (presenter.Config, error) {
	out, err := d.cfg.ToPresenterConfig()
	if err != nil {
		return presenter.DefaultConfig(), err
	}

	var errs []error
	if s := p.Style; s != "" {
		style, err := presenter.ParseStyle(s)
		switch {
		case err != nil:
			errs = append(errs, err)
		case style == presenter.StyleCustom:
			errs = append(errs, fmt.Errorf("style %q cannot be requested by a client", s))
		default:
			out.Style = style
		}
	}

	durationHinted := false
	if s := p.Duration; s != "" {
		dur, err := d.cfg.DurationFor(s)
		if err != nil {
			errs = append(errs, err)
		} else {
			out.Duration = dur
			durationHinted = true
		}
	}
	if !durationHinted {
		switch {
		case p.ExpireTimeout > 0:
			out.Duration = presenter.Seconds(float64(p.ExpireTimeout) / 1000)
		case p.ExpireTimeout == 0:
			out.Duration = presenter.Forever()
		}
		out = d.cfg.ForUrgency(out, urgency)
	}

	if s := p.Dim; s != "" {
		dim, err := d.cfg.DimFor(s)
		if err != nil {
			errs = append(errs, err)
		} else {
			out.Dim = dim
		}
	}

	if s := p.Level; s != "" {
		level, err := presenter.ParseWindowLevel(s)
		if err != nil {
			errs = append(errs, err)
		} else if out.Attachment.Kind == presenter.AttachmentWindow {
			out.Attachment = presenter.AttachWindow(level)
		}
	}

	return out, errors.Join(errs...)
}
