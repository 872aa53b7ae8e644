package daemon

import (
	"io"
	"log/slog"
	"testing"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/bannerd/internal/clock"
	"github.com/jmylchreest/bannerd/internal/config"
	"github.com/jmylchreest/bannerd/internal/dbus"
	"github.com/jmylchreest/bannerd/internal/model"
	"github.com/jmylchreest/bannerd/internal/presenter"
	"github.com/jmylchreest/bannerd/internal/queue"
)

type stubHost struct{}

func (h *stubHost) Attach(*presenter.Overlay) error { return nil }
func (h *stubHost) Detach(*presenter.Overlay)       {}
func (h *stubHost) Ref() presenter.Ref[presenter.Host] {
	return presenter.Weak(h, func(h *stubHost) presenter.Host { return h })
}

type stubTree struct {
	windows []presenter.WindowLevel
}

func (t *stubTree) CurrentTopLevelHost() (presenter.Host, bool)           { return nil, false }
func (t *stubTree) PresentedHost(presenter.Host) (presenter.Host, bool)   { return nil, false }
func (t *stubTree) IsEligible(presenter.Host) bool                        { return true }
func (t *stubTree) IsChromeVisible(presenter.Host, presenter.Chrome) bool { return false }
func (t *stubTree) SelectAttachmentDescendant(h presenter.Host, _ presenter.Hint) presenter.Host {
	return h
}
func (t *stubTree) NewWindowHost(level presenter.WindowLevel, _ bool) (presenter.Host, error) {
	t.windows = append(t.windows, level)
	return &stubHost{}, nil
}
func (t *stubTree) RemoveWindowHost(presenter.Host) {}

type closeSignal struct {
	id     uint32
	reason dbus.CloseReason
}

type fakeSignals struct {
	active  map[uint32]bool
	closed  []closeSignal
	actions []string
}

func (s *fakeSignals) IsActive(id uint32) bool { return s.active[id] }

func (s *fakeSignals) CloseWithReason(id uint32, reason dbus.CloseReason) error {
	if !s.active[id] {
		return nil
	}
	delete(s.active, id)
	s.closed = append(s.closed, closeSignal{id, reason})
	return nil
}

func (s *fakeSignals) EmitActionInvoked(id uint32, key string) error {
	s.actions = append(s.actions, key)
	return nil
}

type fixture struct {
	t       *testing.T
	d       *Daemon
	q       *queue.Queue
	clock   *clock.FakeClock
	tree    *stubTree
	signals *fakeSignals
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		clock:   clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		tree:    &stubTree{},
		signals: &fakeSignals{active: map[uint32]bool{}},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default()
	env := presenter.Environment{Tree: f.tree, Clock: f.clock, Logger: logger}
	f.q = queue.New(env, cfg.QueueOptions(), logger)
	f.d = New(Options{
		Config:  cfg,
		Queue:   f.q,
		Signals: f.signals,
		Clock:   f.clock,
		Logger:  logger,
	})
	return f
}

// notify mimics the server: the id becomes active before the handler runs.
func (f *fixture) notify(id uint32, n *dbus.Notification) {
	f.t.Helper()
	in, err := n.Parse(id)
	require.NoError(f.t, err)
	f.signals.active[id] = true
	f.d.HandleNotify(in)
}

func (f *fixture) current() *model.Banner {
	c, ok := f.q.Current()
	if !ok {
		return nil
	}
	return c.(*model.Banner)
}

func note(summary string) *dbus.Notification {
	return &dbus.Notification{AppName: "test", Summary: summary, ExpireTimeout: -1}
}

func TestDaemon_NotifyShowsAndExpires(t *testing.T) {
	f := newFixture(t)

	f.notify(1, note("hello"))
	b := f.current()
	require.NotNil(t, b)
	assert.Equal(t, "hello", b.Title)
	assert.Equal(t, uint32(1), b.NotificationID)
	assert.Equal(t, []presenter.WindowLevel{presenter.LevelOverlay}, f.tree.windows)

	state := f.d.States().GetByDBusID(1)
	require.NotNil(t, state)
	assert.Equal(t, DisplayStatusActive, state.Status)

	f.clock.Advance(presenter.AutomaticTimeout)
	assert.Nil(t, f.current())
	assert.Equal(t, []closeSignal{{1, dbus.CloseReasonExpired}}, f.signals.closed)
	assert.Equal(t, 0, f.d.States().Count())
}

func TestDaemon_ExpireTimeout(t *testing.T) {
	f := newFixture(t)

	n := note("slow")
	n.ExpireTimeout = 3000
	f.notify(1, n)

	f.clock.Advance(2 * time.Second)
	assert.NotNil(t, f.current())
	f.clock.Advance(time.Second)
	assert.Nil(t, f.current())
	assert.Equal(t, []closeSignal{{1, dbus.CloseReasonExpired}}, f.signals.closed)
}

func TestDaemon_CloseNotification(t *testing.T) {
	f := newFixture(t)

	f.notify(1, note("one"))
	f.notify(2, note("two"))

	f.d.HandleClose(2)
	assert.Equal(t, []closeSignal{{2, dbus.CloseReasonClosed}}, f.signals.closed, "queued banner removed")

	f.d.HandleClose(1)
	assert.Nil(t, f.current())
	assert.Equal(t, []closeSignal{
		{2, dbus.CloseReasonClosed},
		{1, dbus.CloseReasonClosed},
	}, f.signals.closed)
}

func TestDaemon_CloseUnknownID(t *testing.T) {
	f := newFixture(t)
	f.signals.active[9] = true

	f.d.HandleClose(9)
	assert.Equal(t, []closeSignal{{9, dbus.CloseReasonClosed}}, f.signals.closed)
}

func TestDaemon_DismissInvokesDefaultAction(t *testing.T) {
	f := newFixture(t)

	n := note("click me")
	n.Actions = []string{"default", "Open"}
	f.notify(1, n)

	f.q.CurrentPresenter().DismissInteractively()
	assert.Equal(t, []string{"default"}, f.signals.actions)
	assert.Equal(t, []closeSignal{{1, dbus.CloseReasonDismissed}}, f.signals.closed)
}

func TestDaemon_DismissWithoutAction(t *testing.T) {
	f := newFixture(t)

	f.notify(1, note("plain"))
	f.q.CurrentPresenter().DismissInteractively()
	assert.Empty(t, f.signals.actions)
	assert.Equal(t, []closeSignal{{1, dbus.CloseReasonDismissed}}, f.signals.closed)
}

func TestDaemon_ReplaceKeepsID(t *testing.T) {
	f := newFixture(t)

	f.notify(1, note("downloading 10%"))
	first := f.current()
	require.NotNil(t, first)

	f.notify(1, note("downloading 50%"))
	assert.Empty(t, f.signals.closed, "replaced banner closes silently")

	f.clock.Advance(250 * time.Millisecond)
	second := f.current()
	require.NotNil(t, second)
	assert.Equal(t, "downloading 50%", second.Title)
	assert.Equal(t, uint32(1), second.NotificationID)

	f.clock.Advance(presenter.AutomaticTimeout)
	assert.Equal(t, []closeSignal{{1, dbus.CloseReasonExpired}}, f.signals.closed)
}

func TestDaemon_DuplicateRejected(t *testing.T) {
	f := newFixture(t)

	f.notify(1, note("same"))
	f.notify(2, note("same"))

	assert.Equal(t, 1, f.q.Count())
	assert.Equal(t, []closeSignal{{2, dbus.CloseReasonExpired}}, f.signals.closed)
}

func TestDaemon_CriticalStaysUntilClosed(t *testing.T) {
	f := newFixture(t)

	n := note("disk full")
	n.Hints = map[string]godbus.Variant{"urgency": godbus.MakeVariant(byte(2))}
	f.notify(1, n)

	f.clock.Advance(time.Hour)
	assert.NotNil(t, f.current())
	assert.Empty(t, f.signals.closed)
}

func TestDaemon_ApplyConfig(t *testing.T) {
	f := newFixture(t)

	cfg := config.Default()
	cfg.Presentation.Style = "bottom"
	cfg.Queue.IgnoreDuplicates = false
	f.d.ApplyConfig(cfg)

	f.notify(1, note("same"))
	f.notify(2, note("same"))
	assert.Equal(t, 2, f.q.Count(), "duplicates allowed after reload")
	assert.Equal(t, presenter.StyleBottom, f.q.CurrentPresenter().Config().Style)
}

func TestDaemon_ConfigFor(t *testing.T) {
	hint := func(kv ...string) map[string]godbus.Variant {
		m := map[string]godbus.Variant{}
		for i := 0; i+1 < len(kv); i += 2 {
			m[kv[i]] = godbus.MakeVariant(kv[i+1])
		}
		return m
	}

	tests := []struct {
		name    string
		n       *dbus.Notification
		urgency int
		wantErr bool
		check   func(t *testing.T, cfg presenter.Config)
	}{
		{
			name: "defaults",
			n:    &dbus.Notification{ExpireTimeout: -1},
			check: func(t *testing.T, cfg presenter.Config) {
				assert.Equal(t, presenter.StyleTop, cfg.Style)
				assert.Equal(t, presenter.Auto(), cfg.Duration)
				assert.Equal(t, presenter.AttachmentWindow, cfg.Attachment.Kind)
				assert.Equal(t, presenter.LevelOverlay, cfg.Attachment.Level)
				assert.Equal(t, presenter.DimNone, cfg.Dim.Kind)
			},
		},
		{
			name: "all hints",
			n: &dbus.Notification{ExpireTimeout: -1, Hints: hint(
				dbus.HintStyle, "center",
				dbus.HintDuration, "forever",
				dbus.HintDim, "color",
				dbus.HintLevel, "top",
			)},
			check: func(t *testing.T, cfg presenter.Config) {
				assert.Equal(t, presenter.StyleCenter, cfg.Style)
				assert.Equal(t, presenter.Forever(), cfg.Duration)
				assert.Equal(t, presenter.DimColor, cfg.Dim.Kind)
				assert.Equal(t, presenter.LevelTop, cfg.Attachment.Level)
			},
		},
		{
			name: "go duration hint",
			n:    &dbus.Notification{ExpireTimeout: -1, Hints: hint(dbus.HintDuration, "8s")},
			check: func(t *testing.T, cfg presenter.Config) {
				assert.Equal(t, presenter.Seconds(8), cfg.Duration)
			},
		},
		{
			name: "expire timeout",
			n:    &dbus.Notification{ExpireTimeout: 1500},
			check: func(t *testing.T, cfg presenter.Config) {
				assert.Equal(t, presenter.Seconds(1.5), cfg.Duration)
			},
		},
		{
			name: "zero expire timeout never expires",
			n:    &dbus.Notification{ExpireTimeout: 0},
			check: func(t *testing.T, cfg presenter.Config) {
				assert.Equal(t, presenter.Forever(), cfg.Duration)
			},
		},
		{
			name:    "critical is sticky",
			n:       &dbus.Notification{ExpireTimeout: 1500},
			urgency: model.UrgencyCritical,
			check: func(t *testing.T, cfg presenter.Config) {
				assert.Equal(t, presenter.Forever(), cfg.Duration)
			},
		},
		{
			name:    "duration hint beats critical",
			n:       &dbus.Notification{ExpireTimeout: -1, Hints: hint(dbus.HintDuration, "seconds")},
			urgency: model.UrgencyCritical,
			check: func(t *testing.T, cfg presenter.Config) {
				assert.Equal(t, presenter.Seconds(5), cfg.Duration)
			},
		},
		{
			name:    "invalid hints are skipped",
			n:       &dbus.Notification{ExpireTimeout: -1, Hints: hint(dbus.HintStyle, "sideways", dbus.HintDim, "fog", dbus.HintLevel, "attic")},
			wantErr: true,
			check: func(t *testing.T, cfg presenter.Config) {
				assert.Equal(t, presenter.StyleTop, cfg.Style)
				assert.Equal(t, presenter.DimNone, cfg.Dim.Kind)
				assert.Equal(t, presenter.LevelOverlay, cfg.Attachment.Level)
			},
		},
		{
			name:    "custom style refused",
			n:       &dbus.Notification{ExpireTimeout: -1, Hints: hint(dbus.HintStyle, "custom")},
			wantErr: true,
			check: func(t *testing.T, cfg presenter.Config) {
				assert.Equal(t, presenter.StyleTop, cfg.Style)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			cfg, err := f.d.ConfigFor(tt.n.Presentation(), tt.urgency)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			tt.check(t, cfg)
		})
	}
}
