package queue

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/bannerd/internal/clock"
	"github.com/jmylchreest/bannerd/internal/presenter"
)

var errRefused = errors.New("attach refused")

type stubHost struct {
	attached int
	refuse   bool
}

func (h *stubHost) Attach(*presenter.Overlay) error {
	if h.refuse {
		return errRefused
	}
	h.attached++
	return nil
}
func (h *stubHost) Detach(*presenter.Overlay) {}
func (h *stubHost) Ref() presenter.Ref[presenter.Host] {
	return presenter.Weak(h, func(h *stubHost) presenter.Host { return h })
}

type stubTree struct {
	root *stubHost
}

func (t *stubTree) CurrentTopLevelHost() (presenter.Host, bool) {
	if t.root == nil {
		return nil, false
	}
	return t.root, true
}
func (t *stubTree) PresentedHost(presenter.Host) (presenter.Host, bool)   { return nil, false }
func (t *stubTree) IsEligible(presenter.Host) bool                        { return true }
func (t *stubTree) IsChromeVisible(presenter.Host, presenter.Chrome) bool { return false }
func (t *stubTree) SelectAttachmentDescendant(h presenter.Host, _ presenter.Hint) presenter.Host {
	return h
}
func (t *stubTree) NewWindowHost(presenter.WindowLevel, bool) (presenter.Host, error) {
	return &stubHost{}, nil
}
func (t *stubTree) RemoveWindowHost(presenter.Host) {}

type msg struct {
	id       string
	priority int
}

func (m *msg) ID() string    { return m.id }
func (m *msg) Priority() int { return m.priority }

type closed struct {
	id     string
	reason presenter.HideReason
}

type fixture struct {
	q      *Queue
	clock  *clock.FakeClock
	tree   *stubTree
	closed []closed
	events []string
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		clock: clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		tree:  &stubTree{root: &stubHost{}},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := presenter.Environment{Tree: f.tree, Clock: f.clock, Logger: logger}
	f.q = New(env, opts, logger)
	f.q.SetCloseCallback(func(content any, reason presenter.HideReason) {
		f.closed = append(f.closed, closed{content.(*msg).id, reason})
	})
	f.q.SetEventCallback(func(content any, e presenter.Event) {
		f.events = append(f.events, content.(*msg).id+":"+e.String())
	})
	return f
}

func (f *fixture) currentID() string {
	c, ok := f.q.Current()
	if !ok {
		return ""
	}
	return c.(*msg).id
}

func TestQueue_ShowsImmediatelyAndExpires(t *testing.T) {
	f := newFixture(Options{})

	require.True(t, f.q.Enqueue(&msg{id: "a"}, presenter.DefaultConfig()))
	assert.Equal(t, "a", f.currentID())
	assert.Equal(t, presenter.StateVisible, f.q.CurrentPresenter().State())

	f.clock.Advance(presenter.AutomaticTimeout)
	assert.Equal(t, "", f.currentID())
	assert.Equal(t, []closed{{"a", presenter.HideExpired}}, f.closed)
	assert.Equal(t, []string{"a:will-show", "a:did-show", "a:will-hide", "a:did-hide"}, f.events)
}

func TestQueue_OneAtATimeByPriority(t *testing.T) {
	f := newFixture(Options{})
	cfg := presenter.DefaultConfig()

	f.q.Enqueue(&msg{id: "first", priority: 1}, cfg)
	f.q.Enqueue(&msg{id: "low", priority: 0}, cfg)
	f.q.Enqueue(&msg{id: "normal", priority: 1}, cfg)
	f.q.Enqueue(&msg{id: "critical", priority: 2}, cfg)

	assert.Equal(t, "first", f.currentID())
	assert.Equal(t, 4, f.q.Count())
	assert.Equal(t, 3, f.q.QueuedCount())

	var order []string
	for _, p := range f.q.Pending() {
		order = append(order, p.ID)
	}
	assert.Equal(t, []string{"critical", "normal", "low"}, order)

	var shown []string
	for f.currentID() != "" {
		shown = append(shown, f.currentID())
		f.clock.Advance(presenter.AutomaticTimeout)
	}
	assert.Equal(t, []string{"first", "critical", "normal", "low"}, shown)
	assert.Equal(t, 4, f.tree.root.attached, "every banner attached once")
}

func TestQueue_IgnoreDuplicates(t *testing.T) {
	f := newFixture(Options{IgnoreDuplicates: true})
	cfg := presenter.DefaultConfig()

	assert.True(t, f.q.Enqueue(&msg{id: "a"}, cfg))
	assert.False(t, f.q.Enqueue(&msg{id: "a"}, cfg), "duplicate of visible banner")
	assert.True(t, f.q.Enqueue(&msg{id: "b"}, cfg))
	assert.False(t, f.q.Enqueue(&msg{id: "b"}, cfg), "duplicate of queued banner")
	assert.True(t, f.q.Enqueue(&msg{id: ""}, cfg), "anonymous banners are never duplicates")
	assert.True(t, f.q.Enqueue(&msg{id: ""}, cfg))

	f.q.CurrentPresenter().Hide(nil)
	assert.True(t, f.q.Enqueue(&msg{id: "a"}, cfg), "hidden banner no longer blocks")
}

func TestQueue_DuplicatesAllowedByDefault(t *testing.T) {
	f := newFixture(Options{})
	cfg := presenter.DefaultConfig()

	assert.True(t, f.q.Enqueue(&msg{id: "a"}, cfg))
	assert.True(t, f.q.Enqueue(&msg{id: "a"}, cfg))
	assert.Equal(t, 2, f.q.Count())
}

func TestQueue_MaxQueued(t *testing.T) {
	f := newFixture(Options{MaxQueued: 2})
	cfg := presenter.DefaultConfig()

	f.q.Enqueue(&msg{id: "visible", priority: 1}, cfg)
	f.q.Enqueue(&msg{id: "low-old", priority: 0}, cfg)
	f.q.Enqueue(&msg{id: "low-new", priority: 0}, cfg)
	assert.True(t, f.q.Enqueue(&msg{id: "critical", priority: 2}, cfg))

	var ids []string
	for _, p := range f.q.Pending() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"critical", "low-new"}, ids)
	assert.Equal(t, []closed{{"low-old", presenter.HideExpired}}, f.closed)

	assert.False(t, f.q.Enqueue(&msg{id: "lower", priority: -1}, cfg), "new banner is the lowest")
}

func TestQueue_PauseBetween(t *testing.T) {
	f := newFixture(Options{PauseBetween: 500 * time.Millisecond})
	cfg := presenter.DefaultConfig()

	f.q.Enqueue(&msg{id: "a"}, cfg)
	f.q.Enqueue(&msg{id: "b"}, cfg)

	f.clock.Advance(presenter.AutomaticTimeout)
	assert.Equal(t, "", f.currentID())
	assert.Equal(t, 1, f.q.Count())

	f.clock.Advance(499 * time.Millisecond)
	assert.Equal(t, "", f.currentID())
	f.clock.Advance(time.Millisecond)
	assert.Equal(t, "b", f.currentID())
}

func TestQueue_Hide(t *testing.T) {
	f := newFixture(Options{})
	cfg := presenter.DefaultConfig()
	cfg.Duration = presenter.Forever()

	f.q.Enqueue(&msg{id: "a"}, cfg)
	f.q.Enqueue(&msg{id: "b"}, cfg)
	f.q.Enqueue(&msg{id: "c"}, cfg)

	assert.True(t, f.q.Hide("b"))
	assert.Equal(t, []closed{{"b", presenter.HideRequested}}, f.closed)
	assert.False(t, f.q.Hide("missing"))

	assert.True(t, f.q.Hide("a"))
	assert.Equal(t, "c", f.currentID())
	assert.Equal(t, closed{"a", presenter.HideRequested}, f.closed[1])
}

func TestQueue_DismissReason(t *testing.T) {
	f := newFixture(Options{})
	cfg := presenter.DefaultConfig()
	cfg.Duration = presenter.Forever()

	f.q.Enqueue(&msg{id: "a"}, cfg)
	f.q.CurrentPresenter().Overlay().Dismiss()
	assert.Equal(t, []closed{{"a", presenter.HideDismissed}}, f.closed)
}

func TestQueue_HideAllAndMatching(t *testing.T) {
	f := newFixture(Options{})
	cfg := presenter.DefaultConfig()
	cfg.Duration = presenter.Forever()

	for _, id := range []string{"a", "b1", "b2", "c"} {
		f.q.Enqueue(&msg{id: id}, cfg)
	}

	n := f.q.HideMatching(func(content any) bool {
		return content.(*msg).id[0] == 'b'
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, f.q.Count())

	f.q.HideAll()
	assert.Equal(t, 0, f.q.Count())
	assert.Len(t, f.closed, 4)
}

func TestQueue_ShowFailureAdvances(t *testing.T) {
	f := newFixture(Options{})
	f.tree.root = nil
	cfg := presenter.DefaultConfig()

	assert.True(t, f.q.Enqueue(&msg{id: "a"}, cfg))
	assert.Equal(t, 0, f.q.Count())
	assert.Equal(t, []closed{{"a", presenter.HideExpired}}, f.closed)

	windowed := cfg
	windowed.Attachment = presenter.AttachWindow(presenter.LevelOverlay)
	assert.True(t, f.q.Enqueue(&msg{id: "b"}, windowed))
	assert.Equal(t, "b", f.currentID())
}

func TestQueue_HideDuringShowDelay(t *testing.T) {
	f := newFixture(Options{})
	cfg := presenter.DefaultConfig()
	cfg.Duration = presenter.Indefinite(time.Second, 0)

	f.q.Enqueue(&msg{id: "slow"}, cfg)
	f.q.Enqueue(&msg{id: "next"}, presenter.DefaultConfig())
	assert.Equal(t, presenter.StateInstalling, f.q.CurrentPresenter().State())

	f.q.Hide("slow")
	assert.Equal(t, "next", f.currentID())
	assert.Equal(t, []closed{{"slow", presenter.HideRequested}}, f.closed)
	assert.Empty(t, filter(f.events, "slow:"))
}

func TestQueue_DeferredShowFailure(t *testing.T) {
	f := newFixture(Options{})
	cfg := presenter.DefaultConfig()
	cfg.Duration = presenter.Indefinite(time.Second, 0)

	windowed := presenter.DefaultConfig()
	windowed.Attachment = presenter.AttachWindow(presenter.LevelOverlay)

	f.q.Enqueue(&msg{id: "a"}, cfg)
	f.q.Enqueue(&msg{id: "b"}, windowed)
	f.tree.root.refuse = true

	f.clock.Advance(time.Second)
	assert.Equal(t, []closed{{"a", presenter.HideExpired}}, f.closed, "reported like an immediate show failure")
	assert.Empty(t, filter(f.events, "a:"))
	assert.Equal(t, "b", f.currentID())
}

func TestQueue_Stop(t *testing.T) {
	f := newFixture(Options{PauseBetween: time.Second})
	cfg := presenter.DefaultConfig()

	f.q.Enqueue(&msg{id: "a"}, cfg)
	f.q.Enqueue(&msg{id: "b"}, cfg)
	f.clock.Advance(presenter.AutomaticTimeout)
	f.q.Stop()

	f.clock.Advance(time.Minute)
	assert.Equal(t, 0, f.q.Count())
	assert.Equal(t, "", f.currentID())
}

func filter(events []string, prefix string) []string {
	var out []string
	for _, e := range events {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			out = append(out, e)
		}
	}
	return out
}
