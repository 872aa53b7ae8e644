package presenter

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/jmylchreest/bannerd/internal/clock"
)

type fakeHost struct {
	name      string
	dead      bool
	attachErr error
	attached  []*Overlay
	detached  []*Overlay
}

func newHost(name string) *fakeHost { return &fakeHost{name: name} }

func (h *fakeHost) Attach(o *Overlay) error {
	if h.attachErr != nil {
		return h.attachErr
	}
	h.attached = append(h.attached, o)
	return nil
}

func (h *fakeHost) Detach(o *Overlay) { h.detached = append(h.detached, o) }

func (h *fakeHost) Alive() bool { return !h.dead }

func (h *fakeHost) Ref() Ref[Host] {
	return Weak(h, func(h *fakeHost) Host { return h })
}

type fakeView struct {
	fakeHost
}

func (v *fakeView) Ref() Ref[View] {
	return Weak(v, func(v *fakeView) View { return v })
}

type fakeTree struct {
	top        *fakeHost
	presented  map[*fakeHost]*fakeHost
	ineligible map[*fakeHost]bool
	chrome     map[*fakeHost]map[Chrome]bool
	redirect   map[*fakeHost]*fakeHost

	windowErr       error
	windowAttachErr error
	windows         []*fakeHost
	removed         []Host
	hints           []Hint
}

func newTree(top *fakeHost) *fakeTree {
	return &fakeTree{
		top:        top,
		presented:  map[*fakeHost]*fakeHost{},
		ineligible: map[*fakeHost]bool{},
		chrome:     map[*fakeHost]map[Chrome]bool{},
		redirect:   map[*fakeHost]*fakeHost{},
	}
}

func (t *fakeTree) CurrentTopLevelHost() (Host, bool) {
	if t.top == nil {
		return nil, false
	}
	return t.top, true
}

func (t *fakeTree) PresentedHost(h Host) (Host, bool) {
	next, ok := t.presented[h.(*fakeHost)]
	if !ok {
		return nil, false
	}
	return next, true
}

func (t *fakeTree) IsEligible(h Host) bool { return !t.ineligible[h.(*fakeHost)] }

func (t *fakeTree) IsChromeVisible(h Host, c Chrome) bool {
	fh, ok := h.(*fakeHost)
	if !ok {
		return false
	}
	return t.chrome[fh][c]
}

func (t *fakeTree) SelectAttachmentDescendant(start Host, hint Hint) Host {
	t.hints = append(t.hints, hint)
	if d, ok := t.redirect[start.(*fakeHost)]; ok {
		return d
	}
	return start
}

func (t *fakeTree) NewWindowHost(level WindowLevel, _ bool) (Host, error) {
	if t.windowErr != nil {
		return nil, t.windowErr
	}
	h := newHost("window-" + level.String())
	h.attachErr = t.windowAttachErr
	t.windows = append(t.windows, h)
	return h, nil
}

func (t *fakeTree) RemoveWindowHost(h Host) { t.removed = append(t.removed, h) }

// manualTransitioner holds transitions until the test completes them.
type manualTransitioner struct {
	pending []func(bool)
	seen    []Transition
}

func (m *manualTransitioner) Transition(_ *Overlay, tr Transition, done func(bool)) {
	m.seen = append(m.seen, tr)
	m.pending = append(m.pending, done)
}

func (m *manualTransitioner) complete(ok bool) {
	if len(m.pending) == 0 {
		panic("no pending transition")
	}
	done := m.pending[0]
	m.pending = m.pending[1:]
	done(ok)
}

type recordingDimmer struct {
	calls []string
}

func (d *recordingDimmer) Dim(_ *Overlay, m DimMode) {
	d.calls = append(d.calls, "dim:"+m.Kind.String())
}
func (d *recordingDimmer) Undim(_ *Overlay, m DimMode) {
	d.calls = append(d.calls, "undim:"+m.Kind.String())
}

type recordingAnnouncer struct {
	messages []string
	focused  []any
}

func (a *recordingAnnouncer) Announce(msg string) { a.messages = append(a.messages, msg) }
func (a *recordingAnnouncer) FocusOn(e any)       { a.focused = append(a.focused, e) }

type message struct {
	id   string
	text string
}

func (m message) ID() string                   { return m.id }
func (m message) AccessibilityMessage() string { return m.text }

var errAttach = errors.New("attach refused")

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// harness wires a presenter to fakes and records its events.
type harness struct {
	root   *fakeHost
	tree   *fakeTree
	tr     *manualTransitioner
	dimmer *recordingDimmer
	ann    *recordingAnnouncer
	clock  *clock.FakeClock
	events []Event
}

func newHarness() *harness {
	root := newHost("root")
	return &harness{
		root:   root,
		tree:   newTree(root),
		tr:     &manualTransitioner{},
		dimmer: &recordingDimmer{},
		ann:    &recordingAnnouncer{},
		clock:  clock.Fake(epoch),
	}
}

func (h *harness) env() Environment {
	return Environment{
		Tree:         h.tree,
		Transitioner: h.tr,
		Dimmer:       h.dimmer,
		Announcer:    h.ann,
		Clock:        h.clock,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (h *harness) presenter(cfg Config) *Presenter {
	cfg = cfg.WithListener(func(e Event, _ *Presenter) { h.events = append(h.events, e) })
	return New(message{id: "m1", text: "Saved, all changes stored"}, cfg, h.env())
}

// shown returns a presenter that has completed its entry animation.
func (h *harness) shown(cfg Config) *Presenter {
	p := h.presenter(cfg)
	if err := p.Show(nil); err != nil {
		panic(err)
	}
	h.tr.complete(true)
	return p
}
