package tuihost

import (
	"log/slog"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/bannerd/internal/presenter"
)

// frameInterval is the time between animation frames.
const frameInterval = time.Second / 30

// frameMsg advances running transitions by one frame.
type frameMsg struct{}

// dispatchMsg carries a closure onto the Bubble Tea loop.
type dispatchMsg struct {
	f func()
}

// frame is the reveal state of one overlay.
type frame struct {
	kind     presenter.TransitionKind
	edge     presenter.Edge
	progress float64 // 0 hidden, 1 fully shown
	target   float64
	step     float64
	done     func(bool)
}

func (f *frame) running() bool {
	return f.done != nil
}

// Tree is the host tree of a terminal UI. It also animates and dims the
// overlays attached to its screens.
type Tree struct {
	root    *Screen
	windows []*Screen
	logger  *slog.Logger

	frames  map[*presenter.Overlay]*frame
	dims    map[*presenter.Overlay]presenter.DimMode
	ticking bool
	cmds    []tea.Cmd
	send    func(tea.Msg)
}

var (
	_ presenter.HostTree     = (*Tree)(nil)
	_ presenter.Transitioner = (*Tree)(nil)
	_ presenter.Dimmer       = (*Tree)(nil)
)

// NewTree creates a tree rooted at root.
func NewTree(root *Screen, logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tree{
		root:   root,
		logger: logger,
		frames: make(map[*presenter.Overlay]*frame),
		dims:   make(map[*presenter.Overlay]presenter.DimMode),
	}
}

// Root returns the root screen.
func (t *Tree) Root() *Screen {
	return t.root
}

// SetSender sets where Dispatch delivers closures from other
// goroutines, normally tea.Program.Send.
func (t *Tree) SetSender(send func(tea.Msg)) {
	t.send = send
}

// Dispatch runs f inside the program's Update. Without a sender f runs
// immediately.
func (t *Tree) Dispatch(f func()) {
	if t.send == nil {
		f()
		return
	}
	t.send(dispatchMsg{f: f})
}

// Update handles the tree's own messages. It reports whether msg was
// one of them; the returned command must be run by the caller.
func (t *Tree) Update(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case dispatchMsg:
		msg.f()
	case frameMsg:
		t.ticking = false
		t.advance()
	default:
		return false, nil
	}
	return true, t.Cmd()
}

// Cmd returns and clears the commands queued by transitions.
func (t *Tree) Cmd() tea.Cmd {
	if len(t.cmds) == 0 {
		return nil
	}
	cmds := t.cmds
	t.cmds = nil
	return tea.Batch(cmds...)
}

func (t *Tree) tick() {
	if t.ticking {
		return
	}
	t.ticking = true
	t.cmds = append(t.cmds, tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{}
	}))
}

// Transition animates o frame by frame. A transition started while
// another is running for o ends the earlier one as not completed.
func (t *Tree) Transition(o *presenter.Overlay, tr presenter.Transition, done func(completed bool)) {
	if t.hostOf(o) == nil {
		done(false)
		return
	}

	f, ok := t.frames[o]
	if !ok {
		f = &frame{}
		t.frames[o] = f
	}
	if f.running() {
		prev := f.done
		f.done = nil
		prev(false)
	}

	f.kind = tr.Kind
	f.edge = tr.Edge
	f.target = 0
	if tr.Reveal {
		f.target = 1
	}
	if tr.Duration <= 0 || f.progress == f.target {
		f.progress = f.target
		done(true)
		return
	}
	f.step = float64(frameInterval) / float64(tr.Duration)
	f.done = done
	t.tick()
}

// advance moves every running transition one frame and completes the
// ones that reached their target.
func (t *Tree) advance() {
	var finished []func(bool)
	var interrupted []func(bool)

	for o, f := range t.frames {
		if t.hostOf(o) == nil {
			delete(t.frames, o)
			delete(t.dims, o)
			if f.running() {
				interrupted = append(interrupted, f.done)
			}
			continue
		}
		if !f.running() {
			continue
		}
		if f.progress < f.target {
			f.progress = min(f.progress+f.step, f.target)
		} else {
			f.progress = max(f.progress-f.step, f.target)
		}
		if f.progress == f.target {
			finished = append(finished, f.done)
			f.done = nil
		}
	}

	for _, done := range interrupted {
		done(false)
	}
	for _, done := range finished {
		done(true)
	}
	for _, f := range t.frames {
		if f.running() {
			t.tick()
			break
		}
	}
}

// progress returns how much of o is shown.
func (t *Tree) progress(o *presenter.Overlay) (*frame, float64) {
	f, ok := t.frames[o]
	if !ok {
		return nil, 1
	}
	return f, f.progress
}

// Dim dims the screen behind o.
func (t *Tree) Dim(o *presenter.Overlay, mode presenter.DimMode) {
	t.dims[o] = mode
}

// Undim removes the dim behind o.
func (t *Tree) Undim(o *presenter.Overlay, _ presenter.DimMode) {
	delete(t.dims, o)
}

// Dimmed returns the overlay whose dim is on top, if any.
func (t *Tree) Dimmed() (*presenter.Overlay, bool) {
	for _, s := range slices.Backward(t.zOrder()) {
		for _, o := range slices.Backward(t.overlaysOf(s)) {
			if _, ok := t.dims[o]; ok {
				return o, true
			}
		}
	}
	return nil, false
}

// zOrder lists the top-level screens bottom to top: the root, the
// chain it presents, then the overlay windows by level.
func (t *Tree) zOrder() []*Screen {
	var out []*Screen
	for s := t.root; s != nil; s = s.presented {
		out = append(out, s)
	}
	return append(out, t.windows...)
}

// overlaysOf returns the overlays of s and its child panes.
func (t *Tree) overlaysOf(s *Screen) []*presenter.Overlay {
	out := slices.Clone(s.overlays)
	for _, c := range s.children {
		out = append(out, t.overlaysOf(c)...)
	}
	return out
}

// hostOf returns the live screen o is attached to.
func (t *Tree) hostOf(o *presenter.Overlay) *Screen {
	var find func(s *Screen) *Screen
	find = func(s *Screen) *Screen {
		if s == nil || s.released {
			return nil
		}
		if slices.Contains(s.overlays, o) {
			return s
		}
		for _, c := range s.children {
			if h := find(c); h != nil {
				return h
			}
		}
		return find(s.presented)
	}
	if h := find(t.root); h != nil {
		return h
	}
	for _, w := range t.windows {
		if slices.Contains(w.overlays, o) {
			return w
		}
	}
	return nil
}

func asScreen(h presenter.Host) (*Screen, bool) {
	s, ok := h.(*Screen)
	return s, ok && s != nil
}

// CurrentTopLevelHost returns the root screen.
func (t *Tree) CurrentTopLevelHost() (presenter.Host, bool) {
	if t.root == nil || t.root.released {
		return nil, false
	}
	return t.root, true
}

// PresentedHost returns the screen h presents modally.
func (t *Tree) PresentedHost(h presenter.Host) (presenter.Host, bool) {
	s, ok := asScreen(h)
	if !ok || s.presented == nil || s.presented.released {
		return nil, false
	}
	return s.presented, true
}

// IsEligible reports whether h is a visible screen of the tree.
func (t *Tree) IsEligible(h presenter.Host) bool {
	s, ok := asScreen(h)
	return ok && !s.Hidden && !s.released && !s.window
}

// IsChromeVisible reports whether h shows its top or bottom bar.
func (t *Tree) IsChromeVisible(h presenter.Host, c presenter.Chrome) bool {
	s, ok := asScreen(h)
	return ok && s.chrome(c)
}

// SelectAttachmentDescendant redirects banners to the first visible
// child pane marked as Container. Modal banners stay on start so their
// dim covers the whole screen.
func (t *Tree) SelectAttachmentDescendant(start presenter.Host, hint presenter.Hint) presenter.Host {
	s, ok := asScreen(start)
	if !ok || hint.Modal {
		return start
	}
	for _, c := range s.children {
		if c.Container && !c.Hidden && !c.released {
			return c
		}
	}
	return start
}

// NewWindowHost creates a full-screen overlay window above the root at
// level. Windows at higher levels draw over lower ones.
func (t *Tree) NewWindowHost(level presenter.WindowLevel, _ bool) (presenter.Host, error) {
	if t.root == nil {
		return nil, ErrNoRoot
	}
	w := &Screen{Name: "window-" + level.String(), window: true, level: level}
	i := len(t.windows)
	for i > 0 && t.windows[i-1].level > level {
		i--
	}
	t.windows = slices.Insert(t.windows, i, w)
	t.logger.Debug("overlay window created", "level", level.String(), "windows", len(t.windows))
	return w, nil
}

// RemoveWindowHost removes a window made by NewWindowHost.
func (t *Tree) RemoveWindowHost(h presenter.Host) {
	s, ok := asScreen(h)
	if !ok || !s.window {
		return
	}
	t.windows = slices.DeleteFunc(t.windows, func(w *Screen) bool { return w == s })
	s.release()
}

// Windows returns the overlay windows, lowest level first.
func (t *Tree) Windows() []*Screen {
	return t.windows
}
