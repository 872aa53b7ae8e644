package tuihost

import (
	"slices"

	"github.com/jmylchreest/bannerd/internal/presenter"
)

// Screen is one node of the terminal host tree.
type Screen struct {
	Name string

	// Title is shown in the top bar and Status in the bottom bar while
	// they are visible.
	Title  string
	Body   string
	Status string

	TopBar    bool
	BottomBar bool

	// Hidden screens are skipped when choosing where banners go.
	Hidden bool

	// Container marks the child pane banners prefer over the screen
	// itself, unless the banner dims the whole screen.
	Container bool

	parent    *Screen
	children  []*Screen
	presented *Screen
	overlays  []*presenter.Overlay
	window    bool
	level     presenter.WindowLevel
	released  bool
}

var (
	_ presenter.Host     = (*Screen)(nil)
	_ presenter.Liveness = (*Screen)(nil)
)

// NewScreen creates a screen with both bars visible.
func NewScreen(name, title string) *Screen {
	return &Screen{Name: name, Title: title, TopBar: true, BottomBar: true}
}

// AddChild adds a child pane.
func (s *Screen) AddChild(child *Screen) {
	child.parent = s
	s.children = append(s.children, child)
}

// Children returns the child panes.
func (s *Screen) Children() []*Screen {
	return s.children
}

// Present shows modal over s. It replaces any screen s already presents.
func (s *Screen) Present(modal *Screen) {
	if s.presented != nil {
		s.presented.release()
	}
	modal.parent = s
	modal.released = false
	s.presented = modal
}

// Presented returns the screen s presents modally.
func (s *Screen) Presented() *Screen {
	return s.presented
}

// DismissPresented closes the screen s presents. Banners attached to it
// lose their host.
func (s *Screen) DismissPresented() {
	if s.presented == nil {
		return
	}
	s.presented.release()
	s.presented = nil
}

func (s *Screen) release() {
	s.released = true
	for _, c := range s.children {
		c.release()
	}
	if s.presented != nil {
		s.presented.release()
	}
}

// Alive reports whether the screen is still part of the UI.
func (s *Screen) Alive() bool {
	return !s.released
}

// Ref returns a weak reference to the screen.
func (s *Screen) Ref() presenter.Ref[presenter.Host] {
	return presenter.Weak(s, func(s *Screen) presenter.Host { return s })
}

// Attach adds o to the screen's overlays.
func (s *Screen) Attach(o *presenter.Overlay) error {
	if s.released {
		return ErrScreenReleased
	}
	if slices.Contains(s.overlays, o) {
		return ErrAlreadyAttached
	}
	s.overlays = append(s.overlays, o)
	return nil
}

// Detach removes o from the screen's overlays.
func (s *Screen) Detach(o *presenter.Overlay) {
	s.overlays = slices.DeleteFunc(s.overlays, func(x *presenter.Overlay) bool { return x == o })
}

// Overlays returns the overlays attached to the screen, oldest first.
func (s *Screen) Overlays() []*presenter.Overlay {
	return s.overlays
}

// chrome reports whether the screen shows c.
func (s *Screen) chrome(c presenter.Chrome) bool {
	if c == presenter.ChromeBottomBar {
		return s.BottomBar
	}
	return s.TopBar
}
