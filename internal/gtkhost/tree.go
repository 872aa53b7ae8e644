package gtkhost

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/bannerd/internal/config"
	"github.com/jmylchreest/bannerd/internal/presenter"
)

// ErrNoApplication is returned by NewWindowHost on a tree without an
// application.
var ErrNoApplication = errors.New("no GTK application")

// Tree is the host tree of a GTK application. Windows become hosts when
// they are tracked.
type Tree struct {
	app     *gtk.Application
	logger  *slog.Logger
	display config.DisplayConfig
	scheme  string

	hosts []*WindowHost
	owned map[*WindowHost]struct{}
	views map[*presenter.Overlay]*bannerView

	dimColors *dimStyles
}

var (
	_ presenter.HostTree     = (*Tree)(nil)
	_ presenter.Transitioner = (*Tree)(nil)
	_ presenter.Dimmer       = (*Tree)(nil)
	_ presenter.Host         = (*WindowHost)(nil)
	_ presenter.Liveness     = (*WindowHost)(nil)
)

// NewTree creates a host tree over app's windows.
func NewTree(app *gtk.Application, display config.DisplayConfig, logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tree{
		app:       app,
		logger:    logger,
		display:   display,
		owned:     make(map[*WindowHost]struct{}),
		views:     make(map[*presenter.Overlay]*bannerView),
		dimColors: &dimStyles{classes: make(map[string]string)},
	}
}

// SetDisplay replaces the display settings. Banners attached afterwards
// use them.
func (t *Tree) SetDisplay(d config.DisplayConfig) {
	t.display = d
}

// SetColorScheme sets the "light" or "dark" class added to new banners.
func (t *Tree) SetColorScheme(class string) {
	t.scheme = class
}

func (t *Tree) style() bannerStyle {
	return bannerStyle{
		width:     t.display.Width,
		marginX:   t.display.MarginX,
		marginY:   t.display.MarginY,
		scheme:    t.scheme,
		dimColors: t.dimColors,
	}
}

// Track makes window a host. content becomes the window's content below
// an overlay that banners are added to. Tracking a window twice returns
// the existing host.
func (t *Tree) Track(window *gtk.Window, content gtk.Widgetter) *WindowHost {
	if h, ok := t.Host(window); ok {
		return h
	}
	overlay := gtk.NewOverlay()
	overlay.SetChild(content)
	window.SetChild(overlay)

	h := newWindowHost(t, window, overlay)
	t.hosts = append(t.hosts, h)
	return h
}

// Host returns the host tracking window.
func (t *Tree) Host(window *gtk.Window) (*WindowHost, bool) {
	if window == nil {
		return nil, false
	}
	for _, h := range t.hosts {
		if sameWindow(h.window, window) {
			return h, true
		}
	}
	return nil, false
}

func (t *Tree) forget(h *WindowHost) {
	t.hosts = slices.DeleteFunc(t.hosts, func(x *WindowHost) bool { return x == h })
	delete(t.owned, h)
}

func sameWindow(a, b *gtk.Window) bool {
	return glib.InternObject(a).Native() == glib.InternObject(b).Native()
}

func asWindowHost(h presenter.Host) (*WindowHost, bool) {
	wh, ok := h.(*WindowHost)
	return wh, ok && wh != nil
}

// CurrentTopLevelHost returns the host of the active window. When the
// active window is not tracked the most recently tracked visible
// toplevel is used.
func (t *Tree) CurrentTopLevelHost() (presenter.Host, bool) {
	if t.app != nil {
		if h, ok := t.Host(t.app.ActiveWindow()); ok && !h.destroyed {
			return h, true
		}
	}
	for i := len(t.hosts) - 1; i >= 0; i-- {
		h := t.hosts[i]
		if h.destroyed || !h.window.IsVisible() || h.window.TransientFor() != nil {
			continue
		}
		return h, true
	}
	return nil, false
}

// PresentedHost returns a visible tracked window that is transient for
// h's window, such as a modal dialog.
func (t *Tree) PresentedHost(h presenter.Host) (presenter.Host, bool) {
	parent, ok := asWindowHost(h)
	if !ok {
		return nil, false
	}
	for _, c := range t.hosts {
		if c == parent || c.destroyed || !c.window.IsVisible() {
			continue
		}
		if p := c.window.TransientFor(); p != nil && sameWindow(p, parent.window) {
			return c, true
		}
	}
	return nil, false
}

// IsEligible reports whether h is a visible tracked window.
func (t *Tree) IsEligible(h presenter.Host) bool {
	wh, ok := asWindowHost(h)
	if !ok || wh.destroyed || wh.owned {
		return false
	}
	return wh.window.IsVisible()
}

// IsChromeVisible reports whether the chrome registered with SetChrome
// is visible.
func (t *Tree) IsChromeVisible(h presenter.Host, c presenter.Chrome) bool {
	wh, ok := asWindowHost(h)
	return ok && wh.chromeVisible(c)
}

// SelectAttachmentDescendant returns start. A window's overlay covers
// its whole content, so there is no better descendant to attach to.
func (t *Tree) SelectAttachmentDescendant(start presenter.Host, _ presenter.Hint) presenter.Host {
	return start
}

// NewWindowHost creates an undecorated overlay window. On compositors
// with layer shell it is a surface on the layer matching level.
func (t *Tree) NewWindowHost(level presenter.WindowLevel, takeKeyboard bool) (presenter.Host, error) {
	if t.app == nil {
		return nil, &HostError{Message: "cannot create overlay window", Cause: ErrNoApplication}
	}

	win := gtk.NewWindow()
	win.SetApplication(t.app)
	win.SetDecorated(false)
	win.SetResizable(false)
	win.AddCSSClass("banner-window")
	win.SetDefaultSize(t.display.Width, -1)

	layered := initLayer(win, level, takeKeyboard, monitorFor(t.display, t.logger))
	if !layered {
		t.logger.Debug("layer shell not supported, using a plain window", "level", level.String())
	}

	overlay := gtk.NewOverlay()
	win.SetChild(overlay)

	h := newWindowHost(t, win, overlay)
	h.owned = true
	h.layered = layered
	h.level = level
	t.owned[h] = struct{}{}
	return h, nil
}

// RemoveWindowHost destroys an overlay window made by NewWindowHost.
// Other hosts are left alone.
func (t *Tree) RemoveWindowHost(h presenter.Host) {
	wh, ok := asWindowHost(h)
	if !ok {
		return
	}
	if _, owned := t.owned[wh]; !owned {
		return
	}
	delete(t.owned, wh)
	if !wh.destroyed {
		wh.window.Destroy()
	}
}

// newDimWindow makes a fullscreen layer surface below the banner at
// level and puts dim in it.
func (t *Tree) newDimWindow(level presenter.WindowLevel, dim *gtk.Box) *gtk.Window {
	win := gtk.NewWindow()
	win.SetApplication(t.app)
	win.SetDecorated(false)
	win.AddCSSClass("banner-dim-window")
	initLayer(win, level, false, monitorFor(t.display, t.logger))
	anchor(win, fullscreen, config.DisplayConfig{})
	win.SetChild(dim)
	return win
}

// dimStyles hands out one CSS class per dim color and keeps a provider
// with their rules installed on the display.
type dimStyles struct {
	provider *gtk.CSSProvider
	classes  map[string]string
}

func (s *dimStyles) classFor(color string) string {
	if class, ok := s.classes[color]; ok {
		return class
	}
	class := fmt.Sprintf("dim-color-%d", len(s.classes))
	s.classes[color] = class

	if s.provider == nil {
		s.provider = gtk.NewCSSProvider()
		if display := gdk.DisplayGetDefault(); display != nil {
			gtk.StyleContextAddProviderForDisplay(display, s.provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION+1)
		}
	}
	s.provider.LoadFromString(dimColorCSS(s.classes))
	return class
}
