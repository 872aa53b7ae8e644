package gtkhost

import (
	"errors"
	"fmt"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/bannerd/internal/presenter"
)

// Host errors.
var (
	ErrWindowDestroyed = errors.New("window destroyed")
	ErrAlreadyAttached = errors.New("overlay already attached")
)

// HostError wraps a failure to lay out a banner in a window.
type HostError struct {
	Message string
	Cause   error
}

func (e *HostError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *HostError) Unwrap() error {
	return e.Cause
}

// WindowHost presents banners over one GTK window. Tracked application
// windows and dedicated overlay windows are both WindowHosts.
type WindowHost struct {
	tree    *Tree
	window  *gtk.Window
	overlay *gtk.Overlay

	// owned hosts are dedicated overlay windows made by NewWindowHost.
	owned   bool
	layered bool
	level   presenter.WindowLevel

	chrome    map[presenter.Chrome]*gtk.Widget
	views     map[*presenter.Overlay]*bannerView
	destroyed bool
}

func newWindowHost(t *Tree, window *gtk.Window, overlay *gtk.Overlay) *WindowHost {
	h := &WindowHost{
		tree:    t,
		window:  window,
		overlay: overlay,
		chrome:  make(map[presenter.Chrome]*gtk.Widget),
		views:   make(map[*presenter.Overlay]*bannerView),
	}
	window.ConnectDestroy(h.handleDestroy)
	return h
}

// Window returns the window the host presents over.
func (h *WindowHost) Window() *gtk.Window {
	return h.window
}

// SetChrome registers the widget shown as the host's top or bottom bar.
// Banners dock past it while it is visible. A nil widget clears it.
func (h *WindowHost) SetChrome(c presenter.Chrome, w gtk.Widgetter) {
	if w == nil {
		delete(h.chrome, c)
		return
	}
	h.chrome[c] = gtk.BaseWidget(w)
}

func (h *WindowHost) chromeVisible(c presenter.Chrome) bool {
	w, ok := h.chrome[c]
	return ok && w.IsVisible()
}

func (h *WindowHost) chromeHeight(c presenter.Chrome) int {
	if !h.chromeVisible(c) {
		return 0
	}
	return h.chrome[c].Height()
}

// Alive reports whether the window still exists.
func (h *WindowHost) Alive() bool {
	return !h.destroyed
}

// Ref returns a weak reference to the host.
func (h *WindowHost) Ref() presenter.Ref[presenter.Host] {
	return presenter.Weak(h, func(h *WindowHost) presenter.Host { return h })
}

// Attach builds the banner widgets for o and adds them above the
// window's content.
func (h *WindowHost) Attach(o *presenter.Overlay) error {
	if h.destroyed {
		return &HostError{Message: "cannot attach banner", Cause: ErrWindowDestroyed}
	}
	if _, ok := h.views[o]; ok {
		return &HostError{Message: "cannot attach banner", Cause: ErrAlreadyAttached}
	}

	style := h.tree.style()
	v := newBannerView(o, style)
	switch o.Layout.Dock {
	case presenter.DockBelowTopBar:
		v.dock(o.Layout, style, h.chromeHeight(presenter.ChromeTopBar))
	case presenter.DockAboveBottomBar:
		v.dock(o.Layout, style, h.chromeHeight(presenter.ChromeBottomBar))
	default:
		v.dock(o.Layout, style, 0)
	}

	if h.owned {
		h.attachOwned(v)
	} else {
		if v.dim != nil {
			h.overlay.AddOverlay(v.dim)
		}
		h.overlay.AddOverlay(v.revealer)
	}

	h.views[o] = v
	h.tree.views[o] = v
	h.tree.logger.Debug("banner attached",
		"owned", h.owned,
		"edge", o.Layout.Edge.String(),
		"dock", o.Layout.Dock.String(),
	)
	return nil
}

// attachOwned lays out v in a dedicated overlay window and maps it. The
// dim gets its own fullscreen surface below the banner.
func (h *WindowHost) attachOwned(v *bannerView) {
	if h.layered {
		// Banner margins are applied to the layer surface instead.
		v.revealer.SetMarginTop(0)
		v.revealer.SetMarginBottom(0)
		anchor(h.window, anchorsFor(v.overlay.Layout.Edge), h.tree.display)
	}

	if v.dim != nil {
		if h.layered {
			v.dimWindow = h.tree.newDimWindow(h.level, v.dim)
			v.dimWindow.Present()
		} else {
			h.tree.logger.Debug("layer shell unavailable, dim skipped")
		}
	}

	h.overlay.AddOverlay(v.revealer)
	h.overlay.SetMeasureOverlay(v.revealer, true)
	h.window.Present()
}

// Detach removes the widgets of o. Outstanding transitions end as not
// completed.
func (h *WindowHost) Detach(o *presenter.Overlay) {
	v, ok := h.views[o]
	if !ok {
		return
	}
	delete(h.views, o)
	delete(h.tree.views, o)

	v.detached = true
	v.interrupt()
	if h.destroyed {
		return
	}

	h.overlay.RemoveOverlay(v.revealer)
	switch {
	case v.dimWindow != nil:
		v.dimWindow.Destroy()
	case v.dim != nil:
		h.overlay.RemoveOverlay(v.dim)
	}
}

func (h *WindowHost) handleDestroy() {
	if h.destroyed {
		return
	}
	h.destroyed = true
	for o, v := range h.views {
		delete(h.tree.views, o)
		v.detached = true
		v.interrupt()
		if v.dimWindow != nil {
			v.dimWindow.Destroy()
		}
	}
	h.tree.forget(h)
}
