package gtkhost

import (
	"log/slog"
	"unsafe"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/bannerd/internal/config"
	"github.com/jmylchreest/bannerd/internal/presenter"
)

// layerNamespace is the layer-shell namespace of every bannerd surface.
const layerNamespace = "bannerd"

// fixedWindowLevel maps a presenter window level onto a layer-shell layer.
func fixedWindowLevel(level presenter.WindowLevel) layershell.LayerShellLayer {
	switch level {
	case presenter.LevelBackground:
		return layershell.LayerShellLayerBackground
	case presenter.LevelBottom:
		return layershell.LayerShellLayerBottom
	case presenter.LevelTop:
		return layershell.LayerShellLayerTop
	default:
		return layershell.LayerShellLayerOverlay
	}
}

// anchors says which screen edges a banner surface is pinned to.
type anchors struct {
	top, bottom, left, right bool
}

// anchorsFor returns the anchors of a banner surface for edge. Center
// banners float in the middle of the output.
func anchorsFor(edge presenter.Edge) anchors {
	switch edge {
	case presenter.EdgeTop:
		return anchors{top: true}
	case presenter.EdgeBottom:
		return anchors{bottom: true}
	default:
		return anchors{}
	}
}

// fullscreen pins a surface to all four edges.
var fullscreen = anchors{top: true, bottom: true, left: true, right: true}

// initLayer turns w into a layer-shell surface. It reports false when
// the compositor does not support the protocol, in which case w stays an
// ordinary toplevel.
func initLayer(w *gtk.Window, level presenter.WindowLevel, takeKeyboard bool, monitor *gdk.Monitor) bool {
	if !layershell.IsSupported() {
		return false
	}
	layershell.InitForWindow(w)
	layershell.SetLayer(w, fixedWindowLevel(level))
	layershell.SetExclusiveZone(w, 0) // Don't reserve space
	layershell.SetNamespace(w, layerNamespace)
	if takeKeyboard {
		layershell.SetKeyboardMode(w, layershell.LayerShellKeyboardModeOnDemand)
	} else {
		layershell.SetKeyboardMode(w, layershell.LayerShellKeyboardModeNone)
	}
	if monitor != nil {
		layershell.SetMonitor(w, monitor)
	}
	return true
}

// anchor applies a and the display margins to a layer surface.
func anchor(w *gtk.Window, a anchors, d config.DisplayConfig) {
	set := func(edge layershell.LayerShellEdge, on bool, margin int) {
		layershell.SetAnchor(w, edge, on)
		if on {
			layershell.SetMargin(w, edge, margin)
		} else {
			layershell.SetMargin(w, edge, 0)
		}
	}
	set(layershell.LayerShellEdgeTop, a.top, d.MarginY)
	set(layershell.LayerShellEdgeBottom, a.bottom, d.MarginY)
	set(layershell.LayerShellEdgeLeft, a.left, d.MarginX)
	set(layershell.LayerShellEdgeRight, a.right, d.MarginX)
}

// monitorFor returns the monitor configured in d.
// 0 leaves the choice to the compositor, which uses the focused output.
// 1+ selects a specific monitor (1-indexed) and falls back to the first
// one when it is not connected.
func monitorFor(d config.DisplayConfig, logger *slog.Logger) *gdk.Monitor {
	if d.Monitor <= 0 {
		return nil
	}
	display := gdk.DisplayGetDefault()
	if display == nil {
		return nil
	}
	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		logger.Warn("no monitors list available")
		return nil
	}

	index := uint(d.Monitor - 1)
	if index >= monitors.NItems() {
		logger.Warn("configured monitor not available, using first",
			"configured", d.Monitor,
			"available", monitors.NItems(),
		)
		index = 0
	}
	return wrapMonitor(monitors.Item(index))
}

// wrapMonitor wraps a glib.Object as a gdk.Monitor.
// gotk4 doesn't expose its own wrapper, but gdk.Monitor only embeds the
// object pointer, so the cast matches its layout.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
