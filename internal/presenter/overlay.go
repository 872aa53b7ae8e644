package presenter

// Edge is the edge of the container a banner is anchored to.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
	EdgeCenter
)

func (e Edge) String() string {
	switch e {
	case EdgeBottom:
		return "bottom"
	case EdgeCenter:
		return "center"
	default:
		return "top"
	}
}

// Dock says what the anchored edge is measured from.
type Dock int

const (
	// DockContainerEdge anchors to the container's own edge.
	DockContainerEdge Dock = iota
	// DockBelowTopBar anchors just below a visible top bar.
	DockBelowTopBar
	// DockAboveBottomBar anchors just above a visible bottom bar.
	DockAboveBottomBar
)

func (d Dock) String() string {
	switch d {
	case DockBelowTopBar:
		return "below-top-bar"
	case DockAboveBottomBar:
		return "above-bottom-bar"
	default:
		return "container-edge"
	}
}

// Layout is where an overlay sits inside its container.
type Layout struct {
	Edge         Edge
	Dock         Dock
	TakeKeyboard bool
}

// Overlay is the container a banner's content is placed in. It is
// created and owned by a Presenter; containers only hold it between
// Attach and Detach.
type Overlay struct {
	Content any
	Layout  Layout
	Dim     DimMode

	presenter *Presenter
}

// Presenter returns the presenter that owns the overlay.
func (o *Overlay) Presenter() *Presenter {
	return o.presenter
}

// Interactive reports whether tapping the banner dismisses it.
func (o *Overlay) Interactive() bool {
	return o.presenter != nil && o.presenter.cfg.InteractiveHide
}

// Dismiss is called by the container when the user taps the banner.
// It does nothing unless interactive hiding is enabled.
func (o *Overlay) Dismiss() {
	if !o.Interactive() {
		return
	}
	o.presenter.DismissInteractively()
}

// TapBackground is called by the container when the user taps the
// dimmed area behind the banner. It does nothing unless the dim mode
// is interactive.
func (o *Overlay) TapBackground() {
	if o.presenter == nil || o.Dim.Kind == DimNone || !o.Dim.Interactive {
		return
	}
	o.presenter.DismissInteractively()
}

// layoutFor computes where an overlay for style goes in c.
func layoutFor(style Style, c Context, tree HostTree, takeKeyboard bool) Layout {
	l := Layout{Edge: style.Edge(), TakeKeyboard: takeKeyboard}
	if tree == nil {
		return l
	}
	h, ok := c.HostValue()
	if !ok {
		return l
	}
	switch l.Edge {
	case EdgeTop:
		if tree.IsChromeVisible(h, ChromeTopBar) {
			l.Dock = DockBelowTopBar
		}
	case EdgeBottom:
		if tree.IsChromeVisible(h, ChromeBottomBar) {
			l.Dock = DockAboveBottomBar
		}
	}
	return l
}
