package presenter

type contextKind int

const (
	contextNone contextKind = iota
	contextHost
	contextView
)

// Context is the resolved attachment point of one presentation. It holds
// either a host or a view, never both, and only weakly.
type Context struct {
	kind contextKind
	host Ref[Host]
	view Ref[View]
}

// HostContext returns a context for h.
func HostContext(h Host) Context {
	return Context{kind: contextHost, host: h.Ref()}
}

// ViewContext returns a context for v.
func ViewContext(v View) Context {
	return Context{kind: contextView, view: v.Ref()}
}

// IsHost reports whether the context holds a host.
func (c Context) IsHost() bool { return c.kind == contextHost }

// IsView reports whether the context holds a view.
func (c Context) IsView() bool { return c.kind == contextView }

// HostValue returns the host if the context holds one and it is alive.
func (c Context) HostValue() (Host, bool) {
	if c.kind != contextHost {
		return nil, false
	}
	return c.host.Get()
}

// ViewValue returns the view if the context holds one and it is alive.
func (c Context) ViewValue() (View, bool) {
	if c.kind != contextView {
		return nil, false
	}
	return c.view.Get()
}

// Container returns whichever variant is populated, if alive.
func (c Context) Container() (Container, bool) {
	switch c.kind {
	case contextHost:
		if h, ok := c.host.Get(); ok {
			return h, true
		}
	case contextView:
		if v, ok := c.view.Get(); ok {
			return v, true
		}
	}
	return nil, false
}
