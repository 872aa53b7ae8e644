package presenter

// maxPresentedDepth bounds the walk down the presented chain in case a
// host tree reports a cycle.
const maxPresentedDepth = 64

// Selector resolves an Attachment to a Context.
type Selector struct {
	Tree HostTree
}

// Resolve picks the attachment point for cfg. For window attachments the
// returned owned host was created by the tree and must be released with
// RemoveWindowHost by the caller.
func (s Selector) Resolve(cfg Config) (ctx Context, owned Host, err error) {
	hint := Hint{Style: cfg.Style, Modal: cfg.Dim.Modal()}
	a := cfg.Attachment

	switch a.Kind {
	case AttachmentWindow:
		if s.Tree == nil {
			return Context{}, nil, ErrNoHostAvailable
		}
		h, err := s.Tree.NewWindowHost(a.Level, cfg.TakeKeyboard)
		if err != nil {
			return Context{}, nil, err
		}
		if h == nil {
			return Context{}, nil, ErrNoHostAvailable
		}
		return HostContext(h), h, nil

	case AttachmentContainer:
		h, ok := a.host.Get()
		if !ok {
			return Context{}, nil, ErrHostReleased
		}
		if s.Tree != nil {
			h = s.selectDescendant(h, hint)
		}
		return HostContext(h), nil, nil

	case AttachmentView:
		v, ok := a.view.Get()
		if !ok {
			return Context{}, nil, ErrHostReleased
		}
		return ViewContext(v), nil, nil

	default:
		h, err := s.frontmost()
		if err != nil {
			return Context{}, nil, err
		}
		return HostContext(s.selectDescendant(h, hint)), nil, nil
	}
}

// frontmost walks from the top-level host down the presented chain and
// returns the last eligible host on it.
func (s Selector) frontmost() (Host, error) {
	if s.Tree == nil {
		return nil, ErrNoHostAvailable
	}
	root, ok := s.Tree.CurrentTopLevelHost()
	if !ok || root == nil {
		return nil, ErrNoHostAvailable
	}

	var found Host
	h := root
	for range maxPresentedDepth {
		if s.Tree.IsEligible(h) {
			found = h
		}
		next, ok := s.Tree.PresentedHost(h)
		if !ok || next == nil {
			break
		}
		h = next
	}
	if found == nil {
		return nil, ErrNoHostAvailable
	}
	return found, nil
}

func (s Selector) selectDescendant(h Host, hint Hint) Host {
	if d := s.Tree.SelectAttachmentDescendant(h, hint); d != nil {
		return d
	}
	return h
}
