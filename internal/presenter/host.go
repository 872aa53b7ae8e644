package presenter

import "fmt"

// Container is anything an overlay can be attached to.
type Container interface {
	// Attach installs the overlay. The container lays the overlay out
	// according to o.Layout and routes interaction to o.
	Attach(o *Overlay) error

	// Detach removes the overlay. Detaching an overlay that is not
	// attached is a no-op.
	Detach(o *Overlay)
}

// Host is a node of the host tree that can present an overlay, such as
// a window or a screen.
type Host interface {
	Container

	// Ref returns a weak reference to the host.
	Ref() Ref[Host]
}

// View is a plain view that an overlay can be attached to directly.
type View interface {
	Container

	// Ref returns a weak reference to the view.
	Ref() Ref[View]
}

// Chrome names a host's standard furniture.
type Chrome int

const (
	// ChromeTopBar is a navigation or header bar at the top of a host.
	ChromeTopBar Chrome = iota
	// ChromeBottomBar is a tab or status bar at the bottom of a host.
	ChromeBottomBar
)

func (c Chrome) String() string {
	if c == ChromeBottomBar {
		return "bottom-bar"
	}
	return "top-bar"
}

// WindowLevel is the stacking level of a dedicated overlay window.
type WindowLevel int

const (
	LevelBackground WindowLevel = iota
	LevelBottom
	LevelTop
	LevelOverlay
)

func (l WindowLevel) String() string {
	switch l {
	case LevelBackground:
		return "background"
	case LevelBottom:
		return "bottom"
	case LevelTop:
		return "top"
	case LevelOverlay:
		return "overlay"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseWindowLevel parses a level name as written in config files.
func ParseWindowLevel(s string) (WindowLevel, error) {
	switch s {
	case "background":
		return LevelBackground, nil
	case "bottom":
		return LevelBottom, nil
	case "top":
		return LevelTop, nil
	case "overlay", "":
		return LevelOverlay, nil
	default:
		return 0, fmt.Errorf("unknown window level %q", s)
	}
}

// Hint tells the host tree what is about to be attached so it can pick
// a better descendant.
type Hint struct {
	Style Style
	Modal bool
}

// HostTree is the application's host hierarchy as seen by the selector
// and the presenter.
type HostTree interface {
	// CurrentTopLevelHost returns the application's frontmost top-level
	// host, if any.
	CurrentTopLevelHost() (Host, bool)

	// PresentedHost returns the host that h is currently presenting
	// modally, if any.
	PresentedHost(h Host) (Host, bool)

	// IsEligible reports whether banners may be presented over h.
	IsEligible(h Host) bool

	// IsChromeVisible reports whether h currently shows the given chrome.
	IsChromeVisible(h Host, c Chrome) bool

	// SelectAttachmentDescendant lets start redirect the attachment to a
	// preferred internal child. Returning start is always valid.
	SelectAttachmentDescendant(start Host, hint Hint) Host

	// NewWindowHost creates a dedicated overlay host at level.
	NewWindowHost(level WindowLevel, takeKeyboard bool) (Host, error)

	// RemoveWindowHost destroys a host created by NewWindowHost.
	RemoveWindowHost(h Host)
}

// AttachmentKind selects how the attachment point is chosen.
type AttachmentKind int

const (
	AttachmentAutomatic AttachmentKind = iota
	AttachmentWindow
	AttachmentContainer
	AttachmentView
)

func (k AttachmentKind) String() string {
	switch k {
	case AttachmentAutomatic:
		return "automatic"
	case AttachmentWindow:
		return "window"
	case AttachmentContainer:
		return "container"
	case AttachmentView:
		return "view"
	default:
		return "unknown"
	}
}

// Attachment is the requested attachment mode. The zero value is
// automatic. Explicit hosts and views are held weakly.
type Attachment struct {
	Kind  AttachmentKind
	Level WindowLevel
	host  Ref[Host]
	view  Ref[View]
}

// AttachAutomatic attaches to the frontmost eligible host.
func AttachAutomatic() Attachment { return Attachment{} }

// AttachWindow attaches to a new dedicated window at level.
func AttachWindow(level WindowLevel) Attachment {
	return Attachment{Kind: AttachmentWindow, Level: level}
}

// AttachContainer attaches to h or a descendant it selects.
func AttachContainer(h Host) Attachment {
	a := Attachment{Kind: AttachmentContainer}
	if h != nil {
		a.host = h.Ref()
	}
	return a
}

// AttachView attaches directly to v.
func AttachView(v View) Attachment {
	a := Attachment{Kind: AttachmentView}
	if v != nil {
		a.view = v.Ref()
	}
	return a
}
