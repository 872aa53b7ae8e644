package dbus

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/bannerd/internal/model"
	"github.com/jmylchreest/bannerd/internal/presenter"
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved/undefined.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// CloseReasonFor maps why a banner was hidden onto the wire reason.
func CloseReasonFor(reason presenter.HideReason) CloseReason {
	switch reason {
	case presenter.HideExpired:
		return CloseReasonExpired
	case presenter.HideDismissed:
		return CloseReasonDismissed
	case presenter.HideRequested:
		return CloseReasonClosed
	default:
		return CloseReasonUndefined
	}
}

// Hint names understood in addition to the standard freedesktop hints.
const (
	HintStyle    = "x-banner-style"
	HintDuration = "x-banner-duration"
	HintDim      = "x-banner-dim"
	HintLevel    = "x-banner-level"
	HintTag      = "x-banner-tag"
)

// Notification represents an incoming D-Bus Notify call.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Action represents a notification action with key and label.
type Action struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ParsedActions converts the D-Bus action array to structured form.
// D-Bus actions are passed as alternating key/label pairs.
func (n *Notification) ParsedActions() []Action {
	actions := make([]Action, 0, len(n.Actions)/2)
	for i := 0; i+1 < len(n.Actions); i += 2 {
		actions = append(actions, Action{
			Key:   n.Actions[i],
			Label: n.Actions[i+1],
		})
	}
	return actions
}

func (n *Notification) stringHint(key string) string {
	if v, ok := n.Hints[key]; ok {
		if s, ok := v.Value().(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// Urgency extracts the urgency hint from the notification.
// Returns model.UrgencyNormal if not specified or out of range.
func (n *Notification) Urgency() int {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok && int(b) <= model.UrgencyCritical {
			return int(b)
		}
	}
	return model.UrgencyNormal
}

// Category extracts the category hint.
func (n *Notification) Category() string { return n.stringHint("category") }

// ImagePath extracts the image-path hint.
func (n *Notification) ImagePath() string { return n.stringHint("image-path") }

// Tag returns the identity hint. x-banner-tag wins over the dunst and
// generic stack tags.
func (n *Notification) Tag() string {
	for _, key := range []string{HintTag, "x-dunst-stack-tag", "stack-tag"} {
		if s := n.stringHint(key); s != "" {
			return s
		}
	}
	return ""
}

// Style returns the x-banner-style hint.
func (n *Notification) Style() string { return n.stringHint(HintStyle) }

// Duration returns the x-banner-duration hint: a mode name or a Go
// duration string.
func (n *Notification) Duration() string { return n.stringHint(HintDuration) }

// Dim returns the x-banner-dim hint.
func (n *Notification) Dim() string { return n.stringHint(HintDim) }

// Level returns the x-banner-level hint.
func (n *Notification) Level() string { return n.stringHint(HintLevel) }

// Presentation is how a notification asks to be shown. Empty fields
// leave the configured default in place.
type Presentation struct {
	Style    string
	Duration string
	Dim      string
	Level    string
	// ExpireTimeout is the Notify timeout in milliseconds: -1 for the
	// server default, 0 for never.
	ExpireTimeout int32
}

// Presentation collects the x-banner-* hints and the expire timeout.
func (n *Notification) Presentation() Presentation {
	return Presentation{
		Style:         n.Style(),
		Duration:      n.Duration(),
		Dim:           n.Dim(),
		Level:         n.Level(),
		ExpireTimeout: n.ExpireTimeout,
	}
}

// Incoming is a notification the server accepted, as a banner plus the
// way it asked to be presented.
type Incoming struct {
	ID           uint32
	Banner       *model.Banner
	Presentation Presentation
}

// Parse turns the call into an Incoming under id. It fails when the
// notification does not make a valid banner.
func (n *Notification) Parse(id uint32) (*Incoming, error) {
	b, err := n.ToBanner(id)
	if err != nil {
		return nil, err
	}
	return &Incoming{ID: id, Banner: b, Presentation: n.Presentation()}, nil
}

// ToBanner converts the call into a banner carrying the assigned id.
func (n *Notification) ToBanner(id uint32) (*model.Banner, error) {
	b, err := model.NewBanner("dbus")
	if err != nil {
		return nil, err
	}
	b.NotificationID = id
	b.AppName = n.AppName
	if b.AppName == "" {
		b.AppName = "unknown"
	}
	b.Title = n.Summary
	b.Body = n.Body
	b.Icon = n.AppIcon
	if b.Icon == "" {
		b.Icon = n.ImagePath()
	}
	b.Category = n.Category()
	b.Tag = n.Tag()
	b.ExpireTimeout = n.ExpireTimeout
	b.SetUrgency(n.Urgency())
	for _, a := range n.ParsedActions() {
		b.Actions = append(b.Actions, model.Action{Key: a.Key, Label: a.Label})
	}
	b.EnsureContentHash()

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid notification from %s: %w", n.AppName, err)
	}
	return b, nil
}

// ServerCapabilities lists the capabilities advertised by bannerd. The
// x-banner-* hints are advertised by name so clients can probe for them.
var ServerCapabilities = []string{
	"actions",
	"body",
	"icon-static",
	HintStyle,
	HintDuration,
	HintDim,
	HintLevel,
	HintTag,
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string // "bannerd"
	Vendor      string
	Version     string // Build version
	SpecVersion string // "1.2"
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "bannerd",
		Vendor:      "bannerd",
		Version:     "0.0.1",
		SpecVersion: "1.2",
	}
}
