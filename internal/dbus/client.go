package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Request is a Notify call made by a client.
type Request struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string
	Hints         map[string]dbus.Variant
	ExpireTimeout int32
}

// SetHint sets a string hint, skipping empty values.
func (r *Request) SetHint(key, value string) {
	if value == "" {
		return
	}
	if r.Hints == nil {
		r.Hints = make(map[string]dbus.Variant)
	}
	r.Hints[key] = dbus.MakeVariant(value)
}

// SetUrgency sets the urgency hint.
func (r *Request) SetUrgency(level int) {
	if r.Hints == nil {
		r.Hints = make(map[string]dbus.Variant)
	}
	r.Hints["urgency"] = dbus.MakeVariant(byte(level))
}

// Client calls a running notification server.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// Dial connects to the session bus.
func Dial() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an existing connection.
func NewClient(conn *dbus.Conn) *Client {
	return &Client{
		conn: conn,
		obj:  conn.Object(DBusBusName, DBusPath),
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Notify sends a notification and returns its id.
func (c *Client) Notify(ctx context.Context, req Request) (uint32, error) {
	hints := req.Hints
	if hints == nil {
		hints = map[string]dbus.Variant{}
	}
	actions := req.Actions
	if actions == nil {
		actions = []string{}
	}

	var id uint32
	call := c.obj.CallWithContext(ctx, DBusInterface+".Notify", 0,
		req.AppName, req.ReplacesID, req.AppIcon, req.Summary, req.Body,
		actions, hints, req.ExpireTimeout)
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	return id, nil
}

// CloseNotification asks the server to close id.
func (c *Client) CloseNotification(ctx context.Context, id uint32) error {
	if err := c.obj.CallWithContext(ctx, DBusInterface+".CloseNotification", 0, id).Err; err != nil {
		return fmt.Errorf("close notification %d: %w", id, err)
	}
	return nil
}

// ServerInformation returns the running server's identity.
func (c *Client) ServerInformation(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	err := c.obj.CallWithContext(ctx, DBusInterface+".GetServerInformation", 0).
		Store(&info.Name, &info.Vendor, &info.Version, &info.SpecVersion)
	if err != nil {
		return ServerInfo{}, fmt.Errorf("get server information: %w", err)
	}
	return info, nil
}

// Closed describes how a notification went away.
type Closed struct {
	ID     uint32
	Reason CloseReason
	// Action is the key of the action invoked before closing, if any.
	Action string
}

// Watcher receives the server's signals. Create it before sending so no
// signal is missed.
type Watcher struct {
	conn    *dbus.Conn
	signals chan *dbus.Signal
}

// Watch subscribes to NotificationClosed and ActionInvoked.
func (c *Client) Watch() (*Watcher, error) {
	for _, member := range []string{"NotificationClosed", "ActionInvoked"} {
		err := c.conn.AddMatchSignal(
			dbus.WithMatchObjectPath(DBusPath),
			dbus.WithMatchInterface(DBusInterface),
			dbus.WithMatchMember(member),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to add match for %s: %w", member, err)
		}
	}

	w := &Watcher{conn: c.conn, signals: make(chan *dbus.Signal, 16)}
	c.conn.Signal(w.signals)
	return w, nil
}

// Wait blocks until id is closed or ctx is done.
func (w *Watcher) Wait(ctx context.Context, id uint32) (Closed, error) {
	closed := Closed{ID: id}
	for {
		select {
		case <-ctx.Done():
			return closed, ctx.Err()
		case sig, ok := <-w.signals:
			if !ok {
				return closed, fmt.Errorf("signal channel closed")
			}
			if done := closed.apply(sig); done {
				return closed, nil
			}
		}
	}
}

// Stop unsubscribes the watcher.
func (w *Watcher) Stop() {
	w.conn.RemoveSignal(w.signals)
}

func (c *Closed) apply(sig *dbus.Signal) bool {
	if sig == nil || len(sig.Body) < 2 {
		return false
	}
	sigID, ok := sig.Body[0].(uint32)
	if !ok || sigID != c.ID {
		return false
	}

	switch sig.Name {
	case DBusInterface + ".ActionInvoked":
		if key, ok := sig.Body[1].(string); ok {
			c.Action = key
		}
		return false
	case DBusInterface + ".NotificationClosed":
		if reason, ok := sig.Body[1].(uint32); ok {
			c.Reason = CloseReason(reason)
		}
		return true
	}
	return false
}
