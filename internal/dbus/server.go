package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/bannerd/internal/model"
)

const (
	// DBusInterface is the notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = "/org/freedesktop/Notifications"
	// DBusBusName is the bus name to claim.
	DBusBusName = "org.freedesktop.Notifications"
)

// introspection describes the exported interface. Only the four
// notification methods are listed; the Go helpers on NotificationServer
// are not callable over the bus.
const introspection = introspect.IntrospectDeclarationString + `
<node name="` + DBusPath + `">
  <interface name="` + DBusInterface + `">
    <method name="GetCapabilities">
      <arg name="capabilities" type="as" direction="out"/>
    </method>
    <method name="GetServerInformation">
      <arg name="name" type="s" direction="out"/>
      <arg name="vendor" type="s" direction="out"/>
      <arg name="version" type="s" direction="out"/>
      <arg name="spec_version" type="s" direction="out"/>
    </method>
    <method name="Notify">
      <arg name="app_name" type="s" direction="in"/>
      <arg name="replaces_id" type="u" direction="in"/>
      <arg name="app_icon" type="s" direction="in"/>
      <arg name="summary" type="s" direction="in"/>
      <arg name="body" type="s" direction="in"/>
      <arg name="actions" type="as" direction="in"/>
      <arg name="hints" type="a{sv}" direction="in"/>
      <arg name="expire_timeout" type="i" direction="in"/>
      <arg name="id" type="u" direction="out"/>
    </method>
    <method name="CloseNotification">
      <arg name="id" type="u" direction="in"/>
    </method>
    <signal name="NotificationClosed">
      <arg name="id" type="u"/>
      <arg name="reason" type="u"/>
    </signal>
    <signal name="ActionInvoked">
      <arg name="id" type="u"/>
      <arg name="action_key" type="s"/>
    </signal>
  </interface>` + introspect.IntrospectDataString + `</node>`

// NotificationHandler receives every notification that parsed into a
// banner. It runs on the D-Bus goroutine.
type NotificationHandler func(in *Incoming)

// CloseHandler receives CloseNotification calls for open ids. It owns
// emitting NotificationClosed once the banner has gone.
type CloseHandler func(id uint32)

// NotificationServer serves org.freedesktop.Notifications and turns Notify
// calls into banners. An id stays open from Notify until
// NotificationClosed is emitted for it, so every id is closed once.
type NotificationServer struct {
	conn   *dbus.Conn
	logger *slog.Logger
	lastID atomic.Uint32

	onNotify NotificationHandler
	onClose  CloseHandler

	mu      sync.RWMutex
	open    map[uint32]struct{}
	info    ServerInfo
	running bool
}

// NewNotificationServer creates a server that is not yet on the bus.
func NewNotificationServer(logger *slog.Logger) *NotificationServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationServer{
		logger: logger,
		open:   make(map[uint32]struct{}),
		info:   DefaultServerInfo(),
	}
}

// SetNotifyHandler sets where accepted banners go.
func (s *NotificationServer) SetNotifyHandler(handler NotificationHandler) {
	s.onNotify = handler
}

// SetCloseHandler sets the handler for CloseNotification. Without one
// the id is closed immediately.
func (s *NotificationServer) SetCloseHandler(handler CloseHandler) {
	s.onClose = handler
}

// SetServerInfo sets what GetServerInformation reports.
func (s *NotificationServer) SetServerInfo(info ServerInfo) {
	s.info = info
}

// Start exports the server on the session bus and claims the bus name.
func (s *NotificationServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("server already running")
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export notification server: %w", err)
	}
	if err := conn.Export(introspect.Introspectable(introspection), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspection: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}

	s.conn = conn
	s.running = true
	s.logger.Info("banner server started", "bus_name", DBusBusName, "capabilities", len(ServerCapabilities))
	return nil
}

// Stop releases the bus name. The shared session connection stays open.
func (s *NotificationServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false

	if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
		s.logger.Warn("failed to release bus name", "error", err)
	}
	s.logger.Info("banner server stopped", "open", len(s.open))
	return nil
}

// GetCapabilities implements the D-Bus method GetCapabilities() -> as.
func (s *NotificationServer) GetCapabilities() ([]string, *dbus.Error) {
	return ServerCapabilities, nil
}

// GetServerInformation implements GetServerInformation() -> (ssss).
func (s *NotificationServer) GetServerInformation() (string, string, string, string, *dbus.Error) {
	return s.info.Name, s.info.Vendor, s.info.Version, s.info.SpecVersion, nil
}

// Notify implements Notify(susssasa{sv}i) -> u. A replaces_id that is
// still open keeps its id; anything else gets a fresh one.
func (s *NotificationServer) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	id := replacesID
	if id == 0 || !s.IsActive(id) {
		id = s.lastID.Add(1)
	}
	return s.accept(&Notification{
		AppName:       appName,
		ReplacesID:    replacesID,
		AppIcon:       appIcon,
		Summary:       summary,
		Body:          body,
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	}, id), nil
}

// NotifyInternal shows a banner raised by the daemon itself, such as a
// config reload failure, the same way as a Notify call.
func (s *NotificationServer) NotifyInternal(n *Notification) uint32 {
	return s.accept(n, s.lastID.Add(1))
}

// accept opens id and hands the banner on. A notification that does not
// make a banner is closed straight away as undefined.
func (s *NotificationServer) accept(n *Notification, id uint32) uint32 {
	s.mu.Lock()
	s.open[id] = struct{}{}
	s.mu.Unlock()

	in, err := n.Parse(id)
	if err != nil {
		s.logger.Warn("rejected notification", "id", id, "app", n.AppName, "error", err)
		if err := s.CloseWithReason(id, CloseReasonUndefined); err != nil {
			s.logger.Debug("could not report rejected notification", "id", id, "error", err)
		}
		return id
	}

	s.logger.Debug("banner received",
		"id", id,
		"app", in.Banner.AppName,
		"urgency", model.UrgencyNames[in.Banner.Urgency],
		"style", in.Presentation.Style,
		"replaces", n.ReplacesID,
	)
	if s.onNotify != nil {
		s.onNotify(in)
	}
	return id
}

// CloseNotification implements CloseNotification(u). Ids that are not
// open are ignored.
func (s *NotificationServer) CloseNotification(id uint32) *dbus.Error {
	if !s.IsActive(id) {
		return nil
	}
	if s.onClose != nil {
		s.onClose(id)
		return nil
	}
	if err := s.CloseWithReason(id, CloseReasonClosed); err != nil {
		s.logger.Warn("failed to emit NotificationClosed", "id", id, "error", err)
	}
	return nil
}

// MarkClosed forgets id without emitting anything.
func (s *NotificationServer) MarkClosed(id uint32) {
	s.mu.Lock()
	delete(s.open, id)
	s.mu.Unlock()
}

// ActiveCount returns the number of ids awaiting NotificationClosed.
func (s *NotificationServer) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.open)
}

// IsActive reports whether id is still awaiting NotificationClosed.
func (s *NotificationServer) IsActive(id uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.open[id]
	return ok
}
