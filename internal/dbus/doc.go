// Package dbus implements the org.freedesktop.Notifications D-Bus interface
// for bannerd. The server side receives Notify and CloseNotification calls
// and emits NotificationClosed and ActionInvoked; the client side is used by
// the banner command to send, close and wait for banners.
package dbus
