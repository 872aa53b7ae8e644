// Package daemon provides the orchestration for bannerd.
// It connects the D-Bus server to the banner queue, tracks which
// notification id each banner belongs to, raises internal banners and
// reloads the configuration when the file changes.
package daemon
