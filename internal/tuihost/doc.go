// Package tuihost presents banners inside a terminal UI built with
// Bubble Tea.
//
// Screens are the hosts: a root screen, the screens it presents
// modally, and child panes. Tree implements presenter.HostTree over
// them, animates banners frame by frame with tea.Tick, and composes the
// final view with lipgloss. All presenter work happens inside the
// program's Update, so the Bubble Tea loop is the UI loop.
package tuihost
