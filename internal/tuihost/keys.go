package tuihost

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings of the demo.
type KeyMap struct {
	// Presenting
	Top      key.Binding
	Bottom   key.Binding
	Center   key.Binding
	Window   key.Binding
	Pane     key.Binding
	Burst    key.Binding
	Duration key.Binding
	DimMode  key.Binding
	Dismiss  key.Binding
	TapDim   key.Binding
	HideAll  key.Binding

	// Host tree
	Modal     key.Binding
	TopBar    key.Binding
	BottomBar key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Top, k.Bottom, k.Center, k.Dismiss, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Top, k.Bottom, k.Center, k.Window, k.Pane, k.Burst},
		{k.Duration, k.DimMode, k.Dismiss, k.TapDim, k.HideAll},
		{k.Modal, k.TopBar, k.BottomBar, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Top: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "top banner"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bottom banner"),
		),
		Center: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "center banner"),
		),
		Window: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "overlay window"),
		),
		Pane: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "in pane"),
		),
		Burst: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "queue three"),
		),
		Duration: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "cycle duration"),
		),
		DimMode: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "cycle dim"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("enter", "x"),
			key.WithHelp("enter", "dismiss"),
		),
		TapDim: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "tap dim"),
		),
		HideAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "hide all"),
		),
		Modal: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "toggle modal"),
		),
		TopBar: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "toggle header"),
		),
		BottomBar: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "toggle footer"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
