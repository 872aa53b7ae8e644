// Package presenter implements the banner presentation lifecycle.
//
// A Presenter attaches one banner to a host, animates it in, keeps it on
// screen for the configured duration and retracts it again. It decides
// where the banner attaches (Selector), how long it stays (Duration),
// how entry and exit animation line up with the dim overlay (Animator,
// Dimmer) and how interactive dismissal interacts with the
// minimum-visible-time gate.
//
// The package never renders anything itself. Host trees, animation
// primitives, dimming and accessibility delivery are supplied by the
// caller through the interfaces in this package; see internal/gtkhost
// and internal/tuihost for the concrete hosts.
//
// A Presenter is owned by a single UI loop. Timers are delivered back
// onto that loop through Environment.Dispatch.
package presenter
