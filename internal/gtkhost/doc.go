// Package gtkhost presents banners over GTK4 application windows.
//
// Tree implements presenter.HostTree over the windows an application
// tracks. Tracked windows become WindowHosts that lay banners out in an
// overlay above their content. Dedicated overlay windows are layer-shell
// surfaces at one of the presenter's window levels. The package also
// provides the Transitioner and Dimmer the presenter animates with, and
// a Dispatch function that runs closures on the GTK main loop.
//
// Everything in this package must be called on the GTK main loop.
package gtkhost
