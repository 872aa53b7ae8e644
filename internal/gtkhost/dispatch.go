package gtkhost

import (
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/jmylchreest/bannerd/internal/presenter"
)

// Dispatch runs f on the GTK main loop.
func Dispatch(f func()) {
	glib.IdleAdd(f)
}

// Announcer returns an announcer that moves keyboard focus onto a
// banner before handing on to next. next may be nil.
func (t *Tree) Announcer(next presenter.Announcer) presenter.Announcer {
	return &focusAnnouncer{tree: t, next: next}
}

type focusAnnouncer struct {
	tree *Tree
	next presenter.Announcer
}

func (a *focusAnnouncer) Announce(message string) {
	if a.next != nil {
		a.next.Announce(message)
	}
}

func (a *focusAnnouncer) FocusOn(element any) {
	if o, ok := element.(*presenter.Overlay); ok {
		if v, ok := a.tree.views[o]; ok {
			v.focus()
		}
	}
	if a.next != nil {
		a.next.FocusOn(element)
	}
}
