package presenter

import (
	"fmt"
	"log/slog"
)

// Event is a lifecycle event of one presentation.
type Event int

const (
	WillShow Event = iota
	DidShow
	WillHide
	DidHide
)

func (e Event) String() string {
	switch e {
	case WillShow:
		return "will-show"
	case DidShow:
		return "did-show"
	case WillHide:
		return "will-hide"
	case DidHide:
		return "did-hide"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Listener receives lifecycle events. It runs on the UI loop.
type Listener func(e Event, p *Presenter)

// emit calls every listener in registration order. A panicking listener
// is logged and skipped.
func emit(logger *slog.Logger, listeners []Listener, e Event, p *Presenter) {
	for i, l := range listeners {
		if l == nil {
			continue
		}
		callListener(logger, i, l, e, p)
	}
}

func callListener(logger *slog.Logger, index int, l Listener, e Event, p *Presenter) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("banner listener panicked",
				"event", e.String(),
				"listener", index,
				"id", p.ID(),
				"panic", r)
		}
	}()
	l(e, p)
}
