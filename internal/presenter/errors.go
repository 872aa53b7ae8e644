package presenter

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHostAvailable is returned when automatic attachment finds no
	// host to present over.
	ErrNoHostAvailable = errors.New("no host available")

	// ErrHostReleased is returned when an explicit container or view was
	// released before the banner could be shown.
	ErrHostReleased = errors.New("host released")

	// ErrAlreadyShown is returned by Show on a presenter that has
	// already been shown. Each show cycle needs a fresh Presenter.
	ErrAlreadyShown = errors.New("presenter already shown")

	// ErrNoAnimator is returned when the custom style is configured
	// without an animator.
	ErrNoAnimator = errors.New("custom style requires an animator")
)

// PresentationError is returned by Show when the banner could not be
// installed. No events have fired when it is returned.
type PresentationError struct {
	Mode AttachmentKind
	Err  error
}

func (e *PresentationError) Error() string {
	return fmt.Sprintf("present banner (%s attachment): %v", e.Mode, e.Err)
}

func (e *PresentationError) Unwrap() error {
	return e.Err
}
