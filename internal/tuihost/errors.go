package tuihost

import "errors"

var (
	ErrScreenReleased  = errors.New("screen released")
	ErrAlreadyAttached = errors.New("overlay already attached")
	ErrNoRoot          = errors.New("no root screen")
)
