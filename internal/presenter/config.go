package presenter

// Config is the immutable configuration of one presentation.
type Config struct {
	Style Style

	// Animator is used when Style is StyleCustom.
	Animator Animator

	Duration   Duration
	Attachment Attachment
	Dim        DimMode

	// InteractiveHide lets a tap on the banner dismiss it.
	InteractiveHide bool

	// TakeKeyboard makes a dedicated window host take keyboard focus.
	TakeKeyboard bool

	// Listeners receive lifecycle events in registration order.
	Listeners []Listener
}

// DefaultConfig returns a top banner that hides automatically, attaches
// automatically and can be tapped away.
func DefaultConfig() Config {
	return Config{
		Style:           StyleTop,
		Duration:        Auto(),
		Attachment:      AttachAutomatic(),
		Dim:             NoDim(),
		InteractiveHide: true,
	}
}

// WithListener returns a copy of c with l appended to its listeners.
func (c Config) WithListener(l Listener) Config {
	ls := make([]Listener, 0, len(c.Listeners)+1)
	ls = append(ls, c.Listeners...)
	c.Listeners = append(ls, l)
	return c
}
