package presenter

import (
	"fmt"
	"sync"
	"time"
)

// Style selects the built-in animator.
type Style int

const (
	StyleTop Style = iota
	StyleBottom
	StyleCenter
	// StyleCustom uses Config.Animator.
	StyleCustom
)

func (s Style) String() string {
	switch s {
	case StyleTop:
		return "top"
	case StyleBottom:
		return "bottom"
	case StyleCenter:
		return "center"
	case StyleCustom:
		return "custom"
	default:
		return fmt.Sprintf("style(%d)", int(s))
	}
}

// ParseStyle parses a style name as written in config files.
func ParseStyle(s string) (Style, error) {
	switch s {
	case "top", "":
		return StyleTop, nil
	case "bottom":
		return StyleBottom, nil
	case "center", "centre":
		return StyleCenter, nil
	case "custom":
		return StyleCustom, nil
	default:
		return 0, fmt.Errorf("unknown style %q", s)
	}
}

// Edge returns the edge a banner of this style is anchored to.
func (s Style) Edge() Edge {
	switch s {
	case StyleBottom:
		return EdgeBottom
	case StyleCenter:
		return EdgeCenter
	default:
		return EdgeTop
	}
}

// Default animation timings of the built-in animators.
const (
	ShowAnimationDuration = 400 * time.Millisecond
	HideAnimationDuration = 200 * time.Millisecond
)

// AnimationContext is handed to an Animator for one transition.
type AnimationContext struct {
	Overlay   *Overlay
	Container Container
	Style     Style
}

// Animator runs a banner's entry and exit animations. Implementations
// must call done exactly once, with false when the animation was
// interrupted.
type Animator interface {
	Show(ctx AnimationContext, done func(completed bool))
	Hide(ctx AnimationContext, done func(completed bool))
}

// AnimatorFunc adapts a pair of functions to Animator.
type AnimatorFunc struct {
	ShowFunc func(ctx AnimationContext, done func(completed bool))
	HideFunc func(ctx AnimationContext, done func(completed bool))
}

func (f AnimatorFunc) Show(ctx AnimationContext, done func(bool)) {
	if f.ShowFunc == nil {
		done(true)
		return
	}
	f.ShowFunc(ctx, done)
}

func (f AnimatorFunc) Hide(ctx AnimationContext, done func(bool)) {
	if f.HideFunc == nil {
		done(true)
		return
	}
	f.HideFunc(ctx, done)
}

// TransitionKind is the primitive a transition uses.
type TransitionKind int

const (
	TransitionSlide TransitionKind = iota
	TransitionFade
)

func (k TransitionKind) String() string {
	if k == TransitionFade {
		return "fade"
	}
	return "slide"
}

// Transition describes one primitive animation of an overlay.
type Transition struct {
	Kind     TransitionKind
	Edge     Edge
	Reveal   bool
	Duration time.Duration
}

// Transitioner runs primitive transitions. It is implemented by the
// concrete hosts.
type Transitioner interface {
	Transition(o *Overlay, t Transition, done func(completed bool))
}

// InstantTransitioner completes every transition immediately.
type InstantTransitioner struct{}

func (InstantTransitioner) Transition(_ *Overlay, _ Transition, done func(bool)) {
	done(true)
}

// builtinAnimator slides top and bottom banners in from their edge and
// fades center banners.
type builtinAnimator struct {
	style Style
	tr    Transitioner
}

// BuiltinAnimator returns the animator for one of the built-in styles.
func BuiltinAnimator(style Style, tr Transitioner) Animator {
	if tr == nil {
		tr = InstantTransitioner{}
	}
	return &builtinAnimator{style: style, tr: tr}
}

func (a *builtinAnimator) transition(reveal bool) Transition {
	t := Transition{Kind: TransitionSlide, Edge: a.style.Edge(), Reveal: reveal}
	if t.Edge == EdgeCenter {
		t.Kind = TransitionFade
	}
	if reveal {
		t.Duration = ShowAnimationDuration
	} else {
		t.Duration = HideAnimationDuration
	}
	return t
}

func (a *builtinAnimator) Show(ctx AnimationContext, done func(bool)) {
	a.tr.Transition(ctx.Overlay, a.transition(true), once(done))
}

func (a *builtinAnimator) Hide(ctx AnimationContext, done func(bool)) {
	a.tr.Transition(ctx.Overlay, a.transition(false), once(done))
}

// once wraps done so only its first call has any effect.
func once(done func(bool)) func(bool) {
	var o sync.Once
	return func(completed bool) {
		o.Do(func() { done(completed) })
	}
}

// Dimmer applies and removes the dim treatment behind an overlay. Both
// calls are fire-and-forget.
type Dimmer interface {
	Dim(o *Overlay, mode DimMode)
	Undim(o *Overlay, mode DimMode)
}

// Announcer delivers accessibility announcements.
type Announcer interface {
	Announce(message string)
	FocusOn(element any)
}

// Accessible is implemented by content that provides its own
// announcement text.
type Accessible interface {
	AccessibilityMessage() string
}

// Identifiable is implemented by content with a declared identity.
type Identifiable interface {
	ID() string
}

type nopDimmer struct{}

func (nopDimmer) Dim(*Overlay, DimMode)   {}
func (nopDimmer) Undim(*Overlay, DimMode) {}

type nopAnnouncer struct{}

func (nopAnnouncer) Announce(string) {}
func (nopAnnouncer) FocusOn(any)     {}
