package gtkhost

import (
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/bannerd/internal/presenter"
)

// Dim animation timings.
const (
	dimInDuration  = 300 * time.Millisecond
	dimOutDuration = 200 * time.Millisecond
)

// animate runs a timed libadwaita animation on widget from one value to
// another, calling apply on every frame and done once at the end.
func animate(widget gtk.Widgetter, from, to float64, d time.Duration, apply func(float64), done func()) *adw.TimedAnimation {
	target := adw.NewCallbackAnimationTarget(apply)
	anim := adw.NewTimedAnimation(widget, from, to, uint(d.Milliseconds()), target)
	anim.SetEasing(adw.EaseOutCubic)
	if done != nil {
		anim.ConnectDone(done)
	}
	anim.Play()
	return anim
}

// Transition slides or fades the banner of o. Slides run the revealer
// for the movement while the opacity animation marks completion.
func (t *Tree) Transition(o *presenter.Overlay, tr presenter.Transition, done func(completed bool)) {
	v, ok := t.views[o]
	if !ok || v.detached {
		done(false)
		return
	}
	finish := v.track(done)

	r := v.revealer
	switch tr.Kind {
	case presenter.TransitionSlide:
		if tr.Edge == presenter.EdgeBottom {
			r.SetTransitionType(gtk.RevealerTransitionTypeSlideUp)
		} else {
			r.SetTransitionType(gtk.RevealerTransitionTypeSlideDown)
		}
		r.SetTransitionDuration(uint(tr.Duration.Milliseconds()))
	default:
		r.SetTransitionType(gtk.RevealerTransitionTypeNone)
		r.SetRevealChild(true)
	}

	to := 0.0
	if tr.Reveal {
		to = 1
	}
	if v.anim != nil {
		v.anim.Pause()
		v.animDone(false)
	}
	v.animDone = finish
	v.anim = animate(v.box, v.box.Opacity(), to, tr.Duration, v.box.SetOpacity, func() {
		finish(true)
	})
	if tr.Kind == presenter.TransitionSlide {
		r.SetRevealChild(tr.Reveal)
	}
}

// Dim fades in the dim layer behind the banner of o.
func (t *Tree) Dim(o *presenter.Overlay, mode presenter.DimMode) {
	v, ok := t.views[o]
	if !ok || v.dim == nil {
		return
	}
	if v.dimAnim != nil {
		v.dimAnim.Pause()
	}
	v.dimAnim = animate(v.dim, v.dim.Opacity(), dimOpacity(mode), dimInDuration, v.dim.SetOpacity, nil)
}

// Undim fades out the dim layer. Taps on it are ignored from now on.
func (t *Tree) Undim(o *presenter.Overlay, _ presenter.DimMode) {
	v, ok := t.views[o]
	if !ok || v.dim == nil {
		return
	}
	v.dim.SetCanTarget(false)
	if v.dimAnim != nil {
		v.dimAnim.Pause()
	}
	v.dimAnim = animate(v.dim, v.dim.Opacity(), 0, dimOutDuration, v.dim.SetOpacity, nil)
}
