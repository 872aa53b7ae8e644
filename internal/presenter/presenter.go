package presenter

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/bannerd/internal/clock"
)

// State is the lifecycle state of a Presenter.
type State int

const (
	StateIdle State = iota
	StateInstalling
	StateAnimatingIn
	StateVisible
	StateAnimatingOut
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInstalling:
		return "installing"
	case StateAnimatingIn:
		return "animating-in"
	case StateVisible:
		return "visible"
	case StateAnimatingOut:
		return "animating-out"
	case StateRemoved:
		return "removed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// HideReason records what started the hide of a banner.
type HideReason int

const (
	// HideRequested is a hide requested through Hide.
	HideRequested HideReason = iota
	// HideExpired is a hide started by the auto-hide timer.
	HideExpired
	// HideDismissed is an interactive dismissal by the user.
	HideDismissed
)

func (r HideReason) String() string {
	switch r {
	case HideExpired:
		return "expired"
	case HideDismissed:
		return "dismissed"
	default:
		return "requested"
	}
}

// Environment holds the collaborators a Presenter works with. Only Tree
// is required. Dispatch must run f on the UI loop; when nil, f runs on
// whichever goroutine fired the timer, which is only safe with a fake
// clock.
type Environment struct {
	Tree         HostTree
	Transitioner Transitioner
	Dimmer       Dimmer
	Announcer    Announcer
	Clock        clock.Clock
	Dispatch     func(f func())
	Logger       *slog.Logger
}

// WithDefaults fills unset collaborators with no-op or real implementations.
func (e Environment) WithDefaults() Environment {
	if e.Transitioner == nil {
		e.Transitioner = InstantTransitioner{}
	}
	if e.Dimmer == nil {
		e.Dimmer = nopDimmer{}
	}
	if e.Announcer == nil {
		e.Announcer = nopAnnouncer{}
	}
	if e.Clock == nil {
		e.Clock = clock.Real()
	}
	if e.Dispatch == nil {
		e.Dispatch = func(f func()) { f() }
	}
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	return e
}

// scheduled is a cancellable callback delivered through Dispatch.
type scheduled struct {
	timer *clock.Timer
	done  bool
}

func (s *scheduled) cancel() {
	if s == nil {
		return
	}
	s.done = true
	s.timer.Stop()
}

type hideRequest struct {
	reason HideReason
	done   func(bool)
}

// Presenter drives one banner through a single show and hide cycle.
// It must only be used from the UI loop.
type Presenter struct {
	id      string
	content any
	cfg     Config
	env     Environment
	logger  *slog.Logger

	animator Animator
	state    State
	ctx      Context
	owned    Host
	overlay  *Overlay

	isHiding            bool
	interactivelyHidden bool
	entrySettled        bool
	shownAt             time.Time
	reason              HideReason

	showDone     func(bool)
	pendingHides []hideRequest
	waiters      []func(bool)

	install  *scheduled
	autoHide *scheduled
	gate     *scheduled
}

// New creates a presenter for content. The identity of content is taken
// from its ID method when it has one.
func New(content any, cfg Config, env Environment) *Presenter {
	env = env.WithDefaults()
	p := &Presenter{
		content: content,
		cfg:     cfg,
		env:     env,
	}
	if idf, ok := content.(Identifiable); ok {
		p.id = idf.ID()
	}
	p.logger = env.Logger.With("id", p.id)
	return p
}

// ID returns the identity copied from the content.
func (p *Presenter) ID() string { return p.id }

// Content returns the banner content.
func (p *Presenter) Content() any { return p.content }

// Config returns the presentation config.
func (p *Presenter) Config() Config { return p.cfg }

// State returns the current lifecycle state.
func (p *Presenter) State() State { return p.state }

// Context returns the resolved attachment point. It is the zero Context
// until Show succeeds.
func (p *Presenter) Context() Context { return p.ctx }

// Overlay returns the installed overlay, or nil before installation.
func (p *Presenter) Overlay() *Overlay { return p.overlay }

// IsHiding reports whether a hide has started.
func (p *Presenter) IsHiding() bool { return p.isHiding }

// InteractivelyHidden reports whether the user dismissed the banner.
func (p *Presenter) InteractivelyHidden() bool { return p.interactivelyHidden }

// HideReason returns what started the hide. It is only meaningful once
// IsHiding is true.
func (p *Presenter) HideReason() HideReason { return p.reason }

// ShownAt returns when the entry animation completed, or the zero time.
func (p *Presenter) ShownAt() time.Time { return p.shownAt }

// Show resolves the attachment point, installs the overlay and starts
// the entry animation. done receives true once the banner is visible
// and false when the entry animation was interrupted.
//
// Show returns a *PresentationError when no attachment point can be
// resolved; in that case nothing was installed and no event fired.
// With an indefinite duration the installation is deferred by the show
// delay, and a failure at that point is logged and reported through
// done(false) instead, with HideExpired as the hide reason. The context
// is still resolved up front, so a window attachment creates its host
// during the delay; the host stays empty until the overlay is attached.
func (p *Presenter) Show(done func(completed bool)) error {
	if p.state != StateIdle {
		return ErrAlreadyShown
	}

	mode := p.cfg.Attachment.Kind
	animator, err := p.resolveAnimator()
	if err != nil {
		return &PresentationError{Mode: mode, Err: err}
	}
	ctx, owned, err := Selector{Tree: p.env.Tree}.Resolve(p.cfg)
	if err != nil {
		p.logger.Debug("banner context resolution failed", "attachment", mode.String(), "error", err)
		return &PresentationError{Mode: mode, Err: err}
	}

	p.animator = animator
	p.ctx = ctx
	p.owned = owned
	p.showDone = done
	p.state = StateInstalling

	if delay, ok := p.cfg.Duration.ShowDelay(); ok && delay > 0 {
		p.logger.Debug("banner show deferred", "delay", delay)
		p.install = p.schedule(delay, func() {
			p.install = nil
			if err := p.installOverlay(); err != nil {
				p.logger.Warn("deferred banner install failed", "error", err)
				p.releaseOwned()
				p.reason = HideExpired
				p.state = StateRemoved
				p.finishShow(false)
			}
		})
		return nil
	}

	if err := p.installOverlay(); err != nil {
		p.releaseOwned()
		p.ctx = Context{}
		p.animator = nil
		p.showDone = nil
		p.state = StateIdle
		return &PresentationError{Mode: mode, Err: err}
	}
	return nil
}

// Hide starts hiding the banner. done receives true once the overlay
// has been removed, or false when the banner was never shown. Calling
// Hide while a hide is already under way only chains done.
func (p *Presenter) Hide(done func(completed bool)) {
	p.hide(HideRequested, done)
}

// DismissInteractively hides the banner on behalf of the user. It
// bypasses the minimum visible time.
func (p *Presenter) DismissInteractively() {
	p.hide(HideDismissed, nil)
}

func (p *Presenter) resolveAnimator() (Animator, error) {
	if p.cfg.Style == StyleCustom {
		if p.cfg.Animator == nil {
			return nil, ErrNoAnimator
		}
		return p.cfg.Animator, nil
	}
	return BuiltinAnimator(p.cfg.Style, p.env.Transitioner), nil
}

func (p *Presenter) installOverlay() error {
	c, ok := p.ctx.Container()
	if !ok {
		return ErrHostReleased
	}

	o := &Overlay{
		Content:   p.content,
		Layout:    layoutFor(p.cfg.Style, p.ctx, p.env.Tree, p.cfg.TakeKeyboard),
		Dim:       p.cfg.Dim,
		presenter: p,
	}
	if err := c.Attach(o); err != nil {
		return fmt.Errorf("attach overlay: %w", err)
	}
	p.overlay = o
	p.state = StateAnimatingIn
	p.logger.Debug("banner installed",
		"edge", o.Layout.Edge.String(),
		"dock", o.Layout.Dock.String(),
		"dim", o.Dim.Kind.String())

	p.emit(WillShow)
	if p.cfg.Dim.Modal() {
		p.env.Dimmer.Dim(o, p.cfg.Dim)
	}
	p.animator.Show(AnimationContext{Overlay: o, Container: c, Style: p.cfg.Style}, once(p.entryFinished))
	return nil
}

func (p *Presenter) entryFinished(completed bool) {
	if p.state != StateAnimatingIn {
		return
	}

	// Hides requested from the completion or a DidShow listener wait
	// until both have run.
	if completed {
		p.state = StateVisible
		p.shownAt = p.env.Clock.Now()
		p.logger.Debug("banner visible")
		p.announce()
		p.finishShow(true)
		p.emit(DidShow)
	} else {
		p.logger.Debug("banner entry animation interrupted")
		p.finishShow(false)
	}
	p.entrySettled = true

	pending := p.pendingHides
	p.pendingHides = nil
	for _, r := range pending {
		p.hide(r.reason, r.done)
	}
	if p.state == StateVisible {
		p.armAutoHide()
	}
}

func (p *Presenter) announce() {
	if p.cfg.Dim.Modal() {
		p.env.Announcer.FocusOn(p.overlay)
		return
	}
	if msg := accessibilityMessage(p.content); msg != "" {
		p.env.Announcer.Announce(msg)
	}
}

func accessibilityMessage(content any) string {
	switch c := content.(type) {
	case Accessible:
		return c.AccessibilityMessage()
	case fmt.Stringer:
		return c.String()
	case string:
		return c
	default:
		return ""
	}
}

func (p *Presenter) armAutoHide() {
	if p.isHiding {
		return
	}
	d, ok := p.cfg.Duration.PauseDuration()
	if !ok {
		return
	}
	p.autoHide = p.schedule(d, func() {
		p.autoHide = nil
		p.hide(HideExpired, nil)
	})
}

func (p *Presenter) hide(reason HideReason, done func(bool)) {
	switch p.state {
	case StateIdle, StateRemoved:
		if done != nil {
			done(false)
		}
		return

	case StateInstalling:
		// Nothing is on screen yet, so the deferred show is dropped.
		p.install.cancel()
		p.install = nil
		p.releaseOwned()
		p.isHiding = true
		p.reason = reason
		p.state = StateRemoved
		p.logger.Debug("banner show cancelled", "reason", reason.String())
		p.finishShow(false)
		if done != nil {
			done(true)
		}
		return

	case StateAnimatingIn, StateVisible:
		if !p.entrySettled {
			p.pendingHides = append(p.pendingHides, hideRequest{reason: reason, done: done})
			return
		}
	}

	if done != nil {
		p.waiters = append(p.waiters, done)
	}
	if p.isHiding {
		if reason == HideDismissed && p.gate != nil {
			p.interactivelyHidden = true
			p.reason = HideDismissed
			p.gate.cancel()
			p.gate = nil
			p.runHide()
		}
		return
	}
	p.beginHide(reason)
}

func (p *Presenter) beginHide(reason HideReason) {
	p.isHiding = true
	p.reason = reason
	if reason == HideDismissed {
		p.interactivelyHidden = true
	}
	p.autoHide.cancel()
	p.autoHide = nil

	delay, ok := p.cfg.Duration.DelayHide(p.shownAt, p.env.Clock.Now(), p.interactivelyHidden)
	if ok && delay > 0 {
		p.logger.Debug("banner hide gated", "delay", delay, "reason", reason.String())
		p.gate = p.schedule(delay, func() {
			p.gate = nil
			p.runHide()
		})
		return
	}
	p.runHide()
}

func (p *Presenter) runHide() {
	if p.state == StateAnimatingOut || p.state == StateRemoved {
		return
	}
	p.state = StateAnimatingOut
	p.logger.Debug("banner hiding", "reason", p.reason.String())
	p.emit(WillHide)
	if p.cfg.Dim.Modal() && p.overlay != nil {
		p.env.Dimmer.Undim(p.overlay, p.cfg.Dim)
	}

	c, ok := p.ctx.Container()
	if !ok || p.overlay == nil {
		p.teardown()
		return
	}
	p.animator.Hide(AnimationContext{Overlay: p.overlay, Container: c, Style: p.cfg.Style}, once(func(completed bool) {
		if !completed {
			p.logger.Debug("banner exit animation interrupted")
		}
		p.teardown()
	}))
}

func (p *Presenter) teardown() {
	if p.state == StateRemoved {
		return
	}
	if c, ok := p.ctx.Container(); ok && p.overlay != nil {
		c.Detach(p.overlay)
	}
	p.releaseOwned()
	p.state = StateRemoved
	p.logger.Debug("banner removed", "reason", p.reason.String())
	p.emit(DidHide)

	waiters := p.waiters
	p.waiters = nil
	for _, w := range waiters {
		w(true)
	}
}

func (p *Presenter) releaseOwned() {
	if p.owned == nil {
		return
	}
	if p.env.Tree != nil {
		p.env.Tree.RemoveWindowHost(p.owned)
	}
	p.owned = nil
}

func (p *Presenter) finishShow(completed bool) {
	done := p.showDone
	p.showDone = nil
	if done != nil {
		done(completed)
	}
}

func (p *Presenter) emit(e Event) {
	emit(p.logger, p.cfg.Listeners, e, p)
}

func (p *Presenter) schedule(d time.Duration, f func()) *scheduled {
	s := &scheduled{}
	s.timer = p.env.Clock.AfterFunc(max(0, d), func() {
		p.env.Dispatch(func() {
			if s.done {
				return
			}
			s.done = true
			f()
		})
	})
	return s
}
