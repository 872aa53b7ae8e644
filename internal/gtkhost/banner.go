package gtkhost

import (
	"strings"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/bannerd/internal/presenter"
)

// bannerStyle is what a view needs from the tree when it is built.
type bannerStyle struct {
	width     int
	marginX   int
	marginY   int
	scheme    string
	dimColors *dimStyles
}

// bannerView is the widget hierarchy of one attached overlay.
type bannerView struct {
	overlay *presenter.Overlay

	revealer *gtk.Revealer
	box      *gtk.Box
	closeBtn *gtk.Button

	// dim covers the host behind the banner. dimWindow is the
	// fullscreen surface holding it when the host is a layer surface.
	dim       *gtk.Box
	dimWindow *gtk.Window

	anim        *adw.TimedAnimation
	animDone    func(bool)
	dimAnim     *adw.TimedAnimation
	pending     map[int]func(bool)
	nextPending int
	detached    bool
}

// newBannerView builds the widgets for o. Nothing is added to a window.
func newBannerView(o *presenter.Overlay, style bannerStyle) *bannerView {
	v := &bannerView{overlay: o}
	c := contentFor(o.Content)

	v.box = gtk.NewBox(gtk.OrientationHorizontal, 0)
	for _, class := range bannerClasses(c, o.Layout, style.scheme) {
		v.box.AddCSSClass(class)
	}
	if style.width > 0 {
		v.box.SetSizeRequest(style.width, -1)
	}

	if c.Icon != "" {
		icon := gtk.NewImage()
		icon.AddCSSClass("banner-icon")
		icon.SetPixelSize(32)
		if strings.HasPrefix(c.Icon, "/") {
			icon.SetFromFile(c.Icon)
		} else {
			icon.SetFromIconName(c.Icon)
		}
		icon.SetVAlign(gtk.AlignStart)
		v.box.Append(icon)
	}

	text := gtk.NewBox(gtk.OrientationVertical, 2)
	text.SetHExpand(true)
	v.box.Append(text)

	header := gtk.NewBox(gtk.OrientationHorizontal, 8)
	header.AddCSSClass("banner-header")
	text.Append(header)

	title := gtk.NewLabel(c.Title)
	title.AddCSSClass("banner-title")
	title.SetXAlign(0)
	title.SetEllipsize(3) // PANGO_ELLIPSIZE_END
	title.SetMaxWidthChars(40)
	title.SetHExpand(true)
	header.Append(title)

	if c.AppName != "" {
		app := gtk.NewLabel(c.AppName)
		app.AddCSSClass("banner-appname")
		app.SetXAlign(1)
		header.Append(app)
	}

	if c.Body != "" {
		body := gtk.NewLabel(c.Body)
		body.AddCSSClass("banner-body")
		body.SetXAlign(0)
		body.SetWrap(true)
		body.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
		body.SetMaxWidthChars(50)
		text.Append(body)
	}

	if o.Interactive() {
		v.closeBtn = gtk.NewButtonFromIconName("window-close-symbolic")
		v.closeBtn.AddCSSClass("banner-close")
		v.closeBtn.SetVAlign(gtk.AlignStart)
		v.closeBtn.SetVisible(false) // Shown on hover or focus
		v.closeBtn.ConnectClicked(o.Dismiss)
		v.box.Append(v.closeBtn)
	}

	v.revealer = gtk.NewRevealer()
	v.revealer.AddCSSClass("banner-revealer")
	v.revealer.SetChild(v.box)
	v.place(o.Layout, style)

	v.connectSignals()

	if classes := dimClasses(o.Dim); classes != nil {
		v.dim = gtk.NewBox(gtk.OrientationVertical, 0)
		for _, class := range classes {
			v.dim.AddCSSClass(class)
		}
		if o.Dim.Kind == presenter.DimColor && style.dimColors != nil {
			v.dim.AddCSSClass(style.dimColors.classFor(o.Dim.Color))
		}
		v.dim.SetHExpand(true)
		v.dim.SetVExpand(true)
		v.dim.SetOpacity(0)

		tap := gtk.NewGestureClick()
		tap.ConnectReleased(func(nPress int, x, y float64) {
			o.TapBackground()
		})
		v.dim.AddController(tap)
	}

	return v
}

// place aligns the revealer inside its overlay and prepares it for the
// transition it will run first.
func (v *bannerView) place(l presenter.Layout, style bannerStyle) {
	r := v.revealer
	r.SetHAlign(gtk.AlignCenter)
	r.SetMarginStart(style.marginX)
	r.SetMarginEnd(style.marginX)

	switch l.Edge {
	case presenter.EdgeTop:
		r.SetVAlign(gtk.AlignStart)
		r.SetTransitionType(gtk.RevealerTransitionTypeSlideDown)
		r.SetRevealChild(false)
	case presenter.EdgeBottom:
		r.SetVAlign(gtk.AlignEnd)
		r.SetTransitionType(gtk.RevealerTransitionTypeSlideUp)
		r.SetRevealChild(false)
	default:
		r.SetVAlign(gtk.AlignCenter)
		r.SetTransitionType(gtk.RevealerTransitionTypeNone)
		r.SetRevealChild(true)
	}
	v.box.SetOpacity(0)
}

// dock offsets the revealer past visible chrome of height px.
func (v *bannerView) dock(l presenter.Layout, style bannerStyle, px int) {
	switch l.Dock {
	case presenter.DockBelowTopBar:
		v.revealer.SetMarginTop(px + style.marginY)
	case presenter.DockAboveBottomBar:
		v.revealer.SetMarginBottom(px + style.marginY)
	default:
		if l.Edge == presenter.EdgeTop {
			v.revealer.SetMarginTop(style.marginY)
		} else if l.Edge == presenter.EdgeBottom {
			v.revealer.SetMarginBottom(style.marginY)
		}
	}
}

// connectSignals sets up click, hover and keyboard handling.
func (v *bannerView) connectSignals() {
	o := v.overlay

	click := gtk.NewGestureClick()
	click.SetButton(0) // All buttons
	click.ConnectReleased(func(nPress int, x, y float64) {
		if click.CurrentButton() == 1 {
			o.Dismiss()
		}
	})
	v.box.AddController(click)

	motion := gtk.NewEventControllerMotion()
	motion.ConnectEnter(func(x, y float64) {
		v.box.AddCSSClass("hover")
		if v.closeBtn != nil {
			v.closeBtn.SetVisible(true)
		}
	})
	motion.ConnectLeave(func() {
		v.box.RemoveCSSClass("hover")
		if v.closeBtn != nil && !v.closeBtn.HasFocus() {
			v.closeBtn.SetVisible(false)
		}
	})
	v.box.AddController(motion)

	if o.Layout.TakeKeyboard {
		keys := gtk.NewEventControllerKey()
		keys.ConnectKeyPressed(func(keyval, keycode uint, state gdk.ModifierType) bool {
			if keyval != gdk.KEY_Escape {
				return false
			}
			o.Dismiss()
			return true
		})
		v.box.AddController(keys)
		v.box.SetFocusable(true)
	}
}

// focus moves keyboard focus onto the banner.
func (v *bannerView) focus() {
	if v.detached {
		return
	}
	if v.closeBtn != nil {
		v.closeBtn.SetVisible(true)
		v.closeBtn.GrabFocus()
		return
	}
	v.box.SetFocusable(true)
	v.box.GrabFocus()
}

// track registers done as an outstanding completion. It returns the
// function to call when the transition ends; only its first call counts.
func (v *bannerView) track(done func(bool)) func(bool) {
	if v.pending == nil {
		v.pending = make(map[int]func(bool))
	}
	v.nextPending++
	key := v.nextPending
	finish := func(completed bool) {
		if _, ok := v.pending[key]; !ok {
			return
		}
		delete(v.pending, key)
		done(completed && !v.detached)
	}
	v.pending[key] = finish
	return finish
}

// interrupt ends every outstanding transition as not completed.
func (v *bannerView) interrupt() {
	for _, finish := range v.pending {
		finish(false)
	}
}
