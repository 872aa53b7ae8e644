package tuihost

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/bannerd/internal/clock"
	"github.com/jmylchreest/bannerd/internal/config"
	"github.com/jmylchreest/bannerd/internal/model"
	"github.com/jmylchreest/bannerd/internal/presenter"
	"github.com/jmylchreest/bannerd/internal/queue"
)

// maxEvents is how many log lines the demo keeps.
const maxEvents = 8

// demoDurations are the duration modes the demo cycles through.
var demoDurations = []string{"automatic", "seconds", "forever", "indefinite"}

// demoDims are the dim modes the demo cycles through.
var demoDims = []string{"none", "color", "blur"}

type event struct {
	at   time.Time
	text string
}

// DemoOptions configures the demo.
type DemoOptions struct {
	Config *config.Config
	Clock  clock.Clock
	Logger *slog.Logger
}

// Demo is a Bubble Tea model with a root screen, a content pane and a
// modal screen that banners can be presented over.
type Demo struct {
	cfg    *config.Config
	clock  clock.Clock
	logger *slog.Logger

	tree  *Tree
	queue *queue.Queue

	root  *Screen
	pane  *Screen
	modal *Screen

	keys KeyMap
	help help.Model

	duration int
	dim      int
	counter  int
	events   []event

	width  int
	height int
	ready  bool
}

// NewDemo creates the demo model.
func NewDemo(opts DemoOptions) *Demo {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	root := NewScreen("root", "bannerd demo")
	pane := NewScreen("pane", "Content pane")
	pane.BottomBar = false
	pane.Body = "Automatic banners land here while the pane is the preferred container."
	root.AddChild(pane)

	modal := NewScreen("modal", "Modal screen")
	modal.Body = "Banners now present over this screen. Press m to close it."
	modal.Status = "m close"

	d := &Demo{
		cfg:    cfg,
		clock:  clk,
		logger: logger,
		root:   root,
		pane:   pane,
		modal:  modal,
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}

	d.tree = NewTree(root, logger)
	env := presenter.Environment{
		Tree:         d.tree,
		Transitioner: d.tree,
		Dimmer:       d.tree,
		Clock:        clk,
		Dispatch:     d.tree.Dispatch,
		Logger:       logger,
	}
	d.queue = queue.New(env, cfg.QueueOptions(), logger)
	d.queue.SetEventCallback(func(content any, e presenter.Event) {
		d.record(fmt.Sprintf("%s: %s", titleOf(content), e))
	})
	d.queue.SetCloseCallback(func(content any, reason presenter.HideReason) {
		d.record(fmt.Sprintf("%s: closed (%s)", titleOf(content), reason))
	})
	return d
}

// Tree returns the demo's host tree.
func (d *Demo) Tree() *Tree {
	return d.tree
}

// Queue returns the demo's banner queue.
func (d *Demo) Queue() *queue.Queue {
	return d.queue
}

func titleOf(content any) string {
	if b, ok := content.(*model.Banner); ok {
		return b.Title
	}
	return fmt.Sprint(content)
}

func (d *Demo) record(text string) {
	d.events = append(d.events, event{at: d.clock.Now(), text: text})
	if len(d.events) > maxEvents {
		d.events = d.events[len(d.events)-maxEvents:]
	}
}

// Init initializes the demo.
func (d *Demo) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (d *Demo) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handled, cmd := d.tree.Update(msg); handled {
		return d, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := d.handleKey(msg)
		return d, tea.Batch(cmd, d.tree.Cmd())

	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		d.help.Width = msg.Width
		d.ready = true
	}
	return d, nil
}

// handleKey handles key presses.
func (d *Demo) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, d.keys.Quit):
		d.queue.Stop()
		return tea.Quit
	case key.Matches(msg, d.keys.Help):
		d.help.ShowAll = !d.help.ShowAll

	case key.Matches(msg, d.keys.Top):
		d.present(presenter.StyleTop, presenter.AttachAutomatic(), model.UrgencyNormal)
	case key.Matches(msg, d.keys.Bottom):
		d.present(presenter.StyleBottom, presenter.AttachAutomatic(), model.UrgencyNormal)
	case key.Matches(msg, d.keys.Center):
		d.present(presenter.StyleCenter, presenter.AttachAutomatic(), model.UrgencyNormal)
	case key.Matches(msg, d.keys.Window):
		d.present(presenter.StyleTop, presenter.AttachWindow(presenter.LevelOverlay), model.UrgencyNormal)
	case key.Matches(msg, d.keys.Burst):
		for _, u := range []int{model.UrgencyLow, model.UrgencyNormal, model.UrgencyCritical} {
			d.present(presenter.StyleTop, presenter.AttachAutomatic(), u)
		}

	case key.Matches(msg, d.keys.Pane):
		d.pane.Container = !d.pane.Container
	case key.Matches(msg, d.keys.Duration):
		d.duration = (d.duration + 1) % len(demoDurations)
	case key.Matches(msg, d.keys.DimMode):
		d.dim = (d.dim + 1) % len(demoDims)

	case key.Matches(msg, d.keys.Dismiss):
		if p := d.queue.CurrentPresenter(); p != nil && p.Overlay() != nil {
			p.Overlay().Dismiss()
		}
	case key.Matches(msg, d.keys.TapDim):
		if o, ok := d.tree.Dimmed(); ok {
			o.TapBackground()
		}
	case key.Matches(msg, d.keys.HideAll):
		d.queue.HideAll()

	case key.Matches(msg, d.keys.Modal):
		if d.root.Presented() == nil {
			d.root.Present(d.modal)
		} else {
			d.root.DismissPresented()
		}
	case key.Matches(msg, d.keys.TopBar):
		d.root.TopBar = !d.root.TopBar
	case key.Matches(msg, d.keys.BottomBar):
		d.root.BottomBar = !d.root.BottomBar
	}
	return nil
}

// present queues a banner with the demo's current settings.
func (d *Demo) present(style presenter.Style, attachment presenter.Attachment, urgency int) {
	cfg, err := d.presentationConfig(style, attachment, urgency)
	if err != nil {
		d.record("invalid settings: " + err.Error())
		return
	}

	b, err := model.NewBanner("demo")
	if err != nil {
		d.record("cannot create banner: " + err.Error())
		return
	}
	d.counter++
	b.AppName = "demo"
	b.Title = fmt.Sprintf("%s banner #%d", style, d.counter)
	b.Body = fmt.Sprintf("%s via %s, duration %s, dim %s",
		model.UrgencyNames[urgency], attachment.Kind, demoDurations[d.duration], demoDims[d.dim])
	b.Tag = fmt.Sprintf("demo-%d", d.counter)
	b.SetUrgency(urgency)

	if !d.queue.Enqueue(b, cfg) {
		d.record(b.Title + ": rejected")
	}
}

func (d *Demo) presentationConfig(style presenter.Style, attachment presenter.Attachment, urgency int) (presenter.Config, error) {
	cfg, err := d.cfg.ToPresenterConfig()
	if err != nil {
		return cfg, err
	}
	cfg.Style = style
	cfg.Attachment = attachment
	if cfg.Duration, err = d.cfg.DurationFor(demoDurations[d.duration]); err != nil {
		return cfg, err
	}
	if cfg.Dim, err = d.cfg.DimFor(demoDims[d.dim]); err != nil {
		return cfg, err
	}
	return d.cfg.ForUrgency(cfg, urgency), nil
}

// body renders the root screen's text.
func (d *Demo) body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "duration %s · dim %s · pane preferred %t · queued %d\n\n",
		demoDurations[d.duration], demoDims[d.dim], d.pane.Container, d.queue.QueuedCount())

	now := d.clock.Now()
	for _, e := range d.events {
		fmt.Fprintf(&b, "%-14s %s\n", humanize.RelTime(e.at, now, "ago", "from now"), e.text)
	}
	return strings.TrimRight(b.String(), "\n")
}

// View renders the demo.
func (d *Demo) View() string {
	if !d.ready {
		return "Initializing..."
	}
	d.root.Body = d.body()
	d.root.Status = d.help.View(d.keys)
	return d.tree.Render(d.width, d.height)
}

// Run starts the demo in the alternate screen.
func Run(opts DemoOptions) error {
	d := NewDemo(opts)
	p := tea.NewProgram(d, tea.WithAltScreen())
	d.tree.SetSender(p.Send)
	_, err := p.Run()
	return err
}
