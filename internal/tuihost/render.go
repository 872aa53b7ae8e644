package tuihost

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/bannerd/internal/model"
	"github.com/jmylchreest/bannerd/internal/presenter"
)

var (
	topBarStyle = lipgloss.NewStyle().
			Bold(true).
			Reverse(true).
			Padding(0, 1)

	bottomBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	paneTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	bannerTitleStyle = lipgloss.NewStyle().Bold(true)
	bannerAppStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// region is a band of rows of the terminal.
type region struct {
	top, height int
}

func (r region) bottom() int { return r.top + r.height }

// canvas is the frame being composed, one string per row.
type canvas struct {
	width int
	lines []string
}

func newCanvas(width, height int) *canvas {
	return &canvas{width: width, lines: make([]string, height)}
}

func (c *canvas) set(row int, line string) {
	if row < 0 || row >= len(c.lines) {
		return
	}
	c.lines[row] = lipgloss.NewStyle().MaxWidth(c.width).Render(line)
}

func (c *canvas) String() string {
	return strings.Join(c.lines, "\n")
}

// Render composes the whole tree into a width by height frame.
func (t *Tree) Render(width, height int) string {
	if width <= 0 || height <= 0 || t.root == nil {
		return ""
	}
	c := newCanvas(width, height)

	full := region{top: 0, height: height}
	for i, s := range t.zOrder() {
		r := full
		regions := map[*Screen]region{s: r}
		switch {
		case s.window:
		case i == 0:
			regions = t.drawScreen(c, s, r)
		default:
			r = modalRegion(height)
			regions = t.drawScreen(c, s, r)
		}
		t.drawOverlays(c, s, r, regions)
	}
	return c.String()
}

// modalRegion is where a presented screen is drawn.
func modalRegion(height int) region {
	h := min(height, max(height*2/3, 6))
	return region{top: (height - h) / 2, height: h}
}

// drawScreen draws s and its panes into r and records each pane's region.
func (t *Tree) drawScreen(c *canvas, s *Screen, r region) map[*Screen]region {
	regions := make(map[*Screen]region)
	t.layout(c, s, r, regions, 0)
	return regions
}

func (t *Tree) layout(c *canvas, s *Screen, r region, regions map[*Screen]region, depth int) {
	regions[s] = r
	for row := r.top; row < r.bottom(); row++ {
		c.set(row, "")
	}

	row, end := r.top, r.bottom()
	if s.TopBar && row < end {
		title := s.Title
		if depth > 0 {
			c.set(row, paneTitleStyle.Render("── "+title+" "+strings.Repeat("─", max(0, c.width-len(title)-4))))
		} else {
			c.set(row, topBarStyle.Width(c.width).Render(title))
		}
		row++
	}
	if s.BottomBar && end > row {
		status := strings.Split(s.Status, "\n")
		n := min(len(status), end-row)
		end -= n
		for i, line := range status[len(status)-n:] {
			c.set(end+i, bottomBarStyle.Render(line))
		}
	}

	var visible []*Screen
	for _, child := range s.children {
		if !child.Hidden && !child.released {
			visible = append(visible, child)
		}
	}

	body := wrapLines(s.Body, c.width)
	bodyRows := end - row
	if len(visible) > 0 {
		bodyRows = min(len(body), (end-row)/2)
	}
	for i := 0; i < bodyRows && i < len(body); i++ {
		c.set(row+i, body[i])
	}
	row += bodyRows

	if len(visible) == 0 || row >= end {
		return
	}
	each := (end - row) / len(visible)
	for i, child := range visible {
		h := each
		if i == len(visible)-1 {
			h = end - row
		}
		t.layout(c, child, region{top: row, height: h}, regions, depth+1)
		row += h
	}
}

// drawOverlays dims and draws the banners of s and its panes.
func (t *Tree) drawOverlays(c *canvas, s *Screen, r region, regions map[*Screen]region) {
	for _, o := range t.overlaysOf(s) {
		host := t.hostOf(o)
		hr, ok := regions[host]
		if !ok {
			hr = r
		}
		if mode, ok := t.dims[o]; ok {
			dim(c, hr, mode)
		}
		t.drawBanner(c, o, hr)
	}
}

// dim restyles every row of r.
func dim(c *canvas, r region, mode presenter.DimMode) {
	style := dimStyle(mode)
	for row := r.top; row < r.bottom() && row < len(c.lines); row++ {
		c.lines[row] = style.Render(stripANSI(c.lines[row]))
	}
}

func dimStyle(mode presenter.DimMode) lipgloss.Style {
	switch {
	case mode.Kind == presenter.DimColor:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	case mode.Blur == presenter.BlurLight:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Faint(true)
	default:
		return lipgloss.NewStyle().Faint(true)
	}
}

// drawBanner draws o inside r according to its layout and how far its
// transition has run.
func (t *Tree) drawBanner(c *canvas, o *presenter.Overlay, r region) {
	f, progress := t.progress(o)
	if progress <= 0 {
		return
	}
	lines := strings.Split(renderBanner(o, c.width, progress < 1 && f != nil && f.kind == presenter.TransitionFade), "\n")

	if f != nil && f.kind == presenter.TransitionSlide && progress < 1 {
		shown := int(math.Ceil(float64(len(lines)) * progress))
		if o.Layout.Edge == presenter.EdgeBottom {
			lines = lines[:shown]
		} else {
			lines = lines[len(lines)-shown:]
		}
	}

	top := bannerRow(o.Layout, r, len(lines))
	for i, line := range lines {
		if top+i >= r.bottom() {
			break
		}
		c.set(top+i, line)
	}
}

// bannerRow returns the first row of an n-row banner laid out with l in r.
func bannerRow(l presenter.Layout, r region, n int) int {
	switch l.Edge {
	case presenter.EdgeBottom:
		end := r.bottom()
		if l.Dock == presenter.DockAboveBottomBar {
			end--
		}
		return max(r.top, end-n)
	case presenter.EdgeCenter:
		return r.top + max(0, (r.height-n)/2)
	default:
		if l.Dock == presenter.DockBelowTopBar {
			return r.top + 1
		}
		return r.top
	}
}

// renderBanner renders the banner box for o.
func renderBanner(o *presenter.Overlay, width int, faint bool) string {
	title, body, app, urgency := bannerText(o.Content)

	header := bannerTitleStyle.Render(title)
	if app != "" {
		header += "  " + bannerAppStyle.Render(app)
	}
	text := header
	if body != "" {
		text += "\n" + body
	}
	if o.Interactive() {
		text += "\n" + bannerAppStyle.Render("enter to dismiss")
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(urgencyColor(urgency)).
		Padding(0, 1).
		Width(max(width-2, 1)).
		Faint(faint)
	return style.Render(text)
}

func bannerText(content any) (title, body, app string, urgency int) {
	switch c := content.(type) {
	case *model.Banner:
		return c.Title, c.Body, c.AppName, c.Urgency
	case presenter.Accessible:
		return c.AccessibilityMessage(), "", "", model.UrgencyNormal
	case string:
		return c, "", "", model.UrgencyNormal
	default:
		return "", "", "", model.UrgencyNormal
	}
}

func urgencyColor(urgency int) lipgloss.Color {
	switch urgency {
	case model.UrgencyLow:
		return lipgloss.Color("8")
	case model.UrgencyCritical:
		return lipgloss.Color("9")
	default:
		return lipgloss.Color("12")
	}
}

// wrapLines splits text into rows no wider than width.
func wrapLines(text string, width int) []string {
	if text == "" {
		return nil
	}
	wrapped := lipgloss.NewStyle().Width(width).Render(text)
	return strings.Split(wrapped, "\n")
}

// stripANSI removes ANSI escape codes.
func stripANSI(s string) string {
	result := make([]byte, 0, len(s))
	inEscape := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if s[i] == 'm' {
				inEscape = false
			}
			continue
		}
		result = append(result, s[i])
	}
	return string(result)
}
