package gtkhost

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmylchreest/bannerd/internal/model"
	"github.com/jmylchreest/bannerd/internal/presenter"
)

// content is the text a banner widget shows.
type content struct {
	Title    string
	Body     string
	AppName  string
	Icon     string
	Category string
	Urgency  int
}

// contentFor extracts the displayable text from a presenter's content.
func contentFor(v any) content {
	switch c := v.(type) {
	case *model.Banner:
		return content{
			Title:    c.Title,
			Body:     c.Body,
			AppName:  c.AppName,
			Icon:     c.Icon,
			Category: c.Category,
			Urgency:  c.Urgency,
		}
	case string:
		return content{Title: c, Urgency: model.UrgencyNormal}
	case fmt.Stringer:
		return content{Title: c.String(), Urgency: model.UrgencyNormal}
	case nil:
		return content{Urgency: model.UrgencyNormal}
	default:
		return content{Title: fmt.Sprint(c), Urgency: model.UrgencyNormal}
	}
}

// bannerClasses returns the CSS classes of a banner's outer box.
func bannerClasses(c content, l presenter.Layout, scheme string) []string {
	classes := []string{"banner", "banner-" + l.Edge.String(), urgencyClass(c.Urgency)}
	if scheme != "" {
		classes = append(classes, scheme)
	}
	if l.Dock != presenter.DockContainerEdge {
		classes = append(classes, "docked")
	}
	if c.AppName != "" {
		if s := sanitizeClassName(c.AppName); s != "" {
			classes = append(classes, "app-"+s)
		}
	}
	if c.Category != "" {
		if s := sanitizeClassName(c.Category); s != "" {
			classes = append(classes, "category-"+s)
		}
	}
	if c.Body != "" {
		classes = append(classes, "has-body")
	}
	if c.Icon != "" {
		classes = append(classes, "has-icon")
	}
	return classes
}

// dimClasses returns the CSS classes of the dim layer behind a banner.
func dimClasses(d presenter.DimMode) []string {
	switch d.Kind {
	case presenter.DimColor:
		return []string{"banner-dim", "dim-color"}
	case presenter.DimBlur:
		return []string{"banner-dim", "dim-" + string(d.Blur)}
	default:
		return nil
	}
}

// dimOpacity is the opacity the dim layer animates to.
func dimOpacity(d presenter.DimMode) float64 {
	if d.Kind == presenter.DimBlur {
		return d.Alpha
	}
	return 1
}

// sanitizeClassName converts a string to a valid CSS class name.
// Replaces spaces and special characters with hyphens, lowercases.
func sanitizeClassName(name string) string {
	var result strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			result.WriteRune(r)
			prevHyphen = false
		case r == '-' || r == '_' || r == ' ' || r == '.' || r == '/':
			if !prevHyphen && result.Len() > 0 {
				result.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(result.String(), "-")
}

// urgencyClass converts urgency level to CSS class name.
func urgencyClass(urgency int) string {
	switch urgency {
	case model.UrgencyLow:
		return "urgency-low"
	case model.UrgencyCritical:
		return "urgency-critical"
	default:
		return "urgency-normal"
	}
}

// dimColorCSS renders one rule per registered dim color class.
func dimColorCSS(classes map[string]string) string {
	colors := make([]string, 0, len(classes))
	for color := range classes {
		colors = append(colors, color)
	}
	sort.Strings(colors)

	var b strings.Builder
	for _, color := range colors {
		fmt.Fprintf(&b, ".banner-dim.%s { background-color: %s; }\n", classes[color], color)
	}
	return b.String()
}
