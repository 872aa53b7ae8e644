package config

import (
	"fmt"

	"github.com/jmylchreest/bannerd/internal/model"
	"github.com/jmylchreest/bannerd/internal/presenter"
	"github.com/jmylchreest/bannerd/internal/queue"
)

// ToPresenterConfig maps the presentation and dim sections onto a
// presenter config. Listeners are left empty.
func (c *Config) ToPresenterConfig() (presenter.Config, error) {
	p := c.Presentation
	out := presenter.DefaultConfig()

	style, err := presenter.ParseStyle(p.Style)
	if err != nil {
		return out, err
	}
	if style == presenter.StyleCustom {
		return out, fmt.Errorf("style %q cannot be configured from a file", p.Style)
	}
	out.Style = style

	d, err := c.duration(p.Duration)
	if err != nil {
		return out, err
	}
	out.Duration = d

	switch p.Attachment {
	case "automatic":
		out.Attachment = presenter.AttachAutomatic()
	case "window", "":
		level, err := presenter.ParseWindowLevel(p.WindowLevel)
		if err != nil {
			return out, err
		}
		out.Attachment = presenter.AttachWindow(level)
	default:
		return out, fmt.Errorf("unknown attachment %q", p.Attachment)
	}

	dim, err := c.Dim.toDimMode(c.Dim.Mode)
	if err != nil {
		return out, err
	}
	out.Dim = dim
	out.TakeKeyboard = p.TakeKeyboard
	out.InteractiveHide = p.InteractiveHide
	return out, nil
}

// duration maps a duration mode name using the configured timings.
func (c *Config) duration(mode string) (presenter.Duration, error) {
	p := c.Presentation
	switch mode {
	case "automatic", "":
		return presenter.Auto(), nil
	case "seconds":
		return presenter.Seconds(p.Timeout.Duration().Seconds()), nil
	case "forever":
		return presenter.Forever(), nil
	case "indefinite":
		return presenter.Indefinite(p.ShowDelay.Duration(), p.MinimumVisible.Duration()), nil
	default:
		return presenter.Duration{}, fmt.Errorf("unknown duration %q", mode)
	}
}

// DurationFor returns the duration policy for a mode name, which may
// also be a Go duration such as "8s".
func (c *Config) DurationFor(mode string) (presenter.Duration, error) {
	if d, err := c.duration(mode); err == nil {
		return d, nil
	}
	var dur Duration
	if err := dur.UnmarshalText([]byte(mode)); err != nil {
		return presenter.Duration{}, fmt.Errorf("unknown duration %q", mode)
	}
	if dur <= 0 {
		return presenter.Forever(), nil
	}
	return presenter.Seconds(dur.Duration().Seconds()), nil
}

// DimFor returns the dim mode for a mode name using the configured
// color, blur and interactivity.
func (c *Config) DimFor(mode string) (presenter.DimMode, error) {
	return c.Dim.toDimMode(mode)
}

func (d DimConfig) toDimMode(mode string) (presenter.DimMode, error) {
	switch mode {
	case "none", "":
		return presenter.NoDim(), nil
	case "color":
		return presenter.ColorDim(d.Color, d.Interactive), nil
	case "blur":
		return presenter.BlurDim(presenter.BlurStyle(d.Blur), d.Alpha, d.Interactive), nil
	default:
		return presenter.DimMode{}, fmt.Errorf("unknown dim mode %q", mode)
	}
}

// ForUrgency adjusts cfg for a banner's urgency: critical banners stay
// up until dismissed when CriticalSticky is set.
func (c *Config) ForUrgency(cfg presenter.Config, urgency int) presenter.Config {
	if urgency == model.UrgencyCritical && c.Presentation.CriticalSticky &&
		cfg.Duration.Kind != presenter.DurationIndefinite {
		cfg.Duration = presenter.Forever()
	}
	return cfg
}

// QueueOptions maps the queue section onto queue options.
func (c *Config) QueueOptions() queue.Options {
	return queue.Options{
		IgnoreDuplicates: c.Queue.IgnoreDuplicates,
		PauseBetween:     c.Queue.PauseBetween.Duration(),
		MaxQueued:        c.Queue.MaxQueued,
	}
}
