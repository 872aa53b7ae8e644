// Package config handles bannerd configuration file loading and parsing.
package config

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "10s", "1m", "1h30m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Plain integers are milliseconds
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m', '1h30m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the configuration for bannerd and the banner CLI.
// Loaded from ~/.config/bannerd/bannerd.toml
type Config struct {
	Presentation PresentationConfig `toml:"presentation" yaml:"presentation" json:"presentation"`
	Dim          DimConfig          `toml:"dim" yaml:"dim" json:"dim"`
	Queue        QueueConfig        `toml:"queue" yaml:"queue" json:"queue"`
	Display      DisplayConfig      `toml:"display" yaml:"display" json:"display"`
	Audio        AudioConfig        `toml:"audio" yaml:"audio" json:"audio"`
	Theme        ThemeConfig        `toml:"theme" yaml:"theme" json:"theme"`
}

// PresentationConfig holds the default presentation of a banner.
type PresentationConfig struct {
	Style           string   `toml:"style" yaml:"style" json:"style"`                               // "top", "bottom", "center"
	Duration        string   `toml:"duration" yaml:"duration" json:"duration"`                      // "automatic", "seconds", "forever", "indefinite"
	Timeout         Duration `toml:"timeout" yaml:"timeout" json:"timeout"`                         // Used by "seconds"
	ShowDelay       Duration `toml:"show_delay" yaml:"show_delay" json:"show_delay"`                // Used by "indefinite"
	MinimumVisible  Duration `toml:"minimum_visible" yaml:"minimum_visible" json:"minimum_visible"` // Used by "indefinite"
	CriticalSticky  bool     `toml:"critical_sticky" yaml:"critical_sticky" json:"critical_sticky"` // Critical banners never expire
	Attachment      string   `toml:"attachment" yaml:"attachment" json:"attachment"`                // "automatic", "window"
	WindowLevel     string   `toml:"window_level" yaml:"window_level" json:"window_level"`          // "background", "bottom", "top", "overlay"
	TakeKeyboard    bool     `toml:"take_keyboard" yaml:"take_keyboard" json:"take_keyboard"`
	InteractiveHide bool     `toml:"interactive_hide" yaml:"interactive_hide" json:"interactive_hide"`
}

// DimConfig holds the dim treatment behind a banner.
type DimConfig struct {
	Mode        string  `toml:"mode" yaml:"mode" json:"mode"`                      // "none", "color", "blur"
	Color       string  `toml:"color" yaml:"color" json:"color"`                   // CSS color for "color"
	Blur        string  `toml:"blur" yaml:"blur" json:"blur"`                      // "light", "dark", "regular"
	Alpha       float64 `toml:"alpha" yaml:"alpha" json:"alpha"`                   // 0.0-1.0 for "blur"
	Interactive bool    `toml:"interactive" yaml:"interactive" json:"interactive"` // Tap on the dim dismisses
}

// QueueConfig holds queueing behaviour.
type QueueConfig struct {
	IgnoreDuplicates bool     `toml:"ignore_duplicates" yaml:"ignore_duplicates" json:"ignore_duplicates"`
	PauseBetween     Duration `toml:"pause_between" yaml:"pause_between" json:"pause_between"`
	MaxQueued        int      `toml:"max_queued" yaml:"max_queued" json:"max_queued"` // 0 = unlimited
}

// DisplayConfig contains display-related settings.
type DisplayConfig struct {
	Width   int `toml:"width" yaml:"width" json:"width"`          // Banner width in pixels
	MarginX int `toml:"margin_x" yaml:"margin_x" json:"margin_x"` // Pixels from the screen side
	MarginY int `toml:"margin_y" yaml:"margin_y" json:"margin_y"` // Pixels from the anchored edge
	Monitor int `toml:"monitor" yaml:"monitor" json:"monitor"`    // 0 = focused, 1+ = specific monitor
}

// AudioConfig contains the accessibility cue settings.
type AudioConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled" json:"enabled"`
	Volume  int    `toml:"volume" yaml:"volume" json:"volume"` // 0-100
	Cue     string `toml:"cue" yaml:"cue" json:"cue"`          // Sound file; empty uses the built-in cue
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name        string `toml:"name" yaml:"name" json:"name"`                         // Theme name without .css extension
	ColorScheme string `toml:"color_scheme" yaml:"color_scheme" json:"color_scheme"` // "system", "light", or "dark"
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// Accepted values for the enumerated presentation settings.
var (
	ValidStyles       = []string{"top", "bottom", "center"}
	ValidDurations    = []string{"automatic", "seconds", "forever", "indefinite"}
	ValidAttachments  = []string{"automatic", "window"}
	ValidWindowLevels = []string{"background", "bottom", "top", "overlay"}
	ValidDimModes     = []string{"none", "color", "blur"}
	ValidBlurStyles   = []string{"light", "dark", "regular"}
)

// Default returns a new Config with default values.
func Default() *Config {
	return &Config{
		Presentation: PresentationConfig{
			Style:           "top",
			Duration:        "automatic",
			Timeout:         Duration(5 * time.Second),
			ShowDelay:       Duration(0),
			MinimumVisible:  Duration(time.Second),
			CriticalSticky:  true,
			Attachment:      "window",
			WindowLevel:     "overlay",
			TakeKeyboard:    false,
			InteractiveHide: true,
		},
		Dim: DimConfig{
			Mode:        "none",
			Color:       "rgba(0,0,0,0.3)",
			Blur:        "dark",
			Alpha:       0.8,
			Interactive: true,
		},
		Queue: QueueConfig{
			IgnoreDuplicates: true,
			PauseBetween:     Duration(250 * time.Millisecond),
			MaxQueued:        50,
		},
		Display: DisplayConfig{
			Width:   420,
			MarginX: 0,
			MarginY: 12,
			Monitor: 0,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  60,
		},
		Theme: ThemeConfig{
			Name:        "default",
			ColorScheme: string(ColorSchemeSystem),
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	p := c.Presentation
	if err := oneOf("presentation.style", p.Style, ValidStyles); err != nil {
		return err
	}
	if err := oneOf("presentation.duration", p.Duration, ValidDurations); err != nil {
		return err
	}
	if err := oneOf("presentation.attachment", p.Attachment, ValidAttachments); err != nil {
		return err
	}
	if err := oneOf("presentation.window_level", p.WindowLevel, ValidWindowLevels); err != nil {
		return err
	}
	if p.Duration == "seconds" && p.Timeout <= 0 {
		return fmt.Errorf("presentation.timeout must be positive for duration \"seconds\", got %s", p.Timeout.Duration())
	}
	if p.ShowDelay < 0 || p.MinimumVisible < 0 {
		return fmt.Errorf("presentation.show_delay and presentation.minimum_visible must not be negative")
	}

	if err := oneOf("dim.mode", c.Dim.Mode, ValidDimModes); err != nil {
		return err
	}
	if err := oneOf("dim.blur", c.Dim.Blur, ValidBlurStyles); err != nil {
		return err
	}
	if c.Dim.Alpha < 0 || c.Dim.Alpha > 1 {
		return fmt.Errorf("dim.alpha must be between 0 and 1, got %g", c.Dim.Alpha)
	}

	if c.Queue.MaxQueued < 0 {
		return fmt.Errorf("queue.max_queued must not be negative, got %d", c.Queue.MaxQueued)
	}
	if c.Queue.PauseBetween < 0 {
		return fmt.Errorf("queue.pause_between must not be negative")
	}

	if c.Display.Width < 100 || c.Display.Width > 2000 {
		return fmt.Errorf("display.width must be between 100 and 2000, got %d", c.Display.Width)
	}
	if c.Display.Monitor < 0 {
		return fmt.Errorf("display.monitor must not be negative, got %d", c.Display.Monitor)
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("audio.volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	if !slices.Contains(ValidColorSchemes(), ColorScheme(c.Theme.ColorScheme)) {
		return fmt.Errorf("invalid theme.color_scheme %q, must be one of: %v", c.Theme.ColorScheme, ValidColorSchemes())
	}
	return nil
}

func oneOf(field, value string, valid []string) error {
	if slices.Contains(valid, value) {
		return nil
	}
	return fmt.Errorf("invalid %s %q, must be one of: %v", field, value, valid)
}
