package theme

import (
	"log/slog"
	"sync"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/bannerd/internal/config"
)

// Loader owns the CSS provider that styles every banner window.
type Loader struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	provider  *gtk.CSSProvider
	themesDir string
	theme     *Theme
	applied   bool
}

// NewLoader creates a loader reading user themes from config.ThemesDir.
// It must be created on the GTK main thread.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:    logger,
		provider:  gtk.NewCSSProvider(),
		themesDir: config.ThemesDir(),
	}
}

// LoadTheme loads a theme by name into the provider. Unknown names load
// the default theme.
func (l *Loader) LoadTheme(name string) {
	theme, found := Resolve(name, l.themesDir)
	if !found {
		l.logger.Warn("theme not found, using default", "theme", name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.provider.LoadFromString(theme.CSS)
	l.theme = theme
	l.logger.Info("loaded theme", "name", theme.Name, "path", theme.Path)
}

// Theme returns the currently loaded theme.
func (l *Loader) Theme() *Theme {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.theme
}

// Apply installs the provider on the default display. Later LoadTheme
// calls restyle existing banners.
func (l *Loader) Apply() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.applied {
		return
	}

	display := gdk.DisplayGetDefault()
	if display == nil {
		l.logger.Warn("no display available, cannot apply theme")
		return
	}
	gtk.StyleContextAddProviderForDisplay(display, l.provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
	l.applied = true
}

// SchemeClass returns the "light" or "dark" class for a configured color
// scheme, asking libadwaita when the scheme follows the system.
func SchemeClass(scheme string) string {
	switch config.ColorScheme(scheme) {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	default:
		if adw.StyleManagerGetDefault().Dark() {
			return "dark"
		}
		return "light"
	}
}
