package presenter

// DimKind selects the treatment applied behind a visible banner.
type DimKind int

const (
	// DimNone leaves the content behind the banner untouched and
	// interactive.
	DimNone DimKind = iota
	// DimColor covers the content with a solid translucent color.
	DimColor
	// DimBlur blurs the content behind the banner.
	DimBlur
)

// String returns the config spelling of the kind.
func (k DimKind) String() string {
	switch k {
	case DimNone:
		return "none"
	case DimColor:
		return "color"
	case DimBlur:
		return "blur"
	default:
		return "unknown"
	}
}

// BlurStyle names the platform blur material.
type BlurStyle string

// Blur styles understood by the bundled hosts.
const (
	BlurLight   BlurStyle = "light"
	BlurDark    BlurStyle = "dark"
	BlurRegular BlurStyle = "regular"
)

// DefaultDimColor is the color used by ColorDim when none is given.
const DefaultDimColor = "rgba(0,0,0,0.3)"

// DimMode is the dim treatment of one presentation. The zero value is
// no dimming.
type DimMode struct {
	Kind DimKind

	// Color is the CSS color of a DimColor overlay.
	Color string

	// Blur and Alpha configure a DimBlur overlay.
	Blur  BlurStyle
	Alpha float64

	// Interactive lets a tap on the dimmed area dismiss the banner.
	Interactive bool
}

// NoDim returns a mode with no dimming.
func NoDim() DimMode { return DimMode{} }

// ColorDim returns a solid color dim.
func ColorDim(color string, interactive bool) DimMode {
	if color == "" {
		color = DefaultDimColor
	}
	return DimMode{Kind: DimColor, Color: color, Interactive: interactive}
}

// BlurDim returns a blur dim.
func BlurDim(style BlurStyle, alpha float64, interactive bool) DimMode {
	if style == "" {
		style = BlurDark
	}
	return DimMode{Kind: DimBlur, Blur: style, Alpha: min(max(alpha, 0), 1), Interactive: interactive}
}

// Modal reports whether the dim blocks interaction with the content
// behind the banner.
func (d DimMode) Modal() bool {
	return d.Kind != DimNone
}
