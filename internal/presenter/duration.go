package presenter

import "time"

// AutomaticTimeout is how long an automatic-duration banner stays visible.
const AutomaticTimeout = 2 * time.Second

// DurationKind selects how long a banner stays on screen.
type DurationKind int

const (
	// DurationAutomatic hides the banner after AutomaticTimeout.
	DurationAutomatic DurationKind = iota
	// DurationSeconds hides the banner after a caller supplied timeout.
	DurationSeconds
	// DurationForever never hides the banner on its own.
	DurationForever
	// DurationIndefinite defers showing by a delay and gates hiding on a
	// minimum visible time. It never hides on its own.
	DurationIndefinite
)

// String returns the config spelling of the kind.
func (k DurationKind) String() string {
	switch k {
	case DurationAutomatic:
		return "automatic"
	case DurationSeconds:
		return "seconds"
	case DurationForever:
		return "forever"
	case DurationIndefinite:
		return "indefinite"
	default:
		return "unknown"
	}
}

// Duration is the duration policy of one presentation. The zero value
// is the automatic policy.
type Duration struct {
	Kind DurationKind

	// Timeout is the auto-hide delay for DurationSeconds.
	Timeout time.Duration

	// Delay defers the show for DurationIndefinite.
	Delay time.Duration

	// Minimum is the minimum visible time for DurationIndefinite.
	Minimum time.Duration
}

// Auto returns the automatic duration policy.
func Auto() Duration { return Duration{Kind: DurationAutomatic} }

// Seconds returns a policy that hides the banner after n seconds.
func Seconds(n float64) Duration {
	return Duration{Kind: DurationSeconds, Timeout: time.Duration(n * float64(time.Second))}
}

// Forever returns a policy that never hides the banner on its own.
func Forever() Duration { return Duration{Kind: DurationForever} }

// Indefinite returns a policy that waits delay before showing and keeps
// the banner up for at least minimum once shown.
func Indefinite(delay, minimum time.Duration) Duration {
	return Duration{Kind: DurationIndefinite, Delay: delay, Minimum: minimum}
}

// PauseDuration returns the auto-hide timeout. The second result is
// false when the banner has no auto-hide timeout.
func (d Duration) PauseDuration() (time.Duration, bool) {
	switch d.Kind {
	case DurationAutomatic:
		return AutomaticTimeout, true
	case DurationSeconds:
		return d.Timeout, true
	default:
		return 0, false
	}
}

// ShowDelay returns how long the show is deferred. The second result is
// false unless the policy is indefinite.
func (d Duration) ShowDelay() (time.Duration, bool) {
	if d.Kind != DurationIndefinite {
		return 0, false
	}
	return max(0, d.Delay), true
}

// DelayHide returns how long a hide requested at now must wait so the
// banner honours its minimum visible time. An interactive dismissal
// always returns zero. The second result is false when no gate applies:
// the policy is not indefinite, or the banner was never shown.
func (d Duration) DelayHide(shownAt, now time.Time, interactive bool) (time.Duration, bool) {
	if interactive {
		return 0, true
	}
	if d.Kind != DurationIndefinite || shownAt.IsZero() {
		return 0, false
	}
	return max(0, d.Minimum-now.Sub(shownAt)), true
}
