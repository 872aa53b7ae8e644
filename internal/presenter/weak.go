package presenter

import "weak"

// Liveness is implemented by referents that can be released while the
// Go value is still reachable, such as a window that has been closed
// but not yet collected.
type Liveness interface {
	Alive() bool
}

// Ref is a non-owning reference. Get reports false once the referent
// has been garbage collected or reports itself dead via Liveness.
// The zero Ref is always absent.
type Ref[T any] struct {
	get func() (T, bool)
}

// Weak returns a Ref to p that does not keep p alive. as converts the
// live pointer into the type callers work with; it must not capture p.
func Weak[P any, T any](p *P, as func(*P) T) Ref[T] {
	if p == nil {
		return Ref[T]{}
	}
	wp := weak.Make(p)
	return Ref[T]{get: func() (T, bool) {
		var zero T
		v := wp.Value()
		if v == nil {
			return zero, false
		}
		out := as(v)
		if l, ok := any(out).(Liveness); ok && !l.Alive() {
			return zero, false
		}
		return out, true
	}}
}

// Get returns the referent if it is still alive.
func (r Ref[T]) Get() (T, bool) {
	if r.get == nil {
		var zero T
		return zero, false
	}
	return r.get()
}

// IsZero reports whether r was never bound to a referent.
func (r Ref[T]) IsZero() bool {
	return r.get == nil
}
