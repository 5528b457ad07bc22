// Package normalize turns the loosely shaped payloads returned by the
// coaching backend into canonical containers.
//
// Every function is total: it never panics and never returns an error.
// When a payload does not match any accepted shape the result degrades to an
// empty or singleton container and Fallback carries the reason, so callers
// can log it without breaking rendering.
package normalize

// Reason explains why a decode fell back. The zero value means the payload
// matched an accepted shape.
type Reason string

const (
	OK                 Reason = ""
	ReasonAbsent       Reason = "absent"
	ReasonUndecodable  Reason = "undecodable"
	ReasonUnknownShape Reason = "unknown_shape"
	// ReasonPartial means some elements were dropped or coerced.
	ReasonPartial Reason = "partial"
)

// Outcome is a decoded list together with its fallback reason.
type Outcome[T any] struct {
	Items    []T
	Fallback Reason
}

func (o Outcome[T]) OK() bool { return o.Fallback == OK }

func (o Outcome[T]) Len() int { return len(o.Items) }

func ok[T any](items []T) Outcome[T] {
	return fallback(items, OK)
}

func fallback[T any](items []T, reason Reason) Outcome[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return Outcome[T]{Items: items, Fallback: reason}
}

// partialIf downgrades an otherwise successful outcome when elements were dropped.
func partialIf[T any](items []T, dropped int) Outcome[T] {
	if dropped > 0 {
		return fallback(items, ReasonPartial)
	}
	return ok(items)
}
