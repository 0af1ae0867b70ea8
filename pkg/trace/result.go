package trace

import "github.com/karmalentil/potk/pkg/optics"

// Reason classifies why a ray failed to cross the lens system
type Reason int

const (
	// ReasonNone marks a successful trace
	ReasonNone Reason = iota
	// ReasonVignetted: the ray fell outside a surface's housing radius
	ReasonVignetted
	// ReasonTotalInternalReflection: refraction failed at a medium boundary
	ReasonTotalInternalReflection
	// ReasonNoIntersection: the ray missed a surface or a solve diverged
	ReasonNoIntersection
)

// String returns the reason name
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonVignetted:
		return "vignetted"
	case ReasonTotalInternalReflection:
		return "total_internal_reflection"
	case ReasonNoIntersection:
		return "no_intersection"
	default:
		return "unknown"
	}
}

// Result is the immutable outcome of tracing one ray. On success, Position
// and Direction describe the ray at the last surface (the outer pupil) and
// Transmittance the fraction of light carried through. On failure, Fail
// names the reason and the other fields are zero.
type Result struct {
	Position      optics.Vec3
	Direction     optics.Vec3
	Transmittance float64
	Fail          Reason
}

// OK reports whether the trace succeeded
func (r Result) OK() bool {
	return r.Fail == ReasonNone
}

func failure(reason Reason) Result {
	return Result{Fail: reason}
}
