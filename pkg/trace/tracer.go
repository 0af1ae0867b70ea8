package trace

import "github.com/karmalentil/potk/pkg/optics"

// Tracer propagates a single ray through a lens system at a zoom state in
// [0,1]. Implementations must be safe for concurrent use: tracing reads only
// immutable lens data.
type Tracer interface {
	Trace(ray optics.Ray, zoom float64) Result
}
