package trace

import "github.com/karmalentil/potk/pkg/optics"

// Paraxial approximates the lens as a single thin lens at the iris plane
// using small-angle optics. It carries no aberrations and exists as the
// cheap backend for smoke tests and for sanity-checking fits against first
// order behavior; production fitting uses Geometric.
type Paraxial struct {
	sys *optics.System
}

// NewParaxial creates a thin-lens tracer for a lens system
func NewParaxial(sys *optics.System) *Paraxial {
	return &Paraxial{sys: sys}
}

// Trace implements Tracer
func (p *Paraxial) Trace(ray optics.Ray, zoom float64) Result {
	if ray.Origin.RadialDistance() > p.sys.SensorRadius() {
		return failure(ReasonVignetted)
	}

	dir := ray.Direction.Normalize()
	if dir.Z <= 0 {
		return failure(ReasonNoIntersection)
	}

	// Propagate to the thin-lens plane at the iris.
	d := p.sys.IrisDistance(zoom)
	t := (d - ray.Origin.Z) / dir.Z
	at := ray.At(t)
	if at.RadialDistance() > p.sys.ApertureRadius() {
		return failure(ReasonVignetted)
	}

	// Thin-lens deviation: slope' = slope - h/f, applied per axis.
	f := p.sys.FocalLength()
	out := optics.NewVec3(
		dir.X/dir.Z-at.X/f,
		dir.Y/dir.Z-at.Y/f,
		1,
	).Normalize()

	return Result{Position: at, Direction: out, Transmittance: 1}
}
