package trace

import (
	"math"

	"github.com/karmalentil/potk/pkg/optics"
)

// TransmittancePolicy selects how the tracer accumulates transmittance
type TransmittancePolicy int

const (
	// TransmitPassThrough reports 1.0 for every ray that survives the trace.
	// Vignetted rays carry no transmittance at all, so this is sufficient
	// for distortion and bokeh-shape fitting.
	TransmitPassThrough TransmittancePolicy = iota
	// TransmitFresnel accumulates (1-R) per refraction using the Schlick
	// reflectance approximation, modelling surface losses.
	TransmitFresnel
)

// String returns the policy name as stored in fitted model artifacts
func (p TransmittancePolicy) String() string {
	if p == TransmitFresnel {
		return "fresnel"
	}
	return "pass_through"
}

// Geometric traces rays surface-by-surface through the full lens geometry
// using vector Snell refraction and wavelength-dependent dispersion.
type Geometric struct {
	sys    *optics.System
	policy TransmittancePolicy
}

// NewGeometric creates a geometric tracer for an immutable lens system
func NewGeometric(sys *optics.System, policy TransmittancePolicy) *Geometric {
	return &Geometric{sys: sys, policy: policy}
}

// Trace implements Tracer. The ray starts at the sensor plane (z=0) and
// travels toward positive z; the result is the ray state at the last surface.
func (g *Geometric) Trace(ray optics.Ray, zoom float64) Result {
	pos := ray.Origin
	dir := ray.Direction.Normalize()
	currentIOR := 1.0 // sensor chamber is air
	transmittance := 1.0
	zVertex := 0.0

	for i := 0; i < g.sys.Len(); i++ {
		surf := g.sys.At(i)

		// Work in the surface-local frame: vertex at the origin.
		local := pos.Subtract(optics.NewVec3(0, 0, zVertex))

		if surf.Iris {
			// Pass-through vignetting check at the stop plane, no
			// refraction and no medium change.
			hit, ok := surf.Intersect(local, dir)
			if !ok {
				return failure(ReasonNoIntersection)
			}
			if hit.Point.RadialDistance() > surf.HousingRadius {
				return failure(ReasonVignetted)
			}
			pos = hit.Point.Add(optics.NewVec3(0, 0, zVertex))
			zVertex += surf.Thickness.At(zoom)
			continue
		}

		hit, ok := surf.Intersect(local, dir)
		if !ok {
			return failure(ReasonNoIntersection)
		}
		if hit.Point.RadialDistance() > surf.HousingRadius {
			return failure(ReasonVignetted)
		}

		nextIOR := surf.Material.IOR(ray.Wavelength)
		refracted, cosI, ok := refract(dir, hit.Normal, currentIOR, nextIOR)
		if !ok {
			return failure(ReasonTotalInternalReflection)
		}
		if g.policy == TransmitFresnel {
			transmittance *= 1 - reflectance(cosI, currentIOR, nextIOR)
		}

		dir = refracted
		currentIOR = nextIOR
		pos = hit.Point.Add(optics.NewVec3(0, 0, zVertex))
		zVertex += surf.Thickness.At(zoom)
	}

	return Result{Position: pos, Direction: dir, Transmittance: transmittance}
}

// refract applies vector Snell's law at a boundary from index n1 to n2. The
// normal is flipped to the incident side if needed. Returns the re-normalized
// refracted direction, the cosine of the incidence angle, and false on total
// internal reflection.
func refract(in, normal optics.Vec3, n1, n2 float64) (optics.Vec3, float64, bool) {
	cosI := -in.Dot(normal)
	if cosI < 0 {
		cosI = -cosI
		normal = normal.Multiply(-1)
	}

	eta := n1 / n2
	k := 1 - eta*eta*(1-cosI*cosI)
	if k < 0 {
		return optics.Vec3{}, 0, false
	}

	out := in.Multiply(eta).Add(normal.Multiply(eta*cosI - math.Sqrt(k)))
	return out.Normalize(), cosI, true
}

// reflectance computes the Fresnel reflectance via Schlick's approximation
func reflectance(cosI, n1, n2 float64) float64 {
	r0 := (n1 - n2) / (n1 + n2)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosI, 5)
}
