package optics

import "math"

const (
	// intersectEpsilon rejects intersections behind the ray origin. A hit at
	// t=0 is legal: the sensor-adjacent surface may coincide with the ray
	// start.
	intersectEpsilon = -1e-9

	asphericIterations = 20
	asphericTolerance  = 1e-6 // mm
)

// Surface represents one optical interface of a lens system, positioned in
// its local frame with the vertex at the origin and the optical axis along z.
// Material is the medium on the far side of the surface (the side rays enter
// after crossing it).
type Surface struct {
	Radius         float64 // signed radius of curvature, mm; 0 encodes flat
	Thickness      Thickness
	Material       Material
	HousingRadius  float64 // clear aperture radius, mm
	Iris           bool    // aperture stop: vignetting check only, no refraction
	Aspheric       bool
	AsphericCoeffs [4]float64 // even-asphere correction, r⁴ through r¹⁰
}

// Intersection describes a ray/surface hit in the surface's local frame.
type Intersection struct {
	T      float64
	Point  Vec3
	Normal Vec3 // unit normal, oriented toward -z at the vertex
}

// Intersect computes the forward intersection of a ray (local frame, unit
// direction) with the surface. Returns false if the ray misses the surface
// or the aspheric solve fails to converge.
func (s *Surface) Intersect(origin, dir Vec3) (Intersection, bool) {
	if s.Aspheric {
		return s.intersectAspheric(origin, dir)
	}
	if s.Radius == 0 {
		return intersectPlane(origin, dir)
	}
	return s.intersectSphere(origin, dir)
}

// intersectPlane intersects the z=0 vertex plane.
func intersectPlane(origin, dir Vec3) (Intersection, bool) {
	if math.Abs(dir.Z) < 1e-12 {
		return Intersection{}, false
	}
	t := -origin.Z / dir.Z
	if t < intersectEpsilon {
		return Intersection{}, false
	}
	return Intersection{
		T:      t,
		Point:  origin.Add(dir.Multiply(t)),
		Normal: NewVec3(0, 0, -1),
	}, true
}

// intersectSphere solves the closed-form quadratic against the full sphere
// of radius |R| centered at (0,0,R), then keeps the nearest forward root that
// lies on the hemisphere containing the vertex. The other hemisphere belongs
// to the sphere's far side and is never the physical surface.
func (s *Surface) intersectSphere(origin, dir Vec3) (Intersection, bool) {
	center := NewVec3(0, 0, s.Radius)
	oc := origin.Subtract(center)

	halfB := oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - c
	if discriminant < 0 {
		return Intersection{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	for _, t := range [2]float64{-halfB - sqrtD, -halfB + sqrtD} {
		if t < intersectEpsilon {
			continue
		}
		point := origin.Add(dir.Multiply(t))
		// Vertex hemisphere: hit z on the opposite side of the center
		// from the curvature direction.
		if (point.Z-s.Radius)*s.Radius >= 0 {
			continue
		}
		return Intersection{
			T:      t,
			Point:  point,
			Normal: point.Subtract(center).Multiply(1 / s.Radius),
		}, true
	}
	return Intersection{}, false
}

// intersectAspheric solves the implicit sag equation z = sag(r) by Newton
// iteration, seeded from the spherical (or planar) root.
func (s *Surface) intersectAspheric(origin, dir Vec3) (Intersection, bool) {
	base := *s
	base.Aspheric = false
	seed, ok := base.Intersect(origin, dir)
	if !ok {
		return Intersection{}, false
	}

	t := seed.T
	for i := 0; i < asphericIterations; i++ {
		point := origin.Add(dir.Multiply(t))
		r := point.RadialDistance()
		sag, ok := s.sag(r)
		if !ok {
			return Intersection{}, false
		}

		f := point.Z - sag
		if math.Abs(f) < asphericTolerance {
			return Intersection{
				T:      t,
				Point:  point,
				Normal: s.asphericNormal(point, r),
			}, true
		}

		// df/dt = dz/dt - sag'(r)·dr/dt
		drdt := 0.0
		if r > 1e-12 {
			drdt = (point.X*dir.X + point.Y*dir.Y) / r
		}
		df := dir.Z - s.sagDerivative(r)*drdt
		if math.Abs(df) < 1e-12 {
			return Intersection{}, false
		}
		t -= f / df
		if t < intersectEpsilon {
			return Intersection{}, false
		}
	}
	return Intersection{}, false
}

// sag returns the surface height z at radial distance r: the spherical base
// term in its division-safe form plus the four even correction terms.
func (s *Surface) sag(r float64) (float64, bool) {
	r2 := r * r
	base := 0.0
	if s.Radius != 0 {
		arg := 1 - r2/(s.Radius*s.Radius)
		if arg <= 0 {
			return 0, false // outside the spherical cap
		}
		base = r2 / (s.Radius * (1 + math.Sqrt(arg)))
	}
	correction := 0.0
	rp := r2 * r2
	for _, c := range s.AsphericCoeffs {
		correction += c * rp
		rp *= r2
	}
	return base + correction, true
}

// sagDerivative returns d(sag)/dr at radial distance r.
func (s *Surface) sagDerivative(r float64) float64 {
	d := 0.0
	if s.Radius != 0 {
		arg := 1 - (r*r)/(s.Radius*s.Radius)
		if arg <= 0 {
			return 0
		}
		d = r / (s.Radius * math.Sqrt(arg))
	}
	r2 := r * r
	rp := r2 * r // r³
	for i, c := range s.AsphericCoeffs {
		d += float64(2*i+4) * c * rp
		rp *= r2
	}
	return d
}

// asphericNormal builds the unit normal from the sag gradient, oriented the
// same way as the spherical normal (toward -z at the vertex).
func (s *Surface) asphericNormal(point Vec3, r float64) Vec3 {
	if r < 1e-12 {
		return NewVec3(0, 0, -1)
	}
	slope := s.sagDerivative(r)
	return NewVec3(slope*point.X/r, slope*point.Y/r, -1).Normalize()
}
