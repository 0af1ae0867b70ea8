package optics

// Visible wavelength band covered by the engine, in micrometers.
const (
	WavelengthMin = 0.38
	WavelengthMax = 0.78

	// WavelengthD is the reference wavelength at which base refractive
	// indices are specified (green, near the Fraunhofer d-line).
	WavelengthD = 0.55
)

// Ray represents a light ray with an origin, a unit direction and a wavelength.
// Positions are in millimeters, wavelength in micrometers.
type Ray struct {
	Origin     Vec3
	Direction  Vec3
	Wavelength float64
}

// NewRay creates a ray, normalizing the direction
func NewRay(origin, direction Vec3, wavelength float64) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize(), Wavelength: wavelength}
}

// At returns the point along the ray at distance t
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}
