package optics

// DefaultCauchyB is the Cauchy B coefficient (µm²) used when a lens design
// specifies only a base refractive index. It corresponds to a typical crown
// glass dispersion of roughly 1% across the visible band.
const DefaultCauchyB = 0.0042

// Material represents the optical medium on the far side of a surface.
// Dispersion follows the two-term Cauchy equation n(λ) = A + B/λ², with A
// derived from the base index ND specified at the reference wavelength.
type Material struct {
	Name string
	ND   float64 // refractive index at WavelengthD
	B    float64 // Cauchy B coefficient, µm²
}

// Air is the non-dispersive n=1 medium.
var Air = Material{Name: "air", ND: 1.0}

// NewMaterial creates a dispersive material from its base index and Cauchy B
// coefficient. Pass B=0 for a non-dispersive medium.
func NewMaterial(name string, nd, b float64) Material {
	return Material{Name: name, ND: nd, B: b}
}

// IOR returns the refractive index at the given wavelength (µm).
func (m Material) IOR(wavelength float64) float64 {
	if m.ND <= 1.0 || m.B == 0 {
		return m.ND
	}
	a := m.ND - m.B/(WavelengthD*WavelengthD)
	return a + m.B/(wavelength*wavelength)
}
