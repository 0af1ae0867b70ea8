package optics

import "fmt"

// System is an immutable ordered stack of optical surfaces, sensor-side
// first. Exactly one surface must be the iris (aperture stop). A System is
// constructed once per lens design and shared read-only across workers.
type System struct {
	name        string
	focalLength float64
	surfaces    []Surface
	irisIndex   int
}

// NewSystem validates the surface list and builds a lens system.
func NewSystem(name string, focalLength float64, surfaces []Surface) (*System, error) {
	if len(surfaces) == 0 {
		return nil, fmt.Errorf("lens system %q: surface list is empty", name)
	}
	if focalLength <= 0 {
		return nil, fmt.Errorf("lens system %q: focal length must be positive, got %g", name, focalLength)
	}

	irisIndex := -1
	for i, s := range surfaces {
		if s.HousingRadius <= 0 {
			return nil, fmt.Errorf("lens system %q: surface %d: housing radius must be positive, got %g", name, i, s.HousingRadius)
		}
		if s.Iris {
			if irisIndex >= 0 {
				return nil, fmt.Errorf("lens system %q: surfaces %d and %d are both marked as iris", name, irisIndex, i)
			}
			irisIndex = i
		}
	}
	if irisIndex < 0 {
		return nil, fmt.Errorf("lens system %q: no iris surface", name)
	}

	owned := make([]Surface, len(surfaces))
	copy(owned, surfaces)
	return &System{
		name:        name,
		focalLength: focalLength,
		surfaces:    owned,
		irisIndex:   irisIndex,
	}, nil
}

// Name returns the lens design name
func (s *System) Name() string { return s.name }

// FocalLength returns the nominal focal length in mm
func (s *System) FocalLength() float64 { return s.focalLength }

// Len returns the number of surfaces
func (s *System) Len() int { return len(s.surfaces) }

// At returns the surface at index i
func (s *System) At(i int) Surface { return s.surfaces[i] }

// ApertureRadius returns the housing radius of the iris surface in mm
func (s *System) ApertureRadius() float64 {
	return s.surfaces[s.irisIndex].HousingRadius
}

// SensorRadius returns the clear radius of the sensor-adjacent surface in mm
func (s *System) SensorRadius() float64 {
	return s.surfaces[0].HousingRadius
}

// TotalLength returns the sum of all surface thicknesses at the given zoom
func (s *System) TotalLength(zoom float64) float64 {
	total := 0.0
	for _, surf := range s.surfaces {
		total += surf.Thickness.At(zoom)
	}
	return total
}

// IrisDistance returns the axial distance from the sensor plane to the iris
// surface vertex at the given zoom
func (s *System) IrisDistance(zoom float64) float64 {
	d := 0.0
	for i := 0; i < s.irisIndex; i++ {
		d += s.surfaces[i].Thickness.At(zoom)
	}
	return d
}
