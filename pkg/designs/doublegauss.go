// Package designs provides built-in lens systems used by the CLI defaults
// and the test suite.
package designs

import "github.com/karmalentil/potk/pkg/optics"

// Glass materials used by the built-in designs, base index at 0.55 µm.
var (
	sk16 = optics.NewMaterial("N-SK16", 1.6204, optics.DefaultCauchyB)
	sf5  = optics.NewMaterial("SF5", 1.6727, 0.0070) // flint: stronger dispersion
)

// DoubleGauss50 builds a double gauss 50mm f/2.8: outer pupil radius 25 mm,
// iris housing radius 8.93 mm, sensor clear radius 21.635 mm (full-frame
// half diagonal). Surfaces are listed sensor-side first; the first surface
// is the flat sensor window carrying the sensor clear radius, the last is
// the flat outer pupil plane.
func DoubleGauss50() *optics.System {
	surfaces := []optics.Surface{
		// Sensor window: flat, carries the sensor clear radius and the back
		// focal distance.
		{Radius: 0, Thickness: optics.FixedThickness(36.5), Material: optics.Air, HousingRadius: 21.635},

		// Rear group (traversed first, sensor side).
		{Radius: 110.0, Thickness: optics.FixedThickness(4.0), Material: sk16, HousingRadius: 16.0},
		{Radius: -42.0, Thickness: optics.FixedThickness(0.3), Material: optics.Air, HousingRadius: 16.0},
		{Radius: 25.0, Thickness: optics.FixedThickness(5.5), Material: sk16, HousingRadius: 13.0},
		{Radius: 150.0, Thickness: optics.FixedThickness(2.0), Material: sf5, HousingRadius: 12.0},
		{Radius: 14.0, Thickness: optics.FixedThickness(5.0), Material: optics.Air, HousingRadius: 10.5},

		// Aperture stop at f/2.8.
		{Radius: 0, Thickness: optics.FixedThickness(5.0), Material: optics.Air, HousingRadius: 8.93, Iris: true},

		// Front group, roughly mirroring the rear group.
		{Radius: -14.5, Thickness: optics.FixedThickness(2.0), Material: sf5, HousingRadius: 10.5},
		{Radius: -120.0, Thickness: optics.FixedThickness(5.5), Material: sk16, HousingRadius: 12.0},
		{Radius: -25.5, Thickness: optics.FixedThickness(0.3), Material: optics.Air, HousingRadius: 13.0},
		{Radius: 44.0, Thickness: optics.FixedThickness(4.0), Material: sk16, HousingRadius: 16.0},
		{Radius: -95.0, Thickness: optics.FixedThickness(5.0), Material: optics.Air, HousingRadius: 16.0},

		// Outer pupil plane.
		{Radius: 0, Thickness: optics.FixedThickness(0), Material: optics.Air, HousingRadius: 25.0},
	}

	sys, err := optics.NewSystem("double_gauss_50mm", 50.0, surfaces)
	if err != nil {
		panic(err) // built-in design, construction cannot fail
	}
	return sys
}
