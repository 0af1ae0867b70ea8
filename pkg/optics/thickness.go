package optics

// Thickness holds the axial distance (mm) from a surface vertex to the next
// surface at the three zoom/focus states of the design. All three states must
// be set explicitly; a design with a single thickness broadcasts it.
type Thickness struct {
	Short, Mid, Long float64
}

// FixedThickness broadcasts a single thickness to all three zoom states.
func FixedThickness(t float64) Thickness {
	return Thickness{Short: t, Mid: t, Long: t}
}

// At interpolates the thickness at a zoom parameter in [0,1] using piecewise
// linear interpolation: 0 → Short, 0.5 → Mid, 1 → Long. Values outside [0,1]
// are clamped.
func (t Thickness) At(zoom float64) float64 {
	switch {
	case zoom <= 0:
		return t.Short
	case zoom >= 1:
		return t.Long
	case zoom < 0.5:
		return t.Short + (t.Mid-t.Short)*(zoom*2)
	default:
		return t.Mid + (t.Long-t.Mid)*((zoom-0.5)*2)
	}
}
