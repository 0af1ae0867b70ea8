// Package lensio loads lens design records and reads/writes the fitted
// model and validation report artifacts. Malformed input is rejected with a
// descriptive error naming the surface and field; nothing is silently
// defaulted.
package lensio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/karmalentil/potk/pkg/optics"
)

// IrisTag marks the aperture stop surface in a lens design record
const IrisTag = "iris"

// AirTag marks an air gap after a surface
const AirTag = "air"

type surfaceRecord struct {
	RadiusOfCurvature *float64        `json:"radius_of_curvature"`
	Thickness         json.RawMessage `json:"thickness"`
	IndexOfRefraction *float64        `json:"index_of_refraction"`
	CauchyB           *float64        `json:"cauchy_b"`
	HousingRadius     *float64        `json:"housing_radius"`
	MaterialTag       string          `json:"material_tag"`
	AsphericCoeffs    []float64       `json:"aspherical_correction_coefficients"`
}

type designRecord struct {
	Name        string          `json:"name"`
	FocalLength *float64        `json:"focal_length"`
	Surfaces    []surfaceRecord `json:"surfaces"`
}

// LoadSystem reads and validates a lens design JSON file
func LoadSystem(path string) (*optics.System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lensio: %w", err)
	}
	return ParseSystem(data)
}

// ParseSystem validates a lens design record and constructs the immutable
// lens system. Surfaces are listed sensor-side first.
func ParseSystem(data []byte) (*optics.System, error) {
	var rec designRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("lensio: invalid lens design JSON: %w", err)
	}
	if rec.Name == "" {
		return nil, fmt.Errorf("lensio: lens design: missing required field %q", "name")
	}
	if rec.FocalLength == nil {
		return nil, fmt.Errorf("lensio: lens %q: missing required field %q", rec.Name, "focal_length")
	}
	if len(rec.Surfaces) == 0 {
		return nil, fmt.Errorf("lensio: lens %q: missing or empty %q array", rec.Name, "surfaces")
	}

	surfaces := make([]optics.Surface, 0, len(rec.Surfaces))
	for i, sr := range rec.Surfaces {
		surf, err := parseSurface(sr)
		if err != nil {
			return nil, fmt.Errorf("lensio: lens %q: surface %d: %w", rec.Name, i, err)
		}
		surfaces = append(surfaces, surf)
	}

	sys, err := optics.NewSystem(rec.Name, *rec.FocalLength, surfaces)
	if err != nil {
		return nil, fmt.Errorf("lensio: %w", err)
	}
	return sys, nil
}

func parseSurface(sr surfaceRecord) (optics.Surface, error) {
	var surf optics.Surface

	if sr.RadiusOfCurvature == nil {
		return surf, fmt.Errorf("missing required field %q", "radius_of_curvature")
	}
	surf.Radius = *sr.RadiusOfCurvature

	if sr.HousingRadius == nil {
		return surf, fmt.Errorf("missing required field %q", "housing_radius")
	}
	if *sr.HousingRadius <= 0 {
		return surf, fmt.Errorf("housing_radius must be positive, got %g", *sr.HousingRadius)
	}
	surf.HousingRadius = *sr.HousingRadius

	thickness, err := parseThickness(sr.Thickness)
	if err != nil {
		return surf, err
	}
	surf.Thickness = thickness

	switch sr.MaterialTag {
	case "":
		return surf, fmt.Errorf("missing required field %q", "material_tag")
	case IrisTag:
		if surf.Radius != 0 {
			return surf, fmt.Errorf("iris surface must be flat, got radius_of_curvature %g", surf.Radius)
		}
		surf.Iris = true
		surf.Material = optics.Air
	case AirTag:
		surf.Material = optics.Air
	default:
		if sr.IndexOfRefraction == nil {
			return surf, fmt.Errorf("material %q: missing required field %q", sr.MaterialTag, "index_of_refraction")
		}
		if *sr.IndexOfRefraction < 1 {
			return surf, fmt.Errorf("material %q: index_of_refraction must be >= 1, got %g", sr.MaterialTag, *sr.IndexOfRefraction)
		}
		b := optics.DefaultCauchyB
		if sr.CauchyB != nil {
			b = *sr.CauchyB
		}
		surf.Material = optics.NewMaterial(sr.MaterialTag, *sr.IndexOfRefraction, b)
	}

	if sr.AsphericCoeffs != nil {
		if len(sr.AsphericCoeffs) != 4 {
			return surf, fmt.Errorf("aspherical_correction_coefficients must have exactly 4 elements, got %d", len(sr.AsphericCoeffs))
		}
		surf.Aspheric = true
		for i := 0; i < 4; i++ {
			surf.AsphericCoeffs[i] = sr.AsphericCoeffs[i]
		}
	}

	return surf, nil
}

// parseThickness accepts a scalar (broadcast to all three zoom states) or a
// 3-element short/mid/long array. Anything else is rejected.
func parseThickness(raw json.RawMessage) (optics.Thickness, error) {
	if len(raw) == 0 {
		return optics.Thickness{}, fmt.Errorf("missing required field %q", "thickness")
	}

	var scalar float64
	if err := json.Unmarshal(raw, &scalar); err == nil {
		if scalar < 0 {
			return optics.Thickness{}, fmt.Errorf("thickness must be non-negative, got %g", scalar)
		}
		return optics.FixedThickness(scalar), nil
	}

	var states []float64
	if err := json.Unmarshal(raw, &states); err != nil || len(states) != 3 {
		return optics.Thickness{}, fmt.Errorf("thickness must be a number or a 3-element short/mid/long array, got %s", raw)
	}
	for _, t := range states {
		if t < 0 {
			return optics.Thickness{}, fmt.Errorf("thickness must be non-negative, got %g", t)
		}
	}
	return optics.Thickness{Short: states[0], Mid: states[1], Long: states[2]}, nil
}
