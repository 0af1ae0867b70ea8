package polyfit

import (
	"fmt"
	"math"
)

// Newton-Raphson parameters of the aperture solve. These mirror the
// render-time sampler: a handful of fixed-cost iterations, a squared
// positional tolerance, forward-difference Jacobians.
const (
	inverseMaxIterations = 10
	inverseTolerance     = 1e-4 // squared exit-position residual, mm²
	inverseStep          = 1e-3 // finite-difference step on the pupil disc
	inverseSingularDet   = 1e-10
)

// SolveAperture inverts the forward evaluator: it finds the aperture sample
// (adx, ady) whose traced exit position lands on (targetX, targetY) for a
// given sensor position and wavelength. This drives importance sampling
// toward a known target (e.g. a light source) and is deterministic for
// identical inputs and model.
//
// On ErrSingularJacobian or ErrDidNotConverge the caller should fall back
// to uniform aperture sampling.
func SolveAperture(model *Model, sensorX, sensorY, wavelength, targetX, targetY float64) (float64, float64, error) {
	dx, dy := 0.0, 0.0 // start at the aperture center

	for iter := 0; iter < inverseMaxIterations; iter++ {
		ex, ey, _, _, _ := model.Evaluate(sensorX, sensorY, dx, dy, wavelength)
		errX := ex - targetX
		errY := ey - targetY
		if errX*errX+errY*errY < inverseTolerance {
			return dx, dy, nil
		}

		// Forward-difference 2x2 Jacobian of exit position w.r.t. the
		// aperture sample.
		exDX, eyDX, _, _, _ := model.Evaluate(sensorX, sensorY, dx+inverseStep, dy, wavelength)
		exDY, eyDY, _, _, _ := model.Evaluate(sensorX, sensorY, dx, dy+inverseStep, wavelength)
		j00 := (exDX - ex) / inverseStep
		j10 := (eyDX - ey) / inverseStep
		j01 := (exDY - ex) / inverseStep
		j11 := (eyDY - ey) / inverseStep

		det := j00*j11 - j01*j10
		if math.Abs(det) < inverseSingularDet {
			return 0, 0, fmt.Errorf("polyfit: aperture solve at sensor (%.3g, %.3g): %w",
				sensorX, sensorY, ErrSingularJacobian)
		}

		// Newton step with the analytically inverted Jacobian.
		dx -= (j11*errX - j01*errY) / det
		dy -= (-j10*errX + j00*errY) / det
	}

	return 0, 0, fmt.Errorf("polyfit: aperture solve at sensor (%.3g, %.3g) after %d iterations: %w",
		sensorX, sensorY, inverseMaxIterations, ErrDidNotConverge)
}
