package polyfit

import "errors"

// Fitting-stage errors are fatal: the caller gets a diagnostic instead of a
// degenerate model. Inverse-solve errors are recoverable: the caller falls
// back to uniform aperture sampling.
var (
	// ErrInsufficientSamples: fewer valid samples survived tracing than the
	// requested degree has coefficients.
	ErrInsufficientSamples = errors.New("insufficient samples")

	// ErrFitDivergence: the feature matrix is rank deficient or the
	// least-squares solve failed. Increase the sample count or reduce the
	// degree.
	ErrFitDivergence = errors.New("fit divergence")

	// ErrSingularJacobian: the Newton step of the aperture solve hit a
	// singular Jacobian.
	ErrSingularJacobian = errors.New("singular jacobian")

	// ErrDidNotConverge: the aperture solve ran out of iterations.
	ErrDidNotConverge = errors.New("did not converge")
)
