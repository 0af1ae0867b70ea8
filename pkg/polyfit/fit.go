package polyfit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/karmalentil/potk/pkg/optics"
	"github.com/karmalentil/potk/pkg/sample"
	"github.com/karmalentil/potk/pkg/trace"
)

// FitConfig carries fitting metadata and diagnostics
type FitConfig struct {
	LensName      string
	Zoom          float64
	Transmittance trace.TransmittancePolicy
	Log           optics.Logger
}

func (c FitConfig) logger() optics.Logger {
	if c.Log == nil {
		return optics.NopLogger{}
	}
	return c.Log
}

// Fit solves the per-channel least-squares regression over a design matrix
// at a fixed degree. All five output channels share one QR factorization of
// the normalized feature matrix; normal equations are never formed, so the
// conditioning of the solve follows the feature matrix itself.
func Fit(m *sample.DesignMatrix, degree int, cfg FitConfig) (*Model, error) {
	log := cfg.logger()
	basis := NewBasis(degree)
	n := len(m.Inputs)
	size := basis.Size()
	if n < size {
		return nil, fmt.Errorf("polyfit: %d valid samples for %d coefficients at degree %d: %w",
			n, size, degree, ErrInsufficientSamples)
	}

	log.Printf("fitting degree %d: %d samples x %d coefficients per channel", degree, n, size)

	norm := NormalizationFor(m)
	features := mat.NewDense(n, size, nil)
	targets := mat.NewDense(n, NumChannels, nil)
	row := make([]float64, size)
	for i := 0; i < n; i++ {
		basis.Features(norm.NormalizeIn(m.Inputs[i]), row)
		features.SetRow(i, row)
		for ch := 0; ch < NumChannels; ch++ {
			targets.Set(i, ch, norm.Out[ch].Normalize(m.Outputs[i][ch]))
		}
	}

	var qr mat.QR
	qr.Factorize(features)

	var solved mat.Dense
	if err := qr.SolveTo(&solved, false, targets); err != nil {
		return nil, fmt.Errorf("polyfit: QR solve at degree %d failed (%v): %w", degree, err, ErrFitDivergence)
	}

	model := &Model{
		FormatVersion: FormatVersion,
		LensName:      cfg.LensName,
		Degree:        degree,
		Zoom:          cfg.Zoom,
		Transmittance: cfg.Transmittance.String(),
		Norm:          norm,
	}
	for ch := 0; ch < NumChannels; ch++ {
		model.Coeffs[ch] = mat.Col(nil, ch, &solved)
	}
	return model, nil
}

// TrainingRMS returns the root-mean-square exit position error (mm) of a
// model over the matrix it was (or could be) fitted on.
func TrainingRMS(model *Model, m *sample.DesignMatrix) float64 {
	if len(m.Inputs) == 0 {
		return 0
	}
	sum := 0.0
	for i, in := range m.Inputs {
		ex, ey, _, _, _ := model.Evaluate(in[0], in[1], in[2], in[3], in[4])
		dx := ex - m.Outputs[i][0]
		dy := ey - m.Outputs[i][1]
		sum += dx*dx + dy*dy
	}
	return math.Sqrt(sum / float64(len(m.Inputs)))
}

// FitAuto searches degrees minDegree..maxDegree in order and returns the
// first model whose training RMS position error meets targetRMS, balancing
// evaluation cost against accuracy. If no degree meets the target the most
// accurate model found is returned.
func FitAuto(m *sample.DesignMatrix, minDegree, maxDegree int, targetRMS float64, cfg FitConfig) (*Model, error) {
	if minDegree < 1 || maxDegree < minDegree {
		return nil, fmt.Errorf("polyfit: invalid degree range [%d,%d]", minDegree, maxDegree)
	}
	log := cfg.logger()

	var best *Model
	bestRMS := math.Inf(1)
	for degree := minDegree; degree <= maxDegree; degree++ {
		model, err := Fit(m, degree, cfg)
		if err != nil {
			// Higher degrees only need more samples; report the best fit
			// so far rather than failing a search that already succeeded.
			if best != nil {
				log.Printf("degree search stopped at %d: %v", degree, err)
				break
			}
			return nil, err
		}

		rms := TrainingRMS(model, m)
		log.Printf("degree %d: training RMS %.6f mm", degree, rms)
		if rms < bestRMS {
			best = model
			bestRMS = rms
		}
		if rms <= targetRMS {
			log.Printf("target RMS %.6f mm met at degree %d", targetRMS, degree)
			return model, nil
		}
	}

	log.Printf("target RMS %.6f mm not met; best degree %d at %.6f mm", targetRMS, best.Degree, bestRMS)
	return best, nil
}
