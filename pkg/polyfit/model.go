package polyfit

import (
	"fmt"
	"sync"
)

// FormatVersion is the fitted-model artifact version. Downstream consumers
// (the shader generator, the render-time evaluator) refuse other versions.
const FormatVersion = 1

// ChannelNames gives the fitted output channels in coefficient order
var ChannelNames = [NumChannels]string{"exit_x", "exit_y", "exit_dx", "exit_dy", "transmittance"}

// Model is a fitted polynomial surrogate for a lens system at one zoom
// state. It is the sole artifact the render-time evaluator consumes.
type Model struct {
	FormatVersion int                    `json:"format_version"`
	LensName      string                 `json:"lens_name"`
	Degree        int                    `json:"degree"`
	Zoom          float64                `json:"zoom"`
	Transmittance string                 `json:"transmittance_policy"`
	Norm          Normalization          `json:"normalization"`
	Coeffs        [NumChannels][]float64 `json:"coefficients"`

	basisOnce sync.Once
	basis     *Basis
}

// Basis returns the model's monomial basis, built lazily
func (m *Model) Basis() *Basis {
	m.basisOnce.Do(func() {
		m.basis = NewBasis(m.Degree)
		for ch, c := range m.Coeffs {
			if len(c) != m.basis.Size() {
				panic(fmt.Sprintf("polyfit: model channel %s has %d coefficients, basis size is %d",
					ChannelNames[ch], len(c), m.basis.Size()))
			}
		}
	})
	return m.basis
}

// Evaluate computes the exit-pupil state for a sensor position (mm), an
// aperture sample on the unit pupil disc, and a wavelength (µm). It is a
// pure function of the model: normalize, evaluate each channel polynomial,
// denormalize.
func (m *Model) Evaluate(sensorX, sensorY, apertureDX, apertureDY, wavelength float64) (exitX, exitY, exitDX, exitDY, transmittance float64) {
	basis := m.Basis()
	in := m.Norm.NormalizeIn([NumInputs]float64{sensorX, sensorY, apertureDX, apertureDY, wavelength})
	out := basis.Accumulate(in, &m.Coeffs)

	exitX = m.Norm.Out[0].Denormalize(out[0])
	exitY = m.Norm.Out[1].Denormalize(out[1])
	exitDX = m.Norm.Out[2].Denormalize(out[2])
	exitDY = m.Norm.Out[3].Denormalize(out[3])
	transmittance = m.Norm.Out[4].Denormalize(out[4])
	return
}
