package polyfit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/karmalentil/potk/pkg/optics"
	"github.com/karmalentil/potk/pkg/sample"
	"github.com/karmalentil/potk/pkg/trace"
)

// ChannelError reports the accuracy of one fitted output channel. Units are
// mm for the position channels, dimensionless for directions and
// transmittance.
type ChannelError struct {
	Name string  `json:"name"`
	RMS  float64 `json:"rms"`
	Max  float64 `json:"max"`
}

// Residual is one held-out validation sample's exit-position error, kept in
// memory for plotting; it is not part of the report artifact.
type Residual struct {
	SensorX, SensorY float64
	ErrX, ErrY       float64
}

// Report compares a fitted model against raytraced ground truth on a
// held-out sample set. It is the regression-testing artifact consumed
// across lens revisions.
type Report struct {
	LensName    string                    `json:"lens_name"`
	Degree      int                       `json:"degree"`
	Zoom        float64                   `json:"zoom"`
	Requested   int                       `json:"requested_samples"`
	Valid       int                       `json:"valid_samples"`
	DiscardRate float64                   `json:"discard_rate"`
	Channels    [NumChannels]ChannelError `json:"channels"`
	PositionRMS float64                   `json:"position_rms"`
	Threshold   float64                   `json:"threshold"`
	Pass        bool                      `json:"pass"`

	Residuals []Residual `json:"-"`
}

// ValidateConfig controls held-out validation
type ValidateConfig struct {
	TestCount     int     // 0 = 2048
	Seed          int64   // must differ from the training seed
	Workers       int     // 0 = NumCPU
	Threshold     float64 // pass threshold on RMS position error, mm; 0 = 0.1
	WavelengthMin float64 // µm; 0 = engine default; must match training
	WavelengthMax float64
	Log           optics.Logger
}

// Validate draws a fresh held-out sample set with the training sampling
// policy, traces ground truth, and measures per-channel RMS and maximum
// absolute error of the model over successfully traced rays only. Failed
// rays are excluded from the statistics; their rate is reported separately.
func Validate(sys *optics.System, tracer trace.Tracer, model *Model, cfg ValidateConfig) (*Report, error) {
	if cfg.TestCount <= 0 {
		cfg.TestCount = 2048
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.1
	}

	m, err := sample.Generate(sys, tracer, sample.Config{
		Count:         cfg.TestCount,
		Workers:       cfg.Workers,
		Zoom:          model.Zoom,
		WavelengthMin: cfg.WavelengthMin,
		WavelengthMax: cfg.WavelengthMax,
		Seed:          cfg.Seed,
		Log:           cfg.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("polyfit: validation sampling: %w", err)
	}
	if len(m.Inputs) == 0 {
		return nil, fmt.Errorf("polyfit: validation of %q produced no valid rays: %w",
			model.LensName, ErrInsufficientSamples)
	}

	n := len(m.Inputs)
	sq := make([][]float64, NumChannels)
	abs := make([][]float64, NumChannels)
	for ch := range sq {
		sq[ch] = make([]float64, n)
		abs[ch] = make([]float64, n)
	}
	posSq := make([]float64, n)
	residuals := make([]Residual, n)

	for i, in := range m.Inputs {
		var got [NumChannels]float64
		got[0], got[1], got[2], got[3], got[4] = model.Evaluate(in[0], in[1], in[2], in[3], in[4])
		for ch := 0; ch < NumChannels; ch++ {
			d := got[ch] - m.Outputs[i][ch]
			sq[ch][i] = d * d
			abs[ch][i] = math.Abs(d)
		}
		posSq[i] = sq[0][i] + sq[1][i]
		residuals[i] = Residual{
			SensorX: in[0], SensorY: in[1],
			ErrX: got[0] - m.Outputs[i][0],
			ErrY: got[1] - m.Outputs[i][1],
		}
	}

	rep := &Report{
		LensName:    model.LensName,
		Degree:      model.Degree,
		Zoom:        model.Zoom,
		Requested:   m.Stats.Requested,
		Valid:       n,
		DiscardRate: m.Stats.DiscardRate(),
		PositionRMS: math.Sqrt(stat.Mean(posSq, nil)),
		Threshold:   cfg.Threshold,
		Residuals:   residuals,
	}
	for ch := 0; ch < NumChannels; ch++ {
		rep.Channels[ch] = ChannelError{
			Name: ChannelNames[ch],
			RMS:  math.Sqrt(stat.Mean(sq[ch], nil)),
			Max:  floats.Max(abs[ch]),
		}
	}
	rep.Pass = rep.PositionRMS < rep.Threshold
	return rep, nil
}
