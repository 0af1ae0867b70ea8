package polyfit

import "github.com/karmalentil/potk/pkg/sample"

// degenerateSpan guards ranges whose min and max coincide (a constant
// column, e.g. transmittance under the pass-through policy).
const degenerateSpan = 1e-12

// Range is a per-column affine map between physical units and the
// normalized interval [-1, 1] used for fitting.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Normalize maps a physical value into [-1, 1]
func (r Range) Normalize(v float64) float64 {
	span := r.Max - r.Min
	if span < degenerateSpan {
		return 0
	}
	return 2*(v-r.Min)/span - 1
}

// Denormalize maps a normalized value back to physical units
func (r Range) Denormalize(v float64) float64 {
	span := r.Max - r.Min
	if span < degenerateSpan {
		return r.Min
	}
	return r.Min + (v+1)*span/2
}

// Normalization holds the input and output column ranges of a fit. Mixing
// mm-scale positions, unit direction cosines and micrometer wavelengths in
// one regression conditions badly; every column is mapped to [-1,1] before
// fitting and the same maps are applied at evaluation time.
type Normalization struct {
	In  [NumInputs]Range   `json:"in"`
	Out [NumChannels]Range `json:"out"`
}

// NormalizationFor computes column ranges from a design matrix
func NormalizationFor(m *sample.DesignMatrix) Normalization {
	var n Normalization
	for c := 0; c < NumInputs; c++ {
		n.In[c] = columnRange(m.Inputs, c)
	}
	for c := 0; c < NumChannels; c++ {
		n.Out[c] = columnRange(m.Outputs, c)
	}
	return n
}

func columnRange(rows [][5]float64, col int) Range {
	if len(rows) == 0 {
		return Range{}
	}
	r := Range{Min: rows[0][col], Max: rows[0][col]}
	for _, row := range rows {
		if row[col] < r.Min {
			r.Min = row[col]
		}
		if row[col] > r.Max {
			r.Max = row[col]
		}
	}
	return r
}

// NormalizeIn maps a full input tuple
func (n *Normalization) NormalizeIn(in [NumInputs]float64) [NumInputs]float64 {
	var out [NumInputs]float64
	for c := 0; c < NumInputs; c++ {
		out[c] = n.In[c].Normalize(in[c])
	}
	return out
}
