package polyfit

import "fmt"

// NumInputs is the dimensionality of the polynomial input domain: sensor
// x/y, aperture dx/dy, wavelength.
const NumInputs = 5

// NumChannels is the number of fitted output channels: exit x/y, exit
// direction x/y, transmittance.
const NumChannels = 5

// MaxDegree bounds the power tables used during evaluation. Lens fits use
// degrees 5-11; anything larger is a configuration mistake.
const MaxDegree = 31

// Basis enumerates the monomials of total degree <= degree over the five
// input variables, in graded lexicographic order. The enumeration order is
// part of the model artifact contract: coefficient i always multiplies
// monomial i.
type Basis struct {
	degree int
	exps   [][NumInputs]int
}

// BasisSize returns the number of monomials of total degree <= degree over
// five variables: C(degree+5, 5).
func BasisSize(degree int) int {
	n := 1
	for i := 1; i <= NumInputs; i++ {
		n = n * (degree + i) / i
	}
	return n
}

// NewBasis builds the monomial exponent table for a degree
func NewBasis(degree int) *Basis {
	if degree < 1 || degree > MaxDegree {
		panic(fmt.Sprintf("polyfit: basis degree %d out of range [1,%d]", degree, MaxDegree))
	}
	b := &Basis{degree: degree}
	for total := 0; total <= degree; total++ {
		for e0 := total; e0 >= 0; e0-- {
			for e1 := total - e0; e1 >= 0; e1-- {
				for e2 := total - e0 - e1; e2 >= 0; e2-- {
					for e3 := total - e0 - e1 - e2; e3 >= 0; e3-- {
						e4 := total - e0 - e1 - e2 - e3
						b.exps = append(b.exps, [NumInputs]int{e0, e1, e2, e3, e4})
					}
				}
			}
		}
	}
	return b
}

// Degree returns the basis degree
func (b *Basis) Degree() int { return b.degree }

// Size returns the number of monomials
func (b *Basis) Size() int { return len(b.exps) }

// powers fills per-variable power tables up to the basis degree. Monomials
// are then products of table lookups; this costs one multiply per variable
// per power instead of a math.Pow per term.
func (b *Basis) powers(in [NumInputs]float64, pw *[NumInputs][MaxDegree + 1]float64) {
	for v := 0; v < NumInputs; v++ {
		pw[v][0] = 1
		for p := 1; p <= b.degree; p++ {
			pw[v][p] = pw[v][p-1] * in[v]
		}
	}
}

// Features writes the monomial values for one input tuple into dst, which
// must have length Size().
func (b *Basis) Features(in [NumInputs]float64, dst []float64) {
	if len(dst) != b.Size() {
		panic(fmt.Sprintf("polyfit: feature buffer length %d, basis size %d", len(dst), b.Size()))
	}
	var pw [NumInputs][MaxDegree + 1]float64
	b.powers(in, &pw)
	for i, e := range b.exps {
		dst[i] = pw[0][e[0]] * pw[1][e[1]] * pw[2][e[2]] * pw[3][e[3]] * pw[4][e[4]]
	}
}

// Accumulate evaluates all channel polynomials at one input tuple without
// materializing the feature vector. This is the render-facing hot path.
func (b *Basis) Accumulate(in [NumInputs]float64, coeffs *[NumChannels][]float64) [NumChannels]float64 {
	var pw [NumInputs][MaxDegree + 1]float64
	b.powers(in, &pw)

	var out [NumChannels]float64
	for i, e := range b.exps {
		monomial := pw[0][e[0]] * pw[1][e[1]] * pw[2][e[2]] * pw[3][e[3]] * pw[4][e[4]]
		for ch := 0; ch < NumChannels; ch++ {
			out[ch] += coeffs[ch][i] * monomial
		}
	}
	return out
}
