package biquad

import "github.com/cwbudde/algo-loudnorm/dsp/core"

// Coefficients holds one second-order transfer function with a0
// normalized to 1:
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
type Coefficients struct {
	B0, B1, B2 float64 // numerator
	A1, A2     float64 // denominator, a0 omitted
}

// Section filters samples through a single biquad in Direct Form II
// Transposed, keeping two delay values:
//
//	y    = B0*x + z0
//	z0   = B1*x - A1*y + z1
//	z1   = B2*x - A2*y
type Section struct {
	Coefficients

	z [2]float64
}

// NewSection returns a section with the given coefficients and a
// cleared delay line.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample filters one sample.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.z[0]
	s.z[0] = s.B1*x - s.A1*y + s.z[1]
	s.z[1] = s.B2*x - s.A2*y

	return y
}

// ProcessBlock filters buf in place without allocating. Delay values
// that have decayed below the denormal range are flushed to zero at the
// end of the block.
func (s *Section) ProcessBlock(buf []float64) {
	b0, b1, b2, a1, a2 := s.B0, s.B1, s.B2, s.A1, s.A2
	z0, z1 := s.z[0], s.z[1]

	for i, x := range buf {
		y := b0*x + z0
		z0 = b1*x - a1*y + z1
		z1 = b2*x - a2*y
		buf[i] = y
	}

	s.z[0] = core.FlushDenormals(z0)
	s.z[1] = core.FlushDenormals(z1)
}

// ProcessBlockTo filters src into dst, which must be at least as long
// as src. The source is left untouched.
func (s *Section) ProcessBlockTo(dst, src []float64) {
	b0, b1, b2, a1, a2 := s.B0, s.B1, s.B2, s.A1, s.A2
	z0, z1 := s.z[0], s.z[1]

	for i, x := range src {
		y := b0*x + z0
		z0 = b1*x - a1*y + z1
		z1 = b2*x - a2*y
		dst[i] = y
	}

	s.z[0] = core.FlushDenormals(z0)
	s.z[1] = core.FlushDenormals(z1)
}

// Reset clears the delay line.
func (s *Section) Reset() {
	s.z = [2]float64{}
}

// State returns the delay line values.
func (s *Section) State() [2]float64 {
	return s.z
}

// SetState restores delay line values saved with State.
func (s *Section) SetState(state [2]float64) {
	s.z = state
}
