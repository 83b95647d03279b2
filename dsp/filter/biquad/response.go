package biquad

import (
	"math"
	"math/cmplx"
)

// Response evaluates the transfer function on the unit circle at freqHz
// for the given sample rate. Numerator and denominator are evaluated in
// Horner form at z^-1 = e^{-jw}.
func (c *Coefficients) Response(freqHz, sampleRate float64) complex128 {
	z1 := cmplx.Rect(1, -2*math.Pi*freqHz/sampleRate)

	num := complex(c.B0, 0) + z1*(complex(c.B1, 0)+z1*complex(c.B2, 0))
	den := complex(1, 0) + z1*(complex(c.A1, 0)+z1*complex(c.A2, 0))

	return num / den
}

// MagnitudeSquared returns |H(f)|^2 without forming complex values. The
// squared polynomial magnitudes reduce to cos(w) and cos(2w) cross
// terms.
func (c *Coefficients) MagnitudeSquared(freqHz, sampleRate float64) float64 {
	cosw := math.Cos(2 * math.Pi * freqHz / sampleRate)
	cos2w := 2*cosw*cosw - 1

	num := c.B0*c.B0 + c.B1*c.B1 + c.B2*c.B2 +
		2*cosw*c.B1*(c.B0+c.B2) + 2*cos2w*c.B0*c.B2
	den := 1 + c.A1*c.A1 + c.A2*c.A2 +
		2*cosw*c.A1*(1+c.A2) + 2*cos2w*c.A2

	return num / den
}

// MagnitudeDB returns the magnitude response in dB.
func (c *Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 10 * math.Log10(c.MagnitudeSquared(freqHz, sampleRate))
}

// Response evaluates the cascade transfer function, the input gain
// times the product of the section responses.
func (c *Chain) Response(freqHz, sampleRate float64) complex128 {
	h := complex(c.gain, 0)
	for i := range c.sections {
		h *= c.sections[i].Response(freqHz, sampleRate)
	}

	return h
}

// MagnitudeDB returns the cascade magnitude response in dB.
func (c *Chain) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(c.Response(freqHz, sampleRate)))
}
