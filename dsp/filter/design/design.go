package design

import (
	"math"

	"github.com/cwbudde/algo-loudnorm/dsp/filter/biquad"
)

// defaultQ is the Butterworth quality factor, -3 dB at the corner.
const defaultQ = 1 / math.Sqrt2

// proto carries the intermediate terms shared by the RBJ cookbook
// designs at one normalized frequency.
type proto struct {
	cw, sw, alpha float64
}

// prototypeAt validates the design frequency against the sample rate
// and computes the shared terms. Frequencies outside (0, nyquist) and
// degenerate sample rates fail; a degenerate q falls back to the
// Butterworth default.
func prototypeAt(freq, q, sampleRate float64) (proto, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return proto{}, false
	}

	if freq <= 0 || freq >= sampleRate/2 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return proto{}, false
	}

	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		q = defaultQ
	}

	w0 := 2 * math.Pi * freq / sampleRate

	p := proto{cw: math.Cos(w0), sw: math.Sin(w0)}
	p.alpha = p.sw / (2 * q)

	return p, true
}

// Lowpass designs an RBJ lowpass biquad at freq (Hz) with quality
// factor q. Invalid parameters yield zero coefficients.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	p, ok := prototypeAt(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	half := (1 - p.cw) / 2

	return normalized(
		half, 1-p.cw, half,
		1+p.alpha, -2*p.cw, 1-p.alpha,
	)
}

// Highpass designs an RBJ highpass biquad at freq (Hz) with quality
// factor q. Invalid parameters yield zero coefficients.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	p, ok := prototypeAt(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	half := (1 + p.cw) / 2

	return normalized(
		half, -(1 + p.cw), half,
		1+p.alpha, -2*p.cw, 1-p.alpha,
	)
}

// HighShelf designs an RBJ high-shelf biquad with the plateau gain in
// dB. Invalid parameters yield zero coefficients.
func HighShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	p, ok := prototypeAt(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	a := math.Pow(10, gainDB/40)
	up := a + 1
	down := a - 1
	beta := 2 * math.Sqrt(a) * p.alpha

	return normalized(
		a*(up+down*p.cw+beta),
		-2*a*(down+up*p.cw),
		a*(up+down*p.cw-beta),
		up-down*p.cw+beta,
		2*(down-up*p.cw),
		up-down*p.cw-beta,
	)
}

// KWeighting designs the BS.1770 K-weighting curve for the given sample
// rate as a two-section cascade: the high-frequency shelf modelling the
// acoustic effect of the head, followed by the revised low-cut.
func KWeighting(sampleRate float64) *biquad.Chain {
	shelf := HighShelf(1500, 4.0, defaultQ, sampleRate)
	highpass := Highpass(38, defaultQ, sampleRate)

	return biquad.NewChain([]biquad.Coefficients{shelf, highpass})
}

// normalized divides the raw design through a0 so the biquad runtime
// can assume a unity leading denominator coefficient.
func normalized(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Coefficients{}
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
