package design

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-loudnorm/dsp/filter/biquad"
)

func mag(c biquad.Coefficients, freq, sampleRate float64) float64 {
	return math.Sqrt(c.MagnitudeSquared(freq, sampleRate))
}

func TestLowpassShape(t *testing.T) {
	c := Lowpass(1000, defaultQ, 48000)

	dc := mag(c, 1, 48000)
	if math.Abs(dc-1) > 0.01 {
		t.Errorf("lowpass DC gain = %f, want ~1", dc)
	}

	hf := mag(c, 20000, 48000)
	if hf > 0.01 {
		t.Errorf("lowpass gain at 20 kHz = %f, want ~0", hf)
	}
}

func TestHighpassShape(t *testing.T) {
	c := Highpass(1000, defaultQ, 48000)

	lf := mag(c, 10, 48000)
	if lf > 0.01 {
		t.Errorf("highpass gain at 10 Hz = %f, want ~0", lf)
	}

	hf := mag(c, 20000, 48000)
	if math.Abs(hf-1) > 0.01 {
		t.Errorf("highpass gain at 20 kHz = %f, want ~1", hf)
	}
}

func TestHighpassCutoffGain(t *testing.T) {
	// Butterworth Q gives -3 dB at the cutoff frequency.
	c := Highpass(1000, defaultQ, 48000)

	got := 20 * math.Log10(mag(c, 1000, 48000))
	if math.Abs(got-(-3.01)) > 0.05 {
		t.Errorf("highpass gain at cutoff = %f dB, want ~-3.01 dB", got)
	}
}

func TestHighShelfShape(t *testing.T) {
	const gainDB = 4.0

	c := HighShelf(1500, gainDB, defaultQ, 48000)

	lf := 20 * math.Log10(mag(c, 20, 48000))
	if math.Abs(lf) > 0.1 {
		t.Errorf("high shelf gain at 20 Hz = %f dB, want ~0 dB", lf)
	}

	hf := 20 * math.Log10(mag(c, 18000, 48000))
	if math.Abs(hf-gainDB) > 0.2 {
		t.Errorf("high shelf gain at 18 kHz = %f dB, want ~%f dB", hf, gainDB)
	}
}

func TestHighShelfCut(t *testing.T) {
	c := HighShelf(1500, -6, defaultQ, 48000)

	hf := 20 * math.Log10(mag(c, 18000, 48000))
	if math.Abs(hf-(-6)) > 0.2 {
		t.Errorf("high shelf gain at 18 kHz = %f dB, want ~-6 dB", hf)
	}
}

func TestKWeightingResponse(t *testing.T) {
	chain := KWeighting(48000)

	if chain.NumSections() != 2 {
		t.Fatalf("NumSections() = %d, want 2", chain.NumSections())
	}

	// The shelf boosts high frequencies by about 4 dB.
	hf := chain.MagnitudeDB(10000, 48000)
	if math.Abs(hf-4) > 0.3 {
		t.Errorf("K-weighting gain at 10 kHz = %f dB, want ~+4 dB", hf)
	}

	// The low cut attenuates content well below 38 Hz.
	lf := chain.MagnitudeDB(10, 48000)
	if lf > -15 {
		t.Errorf("K-weighting gain at 10 Hz = %f dB, want strong attenuation", lf)
	}

	// The shelf contributes ~+0.69 dB at 997 Hz, which the integrated
	// loudness offset of -0.691 dB cancels.
	mid := chain.MagnitudeDB(997, 48000)
	if math.Abs(mid-0.69) > 0.15 {
		t.Errorf("K-weighting gain at 997 Hz = %f dB, want ~+0.69 dB", mid)
	}
}

func TestKWeightingShelfMatchesReference(t *testing.T) {
	// ITU-R BS.1770 tabulates the pre-filter coefficients at 48 kHz.
	// The shelf parametrization reproduces them to within rounding.
	c := HighShelf(1500, 4.0, defaultQ, 48000)

	want := biquad.Coefficients{
		B0: 1.53512485958697,
		B1: -2.69169618940638,
		B2: 1.19839281085285,
		A1: -1.69065929318241,
		A2: 0.73248077421585,
	}

	const tol = 5e-5

	if math.Abs(c.B0-want.B0) > tol ||
		math.Abs(c.B1-want.B1) > tol ||
		math.Abs(c.B2-want.B2) > tol ||
		math.Abs(c.A1-want.A1) > tol ||
		math.Abs(c.A2-want.A2) > tol {
		t.Errorf("shelf coefficients = %+v, want %+v", c, want)
	}
}

func TestInvalidInputsYieldZero(t *testing.T) {
	zero := biquad.Coefficients{}

	cases := []struct {
		name string
		got  biquad.Coefficients
	}{
		{"zero sample rate", Highpass(1000, defaultQ, 0)},
		{"negative sample rate", Highpass(1000, defaultQ, -48000)},
		{"zero freq", Highpass(0, defaultQ, 48000)},
		{"negative freq", HighShelf(-100, 4, defaultQ, 48000)},
		{"freq at nyquist", Lowpass(24000, defaultQ, 48000)},
		{"freq above nyquist", HighShelf(30000, 4, defaultQ, 48000)},
		{"NaN freq", Highpass(math.NaN(), defaultQ, 48000)},
		{"Inf sample rate", Lowpass(1000, defaultQ, math.Inf(1))},
	}

	for _, tc := range cases {
		if tc.got != zero {
			t.Errorf("%s: got %+v, want zero coefficients", tc.name, tc.got)
		}
	}
}

func TestInvalidQFallsBack(t *testing.T) {
	want := Highpass(1000, defaultQ, 48000)

	cases := []float64{0, -1, math.NaN(), math.Inf(1)}
	for _, q := range cases {
		got := Highpass(1000, q, 48000)
		if got != want {
			t.Errorf("Highpass(q=%f) = %+v, want default-Q design %+v", q, got, want)
		}
	}
}

func TestCoefficientsNormalized(t *testing.T) {
	// ProcessSample assumes a0 has been divided out. Verify against a
	// direct evaluation of the un-normalized RBJ highpass transfer at DC.
	c := Highpass(38, defaultQ, 48000)

	// A normalized highpass sums its numerator to ~0 at DC and keeps
	// the b0 coefficient below the raw (1+cw)/2 value.
	sum := c.B0 + c.B1 + c.B2
	if math.Abs(sum) > 1e-9 {
		t.Errorf("numerator sum at DC = %g, want ~0", sum)
	}

	if c.B0 >= 1 {
		t.Errorf("B0 = %f, want < 1 after normalization", c.B0)
	}
}
