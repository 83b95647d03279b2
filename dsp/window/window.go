package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type selects a window shape. The spectral analyzer frames its FFT
// segments with these, and the true-peak interpolator tapers its
// filter taps with a Kaiser window.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeBlackmanHarris4Term
	TypeFlatTop
	TypeKaiser
)

// cosineSums holds the cosine-series terms per shape. The flat-top
// terms follow the HP/SciPy convention.
var cosineSums = map[Type][]float64{
	TypeHann:                {0.5, -0.5},
	TypeHamming:             {0.54, -0.46},
	TypeBlackman:            {0.42, -0.5, 0.08},
	TypeBlackmanHarris4Term: {0.35875, -0.48829, 0.14128, -0.01168},
	TypeFlatTop:             {0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368},
}

// Option adjusts window generation.
type Option func(*config)

type config struct {
	alpha    float64
	periodic bool
}

func defaultConfig() config {
	return config{alpha: 1}
}

// WithAlpha sets the shape parameter of parametric windows, the beta of
// a Kaiser window. Negative values are ignored.
func WithAlpha(v float64) Option {
	return func(c *config) {
		if v >= 0 {
			c.alpha = v
		}
	}
}

// WithPeriodic generates the DFT-even form used for spectral framing
// rather than the symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns the coefficients of a window of the given length. A
// non-positive length yields nil.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	den := float64(length - 1)
	if cfg.periodic {
		den = float64(length)
	}

	if den == 0 {
		den = 1
	}

	w := make([]float64, length)
	for i := range w {
		w[i] = valueAt(t, float64(i)/den, cfg.alpha)
	}

	return w
}

// Hann returns Hann window coefficients.
func Hann(size int, opts ...Option) ([]float64, error) {
	return named(TypeHann, size, opts)
}

// Hamming returns Hamming window coefficients.
func Hamming(size int, opts ...Option) ([]float64, error) {
	return named(TypeHamming, size, opts)
}

// Blackman returns Blackman window coefficients.
func Blackman(size int, opts ...Option) ([]float64, error) {
	return named(TypeBlackman, size, opts)
}

// FlatTop returns 5-term flat-top window coefficients.
func FlatTop(size int, opts ...Option) ([]float64, error) {
	return named(TypeFlatTop, size, opts)
}

func named(t Type, size int, opts []Option) ([]float64, error) {
	if err := validateLength(size); err != nil {
		return nil, err
	}

	return Generate(t, size, opts...), nil
}

// Kaiser returns Kaiser window coefficients with the given beta.
func Kaiser(size int, beta float64, opts ...Option) ([]float64, error) {
	if err := validateKaiser(size, beta); err != nil {
		return nil, err
	}

	return Generate(TypeKaiser, size, append(opts, WithAlpha(beta))...), nil
}

// Apply windows buf in place with a freshly generated window of
// matching length.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// ApplyCoefficients returns the element-wise product of samples and
// coeffs.
func ApplyCoefficients(samples, coeffs []float64) ([]float64, error) {
	if len(samples) != len(coeffs) {
		return nil, errMismatchedLength
	}

	out := make([]float64, len(samples))
	vecmath.MulBlock(out, samples, coeffs)

	return out, nil
}

// ApplyCoefficientsInPlace multiplies samples by coeffs element-wise.
func ApplyCoefficientsInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return errMismatchedLength
	}

	vecmath.MulBlockInPlace(samples, coeffs)

	return nil
}

// EquivalentNoiseBandwidth returns the window's noise bandwidth in
// bins, N * sum(w^2) / sum(w)^2.
func EquivalentNoiseBandwidth(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	var sum, power float64

	for _, w := range coeffs {
		sum += w
		power += w * w
	}

	if sum == 0 {
		return 0, errZeroCoherentGain
	}

	return float64(len(coeffs)) * power / (sum * sum), nil
}

// valueAt evaluates the window at normalized position x in [0, 1].
func valueAt(t Type, x, alpha float64) float64 {
	x = min(max(x, 0), 1)

	switch t {
	case TypeRectangular:
		return 1
	case TypeKaiser:
		return kaiserValue(x, alpha)
	}

	terms, ok := cosineSums[t]
	if !ok {
		return 1
	}

	phase := 2 * math.Pi * x

	w := 0.0
	for k, a := range terms {
		w += a * math.Cos(float64(k)*phase)
	}

	return w
}

func kaiserValue(x, beta float64) float64 {
	if beta <= 0 {
		return 1
	}

	r := 2*x - 1

	return besselI0(beta*math.Sqrt(math.Max(0, 1-r*r))) / besselI0(beta)
}

// besselI0 approximates the zeroth-order modified Bessel function with
// the Abramowitz & Stegun polynomials (9.8.1 and 9.8.2).
func besselI0(x float64) float64 {
	ax := math.Abs(x)

	if ax < 3.75 {
		t := x / 3.75
		y := t * t

		return 1.0 + y*(3.5156229+y*(3.0899424+y*(1.2067492+y*(0.2659732+y*(0.0360768+y*0.0045813)))))
	}

	y := 3.75 / ax

	return (math.Exp(ax) / math.Sqrt(ax)) *
		(0.39894228 + y*(0.01328592+y*(0.00225319+y*(-0.00157565+y*(0.00916281+y*(-0.02057706+y*(0.02635537+y*(-0.01647633+y*0.00392377))))))))
}
