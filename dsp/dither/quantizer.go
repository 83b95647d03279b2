package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Quantizer reduces samples to a target bit depth, adding dither noise
// ahead of the truncation. Integer codes follow a mid-riser layout:
// code k reconstructs to (k + 0.5) / (2^(n-1) - 0.5), so full scale in
// either direction maps onto the extreme codes without bias.
type Quantizer struct {
	sampleRate      float64
	bitDepth        int
	ditherType      DitherType
	ditherAmplitude float64
	limit           bool
	rng             *rand.Rand

	// Derived from bitDepth.
	scale    float64
	invScale float64
	intMin   int
	intMax   int
}

// NewQuantizer creates a Quantizer. Defaults: 16 bit, triangular dither
// at one LSB, limiting on.
func NewQuantizer(sampleRate float64, opts ...Option) (*Quantizer, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("dither: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	quant := &Quantizer{
		sampleRate:      sampleRate,
		bitDepth:        cfg.bitDepth,
		ditherType:      cfg.ditherType,
		ditherAmplitude: cfg.ditherAmplitude,
		limit:           cfg.limit,
		rng:             cfg.rng,
	}

	if quant.rng == nil {
		quant.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	quant.deriveRange()

	return quant, nil
}

func (q *Quantizer) deriveRange() {
	q.scale = math.Exp2(float64(q.bitDepth-1)) - 0.5
	q.invScale = 1.0 / q.scale

	// [-2^(n-1), 2^(n-1)-1], the two's complement range.
	q.intMin = -int(math.Round(q.scale + 0.5))
	q.intMax = int(math.Round(q.scale - 0.5))
}

// ProcessInteger quantizes one sample (nominally in [-1, 1]) to an
// integer code. With limiting enabled the code is clamped to the
// two's complement range of the bit depth.
func (q *Quantizer) ProcessInteger(input float64) int {
	code := q.quantize(q.scale * input)

	if q.limit {
		code = max(q.intMin, min(q.intMax, code))
	}

	return code
}

// ProcessSample quantizes one sample and returns it re-normalized to
// approximately [-1, 1].
func (q *Quantizer) ProcessSample(input float64) float64 {
	return (float64(q.ProcessInteger(input)) + 0.5) * q.invScale
}

// ProcessInPlace quantizes every sample of buf.
func (q *Quantizer) ProcessInPlace(buf []float64) {
	for idx, val := range buf {
		buf[idx] = q.ProcessSample(val)
	}
}

// quantize truncates the scaled value after adding one dither draw.
func (q *Quantizer) quantize(scaled float64) int {
	return int(math.Floor(scaled + q.noise()))
}

// noise returns one draw of the configured distribution, scaled by the
// dither amplitude. DitherNone draws nothing.
func (q *Quantizer) noise() float64 {
	switch q.ditherType {
	case DitherRectangular:
		return q.ditherAmplitude * (q.rng.Float64()*2 - 1)
	case DitherTriangular:
		return q.ditherAmplitude * (q.rng.Float64() - q.rng.Float64())
	case DitherGaussian:
		return q.ditherAmplitude * q.rng.NormFloat64()
	case DitherFastGaussian:
		return q.ditherAmplitude * q.approxGaussian()
	default:
		return 0
	}
}

// approxGaussian sums six uniform draws; by the central limit theorem
// the result is close to normal with mean 0.
func (q *Quantizer) approxGaussian() float64 {
	sum := 0.0
	for range 6 {
		sum += q.rng.Float64()
	}

	return sum - 3.0
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// DitherType returns the dither noise distribution.
func (q *Quantizer) DitherType() DitherType { return q.ditherType }

// DitherAmplitude returns the dither noise amplitude in LSB.
func (q *Quantizer) DitherAmplitude() float64 { return q.ditherAmplitude }

// Limit reports whether output codes are clamped to the integer range.
func (q *Quantizer) Limit() bool { return q.limit }

// SampleRate returns the configured sample rate.
func (q *Quantizer) SampleRate() float64 { return q.sampleRate }

// SetBitDepth changes the target bit depth (1-32).
func (q *Quantizer) SetBitDepth(bits int) error {
	if bits < minBitDepth || bits > maxBitDepth {
		return fmt.Errorf("dither: bit depth must be in [%d, %d]: %d", minBitDepth, maxBitDepth, bits)
	}

	q.bitDepth = bits
	q.deriveRange()

	return nil
}

// SetDitherType changes the dither noise distribution.
func (q *Quantizer) SetDitherType(dt DitherType) error {
	if !dt.Valid() {
		return fmt.Errorf("dither: invalid dither type: %d", dt)
	}

	q.ditherType = dt

	return nil
}

// SetDitherAmplitude changes the dither noise amplitude in LSB.
func (q *Quantizer) SetDitherAmplitude(amp float64) error {
	if amp < 0 || math.IsNaN(amp) || math.IsInf(amp, 0) {
		return fmt.Errorf("dither: amplitude must be >= 0 and finite: %f", amp)
	}

	q.ditherAmplitude = amp

	return nil
}

// SetLimit enables or disables output clamping.
func (q *Quantizer) SetLimit(enabled bool) {
	q.limit = enabled
}
