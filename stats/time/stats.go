package time

import "math"

// Stats summarizes one channel of audio in the time domain. Amplitude
// fields carry a companion value in dB (20*log10); a silent channel
// reports -Inf there, except for the crest factor which stays 0.
//
//nolint:revive
type Stats struct {
	Length int

	// Level.
	DC     float64 // mean sample value
	DC_dB  float64
	RMS    float64
	RMS_dB float64

	// Extrema. Positions index the first occurrence.
	Max      float64
	MaxPos   int
	Min      float64
	MinPos   int
	Peak     float64 // max(|Max|, |Min|)
	Peak_dB  float64
	Range    float64 // Max - Min
	Range_dB float64

	// Shape.
	CrestFactor    float64 // Peak / RMS
	CrestFactor_dB float64
	Energy         float64 // sum of squared samples
	Power          float64 // Energy / Length
	ZeroCrossings  int
	Variance       float64
	Skewness       float64
	Kurtosis       float64 // excess, 0 for a normal distribution
}

// accumulator carries the running state of one Calculate pass. Moments
// use Welford's update so variance, skewness and kurtosis stay stable
// on long signals.
type accumulator struct {
	count          int
	mean           float64
	m2, m3, m4     float64
	sumSquares     float64
	max, min       float64
	maxPos, minPos int
	crossings      int
	prev           float64
}

func (a *accumulator) add(x float64) {
	if a.count == 0 {
		a.max, a.min = x, x
	} else {
		if x > a.max {
			a.max = x
			a.maxPos = a.count
		}

		if x < a.min {
			a.min = x
			a.minPos = a.count
		}

		if a.prev*x < 0 {
			a.crossings++
		}
	}

	n0 := float64(a.count)
	a.count++
	n1 := float64(a.count)

	delta := x - a.mean
	deltaN := delta / n1
	term := delta * deltaN * n0

	// Higher moments consume the lower ones from the previous step,
	// so the update order is m4, m3, m2, mean.
	a.m4 += term*deltaN*deltaN*(n1*n1-3*n1+3) + 6*deltaN*deltaN*a.m2 - 4*deltaN*a.m3
	a.m3 += term*deltaN*(n0-1) - 3*deltaN*a.m2
	a.m2 += term
	a.mean += deltaN

	a.sumSquares += x * x
	a.prev = x
}

// Calculate runs one pass over the signal and fills every Stats field.
// An empty signal yields zero values with -Inf in the dB fields.
func Calculate(signal []float64) Stats {
	if len(signal) == 0 {
		return Stats{
			DC_dB:          math.Inf(-1),
			RMS_dB:         math.Inf(-1),
			Peak_dB:        math.Inf(-1),
			Range_dB:       math.Inf(-1),
			CrestFactor_dB: math.Inf(-1),
		}
	}

	var acc accumulator
	for _, x := range signal {
		acc.add(x)
	}

	n := float64(acc.count)
	rms := math.Sqrt(acc.sumSquares / n)
	peak := math.Max(math.Abs(acc.max), math.Abs(acc.min))

	s := Stats{
		Length:        acc.count,
		DC:            acc.mean,
		DC_dB:         amplitudeDB(acc.mean),
		RMS:           rms,
		RMS_dB:        amplitudeDB(rms),
		Max:           acc.max,
		MaxPos:        acc.maxPos,
		Min:           acc.min,
		MinPos:        acc.minPos,
		Peak:          peak,
		Peak_dB:       amplitudeDB(peak),
		Range:         acc.max - acc.min,
		Range_dB:      amplitudeDB(acc.max - acc.min),
		Energy:        acc.sumSquares,
		Power:         acc.sumSquares / n,
		ZeroCrossings: acc.crossings,
		Variance:      acc.m2 / n,
	}

	if rms > 0 {
		s.CrestFactor = peak / rms
		s.CrestFactor_dB = amplitudeDB(s.CrestFactor)
	}

	if s.Variance > 0 {
		s.Skewness = (acc.m3 / n) / (s.Variance * math.Sqrt(s.Variance))
		s.Kurtosis = (acc.m4/n)/(s.Variance*s.Variance) - 3
	}

	return s
}

// RMS returns the root mean square of the signal, 0 when empty.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	sum := 0.0
	for _, x := range signal {
		sum += x * x
	}

	return math.Sqrt(sum / float64(len(signal)))
}

// DC returns the mean of the signal, 0 when empty. Summation is
// compensated so a small offset survives a long signal.
func DC(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	sum, comp := 0.0, 0.0
	for _, x := range signal {
		y := x - comp
		t := sum + y
		comp = (t - sum) - y
		sum = t
	}

	return sum / float64(len(signal))
}

// Peak returns the largest absolute sample value, 0 when empty.
func Peak(signal []float64) float64 {
	peak := 0.0
	for _, x := range signal {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}

	return peak
}

// CrestFactor returns Peak over RMS, 0 for a silent signal.
func CrestFactor(signal []float64) float64 {
	rms := RMS(signal)
	if rms == 0 {
		return 0
	}

	return Peak(signal) / rms
}

// ZeroCrossings counts sign changes between consecutive samples.
// Samples at exactly zero do not produce a crossing.
func ZeroCrossings(signal []float64) int {
	count := 0
	for i := 1; i < len(signal); i++ {
		if signal[i-1]*signal[i] < 0 {
			count++
		}
	}

	return count
}

// amplitudeDB converts a linear amplitude to dB, -Inf at zero.
func amplitudeDB(value float64) float64 {
	a := math.Abs(value)
	if a == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(a)
}
