package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to [min, max]. Swapped bounds are reordered.
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	return math.Min(math.Max(value, min), max)
}

// NearlyEqual reports whether a and b agree within eps, absolutely for
// small magnitudes and relatively for large ones. A non-positive eps
// selects the default epsilon.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return diff <= eps
	}

	return diff/scale <= eps
}

// FlushDenormals rounds values below the denormal threshold to zero.
// Filter feedback paths call this on their state so silent stretches do
// not stall the FPU on denormal arithmetic.
func FlushDenormals(x float64) float64 {
	const tiny = 1e-30
	if x > -tiny && x < tiny {
		return 0
	}

	return x
}

// DBToLinear converts a decibel value to linear amplitude.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts a linear amplitude to decibels. Zero maps to
// -Inf, negative amplitudes to NaN.
func LinearToDB(linear float64) float64 {
	switch {
	case linear < 0:
		return math.NaN()
	case linear == 0:
		return math.Inf(-1)
	default:
		return 20 * math.Log10(linear)
	}
}
