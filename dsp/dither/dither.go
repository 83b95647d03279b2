package dither

import "fmt"

// DitherType selects the noise distribution added before truncation.
// Triangular is the usual choice for audio; None truncates without
// noise and is only bit-transparent when the depth does not change.
type DitherType int

const (
	// DitherNone rounds without noise.
	DitherNone DitherType = iota
	// DitherRectangular draws from a uniform distribution, one LSB wide.
	DitherRectangular
	// DitherTriangular draws TPDF noise, two uniform draws summed.
	DitherTriangular
	// DitherGaussian draws normally distributed noise.
	DitherGaussian
	// DitherFastGaussian approximates a normal distribution by summing
	// uniform draws.
	DitherFastGaussian

	ditherTypeCount
)

// String returns the distribution name, or DitherType(n) for unknown
// values.
func (dt DitherType) String() string {
	switch dt {
	case DitherNone:
		return "None"
	case DitherRectangular:
		return "Rectangular"
	case DitherTriangular:
		return "Triangular"
	case DitherGaussian:
		return "Gaussian"
	case DitherFastGaussian:
		return "FastGaussian"
	default:
		return fmt.Sprintf("DitherType(%d)", dt)
	}
}

// Valid reports whether dt names a known distribution.
func (dt DitherType) Valid() bool {
	return dt >= 0 && dt < ditherTypeCount
}
