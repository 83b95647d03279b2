package core

// EnsureLen returns buf resized to length n, allocating only when the
// capacity falls short. Contents up to the previous length survive a
// capacity-reusing resize; a fresh allocation starts zeroed.
func EnsureLen(buf []float64, n int) []float64 {
	switch {
	case n <= 0:
		return buf[:0]
	case cap(buf) >= n:
		return buf[:n]
	default:
		return make([]float64, n)
	}
}

// Zero clears buf in place.
func Zero(buf []float64) {
	clear(buf)
}
