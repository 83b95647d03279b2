package core

// ProgressFunc observes the advance of a long-running pass. Callers
// receive a monotonically non-decreasing current value and a final call
// with current == total. Callbacks run on the working goroutine and must
// not block; they cannot affect control flow.
type ProgressFunc func(current, total int)
