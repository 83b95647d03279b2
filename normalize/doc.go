// Package normalize drives loudness normalization to an EBU R128
// target under a true-peak ceiling.
//
// Loudness measurement and peak limiting do not commute: limiting a
// gain-adjusted signal changes its integrated loudness in a way that
// cannot be predicted from the gain alone. The Controller therefore
// treats the meter and the limiter as black boxes and converges
// numerically: measure the input, apply the estimated gain to a fresh
// copy, limit, re-measure, fold the residual error into the next gain
// estimate. Candidates are always cloned from the pristine input, so
// iterations stay independent and the cumulative gain fully describes
// the returned buffer.
package normalize
