// Package gain applies scalar gain in decibels to sample buffers.
//
// Gain is applied in place as a single multiply per sample. A gain of
// exactly 0 dB is treated as the identity and skips the multiply, so a
// zero-gain pass never perturbs sample values through rounding.
package gain
