// Package design provides digital IIR filter coefficient designers based
// on the Robert Bristow-Johnson audio EQ cookbook formulas.
//
// Designers return normalized biquad.Coefficients (a0 == 1) ready for use
// with biquad.Section or biquad.Chain. Invalid parameters (non-positive
// sample rate, frequency outside (0, Nyquist)) yield zero coefficients,
// which act as a mute rather than an error.
//
// KWeighting builds the two-stage frequency weighting used by the
// loudness meter: a +4 dB high shelf at 1.5 kHz followed by a 38 Hz
// highpass, both at Q = 1/sqrt(2).
package design
