// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Multiple sections can be
// cascaded via [Chain], which is how the loudness meter runs its K-weighting
// curve (high shelf followed by highpass).
//
// This package provides the processing runtime only. Coefficient design
// lives in dsp/filter/design.
package biquad
