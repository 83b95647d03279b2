// Package dynamics provides level-dependent gain processing.
//
// TruePeakLimiter bounds the true peak of a whole buffer to a ceiling:
// a 4x oversampled detector runs one lookahead window ahead of the
// program path and drives a level envelope with fast attack and a
// caller-supplied release pole. Gain reduction is shared across channels
// (max-linked), and a final per-sample clamp at the ceiling backs the
// envelope on isolated transients.
package dynamics
