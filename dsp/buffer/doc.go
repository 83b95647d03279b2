// Package buffer provides the multichannel sample buffer shared by the
// metering, limiting, and normalization packages. Channels are stored
// non-interleaved as one []float64 per channel; DSP functions that work on
// a single channel accept the raw slice via Channel. A Pool helps loops
// that clone a full candidate per pass keep allocation flat.
package buffer
