// Package pipeline reads audio files, normalizes them through the
// convergence controller, and writes the result back to disk.
//
// WAV containers decode natively. Anything else is transcoded to a
// temporary WAV through an external ffmpeg binary when one is on the
// PATH; without ffmpeg such files are skipped with a diagnostic.
// Batches are sequential and per-file failures never abort the run.
package pipeline
