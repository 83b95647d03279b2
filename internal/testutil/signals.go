package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-loudnorm/dsp/buffer"
)

// DeterministicSine returns a sine starting at phase zero. The same
// arguments always produce the same samples.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DeterministicNoise returns uniform noise in (-1, 1) from a seeded
// source, so runs are reproducible.
func DeterministicNoise(length int, seed int64) []float64 {
	out := make([]float64, length)

	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}

	return out
}

// SineBuffer returns a buffer carrying the same deterministic sine in
// every channel.
func SineBuffer(channels, frames int, freqHz, sampleRate, amplitude float64) *buffer.SampleBuffer {
	buf := buffer.New(channels, frames)

	sig := DeterministicSine(freqHz, sampleRate, amplitude, frames)
	for c := range buf.Channels() {
		copy(buf.Channel(c), sig)
	}

	return buf
}
