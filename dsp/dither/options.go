package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	minBitDepth = 1
	maxBitDepth = 32

	defaultBitDepth        = 16
	defaultDitherType      = DitherTriangular
	defaultDitherAmplitude = 1.0
	defaultLimit           = true
)

type config struct {
	bitDepth        int
	ditherType      DitherType
	ditherAmplitude float64
	limit           bool
	rng             *rand.Rand
}

func defaultConfig() config {
	var cfg config

	cfg.bitDepth = defaultBitDepth
	cfg.ditherType = defaultDitherType
	cfg.ditherAmplitude = defaultDitherAmplitude
	cfg.limit = defaultLimit

	return cfg
}

// Option configures a [Quantizer].
type Option func(*config) error

// WithBitDepth sets the word length of the integer output, from
// [minBitDepth] to [maxBitDepth] bits. The default is 16.
func WithBitDepth(bits int) Option {
	return func(cfg *config) error {
		if bits < minBitDepth || bits > maxBitDepth {
			return fmt.Errorf("dither: bit depth %d outside [%d, %d]", bits, minBitDepth, maxBitDepth)
		}

		cfg.bitDepth = bits

		return nil
	}
}

// WithDitherType selects the noise distribution added before
// truncation. The default is [DitherTriangular].
func WithDitherType(dt DitherType) Option {
	return func(cfg *config) error {
		if !dt.Valid() {
			return fmt.Errorf("dither: unknown dither type %d", dt)
		}

		cfg.ditherType = dt

		return nil
	}
}

// WithDitherAmplitude scales the dither noise, in units of one
// quantization step. The default of 1.0 gives the standard amplitude
// for each distribution; 0 disables the noise without changing the
// selected type.
func WithDitherAmplitude(amp float64) Option {
	return func(cfg *config) error {
		if amp < 0 || math.IsNaN(amp) || math.IsInf(amp, 0) {
			return fmt.Errorf("dither: amplitude %f must be finite and >= 0", amp)
		}

		cfg.ditherAmplitude = amp

		return nil
	}
}

// WithLimit controls clamping of the integer output to the range of
// the configured bit depth. Enabled by default; disable it to observe
// raw overflow behavior.
func WithLimit(enabled bool) Option {
	return func(cfg *config) error {
		cfg.limit = enabled
		return nil
	}
}

// WithRNG replaces the noise source. Pass a seeded generator for
// reproducible output; the default is randomly seeded.
func WithRNG(rng *rand.Rand) Option {
	return func(cfg *config) error {
		cfg.rng = rng
		return nil
	}
}
