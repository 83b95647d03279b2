package normalize

import (
	"fmt"
	"math"
)

const (
	defaultTargetLoudness = -23.0
	defaultTolerance      = 0.5
	defaultPeakCeiling    = -1.0
	defaultMaxIterations  = 10
	defaultMaxGainDB      = 60.0
	defaultLookahead      = 0.003
	defaultRelease        = 0.1

	minTargetLoudness = -70.0
	maxTargetLoudness = 0.0
	maxTolerance      = 10.0
	minPeakCeiling    = -24.0
	maxPeakCeiling    = 0.0
	maxIterationCap   = 100
	maxGainCap        = 96.0
	maxLookahead      = 0.2
	maxRelease        = 10.0
)

type config struct {
	target        float64
	tolerance     float64
	ceilingDB     float64
	maxIterations int
	maxGainDB     float64
	lookahead     float64
	release       float64

	meter       Meter
	limiter     Limiter
	gainStage   GainStage
	progress    ProgressFunc
	onIteration IterationFunc
}

func defaultConfig() config {
	return config{
		target:        defaultTargetLoudness,
		tolerance:     defaultTolerance,
		ceilingDB:     defaultPeakCeiling,
		maxIterations: defaultMaxIterations,
		maxGainDB:     defaultMaxGainDB,
		lookahead:     defaultLookahead,
		release:       defaultRelease,
	}
}

// Option configures a [Controller].
type Option func(*config) error

// WithTargetLoudness sets the integrated loudness to normalize to, in
// LUFS (default -23, the EBU R128 program target). Targets at or below
// the -70 LUFS absolute gate cannot be measured and are rejected.
func WithTargetLoudness(lufs float64) Option {
	return func(cfg *config) error {
		if lufs < minTargetLoudness || lufs > maxTargetLoudness || !isFinite(lufs) {
			return fmt.Errorf("normalize: target loudness must be in [%g, %g] LUFS: %f",
				minTargetLoudness, maxTargetLoudness, lufs)
		}

		cfg.target = lufs

		return nil
	}
}

// WithTolerance sets the convergence tolerance in LU (default 0.5).
// The loop stops once the measured loudness is within this distance of
// the target.
func WithTolerance(lu float64) Option {
	return func(cfg *config) error {
		if lu <= 0 || lu > maxTolerance || !isFinite(lu) {
			return fmt.Errorf("normalize: tolerance must be in (0, %g] LU: %f", maxTolerance, lu)
		}

		cfg.tolerance = lu

		return nil
	}
}

// WithPeakCeiling sets the true-peak ceiling in dBTP (default -1).
// Every candidate is limited to this ceiling before re-measurement.
func WithPeakCeiling(db float64) Option {
	return func(cfg *config) error {
		if db < minPeakCeiling || db > maxPeakCeiling || !isFinite(db) {
			return fmt.Errorf("normalize: peak ceiling must be in [%g, %g] dBTP: %f",
				minPeakCeiling, maxPeakCeiling, db)
		}

		cfg.ceilingDB = db

		return nil
	}
}

// WithMaxIterations bounds the number of correction iterations
// (default 10). When the bound is reached Normalize returns
// ErrNotConverged together with the best candidate seen.
func WithMaxIterations(n int) Option {
	return func(cfg *config) error {
		if n < 1 || n > maxIterationCap {
			return fmt.Errorf("normalize: max iterations must be in [1, %d]: %d", maxIterationCap, n)
		}

		cfg.maxIterations = n

		return nil
	}
}

// WithMaxGain bounds the magnitude of the cumulative gain in dB
// (default 60). The clamp keeps floor measurements of silent input
// from requesting unbounded amplification.
func WithMaxGain(db float64) Option {
	return func(cfg *config) error {
		if db <= 0 || db > maxGainCap || !isFinite(db) {
			return fmt.Errorf("normalize: max gain must be in (0, %g] dB: %f", maxGainCap, db)
		}

		cfg.maxGainDB = db

		return nil
	}
}

// WithLookahead sets the lookahead window of the built-in limiter in
// seconds (default 0.003). Ignored when a custom Limiter is injected.
func WithLookahead(seconds float64) Option {
	return func(cfg *config) error {
		if seconds < 0 || seconds > maxLookahead || !isFinite(seconds) {
			return fmt.Errorf("normalize: lookahead must be in [0, %g] s: %f", maxLookahead, seconds)
		}

		cfg.lookahead = seconds

		return nil
	}
}

// WithRelease sets the release time of the built-in limiter in seconds
// (default 0.1). Ignored when a custom Limiter is injected.
func WithRelease(seconds float64) Option {
	return func(cfg *config) error {
		if seconds <= 0 || seconds > maxRelease || !isFinite(seconds) {
			return fmt.Errorf("normalize: release must be in (0, %g] s: %f", maxRelease, seconds)
		}

		cfg.release = seconds

		return nil
	}
}

// WithMeter injects the loudness meter used for all measurement
// passes. A nil value keeps the built-in R128 meter.
func WithMeter(m Meter) Option {
	return func(cfg *config) error {
		cfg.meter = m
		return nil
	}
}

// WithLimiter injects the peak limiter run on every candidate. A nil
// value keeps the built-in true-peak limiter.
func WithLimiter(l Limiter) Option {
	return func(cfg *config) error {
		cfg.limiter = l
		return nil
	}
}

// WithGainStage injects the gain stage applied to every candidate. A
// nil value keeps the built-in stage.
func WithGainStage(g GainStage) Option {
	return func(cfg *config) error {
		cfg.gainStage = g
		return nil
	}
}

// WithProgress registers an observer for measurement and limiting
// passes.
func WithProgress(fn ProgressFunc) Option {
	return func(cfg *config) error {
		cfg.progress = fn
		return nil
	}
}

// WithOnIteration registers an observer called after each correction
// iteration with its IterationResult.
func WithOnIteration(fn IterationFunc) Option {
	return func(cfg *config) error {
		cfg.onIteration = fn
		return nil
	}
}

func isFinite(v float64) bool {
	return !(math.IsNaN(v) || math.IsInf(v, 0))
}
