package dynamics

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-loudnorm/dsp/buffer"
	"github.com/cwbudde/algo-loudnorm/dsp/core"
	"github.com/cwbudde/algo-loudnorm/measure/truepeak"
)

const (
	minLimiterCeilingDB        = -24.0
	maxLimiterCeilingDB        = 0.0
	maxLimiterLookaheadSeconds = 0.2

	// Attack settles to within 2^-8 of the detected level inside the
	// lookahead window.
	attackHalfLives = 8.0

	limiterProgressStride = 4096
)

// EnvelopeFunc observes the limiter gain envelope, one call per frame.
type EnvelopeFunc func(frame int, gain float64)

// TruePeakLimiter bounds the true peak of a buffer to a ceiling using
// lookahead and a release envelope. Detection is max-linked across
// channels so the channel balance is preserved. An instance only carries
// reusable scratch state; all pass parameters are supplied per call.
type TruePeakLimiter struct {
	det   *truepeak.Detector
	frame []float64
}

// NewTruePeakLimiter creates a limiter ready for ProcessBuffer calls.
func NewTruePeakLimiter() *TruePeakLimiter {
	return &TruePeakLimiter{}
}

// ReleaseCoefficient converts a release time to the per-sample envelope
// pole consumed by ProcessBuffer. Longer times give values closer to 1.
// Non-positive inputs yield 0, an instant release.
func ReleaseCoefficient(releaseSeconds, sampleRate float64) float64 {
	if releaseSeconds <= 0 || sampleRate <= 0 {
		return 0
	}

	return math.Exp(-math.Ln2 / (releaseSeconds * sampleRate))
}

// ProcessBuffer enforces ceilingDB on buf in place. The true-peak level
// is detected with 4x oversampling a lookahead window ahead of the
// program path, so gain reduction is already in place when a peak
// arrives. The release envelope recovers with the supplied per-sample
// coefficient in [0, 1). A final sample clamp at the ceiling guarantees
// the sample-domain bound even where the envelope undershoots.
//
// onProgress and onEnvelope may be nil. ctx is checked between strides;
// on cancellation the buffer is left partially processed.
func (l *TruePeakLimiter) ProcessBuffer(ctx context.Context, buf *buffer.SampleBuffer,
	ceilingDB, sampleRate, lookaheadSeconds, releaseCoefficient float64,
	onProgress core.ProgressFunc, onEnvelope EnvelopeFunc,
) error {
	if buf == nil || buf.Channels() == 0 || buf.Frames() == 0 {
		return errors.New("true peak limiter buffer must not be empty")
	}

	if err := validateSampleRate(sampleRate); err != nil {
		return fmt.Errorf("true peak limiter %w", err)
	}

	if ceilingDB < minLimiterCeilingDB || ceilingDB > maxLimiterCeilingDB || !isFinite(ceilingDB) {
		return fmt.Errorf("true peak limiter ceiling must be in [%f, %f]: %f",
			minLimiterCeilingDB, maxLimiterCeilingDB, ceilingDB)
	}

	if lookaheadSeconds < 0 || lookaheadSeconds > maxLimiterLookaheadSeconds || !isFinite(lookaheadSeconds) {
		return fmt.Errorf("true peak limiter lookahead must be in [%f, %f]: %f",
			0.0, maxLimiterLookaheadSeconds, lookaheadSeconds)
	}

	if releaseCoefficient < 0 || releaseCoefficient >= 1 || !isFinite(releaseCoefficient) {
		return fmt.Errorf("true peak limiter release coefficient must be in [0, 1): %f",
			releaseCoefficient)
	}

	channels := buf.Channels()
	frames := buf.Frames()

	if l.det == nil || l.det.Channels() != channels {
		det, err := truepeak.NewDetector(channels)
		if err != nil {
			return fmt.Errorf("true peak limiter detector init: %w", err)
		}

		l.det = det
	} else {
		l.det.Reset()
	}

	l.frame = core.EnsureLen(l.frame, channels)
	frame := l.frame

	delay := int(math.Round(lookaheadSeconds * sampleRate))
	ceilingLin := core.DBToLinear(ceilingDB)

	attackCoeff := 1.0
	if delay > 0 {
		attackCoeff = 1.0 - math.Exp(-attackHalfLives*math.Ln2/float64(delay))
	}

	envLevel := 0.0

	for i := range frames + delay {
		if i%limiterProgressStride == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("true peak limiter: %w", err)
			}

			if onProgress != nil {
				onProgress(min(i, frames), frames)
			}
		}

		// Detection runs delay frames ahead of the write position; the
		// tail past the input decays through the release.
		det := 0.0
		if i < frames {
			for c := range channels {
				frame[c] = buf.Channel(c)[i]
			}

			det = l.det.ProcessFrame(frame)
		}

		if det > envLevel {
			envLevel += (det - envLevel) * attackCoeff
		} else {
			envLevel = det + (envLevel-det)*releaseCoefficient
		}

		w := i - delay
		if w < 0 {
			continue
		}

		g := 1.0
		if envLevel > ceilingLin {
			g = ceilingLin / envLevel
		}

		for c := range channels {
			ch := buf.Channel(c)
			ch[w] = core.Clamp(ch[w]*g, -ceilingLin, ceilingLin)
		}

		if onEnvelope != nil {
			onEnvelope(w, g)
		}
	}

	if onProgress != nil {
		onProgress(frames, frames)
	}

	return nil
}

func validateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !isFinite(sampleRate) {
		return fmt.Errorf("sample rate must be positive and finite: %f", sampleRate)
	}

	return nil
}

func isFinite(v float64) bool {
	return !(math.IsNaN(v) || math.IsInf(v, 0))
}
