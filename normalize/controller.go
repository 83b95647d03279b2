package normalize

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-loudnorm/dsp/buffer"
	"github.com/cwbudde/algo-loudnorm/dsp/core"
	"github.com/cwbudde/algo-loudnorm/dsp/effects/dynamics"
	"github.com/cwbudde/algo-loudnorm/dsp/gain"
	"github.com/cwbudde/algo-loudnorm/measure/loudness"
)

// ErrNotConverged is returned by Normalize when the measured loudness
// has not settled within tolerance after the configured maximum number
// of iterations. The accompanying Result still carries the best
// candidate seen, so callers decide whether to keep or discard it.
var ErrNotConverged = errors.New("normalize: loudness did not converge")

// Meter measures the integrated loudness of a sample buffer. One
// measurement pass brackets a full ProcessBuffer call between
// StartIntegration and StopIntegration, with Prepare resetting all
// state beforehand so a single instance is reusable across passes.
// *loudness.Meter satisfies this interface.
type Meter interface {
	Prepare(sampleRate float64, totalFrames int) error
	StartIntegration()
	StopIntegration()
	ProcessBuffer(ctx context.Context, buf *buffer.SampleBuffer, onProgress core.ProgressFunc) ([]loudness.BlockMeasurement, error)
	Integrated() float64
}

// Limiter bounds the true peak of a buffer to ceilingDB in place. The
// controller relies only on the postcondition that no true peak
// exceeds the ceiling after the call.
type Limiter interface {
	Limit(ctx context.Context, buf *buffer.SampleBuffer, ceilingDB, sampleRate float64, onProgress core.ProgressFunc) error
}

// GainStage scales every sample of a buffer by a decibel gain in
// place.
type GainStage interface {
	Apply(buf *buffer.SampleBuffer, gainDB float64)
}

// Result describes the outcome of one Normalize call.
type Result struct {
	// Buffer holds the normalized audio: the converged candidate, the
	// best candidate on ErrNotConverged, or the untouched input when
	// no correction was needed. The caller owns it.
	Buffer *buffer.SampleBuffer

	Converged  bool
	Iterations int     // correction iterations actually run
	GainDB     float64 // cumulative gain applied to Buffer

	InputLoudness  float64 // integrated loudness of the input, LUFS
	OutputLoudness float64 // integrated loudness of Buffer, LUFS
	Residual       float64 // |target - OutputLoudness| at termination, LU
}

// Controller runs the loudness convergence loop: measure, apply gain,
// limit, re-measure, fold the residual into the gain, repeat. It holds
// per-call scratch state and is not safe for concurrent use.
type Controller struct {
	target        float64
	tolerance     float64
	ceilingDB     float64
	maxIterations int
	maxGainDB     float64

	meter     Meter
	limiter   Limiter
	gainStage GainStage

	progress    ProgressFunc
	onIteration IterationFunc

	defaultMeter *loudness.Meter
	pool         *buffer.Pool
}

// New creates a Controller. Without options it normalizes to -23 LUFS
// within 0.5 LU under a -1 dBTP true-peak ceiling and gives up after
// 10 iterations.
func New(opts ...Option) (*Controller, error) {
	cfg := defaultConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	ctrl := &Controller{
		target:        cfg.target,
		tolerance:     cfg.tolerance,
		ceilingDB:     cfg.ceilingDB,
		maxIterations: cfg.maxIterations,
		maxGainDB:     cfg.maxGainDB,
		meter:         cfg.meter,
		limiter:       cfg.limiter,
		gainStage:     cfg.gainStage,
		progress:      cfg.progress,
		onIteration:   cfg.onIteration,
		pool:          buffer.NewPool(),
	}

	if ctrl.limiter == nil {
		ctrl.limiter = &truePeakLimiter{
			lim:       dynamics.NewTruePeakLimiter(),
			lookahead: cfg.lookahead,
			release:   cfg.release,
		}
	}

	if ctrl.gainStage == nil {
		ctrl.gainStage = builtinGainStage{}
	}

	return ctrl, nil
}

// Normalize measures buf, then iterates gain, limiting and
// re-measurement until the integrated loudness lands within tolerance
// of the target. The input buffer is never mutated. When the input is
// already within tolerance, Result.Buffer is the input itself and no
// limiting takes place; otherwise the Result owns a separate buffer.
//
// On cancellation or collaborator failure the Result is nil. The one
// exception is ErrNotConverged, which arrives together with a
// populated Result so callers can still use the best candidate.
func (c *Controller) Normalize(ctx context.Context, buf *buffer.SampleBuffer, sampleRate float64) (*Result, error) {
	if buf == nil || buf.Channels() == 0 || buf.Frames() == 0 {
		return nil, errors.New("normalize: buffer must not be empty")
	}

	if sampleRate <= 0 || !isFinite(sampleRate) {
		return nil, fmt.Errorf("normalize: sample rate must be positive and finite: %f", sampleRate)
	}

	meter := c.meterFor(buf)

	input, err := c.measure(ctx, meter, buf, sampleRate, PhaseMeasure, 0)
	if err != nil {
		return nil, err
	}

	if residual := math.Abs(c.target - input); residual <= c.tolerance {
		return &Result{
			Buffer:         buf,
			Converged:      true,
			InputLoudness:  input,
			OutputLoudness: input,
			Residual:       residual,
		}, nil
	}

	gainDB := c.clampGain(c.target - input)

	var (
		best         *buffer.SampleBuffer
		bestGain     float64
		bestLoudness float64
		bestResidual = math.Inf(1)
	)

	for iteration := 1; iteration <= c.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			c.recycle(best)
			return nil, fmt.Errorf("normalize: %w", err)
		}

		candidate := c.pool.GetClone(buf)

		c.gainStage.Apply(candidate, gainDB)

		// The limiter runs on every candidate, also when the gain is
		// zero or negative: the ceiling holds regardless of direction.
		err := c.limiter.Limit(ctx, candidate, c.ceilingDB, sampleRate, c.progressFor(PhaseLimit, iteration))
		if err != nil {
			c.recycle(candidate)
			c.recycle(best)

			return nil, fmt.Errorf("normalize: limiter: %w", err)
		}

		measured, err := c.measure(ctx, meter, candidate, sampleRate, PhaseVerify, iteration)
		if err != nil {
			c.recycle(candidate)
			c.recycle(best)

			return nil, err
		}

		if c.onIteration != nil {
			c.onIteration(IterationResult{Iteration: iteration, GainDB: gainDB, Loudness: measured})
		}

		residual := c.target - measured

		if math.Abs(residual) <= c.tolerance {
			c.recycle(best)

			return &Result{
				Buffer:         candidate,
				Converged:      true,
				Iterations:     iteration,
				GainDB:         gainDB,
				InputLoudness:  input,
				OutputLoudness: measured,
				Residual:       math.Abs(residual),
			}, nil
		}

		if math.Abs(residual) < bestResidual {
			c.recycle(best)

			best = candidate
			bestGain = gainDB
			bestLoudness = measured
			bestResidual = math.Abs(residual)
		} else {
			c.recycle(candidate)
		}

		gainDB = c.clampGain(gainDB + residual)
	}

	res := &Result{
		Buffer:         best,
		Converged:      false,
		Iterations:     c.maxIterations,
		GainDB:         bestGain,
		InputLoudness:  input,
		OutputLoudness: bestLoudness,
		Residual:       bestResidual,
	}

	return res, fmt.Errorf("%w after %d iterations (residual %.2f LU)", ErrNotConverged, c.maxIterations, bestResidual)
}

// measure runs one bracketed measurement pass over buf and returns the
// integrated loudness.
func (c *Controller) measure(ctx context.Context, m Meter, buf *buffer.SampleBuffer,
	sampleRate float64, phase Phase, iteration int,
) (float64, error) {
	if err := m.Prepare(sampleRate, buf.Frames()); err != nil {
		return 0, fmt.Errorf("normalize: meter prepare: %w", err)
	}

	m.StartIntegration()
	_, err := m.ProcessBuffer(ctx, buf, c.progressFor(phase, iteration))
	m.StopIntegration()

	if err != nil {
		return 0, fmt.Errorf("normalize: meter: %w", err)
	}

	return m.Integrated(), nil
}

// meterFor returns the injected meter, or a lazily built default sized
// for the buffer's channel layout. The default is rebuilt when the
// channel count changes between calls.
func (c *Controller) meterFor(buf *buffer.SampleBuffer) Meter {
	if c.meter != nil {
		return c.meter
	}

	if c.defaultMeter == nil || c.defaultMeter.Channels() != buf.Channels() {
		c.defaultMeter = loudness.NewMeter(loudness.WithChannels(buf.Channels()))
	}

	return c.defaultMeter
}

// clampGain bounds the cumulative gain so floor measurements of silent
// input cannot request unbounded amplification.
func (c *Controller) clampGain(gainDB float64) float64 {
	return core.Clamp(gainDB, -c.maxGainDB, c.maxGainDB)
}

func (c *Controller) recycle(b *buffer.SampleBuffer) {
	if b != nil {
		c.pool.Put(b)
	}
}

func (c *Controller) progressFor(phase Phase, iteration int) core.ProgressFunc {
	if c.progress == nil {
		return nil
	}

	return func(current, total int) {
		c.progress(phase, iteration, current, total)
	}
}

// truePeakLimiter adapts dynamics.TruePeakLimiter to the Limiter
// interface, deriving the release pole from the configured release
// time at each call's sample rate.
type truePeakLimiter struct {
	lim       *dynamics.TruePeakLimiter
	lookahead float64
	release   float64
}

func (l *truePeakLimiter) Limit(ctx context.Context, buf *buffer.SampleBuffer,
	ceilingDB, sampleRate float64, onProgress core.ProgressFunc,
) error {
	coeff := dynamics.ReleaseCoefficient(l.release, sampleRate)

	return l.lim.ProcessBuffer(ctx, buf, ceilingDB, sampleRate, l.lookahead, coeff, onProgress, nil)
}

// builtinGainStage adapts the gain package to the GainStage interface.
type builtinGainStage struct{}

func (builtinGainStage) Apply(buf *buffer.SampleBuffer, gainDB float64) {
	gain.Apply(buf, gainDB)
}
