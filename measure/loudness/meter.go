package loudness

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-loudnorm/dsp/buffer"
	"github.com/cwbudde/algo-loudnorm/dsp/core"
	"github.com/cwbudde/algo-loudnorm/dsp/filter/biquad"
	"github.com/cwbudde/algo-loudnorm/dsp/filter/design"
)

const (
	// Integration window durations in seconds per BS.1770-4.
	momentaryDuration = 0.4
	shortTermDuration = 3.0

	// Gating thresholds. The absolute gate is in LUFS, the relative
	// gate in LU below the ungated level.
	absoluteGateLUFS = -70.0
	relativeGateLU   = -10.0

	// Gating blocks overlap by 75%, giving one block every 100 ms.
	blockStepFactor = 0.25

	// Rear surround channels carry a ~+1.5 dB weight in the mean
	// square sum.
	surroundWeight = 1.41
)

// FloorLUFS is reported when there is no measurable signal energy.
const FloorLUFS = -120.0

// BlockMeasurement is one per-block observation emitted by
// ProcessBuffer, taken every gating step (100 ms at the default
// overlap).
type BlockMeasurement struct {
	Index     int
	Momentary float64 // LUFS over the trailing 400 ms
	ShortTerm float64 // LUFS over the trailing 3 s
}

// Meter measures loudness according to EBU R128 / ITU-R BS.1770-4.
//
// A Meter runs explicit measurement sessions so a single instance can
// be reused across passes without carrying state over:
//
//	err := meter.Prepare(sampleRate, frames)
//	meter.StartIntegration()
//	blocks, err := meter.ProcessBuffer(ctx, buf, onProgress)
//	meter.StopIntegration()
//	lufs := meter.Integrated()
//
// Momentary, ShortTerm and SamplePeaks remain readable after the pass
// until the next Prepare or Reset.
type Meter struct {
	sampleRate float64
	channels   int

	// kweight holds one K-weighting cascade per channel.
	kweight []*biquad.Chain

	// weights holds the per-channel gating weights. Rear surround
	// channels weigh 1.41, the LFE channel of a 5.1 layout weighs
	// zero.
	weights []float64

	// Circular buffers of squared K-weighted samples per channel,
	// with running sums for O(1) window updates.
	momWindowSamples   int
	shortWindowSamples int
	momHistory         [][]float64
	shortHistory       [][]float64
	momWriteIdx        int
	shortWriteIdx      int
	momRunningSums     []float64
	shortRunningSums   []float64

	integrationRunning bool
	totalSamples       int64
	totalFrames        int
	blockSamplesStep   int
	samplesSinceStep   int

	// blocks holds the weighted mean square of every gating block
	// collected while integration is running.
	blocks []float64

	samplePeak []float64
	frame      []float64
}

// NewMeter creates a loudness meter with the given options.
func NewMeter(opts ...MeterOption) *Meter {
	cfg := ApplyMeterOptions(opts...)

	meter := &Meter{
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
	}

	meter.reconfigure()

	return meter
}

func (m *Meter) reconfigure() {
	m.kweight = make([]*biquad.Chain, m.channels)
	m.weights = make([]float64, m.channels)

	for i := range m.channels {
		m.kweight[i] = design.KWeighting(m.sampleRate)
		m.weights[i] = channelWeight(i, m.channels)
	}

	m.momWindowSamples = max(int(math.Round(momentaryDuration*m.sampleRate)), 1)
	m.shortWindowSamples = max(int(math.Round(shortTermDuration*m.sampleRate)), 1)

	m.momHistory = make([][]float64, m.channels)
	m.shortHistory = make([][]float64, m.channels)

	for i := range m.channels {
		m.momHistory[i] = make([]float64, m.momWindowSamples)
		m.shortHistory[i] = make([]float64, m.shortWindowSamples)
	}

	m.momRunningSums = make([]float64, m.channels)
	m.shortRunningSums = make([]float64, m.channels)
	m.samplePeak = make([]float64, m.channels)
	m.frame = make([]float64, m.channels)

	m.blockSamplesStep = max(int(math.Round(momentaryDuration*blockStepFactor*m.sampleRate)), 1)

	m.Reset()
}

// channelWeight returns the BS.1770 gating weight for a channel index
// in the given layout. Layouts up to four channels weigh all channels
// equally; five channels are taken as L R C Ls Rs and six as the 5.1
// order L R C LFE Ls Rs.
func channelWeight(index, channels int) float64 {
	switch {
	case channels == 6 && index == 3:
		return 0
	case channels == 6 && index >= 4:
		return surroundWeight
	case channels == 5 && index >= 3:
		return surroundWeight
	default:
		return 1
	}
}

// Prepare resets the meter and sizes the next measurement session.
// totalFrames is used for progress reporting during ProcessBuffer; pass
// zero when the length is unknown.
func (m *Meter) Prepare(sampleRate float64, totalFrames int) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("loudness meter sample rate must be positive and finite: %f", sampleRate)
	}

	if totalFrames < 0 {
		return fmt.Errorf("loudness meter total frames must be non-negative: %d", totalFrames)
	}

	if sampleRate != m.sampleRate {
		m.sampleRate = sampleRate
		m.reconfigure()
	} else {
		m.Reset()
	}

	m.totalFrames = totalFrames

	return nil
}

// Reset clears all filter, window and integration state.
func (m *Meter) Reset() {
	for i := range m.channels {
		m.kweight[i].Reset()

		clear(m.momHistory[i])
		clear(m.shortHistory[i])

		m.momRunningSums[i] = 0
		m.shortRunningSums[i] = 0
		m.samplePeak[i] = 0
	}

	m.momWriteIdx = 0
	m.shortWriteIdx = 0
	m.totalSamples = 0
	m.samplesSinceStep = 0
	m.integrationRunning = false
	m.blocks = nil
}

// StartIntegration begins collecting gating blocks for the integrated
// loudness measurement.
func (m *Meter) StartIntegration() {
	m.integrationRunning = true
	m.samplesSinceStep = 0
}

// StopIntegration stops collecting gating blocks. Integrated remains
// readable afterwards.
func (m *Meter) StopIntegration() {
	m.integrationRunning = false
}

// ProcessSample feeds one frame of samples, one value per channel.
// Frames with fewer values than the configured channel count are
// ignored.
func (m *Meter) ProcessSample(samples []float64) {
	if len(samples) < m.channels {
		return
	}

	for i := range m.channels {
		if a := math.Abs(samples[i]); a > m.samplePeak[i] {
			m.samplePeak[i] = a
		}

		val := m.kweight[i].ProcessSample(samples[i])
		sq := val * val

		m.momRunningSums[i] += sq - m.momHistory[i][m.momWriteIdx]
		m.momHistory[i][m.momWriteIdx] = sq

		if m.momRunningSums[i] < 0 {
			m.momRunningSums[i] = 0
		}

		m.shortRunningSums[i] += sq - m.shortHistory[i][m.shortWriteIdx]
		m.shortHistory[i][m.shortWriteIdx] = sq

		if m.shortRunningSums[i] < 0 {
			m.shortRunningSums[i] = 0
		}
	}

	m.momWriteIdx = (m.momWriteIdx + 1) % m.momWindowSamples
	m.shortWriteIdx = (m.shortWriteIdx + 1) % m.shortWindowSamples

	m.totalSamples++

	if !m.integrationRunning {
		return
	}

	m.samplesSinceStep++
	if m.samplesSinceStep < m.blockSamplesStep {
		return
	}

	m.samplesSinceStep = 0

	// Gating blocks span a full 400 ms window; the first block is not
	// emitted before the window has filled once.
	if m.totalSamples >= int64(m.momWindowSamples) {
		m.blocks = append(m.blocks, m.weightedMeanSquare(m.momRunningSums, m.momWindowSamples))
	}
}

// ProcessBuffer feeds an entire buffer through the meter and returns
// one BlockMeasurement per gating step. The context is checked and
// onProgress (which may be nil) is invoked at every step boundary, and
// once more after the final frame.
func (m *Meter) ProcessBuffer(ctx context.Context, buf *buffer.SampleBuffer, onProgress core.ProgressFunc) ([]BlockMeasurement, error) {
	if buf == nil || buf.Channels() == 0 {
		return nil, errors.New("loudness meter buffer must not be empty")
	}

	if buf.Channels() != m.channels {
		return nil, fmt.Errorf("loudness meter configured for %d channels, buffer has %d", m.channels, buf.Channels())
	}

	frames := buf.Frames()

	total := m.totalFrames
	if total <= 0 {
		total = frames
	}

	var blocks []BlockMeasurement

	sinceStep := 0

	for i := range frames {
		for c := range m.channels {
			m.frame[c] = buf.Channel(c)[i]
		}

		m.ProcessSample(m.frame)

		sinceStep++
		if sinceStep < m.blockSamplesStep {
			continue
		}

		sinceStep = 0

		if err := ctx.Err(); err != nil {
			return blocks, fmt.Errorf("loudness meter: %w", err)
		}

		blocks = append(blocks, BlockMeasurement{
			Index:     len(blocks),
			Momentary: m.Momentary(),
			ShortTerm: m.ShortTerm(),
		})

		if onProgress != nil {
			onProgress(min(i+1, total), total)
		}
	}

	if onProgress != nil {
		onProgress(total, total)
	}

	return blocks, nil
}

// Momentary returns the loudness of the trailing 400 ms window in
// LUFS.
func (m *Meter) Momentary() float64 {
	return toLUFS(m.weightedMeanSquare(m.momRunningSums, m.momWindowSamples))
}

// ShortTerm returns the loudness of the trailing 3 s window in LUFS.
func (m *Meter) ShortTerm() float64 {
	return toLUFS(m.weightedMeanSquare(m.shortRunningSums, m.shortWindowSamples))
}

// Integrated returns the gated integrated loudness in LUFS across all
// gating blocks collected since StartIntegration. It returns the -120
// floor when no block survives the gates.
func (m *Meter) Integrated() float64 {
	if len(m.blocks) == 0 {
		return FloorLUFS
	}

	// First stage: absolute gate at -70 LUFS.
	absSum := 0.0
	absCount := 0

	for _, power := range m.blocks {
		if toLUFS(power) > absoluteGateLUFS {
			absSum += power
			absCount++
		}
	}

	if absCount == 0 {
		return FloorLUFS
	}

	// Second stage: relative gate 10 LU below the absolute-gated
	// level.
	relGate := toLUFS(absSum/float64(absCount)) + relativeGateLU

	relSum := 0.0
	relCount := 0

	for _, power := range m.blocks {
		if lufs := toLUFS(power); lufs > absoluteGateLUFS && lufs > relGate {
			relSum += power
			relCount++
		}
	}

	if relCount == 0 {
		return FloorLUFS
	}

	return toLUFS(relSum / float64(relCount))
}

// SamplePeaks returns the maximum absolute raw sample value per channel
// observed since the last Prepare or Reset.
func (m *Meter) SamplePeaks() []float64 {
	peaks := make([]float64, m.channels)
	copy(peaks, m.samplePeak)

	return peaks
}

// SampleRate returns the sample rate the meter is configured for.
func (m *Meter) SampleRate() float64 {
	return m.sampleRate
}

// Channels returns the channel count the meter is configured for.
func (m *Meter) Channels() int {
	return m.channels
}

func (m *Meter) weightedMeanSquare(sums []float64, window int) float64 {
	total := 0.0
	for i, sum := range sums {
		total += m.weights[i] * sum / float64(window)
	}

	return total
}

// toLUFS converts a weighted mean square power to LUFS using the
// -0.691 dB offset from BS.1770-4.
func toLUFS(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return FloorLUFS
	}

	return -0.691 + 10.0*math.Log10(meanSquare)
}
