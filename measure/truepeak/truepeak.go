package truepeak

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-loudnorm/dsp/buffer"
	"github.com/cwbudde/algo-loudnorm/dsp/window"
)

const (
	oversample   = 4 // oversampling factor per ITU-R BS.1770 Annex 2
	tapsPerPhase = 12
	totalTaps    = oversample * tapsPerPhase

	floorDB = -120.0
)

// Interpolation filter: windowed sinc with a Kaiser window (beta = 5),
// lowpass at the original Nyquist, split into one sub-filter per phase.
var polyphaseCoeffs [oversample][tapsPerPhase]float64

func init() {
	const beta = 5.0

	kaiser := window.Generate(window.TypeKaiser, totalTaps, window.WithAlpha(beta))
	center := float64(totalTaps-1) / 2.0

	for phase := range oversample {
		for tap := range tapsPerPhase {
			idx := tap*oversample + phase
			x := float64(idx) - center

			sinc := 1.0
			if math.Abs(x) >= 1e-10 {
				arg := math.Pi * x / oversample
				sinc = math.Sin(arg) / arg
			}

			polyphaseCoeffs[phase][tap] = sinc * kaiser[idx] * oversample
		}
	}

	// Normalize each phase to unity DC gain.
	for phase := range oversample {
		sum := 0.0
		for tap := range tapsPerPhase {
			sum += polyphaseCoeffs[phase][tap]
		}

		for tap := range tapsPerPhase {
			polyphaseCoeffs[phase][tap] /= sum
		}
	}
}

// Detector estimates inter-sample peaks by 4x polyphase interpolation.
// One instance tracks a fixed channel count; samples must be fed in order
// per channel.
type Detector struct {
	history    [][]float64
	truePeak   float64
	samplePeak float64
	overshoots uint64
}

// NewDetector creates a detector for the given channel count.
func NewDetector(channels int) (*Detector, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("true peak detector channels must be positive: %d", channels)
	}

	h := make([][]float64, channels)
	for i := range h {
		h[i] = make([]float64, tapsPerPhase)
	}

	return &Detector{history: h}, nil
}

// Channels returns the channel count the detector was built for.
func (d *Detector) Channels() int { return len(d.history) }

// ProcessSample pushes one sample for the given channel and returns the
// absolute oversampled peak for this step. The raw sample joins the
// maximum because the even-length filter has no identity phase.
func (d *Detector) ProcessSample(channel int, sample float64) float64 {
	h := d.history[channel]
	copy(h, h[1:])
	h[tapsPerPhase-1] = sample

	if a := math.Abs(sample); a > d.samplePeak {
		d.samplePeak = a
	}

	stepPeak := math.Abs(sample)

	for phase := range oversample {
		interp := 0.0
		for tap := range tapsPerPhase {
			interp += h[tap] * polyphaseCoeffs[phase][tap]
		}

		a := math.Abs(interp)
		if a > stepPeak {
			stepPeak = a
		}

		if a > 1.0 {
			d.overshoots++
		}
	}

	if stepPeak > d.truePeak {
		d.truePeak = stepPeak
	}

	return stepPeak
}

// ProcessFrame pushes one sample per channel and returns the largest
// oversampled peak across channels for this step. Extra channels beyond
// the frame length keep their previous state.
func (d *Detector) ProcessFrame(frame []float64) float64 {
	peak := 0.0

	n := min(len(frame), len(d.history))
	for c := range n {
		if p := d.ProcessSample(c, frame[c]); p > peak {
			peak = p
		}
	}

	return peak
}

// TruePeak returns the largest absolute oversampled value seen since Reset.
func (d *Detector) TruePeak() float64 { return d.truePeak }

// SamplePeak returns the largest absolute raw sample seen since Reset.
func (d *Detector) SamplePeak() float64 { return d.samplePeak }

// TruePeakDB returns the true peak in dBTP. Silence reports the floor.
func (d *Detector) TruePeakDB() float64 { return toDB(d.truePeak) }

// SamplePeakDB returns the sample peak in dBFS. Silence reports the floor.
func (d *Detector) SamplePeakDB() float64 { return toDB(d.samplePeak) }

// Overshoots returns how many oversampled values exceeded full scale.
func (d *Detector) Overshoots() uint64 { return d.overshoots }

// Reset clears filter history and peak state.
func (d *Detector) Reset() {
	for i := range d.history {
		for j := range d.history[i] {
			d.history[i][j] = 0
		}
	}

	d.truePeak = 0
	d.samplePeak = 0
	d.overshoots = 0
}

func toDB(v float64) float64 {
	if v <= 0 {
		return floorDB
	}

	return 20 * math.Log10(v)
}

// Measurement summarizes the peak content of one buffer.
type Measurement struct {
	TruePeak     float64 // linear, oversampled estimate
	SamplePeak   float64 // linear
	TruePeakDB   float64 // dBTP
	SamplePeakDB float64 // dBFS
	Overshoots   uint64  // oversampled values above full scale
}

// Measure runs a fresh detector over buf and reports its peak content.
// Nil or empty buffers report the -120 dB floor.
func Measure(buf *buffer.SampleBuffer) Measurement {
	if buf == nil || buf.Channels() == 0 || buf.Frames() == 0 {
		return Measurement{TruePeakDB: floorDB, SamplePeakDB: floorDB}
	}

	d, err := NewDetector(buf.Channels())
	if err != nil {
		return Measurement{TruePeakDB: floorDB, SamplePeakDB: floorDB}
	}

	for c := range buf.Channels() {
		for _, s := range buf.Channel(c) {
			d.ProcessSample(c, s)
		}
	}

	return Measurement{
		TruePeak:     d.TruePeak(),
		SamplePeak:   d.SamplePeak(),
		TruePeakDB:   d.TruePeakDB(),
		SamplePeakDB: d.SamplePeakDB(),
		Overshoots:   d.Overshoots(),
	}
}
