package spectral

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-loudnorm/dsp/buffer"
	"github.com/cwbudde/algo-loudnorm/dsp/window"
)

const (
	defaultFFTSize  = 8192
	defaultRolloff  = 0.85
	analysisLowerHz = 20.0
	energyFloorDB   = -120.0
)

// Canonical octave band edges; the top band is capped at Nyquist.
var bandEdges = []float64{20, 63, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

// Config holds spectral analysis parameters.
type Config struct {
	SampleRate float64
	// FFTSize is rounded up to a power of two; zero selects 8192.
	FFTSize    int
	WindowType window.Type
	// RolloffFraction is the cumulative energy fraction for the
	// rolloff frequency; zero selects 0.85.
	RolloffFraction float64
}

// Band is one octave band of the analysis range.
type Band struct {
	LowHz    float64
	HighHz   float64
	Energy   float64 // fraction of total analysed energy
	EnergyDB float64
}

// Summary describes the spectral shape of a buffer.
type Summary struct {
	// CentroidHz is the power-weighted mean frequency.
	CentroidHz float64
	// RolloffHz is the frequency below which the configured fraction
	// of the energy lies.
	RolloffHz float64
	// Flatness is the geometric over arithmetic mean of the power
	// spectrum: near 0 for tonal content, near 1 for noise.
	Flatness float64
	Bands    []Band
}

// Analyzer computes spectral summaries of sample buffers.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer for the given configuration.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return nil, fmt.Errorf("spectral analyzer sample rate must be positive and finite: %f", cfg.SampleRate)
	}

	if cfg.FFTSize <= 0 {
		cfg.FFTSize = defaultFFTSize
	}

	cfg.FFTSize = nextPowerOf2(cfg.FFTSize)

	if cfg.WindowType == 0 {
		cfg.WindowType = window.TypeHann
	}

	if cfg.RolloffFraction <= 0 || cfg.RolloffFraction >= 1 {
		cfg.RolloffFraction = defaultRolloff
	}

	return &Analyzer{cfg: cfg}, nil
}

// Analyze is a one-shot spectral analysis of a buffer.
func Analyze(buf *buffer.SampleBuffer, cfg Config) (Summary, error) {
	a, err := NewAnalyzer(cfg)
	if err != nil {
		return Summary{}, err
	}

	return a.AnalyzeBuffer(buf)
}

// AnalyzeBuffer mixes the buffer down to mono, windows a centered
// segment, and summarizes the resulting power spectrum.
func (a *Analyzer) AnalyzeBuffer(buf *buffer.SampleBuffer) (Summary, error) {
	if buf == nil || buf.Channels() == 0 || buf.Frames() == 0 {
		return Summary{}, errors.New("spectral analyzer buffer must not be empty")
	}

	cfg := a.cfg
	fftSize := cfg.FFTSize

	segLen := min(buf.Frames(), fftSize)
	offset := (buf.Frames() - segLen) / 2

	mono := make([]float64, segLen)
	copy(mono, buf.Channel(0)[offset:offset+segLen])

	for c := 1; c < buf.Channels(); c++ {
		vecmath.AddBlockInPlace(mono, buf.Channel(c)[offset:offset+segLen])
	}

	if buf.Channels() > 1 {
		vecmath.ScaleBlockInPlace(mono, 1.0/float64(buf.Channels()))
	}

	coeffs := window.Generate(cfg.WindowType, segLen)
	if err := window.ApplyCoefficientsInPlace(mono, coeffs); err != nil {
		return Summary{}, fmt.Errorf("spectral analyzer window: %w", err)
	}

	inData := make([]complex128, fftSize)
	for i, v := range mono {
		inData[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Summary{}, fmt.Errorf("spectral analyzer fft plan: %w", err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, inData); err != nil {
		return Summary{}, fmt.Errorf("spectral analyzer fft: %w", err)
	}

	binCount := fftSize/2 + 1

	magSquared := make([]float64, binCount)
	for i := range magSquared {
		x := out[i]
		magSquared[i] = real(x)*real(x) + imag(x)*imag(x)
	}

	return a.summarize(magSquared), nil
}

func (a *Analyzer) summarize(magSquared []float64) Summary {
	binHz := a.cfg.SampleRate / float64(a.cfg.FFTSize)
	nyquist := a.cfg.SampleRate / 2

	maxBin := len(magSquared) - 1
	lowerBin := max(int(math.Round(analysisLowerHz/binHz)), 1)

	summary := Summary{Bands: emptyBands(nyquist)}
	if lowerBin > maxBin {
		return summary
	}

	total := vecmath.Sum(magSquared[lowerBin:])
	if total <= 0 {
		return summary
	}

	// Centroid, band assignment and flatness share one pass over the
	// analysis range. Each bin belongs to the band containing its
	// center frequency, so no energy is counted twice.
	weighted := 0.0
	logSum := 0.0
	logCount := 0
	bandSums := make([]float64, len(summary.Bands))

	for bin := lowerBin; bin <= maxBin; bin++ {
		power := magSquared[bin]
		freq := float64(bin) * binHz

		weighted += freq * power

		if power > 0 {
			logSum += math.Log(power)
			logCount++
		}

		if idx := bandIndex(summary.Bands, freq); idx >= 0 {
			bandSums[idx] += power
		}
	}

	summary.CentroidHz = weighted / total

	binsInRange := maxBin - lowerBin + 1
	if logCount == binsInRange && binsInRange > 0 {
		geometric := math.Exp(logSum / float64(binsInRange))
		summary.Flatness = geometric / (total / float64(binsInRange))
	}

	cumulative := 0.0
	target := a.cfg.RolloffFraction * total

	for bin := lowerBin; bin <= maxBin; bin++ {
		cumulative += magSquared[bin]
		if cumulative >= target {
			summary.RolloffHz = float64(bin) * binHz
			break
		}
	}

	for i := range summary.Bands {
		fraction := bandSums[i] / total
		summary.Bands[i].Energy = fraction
		summary.Bands[i].EnergyDB = fractionToDB(fraction)
	}

	return summary
}

func emptyBands(nyquist float64) []Band {
	bands := make([]Band, 0, len(bandEdges))

	for i, low := range bandEdges {
		high := nyquist
		if i+1 < len(bandEdges) {
			high = min(bandEdges[i+1], nyquist)
		}

		if low >= nyquist {
			break
		}

		bands = append(bands, Band{LowHz: low, HighHz: high, EnergyDB: energyFloorDB})
	}

	return bands
}

func bandIndex(bands []Band, freq float64) int {
	for i, b := range bands {
		if freq >= b.LowHz && freq < b.HighHz {
			return i
		}
	}

	// The Nyquist bin itself lands on the top band's upper edge.
	if n := len(bands); n > 0 && freq == bands[n-1].HighHz {
		return n - 1
	}

	return -1
}

func fractionToDB(fraction float64) float64 {
	if fraction <= 0 {
		return energyFloorDB
	}

	return max(10*math.Log10(fraction), energyFloorDB)
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
