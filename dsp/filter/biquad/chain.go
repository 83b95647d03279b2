package biquad

import (
	"github.com/cwbudde/algo-vecmath"
)

// Chain cascades second-order sections in series, each section
// filtering the output of the one before it. The loudness meter builds
// its K-weighting curve as such a cascade, a shelving stage feeding a
// highpass stage.
type Chain struct {
	sections []Section
	gain     float64
}

// ChainOption configures a Chain at construction time.
type ChainOption func(*chainConfig)

type chainConfig struct {
	gain float64
}

// WithGain applies a linear gain to the input ahead of the first
// section. The default is unity.
func WithGain(g float64) ChainOption {
	return func(cfg *chainConfig) { cfg.gain = g }
}

// NewChain builds a cascade with one section per coefficient set, in
// the order given.
func NewChain(coeffs []Coefficients, opts ...ChainOption) *Chain {
	cfg := chainConfig{gain: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	sections := make([]Section, len(coeffs))
	for i, co := range coeffs {
		sections[i].Coefficients = co
	}

	return &Chain{sections: sections, gain: cfg.gain}
}

// ProcessSample pushes one sample through every section in order and
// returns the cascade output.
func (c *Chain) ProcessSample(x float64) float64 {
	y := c.gain * x
	for i := range c.sections {
		y = c.sections[i].ProcessSample(y)
	}

	return y
}

// ProcessBlock filters buf in place through the whole cascade.
func (c *Chain) ProcessBlock(buf []float64) {
	if c.gain != 1 {
		vecmath.ScaleBlockInPlace(buf, c.gain)
	}

	for i := range c.sections {
		c.sections[i].ProcessBlock(buf)
	}
}

// Reset clears the delay lines of every section. Coefficients and gain
// are kept.
func (c *Chain) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}

// Gain returns the linear input gain.
func (c *Chain) Gain() float64 { return c.gain }

// NumSections returns the number of cascaded sections.
func (c *Chain) NumSections() int { return len(c.sections) }

// Section returns the i-th section, writable in place.
func (c *Chain) Section(i int) *Section {
	return &c.sections[i]
}
