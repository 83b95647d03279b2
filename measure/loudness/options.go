package loudness

import (
	"github.com/cwbudde/algo-loudnorm/dsp/core"
)

// MeterConfig holds the configuration for a loudness meter.
type MeterConfig struct {
	core.ProcessorConfig

	// Channels is the number of audio channels to meter.
	Channels int
}

// MeterOption configures a loudness meter.
type MeterOption func(*MeterConfig)

// DefaultMeterConfig returns the default meter configuration: 48 kHz
// stereo.
func DefaultMeterConfig() MeterConfig {
	return MeterConfig{
		ProcessorConfig: core.DefaultProcessorConfig(),
		Channels:        2,
	}
}

// WithSampleRate sets the sample rate in Hz.
func WithSampleRate(sampleRate float64) MeterOption {
	return func(cfg *MeterConfig) {
		cfg.SampleRate = sampleRate
	}
}

// WithChannels sets the number of channels.
func WithChannels(channels int) MeterOption {
	return func(cfg *MeterConfig) {
		cfg.Channels = channels
	}
}

// ApplyMeterOptions applies the given options to the default
// configuration.
func ApplyMeterOptions(opts ...MeterOption) MeterConfig {
	cfg := DefaultMeterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.Channels <= 0 {
		cfg.Channels = DefaultMeterConfig().Channels
	}

	return cfg
}
