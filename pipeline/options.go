package pipeline

import (
	"fmt"
	"io"

	"github.com/cwbudde/algo-loudnorm/normalize"
)

const (
	// defaultSoftwareTag identifies this encoder in the output's
	// LIST-INFO Software field.
	defaultSoftwareTag = "algo-loudnorm"

	// defaultFFmpegName is resolved against the PATH on first use.
	defaultFFmpegName = "ffmpeg"
)

type config struct {
	controller   *normalize.Controller
	bitDepth     int
	dryRun       bool
	reportWriter io.Writer
	softwareTag  string
	ffmpegPath   string
}

func defaultConfig() config {
	return config{
		softwareTag: defaultSoftwareTag,
		ffmpegPath:  defaultFFmpegName,
	}
}

// Option configures a [Processor].
type Option func(*config) error

// WithController sets the convergence controller used for
// normalization. By default a controller with default settings is
// created.
func WithController(ctl *normalize.Controller) Option {
	return func(cfg *config) error {
		if ctl == nil {
			return fmt.Errorf("pipeline: controller must not be nil")
		}

		cfg.controller = ctl

		return nil
	}
}

// WithBitDepth forces the output bit depth. Zero (the default) keeps
// the bit depth of the source file. Reducing the depth applies
// triangular dither before requantization.
func WithBitDepth(bits int) Option {
	return func(cfg *config) error {
		switch bits {
		case 0, 8, 16, 24, 32:
			cfg.bitDepth = bits
			return nil
		default:
			return fmt.Errorf("pipeline: bit depth must be 0, 8, 16, 24 or 32: %d", bits)
		}
	}
}

// WithDryRun runs analysis and normalization without writing any
// output file.
func WithDryRun(enabled bool) Option {
	return func(cfg *config) error {
		cfg.dryRun = enabled
		return nil
	}
}

// WithReportWriter sets the destination for the per-block loudness
// report. A nil writer (the default) disables the report.
func WithReportWriter(w io.Writer) Option {
	return func(cfg *config) error {
		cfg.reportWriter = w
		return nil
	}
}

// WithSoftwareTag sets the value merged into the output's Software
// metadata tag.
func WithSoftwareTag(tag string) Option {
	return func(cfg *config) error {
		if tag == "" {
			return fmt.Errorf("pipeline: software tag must not be empty")
		}

		cfg.softwareTag = tag

		return nil
	}
}

// WithFFmpegPath overrides the ffmpeg binary used for the transcode
// fallback. The default "ffmpeg" is resolved against the PATH. An
// empty path disables the fallback entirely.
func WithFFmpegPath(path string) Option {
	return func(cfg *config) error {
		cfg.ffmpegPath = path
		return nil
	}
}
