package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cwbudde/algo-loudnorm/dsp/buffer"
	"github.com/cwbudde/algo-loudnorm/measure/loudness"
	"github.com/cwbudde/algo-loudnorm/measure/spectral"
	"github.com/cwbudde/algo-loudnorm/measure/truepeak"
	"github.com/cwbudde/algo-loudnorm/normalize"
	timestats "github.com/cwbudde/algo-loudnorm/stats/time"
)

// Processor runs the decode, normalize, encode pipeline over files.
// It is not safe for concurrent use.
type Processor struct {
	ctl          *normalize.Controller
	bitDepth     int
	dryRun       bool
	reportWriter io.Writer
	softwareTag  string
	ffmpegPath   string

	// meter serves the report and analysis passes, rebuilt when the
	// channel count changes.
	meter *loudness.Meter
}

// NewProcessor creates a file processor. Without options it
// normalizes to the controller defaults, keeps the source bit depth,
// and writes no report.
func NewProcessor(opts ...Option) (*Processor, error) {
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

	if cfg.controller == nil {
		ctl, err := normalize.New()
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}

		cfg.controller = ctl
	}

	return &Processor{
		ctl:          cfg.controller,
		bitDepth:     cfg.bitDepth,
		dryRun:       cfg.dryRun,
		reportWriter: cfg.reportWriter,
		softwareTag:  cfg.softwareTag,
		ffmpegPath:   cfg.ffmpegPath,
	}, nil
}

// FileResult reports the outcome of processing one file.
type FileResult struct {
	Path       string
	OutputPath string // empty when nothing was written
	Skipped    bool   // the file produced no output
	Err        error

	Result     *normalize.Result
	InputPeak  truepeak.Measurement
	OutputPeak truepeak.Measurement

	SampleRate float64
	Channels   int
	Frames     int
	BitDepth   int // bit depth of the written output

	Elapsed time.Duration
}

// Failed reports whether the file produced no usable output.
// Non-convergence is not a failure: the best candidate is still
// written and Err records the residual.
func (r *FileResult) Failed() bool {
	return r.Err != nil && !errors.Is(r.Err, normalize.ErrNotConverged)
}

// ProcessFile normalizes one file. The returned error matches
// FileResult.Err: nil on success, ErrNotConverged (wrapped) when the
// best candidate was written anyway, or the failure that skipped the
// file.
func (p *Processor) ProcessFile(ctx context.Context, inPath, outPath string) (*FileResult, error) {
	start := time.Now()
	res := &FileResult{Path: inPath}

	fail := func(err error) (*FileResult, error) {
		res.Skipped = true
		res.Err = err
		res.Elapsed = time.Since(start)

		return res, err
	}

	buf, info, err := p.decode(ctx, inPath)
	if err != nil {
		return fail(err)
	}

	res.SampleRate = info.SampleRate
	res.Channels = info.Channels
	res.Frames = info.Frames
	res.InputPeak = truepeak.Measure(buf)

	norm, err := p.ctl.Normalize(ctx, buf, info.SampleRate)
	if err != nil && !errors.Is(err, normalize.ErrNotConverged) {
		return fail(fmt.Errorf("pipeline: %s: %w", inPath, err))
	}

	res.Err = err
	res.Result = norm
	res.OutputPeak = truepeak.Measure(norm.Buffer)

	if p.reportWriter != nil {
		if rerr := p.writeReport(ctx, inPath, norm.Buffer, info); rerr != nil {
			return fail(rerr)
		}
	}

	outDepth := info.BitDepth
	if p.bitDepth != 0 {
		outDepth = p.bitDepth
	}

	res.BitDepth = outDepth

	if !p.dryRun {
		if eerr := encodeWAV(outPath, norm.Buffer, info.SampleRate, info.BitDepth, outDepth, info.Metadata, p.softwareTag); eerr != nil {
			return fail(eerr)
		}

		res.OutputPath = outPath
	}

	res.Elapsed = time.Since(start)

	return res, res.Err
}

// ProcessFiles normalizes a batch sequentially. Failures skip the file
// and the batch continues; cancellation stops it, leaving later files
// unattempted and unreported. With a non-empty outDir every output
// lands there; otherwise each output sits beside its source.
func (p *Processor) ProcessFiles(ctx context.Context, paths []string, outDir string) []FileResult {
	results := make([]FileResult, 0, len(paths))

	if outDir != "" && !p.dryRun {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			for _, path := range paths {
				results = append(results, FileResult{Path: path, Skipped: true, Err: fmt.Errorf("pipeline: %w", err)})
			}

			return results
		}
	}

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}

		res, _ := p.ProcessFile(ctx, path, OutputPath(path, outDir))
		results = append(results, *res)
	}

	return results
}

func (p *Processor) writeReport(ctx context.Context, path string, buf *buffer.SampleBuffer, info *Info) error {
	blocks, _, err := p.meterPass(ctx, buf, info.SampleRate)
	if err != nil {
		return fmt.Errorf("pipeline: report: %s: %w", path, err)
	}

	return WriteBlockReport(p.reportWriter, path, blocks)
}

// meterPass runs a full metering session over the buffer and returns
// the per-block readings and the integrated loudness.
func (p *Processor) meterPass(ctx context.Context, buf *buffer.SampleBuffer, sampleRate float64) ([]loudness.BlockMeasurement, float64, error) {
	m := p.meterFor(buf.Channels())

	if err := m.Prepare(sampleRate, buf.Frames()); err != nil {
		return nil, 0, err
	}

	m.StartIntegration()
	blocks, err := m.ProcessBuffer(ctx, buf, nil)
	m.StopIntegration()

	if err != nil {
		return nil, 0, err
	}

	return blocks, m.Integrated(), nil
}

func (p *Processor) meterFor(channels int) *loudness.Meter {
	if p.meter == nil || p.meter.Channels() != channels {
		p.meter = loudness.NewMeter(loudness.WithChannels(channels))
	}

	return p.meter
}

// Analysis is a measurement-only description of an audio file.
type Analysis struct {
	Path       string
	SampleRate float64
	BitDepth   int
	Channels   int
	Frames     int

	Integrated   float64 // LUFS
	MomentaryMax float64
	MomentaryMin float64
	ShortTermMax float64

	Peak   truepeak.Measurement
	Blocks []loudness.BlockMeasurement

	Spectral     spectral.Summary
	ChannelStats []timestats.Stats
}

// The meter emits one block per 100 ms; the trailing 400 ms momentary
// window is fully populated from the fourth block on. Earlier blocks
// read low and would fake the momentary minimum.
const momentaryWarmupBlocks = 3

// Analyze measures a file without modifying or writing anything. A
// configured report writer receives the input's block report.
func (p *Processor) Analyze(ctx context.Context, path string) (*Analysis, error) {
	buf, info, err := p.decode(ctx, path)
	if err != nil {
		return nil, err
	}

	blocks, integrated, err := p.meterPass(ctx, buf, info.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", path, err)
	}

	summary, err := spectral.Analyze(buf, spectral.Config{SampleRate: info.SampleRate})
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", path, err)
	}

	a := &Analysis{
		Path:       path,
		SampleRate: info.SampleRate,
		BitDepth:   info.BitDepth,
		Channels:   info.Channels,
		Frames:     info.Frames,
		Integrated: integrated,
		Peak:       truepeak.Measure(buf),
		Blocks:     blocks,
		Spectral:   summary,
	}

	a.MomentaryMax, a.MomentaryMin, a.ShortTermMax = blockExtremes(blocks)

	for c := range buf.Channels() {
		a.ChannelStats = append(a.ChannelStats, timestats.Calculate(buf.Channel(c)))
	}

	if p.reportWriter != nil {
		if err := WriteBlockReport(p.reportWriter, path, blocks); err != nil {
			return nil, err
		}
	}

	return a, nil
}

func blockExtremes(blocks []loudness.BlockMeasurement) (momMax, momMin, shortMax float64) {
	if len(blocks) == 0 {
		return loudness.FloorLUFS, loudness.FloorLUFS, loudness.FloorLUFS
	}

	momMax = blocks[0].Momentary
	shortMax = blocks[0].ShortTerm

	seenMin := false

	for _, block := range blocks {
		momMax = max(momMax, block.Momentary)
		shortMax = max(shortMax, block.ShortTerm)

		if block.Index < momentaryWarmupBlocks {
			continue
		}

		if !seenMin || block.Momentary < momMin {
			momMin = block.Momentary
			seenMin = true
		}
	}

	if !seenMin {
		momMin = momMax
	}

	return momMax, momMin, shortMax
}

// DefaultOutputPath places the output beside the source with a
// .normalized.wav suffix.
func DefaultOutputPath(inPath string) string {
	return strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".normalized.wav"
}

// OutputPath resolves where the output of one input lands: in outDir
// when given, beside the source otherwise.
func OutputPath(inPath, outDir string) string {
	if outDir == "" {
		return DefaultOutputPath(inPath)
	}

	return filepath.Join(outDir, filepath.Base(DefaultOutputPath(inPath)))
}
