package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/cwbudde/algo-loudnorm/internal/cli"
	"github.com/cwbudde/algo-loudnorm/normalize"
	"github.com/cwbudde/algo-loudnorm/pipeline"
)

// NormalizeCmd is the measure, correct, limit and re-measure pass over
// one or more files.
type NormalizeCmd struct {
	Target        float64       `short:"t" default:"${target}" help:"Target integrated loudness in LUFS."`
	Tolerance     float64       `default:"${tolerance}" help:"Convergence tolerance in LU."`
	Peak          float64       `short:"p" default:"${peak}" help:"True-peak ceiling in dBTP."`
	MaxIterations int           `default:"${maxiter}" help:"Correction passes before giving up."`
	Lookahead     time.Duration `default:"${lookahead}" help:"Limiter lookahead."`
	Release       time.Duration `default:"${release}" help:"Limiter release time."`
	BitDepth      int           `default:"${bitdepth}" help:"Force the output bit depth (0 keeps the source)."`
	Output        string        `short:"o" type:"path" help:"Output file for a single input, directory for many."`
	Report        string        `type:"path" help:"Write a per-block loudness report to this file."`
	Config        string        `type:"path" help:"TOML defaults file."`
	FFmpeg        string        `default:"${ffmpeg}" help:"Transcode fallback binary (empty disables it)."`
	DryRun        bool          `help:"Run the full correction but write nothing."`
	NoProgress    bool          `help:"Disable the progress bar."`
	Verbose       bool          `short:"v" help:"Show per-file measurement detail."`

	Files []string `arg:"" name:"files" type:"existingfile" help:"Audio files to normalize."`
}

func (c *NormalizeCmd) Run() error {
	ctl, err := normalize.New(
		normalize.WithTargetLoudness(c.Target),
		normalize.WithTolerance(c.Tolerance),
		normalize.WithPeakCeiling(c.Peak),
		normalize.WithMaxIterations(c.MaxIterations),
		normalize.WithLookahead(c.Lookahead.Seconds()),
		normalize.WithRelease(c.Release.Seconds()),
	)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{
		pipeline.WithController(ctl),
		pipeline.WithBitDepth(c.BitDepth),
		pipeline.WithDryRun(c.DryRun),
		pipeline.WithFFmpegPath(c.FFmpeg),
		pipeline.WithSoftwareTag("algo-loudnorm " + version),
	}

	if c.Report != "" {
		f, err := os.Create(c.Report)
		if err != nil {
			return fmt.Errorf("report file: %w", err)
		}
		defer f.Close()

		opts = append(opts, pipeline.WithReportWriter(f))
	}

	proc, err := pipeline.NewProcessor(opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outFile, outDir := c.resolveOutput()

	if outDir != "" && !c.DryRun {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
	}

	bar := newProgressBar(len(c.Files), c.NoProgress)

	results := make([]pipeline.FileResult, 0, len(c.Files))

	for _, path := range c.Files {
		if ctx.Err() != nil {
			break
		}

		outPath := outFile
		if outPath == "" {
			outPath = pipeline.OutputPath(path, outDir)
		}

		res, _ := proc.ProcessFile(ctx, path, outPath)
		results = append(results, *res)

		bar.Add(1)
	}

	bar.Finish()
	fmt.Print("\n")

	printer := cli.NewPrinter(os.Stdout, c.Verbose)
	for i := range results {
		printer.Result(&results[i])
	}

	printer.Summary(results)

	if ctx.Err() != nil {
		return fmt.Errorf("interrupted after %d of %d files", len(results), len(c.Files))
	}

	failed := 0

	for i := range results {
		if results[i].Failed() {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(c.Files))
	}

	return nil
}

// resolveOutput splits -o into an exact file target or an output
// directory. An existing directory always collects the outputs; a
// fresh path is the output file for a single input and a directory to
// create for several.
func (c *NormalizeCmd) resolveOutput() (outFile, outDir string) {
	if c.Output == "" {
		return "", ""
	}

	if info, err := os.Stat(c.Output); err == nil && info.IsDir() {
		return "", c.Output
	}

	if len(c.Files) == 1 {
		return c.Output, ""
	}

	return "", c.Output
}

func newProgressBar(jobs int, disabled bool) *progressbar.ProgressBar {
	if disabled {
		return progressbar.DefaultSilent(int64(jobs))
	}

	return progressbar.NewOptions(jobs,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetDescription("normalizing"),
	)
}
