package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwbudde/algo-loudnorm/internal/cli"
	"github.com/cwbudde/algo-loudnorm/pipeline"
)

// AnalyzeCmd measures files and prints the results without modifying
// anything.
type AnalyzeCmd struct {
	Report  string `type:"path" help:"Write a per-block loudness report to this file."`
	Config  string `type:"path" help:"TOML defaults file."`
	FFmpeg  string `default:"${ffmpeg}" help:"Transcode fallback binary (empty disables it)."`
	Verbose bool   `short:"v" help:"Include per-channel statistics."`

	Files []string `arg:"" name:"files" type:"existingfile" help:"Audio files to analyze."`
}

func (c *AnalyzeCmd) Run() error {
	opts := []pipeline.Option{pipeline.WithFFmpegPath(c.FFmpeg)}

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

	printer := cli.NewPrinter(os.Stdout, c.Verbose)

	failed := 0

	for _, path := range c.Files {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("interrupted: %w", err)
		}

		a, aerr := proc.Analyze(ctx, path)
		if aerr != nil {
			cli.PrintError(aerr.Error())
			failed++

			continue
		}

		printer.Analysis(a)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(c.Files))
	}

	return nil
}
