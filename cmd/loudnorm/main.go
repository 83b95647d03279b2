// Command loudnorm normalizes audio files to a target integrated
// loudness with true-peak limiting, re-measuring after each correction
// until the result converges.
package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/cwbudde/algo-loudnorm/internal/cli"
)

var version = "0.4.0"

// CLI is the command grammar. Normalize is the default command, so
// plain file arguments run a normalization pass.
type CLI struct {
	Normalize NormalizeCmd `cmd:"" default:"withargs" help:"Normalize files to the target loudness."`
	Analyze   AnalyzeCmd   `cmd:"" help:"Measure files without writing anything."`
	Version   VersionCmd   `cmd:"" help:"Show version information."`
}

// VersionCmd prints the styled version banner.
type VersionCmd struct{}

func (VersionCmd) Run() error {
	cli.PrintVersion(version)
	return nil
}

func main() {
	// The defaults file must load before kong parses, so its values
	// can seed the flag defaults while explicit flags still win.
	vars, err := cli.LoadConfig(cli.ConfigPath(os.Args[1:]))
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("loudnorm"),
		kong.Description("EBU R128 loudness normalizer with true-peak limiting"),
		kong.UsageOnError(),
		vars,
	)

	if err := ctx.Run(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}
