package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cwbudde/algo-loudnorm/measure/spectral"
	"github.com/cwbudde/algo-loudnorm/normalize"
	"github.com/cwbudde/algo-loudnorm/pipeline"
)

// resultElapsedUnit keeps verbose timings readable.
const resultElapsedUnit = time.Millisecond

// Printer renders per-file outcomes and analysis blocks. Styling is
// applied after width padding so the columns survive color rendering.
type Printer struct {
	out     io.Writer
	verbose bool
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer, verbose bool) *Printer {
	return &Printer{out: out, verbose: verbose}
}

const statusWidth = 13 // fits "not converged"

func status(res *pipeline.FileResult) string {
	switch {
	case res.Failed():
		return ErrorStyle.Render(pad("failed", statusWidth))
	case res.Err != nil:
		return WarnStyle.Render(pad("not converged", statusWidth))
	case res.OutputPath == "":
		return KeyStyle.Render(pad("dry run", statusWidth))
	default:
		return ValueStyle.Render(pad("ok", statusWidth))
	}
}

func pad(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}

// Result prints one line per processed file, plus measurement detail
// in verbose mode.
func (p *Printer) Result(res *pipeline.FileResult) {
	if res.Failed() {
		fmt.Fprintf(p.out, "%s  %v\n", status(res), res.Err)
		return
	}

	path := res.OutputPath
	if path == "" {
		path = res.Path
	}

	norm := res.Result

	fmt.Fprintf(p.out, "%s  %s  %.2f → %.2f LUFS  gain %+.2f dB",
		status(res), path, norm.InputLoudness, norm.OutputLoudness, norm.GainDB)

	if errors.Is(res.Err, normalize.ErrNotConverged) {
		fmt.Fprintf(p.out, "  %.2f LU off target", norm.Residual)
	}

	fmt.Fprintln(p.out)

	if p.verbose {
		fmt.Fprintf(p.out, "%s  in %.2f dBTP  out %.2f dBTP  %d bit  %d ch  %.0f Hz  %s  %s\n",
			pad("", statusWidth),
			res.InputPeak.TruePeakDB, res.OutputPeak.TruePeakDB,
			res.BitDepth, res.Channels, res.SampleRate,
			passes(norm.Iterations), res.Elapsed.Round(resultElapsedUnit))
	}
}

func passes(n int) string {
	if n == 1 {
		return "1 pass"
	}

	return fmt.Sprintf("%d passes", n)
}

// Summary prints the batch totals.
func (p *Printer) Summary(results []pipeline.FileResult) {
	var written, failed int

	for i := range results {
		switch {
		case results[i].Failed():
			failed++
		case !results[i].Skipped:
			written++
		}
	}

	fmt.Fprintf(p.out, "\n%s %s   %s %s   %s %s\n",
		KeyStyle.Render("files:"), ValueStyle.Render(fmt.Sprint(len(results))),
		KeyStyle.Render("normalized:"), ValueStyle.Render(fmt.Sprint(written)),
		KeyStyle.Render("failed:"), ValueStyle.Render(fmt.Sprint(failed)))
}

const analysisKeyWidth = 16

func (p *Printer) kv(key, format string, args ...any) {
	fmt.Fprintf(p.out, "  %s %s\n",
		KeyStyle.Render(pad(key+":", analysisKeyWidth)),
		ValueStyle.Render(fmt.Sprintf(format, args...)))
}

// Analysis prints the measurement block of one file.
func (p *Printer) Analysis(a *pipeline.Analysis) {
	fmt.Fprintf(p.out, "%s\n", TitleStyle.Render(a.Path))

	seconds := 0.0
	if a.SampleRate > 0 {
		seconds = float64(a.Frames) / a.SampleRate
	}

	p.kv("format", "%d ch  %.0f Hz  %d bit  %.1f s", a.Channels, a.SampleRate, a.BitDepth, seconds)
	p.kv("integrated", "%.2f LUFS", a.Integrated)
	p.kv("momentary", "max %.2f  min %.2f LUFS", a.MomentaryMax, a.MomentaryMin)
	p.kv("short-term max", "%.2f LUFS", a.ShortTermMax)
	p.kv("true peak", "%.2f dBTP  (sample %.2f dBFS)", a.Peak.TruePeakDB, a.Peak.SamplePeakDB)
	p.kv("centroid", "%.1f Hz", a.Spectral.CentroidHz)
	p.kv("rolloff 85%", "%.1f Hz", a.Spectral.RolloffHz)
	p.kv("flatness", "%.3f", a.Spectral.Flatness)

	low, mid, high := bandSplit(a.Spectral.Bands)
	p.kv("energy split", "low %.1f%%  mid %.1f%%  high %.1f%%", low*100, mid*100, high*100)

	if p.verbose {
		for c, st := range a.ChannelStats {
			p.kv(fmt.Sprintf("channel %d", c), "RMS %.2f dBFS  peak %.2f dBFS  DC %+.5f",
				st.RMS_dB, st.Peak_dB, st.DC)
		}
	}

	fmt.Fprintln(p.out)
}

// Band boundaries for the three-way energy split.
const (
	lowBandHz  = 250.0
	highBandHz = 4000.0
)

// bandSplit folds the octave bands into low/mid/high energy fractions.
// A band straddling a boundary counts toward the side holding its
// lower edge.
func bandSplit(bands []spectral.Band) (low, mid, high float64) {
	for _, b := range bands {
		switch {
		case b.HighHz <= lowBandHz:
			low += b.Energy
		case b.LowHz >= highBandHz:
			high += b.Energy
		case b.LowHz < lowBandHz:
			low += b.Energy
		default:
			mid += b.Energy
		}
	}

	return low, mid, high
}
