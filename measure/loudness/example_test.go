package loudness_test

import (
	"context"
	"fmt"
	"math"

	"github.com/cwbudde/algo-loudnorm/dsp/buffer"
	"github.com/cwbudde/algo-loudnorm/measure/loudness"
)

// ExampleMeter measures the same tone at two levels, reusing one meter
// across two sessions. Halving the amplitude lowers the integrated
// loudness by exactly 20*log10(2) LU.
func ExampleMeter() {
	const (
		sampleRate = 48000.0
		frames     = 4 * 48000
	)

	makeSine := func(amplitude float64) *buffer.SampleBuffer {
		buf := buffer.New(1, frames)

		ch := buf.Channel(0)
		for i := range ch {
			ch[i] = amplitude * math.Sin(2.0*math.Pi*997.0*float64(i)/sampleRate)
		}

		return buf
	}

	meter := loudness.NewMeter(
		loudness.WithSampleRate(sampleRate),
		loudness.WithChannels(1),
	)

	measure := func(buf *buffer.SampleBuffer) float64 {
		if err := meter.Prepare(sampleRate, buf.Frames()); err != nil {
			panic(err)
		}

		meter.StartIntegration()

		if _, err := meter.ProcessBuffer(context.Background(), buf, nil); err != nil {
			panic(err)
		}

		meter.StopIntegration()

		return meter.Integrated()
	}

	loud := measure(makeSine(1.0))
	quiet := measure(makeSine(0.5))

	fmt.Printf("level difference: %.2f LU\n", loud-quiet)
	// Output:
	// level difference: 6.02 LU
}
