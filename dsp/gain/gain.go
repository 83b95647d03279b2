package gain

import (
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-loudnorm/dsp/buffer"
	"github.com/cwbudde/algo-loudnorm/dsp/core"
)

// Apply scales every sample of buf in place by the linear equivalent of
// gainDB. A gain of exactly 0 dB leaves every sample bit-identical.
func Apply(buf *buffer.SampleBuffer, gainDB float64) {
	if buf == nil || gainDB == 0 {
		return
	}

	k := core.DBToLinear(gainDB)
	for i := range buf.Channels() {
		vecmath.ScaleBlockInPlace(buf.Channel(i), k)
	}
}

// ApplySamples scales one channel in place by the linear equivalent of
// gainDB. A gain of exactly 0 dB leaves the slice untouched.
func ApplySamples(samples []float64, gainDB float64) {
	if gainDB == 0 || len(samples) == 0 {
		return
	}

	vecmath.ScaleBlockInPlace(samples, core.DBToLinear(gainDB))
}
