package pipeline

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-loudnorm/dsp/buffer"
	"github.com/cwbudde/algo-loudnorm/internal/testutil"
)

// writeTestWAV encodes the buffer with go-audio directly so the tests
// do not depend on the encode path under test.
func writeTestWAV(t *testing.T, path string, buf *buffer.SampleBuffer, sampleRate, bitDepth int, meta *wav.Metadata) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, buf.Channels(), wavFormatPCM)
	enc.Metadata = meta

	channels := buf.Channels()
	frames := buf.Frames()
	fullScale := float64(int64(1)<<(bitDepth-1)) - 1

	data := make([]int, channels*frames)

	for i := range frames {
		for c := range channels {
			v := int(math.Round(buf.Channel(c)[i] * fullScale))
			if bitDepth == 8 {
				v += 128
			}

			data[i*channels+c] = v
		}
	}

	err = enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	})
	if err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder for %s: %v", path, err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

// writeSineWAV writes a coherent multichannel sine tone.
func writeSineWAV(t *testing.T, path string, channels, frames, sampleRate, bitDepth int, freqHz, amplitude float64, meta *wav.Metadata) {
	t.Helper()

	buf := testutil.SineBuffer(channels, frames, freqHz, float64(sampleRate), amplitude)
	writeTestWAV(t, path, buf, sampleRate, bitDepth, meta)
}

// writeGarbageFile writes bytes no audio decoder accepts.
func writeGarbageFile(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("this is not an audio container at all"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}
