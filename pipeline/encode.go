package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-loudnorm/dsp/buffer"
	"github.com/cwbudde/algo-loudnorm/dsp/dither"
)

// encodeWAV writes the buffer as PCM WAV at the given bit depth,
// carrying the source tags merged with the software tag.
func encodeWAV(path string, buf *buffer.SampleBuffer, sampleRate float64, sourceDepth, outDepth int, meta *wav.Metadata, software string) error {
	data, err := interleave(buf, sampleRate, sourceDepth, outDepth)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	enc := wav.NewEncoder(f, int(sampleRate), outDepth, buf.Channels(), wavFormatPCM)
	enc.Metadata = mergeMetadata(meta, software)

	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: buf.Channels(), SampleRate: int(sampleRate)},
		Data:           data,
		SourceBitDepth: outDepth,
	}); err != nil {
		f.Close()
		return fmt.Errorf("pipeline: encode %s: %v", path, err)
	}

	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("pipeline: encode %s: %v", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	return nil
}

// interleave converts per-channel float64 samples to interleaved
// integers at the output depth. Reducing the depth applies triangular
// dither; otherwise samples are requantized plainly. The quantizer's
// range limit is the clipping guard at full scale.
func interleave(buf *buffer.SampleBuffer, sampleRate float64, sourceDepth, outDepth int) ([]int, error) {
	opts := []dither.Option{dither.WithBitDepth(outDepth)}
	if outDepth >= sourceDepth {
		opts = append(opts, dither.WithDitherType(dither.DitherNone))
	}

	quant, err := dither.NewQuantizer(sampleRate, opts...)
	if err != nil {
		return nil, err
	}

	channels := buf.Channels()
	frames := buf.Frames()

	offset := 0
	if outDepth == 8 {
		offset = 128
	}

	data := make([]int, channels*frames)
	for i := range frames {
		for c := range channels {
			data[i*channels+c] = quant.ProcessInteger(buf.Channel(c)[i]) + offset
		}
	}

	return data, nil
}

// mergeMetadata copies the source tags and folds the software tag into
// the Software field without displacing an existing value.
func mergeMetadata(src *wav.Metadata, software string) *wav.Metadata {
	out := &wav.Metadata{}
	if src != nil {
		*out = *src
	}

	switch {
	case out.Software == "":
		out.Software = software
	case !strings.Contains(out.Software, software):
		out.Software += "; " + software
	}

	return out
}
