package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-loudnorm/dsp/buffer"
)

var (
	// ErrUnsupportedFormat marks inputs the native WAV decoder cannot
	// read and no transcode fallback could recover.
	ErrUnsupportedFormat = errors.New("pipeline: unsupported input format")

	// ErrDecodeFailed marks inputs that were recognized but could not
	// be decoded.
	ErrDecodeFailed = errors.New("pipeline: decode failed")
)

// WAV audio format codes accepted by the native decoder. Extensible
// containers carry PCM in a subformat the decoder resolves by bit
// depth.
const (
	wavFormatPCM        = 1
	wavFormatExtensible = 65534
)

// Info describes a decoded audio file.
type Info struct {
	SampleRate float64
	BitDepth   int
	Channels   int
	Frames     int

	// Metadata holds the source's LIST-INFO tags, nil when absent.
	Metadata *wav.Metadata

	// Transcoded is set when the file went through the ffmpeg
	// fallback. The bit depth and tags then describe the transcode,
	// not the original container.
	Transcoded bool
}

// decode reads an audio file into a deinterleaved sample buffer. WAV
// containers decode natively; other formats are transcoded through
// ffmpeg first when a binary is configured.
func (p *Processor) decode(ctx context.Context, path string) (*buffer.SampleBuffer, *Info, error) {
	buf, info, err := decodeWAV(path)
	if err == nil || !errors.Is(err, ErrUnsupportedFormat) {
		return buf, info, err
	}

	if p.ffmpegPath == "" {
		return nil, nil, err
	}

	tmpPath, err := transcodeToWAV(ctx, p.ffmpegPath, path)
	if err != nil {
		return nil, nil, err
	}
	defer os.Remove(tmpPath)

	buf, info, err = decodeWAV(tmpPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: ffmpeg output unreadable", ErrDecodeFailed, path)
	}

	info.Transcoded = true

	return buf, info, nil
}

// decodeWAV reads one WAV file: a metadata pass for the LIST-INFO
// tags, then a rewind and a full PCM pass.
func decodeWAV(path string) (*buffer.SampleBuffer, *Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, nil, fmt.Errorf("%w: %s: audio format %d", ErrUnsupportedFormat, path, dec.WavAudioFormat)
	}

	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, nil, fmt.Errorf("%w: %s: %d-bit samples", ErrUnsupportedFormat, path, dec.BitDepth)
	}

	// ReadMetadata consumes the reader hunting for the LIST chunk, so
	// the PCM pass needs a rewound, fresh decoder.
	dec.ReadMetadata()
	meta := dec.Metadata

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("pipeline: %w", err)
	}

	dec = wav.NewDecoder(f)

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, path, err)
	}

	if pcm == nil || pcm.Format == nil || pcm.Format.NumChannels <= 0 || len(pcm.Data) < pcm.Format.NumChannels {
		return nil, nil, fmt.Errorf("%w: %s: no audio frames", ErrDecodeFailed, path)
	}

	info := &Info{
		SampleRate: float64(dec.SampleRate),
		BitDepth:   int(dec.BitDepth),
		Channels:   pcm.Format.NumChannels,
		Metadata:   meta,
	}

	buf := pcmToBuffer(pcm, info.BitDepth)
	info.Frames = buf.Frames()

	return buf, info, nil
}

// pcmToBuffer deinterleaves integer PCM into per-channel float64 data
// scaled to [-1, 1). 8-bit WAV samples are unsigned and centered on
// 128; all wider depths are signed.
func pcmToBuffer(pcm *audio.IntBuffer, bitDepth int) *buffer.SampleBuffer {
	channels := pcm.Format.NumChannels
	frames := len(pcm.Data) / channels

	buf := buffer.New(channels, frames)

	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	scale := 1.0 / float64(int64(1)<<(bitDepth-1))

	for c := range channels {
		dst := buf.Channel(c)
		for i := range frames {
			dst[i] = float64(pcm.Data[i*channels+c]-offset) * scale
		}
	}

	return buf
}
