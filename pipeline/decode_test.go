package pipeline

import (
	"bytes"
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-loudnorm/dsp/buffer"
)

func TestDecodeWAVRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name     string
		bitDepth int
		channels int
	}{
		{name: "16-bit stereo", bitDepth: 16, channels: 2},
		{name: "24-bit mono", bitDepth: 24, channels: 1},
		{name: "32-bit stereo", bitDepth: 32, channels: 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			const frames = 256

			src := buffer.New(tc.channels, frames)
			for c := range tc.channels {
				for i := range frames {
					src.Channel(c)[i] = 0.25 * math.Sin(2*math.Pi*float64(i*(c+1))/64)
				}
			}

			path := filepath.Join(dir, tc.name+".wav")
			writeTestWAV(t, path, src, 48000, tc.bitDepth, nil)

			got, info, err := decodeWAV(path)
			if err != nil {
				t.Fatalf("decodeWAV() error: %v", err)
			}

			if info.SampleRate != 48000 {
				t.Errorf("SampleRate = %f, want 48000", info.SampleRate)
			}

			if info.BitDepth != tc.bitDepth {
				t.Errorf("BitDepth = %d, want %d", info.BitDepth, tc.bitDepth)
			}

			if info.Channels != tc.channels || got.Channels() != tc.channels {
				t.Errorf("Channels = %d/%d, want %d", info.Channels, got.Channels(), tc.channels)
			}

			if info.Frames != frames || got.Frames() != frames {
				t.Errorf("Frames = %d/%d, want %d", info.Frames, got.Frames(), frames)
			}

			// One quantization step in either direction covers the
			// rounding of the test encoder.
			step := 1.0 / float64(int64(1)<<(tc.bitDepth-1))
			for c := range tc.channels {
				for i := range frames {
					if diff := math.Abs(got.Channel(c)[i] - src.Channel(c)[i]); diff > step {
						t.Fatalf("channel %d frame %d: got %f, want %f within %f",
							c, i, got.Channel(c)[i], src.Channel(c)[i], step)
					}
				}
			}
		})
	}
}

func TestDecodeWAVEightBitOffset(t *testing.T) {
	t.Parallel()

	const frames = 64

	src := buffer.New(1, frames)
	src.Channel(0)[0] = -1.0
	src.Channel(0)[1] = 0.0
	src.Channel(0)[2] = 1.0

	path := filepath.Join(t.TempDir(), "eightbit.wav")
	writeTestWAV(t, path, src, 8000, 8, nil)

	got, info, err := decodeWAV(path)
	if err != nil {
		t.Fatalf("decodeWAV() error: %v", err)
	}

	if info.BitDepth != 8 {
		t.Fatalf("BitDepth = %d, want 8", info.BitDepth)
	}

	// Stored bytes are 1, 128 and 255; decoding centers them on 128.
	want := []float64{-127.0 / 128.0, 0, 127.0 / 128.0}
	for i, w := range want {
		if got.Channel(0)[i] != w {
			t.Errorf("sample %d = %f, want %f", i, got.Channel(0)[i], w)
		}
	}
}

func TestDecodeWAVReadsMetadata(t *testing.T) {
	t.Parallel()

	src := buffer.New(2, 128)
	path := filepath.Join(t.TempDir(), "tagged.wav")
	writeTestWAV(t, path, src, 44100, 16, &wav.Metadata{
		Artist:   "Unit Fixtures",
		Title:    "Calibration Tone",
		Software: "SoundForge",
	})

	_, info, err := decodeWAV(path)
	if err != nil {
		t.Fatalf("decodeWAV() error: %v", err)
	}

	if info.Metadata == nil {
		t.Fatal("Metadata = nil, want LIST-INFO tags")
	}

	if info.Metadata.Artist != "Unit Fixtures" {
		t.Errorf("Artist = %q, want %q", info.Metadata.Artist, "Unit Fixtures")
	}

	if info.Metadata.Title != "Calibration Tone" {
		t.Errorf("Title = %q, want %q", info.Metadata.Title, "Calibration Tone")
	}

	if info.Metadata.Software != "SoundForge" {
		t.Errorf("Software = %q, want %q", info.Metadata.Software, "SoundForge")
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	t.Parallel()

	path := writeGarbageFile(t, t.TempDir(), "garbage.bin")

	_, _, err := decodeWAV(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("decodeWAV() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecodeFallbackDisabled(t *testing.T) {
	t.Parallel()

	path := writeGarbageFile(t, t.TempDir(), "garbage.bin")

	p, err := NewProcessor(WithFFmpegPath(""))
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}

	_, _, err = p.decode(context.Background(), path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("decode() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecodeFallbackBinaryMissing(t *testing.T) {
	t.Parallel()

	path := writeGarbageFile(t, t.TempDir(), "garbage.bin")

	p, err := NewProcessor(WithFFmpegPath("definitely-not-an-installed-binary"))
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}

	_, _, err = p.decode(context.Background(), path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("decode() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLastLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "single line", input: "boom\n", want: "boom"},
		{name: "multiple lines", input: "header\ndetail\nInvalid data found\n", want: "Invalid data found"},
		{name: "trailing blanks", input: "cause\n\n  \n", want: "cause"},
		{name: "empty", input: "", want: "no diagnostic output"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := bytes.NewBufferString(tc.input)
			if got := lastLine(buf); got != tc.want {
				t.Errorf("lastLine(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
