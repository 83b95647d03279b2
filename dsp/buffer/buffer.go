package buffer

import (
	"errors"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-loudnorm/dsp/core"
)

// ErrChannelMismatch is returned by FromChannels when the channel slices
// do not share a single length.
var ErrChannelMismatch = errors.New("buffer: channels must have equal length")

// ErrEmpty is returned by FromChannels when no channels are supplied.
var ErrEmpty = errors.New("buffer: at least one channel required")

// SampleBuffer holds multichannel audio as one float64 slice per channel,
// all of equal length. Samples are in nominal [-1, 1] range. Channel count
// and frame count are fixed from the caller's point of view; CloneInto may
// reshape a reused destination.
type SampleBuffer struct {
	channels [][]float64
}

// New returns a zero-filled SampleBuffer with the given shape.
// Negative arguments are treated as zero.
func New(channels, frames int) *SampleBuffer {
	if channels < 0 {
		channels = 0
	}

	if frames < 0 {
		frames = 0
	}

	chs := make([][]float64, channels)
	for i := range chs {
		chs[i] = make([]float64, frames)
	}

	return &SampleBuffer{channels: chs}
}

// FromChannels wraps existing channel slices without copying.
// Mutations to the slices are visible through the buffer and vice versa.
// All slices must share one length.
func FromChannels(channels [][]float64) (*SampleBuffer, error) {
	if len(channels) == 0 {
		return nil, ErrEmpty
	}

	frames := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) != frames {
			return nil, ErrChannelMismatch
		}
	}

	return &SampleBuffer{channels: channels}, nil
}

// Channels returns the channel count.
func (b *SampleBuffer) Channels() int {
	return len(b.channels)
}

// Frames returns the per-channel sample count.
func (b *SampleBuffer) Frames() int {
	if len(b.channels) == 0 {
		return 0
	}

	return len(b.channels[0])
}

// Channel returns the underlying slice for channel i.
func (b *SampleBuffer) Channel(i int) []float64 {
	return b.channels[i]
}

// Clone returns a deep copy with the same shape and contents.
func (b *SampleBuffer) Clone() *SampleBuffer {
	c := New(b.Channels(), b.Frames())
	b.CloneInto(c)

	return c
}

// CloneInto copies this buffer's contents into dst, reshaping dst to match.
// The destination keeps its backing arrays when capacity allows, which lets
// a processing loop reuse one candidate allocation across passes.
func (b *SampleBuffer) CloneInto(dst *SampleBuffer) {
	dst.resizeTo(b.Channels(), b.Frames())

	for i, ch := range b.channels {
		copy(dst.channels[i], ch)
	}
}

// Equal reports whether both buffers have the same shape and bit-identical
// sample values. NaN samples compare unequal, as with float64 comparison.
func (b *SampleBuffer) Equal(other *SampleBuffer) bool {
	if other == nil || b.Channels() != other.Channels() || b.Frames() != other.Frames() {
		return false
	}

	for i, ch := range b.channels {
		o := other.channels[i]
		for j, v := range ch {
			if v != o[j] {
				return false
			}
		}
	}

	return true
}

// PeakAbs returns the maximum absolute sample value across all channels.
// Returns 0 for an empty buffer.
func (b *SampleBuffer) PeakAbs() float64 {
	peak := 0.0

	for _, ch := range b.channels {
		if m := vecmath.MaxAbs(ch); m > peak {
			peak = m
		}
	}

	return peak
}

// Zero sets every sample in every channel to 0.
func (b *SampleBuffer) Zero() {
	for _, ch := range b.channels {
		core.Zero(ch)
	}
}

// resizeTo reshapes the buffer, reusing slice capacity when possible.
// Newly exposed samples are zeroed.
func (b *SampleBuffer) resizeTo(channels, frames int) {
	if channels < 0 {
		channels = 0
	}

	if frames < 0 {
		frames = 0
	}

	if cap(b.channels) >= channels {
		old := len(b.channels)
		b.channels = b.channels[:channels]

		for i := old; i < channels; i++ {
			if b.channels[i] == nil {
				b.channels[i] = make([]float64, 0)
			}
		}
	} else {
		grown := make([][]float64, channels)
		copy(grown, b.channels)

		for i := range grown {
			if grown[i] == nil {
				grown[i] = make([]float64, 0)
			}
		}

		b.channels = grown
	}

	for i := range b.channels {
		ch := b.channels[i]
		oldLen := len(ch)

		if cap(ch) >= frames {
			ch = ch[:frames]
		} else {
			ch = make([]float64, frames)
			oldLen = 0
		}

		if oldLen < frames {
			core.Zero(ch[oldLen:])
		}

		b.channels[i] = ch
	}
}
