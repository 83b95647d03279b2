package buffer

import "sync"

// Pool provides sync.Pool-based SampleBuffer reuse to reduce GC pressure
// in loops that clone a full candidate buffer per pass.
type Pool struct {
	pool sync.Pool
}

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &SampleBuffer{}
			},
		},
	}
}

// Get returns a SampleBuffer with the requested shape. The buffer is zeroed.
// Callers must return it via Put when done.
func (p *Pool) Get(channels, frames int) *SampleBuffer {
	b := p.pool.Get().(*SampleBuffer)
	b.resizeTo(channels, frames)
	b.Zero()

	return b
}

// GetClone returns a pooled SampleBuffer containing a copy of src.
func (p *Pool) GetClone(src *SampleBuffer) *SampleBuffer {
	b := p.pool.Get().(*SampleBuffer)
	src.CloneInto(b)

	return b
}

// Put returns a SampleBuffer to the pool for reuse.
// The caller must not use the buffer after calling Put.
func (p *Pool) Put(b *SampleBuffer) {
	if b == nil {
		return
	}

	p.pool.Put(b)
}
