package particle

import "sync"

// FramePool recycles frame buffers for presenters that hand frames to other
// goroutines.
type FramePool struct {
	pool sync.Pool
	n    int
}

func NewFramePool(n int) *FramePool {
	return &FramePool{
		n: n,
		pool: sync.Pool{
			New: func() interface{} {
				return &Frame{
					Positions:  make([]float64, 0, 2*n),
					Velocities: make([]float64, 0, 2*n),
				}
			},
		},
	}
}

func (p *FramePool) Get() *Frame {
	return p.pool.Get().(*Frame)
}

func (p *FramePool) Put(f *Frame) {
	if cap(f.Positions) >= 2*p.n && cap(f.Velocities) >= 2*p.n {
		f.Positions = f.Positions[:0]
		f.Velocities = f.Velocities[:0]
		p.pool.Put(f)
	}
}

// GetAndCopy returns a pooled frame holding a copy of src.
func (p *FramePool) GetAndCopy(src Frame) *Frame {
	dst := p.Get()
	src.CloneInto(dst)
	return dst
}
