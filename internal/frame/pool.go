// File: internal/frame/pool.go
// A sync.Pool wrapper narrowed to the one allocation shape this repo
// actually needs: fixed MaxFrameSize byte buffers recycled across mixer
// output and sink handles.
// License: Apache-2.0

package frame

import "sync"

// Pool allocates and recycles Frame buffers. There is exactly one pool in
// the process (held by the mixer); frames are always allocated at
// MaxFrameSize capacity and truncated to System's actual size once the
// header is known.
type Pool struct {
	raw sync.Pool
}

// NewPool creates a Frame pool.
func NewPool() *Pool {
	p := &Pool{}
	p.raw.New = func() any {
		return &Frame{Buffer: make([]byte, MaxFrameSize)}
	}
	return p
}

// Get returns a fresh or recycled Frame with refs == 1 and Size == 0. The
// caller must set Size/System/CutBefore and Retain()/Release() it as it is
// shared out.
func (p *Pool) Get() *Frame {
	f := p.raw.Get().(*Frame)
	f.Size = 0
	f.System = SystemUnknown
	f.CutBefore = false
	f.refs = 1
	f.pool = p
	return f
}

func (p *Pool) put(f *Frame) {
	p.raw.Put(f)
}
