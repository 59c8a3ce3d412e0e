// File: internal/ring/frame_ring.go
// Package ring implements the bounded per-sink frame queue. A lock-free,
// power-of-two-sized ring suits a single producer/single consumer handoff,
// but not this queue's actual requirement -- a compound "is it full / is
// it becoming non-empty / is it overflowed" check that must happen under
// one critical section so the mixer and the server loop never disagree
// about whether a wakeup is owed. So the backing FIFO here is
// github.com/eapache/queue wrapped in a plain mutex, matching the original
// C++ implementation's boost::mutex-guarded ring_buffer exactly.
// License: Apache-2.0

package ring

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/dvswitch/mixer-core/internal/frame"
)

// Capacity is the compile-time sink queue bound.
const Capacity = 30

// FrameRing is a bounded FIFO of Frame handles with an overflow latch. Once
// Overflowed returns true it never returns false again for this ring's
// lifetime; the owning connection is doomed and must be dropped.
type FrameRing struct {
	mu         sync.Mutex
	q          *queue.Queue
	overflowed bool
}

// NewFrameRing constructs an empty ring with capacity Capacity.
func NewFrameRing() *FrameRing {
	return &FrameRing{q: queue.New()}
}

// Push appends f. If the ring is already at capacity it latches overflowed
// and does not enqueue the frame (the caller's own reference must still be
// released). Otherwise it reports whether the ring was empty immediately
// before this push, which the caller uses to decide whether to re-arm
// writable interest on the sink's socket.
func (r *FrameRing) Push(f *frame.Frame) (wasEmpty bool, overflowed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.q.Length() >= Capacity {
		r.overflowed = true
		return false, true
	}
	wasEmpty = r.q.Length() == 0
	r.q.Add(f)
	return wasEmpty, false
}

// Overflowed reports whether this ring has ever been pushed past capacity.
func (r *FrameRing) Overflowed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overflowed
}

// Peek returns the head frame without removing it, and whether the ring is
// non-empty.
func (r *FrameRing) Peek() (*frame.Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.q.Length() == 0 {
		return nil, false
	}
	return r.q.Peek().(*frame.Frame), true
}

// Pop removes the head frame. The caller must already hold a reference
// obtained via Peek and is responsible for releasing it.
func (r *FrameRing) Pop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.q.Length() > 0 {
		r.q.Remove()
	}
}

// Empty reports whether the ring currently holds no frames.
func (r *FrameRing) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.q.Length() == 0
}

// Len reports the current number of queued frames.
func (r *FrameRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.q.Length()
}

// Drain removes and returns every frame still queued, leaving the ring
// empty. The caller owns the returned frames and must release each one.
func (r *FrameRing) Drain() []*frame.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*frame.Frame, 0, r.q.Length())
	for r.q.Length() > 0 {
		out = append(out, r.q.Remove().(*frame.Frame))
	}
	return out
}
