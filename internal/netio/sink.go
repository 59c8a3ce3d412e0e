// File: internal/netio/sink.go
// The Sink connection variant: delivers the mixer's frame stream to a sink
// socket in arrival order, with a bounded-memory overflow policy. Grounded
// on server::sink_connection::do_send / put_frame in the original
// server.cpp, translated from writev's raw iovec/done_count bookkeeping
// into trimIovecs.
// License: Apache-2.0

package netio

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/dvswitch/mixer-core/internal/frame"
	"github.com/dvswitch/mixer-core/internal/mixer"
	"github.com/dvswitch/mixer-core/internal/ring"
)

// wakeNotifier is the seam Sink uses to ask the server loop to re-arm
// writable interest on its socket. The server implements it; put_frame can
// be called from any thread, which is why this goes through the wake-up
// pipe rather than mutating the poll table directly.
type wakeNotifier interface {
	WakeWritable(fd int)
}

// Sink delivers frames produced by the mixer to a sink socket. It
// implements mixer.Sink so the mixer can PutFrame into it directly.
type Sink struct {
	fd     int
	mix    mixer.Mixer
	wake   wakeNotifier
	isRaw  bool
	id     mixer.SinkID
	ring   *ring.FrameRing
	win    receiveWindow

	framePos int
	pending  *frame.Frame // head frame currently being transmitted, once popped pending is released
}

// var sinkDummy backs every sink's receive window. Completion always drops
// the connection, so sharing one byte across every sink is safe only
// because the server loop that touches it is single-threaded.
var sinkDummy [1]byte

// NewSink registers a new sink with mix.
func NewSink(fd int, mix mixer.Mixer, isRaw bool) *Sink {
	s := &Sink{
		fd:    fd,
		mix:   mix,
		isRaw: isRaw,
		ring:  ring.NewFrameRing(),
	}
	s.id = mix.AddSink(s)
	return s
}

// bindWake attaches the server's wake notifier once the connection is
// registered in the poll table; the server calls this right after
// replacing an Unknown slot with a new Sink.
func (c *Sink) bindWake(w wakeNotifier) { c.wake = w }

func (c *Sink) FD() int { return c.fd }

func (c *Sink) Identity() string { return fmt.Sprintf("sink %d", 1+c.id) }

func (c *Sink) DoReceive() (ReceiveResult, Connection, error) {
	return doReceive(c.fd, &c.win, c.Identity(), c.refill, c.onFull)
}

func (c *Sink) refill() []byte { return sinkDummy[:] }

func (c *Sink) onFull() (ReceiveResult, Connection, error) {
	return ReceiveDrop, nil, nil
}

// PutFrame implements mixer.Sink. It is safe to call from any goroutine.
func (c *Sink) PutFrame(f *frame.Frame) {
	wasEmpty, overflowed := c.ring.Push(f)
	if overflowed {
		f.Release()
		return
	}
	if wasEmpty && c.wake != nil {
		c.wake.WakeWritable(c.fd)
	}
}

func (c *Sink) DoSend() (SendStatus, error) {
	finishedFrame := false
	for {
		if c.ring.Overflowed() {
			return SendFailed, fmt.Errorf("%s: frame queue overflowed", c.Identity())
		}

		if finishedFrame {
			c.ring.Pop()
			if c.pending != nil {
				c.pending.Release()
				c.pending = nil
			}
			finishedFrame = false
		}

		f, ok := c.ring.Peek()
		if !ok {
			return SentAll, nil
		}
		c.pending = f

		segs := c.segmentsFor(f)
		total := 0
		for _, s := range segs {
			total += len(s)
		}
		iovs := trimIovecs(segs, c.framePos)

		n, err := unix.Writev(c.fd, iovs)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return SentSome, nil
			}
			return SendFailed, err
		}
		if n == 0 {
			return SendFailed, fmt.Errorf("%s: writev returned 0", c.Identity())
		}

		c.framePos += n
		if c.framePos == total {
			finishedFrame = true
			c.framePos = 0
			continue
		}
		return SentSome, nil
	}
}

// segmentsFor builds the two-segment (header, payload) gather list for a
// frame, or just the payload for a raw sink.
func (c *Sink) segmentsFor(f *frame.Frame) [][]byte {
	if c.isRaw {
		return [][]byte{f.Buffer[:f.Size]}
	}
	var header [SinkFrameHeaderSize]byte
	if f.CutBefore {
		header[SinkFrameCutFlagPos] = 'C'
	}
	return [][]byte{header[:], f.Buffer[:f.Size]}
}

func (c *Sink) Close() {
	c.mix.RemoveSink(c.id)
	// pending is always the ring's head until it is popped, so Drain returns
	// it along with the rest and it is released exactly once below.
	c.pending = nil
	for _, f := range c.ring.Drain() {
		f.Release()
	}
}
