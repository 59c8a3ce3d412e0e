// File: internal/netio/unknown.go
// The Unknown connection variant: waits for a 4-byte greeting and
// transitions to Source or Sink, or drops on a mismatch.
// License: Apache-2.0

package netio

import (
	"bytes"
	"fmt"

	"github.com/dvswitch/mixer-core/internal/mixer"
)

// Unknown is the state a freshly accepted connection starts in.
type Unknown struct {
	fd    int
	mix   mixer.Mixer
	win   receiveWindow
	greet [GreetingSize]byte
}

// NewUnknown wraps a freshly accepted, non-blocking socket.
func NewUnknown(fd int, mix mixer.Mixer) *Unknown {
	return &Unknown{fd: fd, mix: mix}
}

func (c *Unknown) FD() int { return c.fd }

func (c *Unknown) Identity() string { return "unknown client" }

func (c *Unknown) DoReceive() (ReceiveResult, Connection, error) {
	return doReceive(c.fd, &c.win, c.Identity(), c.refill, c.onFull)
}

func (c *Unknown) refill() []byte {
	return c.greet[:]
}

func (c *Unknown) onFull() (ReceiveResult, Connection, error) {
	switch {
	case bytes.Equal(c.greet[:], GreetingSource[:]):
		return ReceiveReplace, NewSource(c.fd, c.mix), nil
	case bytes.Equal(c.greet[:], GreetingSink[:]):
		return ReceiveReplace, NewSink(c.fd, c.mix, false), nil
	case bytes.Equal(c.greet[:], GreetingRawSink[:]):
		return ReceiveReplace, NewSink(c.fd, c.mix, true), nil
	default:
		return ReceiveDrop, nil, fmt.Errorf("unrecognized greeting %x", c.greet)
	}
}

func (c *Unknown) DoSend() (SendStatus, error) { return SendFailed, nil }

func (c *Unknown) Close() {}
