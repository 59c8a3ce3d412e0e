// File: internal/netio/source.go
// The Source connection variant: reassembles a DV byte stream into whole
// frames and hands each one to the mixer.
// License: Apache-2.0

package netio

import (
	"fmt"

	"github.com/dvswitch/mixer-core/internal/dv"
	"github.com/dvswitch/mixer-core/internal/frame"
	"github.com/dvswitch/mixer-core/internal/mixer"
)

// Source turns an incoming DV byte stream into whole-frame deliveries into
// the mixer. It registers with the mixer on construction and unregisters
// on Close, exactly as the original source_connection does in its
// constructor/destructor.
type Source struct {
	fd  int
	mix mixer.Mixer
	win receiveWindow

	id            mixer.SourceID
	frame         *frame.Frame
	firstSequence bool
}

// NewSource registers a new source with mix and allocates its first frame.
func NewSource(fd int, mix mixer.Mixer) *Source {
	s := &Source{
		fd:            fd,
		mix:           mix,
		firstSequence: true,
	}
	s.id = mix.AddSource()
	s.frame = mix.AllocateFrame()
	return s
}

func (c *Source) FD() int { return c.fd }

func (c *Source) Identity() string { return fmt.Sprintf("source %d", 1+c.id) }

func (c *Source) DoReceive() (ReceiveResult, Connection, error) {
	return doReceive(c.fd, &c.win, c.Identity(), c.refill, c.onFull)
}

func (c *Source) refill() []byte {
	if c.firstSequence {
		return c.frame.Buffer[:frame.DIFSequenceSize]
	}
	return c.frame.Buffer[frame.DIFSequenceSize:c.frame.Size]
}

func (c *Source) onFull() (ReceiveResult, Connection, error) {
	if c.firstSequence {
		system, err := dv.ParseHeader(c.frame.Buffer[:frame.DIFSequenceSize])
		if err != nil {
			return ReceiveDrop, nil, fmt.Errorf("%s: parse header: %w", c.Identity(), err)
		}
		c.frame.System = system
		c.frame.Size = frame.SizeForSystem(system)
		c.firstSequence = false
		return ReceiveKeep, nil, nil
	}

	c.mix.PutFrame(c.id, c.frame)
	c.frame = c.mix.AllocateFrame()
	c.firstSequence = true
	return ReceiveKeep, nil, nil
}

func (c *Source) DoSend() (SendStatus, error) { return SendFailed, nil }

func (c *Source) Close() {
	c.mix.RemoveSource(c.id)
	if c.frame != nil {
		c.frame.Release()
	}
}
