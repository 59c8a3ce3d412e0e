// File: internal/netio/protocol.go
// Wire-level constants shared by the three connection variants.
// License: Apache-2.0

package netio

// GreetingSize is the fixed number of bytes an Unknown connection waits for
// before it can be classified.
const GreetingSize = 4

// Greeting values. Exactly one of these three, byte for byte, is a valid
// greeting; anything else is a protocol violation.
var (
	GreetingSource  = [GreetingSize]byte{'D', 'V', 'S', 'O'}
	GreetingSink    = [GreetingSize]byte{'D', 'V', 'S', 'I'}
	GreetingRawSink = [GreetingSize]byte{'D', 'V', 'R', 'S'}
)

// SinkFrameHeaderSize is the fixed per-frame header size on the
// server->sink wire for non-raw sinks.
const SinkFrameHeaderSize = 16

// SinkFrameCutFlagPos is the offset within a sink frame header of the cut
// flag byte ('C' or 0); all other header bytes are reserved and zero.
const SinkFrameCutFlagPos = 0
