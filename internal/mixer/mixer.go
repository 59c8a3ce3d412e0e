// File: internal/mixer/mixer.go
// Package mixer defines the interface the connection multiplexer core calls
// into (add_source, remove_source, put_frame, add_sink, remove_sink,
// allocate_frame) and ships a minimal reference implementation so the core
// is runnable end to end. Frame composition, system/rate selection, video
// effects, and recording -- the actual "mixer engine" -- are out of scope
// per spec; the reference Mixer here only fans every frame a source submits
// out to every currently registered sink, in registration order, which is
// enough to exercise and test the multiplexer and the sink backpressure
// policy.
// License: Apache-2.0

package mixer

import (
	"sync"

	"github.com/dvswitch/mixer-core/internal/frame"
)

// SourceID identifies a registered source. Stable for the connection's
// lifetime; surrendered on RemoveSource. Render as 1+id in diagnostics.
type SourceID uint32

// SinkID identifies a registered sink. Same lifetime rules as SourceID.
type SinkID uint32

// Sink is the interface the mixer uses to deliver frames to a sink
// connection. PutFrame must not block on I/O; it enqueues and returns.
type Sink interface {
	PutFrame(f *frame.Frame)
}

// Mixer is the interface the server core depends on. The mixer engine
// implementing frame composition lives outside this repo's scope; Mixer is
// the seam between that engine and the network core.
type Mixer interface {
	AddSource() SourceID
	RemoveSource(id SourceID)
	PutFrame(id SourceID, f *frame.Frame)

	AddSink(s Sink) SinkID
	RemoveSink(id SinkID)

	AllocateFrame() *frame.Frame
}

// FanoutMixer is a reference Mixer: every frame put in by any source is
// retained once per currently-registered sink and delivered to each sink's
// PutFrame, in the order sinks were added. It performs no composition --
// multiple simultaneous sources simply interleave their frames in whatever
// order put_frame is called, which is a faithful (if unmixed) stand-in for
// the real mixer engine's output stream as far as the network core and its
// sinks can tell.
type FanoutMixer struct {
	pool *frame.Pool

	mu       sync.Mutex
	nextSrc  SourceID
	nextSink SinkID
	sources  map[SourceID]struct{}
	sinks    map[SinkID]Sink
	sinkOrd  []SinkID
}

// NewFanoutMixer constructs an empty reference mixer.
func NewFanoutMixer() *FanoutMixer {
	return &FanoutMixer{
		pool:    frame.NewPool(),
		sources: make(map[SourceID]struct{}),
		sinks:   make(map[SinkID]Sink),
	}
}

func (m *FanoutMixer) AddSource() SourceID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSrc
	m.nextSrc++
	m.sources[id] = struct{}{}
	return id
}

func (m *FanoutMixer) RemoveSource(id SourceID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sources, id)
}

func (m *FanoutMixer) AddSink(s Sink) SinkID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSink
	m.nextSink++
	m.sinks[id] = s
	m.sinkOrd = append(m.sinkOrd, id)
	return id
}

func (m *FanoutMixer) RemoveSink(id SinkID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sinks, id)
	for i, sid := range m.sinkOrd {
		if sid == id {
			m.sinkOrd = append(m.sinkOrd[:i], m.sinkOrd[i+1:]...)
			break
		}
	}
}

func (m *FanoutMixer) AllocateFrame() *frame.Frame {
	return m.pool.Get()
}

func (m *FanoutMixer) PutFrame(_ SourceID, f *frame.Frame) {
	m.mu.Lock()
	sinks := make([]Sink, len(m.sinkOrd))
	for i, id := range m.sinkOrd {
		sinks[i] = m.sinks[id]
	}
	m.mu.Unlock()

	for _, s := range sinks {
		f.Retain()
		s.PutFrame(f)
	}
	f.Release() // the source's own reference
}
