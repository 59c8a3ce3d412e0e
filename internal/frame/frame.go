// File: internal/frame/frame.go
// Package frame defines the DV frame buffer shared between the mixer and
// every sink that holds a handle to it.
// License: Apache-2.0

package frame

import "sync/atomic"

// System identifies a DV line/frame-rate system.
type System int

const (
	// SystemUnknown marks a frame whose header has not yet been parsed.
	SystemUnknown System = iota
	// System525_60 is the NTSC-like system (30000/1001 fps, 10 DIF sequences).
	System525_60
	// System625_50 is the PAL-like system (25 fps, 12 DIF sequences).
	System625_50
)

func (s System) String() string {
	switch s {
	case System525_60:
		return "525/60"
	case System625_50:
		return "625/50"
	default:
		return "unknown"
	}
}

const (
	// DIFBlockSize is the size in bytes of one DIF block.
	DIFBlockSize = 80
	// DIFSequenceBlocks is the number of DIF blocks in one DIF sequence.
	DIFSequenceBlocks = 150
	// DIFSequenceSize is the number of bytes in the first DIF sequence of a
	// frame -- enough to parse the header and determine the frame's system.
	DIFSequenceSize = DIFBlockSize * DIFSequenceBlocks // 12000

	// FrameSize525_60 is the full frame size for the 525/60 (NTSC) system:
	// 10 DIF sequences.
	FrameSize525_60 = DIFSequenceSize * 10 // 120000
	// FrameSize625_50 is the full frame size for the 625/50 (PAL) system:
	// 12 DIF sequences.
	FrameSize625_50 = DIFSequenceSize * 12 // 144000

	// MaxFrameSize is the largest frame size any system can produce.
	MaxFrameSize = FrameSize625_50
)

// SizeForSystem returns the full wire size of a frame of the given system.
func SizeForSystem(s System) int {
	switch s {
	case System525_60:
		return FrameSize525_60
	case System625_50:
		return FrameSize625_50
	default:
		return 0
	}
}

// Frame is an owned, reference-shareable DV frame buffer. It is allocated by
// the mixer, shared between the mixer's output and every sink that has not
// yet drained it, and released back to the pool once every holder has called
// Release. Nothing ever mutates a Frame's Buffer after it has been handed to
// a sink.
type Frame struct {
	Buffer    []byte // capacity MaxFrameSize, valid bytes [0:Size]
	Size      int
	System    System
	CutBefore bool

	refs     int32
	pool     *Pool
}

// Retain increments the reference count and returns the same frame, so
// callers can write f = f.Retain() at a fan-out point.
func (f *Frame) Retain() *Frame {
	atomic.AddInt32(&f.refs, 1)
	return f
}

// Release decrements the reference count. When it reaches zero the frame is
// returned to its pool for reuse; Pool.Get resets it before handing it out.
func (f *Frame) Release() {
	if atomic.AddInt32(&f.refs, -1) == 0 && f.pool != nil {
		f.pool.put(f)
	}
}
