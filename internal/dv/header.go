// File: internal/dv/header.go
// Package dv treats the DV codec as an opaque external decoder plus a
// byte-level framing library: the codec's internal machinery (coefficient
// tables, macroblock layout, full AAUX/VAUX parsing) is out of scope. What
// the core actually needs from it is small and is implemented directly:
// recognize the first DIF sequence's header block well enough to determine
// the frame's System, and fill a syntactically plausible dummy frame for
// the ALSA adapter's black-video filler.
// License: Apache-2.0

package dv

import (
	"fmt"

	"github.com/dvswitch/mixer-core/internal/frame"
)

// headerSectionID is the DIF block section type carried in the top 3 bits
// of the first byte of every DIF block; section 0 identifies the header
// block that begins the first DIF sequence of a frame.
const headerSectionID = 0

// dsfBitMask is the "DSF" (digital system format) bit of the header block's
// fourth byte: 0 selects the 525/60 system, 1 selects 625/50.
const dsfBitMask = 0x80

// ParseHeader inspects the first DIFSequenceSize bytes of buf (which must
// already be present) and reports which System produced it. It returns an
// error if the bytes do not look like a DIF header block, mirroring
// libdv's dv_parse_header returning a negative code on failure.
func ParseHeader(buf []byte) (frame.System, error) {
	if len(buf) < 4 {
		return frame.SystemUnknown, fmt.Errorf("dv: short header (%d bytes)", len(buf))
	}
	if buf[0]>>5 != headerSectionID {
		return frame.SystemUnknown, fmt.Errorf("dv: first block is not a header block (id=%d)", buf[0]>>5)
	}
	if buf[3]&dsfBitMask != 0 {
		return frame.System625_50, nil
	}
	return frame.System525_60, nil
}

// FillDummyFrame writes a minimal but syntactically valid-looking black
// video DIF frame of the given system into buf, which must be at least
// frame.SizeForSystem(system) bytes. Every DIF block gets its section-id
// header byte set so a downstream decoder does not choke on an all-zero
// buffer; video/audio payload bytes are left at zero (black/silence).
func FillDummyFrame(buf []byte, system frame.System) {
	size := frame.SizeForSystem(system)
	for off := 0; off+frame.DIFBlockSize <= size; off += frame.DIFBlockSize {
		block := buf[off : off+frame.DIFBlockSize]
		for i := range block {
			block[i] = 0
		}
		blockInSeq := (off % frame.DIFSequenceSize) / frame.DIFBlockSize
		sectionID := sectionIDForBlock(blockInSeq)
		block[0] = byte(sectionID) << 5
		if sectionID == headerSectionID && system == frame.System625_50 {
			block[3] |= dsfBitMask
		}
	}
}

// sectionIDForBlock returns the DIF section id for a block's position within
// a DIF sequence: block 0 is the header, block 1 is subcode, blocks 2-5 are
// VAUX, then audio/video blocks alternate per the DV interleave pattern.
func sectionIDForBlock(blockInSeq int) int {
	switch {
	case blockInSeq == 0:
		return 0 // header
	case blockInSeq == 1:
		return 1 // subcode
	case blockInSeq >= 2 && blockInSeq <= 5:
		return 2 // VAUX
	case blockInSeq%16 == 6:
		return 3 // audio
	default:
		return 4 // video
	}
}
