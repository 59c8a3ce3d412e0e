// File: internal/dv/audio.go
// Per-system, per-rate audio-sample-count cycles used by the ALSA source
// adapter to know how many PCM frames belong in each video frame's audio
// block. DV ties a fixed number of audio samples to each video frame, but
// because 525/60's frame rate (30000/1001 fps) is not an integer ratio of
// any supported sample rate, the count varies on a short repeating cycle;
// 625/50's exact 25fps rate makes every supported sample rate divide evenly,
// so its cycle length is always 1.
// License: Apache-2.0

package dv

import (
	"fmt"

	"github.com/dvswitch/mixer-core/internal/frame"
)

// SampleRate is one of the three sample rates DV audio supports.
type SampleRate int

const (
	SampleRate32000 SampleRate = 32000
	SampleRate44100 SampleRate = 44100
	SampleRate48000 SampleRate = 48000
)

// ParseSampleRate validates a CLI-supplied rate.
func ParseSampleRate(hz int) (SampleRate, error) {
	switch hz {
	case 32000:
		return SampleRate32000, nil
	case 44100:
		return SampleRate44100, nil
	case 48000:
		return SampleRate48000, nil
	default:
		return 0, fmt.Errorf("dv: invalid sample rate %d", hz)
	}
}

// AudioCycle is the repeating schedule of audio-sample counts, one entry per
// video frame position in the cycle.
type AudioCycle struct {
	StdCycle []int
}

// Len returns the number of entries (video frame positions) in the cycle.
func (c AudioCycle) Len() int { return len(c.StdCycle) }

// audioFrameCounts is indexed [system][rate] and holds each system/rate
// pair's nominal cycle. 625/50 entries are length 1 because 25fps divides
// every supported sample rate exactly. 525/60 entries are approximate
// nominal cycles consistent with the 1001/30000 frame-rate ratio.
var audioFrameCounts = map[frame.System]map[SampleRate]AudioCycle{
	frame.System625_50: {
		SampleRate32000: {StdCycle: []int{1280}},
		SampleRate44100: {StdCycle: []int{1764}},
		SampleRate48000: {StdCycle: []int{1920}},
	},
	frame.System525_60: {
		SampleRate32000: {StdCycle: []int{
			1068, 1068, 1067, 1068, 1068,
			1068, 1067, 1068, 1068, 1067,
			1068, 1068, 1067, 1068, 1067,
		}},
		SampleRate44100: {StdCycle: []int{
			1472, 1471, 1472, 1471, 1472,
			1471, 1472, 1471, 1472, 1471,
		}},
		SampleRate48000: {StdCycle: []int{1602, 1601, 1602, 1601, 1602}},
	},
}

// AudioFrameCount returns the number of audio samples that belong in the
// video frame at position serialNum of a continuous stream, for the given
// system and sample rate.
func AudioFrameCount(system frame.System, rate SampleRate, serialNum uint64) int {
	cycle := audioFrameCounts[system][rate]
	if cycle.Len() == 0 {
		return 0
	}
	return cycle.StdCycle[serialNum%uint64(cycle.Len())]
}

// audioPayloadPerBlock is the usable byte count within an audio DIF block
// once its leading 8 header bytes are excluded.
const audioPayloadPerBlock = frame.DIFBlockSize - 8

// SetAudioBlock overlays count interleaved stereo 16-bit samples onto buf's
// audio DIF blocks. Real AAUX sub-framing (channel interleave across the
// three audio DIF blocks per sequence, audio source/control packs) is part
// of the DV codec this repo treats as out of scope; this writes the raw
// interleaved PCM bytes sequentially into each sequence's audio block
// payload area, enough for a raw sink or test harness to recover exactly
// what was captured.
func SetAudioBlock(buf []byte, system frame.System, samples []byte) {
	size := frame.SizeForSystem(system)
	pos := 0
	for off := 0; off+frame.DIFBlockSize <= size && pos < len(samples); off += frame.DIFBlockSize {
		blockInSeq := (off % frame.DIFSequenceSize) / frame.DIFBlockSize
		if sectionIDForBlock(blockInSeq) != 3 {
			continue
		}
		block := buf[off : off+frame.DIFBlockSize]
		n := copy(block[8:], samples[pos:])
		pos += n
	}
}
