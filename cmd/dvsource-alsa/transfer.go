// File: cmd/dvsource-alsa/transfer.go
// The capture-fill-send loop, grounded directly on transfer_frames() in
// dvsource-alsa.c: keep a software ring of captured PCM samples sized to
// cover both the requested delay and one hardware period, read from ALSA
// until enough samples are buffered for the next video frame's audio
// block, stamp a dummy black-video DV frame with that audio, write it to
// the mixer connection, and shift the remaining samples down for the next
// iteration.
// License: Apache-2.0

package main

import (
	"fmt"
	"io"

	"github.com/dvswitch/mixer-core/internal/alsa"
	"github.com/dvswitch/mixer-core/internal/diag"
	"github.com/dvswitch/mixer-core/internal/dv"
	"github.com/dvswitch/mixer-core/internal/frame"
)

// transferFrames runs until writing to w or reading from capture fails (or
// no audio frame count exists for system/rate), matching the original's
// exit(1)-on-failure behavior by returning that error to the caller.
func transferFrames(w io.Writer, system frame.System, rate dv.SampleRate, capture *alsa.Capture, delayFrames int, log *diag.Logger) error {
	bufferFrames := delayFrames
	if bufferFrames < 2000 {
		bufferFrames = 2000
	}
	bufferFrames += capture.PeriodFrames() - 1

	samples := make([]int16, alsa.Channels*bufferFrames)
	avail := 0

	buf := make([]byte, frame.SizeForSystem(system))
	dv.FillDummyFrame(buf, system)

	var serialNum uint64
	for {
		frameCount := dv.AudioFrameCount(system, rate, serialNum)
		if frameCount == 0 {
			return fmt.Errorf("transfer: no audio frame count for this system/rate")
		}

		for avail < delayFrames || avail < frameCount {
			n, err := capture.ReadInto(samples[alsa.Channels*avail:], log.Warnf)
			if err != nil {
				return fmt.Errorf("capture: %w", err)
			}
			avail += n
		}

		dv.SetAudioBlock(buf, system, int16SliceToBytes(samples[:alsa.Channels*frameCount]))

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write: %w", err)
		}

		copy(samples, samples[alsa.Channels*frameCount:alsa.Channels*avail])
		avail -= frameCount
		serialNum++
	}
}

func int16SliceToBytes(s []int16) []byte {
	b := make([]byte, len(s)*2)
	for i, v := range s {
		b[2*i] = byte(v)
		b[2*i+1] = byte(v >> 8)
	}
	return b
}
