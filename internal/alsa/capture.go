// File: internal/alsa/capture.go
// Package alsa wraps github.com/yobert/alsa's pure-Go, ioctl-based PCM
// binding into the narrow capture interface the transfer loop in
// cmd/dvsource-alsa needs: open a capture device at a negotiated
// channel/format/rate, read interleaved S16_LE frames, and recover from an
// underrun the way transfer_frames does in dvsource-alsa.c (snd_pcm_prepare
// then retry, with one WARN line per recovery). yobert/alsa was picked
// over a cgo asoundlib binding because it matches this repo's preference
// for direct, cgo-free syscall-level control (see internal/netio/listen.go).
// License: Apache-2.0

package alsa

import (
	"fmt"
	"strings"

	"github.com/yobert/alsa"

	"github.com/dvswitch/mixer-core/internal/dv"
	"github.com/dvswitch/mixer-core/internal/frame"
)

// Channels is the fixed interleaved channel count the original tool always
// requests (dvsource-alsa.c: snd_pcm_hw_params_set_channels(..., 2)).
const Channels = 2

// Capture is an opened, negotiated ALSA PCM capture stream.
type Capture struct {
	dev        *alsa.Device
	periodSize int
}

// Open finds and opens a capture device. deviceHint selects a specific
// card/device name; "default" (or "") picks the first capture-capable PCM
// device enumerated, matching the ALSA "default" device's usual role. The
// hardware period size is negotiated to the first entry of system/rate's
// audio-frames-per-video-frame cycle, matching
// hw_frame_count = audio_frame_counts[sample_rate_code].std_cycle[0] in
// the original's main().
func Open(deviceHint string, system frame.System, rate dv.SampleRate) (*Capture, error) {
	cards, err := alsa.OpenCards()
	if err != nil {
		return nil, fmt.Errorf("alsa: open cards: %w", err)
	}

	var chosen *alsa.Device
	for _, card := range cards {
		devices, err := card.Devices()
		if err != nil {
			continue
		}
		for _, dev := range devices {
			if dev.Type != alsa.PCM || !dev.Record {
				continue
			}
			if deviceHint != "" && deviceHint != "default" && !strings.Contains(dev.String(), deviceHint) {
				continue
			}
			chosen = dev
			break
		}
		if chosen != nil {
			break
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("alsa: no capture device found for %q", deviceHint)
	}

	if err := chosen.Open(); err != nil {
		return nil, fmt.Errorf("alsa: open %s: %w", chosen.String(), err)
	}

	if _, err := chosen.NegotiateChannels(Channels); err != nil {
		chosen.Close()
		return nil, fmt.Errorf("alsa: negotiate channels: %w", err)
	}
	if _, err := chosen.NegotiateRate(int(rate)); err != nil {
		chosen.Close()
		return nil, fmt.Errorf("alsa: negotiate rate %d: %w", rate, err)
	}
	if _, err := chosen.NegotiateFormat(alsa.S16_LE); err != nil {
		chosen.Close()
		return nil, fmt.Errorf("alsa: negotiate format: %w", err)
	}

	wantPeriod := dv.AudioFrameCount(system, rate, 0)
	if wantPeriod == 0 {
		chosen.Close()
		return nil, fmt.Errorf("alsa: no audio frame count for system %v rate %d", system, rate)
	}
	periodSize, err := chosen.NegotiatePeriodSize(wantPeriod, wantPeriod)
	if err != nil {
		chosen.Close()
		return nil, fmt.Errorf("alsa: negotiate period size: %w", err)
	}
	if _, err := chosen.NegotiateBufferSize(periodSize*2, periodSize*4); err != nil {
		chosen.Close()
		return nil, fmt.Errorf("alsa: negotiate buffer size: %w", err)
	}

	if err := chosen.Prepare(); err != nil {
		chosen.Close()
		return nil, fmt.Errorf("alsa: prepare: %w", err)
	}

	return &Capture{dev: chosen, periodSize: periodSize}, nil
}

// PeriodFrames is the hardware period size, in frames, negotiated at Open
// time -- the transfer loop's nominal read granularity (hw_frame_count in
// the original).
func (c *Capture) PeriodFrames() int { return c.periodSize }

// ReadInto reads up to len(samples)/Channels frames of interleaved S16
// samples, blocking until at least one period is available. On every
// underrun it recovers via Prepare and retries, logging each recovery
// through warnf exactly as transfer_frames's "Failing to keep up with
// audio source" WARN line does.
func (c *Capture) ReadInto(samples []int16, warnf func(format string, args ...any)) (int, error) {
	raw := make([]byte, len(samples)*2)
	for {
		n, err := c.dev.Read(raw)
		if err == nil {
			frames := n / (Channels * 2)
			bytesToInt16Samples(raw[:n], samples)
			return frames, nil
		}
		if isUnderrun(err) {
			if perr := c.dev.Prepare(); perr == nil {
				warnf("Failing to keep up with audio source")
				continue
			}
		}
		return 0, fmt.Errorf("alsa: read: %w", err)
	}
}

// isUnderrun reports whether err looks like the PCM underrun (-EPIPE)
// condition the original recovers from via snd_pcm_prepare.
func isUnderrun(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "pipe") ||
		strings.Contains(strings.ToLower(err.Error()), "underrun") ||
		strings.Contains(strings.ToLower(err.Error()), "overrun")
}

// bytesToInt16Samples decodes little-endian S16 samples from raw into out.
func bytesToInt16Samples(raw []byte, out []int16) {
	for i := 0; i+1 < len(raw); i += 2 {
		out[i/2] = int16(uint16(raw[i]) | uint16(raw[i+1])<<8)
	}
}

// Close releases the device.
func (c *Capture) Close() error {
	return c.dev.Close()
}
