package dv

import (
	"testing"

	"github.com/dvswitch/mixer-core/internal/frame"
)

func TestParseHeaderRoundTripsSystem(t *testing.T) {
	for _, sys := range []frame.System{frame.System525_60, frame.System625_50} {
		buf := make([]byte, frame.SizeForSystem(sys))
		FillDummyFrame(buf, sys)

		got, err := ParseHeader(buf[:frame.DIFSequenceSize])
		if err != nil {
			t.Fatalf("ParseHeader(%v): %v", sys, err)
		}
		if got != sys {
			t.Errorf("ParseHeader round-trip = %v, want %v", got, sys)
		}
	}
}

func TestParseHeaderRejectsNonHeaderBlock(t *testing.T) {
	buf := make([]byte, frame.DIFSequenceSize)
	buf[0] = 1 << 5 // subcode section id, not a header block
	if _, err := ParseHeader(buf); err == nil {
		t.Fatal("expected an error for a non-header first block")
	}
}

func TestParseHeaderRejectsShortBuffer(t *testing.T) {
	if _, err := ParseHeader([]byte{0, 0}); err == nil {
		t.Fatal("expected an error for a too-short buffer")
	}
}

func TestParseSampleRate(t *testing.T) {
	cases := map[int]SampleRate{32000: SampleRate32000, 44100: SampleRate44100, 48000: SampleRate48000}
	for hz, want := range cases {
		got, err := ParseSampleRate(hz)
		if err != nil || got != want {
			t.Errorf("ParseSampleRate(%d) = %v, %v; want %v, nil", hz, got, err, want)
		}
	}
	if _, err := ParseSampleRate(22050); err == nil {
		t.Fatal("expected an error for an unsupported sample rate")
	}
}

func TestAudioFrameCountCyclesAndSumsToRate(t *testing.T) {
	cycle := audioFrameCounts[frame.System525_60][SampleRate48000]
	total := 0
	for i := 0; i < cycle.Len(); i++ {
		total += AudioFrameCount(frame.System525_60, SampleRate48000, uint64(i))
	}
	// Five frames at 30000/1001fps span ~0.1668s; at 48kHz that's ~8008 samples.
	if total < 7900 || total > 8100 {
		t.Errorf("525/60 48kHz cycle sums to %d samples over %d frames, want close to 8008", total, cycle.Len())
	}

	if got := AudioFrameCount(frame.System625_50, SampleRate48000, 0); got != 1920 {
		t.Errorf("625/50 48kHz frame count = %d, want 1920", got)
	}
	if got := AudioFrameCount(frame.System625_50, SampleRate48000, 1); got != 1920 {
		t.Errorf("625/50 cycle length must be 1 (every frame the same count), got %d at index 1", got)
	}
}

func TestSetAudioBlockWritesSamplesIntoAudioBlocks(t *testing.T) {
	sys := frame.System625_50
	buf := make([]byte, frame.SizeForSystem(sys))
	FillDummyFrame(buf, sys)

	samples := make([]byte, 100)
	for i := range samples {
		samples[i] = byte(i + 1)
	}
	SetAudioBlock(buf, sys, samples)

	found := false
	for off := 0; off+frame.DIFBlockSize <= len(buf); off += frame.DIFBlockSize {
		blockInSeq := (off % frame.DIFSequenceSize) / frame.DIFBlockSize
		if sectionIDForBlock(blockInSeq) == 3 && buf[off+8] == 1 {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("SetAudioBlock did not write sample bytes into any audio DIF block")
	}
}
