package audiosink

import (
	"testing"

	"github.com/dvorak-labs/avplayer/internal/avclock"
)

func TestPushUnityVolumeIsUnmodified(t *testing.T) {
	s := New(avclock.New(), 8000, 1, 1.0)
	pcm := []byte{0x34, 0x12, 0xCD, 0xAB}
	s.Push(pcm, 0)

	out := make([]byte, len(pcm))
	n := s.rb.Extract(out, len(out))
	if n != len(pcm) {
		t.Fatalf("extracted %d bytes, want %d", n, len(pcm))
	}
	for i := range pcm {
		if out[i] != pcm[i] {
			t.Fatalf("byte %d = %#x, want %#x (unity volume must not mix)", i, out[i], pcm[i])
		}
	}
}

func TestPushMutedProducesSilence(t *testing.T) {
	s := New(avclock.New(), 8000, 1, 1.0)
	s.SetMuted(true)
	pcm := []byte{0x34, 0x12, 0xCD, 0xAB}
	s.Push(pcm, 0)

	out := make([]byte, len(pcm))
	s.rb.Extract(out, len(out))
	for i, b := range out {
		if b != 0 {
			t.Fatalf("byte %d = %#x, want 0 while muted", i, b)
		}
	}
}

func TestScaleS16HalvesAmplitude(t *testing.T) {
	// 1000 as little-endian int16.
	in := []byte{0xE8, 0x03}
	out := scaleS16(in, 0.5)
	got := int16(uint16(out[0]) | uint16(out[1])<<8)
	if got != 500 {
		t.Fatalf("scaled sample = %d, want 500", got)
	}
}

func TestScaleS16ClampsToRange(t *testing.T) {
	in := []byte{0xFF, 0x7F} // 32767
	out := scaleS16(in, 4.0)
	got := int16(uint16(out[0]) | uint16(out[1])<<8)
	if got != 32767 {
		t.Fatalf("scaled sample = %d, want clamp at 32767", got)
	}
}

func TestReadFillsSilenceOnUnderrun(t *testing.T) {
	s := New(avclock.New(), 8000, 1, 1.0)
	p := make([]byte, 16)
	n, err := s.Read(p)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if n != len(p) {
		t.Fatalf("Read returned %d, want %d (always fills the buffer)", n, len(p))
	}
	for i, b := range p {
		if b != 0 {
			t.Fatalf("byte %d = %#x, want 0 on an empty ring buffer", i, b)
		}
	}
}

func TestPushAnchorsClockOnFramePTS(t *testing.T) {
	clock := avclock.New()
	s := New(clock, 8000, 1, 1.0)
	// Push a frame stamped at 30s, then read exactly that frame's bytes
	// back out. The clock should land at ~31s (anchored on 30s), not at
	// bytesConsumed/bytesPerSec (which would read ~1s from a fresh sink).
	pcm := make([]byte, 8000*2) // 1s of audio at 8000 samples/s, 2 bytes/sample
	s.Push(pcm, 30.0)

	out := make([]byte, len(pcm))
	s.Read(out)
	got := clock.Get()
	// anchor(30) + bytes-since-anchor/bytesPerSec(1s) == 31s at the end
	// of the frame, not ~1s (what bytesConsumed/bytesPerSec alone would
	// give on a freshly constructed sink).
	if got < 30.0 || got > 31.5 {
		t.Fatalf("clock = %v, want ~31s (anchored on the pushed frame's pts)", got)
	}
}

func TestReadAdvancesClockMonotonically(t *testing.T) {
	clock := avclock.New()
	s := New(clock, 8000, 1, 1.0)
	p := make([]byte, 8000*2) // ~1 second of silence
	s.Read(p)
	first := clock.Get()
	s.Read(p)
	second := clock.Get()
	if second < first {
		t.Fatalf("clock went backwards: %v then %v", first, second)
	}
}
