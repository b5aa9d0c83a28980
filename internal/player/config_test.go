package player

import "testing"

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()
	if c.Volume() != 1.0 {
		t.Fatalf("default volume = %v, want 1.0", c.Volume())
	}
	if c.Speed() != 1.0 {
		t.Fatalf("default speed = %v, want 1.0", c.Speed())
	}
	if c.Muted() {
		t.Fatalf("default muted = true, want false")
	}
	if c.Loop() {
		t.Fatalf("default loop = true, want false")
	}
}

func TestConfigSettersRoundTrip(t *testing.T) {
	c := NewConfig()
	c.SetVolume(0.5)
	c.SetSpeed(2.0)
	c.SetMuted(true)
	c.SetLoop(true)

	if c.Volume() != 0.5 || c.Speed() != 2.0 || !c.Muted() || !c.Loop() {
		t.Fatalf("setters did not round-trip: volume=%v speed=%v muted=%v loop=%v",
			c.Volume(), c.Speed(), c.Muted(), c.Loop())
	}
}

func TestNewConfigSeekAndTrackModeDefaults(t *testing.T) {
	c := NewConfig()
	if c.SeekStep() != 10.0 {
		t.Fatalf("default seek step = %v, want 10.0", c.SeekStep())
	}
	if c.TrackMode() {
		t.Fatalf("default track mode = true, want false")
	}
	if !c.AutoReadNext() {
		t.Fatalf("default auto_read_next_media = false, want true")
	}
}

func TestSeekStepTrackModeAutoNextRoundTrip(t *testing.T) {
	c := NewConfig()
	c.SetSeekStep(5.0)
	c.SetTrackMode(true)
	c.SetAutoReadNext(false)

	if c.SeekStep() != 5.0 || !c.TrackMode() || c.AutoReadNext() {
		t.Fatalf("setters did not round-trip: seekStep=%v trackMode=%v autoNext=%v",
			c.SeekStep(), c.TrackMode(), c.AutoReadNext())
	}
}

func TestResolveSizeKeepRawRatioLetterboxes(t *testing.T) {
	w, h := resolveSize(VideoSize{Width: 640, Height: 640, Mode: VideoSizeKeepRawRatio}, 1280, 720, 0, 0)
	if w != 640 {
		t.Fatalf("width = %d, want 640 (constrained dimension)", w)
	}
	if h != 360 {
		t.Fatalf("height = %d, want 360 (16:9 preserved)", h)
	}
}

func TestResolveSizeAutoFitIgnoresAspect(t *testing.T) {
	w, h := resolveSize(VideoSize{Width: 300, Height: 300, Mode: VideoSizeAutoFit}, 1280, 720, 0, 0)
	if w != 300 || h != 300 {
		t.Fatalf("resolveSize(AutoFit) = (%d, %d), want (300, 300)", w, h)
	}
}

func TestAdjustForSARStretchesNonSquareWidth(t *testing.T) {
	w, h := adjustForSAR(720, 576, 16, 15) // common DVD PAL SAR
	if h != 576 {
		t.Fatalf("height should be unaffected by SAR, got %d", h)
	}
	if w == 720 {
		t.Fatalf("width should be adjusted for a non-square SAR, stayed at %d", w)
	}
}

func TestAdjustForSARNoOpWhenSquare(t *testing.T) {
	w, h := adjustForSAR(1920, 1080, 1, 1)
	if w != 1920 || h != 1080 {
		t.Fatalf("square SAR should be a no-op, got (%d, %d)", w, h)
	}
}
