package recorder

import (
	"path/filepath"
	"testing"
	"time"
)

func TestClipPathUsesPrefixAndTimestamp(t *testing.T) {
	dir := t.TempDir()
	r := New(Config{OutputDir: dir, FilenamePrefix: "session"})
	started := time.Date(2026, 7, 31, 14, 5, 9, 0, time.UTC)

	path, err := r.clipPath(started)
	if err != nil {
		t.Fatalf("clipPath returned error: %v", err)
	}
	want := filepath.Join(dir, "session_2026-07-31_14-05-09.mp4")
	if path != want {
		t.Fatalf("clipPath = %q, want %q", path, want)
	}
}

func TestClipPathDefaultsPrefix(t *testing.T) {
	dir := t.TempDir()
	r := New(Config{OutputDir: dir})
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	path, err := r.clipPath(started)
	if err != nil {
		t.Fatalf("clipPath returned error: %v", err)
	}
	if filepath.Base(path) != "clip_2026-01-01_00-00-00.mp4" {
		t.Fatalf("clipPath = %q, want default \"clip\" prefix", path)
	}
}

func TestShouldRotateFalseWhenNotRunning(t *testing.T) {
	r := New(Config{MaxClipDuration: time.Millisecond})
	if r.ShouldRotate() {
		t.Fatalf("ShouldRotate() on a never-started recorder should be false")
	}
}

func TestShouldRotateFalseWhenDisabled(t *testing.T) {
	r := New(Config{})
	r.running = true
	r.started = time.Now().Add(-time.Hour)
	if r.ShouldRotate() {
		t.Fatalf("ShouldRotate() with MaxClipDuration == 0 should always be false")
	}
}

func TestShouldRotateTrueAfterMaxDuration(t *testing.T) {
	r := New(Config{MaxClipDuration: time.Millisecond})
	r.running = true
	r.started = time.Now().Add(-time.Hour)
	if !r.ShouldRotate() {
		t.Fatalf("ShouldRotate() should be true once MaxClipDuration has elapsed")
	}
}

func TestRecordPtsScaleMatchesFramerate(t *testing.T) {
	if recordPtsScale != 4000 {
		t.Fatalf("recordPtsScale = %d, want 4000 (100_000/25 per §4.11)", recordPtsScale)
	}
}

func TestStartArmsOnlyOnce(t *testing.T) {
	r := New(Config{})
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !r.armed {
		t.Fatalf("Start should arm the recorder")
	}
	r.seq = 7
	if err := r.Start(); err != nil {
		t.Fatalf("Start (second call): %v", err)
	}
	if r.seq != 7 {
		t.Fatalf("Start should be a no-op once already armed, seq changed to %d", r.seq)
	}
}

func TestFeedIsNoopWhenNotArmed(t *testing.T) {
	r := New(Config{})
	if err := r.Feed(nil); err != nil {
		t.Fatalf("Feed on an unarmed recorder should be a silent no-op, got %v", err)
	}
}

func TestStopWhenNotRunningIsNoop(t *testing.T) {
	r := New(Config{})
	r.armed = true
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop on a never-opened recorder should be a no-op, got %v", err)
	}
	if r.armed {
		t.Fatalf("Stop should disarm the recorder")
	}
}

func TestAbortWhenNotRunningIsNoop(t *testing.T) {
	r := New(Config{})
	r.armed = true
	r.Abort()
	if r.armed {
		t.Fatalf("Abort should disarm the recorder")
	}
}
