package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.yml"))
	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("Load on a missing file returned error: %v", err)
	}
	if cfg.Volume != 1.0 {
		t.Fatalf("default volume = %v, want 1.0", cfg.Volume)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	s := NewStore(path)

	cfg := FileConfig{
		LastURL: "rtsp://example.com/stream",
		Volume:  0.75,
		Muted:   true,
		Loop:    true,
		Playlist: []string{"a.mp4", "b.mp4"},
	}
	if err := s.Save(cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.LastURL != cfg.LastURL || got.Volume != cfg.Volume || got.Muted != cfg.Muted || got.Loop != cfg.Loop {
		t.Fatalf("round-tripped config = %+v, want %+v", got, cfg)
	}
	if len(got.Playlist) != 2 || got.Playlist[0] != "a.mp4" || got.Playlist[1] != "b.mp4" {
		t.Fatalf("round-tripped playlist = %v, want [a.mp4 b.mp4]", got.Playlist)
	}
}

func TestSaveLeavesNoTempFileBehind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	s := NewStore(path)
	if err := s.Save(Default()); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if _, err := s.Load(); err != nil {
		t.Fatalf("Load after Save returned error: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file %s.tmp still present after Save (stat err: %v)", path, err)
	}
}
