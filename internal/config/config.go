// Package config implements the ambient on-disk configuration layer:
// a YAML file under the user's config directory, loaded at startup and
// saved atomically (write to a temp file, then rename) whenever settings
// change.
//
// Grounded on e1z0-QAnotherRTSP/src/config.go: the same
// configDir/settingsFile layout under ~/.config/<app>, the same
// tmp-file-then-rename save discipline, and the same yaml.v2 library.
// FileConfig itself is new (the teacher's AppConfig is a flat list of
// camera windows; this is a single source's player defaults plus
// recording/device settings matching SPEC_FULL.md's domain stack), but
// the persistence mechanics are carried over unchanged.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v2"
)

const appName = "avplayer"

// RecordingConfig mirrors the recorder.Config fields a user would want
// to persist between runs.
type RecordingConfig struct {
	OutputDir      string `yaml:"output_dir,omitempty"`
	FilenamePrefix string `yaml:"filename_prefix,omitempty"`
	MaxClipMinutes int    `yaml:"max_clip_minutes,omitempty"`
}

// FileConfig is the on-disk settings file: player defaults that survive
// across runs. It is intentionally separate from player.Config, which
// holds the live, atomically-updated runtime knobs — FileConfig is only
// ever read/written on the main goroutine around startup and explicit
// save points.
type FileConfig struct {
	LastURL         string          `yaml:"last_url,omitempty"`
	Volume          float64         `yaml:"volume,omitempty"`
	Muted           bool            `yaml:"muted,omitempty"`
	Loop            bool            `yaml:"loop,omitempty"`
	InputFormatHint string          `yaml:"input_format_hint,omitempty"`
	Recording       RecordingConfig `yaml:"recording,omitempty"`
	Playlist        []string        `yaml:"playlist,omitempty"`
}

// Default returns a FileConfig with sane out-of-the-box values.
func Default() FileConfig {
	return FileConfig{Volume: 1.0}
}

// Store wraps one on-disk settings file with the load/save discipline
// and guards concurrent saves with a mutex, matching the teacher's
// package-level configMu.
type Store struct {
	mu   sync.Mutex
	path string
}

// DefaultPath returns ~/.config/avplayer/settings.yml, creating the
// directory if needed.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.yml"), nil
}

// NewStore returns a Store bound to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads and parses the settings file. A missing file is not an
// error: it returns Default().
func (s *Store) Load() (FileConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return FileConfig{}, err
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// Save writes cfg atomically: encode to a temp file beside the real
// path, then rename over it, so a crash mid-write never corrupts the
// previous good settings file.
func (s *Store) Save(cfg FileConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	if err := enc.Encode(&cfg); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path)
}
