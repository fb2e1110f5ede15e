package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Default file names inside the data directory.
const (
	profileFile  = "voicebuddy_profile.json"
	settingsFile = "voicebuddy_settings.json"
)

// Store reads and writes the profile and settings documents inside one
// data directory. The directory is created on first write.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// LoadProfile reads the profile document. A missing file yields an empty
// profile with no error; a present but unreadable file is an error.
func (s *Store) LoadProfile() (*Profile, error) {
	var p Profile
	if err := s.read(profileFile, &p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Profile{}, nil
		}
		return nil, fmt.Errorf("profile: load profile: %w", err)
	}
	return &p, nil
}

// SaveProfile writes the profile document atomically.
func (s *Store) SaveProfile(p *Profile) error {
	if err := s.write(profileFile, p); err != nil {
		return fmt.Errorf("profile: save profile: %w", err)
	}
	return nil
}

// LoadSettings reads the settings document. A missing file yields
// [DefaultSettings] with no error.
func (s *Store) LoadSettings() (Settings, error) {
	var cfg Settings
	if err := s.read(settingsFile, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("profile: load settings: %w", err)
	}
	return cfg, nil
}

// SaveSettings writes the settings document atomically.
func (s *Store) SaveSettings(cfg Settings) error {
	if err := s.write(settingsFile, cfg); err != nil {
		return fmt.Errorf("profile: save settings: %w", err)
	}
	return nil
}

func (s *Store) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// write marshals v and replaces the named file via a temp file plus
// rename, so readers never observe a partial document.
func (s *Store) write(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, name))
}
