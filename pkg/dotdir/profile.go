package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	profileFile = "profile.json"
)

// LoadProfile loads the saved user profile from a target
// .wayfarer/profile.json. Returns nil, nil if no profile has been saved.
// If overrideDir is non-empty, it is used instead of the default
// ~/.wayfarer/ location.
func (m *Manager) LoadProfile(overrideDir string) (map[string]string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, profileFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	profile := map[string]string{}
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}

	return profile, nil
}

// SaveProfile persists the user profile to a target .wayfarer/profile.json.
func (m *Manager) SaveProfile(profile map[string]string, overrideDir string) error {
	if profile == nil {
		return errors.New("cannot save nil profile")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}

	path := filepath.Join(dir, profileFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}

	return nil
}

// ClearProfile removes the saved profile file. Returns nil if the file
// doesn't exist (already cleared).
func (m *Manager) ClearProfile(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, profileFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing profile: %w", err)
	}

	return nil
}
