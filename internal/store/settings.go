package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/edvin/opsdash/internal/model"
)

// SettingsStore persists the operator-editable backup settings as one
// JSON document. Saves write a temp file and rename it into place so a
// crash mid-write never leaves a truncated document.
type SettingsStore struct {
	path string
	mu   sync.Mutex
}

func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Load returns the stored settings, or the defaults if none exist yet.
func (s *SettingsStore) Load() (model.BackupSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.DefaultBackupSettings(), nil
	}
	if err != nil {
		return model.BackupSettings{}, fmt.Errorf("read settings: %w", err)
	}

	settings := model.DefaultBackupSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return model.BackupSettings{}, fmt.Errorf("parse settings %s: %w", s.path, err)
	}
	return settings, nil
}

// Save replaces the stored settings.
func (s *SettingsStore) Save(settings model.BackupSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
