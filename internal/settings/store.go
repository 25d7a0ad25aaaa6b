package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Crypto90/nowplayingd/internal/domain"
	"go.uber.org/zap"
)

// FileStore persists settings as a small JSON file. Writes go to a
// temporary file in the same directory followed by a rename, so a crash
// mid-write leaves the previous file intact.
type FileStore struct {
	logger *zap.Logger
	path   string
}

// NewFileStore creates a store backed by the given path
func NewFileStore(logger *zap.Logger, path string) *FileStore {
	return &FileStore{logger: logger, path: path}
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the persisted settings. A missing, unreadable, or corrupt
// file yields defaults and is never an error.
func (s *FileStore) Load() domain.Settings {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read settings file, using defaults",
				zap.String("path", s.path),
				zap.Error(err))
		}
		return domain.DefaultSettings()
	}

	var loaded domain.Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("Corrupt settings file, using defaults",
			zap.String("path", s.path),
			zap.Error(err))
		return domain.DefaultSettings()
	}

	if !loaded.Layout.Valid() {
		loaded.Layout = domain.LayoutHorizontal
	}
	return loaded
}

// Save persists the settings atomically
func (s *FileStore) Save(settings domain.Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp settings file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	s.logger.Debug("Settings saved", zap.String("path", s.path))
	return nil
}
