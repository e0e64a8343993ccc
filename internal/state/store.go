// Package state persists per-URL alert records between monitoring runs.
//
// The whole mapping is read once when a run starts and rewritten once when
// it ends. Runs are expected to be serialized by the external scheduler, so
// no locking is done.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"plp-monitor/internal/model"
)

// FileStore stores the alert state as a single JSON object on disk.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore creates a FileStore backed by path.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With().Str("component", "state-store").Logger(),
	}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the alert state. A missing file yields an empty state.
func (s *FileStore) Load() (model.AlertState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug().Str("path", s.path).Msg("state file not found, starting empty")
			return model.NewAlertState(), nil
		}
		return nil, fmt.Errorf("failed to read state file %s: %w", s.path, err)
	}

	state := model.NewAlertState()
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", s.path, err)
	}
	if state == nil {
		// a "null" document
		state = model.NewAlertState()
	}

	// "null" entries carry no information
	for url, rec := range state {
		if rec == nil {
			delete(state, url)
		}
	}

	s.logger.Debug().Str("path", s.path).Int("records", len(state)).Msg("state loaded")
	return state, nil
}

// Save overwrites the state file with the given state. The new content is
// written to a temporary file in the same directory and renamed into place.
func (s *FileStore) Save(state model.AlertState) error {
	if state == nil {
		state = model.NewAlertState()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file %s: %w", s.path, err)
	}

	s.logger.Debug().Str("path", s.path).Int("records", len(state)).Msg("state saved")
	return nil
}
