package config

import (
	"log/slog"
	"sync"
)

// Store holds the live settings record and persists every change.
type Store struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	current Settings
}

// NewStore loads path and returns a store seeded with its contents.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:    path,
		logger:  logger,
		current: Load(path, logger),
	}
}

func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a copy of the current settings.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies fn to a copy of the settings, normalizes and persists it.
// The in-memory record is updated even when saving fails.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	s.mu.Lock()
	next := s.current
	fn(&next)
	next.Normalize()
	s.current = next
	s.mu.Unlock()

	return next, s.save(next)
}

// Reset restores defaults and returns the keys that changed.
func (s *Store) Reset() ([]string, Settings, error) {
	defaults := Defaults()

	s.mu.Lock()
	changed := Diff(s.current, defaults)
	s.current = defaults
	s.mu.Unlock()

	return changed, defaults, s.save(defaults)
}

// Reload re-reads the file and returns the keys that differ from memory.
func (s *Store) Reload() ([]string, Settings) {
	loaded := Load(s.path, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()
	changed := Diff(s.current, loaded)
	if len(changed) > 0 {
		s.current = loaded
	}
	return changed, s.current
}

// Save persists the current record.
func (s *Store) Save() error {
	return s.save(s.Snapshot())
}

func (s *Store) save(settings Settings) error {
	if s.path == "" {
		s.logger.Warn("cannot save settings, file path is not available")
		return nil
	}
	if err := Save(s.path, settings); err != nil {
		s.logger.Error("failed to save settings", "path", s.path, "err", err)
		return err
	}
	return nil
}
