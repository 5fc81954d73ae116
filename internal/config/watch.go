package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// Watch reloads the store whenever the settings file is edited outside the
// app and calls onChange with the keys that changed. It blocks until ctx is
// done. The parent directory is watched so editors that replace the file by
// rename are picked up.
func (s *Store) Watch(ctx context.Context, onChange func(changed []string, settings Settings)) error {
	if s.path == "" {
		return fmt.Errorf("settings path is not available")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", filepath.Dir(s.path), err)
	}

	target := filepath.Clean(s.path)
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	reload := func() {
		changed, settings := s.Reload()
		if len(changed) == 0 {
			return
		}
		s.logger.Info("settings file changed on disk", "keys", changed)
		onChange(changed, settings)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, reload)
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("settings watcher error", "err", err)
		}
	}
}
