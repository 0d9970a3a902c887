package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch loads path, then reloads it whenever it is written or replaced,
// until ctx is done. It blocks; run it on its own goroutine.
//
// The parent directory is watched rather than the file, so editors that save
// by renaming a temporary file are picked up. Reloads merge into the store:
// a key deleted from the file keeps its last value. Reload failures are
// reported to the OnReload hook and do not stop the watch.
func (s *Store) Watch(ctx context.Context, path string) error {
	if err := s.LoadFile(path); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				s.reloaded(path, s.LoadFile(path))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.reloaded(path, err)
		}
	}
}

func (s *Store) reloaded(path string, err error) {
	if s.onReload != nil {
		s.onReload(path, err)
	}
}
