package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is how long the file must stay quiet before it is reloaded.
const debounce = 100 * time.Millisecond

// Watch reloads the config file at path whenever it changes and sends every
// valid result on the returned channel. Edits that fail to load are passed
// to onError and skipped. The channel is closed when ctx ends.
func Watch(ctx context.Context, path string, onError func(error)) (<-chan Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	// The directory is watched because editors often replace the file.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch config: %w", err)
	}

	if onError == nil {
		onError = func(error) {}
	}

	out := make(chan Config, 1)
	go func() {
		defer close(out)
		defer w.Close()

		// Reload once the burst of events for a save has settled.
		timer := time.NewTimer(debounce)
		timer.Stop()
		var pending <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				timer.Reset(debounce)
				pending = timer.C
			case <-pending:
				pending = nil
				cfg, err := LoadFile(abs)
				if err != nil {
					onError(err)
					continue
				}
				select {
				case out <- cfg:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				onError(err)
			}
		}
	}()

	return out, nil
}
