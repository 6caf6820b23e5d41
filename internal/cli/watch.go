package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce absorbs the burst of events editors emit for one save.
const debounce = 150 * time.Millisecond

// Watch calls render once and again after every change to path, until ctx
// is done. Render errors are reported and watching continues.
func Watch(ctx context.Context, path string, out io.Writer, logger *slog.Logger, render func(ctx context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files on save, so the directory is watched.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	run := func() {
		if err := render(ctx); err != nil {
			logger.Error("render failed", "file", path, "error", err)
			printSystemMessage(out, "%s", Friendly(err))
		}
		printSystemMessage(out, "Waiting for changes to '%s'...", path)
	}
	run()

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("change detected", "event", event.String())
			timer = time.After(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		case <-timer:
			timer = nil
			printSystemMessage(out, "Change detected in '%s'.", path)
			run()
		}
	}
}
