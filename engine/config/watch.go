package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last file event before reloading.
const DefaultDebounce = 100 * time.Millisecond

type watchOptions struct {
	debounce time.Duration
	logger   *slog.Logger
}

// WatchOption is a functional option for Watch.
type WatchOption func(*watchOptions)

// WithDebounce sets the quiet period after the last event before the file is reloaded.
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithLogger sets the logger used to report rejected reloads. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) WatchOption {
	return func(o *watchOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Watch reloads the config file whenever it is written and hands every valid result to fn.
// Invalid or unreadable configs are logged and skipped, so fn only ever sees configs that
// pass Validate. Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file itself so that editors which save by
// renaming a temp file over the old one keep triggering reloads.
//
// Parameters:
//   - ctx: cancels the watch
//   - path: the config file to watch
//   - fn: called from the watch goroutine with each new valid config
//   - opts: debounce and logger options
//
// Returns:
//   - error: nil when ctx ends the watch, otherwise the watcher setup or runtime error
func Watch(ctx context.Context, path string, fn func(Config), opts ...WatchOption) error {
	o := watchOptions{debounce: DefaultDebounce, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("component", "config", "path", path)

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(o.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(o.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)
		case <-timer.C:
			cfg, err := Load(abs)
			if err != nil {
				logger.Warn("config reload rejected", "error", err)
				continue
			}
			logger.Info("config reloaded")
			fn(cfg)
		}
	}
}
