package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce collapses the bursts of events editors produce on save
const DefaultWatchDebounce = 500 * time.Millisecond

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	logger   *slog.Logger
	debounce time.Duration

	onReload func(*Config)
	onError  func(error)

	mu    sync.Mutex
	timer *time.Timer
}

// WatcherOptions configures NewWatcher
type WatcherOptions struct {
	Logger   *slog.Logger
	Debounce time.Duration
	// OnReload receives every config that loads successfully
	OnReload func(*Config)
	// OnError receives load failures, the previous config stays in use
	OnError func(error)
}

// NewWatcher creates a watcher for the config file at path
func NewWatcher(path string, opts WatcherOptions) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultWatchDebounce
	}
	if opts.OnReload == nil {
		opts.OnReload = func(*Config) {}
	}
	if opts.OnError == nil {
		opts.OnError = func(error) {}
	}

	return &Watcher{
		watcher:  watcher,
		path:     filepath.Clean(path),
		logger:   opts.Logger,
		debounce: opts.Debounce,
		onReload: opts.OnReload,
		onError:  opts.OnError,
	}, nil
}

// Start watches the directory of the config file, so files replaced by
// rename are still seen, until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch config file: %w", err)
	}

	w.logger.Info("started watching config file", "path", w.path)
	go w.watch(ctx)
	return nil
}

func (w *Watcher) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("config watcher stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.logger.Debug("config file changed", "op", event.Op.String(), "path", event.Name)
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "err", err)
		}
	}
}

// schedule reloads once no change happened for the debounce duration
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, _, err := Load(w.path)
	if err != nil {
		w.logger.Error("failed to reload config", "err", err)
		w.onError(err)
		return
	}

	w.logger.Info("configuration reloaded", "path", w.path, "tags", len(cfg.Tags))
	w.onReload(cfg)
}

// Stop stops watching the config file
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
