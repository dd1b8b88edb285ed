package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/teleop/logging"
)

// DefaultWatchDelay is how long the watcher waits for writes to settle before reading the file.
const DefaultWatchDelay = 200 * time.Millisecond

// A Watcher delivers a freshly read config every time its file changes. Invalid configs are
// logged and skipped.
type Watcher struct {
	path    string
	configs chan *Config
	logger  logging.Logger

	watcher                 *fsnotify.Watcher
	cancelCtx               context.Context
	cancel                  func()
	activeBackgroundWorkers sync.WaitGroup
}

// NewWatcher starts watching the config file at path. A zero delay uses DefaultWatchDelay.
func NewWatcher(path string, delay time.Duration, logger logging.Logger) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultWatchDelay
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create file watcher")
	}
	// Editors often replace the file rather than write it, so watch the directory.
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		return nil, multierr.Combine(errors.Wrapf(err, "cannot watch %q", path), fsWatcher.Close())
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:      absPath,
		configs:   make(chan *Config, 1),
		logger:    logger,
		watcher:   fsWatcher,
		cancelCtx: cancelCtx,
		cancel:    cancel,
	}

	debounced := debounce.New(delay)
	w.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		w.watch(debounced)
	}, w.activeBackgroundWorkers.Done)
	return w, nil
}

// Config returns the channel new configs are delivered on. Only the latest unread config is
// kept.
func (w *Watcher) Config() <-chan *Config {
	return w.configs
}

func (w *Watcher) watch(debounced func(f func())) {
	for {
		select {
		case <-w.cancelCtx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			debounced(w.reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	if w.cancelCtx.Err() != nil {
		return
	}
	cfg, err := Read(w.path, w.logger)
	if err != nil {
		w.logger.Errorw("ignoring invalid config change", "path", w.path, "error", err)
		return
	}
	w.logger.Infow("config changed", "path", w.path)

	// Replace any config the reader has not picked up yet.
	select {
	case <-w.configs:
	default:
	}
	select {
	case w.configs <- cfg:
	case <-w.cancelCtx.Done():
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.activeBackgroundWorkers.Wait()
	return err
}
