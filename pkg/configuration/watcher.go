package configuration

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/smallgears/pkg/errors"
	"github.com/conneroisu/smallgears/pkg/logging"
	"github.com/conneroisu/smallgears/pkg/properties"
)

// ReloadFunc receives a freshly loaded bag each time the watched
// configuration changes.
type ReloadFunc func(ps *properties.Properties)

// Watcher reloads a configuration file into a properties bag whenever the
// file changes. Bursts of writes within the debounce delay cause a single
// reload.
type Watcher struct {
	path   string
	reload ReloadFunc
	delay  time.Duration
	logger logging.Logger
}

// WatcherOption modifies a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits for writes to settle.
func WithDebounce(delay time.Duration) WatcherOption {
	return func(w *Watcher) { w.delay = delay }
}

// WithWatcherLogger sets the watcher's logger.
func WithWatcherLogger(logger logging.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = logger }
}

// NewWatcher creates a watcher for the configuration file at path.
func NewWatcher(path string, reload ReloadFunc, opts ...WatcherOption) *Watcher {
	errors.Require(path != "", errors.ErrCodeEmptyName, "watched path must not be empty")
	errors.RequireNonNil(reload, "reload function")

	w := &Watcher{
		path:   filepath.Clean(path),
		reload: reload,
		delay:  100 * time.Millisecond,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("watcher").With("location", w.path)
	return w
}

// Run loads the file once, then watches it until ctx is done. Failed
// reloads are logged and the previous bag stays in effect.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Unchecked(errors.ErrCodeConfigUnreadable, "cannot watch configuration", err)
	}
	defer fw.Close()

	// watch the directory so that editors replacing the file are seen
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return errors.Unchecked(errors.ErrCodeConfigUnreadable, "cannot watch configuration", err).
			WithContext("location", w.path)
	}

	w.load(ctx)

	changes := make(chan struct{}, 1)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-fw.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return nil
				}
				w.logger.Warn(ctx, err, "watch error")
			}
		}
	})

	g.Go(func() error {
		timer := time.NewTimer(w.delay)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changes:
				timer.Reset(w.delay)
			case <-timer.C:
				w.load(ctx)
			}
		}
	})

	return g.Wait()
}

func (w *Watcher) load(ctx context.Context) {
	ps, err := LoadPropertiesFile(w.path)
	if err != nil {
		w.logger.Warn(ctx, err, "cannot reload configuration")
		return
	}

	w.logger.Debug(ctx, "configuration reloaded", "properties", ps.Size())
	w.reload(ps)
}
