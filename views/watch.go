package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when a
// non-positive debounce is given.
const DefaultDebounce = 100 * time.Millisecond

// ErrNoPaths is returned by WatchFiles when there is nothing
// to watch.
var ErrNoPaths = errors.New("no paths to watch")

const relevantOps = fsnotify.Create |
	fsnotify.Write |
	fsnotify.Remove |
	fsnotify.Rename

// WatchFiles calls onChange with the sorted absolute paths
// of the files that changed, once per burst of events
// separated by at least debounce. The parent directories are
// watched so that files replaced by rename are still seen.
// It blocks until ctx is done.
func WatchFiles(
	ctx context.Context,
	paths []string,
	debounce time.Duration,
	logger *slog.Logger,
	onChange func([]string),
) error {
	const errCtx = "watching files"

	if len(paths) == 0 {
		return fmt.Errorf("%s: %w", errCtx, ErrNoPaths)
	}

	files := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{}, len(paths))

	for _, pa := range paths {
		abs, err := filepath.Abs(pa)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	err := watch(
		ctx,
		slices.Sorted(maps.Keys(dirs)),
		func(path string) bool {
			_, ok := files[path]
			return ok
		},
		debounce,
		logger,
		onChange,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// watch runs the fsnotify loop over dirs. Events for paths
// rejected by match are ignored.
func watch(
	ctx context.Context,
	dirs []string,
	match func(string) bool,
	debounce time.Duration,
	logger *slog.Logger,
	onChange func([]string),
) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	defer func() {
		if cerr := watcher.Close(); cerr != nil {
			logger.Warn("closing watcher", "error", cerr)
		}
	}()

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("adding %s: %w", dir, err)
		}

		logger.Debug("watching directory", "dir", dir)
	}

	var (
		pending = make(map[string]struct{})
		timer   *time.Timer
		fire    <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			path := filepath.Clean(event.Name)
			if event.Op&relevantOps == 0 || !match(path) {
				continue
			}

			pending[path] = struct{}{}

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}

			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Warn("watcher error", "error", err)

		case <-fire:
			fire = nil

			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)

			logger.Debug("files changed", "paths", changed)
			onChange(changed)
		}
	}
}
