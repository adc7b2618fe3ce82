package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/byte4ever/tcframework/digester"
	"github.com/byte4ever/tcframework/tctemplate"
)

// DefaultDir is used when a Registry is created with an
// empty directory.
var DefaultDir = filepath.Join(os.TempDir(), "views")

// ErrInvalidName is returned for view names that do not
// reduce to a file name.
var ErrInvalidName = errors.New("invalid view name")

// Registry loads and caches views from one directory. It is
// safe for concurrent use.
type Registry struct {
	dir    string
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]entry
}

type entry struct {
	tpl    *tctemplate.Template
	digest string
}

// NewRegistry creates a registry over dir. A nil logger
// means slog.Default().
func NewRegistry(dir string, logger *slog.Logger) *Registry {
	if dir == "" {
		dir = DefaultDir
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		dir:    dir,
		logger: logger,
		cache:  make(map[string]entry),
	}
}

// Dir returns the views directory.
func (r *Registry) Dir() string {
	return r.dir
}

// Lookup returns the parsed view for name, reading and
// parsing the file on a cache miss. Only the base name of
// name is used.
func (r *Registry) Lookup(name string) (*tctemplate.Template, error) {
	const errCtx = "looking up view"

	view, err := sanitize(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	r.mu.RLock()
	cached, ok := r.cache[view]
	r.mu.RUnlock()

	if ok {
		return cached.tpl, nil
	}

	content, err := os.ReadFile(filepath.Join(r.dir, view))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	tpl, err := tctemplate.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", errCtx, view, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[view]; ok {
		return cached.tpl, nil
	}

	r.cache[view] = entry{tpl: tpl, digest: digester.Sum(content)}

	r.logger.Debug("view parsed", "view", view, "dir", r.dir)

	return tpl, nil
}

// Render looks up name and renders it against locals.
func (r *Registry) Render(name string, locals any) (string, error) {
	const errCtx = "rendering view"

	tpl, err := r.Lookup(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	out, err := tpl.Render(locals)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", errCtx, filepath.Base(name), err)
	}

	return out, nil
}

// Execute renders name against locals and writes the result
// to w. Nothing is written on error.
func (r *Registry) Execute(w io.Writer, name string, locals any) error {
	out, err := r.Render(name, locals)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("writing view: %w", err)
	}

	return nil
}

// Invalidate drops the cached template for name, if any.
func (r *Registry) Invalidate(name string) {
	view, err := sanitize(name)
	if err != nil {
		return
	}

	r.mu.Lock()
	_, ok := r.cache[view]
	delete(r.cache, view)
	r.mu.Unlock()

	if ok {
		r.logger.Debug("view invalidated", "view", view)
	}
}

// Reset empties the cache.
func (r *Registry) Reset() {
	r.mu.Lock()
	clear(r.cache)
	r.mu.Unlock()
}

// Names returns the cached view names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.cache))

	for name := range r.cache {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)

	return names
}

// Refresh invalidates the cached view for the file at path
// unless the file still has the content it was parsed from.
func (r *Registry) Refresh(path string) {
	view := filepath.Base(path)

	r.mu.RLock()
	cached, ok := r.cache[view]
	r.mu.RUnlock()

	if !ok {
		return
	}

	digest, err := digester.CalculateDigest(path)
	if err != nil {
		r.logger.Warn("digesting view", "view", view, "error", err)
	}

	if err == nil && digest == cached.digest {
		r.logger.Debug("view unchanged", "view", view)
		return
	}

	r.Invalidate(view)
}

// Watch refreshes cached views whenever their files change
// in the views directory. It blocks until ctx is done.
func (r *Registry) Watch(ctx context.Context, debounce time.Duration) error {
	const errCtx = "watching views"

	dir, err := filepath.Abs(r.dir)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	err = watch(
		ctx,
		[]string{dir},
		func(path string) bool { return filepath.Dir(path) == dir },
		debounce,
		r.logger,
		func(changed []string) {
			for _, path := range changed {
				r.Refresh(path)
			}
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func sanitize(name string) (string, error) {
	view := filepath.Base(name)

	switch view {
	case ".", "..", string(filepath.Separator):
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return view, nil
}
