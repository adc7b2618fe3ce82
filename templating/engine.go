package templating

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/byte4ever/tcframework/locals"
	"github.com/byte4ever/tcframework/pointer"
	"github.com/byte4ever/tcframework/stamper"
	"github.com/byte4ever/tcframework/tctemplate"
)

// Engine renders TC templates against a data context built
// from stamp info files, locals files and explicit
// assignments.
type Engine struct {
	StampInfoFiles []string
	LocalsFiles    []string

	// In is read when no template path is given
	// (default os.Stdin).
	In io.Reader

	// Out receives the result when no output path is
	// given (default os.Stdout).
	Out io.Writer

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Expand reads a template, renders it, and writes the
// result. If tplPath is empty it reads stdin; if outPath is
// empty it writes to stdout. Files are replaced atomically
// with mode 0644, or 0755 when executable is true.
//
// The data context is built in this order:
//  1. Stamp files are loaded and exposed under /stamps.
//  2. Locals files are deep-merged, later files winning.
//  3. Each assignment PATH=VALUE has {KEY} stamps expanded
//     in VALUE and is stored at PATH (see locals.Assign).
//  4. Each import NAME=filename is rendered against the
//     context, expanded against stamps, and stored at
//     /imports/NAME.
func (en *Engine) Expand(
	tplPath string,
	outPath string,
	vars []string,
	imports []string,
	executable bool,
) error {
	const errCtx = "expanding template"

	ctx, err := en.Context(vars, imports)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	tplContent, err := en.readTemplate(tplPath)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	tpl, err := tctemplate.Parse(string(tplContent))
	if err != nil {
		return fmt.Errorf("%s: %s: %w", errCtx, displayName(tplPath), err)
	}

	result, err := tpl.Render(ctx)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", errCtx, displayName(tplPath), err)
	}

	if err := en.Write(outPath, result, executable); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	en.logger().Debug(
		"rendered template",
		"template", displayName(tplPath),
		"output", displayName(outPath),
		"bytes", len(result),
	)

	return nil
}

// Context builds the data context for a render: stamps,
// locals files, assignments and rendered imports.
func (en *Engine) Context(
	vars []string,
	imports []string,
) (map[string]any, error) {
	const errCtx = "building context"

	stamps, err := stamper.LoadStamps(en.StampInfoFiles)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	ctx, err := locals.LoadFiles(en.LocalsFiles)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	// Locals files may carry their own /stamps entries;
	// loaded stamp files take precedence.
	ctx = locals.Merge(ctx, map[string]any{"stamps": stamps.Locals()})

	if err := locals.Assign(ctx, vars, stamps); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := en.resolveImports(imports, stamps, ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return ctx, nil
}

// resolveImports processes NAME=filename imports. Each file
// is rendered as a TC template against ctx, then expanded
// against stamps, and stored at /imports/NAME.
func (en *Engine) resolveImports(
	imports []string,
	stamps stamper.Stamps,
	ctx map[string]any,
) error {
	const errCtx = "resolving imports"

	for _, im := range imports {
		name, file, ok := strings.Cut(im, "=")
		if !ok {
			return fmt.Errorf(
				"%s: import must be NAME=filename, got %s",
				errCtx, im,
			)
		}

		content, err := os.ReadFile(file) //nolint:gosec // paths from CLI flags
		if err != nil {
			return fmt.Errorf(
				"%s: reading %s: %w",
				errCtx, file, err,
			)
		}

		val, err := tctemplate.Render(string(content), ctx)
		if err != nil {
			return fmt.Errorf(
				"%s: rendering %s: %w",
				errCtx, file, err,
			)
		}

		if _, err := pointer.Set(
			ctx,
			"/imports/"+pointer.Escape(name),
			stamps.Expand(val),
		); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	return nil
}

// readTemplate reads the template from a file path. If
// tplPath is empty it reads from en.In.
func (en *Engine) readTemplate(
	tplPath string,
) ([]byte, error) {
	const errCtx = "reading template"

	if tplPath != "" {
		content, err := os.ReadFile(tplPath) //nolint:gosec // paths from CLI flags
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return content, nil
	}

	in := en.In
	if in == nil {
		in = os.Stdin
	}

	content, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: reading stdin: %w", errCtx, err,
		)
	}

	return content, nil
}

// Write writes content to en.Out when outPath is empty,
// otherwise replaces outPath atomically with mode 0644, or
// 0755 when executable is true.
func (en *Engine) Write(
	outPath string,
	content string,
	executable bool,
) error {
	const errCtx = "writing output"

	if outPath == "" {
		out := en.Out
		if out == nil {
			out = os.Stdout
		}

		if _, err := io.WriteString(out, content); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		return nil
	}

	var perm os.FileMode = 0o644
	if executable {
		perm = 0o755
	}

	if err := replaceFile(outPath, content, perm); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// replaceFile writes content to a temporary file next to path, gives it
// its final mode, then renames it over path.
func replaceFile(
	path string,
	content string,
	perm os.FileMode,
) (retErr error) {
	tmp, err := os.CreateTemp(
		filepath.Dir(path), "."+filepath.Base(path)+".tmp*",
	)
	if err != nil {
		return err
	}

	tmpPath := tmp.Name()

	defer func() {
		if retErr != nil {
			_ = os.Remove(tmpPath) //nolint:errcheck // best effort cleanup
		}
	}()

	if _, err := io.WriteString(tmp, content); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error wins

		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close() //nolint:errcheck // sync error wins

		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}

	return atomic.ReplaceFile(tmpPath, path)
}

func (en *Engine) logger() *slog.Logger {
	if en.Logger != nil {
		return en.Logger
	}

	return slog.Default()
}

func displayName(path string) string {
	if path == "" {
		return "-"
	}

	return path
}
