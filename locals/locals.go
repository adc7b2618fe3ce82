package locals

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/byte4ever/tcframework/pointer"
	"github.com/byte4ever/tcframework/stamper"
)

// Format identifies the encoding of a locals file.
type Format int

const (
	// FormatJSON is a single JSON object.
	FormatJSON Format = iota
	// FormatYAML is one or more YAML mapping documents.
	FormatYAML
)

var (
	// ErrUnknownFormat is returned for file extensions other than .json,
	// .yaml and .yml.
	ErrUnknownFormat = errors.New("unknown locals format")

	// ErrNotObject is returned when a document is not a mapping.
	ErrNotObject = errors.New("locals document must be an object")
)

// FormatFor picks the format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Decode reads a data context from r. YAML streams may hold several
// documents; they are merged in order.
func Decode(r io.Reader, format Format) (map[string]any, error) {
	const errCtx = "decoding locals"

	switch format {
	case FormatJSON:
		var doc any
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		obj, ok := normalize(doc).(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: %w", errCtx, ErrNotObject)
		}

		return obj, nil

	case FormatYAML:
		docs, err := decodeAllDocs(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		out := map[string]any{}
		for _, doc := range docs {
			out = Merge(out, doc)
		}

		return out, nil

	default:
		return nil, fmt.Errorf("%s: %w", errCtx, ErrUnknownFormat)
	}
}

// decodeAllDocs decodes every YAML document of the stream,
// skipping empty ones.
func decodeAllDocs(r io.Reader) ([]map[string]any, error) {
	decoder := yaml.NewDecoder(r)

	var docs []map[string]any

	for {
		var doc any

		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		if doc == nil {
			continue
		}

		obj, ok := normalize(doc).(map[string]any)
		if !ok {
			return nil, ErrNotObject
		}

		docs = append(docs, obj)
	}

	return docs, nil
}

// LoadFile reads and decodes one locals file.
func LoadFile(path string) (map[string]any, error) {
	const errCtx = "loading locals"

	format, err := FormatFor(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	fi, err := os.Open(path) //nolint:gosec // paths from CLI flags
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	defer fi.Close() //nolint:errcheck // best-effort close

	doc, err := Decode(fi, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	return doc, nil
}

// LoadFiles loads every file and merges them in order into
// one context; later files win.
func LoadFiles(paths []string) (map[string]any, error) {
	out := map[string]any{}

	for _, pa := range paths {
		doc, err := LoadFile(pa)
		if err != nil {
			return nil, err
		}

		out = Merge(out, doc)
	}

	return out, nil
}

// Merge deep-merges src into dst and returns dst. Nested maps
// are merged key by key; any other value in src replaces the
// one in dst. A nil dst is allocated.
func Merge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}

	for key, val := range src {
		srcMap, srcIsMap := val.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)

		if srcIsMap && dstIsMap {
			dst[key] = Merge(dstMap, srcMap)
			continue
		}

		dst[key] = val
	}

	return dst
}

// Assign applies PATH=VALUE assignments to root. VALUE is
// stored as a string after {KEY} stamp expansion; PATH:=VALUE
// decodes VALUE as JSON instead, which is how booleans and
// lists are set. A PATH without a leading "/" is a single key
// and is also recorded under /variables.
func Assign(
	root map[string]any,
	assignments []string,
	stamps stamper.Stamps,
) error {
	const errCtx = "assigning locals"

	for _, as := range assignments {
		path, raw, ok := strings.Cut(as, "=")
		if !ok || path == "" {
			return fmt.Errorf(
				"%s: assignment must be PATH=value, got %s",
				errCtx, as,
			)
		}

		if stamps != nil {
			raw = stamps.Expand(raw)
		}

		var val any = raw

		if typedPath, isTyped := strings.CutSuffix(path, ":"); isTyped {
			path = typedPath

			var decoded any
			if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
				return fmt.Errorf(
					"%s: decoding value of %s: %w",
					errCtx, path, err,
				)
			}

			val = normalize(decoded)
		}

		ptrs := []string{path}
		if !strings.HasPrefix(path, "/") {
			name := pointer.Escape(path)
			ptrs = []string{"/" + name, "/variables/" + name}
		}

		for idx, ptr := range ptrs {
			stored := val
			if idx > 0 {
				stored = deepCopy(val)
			}

			if _, err := pointer.Set(root, ptr, stored); err != nil {
				return fmt.Errorf("%s: %w", errCtx, err)
			}
		}
	}

	return nil
}

// deepCopy copies decoded maps and slices so that two paths never share
// a container.
func deepCopy(val any) any {
	switch typed := val.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = deepCopy(item)
		}

		return out
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = deepCopy(item)
		}

		return out
	default:
		return val
	}
}

// normalize converts YAML maps with non-string keys into
// map[string]any, recursively.
func normalize(val any) any {
	switch typed := val.(type) {
	case map[string]any:
		for key, child := range typed {
			typed[key] = normalize(child)
		}

		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			out[fmt.Sprint(key)] = normalize(child)
		}

		return out
	case []any:
		for idx, child := range typed {
			typed[idx] = normalize(child)
		}

		return typed
	default:
		return val
	}
}
