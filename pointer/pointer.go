package pointer

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-openapi/jsonpointer"
)

var (
	// ErrInvalidPointer is returned when a non-empty pointer does not start
	// with "/".
	ErrInvalidPointer = errors.New("non-empty pointer must begin with a \"/\"")

	// ErrInvalidRoot is returned when a write targets a nil or
	// non-container root.
	ErrInvalidRoot = errors.New("root must be a non-nil map or slice")

	// ErrInvalidIndex is returned when a slice token is not a usable index.
	ErrInvalidIndex = errors.New("invalid slice index")
)

// appendToken addresses the element past the end of a slice.
const appendToken = "-"

// Pointer is a parsed JSON Pointer. The zero value is not usable; build
// one with Parse.
type Pointer struct {
	raw    string
	tokens []string
}

// Parse validates s and returns its decoded form. The empty string
// addresses the root itself.
func Parse(s string) (*Pointer, error) {
	const errCtx = "parsing pointer"

	if s != "" && s[0] != '/' {
		return nil, fmt.Errorf("%s: %q: %w", errCtx, s, ErrInvalidPointer)
	}

	ptr, err := jsonpointer.New(s)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: %q: %w: %w", errCtx, s, ErrInvalidPointer, err,
		)
	}

	return &Pointer{
		raw:    s,
		tokens: ptr.DecodedTokens(),
	}, nil
}

// String returns the pointer in its escaped textual form.
func (p *Pointer) String() string {
	return p.raw
}

// Tokens returns the decoded reference tokens.
func (p *Pointer) Tokens() []string {
	out := make([]string, len(p.tokens))
	copy(out, p.tokens)

	return out
}

// IsRoot reports whether the pointer addresses the whole document.
func (p *Pointer) IsRoot() bool {
	return len(p.tokens) == 0
}

// Get resolves the pointer against root. The boolean is false when any
// node along the path is missing, nil or not a container. Map keys of
// integer kinds are matched by parsing the token as a decimal number;
// maps keyed by any other non-string kind never match.
func (p *Pointer) Get(root any) (any, bool) {
	if p.IsRoot() {
		return root, root != nil
	}

	node := root

	for _, tok := range p.tokens {
		var found bool

		if node, found = getToken(node, tok); !found {
			return nil, false
		}
	}

	return node, true
}

// Set stores value at the pointer location inside root and returns the
// resulting root. Maps are updated in place; a slice that grows is
// reallocated, so callers holding a slice root must use the returned
// value. Intermediate nodes that are missing or hold scalars are replaced
// by empty maps. Setting the root pointer returns value unchanged.
func (p *Pointer) Set(root any, value any) (any, error) {
	const errCtx = "setting pointer"

	if p.IsRoot() {
		return value, nil
	}

	if !isContainer(root) {
		return nil, fmt.Errorf("%s: %q: %w", errCtx, p.raw, ErrInvalidRoot)
	}

	out, err := setTokens(root, p.tokens, value)
	if err != nil {
		return nil, fmt.Errorf("%s: %q: %w", errCtx, p.raw, err)
	}

	return out, nil
}

// Get parses ptr and resolves it against root.
func Get(root any, ptr string) (any, bool, error) {
	pa, err := Parse(ptr)
	if err != nil {
		return nil, false, err
	}

	val, found := pa.Get(root)

	return val, found, nil
}

// Set parses ptr and stores value at that location inside root.
func Set(root any, ptr string, value any) (any, error) {
	pa, err := Parse(ptr)
	if err != nil {
		return nil, err
	}

	return pa.Set(root, value)
}

// Escape encodes a single reference token ("~" to "~0", "/" to "~1").
func Escape(token string) string {
	return jsonpointer.Escape(token)
}

// Unescape decodes a single reference token.
func Unescape(token string) string {
	return jsonpointer.Unescape(token)
}

// getToken resolves one decoded token against node. Maps, slices and
// arrays are walked here; structs and jsonpointer.JSONPointable values go
// through jsonpointer.
func getToken(node any, tok string) (any, bool) {
	switch typed := node.(type) {
	case map[string]any:
		val, ok := typed[tok]
		return val, ok
	case []any:
		idx, ok := elementIndex(tok, len(typed))
		if !ok {
			return nil, false
		}

		return typed[idx], true
	}

	rv := reflect.Indirect(reflect.ValueOf(node))

	switch rv.Kind() {
	case reflect.Invalid:
		return nil, false

	case reflect.Map:
		key, ok := mapKey(rv.Type().Key(), tok)
		if !ok {
			return nil, false
		}

		val := rv.MapIndex(key)
		if !val.IsValid() {
			return nil, false
		}

		return val.Interface(), true

	case reflect.Slice, reflect.Array:
		idx, ok := elementIndex(tok, rv.Len())
		if !ok {
			return nil, false
		}

		return rv.Index(idx).Interface(), true
	}

	val, _, err := jsonpointer.GetForToken(node, tok)
	if err != nil {
		return nil, false
	}

	return val, true
}

// mapKey converts tok to a value of keyType, reporting false when no key
// of that type can be spelled by tok.
func mapKey(keyType reflect.Type, tok string) (reflect.Value, bool) {
	key := reflect.New(keyType).Elem()

	switch keyType.Kind() {
	case reflect.String:
		key.SetString(tok)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		num, err := strconv.ParseInt(tok, 10, 64)
		if err != nil || key.OverflowInt(num) {
			return reflect.Value{}, false
		}

		key.SetInt(num)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		num, err := strconv.ParseUint(tok, 10, 64)
		if err != nil || key.OverflowUint(num) {
			return reflect.Value{}, false
		}

		key.SetUint(num)

	case reflect.Interface:
		val := reflect.ValueOf(tok)
		if !val.Type().AssignableTo(keyType) {
			return reflect.Value{}, false
		}

		key.Set(val)

	default:
		return reflect.Value{}, false
	}

	return key, true
}

// elementIndex accepts the decimal indexes 0..length-1 without leading
// zeros.
func elementIndex(tok string, length int) (int, bool) {
	if tok == "" || tok[0] < '0' || tok[0] > '9' ||
		(len(tok) > 1 && tok[0] == '0') {
		return 0, false
	}

	idx, err := strconv.Atoi(tok)
	if err != nil || idx >= length {
		return 0, false
	}

	return idx, true
}

func isContainer(node any) bool {
	switch typed := node.(type) {
	case map[string]any:
		return typed != nil
	case []any:
		return typed != nil
	default:
		return false
	}
}

func setTokens(
	node any,
	tokens []string,
	value any,
) (any, error) {
	if len(tokens) == 0 {
		return value, nil
	}

	tok := tokens[0]
	rest := tokens[1:]

	switch typed := node.(type) {
	case map[string]any:
		child := typed[tok]
		if len(rest) > 0 && !isContainer(child) {
			child = map[string]any{}
		}

		val, err := setTokens(child, rest, value)
		if err != nil {
			return nil, err
		}

		typed[tok] = val

		return typed, nil

	case []any:
		idx, err := sliceIndex(tok, len(typed))
		if err != nil {
			return nil, err
		}

		if idx == len(typed) {
			typed = append(typed, nil)
		}

		child := typed[idx]
		if len(rest) > 0 && !isContainer(child) {
			child = map[string]any{}
		}

		val, err := setTokens(child, rest, value)
		if err != nil {
			return nil, err
		}

		typed[idx] = val

		return typed, nil

	default:
		return nil, ErrInvalidRoot
	}
}

// sliceIndex accepts 0..length, where length (or "-") means append.
func sliceIndex(tok string, length int) (int, error) {
	if tok == appendToken {
		return length, nil
	}

	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, fmt.Errorf("%q: %w", tok, ErrInvalidIndex)
	}

	idx, err := strconv.Atoi(tok)
	if err != nil || idx < 0 || idx > length {
		return 0, fmt.Errorf("%q: %w", tok, ErrInvalidIndex)
	}

	return idx, nil
}
