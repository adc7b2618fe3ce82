package tctemplate

import (
	"fmt"
	"io"
	"reflect"
	"unicode/utf8"
)

// Template is a parsed TC template. It is immutable and may be rendered
// concurrently.
type Template struct {
	source string
	nodes  []node
}

// Parse checks source and builds its node tree. Tag grammar, pointer
// syntax and tag balance are all verified here, including inside comment
// blocks and loop bodies.
func Parse(source string) (*Template, error) {
	const errCtx = "parsing template"

	if !utf8.ValidString(source) {
		return nil, fmt.Errorf("%s: %w", errCtx, ErrInvalidTemplate)
	}

	nodes, err := parse(lex(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return &Template{source: source, nodes: nodes}, nil
}

// Must panics if err is non-nil and returns tpl otherwise.
func Must(tpl *Template, err error) *Template {
	if err != nil {
		panic(err)
	}

	return tpl
}

// Render parses source and renders it against locals.
func Render(source string, locals any) (string, error) {
	tpl, err := Parse(source)
	if err != nil {
		return "", err
	}

	return tpl.Render(locals)
}

// Source returns the text the template was parsed from.
func (t *Template) Source() string {
	return t.source
}

// Render evaluates the template against locals. A nil locals renders
// against an empty map. Loop variables are written into locals and remain
// there afterwards.
func (t *Template) Render(locals any) (string, error) {
	const errCtx = "rendering template"

	root, err := checkLocals(locals)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	rd := renderer{locals: root}

	if err := rd.renderNodes(t.nodes); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return rd.out.String(), nil
}

// Execute renders the template and writes the result to w. Nothing is
// written when rendering fails.
func (t *Template) Execute(w io.Writer, locals any) error {
	out, err := t.Render(locals)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

func checkLocals(locals any) (any, error) {
	if locals == nil {
		return map[string]any{}, nil
	}

	rv := reflect.ValueOf(locals)

	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: nil %T", ErrInvalidLocals, locals)
		}
	case reflect.Array, reflect.Struct:
	case reflect.Pointer:
		if rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return nil, fmt.Errorf("%w: %T", ErrInvalidLocals, locals)
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidLocals, locals)
	}

	return locals, nil
}
