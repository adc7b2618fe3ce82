package tctemplate

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidTemplate is returned when the template source is not
	// valid UTF-8 text.
	ErrInvalidTemplate = errors.New("template must be valid UTF-8 text")

	// ErrInvalidLocals is returned when locals is not a non-nil map,
	// slice or struct.
	ErrInvalidLocals = errors.New("locals must be a non-nil map, slice or struct")

	// ErrUnrecognizedTag is returned for tag text matching no known form.
	ErrUnrecognizedTag = errors.New("unrecognized tag")

	// ErrUnbalancedTags is returned when an end tag does not close the
	// most recently opened tag.
	ErrUnbalancedTags = errors.New("unbalanced tags")

	// ErrUnclosedTags is returned when the template ends with open tags.
	ErrUnclosedTags = errors.New("missing closing tag(s)")

	// ErrInvalidPath is returned when a tag operand is not a JSON Pointer.
	ErrInvalidPath = errors.New("invalid path")

	// ErrNotIterable is returned when a loop collection resolves to a
	// value that is neither a slice nor an array.
	ErrNotIterable = errors.New("collection is not iterable")
)

// Position locates a tag in the template source.
type Position struct {
	Line   int // line starting from 1
	Column int // column in characters starting from 1
	Offset int // byte offset of the opening bracket
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// TagError reports a failure tied to a specific tag.
type TagError struct {
	Tag string
	Pos Position
	Err error
}

func (e *TagError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Pos, e.Tag, e.Err)
}

func (e *TagError) Unwrap() error {
	return e.Err
}
