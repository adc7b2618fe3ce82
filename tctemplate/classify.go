package tctemplate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/byte4ever/tcframework/pointer"
)

type tagKind int

const (
	tagUnknown tagKind = iota
	tagFor
	tagComment
	tagIf
	tagEscaped
	tagRaw
	tagEndFor
	tagEndComment
	tagEndIf
)

func (k tagKind) String() string {
	switch k {
	case tagFor:
		return "for"
	case tagComment:
		return "comment"
	case tagIf:
		return "if"
	case tagEscaped:
		return "escaped"
	case tagRaw:
		return "raw"
	case tagEndFor:
		return "/for"
	case tagEndComment:
		return "/comment"
	case tagEndIf:
		return "/if"
	default:
		return "unknown"
	}
}

func (k tagKind) isStart() bool {
	return k == tagFor || k == tagComment || k == tagIf
}

func (k tagKind) isEnd() bool {
	return k == tagEndFor || k == tagEndComment || k == tagEndIf
}

var (
	forPattern     = regexp.MustCompile(`(?i)^\[for ([^ \]]+) in ([^\]]+)\]$`)
	commentPattern = regexp.MustCompile(`(?i)^\[comment\]$`)
	ifPattern      = regexp.MustCompile(`(?i)^\[if ([^\]]+)\]$`)
	escapedPattern = regexp.MustCompile(`^\[=([^\]]+)\]$`)
	rawPattern     = regexp.MustCompile(`^\[-([^\]]+)\]$`)
	endPattern     = regexp.MustCompile(`(?i)^\[/(for|comment|if)\]$`)
)

// tag is a classified tag token. name is the lower-cased block keyword
// shared by a start tag and its end tag.
type tag struct {
	kind tagKind
	text string
	name string
	path *pointer.Pointer // interpolated value, if test or loop collection
	item *pointer.Pointer // loop variable
	pos  Position
}

// classify turns the text of a tag token into a tag. The second character
// selects the family: "/" for end tags, "=" or "-" for self-closing tags,
// anything else for start tags.
func classify(text string, pos Position) (tag, error) {
	tg := tag{text: text, pos: pos}

	if len(text) < 2 {
		return tg, tg.fail(ErrUnrecognizedTag)
	}

	switch text[1] {
	case '/':
		return classifyEnd(tg)
	case '=', '-':
		return classifySelfClosing(tg)
	default:
		return classifyStart(tg)
	}
}

func classifyStart(tg tag) (tag, error) {
	var err error

	switch {
	case forPattern.MatchString(tg.text):
		groups := forPattern.FindStringSubmatch(tg.text)
		tg.kind = tagFor

		if tg.item, err = tg.parsePath(groups[1]); err != nil {
			return tg, err
		}

		if tg.path, err = tg.parsePath(groups[2]); err != nil {
			return tg, err
		}

	case commentPattern.MatchString(tg.text):
		tg.kind = tagComment

	case ifPattern.MatchString(tg.text):
		tg.kind = tagIf

		groups := ifPattern.FindStringSubmatch(tg.text)
		if tg.path, err = tg.parsePath(groups[1]); err != nil {
			return tg, err
		}

	default:
		return tg, tg.fail(ErrUnrecognizedTag)
	}

	tg.name = tg.kind.String()

	return tg, nil
}

func classifySelfClosing(tg tag) (tag, error) {
	var (
		groups []string
		err    error
	)

	if groups = escapedPattern.FindStringSubmatch(tg.text); groups != nil {
		tg.kind = tagEscaped
	} else if groups = rawPattern.FindStringSubmatch(tg.text); groups != nil {
		tg.kind = tagRaw
	} else {
		return tg, tg.fail(ErrUnrecognizedTag)
	}

	if tg.path, err = tg.parsePath(groups[1]); err != nil {
		return tg, err
	}

	return tg, nil
}

func classifyEnd(tg tag) (tag, error) {
	groups := endPattern.FindStringSubmatch(tg.text)
	if groups == nil {
		return tg, tg.fail(ErrUnrecognizedTag)
	}

	tg.name = strings.ToLower(groups[1])

	switch tg.name {
	case "for":
		tg.kind = tagEndFor
	case "comment":
		tg.kind = tagEndComment
	default:
		tg.kind = tagEndIf
	}

	return tg, nil
}

func (tg tag) parsePath(raw string) (*pointer.Pointer, error) {
	pa, err := pointer.Parse(raw)
	if err != nil {
		return nil, tg.fail(fmt.Errorf("%w: %w", ErrInvalidPath, err))
	}

	return pa, nil
}

func (tg tag) fail(err error) *TagError {
	return &TagError{Tag: tg.text, Pos: tg.pos, Err: err}
}
