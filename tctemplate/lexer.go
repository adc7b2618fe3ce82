package tctemplate

import "strings"

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenTag
	// tokenTrailing is whatever follows the last complete tag, including
	// an unterminated "[" fragment.
	tokenTrailing
)

type token struct {
	kind tokenKind
	text string
	pos  Position
}

// lex splits source into text runs and "[...]" tag tokens. A tag runs from
// "[" to the first "]"; brackets inside a tag are part of it.
func lex(source string) []token {
	var (
		tokens []token
		buf    strings.Builder
		inTag  bool
		start  Position
	)

	line, col := 1, 1

	for off, ch := range source {
		cur := Position{Line: line, Column: col, Offset: off}

		switch {
		case inTag && ch == ']':
			buf.WriteRune(ch)
			tokens = append(tokens, token{
				kind: tokenTag,
				text: buf.String(),
				pos:  start,
			})
			buf.Reset()

			inTag = false

		case !inTag && ch == '[':
			if buf.Len() > 0 {
				tokens = append(tokens, token{
					kind: tokenText,
					text: buf.String(),
					pos:  start,
				})
				buf.Reset()
			}

			buf.WriteRune(ch)

			inTag = true
			start = cur

		default:
			if buf.Len() == 0 {
				start = cur
			}

			buf.WriteRune(ch)
		}

		if ch == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	if buf.Len() > 0 {
		tokens = append(tokens, token{
			kind: tokenTrailing,
			text: buf.String(),
			pos:  start,
		})
	}

	return tokens
}
