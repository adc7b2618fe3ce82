package tctemplate

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// EncodeHTMLEntities replaces <, >, &, ", ' and every code point in
// U+00A0..U+9999 with a decimal character reference such as "&#60;".
// Bytes that are not valid UTF-8 are copied through unchanged.
func EncodeHTMLEntities(s string) string {
	idx := strings.IndexFunc(s, needsEntity)
	if idx < 0 {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s) + 16)
	sb.WriteString(s[:idx])

	for rest := s[idx:]; rest != ""; {
		ch, size := utf8.DecodeRuneInString(rest)

		if needsEntity(ch) {
			sb.WriteString("&#")
			sb.WriteString(strconv.Itoa(int(ch)))
			sb.WriteByte(';')
		} else {
			sb.WriteString(rest[:size])
		}

		rest = rest[size:]
	}

	return sb.String()
}

func needsEntity(ch rune) bool {
	switch ch {
	case '<', '>', '&', '"', '\'':
		return true
	}

	return ch >= 0xA0 && ch <= 0x9999
}
