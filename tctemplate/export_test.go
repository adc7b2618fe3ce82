package tctemplate

// Exported helpers for testing internal functions from
// the tctemplate_test package.

// LexForTest returns "kind:text" for every token of
// source.
func LexForTest(source string) []string {
	var out []string

	for _, tok := range lex(source) {
		kind := "text"

		switch tok.kind {
		case tokenTag:
			kind = "tag"
		case tokenTrailing:
			kind = "trailing"
		}

		out = append(out, kind+":"+tok.text)
	}

	return out
}

// ClassifyForTest exposes classify, returning the kind
// name and block name of the tag.
func ClassifyForTest(text string) (string, string, error) {
	tg, err := classify(text, Position{})

	return tg.kind.String(), tg.name, err
}

// StringifyForTest exposes stringify for found values.
func StringifyForTest(val any) string {
	return stringify(val, true)
}
