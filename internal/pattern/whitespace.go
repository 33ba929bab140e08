package pattern

// whitespaceClass is the Unicode White_Space property: the ASCII controls,
// NEL, and every separator (Zs, Zl, Zp).
const whitespaceClass = `[\t\n\v\f\r\x{85}\p{Z}]`

var whitespace = MustRegexp(whitespaceClass)

// Whitespace returns a recognizer that consumes exactly one Unicode
// whitespace character.
func Whitespace() *RegexpRecognizer {
	return whitespace
}

// IsWhitespace reports whether s starts with a Unicode whitespace character.
// Only the first character is inspected.
func IsWhitespace(s string) bool {
	_, ok := whitespace.MatchPrefix(s)
	return ok
}

// Newline returns a literal recognizer for the platform newline nl.
func Newline(nl string) *LiteralRecognizer {
	if nl == "" {
		nl = "\n"
	}
	return Literal(nl)
}
