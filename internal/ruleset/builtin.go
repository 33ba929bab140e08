package ruleset

// Built-in rule set names.
const (
	BuiltinStandard   = "standard"
	BuiltinWhitespace = "whitespace"
	BuiltinKeyword    = "keyword"
)

// whitespaceRun matches the same characters as pattern.Whitespace, repeated.
const whitespaceRun = `[\t\n\v\f\r\x{85}\p{Z}]+`

// Builtins returns fresh copies of the built-in rule sets. Every one of them
// tokenizes any input.
func Builtins() []*Ruleset {
	return []*Ruleset{
		{
			// Words of letters, digits and underscores; every other
			// character is a token of its own.
			Version:     1,
			Name:        BuiltinStandard,
			Description: "words, single whitespace characters and single punctuation characters",
			Rules: []RuleDef{
				{Kind: KindWhitespace},
				{Kind: KindRegexp, Value: `[\p{L}\p{M}\p{N}_]+`},
				{Kind: KindRegexp, Value: `(?s:.)`},
			},
		},
		{
			Version:     1,
			Name:        BuiltinWhitespace,
			Description: "alternating runs of whitespace and non-whitespace",
			Rules: []RuleDef{
				{Kind: KindRegexp, Value: whitespaceRun},
				{Kind: KindRegexp, Value: `[^\t\n\v\f\r\x{85}\p{Z}]+`},
			},
		},
		{
			Version:     1,
			Name:        BuiltinKeyword,
			Description: "the whole input as a single token",
			Rules: []RuleDef{
				{Kind: KindRegexp, Value: `(?s:.+)`},
			},
		},
	}
}
