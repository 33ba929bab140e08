package ruleset

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoLex/internal/lexer"
	"GoLex/internal/pattern"
)

func classRuleset() *Ruleset {
	return &Ruleset{
		Version: 1,
		Name:    "class-decl",
		Rules: []RuleDef{
			{Kind: KindLiteral, Value: "class"},
			{Kind: KindWhitespace},
			{Kind: KindRegexp, Value: `[^\{\s]+`},
			{Kind: KindSet, Values: []string{"{", "}"}},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	require.NoError(t, classRuleset().Validate())
	for _, rs := range Builtins() {
		require.NoError(t, rs.Validate(), rs.Name)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rs *Ruleset)
		want   error
	}{
		{"empty name", func(rs *Ruleset) { rs.Name = "" }, ErrInvalidName},
		{"path in name", func(rs *Ruleset) { rs.Name = "../etc" }, ErrInvalidName},
		{"long name", func(rs *Ruleset) { rs.Name = strings.Repeat("a", MaxNameLength+1) }, ErrInvalidName},
		{"no rules", func(rs *Ruleset) { rs.Rules = nil }, ErrNoRules},
		{"too many rules", func(rs *Ruleset) {
			rs.Rules = make([]RuleDef, MaxRules+1)
			for i := range rs.Rules {
				rs.Rules[i] = RuleDef{Kind: KindWhitespace}
			}
		}, ErrTooManyRules},
		{"unknown kind", func(rs *Ruleset) { rs.Rules[0].Kind = "fuzzy" }, ErrInvalidRule},
		{"empty literal", func(rs *Ruleset) { rs.Rules[0].Value = "" }, ErrInvalidRule},
		{"empty set", func(rs *Ruleset) { rs.Rules[3].Values = nil }, ErrInvalidRule},
		{"empty set member", func(rs *Ruleset) { rs.Rules[3].Values = []string{"{", ""} }, ErrInvalidRule},
		{"empty regexp", func(rs *Ruleset) { rs.Rules[2].Value = "" }, ErrInvalidRule},
		{"bad regexp", func(rs *Ruleset) { rs.Rules[2].Value = "[" }, ErrInvalidRule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := classRuleset()
			tt.mutate(rs)
			err := rs.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestValidate_BadRegexpIsAlsoInvalidPattern(t *testing.T) {
	rs := classRuleset()
	rs.Rules[2].Value = "("
	assert.True(t, errors.Is(rs.Validate(), pattern.ErrInvalidPattern))
}

func TestCompile_PreservesOrder(t *testing.T) {
	recognizers, err := classRuleset().Compile("\n")
	require.NoError(t, err)
	require.Len(t, recognizers, 4)
	assert.Equal(t, "class", recognizers[0].String())
	assert.Equal(t, `[^\{\s]+`, recognizers[2].String())
	assert.Equal(t, `["{","}"]`, recognizers[3].String())

	tokens, err := lexer.TokenizeWithoutWhitespace(recognizers, "\nclass Test {\n}", lexer.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"class", "Test", "{", "}"}, lexer.Texts(tokens))
}

func TestCompile_NewlineRule(t *testing.T) {
	rs := &Ruleset{Name: "lines", Rules: []RuleDef{
		{Kind: KindNewline},
		{Kind: KindRegexp, Value: `[^\r\n]+`},
	}}
	recognizers, err := rs.Compile("\r\n")
	require.NoError(t, err)

	tokens, err := lexer.Tokenize(recognizers, "a\r\nb", lexer.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "\r\n", "b"}, lexer.Texts(tokens))

	_, err = lexer.Tokenize(recognizers, "a\nb", lexer.DefaultOptions())
	assert.True(t, errors.Is(err, lexer.ErrAllMatchersMatchNothing))
}

func TestValidateName(t *testing.T) {
	for _, ok := range []string{"a", "json", "my-lang_v2.1", "A9"} {
		assert.NoError(t, ValidateName(ok), ok)
	}
	for _, bad := range []string{"", "-x", ".hidden", "a/b", "a b", "\u00fc"} {
		assert.Error(t, ValidateName(bad), bad)
	}
}
