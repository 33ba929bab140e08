package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"GoLex/internal/ruleset"
)

// WithTempDir creates a temporary directory, calls fn with its path,
// and cleans up afterwards.
func WithTempDir(t *testing.T, fn func(dir string)) {
	t.Helper()
	dir := t.TempDir()
	fn(dir)
}

// ClassRuleset returns a rule set for simple class declarations:
// the keyword, whitespace, identifiers and braces, in that priority.
func ClassRuleset() *ruleset.Ruleset {
	return &ruleset.Ruleset{
		Version: 1,
		Name:    "class-decl",
		Rules: []ruleset.RuleDef{
			{Kind: ruleset.KindLiteral, Value: "class"},
			{Kind: ruleset.KindWhitespace},
			{Kind: ruleset.KindRegexp, Value: `[^\{\s]+`},
			{Kind: ruleset.KindSet, Values: []string{"{", "}"}},
		},
	}
}

// ExpressionRuleset returns a rule set for arithmetic with identifiers,
// numbers, operators and string literals.
func ExpressionRuleset() *ruleset.Ruleset {
	return &ruleset.Ruleset{
		Version: 1,
		Name:    "expr",
		Rules: []ruleset.RuleDef{
			{Kind: ruleset.KindNewline},
			{Kind: ruleset.KindWhitespace},
			{Kind: ruleset.KindSet, Values: []string{"let", "if", "else"}},
			{Kind: ruleset.KindRegexp, Value: `"(?:[^"\\]|\\.)*"`},
			{Kind: ruleset.KindRegexp, Value: `[0-9]+(?:\.[0-9]+)?`},
			{Kind: ruleset.KindRegexp, Value: `[\p{L}_][\p{L}\p{N}_]*`},
			{Kind: ruleset.KindSet, Values: []string{"==", "=", "+", "-", "*", "/", "(", ")", "{", "}", ";"}},
		},
	}
}

// SampleSources returns small inputs for ExpressionRuleset.
func SampleSources() []string {
	return []string{
		"let x = 1;\n",
		"let greeting = \"h\\\"i\";\nif (x == 2) { y = x * 3.5; }\n",
		"let caf\u00e9 = \"\u4e16\u754c\";\n",
	}
}

// LongSource repeats the sample sources n times.
func LongSource(n int) string {
	return strings.Repeat(strings.Join(SampleSources(), ""), n)
}

// WriteRulesetFile writes rs as a hand-written YAML file under dir and
// returns its path.
func WriteRulesetFile(t *testing.T, dir string, rs *ruleset.Ruleset) string {
	t.Helper()
	data, err := ruleset.Marshal(rs)
	require.NoError(t, err)
	path := filepath.Join(dir, rs.Name+".yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// AssertFileExists checks that a file exists at the given path.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("expected file to exist: %s", path)
	}
}

// AssertDirExists checks that a directory exists at the given path.
func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("expected directory to exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", path)
	}
}
