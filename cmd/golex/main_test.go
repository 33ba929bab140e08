package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoLex/internal/lexer"
)

const classRules = `name: class-decl
rules:
  - kind: literal
    value: class
  - kind: whitespace
  - kind: regexp
    value: '[^\{\s]+'
  - kind: set
    values: ["{", "}"]
`

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &env{stdin: strings.NewReader(stdin), stdout: &stdout, stderr: &stderr})
	return stdout.String(), err
}

func TestTokenize_RulesFromStdin(t *testing.T) {
	rules := writeTemp(t, "class.yaml", []byte(classRules))

	out, err := runCLI(t, "\nclass Test {\n}", "--newline", "lf", "tokenize", "--rules", rules, "--skip-whitespace")
	require.NoError(t, err)
	assert.Equal(t, "2:1\t\"class\"\n2:7\t\"Test\"\n2:12\t\"{\"\n3:1\t\"}\"\n", out)
}

func TestTokenize_NewlineJoinsOutput(t *testing.T) {
	out, err := runCLI(t, "a b", "--newline", "crlf", "tokenize", "--builtin", "standard", "--skip-whitespace")
	require.NoError(t, err)
	assert.Equal(t, "1:1\t\"a\"\r\n1:3\t\"b\"\r\n", out)
}

func TestTokenize_JSONFromFile(t *testing.T) {
	input := writeTemp(t, "input.txt", []byte("fox!"))

	out, err := runCLI(t, "", "tokenize", "--builtin", "standard", "--format", "json", input)
	require.NoError(t, err)

	var tokens []lexer.Token
	require.NoError(t, json.Unmarshal([]byte(out), &tokens))
	assert.Equal(t, []string{"fox", "!"}, lexer.Texts(tokens))
	assert.Equal(t, 4, tokens[1].Column)
}

func TestTokenize_EmptyInput(t *testing.T) {
	out, err := runCLI(t, "", "tokenize", "--builtin", "keyword")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = runCLI(t, "", "tokenize", "--builtin", "keyword", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestTokenize_InputEncoding(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"utf-16le bom", "\xFF\xFEh\x00i\x00", `"hi"`},
		{"utf-16be bom", "\xFE\xFF\x00h\x00i", `"hi"`},
		{"utf-8 bom", "\xEF\xBB\xBFhi", `"hi"`},
		{"plain", "hi", `"hi"`},
		{"invalid utf-8 kept", "a\xffb", `"a\xffb"`},
		{"invalid utf-8 after bom kept", "\xEF\xBB\xBFa\xc3(", `"a\xc3("`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.input, "tokenize", "--builtin", "keyword")
			require.NoError(t, err)
			assert.Equal(t, "1:1\t"+tt.want+"\n", strings.ReplaceAll(out, "\r\n", "\n"))
		})
	}
}

func TestTokenize_NoMatch(t *testing.T) {
	rules := writeTemp(t, "class.yaml", []byte("name: only\nrules:\n  - kind: literal\n    value: class\n"))
	_, err := runCLI(t, "class extra", "tokenize", "--rules", rules)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lexer.ErrAllMatchersMatchNothing))
	assert.Contains(t, err.Error(), "1:6")
}

func TestTokenize_SourceRequired(t *testing.T) {
	_, err := runCLI(t, "x", "tokenize")
	assert.Error(t, err)

	_, err = runCLI(t, "x", "tokenize", "--builtin", "nope")
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	good := writeTemp(t, "good.yaml", []byte(classRules))
	out, err := runCLI(t, "", "check", "--rules", good)
	require.NoError(t, err)
	assert.Equal(t, "ok: class-decl (4 rules)\n", out)

	bad := writeTemp(t, "bad.yaml", []byte("name: bad\nrules:\n  - kind: regexp\n    value: '('\n"))
	_, err = runCLI(t, "", "check", "--rules", bad)
	assert.Error(t, err)
}
