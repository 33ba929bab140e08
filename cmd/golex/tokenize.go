package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"GoLex/internal/config"
	"GoLex/internal/lexer"
	"GoLex/internal/logutil"
	"GoLex/internal/ruleset"
)

type tokenizeCmd struct {
	Rules          string `help:"Rule-set file (YAML or JSON)" type:"existingfile" xor:"source"`
	Builtin        string `help:"Built-in rule set: standard, whitespace or keyword" xor:"source"`
	SkipWhitespace bool   `help:"Drop tokens that start with whitespace"`
	Format         string `help:"Output format" enum:"text,json" default:"text"`
	Debug          bool   `help:"Log every match"`

	File string `arg:"" optional:"" help:"Input file; standard input when omitted" type:"existingfile"`
}

func (c *tokenizeCmd) Run(g *Globals, e *env) error {
	overrides := map[string]any{}
	if g.Newline != "" {
		overrides["lexer.newline"] = g.Newline
	}
	if c.Debug {
		overrides["lexer.debug"] = true
		overrides["log.level"] = "debug"
	}
	cfg, err := config.Load(g.Config, overrides)
	if err != nil {
		return err
	}
	logger, err := logutil.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	compiled, err := c.ruleset(cfg.Newline)
	if err != nil {
		return err
	}
	text, err := readInput(c.File, e.stdin)
	if err != nil {
		return err
	}

	opts := cfg.LexerOptions()
	opts.Logger = logger.With(logutil.FieldRuleset(compiled.Name()))
	tokens, err := compiled.Tokenize(text, opts)
	if err != nil {
		return err
	}
	if c.SkipWhitespace {
		tokens = lexer.FilterWhitespace(tokens)
	}
	return writeTokens(e.stdout, tokens, c.Format, cfg.Newline)
}

func (c *tokenizeCmd) ruleset(newline string) (*ruleset.Compiled, error) {
	switch {
	case c.Rules != "":
		rs, err := loadRulesFile(c.Rules)
		if err != nil {
			return nil, err
		}
		return ruleset.Compile(rs, newline)
	case c.Builtin != "":
		return ruleset.NewRegistry(newline).Get(c.Builtin)
	default:
		return nil, errors.New("one of --rules or --builtin is required")
	}
}

func loadRulesFile(path string) (*ruleset.Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read rules")
	}
	rs, err := ruleset.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return rs, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readInput reads path, or r when path is empty. A UTF-8 byte order mark is
// stripped and UTF-16 input that starts with one is decoded to UTF-8. Any
// other input, invalid UTF-8 included, is returned byte for byte.
func readInput(path string, r io.Reader) (string, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return "", errors.Wrap(err, "open input")
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "read input")
	}
	if bytes.HasPrefix(data, utf8BOM) {
		return string(data[len(utf8BOM):]), nil
	}
	// Only a UTF-16 mark switches decoders; everything else goes through Nop.
	decoded, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return "", errors.Wrap(err, "decode input")
	}
	return string(decoded), nil
}

func writeTokens(w io.Writer, tokens []lexer.Token, format, newline string) error {
	switch format {
	case "json":
		if tokens == nil {
			tokens = []lexer.Token{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tokens)
	default:
		if len(tokens) == 0 {
			return nil
		}
		lines := lo.Map(tokens, func(t lexer.Token, _ int) string {
			return fmt.Sprintf("%d:%d\t%s", t.Line, t.Column, strconv.Quote(t.Text))
		})
		_, err := io.WriteString(w, strings.Join(lines, newline)+newline)
		return err
	}
}
