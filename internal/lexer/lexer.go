package lexer

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"GoLex/internal/pattern"
	"GoLex/internal/position"
)

// Tokenizer splits one text into tokens using an ordered list of
// recognizers. At every scan position the first recognizer, in insertion
// order, that matches a non-empty prefix wins; there is no longest-match
// search across recognizers.
//
// A Tokenizer owns its text and recognizer list and must not be shared
// between goroutines while recognizers are being added.
type Tokenizer struct {
	text        string
	source      *position.Source
	recognizers []pattern.Recognizer
	opts        Options
	logger      *zap.Logger
}

// New creates a Tokenizer for text with no recognizers.
func New(text string, opts Options) *Tokenizer {
	if opts.Newline == "" {
		opts.Newline = PlatformNewline()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tokenizer{
		text:   text,
		source: position.NewSource(text),
		opts:   opts,
		logger: logger,
	}
}

// Build creates a Tokenizer for text with the given recognizers.
func Build(recognizers []pattern.Recognizer, text string, opts Options) *Tokenizer {
	t := New(text, opts)
	t.Add(recognizers...)
	return t
}

// Tokenize runs the recognizers over text.
func Tokenize(recognizers []pattern.Recognizer, text string, opts Options) ([]Token, error) {
	return Build(recognizers, text, opts).Run()
}

// TokenizeWithoutWhitespace is Tokenize followed by FilterWhitespace.
func TokenizeWithoutWhitespace(recognizers []pattern.Recognizer, text string, opts Options) ([]Token, error) {
	tokens, err := Tokenize(recognizers, text, opts)
	if err != nil {
		return nil, err
	}
	return FilterWhitespace(tokens), nil
}

// Text returns the source text.
func (t *Tokenizer) Text() string {
	return t.text
}

// Recognizers returns the registered recognizers in priority order.
func (t *Tokenizer) Recognizers() []pattern.Recognizer {
	return append([]pattern.Recognizer(nil), t.recognizers...)
}

// Add appends recognizers with lower priority than those already added.
func (t *Tokenizer) Add(recognizers ...pattern.Recognizer) {
	t.recognizers = append(t.recognizers, recognizers...)
}

// AddLiteral appends a literal recognizer.
func (t *Tokenizer) AddLiteral(s string) {
	t.Add(pattern.Literal(s))
}

// AddLiterals appends one literal recognizer per string, in order.
func (t *Tokenizer) AddLiterals(ss ...string) {
	for _, s := range ss {
		t.AddLiteral(s)
	}
}

// AddSet appends a single recognizer trying alts in order.
func (t *Tokenizer) AddSet(alts ...string) {
	t.Add(pattern.Set(alts...))
}

// AddRegexp compiles expr and appends it.
func (t *Tokenizer) AddRegexp(expr string) error {
	r, err := pattern.Regexp(expr)
	if err != nil {
		return err
	}
	t.Add(r)
	return nil
}

// AddRegexps compiles and appends each expression. Expressions before the
// first bad one stay registered.
func (t *Tokenizer) AddRegexps(exprs ...string) error {
	for _, expr := range exprs {
		if err := t.AddRegexp(expr); err != nil {
			return err
		}
	}
	return nil
}

// AddFunc appends a predicate recognizer.
func (t *Tokenizer) AddFunc(fn pattern.MatchFunc) {
	t.Add(pattern.Func(fn))
}

// AddWhitespace appends the single-character whitespace recognizer.
func (t *Tokenizer) AddWhitespace() {
	t.Add(pattern.Whitespace())
}

// AddNewline appends a literal recognizer for the configured newline.
func (t *Tokenizer) AddNewline() {
	t.Add(pattern.Newline(t.opts.Newline))
}

// Run tokenizes the text. On success the concatenated token texts equal the
// input. If some position cannot be matched, Run returns an error wrapping
// ErrAllMatchersMatchNothing and no tokens.
//
// Empty matches count as no match, so every emitted token advances the scan
// position and Run always terminates.
func (t *Tokenizer) Run() ([]Token, error) {
	start := time.Now()
	tokens, err := t.run()
	if t.opts.Observer != nil {
		t.opts.Observer.ObserveRun(len(tokens), time.Since(start), err)
	}
	return tokens, err
}

func (t *Tokenizer) run() ([]Token, error) {
	if t.text == "" {
		return nil, nil
	}

	// The line table is built on the first run and shared by later ones.
	cursor := t.source.Build().Cursor()
	var tokens []Token
	offset := 0
	for offset < len(t.text) {
		m, r, ok := t.match(offset)
		pos := cursor.Lookup(offset)
		if !ok {
			err := newMatchError(t.text, offset, pos)
			t.logger.Debug("no recognizer matched",
				zap.Int("offset", offset),
				zap.Stringer("position", pos),
				zap.Int("recognizers", len(t.recognizers)),
			)
			return nil, errors.WithStack(err)
		}
		if t.opts.Debug {
			t.logger.Debug("matched",
				zap.Stringer("recognizer", r),
				zap.String("text", m),
				zap.Stringer("position", pos),
			)
		}
		tokens = append(tokens, Token{
			Text:      m,
			Line:      pos.Line,
			Column:    pos.Column,
			StartByte: offset,
			EndByte:   offset + len(m),
		})
		offset += len(m)
	}
	return tokens, nil
}

// match returns the first non-empty match at offset and the recognizer
// that produced it. Results that are not a prefix of the remaining text are
// ignored.
func (t *Tokenizer) match(offset int) (string, pattern.Recognizer, bool) {
	rest := t.text[offset:]
	for _, r := range t.recognizers {
		if m, ok := r.MatchPrefix(rest); ok && m != "" && strings.HasPrefix(rest, m) {
			return m, r, true
		}
	}
	return "", nil, false
}
