package pattern

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// Recognizer decides whether a rule matches at the start of some text.
//
// Implementations must be deterministic: the same input always yields the
// same answer. MatchPrefix and MatchAt must agree, i.e.
// MatchAt(text, off) == MatchPrefix(text[off:]) for every valid off.
type Recognizer interface {
	// MatchPrefix reports the prefix of rest matched by the rule.
	MatchPrefix(rest string) (string, bool)
	// MatchAt reports the text matched starting exactly at byte offset of text.
	MatchAt(text string, offset int) (string, bool)
	// String describes the rule for logs and errors.
	String() string
}

// ErrInvalidPattern is returned when a regular expression does not compile.
var ErrInvalidPattern = errors.New("invalid pattern")

func sliceAt(text string, offset int) (string, bool) {
	if offset < 0 || offset > len(text) {
		return "", false
	}
	return text[offset:], true
}

// LiteralRecognizer matches one fixed string.
type LiteralRecognizer struct {
	lit string
}

// Literal returns a recognizer matching s verbatim.
func Literal(s string) *LiteralRecognizer {
	return &LiteralRecognizer{lit: s}
}

func (l *LiteralRecognizer) MatchPrefix(rest string) (string, bool) {
	if strings.HasPrefix(rest, l.lit) {
		return l.lit, true
	}
	return "", false
}

func (l *LiteralRecognizer) MatchAt(text string, offset int) (string, bool) {
	rest, ok := sliceAt(text, offset)
	if !ok {
		return "", false
	}
	return l.MatchPrefix(rest)
}

func (l *LiteralRecognizer) String() string {
	return l.lit
}

// SetRecognizer matches the first of an ordered list of literals that is a
// prefix of the input. Put longer or higher-priority alternatives first.
type SetRecognizer struct {
	alts []string
}

// Set returns a recognizer over the given alternatives, tried in order.
func Set(alts ...string) *SetRecognizer {
	return &SetRecognizer{alts: append([]string(nil), alts...)}
}

// Alternatives returns a copy of the alternatives in match order.
func (s *SetRecognizer) Alternatives() []string {
	return append([]string(nil), s.alts...)
}

// MatchPrefix returns the first non-empty alternative that prefixes rest.
// Empty alternatives never match.
func (s *SetRecognizer) MatchPrefix(rest string) (string, bool) {
	for _, alt := range s.alts {
		if alt != "" && strings.HasPrefix(rest, alt) {
			return alt, true
		}
	}
	return "", false
}

func (s *SetRecognizer) MatchAt(text string, offset int) (string, bool) {
	rest, ok := sliceAt(text, offset)
	if !ok {
		return "", false
	}
	return s.MatchPrefix(rest)
}

func (s *SetRecognizer) String() string {
	data, err := json.Marshal(s.alts)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// RegexpRecognizer matches a regular expression anchored at the scan position.
type RegexpRecognizer struct {
	source   string
	anchored *regexp.Regexp
}

// Regexp compiles expr into a recognizer. The expression is always anchored
// at the start of the remaining text; a leading ^ or \A is allowed but not
// required.
func Regexp(expr string) (*RegexpRecognizer, error) {
	re, err := regexp.Compile(`^(?:` + expr + `)`)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPattern, "compile %q: %v", expr, err)
	}
	return &RegexpRecognizer{source: expr, anchored: re}, nil
}

// RegexpPOSIX is like Regexp but restricts expr to POSIX ERE syntax and
// picks the leftmost-longest match, as regexp.CompilePOSIX does.
func RegexpPOSIX(expr string) (*RegexpRecognizer, error) {
	// POSIX syntax has no non-capturing group; the extra group is harmless.
	re, err := regexp.CompilePOSIX(`^(` + expr + `)`)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPattern, "compile posix %q: %v", expr, err)
	}
	return &RegexpRecognizer{source: expr, anchored: re}, nil
}

// MustRegexp is like Regexp but panics on a bad expression.
func MustRegexp(expr string) *RegexpRecognizer {
	r, err := Regexp(expr)
	if err != nil {
		panic(err)
	}
	return r
}

// FromRegexp builds a recognizer from the source of an already compiled
// expression. The source is recompiled anchored with Perl syntax, so the
// leftmost-longest mode of regexp.CompilePOSIX or Longest is not carried
// over; use RegexpPOSIX for that.
func FromRegexp(re *regexp.Regexp) (*RegexpRecognizer, error) {
	return Regexp(re.String())
}

func (r *RegexpRecognizer) MatchPrefix(rest string) (string, bool) {
	loc := r.anchored.FindStringIndex(rest)
	if loc == nil {
		return "", false
	}
	return rest[:loc[1]], true
}

// MatchAt matches against text[offset:]. Assertions such as \b therefore see
// offset as the beginning of the text.
func (r *RegexpRecognizer) MatchAt(text string, offset int) (string, bool) {
	rest, ok := sliceAt(text, offset)
	if !ok {
		return "", false
	}
	return r.MatchPrefix(rest)
}

func (r *RegexpRecognizer) String() string {
	return r.source
}

// MatchFunc inspects the remaining text and returns the matched prefix.
type MatchFunc func(rest string) (string, bool)

// FuncRecognizer adapts a MatchFunc to the Recognizer interface.
type FuncRecognizer struct {
	fn MatchFunc
}

// Func wraps fn. A returned string that is not a prefix of the input is
// treated as no match.
func Func(fn MatchFunc) *FuncRecognizer {
	return &FuncRecognizer{fn: fn}
}

func (f *FuncRecognizer) MatchPrefix(rest string) (string, bool) {
	m, ok := f.fn(rest)
	if !ok || !strings.HasPrefix(rest, m) {
		return "", false
	}
	return m, true
}

func (f *FuncRecognizer) MatchAt(text string, offset int) (string, bool) {
	rest, ok := sliceAt(text, offset)
	if !ok {
		return "", false
	}
	return f.MatchPrefix(rest)
}

func (f *FuncRecognizer) String() string {
	return "<func>"
}
