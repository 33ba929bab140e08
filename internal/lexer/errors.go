package lexer

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"GoLex/internal/position"
)

// ErrAllMatchersMatchNothing is returned when text remains at the scan
// position and no recognizer matches it.
var ErrAllMatchersMatchNothing = errors.New("all matchers match nothing")

// MatchError carries where a run stopped. It unwraps to
// ErrAllMatchersMatchNothing.
type MatchError struct {
	Offset   int
	Position position.Position
	// Snippet is the start of the unmatched text.
	Snippet string
}

const maxSnippet = 16

func newMatchError(text string, offset int, pos position.Position) *MatchError {
	rest := []rune(text[offset:])
	if len(rest) > maxSnippet {
		rest = rest[:maxSnippet]
	}
	return &MatchError{Offset: offset, Position: pos, Snippet: string(rest)}
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("%s at %s (offset %d, near %q)", ErrAllMatchersMatchNothing, e.Position, e.Offset, e.Snippet)
}

func (e *MatchError) Unwrap() error {
	return ErrAllMatchersMatchNothing
}
