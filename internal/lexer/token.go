package lexer

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"GoLex/internal/pattern"
	"GoLex/internal/position"
)

// Token is one recognized lexical unit.
type Token struct {
	// Text is the exact matched substring.
	Text string `json:"text"`
	// Line and Column are the 1-based position of the first character.
	Line   int `json:"line"`
	Column int `json:"column"`
	// StartByte and EndByte delimit Text in the source, end exclusive.
	StartByte int `json:"start_byte"`
	EndByte   int `json:"end_byte"`
}

// Position returns the token's line and column.
func (t Token) Position() position.Position {
	return position.Position{Line: t.Line, Column: t.Column}
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d %q", t.Line, t.Column, t.Text)
}

// FilterWhitespace returns the tokens whose text does not start with a
// Unicode whitespace character, in their original order.
func FilterWhitespace(tokens []Token) []Token {
	return lo.Reject(tokens, func(t Token, _ int) bool {
		return pattern.IsWhitespace(t.Text)
	})
}

// Texts returns the text of every token.
func Texts(tokens []Token) []string {
	return lo.Map(tokens, func(t Token, _ int) string {
		return t.Text
	})
}

// Join concatenates token texts. For an unfiltered run this is the input.
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}
