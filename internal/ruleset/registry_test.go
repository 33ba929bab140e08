package ruleset

import (
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoLex/internal/lexer"
)

func optsForTest() lexer.Options {
	return lexer.Options{Newline: "\n"}
}

func TestRegistry_BuiltinRulesets(t *testing.T) {
	r := NewRegistry("\n")
	assert.Equal(t, []string{BuiltinKeyword, BuiltinStandard, BuiltinWhitespace}, r.Names())

	for _, name := range r.Names() {
		c, err := r.Get(name)
		require.NoError(t, err, name)
		assert.True(t, c.Builtin)
		assert.Equal(t, name, c.Name())
		assert.NotEmpty(t, c.Recognizers())
	}
}

func TestBuiltins_Tokenize(t *testing.T) {
	r := NewRegistry("\n")
	input := "The Quick, brown fox!\n  jumps"

	tests := []struct {
		name string
		want []string
	}{
		{BuiltinStandard, []string{"The", "Quick", ",", "brown", "fox", "!", "jumps"}},
		{BuiltinWhitespace, []string{"The", "Quick,", "brown", "fox!", "jumps"}},
		{BuiltinKeyword, []string{input}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := r.Get(tt.name)
			require.NoError(t, err)
			tokens, err := c.Tokenize(input, optsForTest())
			require.NoError(t, err)
			assert.Equal(t, input, lexer.Join(tokens))
			assert.Equal(t, tt.want, lexer.Texts(lexer.FilterWhitespace(tokens)))
		})
	}
}

func TestBuiltins_EmptyInput(t *testing.T) {
	r := NewRegistry("\n")
	for _, name := range r.Names() {
		c, err := r.Get(name)
		require.NoError(t, err)
		tokens, err := c.Tokenize("", optsForTest())
		require.NoError(t, err)
		assert.Empty(t, tokens)
	}
}

func TestRegistry_UnknownRuleset(t *testing.T) {
	_, err := NewRegistry("\n").Get("nonexistent")
	assert.True(t, errors.Is(err, ErrRulesetNotFound))
}

func TestRegistry_RegisterAndRemove(t *testing.T) {
	r := NewRegistry("\n")
	c, err := r.Register(classRuleset())
	require.NoError(t, err)
	assert.False(t, c.Builtin)
	assert.Equal(t, 4, r.Len())

	got, err := r.Get("class-decl")
	require.NoError(t, err)
	assert.Same(t, c, got)

	_, err = r.Register(classRuleset())
	assert.True(t, errors.Is(err, ErrRulesetExists))

	require.NoError(t, r.Remove("class-decl"))
	assert.True(t, errors.Is(r.Remove("class-decl"), ErrRulesetNotFound))
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_RegisterInvalid(t *testing.T) {
	r := NewRegistry("\n")
	rs := classRuleset()
	rs.Rules = nil
	_, err := r.Register(rs)
	assert.True(t, errors.Is(err, ErrNoRules))
}

func TestRegistry_BuiltinsCannotBeReplaced(t *testing.T) {
	r := NewRegistry("\n")
	rs := classRuleset()
	rs.Name = BuiltinStandard
	_, err := r.Register(rs)
	assert.True(t, errors.Is(err, ErrRulesetExists))
	assert.True(t, errors.Is(r.Remove(BuiltinStandard), ErrBuiltinRuleset))
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry("\n")
	_, err := r.Register(classRuleset())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := r.Get("class-decl")
			if !assert.NoError(t, err) {
				return
			}
			tokens, err := c.Tokenize("class A {}", optsForTest())
			assert.NoError(t, err)
			assert.Equal(t, "class A {}", lexer.Join(tokens))
			_ = r.Names()
		}()
	}
	wg.Wait()
}
