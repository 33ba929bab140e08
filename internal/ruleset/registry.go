package ruleset

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"GoLex/internal/lexer"
	"GoLex/internal/pattern"
)

// Compiled is a validated rule set together with its recognizers.
// It is immutable and safe for concurrent use.
type Compiled struct {
	Def         *Ruleset
	Builtin     bool
	recognizers []pattern.Recognizer
}

// Compile validates rs and builds its recognizers.
func Compile(rs *Ruleset, newline string) (*Compiled, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	recognizers, err := rs.Compile(newline)
	if err != nil {
		return nil, err
	}
	return &Compiled{Def: rs, recognizers: recognizers}, nil
}

// Name returns the rule set name.
func (c *Compiled) Name() string {
	return c.Def.Name
}

// Recognizers returns a copy of the recognizers in priority order.
func (c *Compiled) Recognizers() []pattern.Recognizer {
	return append([]pattern.Recognizer(nil), c.recognizers...)
}

// Tokenize runs a fresh tokenizer over text.
func (c *Compiled) Tokenize(text string, opts lexer.Options) ([]lexer.Token, error) {
	return lexer.Tokenize(c.recognizers, text, opts)
}

// Registry manages compiled rule sets by name.
type Registry struct {
	newline string

	mu       sync.RWMutex
	rulesets map[string]*Compiled
}

// NewRegistry creates a Registry with the built-in rule sets registered.
// newline is used by newline rules of every rule set compiled here.
func NewRegistry(newline string) *Registry {
	r := &Registry{
		newline:  newline,
		rulesets: make(map[string]*Compiled),
	}
	for _, rs := range Builtins() {
		c, err := Compile(rs, newline)
		if err != nil {
			panic(errors.Wrapf(err, "built-in rule set %q", rs.Name))
		}
		c.Builtin = true
		r.rulesets[rs.Name] = c
	}
	return r
}

// Get returns the rule set registered under name.
func (r *Registry) Get(name string) (*Compiled, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.rulesets[name]
	if !ok {
		return nil, errors.Wrapf(ErrRulesetNotFound, "%q", name)
	}
	return c, nil
}

// Register validates, compiles and adds rs.
func (r *Registry) Register(rs *Ruleset) (*Compiled, error) {
	c, err := Compile(rs, r.newline)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rulesets[rs.Name]; exists {
		return nil, errors.Wrapf(ErrRulesetExists, "%q", rs.Name)
	}
	r.rulesets[rs.Name] = c
	return c, nil
}

// Remove drops a registered rule set. Built-ins cannot be removed.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rulesets[name]
	if !ok {
		return errors.Wrapf(ErrRulesetNotFound, "%q", name)
	}
	if c.Builtin {
		return errors.Wrapf(ErrBuiltinRuleset, "%q", name)
	}
	delete(r.rulesets, name)
	return nil
}

// Names returns the sorted names of all registered rule sets.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.rulesets)
	sort.Strings(names)
	return names
}

// Len returns the number of registered rule sets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rulesets)
}
