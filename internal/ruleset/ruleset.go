package ruleset

import (
	"regexp"
	"time"

	"github.com/cockroachdb/errors"

	"GoLex/internal/pattern"
	"GoLex/internal/storage"
)

// Rule kinds.
const (
	KindLiteral    = "literal"
	KindSet        = "set"
	KindRegexp     = "regexp"
	KindWhitespace = "whitespace"
	KindNewline    = "newline"
)

// Rule set limits.
const (
	MaxNameLength = 255
	MaxRules      = 512
)

var (
	ErrRulesetNotFound = errors.New("rule set not found")
	ErrRulesetExists   = errors.New("rule set already exists")
	ErrRulesetCorrupt  = errors.New("rule set checksum verification failed")
	ErrBuiltinRuleset  = errors.New("built-in rule set cannot be modified")
	ErrInvalidName     = errors.New("invalid rule set name")
	ErrInvalidRule     = errors.New("invalid rule")
	ErrNoRules         = errors.New("rule set has no rules")
	ErrTooManyRules    = errors.New("rule set exceeds maximum rule count")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Ruleset is a named, ordered list of rule definitions. Earlier rules have
// higher priority.
type Ruleset struct {
	Version     uint32           `json:"version"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	Rules       []RuleDef        `json:"rules"`
	Checksum    storage.Checksum `json:"checksum,omitempty"`
}

// RuleDef defines a single recognizer.
type RuleDef struct {
	Kind   string   `json:"kind"`
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

// ValidateName checks that name can be used as a rule set name and a file
// name.
func ValidateName(name string) error {
	if len(name) > MaxNameLength {
		return errors.Wrapf(ErrInvalidName, "%q is %d bytes (max %d)", name, len(name), MaxNameLength)
	}
	if !validName.MatchString(name) {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return nil
}

// Validate checks the rule set for correctness, including that every
// regular expression compiles.
func (rs *Ruleset) Validate() error {
	if err := ValidateName(rs.Name); err != nil {
		return err
	}
	if len(rs.Rules) == 0 {
		return ErrNoRules
	}
	if len(rs.Rules) > MaxRules {
		return errors.Wrapf(ErrTooManyRules, "%d rules (max %d)", len(rs.Rules), MaxRules)
	}
	for i, r := range rs.Rules {
		if _, err := r.compile("\n"); err != nil {
			return errors.Wrapf(err, "rule %d", i)
		}
	}
	return nil
}

// Compile turns the rules into recognizers, keeping their order. newline is
// the text matched by newline rules.
func (rs *Ruleset) Compile(newline string) ([]pattern.Recognizer, error) {
	out := make([]pattern.Recognizer, 0, len(rs.Rules))
	for i, r := range rs.Rules {
		rec, err := r.compile(newline)
		if err != nil {
			return nil, errors.Wrapf(err, "rule set %q rule %d", rs.Name, i)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r RuleDef) compile(newline string) (pattern.Recognizer, error) {
	switch r.Kind {
	case KindLiteral:
		if r.Value == "" {
			return nil, errors.Wrap(ErrInvalidRule, "literal needs a non-empty value")
		}
		return pattern.Literal(r.Value), nil
	case KindSet:
		if len(r.Values) == 0 {
			return nil, errors.Wrap(ErrInvalidRule, "set needs at least one value")
		}
		for _, v := range r.Values {
			if v == "" {
				return nil, errors.Wrap(ErrInvalidRule, "set values must be non-empty")
			}
		}
		return pattern.Set(r.Values...), nil
	case KindRegexp:
		if r.Value == "" {
			return nil, errors.Wrap(ErrInvalidRule, "regexp needs a value")
		}
		rec, err := pattern.Regexp(r.Value)
		if err != nil {
			return nil, errors.Mark(err, ErrInvalidRule)
		}
		return rec, nil
	case KindWhitespace:
		return pattern.Whitespace(), nil
	case KindNewline:
		return pattern.Newline(newline), nil
	default:
		return nil, errors.Wrapf(ErrInvalidRule, "unknown kind %q", r.Kind)
	}
}
