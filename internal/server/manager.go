package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"GoLex/internal/lexer"
	"GoLex/internal/logutil"
	"GoLex/internal/metrics"
	"GoLex/internal/recovery"
	"GoLex/internal/ruleset"
)

// InlineRuleset labels runs over rules supplied with the request.
const InlineRuleset = "inline"

const (
	inlineCacheSize = 256
	inlineCacheTTL  = 10 * time.Minute
)

// Manager owns the rule-set registry and its on-disk store.
type Manager struct {
	store    *ruleset.Store
	registry *ruleset.Registry
	opts     lexer.Options
	logger   *zap.Logger

	// inline caches compiled request rules keyed by their JSON encoding.
	inline *expirable.LRU[string, *ruleset.Compiled]

	// mu serializes create and delete so the store and registry agree.
	mu sync.Mutex
}

// NewManager opens the store under dataDir, runs recovery and registers
// every stored rule set. Rule sets that fail verification are logged and
// quarantined.
func NewManager(dataDir string, opts lexer.Options, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Newline == "" {
		opts.Newline = lexer.PlatformNewline()
	}

	store, err := ruleset.OpenStore(dataDir)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		store:    store,
		registry: ruleset.NewRegistry(opts.Newline),
		opts:     opts,
		logger:   logger.With(logutil.FieldComponent("manager")),
		inline:   expirable.NewLRU[string, *ruleset.Compiled](inlineCacheSize, nil, inlineCacheTTL),
	}
	if err := m.loadExisting(); err != nil {
		return nil, errors.Wrap(err, "load stored rule sets")
	}
	return m, nil
}

func (m *Manager) loadExisting() error {
	opts := recovery.DefaultOptions()
	opts.Logger = m.logger
	result, err := recovery.Recover(m.store, opts)
	if err != nil {
		return err
	}

	for _, rs := range result.Rulesets {
		if _, err := m.registry.Register(rs); err != nil {
			m.logger.Error("failed to register rule set", logutil.FieldRuleset(rs.Name), zap.Error(err))
			continue
		}
		m.logger.Info("rule set loaded", logutil.FieldRuleset(rs.Name), zap.Int("rules", len(rs.Rules)))
	}
	m.updateGauge()
	return nil
}

// Create registers rs and persists it.
func (m *Manager) Create(rs *ruleset.Ruleset) (*ruleset.Compiled, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rs.Version == 0 {
		rs.Version = 1
	}
	rs.CreatedAt = time.Now().UTC()
	rs.Checksum = ""

	c, err := m.registry.Register(rs)
	if err != nil {
		return nil, err
	}
	// Save stamps the checksum; keep the registered definition untouched.
	persisted := *rs
	if err := m.store.Save(&persisted); err != nil {
		_ = m.registry.Remove(rs.Name)
		return nil, err
	}

	m.updateGauge()
	m.logger.Info("rule set created", logutil.FieldRuleset(rs.Name), zap.Int("rules", len(rs.Rules)))
	return c, nil
}

// Delete removes a stored rule set. Built-ins cannot be deleted.
func (m *Manager) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := m.registry.Get(name)
	if err != nil {
		return err
	}
	if c.Builtin {
		return errors.Wrapf(ruleset.ErrBuiltinRuleset, "%q", name)
	}
	if err := m.store.Delete(name); err != nil && !errors.Is(err, ruleset.ErrRulesetNotFound) {
		return err
	}
	if err := m.registry.Remove(name); err != nil {
		return err
	}

	m.updateGauge()
	m.logger.Info("rule set deleted", logutil.FieldRuleset(name))
	return nil
}

// Get returns the named rule set.
func (m *Manager) Get(name string) (*ruleset.Compiled, error) {
	return m.registry.Get(name)
}

// List returns all rule sets sorted by name.
func (m *Manager) List() []*ruleset.Compiled {
	return lo.FilterMap(m.registry.Names(), func(name string, _ int) (*ruleset.Compiled, bool) {
		c, err := m.registry.Get(name)
		return c, err == nil
	})
}

// Tokenize runs the named rule set over text.
func (m *Manager) Tokenize(name, text string, skipWhitespace bool) ([]lexer.Token, error) {
	c, err := m.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return m.tokenize(c, text, skipWhitespace)
}

// TokenizeInline compiles rules for a run over text. Compiled rules are
// cached, so repeated requests with the same rules skip compilation.
func (m *Manager) TokenizeInline(rules []ruleset.RuleDef, text string, skipWhitespace bool) ([]lexer.Token, error) {
	c, err := m.compileInline(rules)
	if err != nil {
		return nil, err
	}
	return m.tokenize(c, text, skipWhitespace)
}

func (m *Manager) compileInline(rules []ruleset.RuleDef) (*ruleset.Compiled, error) {
	key, err := json.Marshal(rules)
	if err != nil {
		return nil, errors.Wrap(err, "encode inline rules")
	}
	if c, ok := m.inline.Get(string(key)); ok {
		return c, nil
	}
	c, err := ruleset.Compile(&ruleset.Ruleset{Name: InlineRuleset, Rules: rules}, m.opts.Newline)
	if err != nil {
		return nil, err
	}
	m.inline.Add(string(key), c)
	return c, nil
}

func (m *Manager) tokenize(c *ruleset.Compiled, text string, skipWhitespace bool) ([]lexer.Token, error) {
	opts := m.opts
	opts.Logger = m.logger.With(logutil.FieldRuleset(c.Name()))
	opts.Observer = metrics.Observer(c.Name())

	tokens, err := c.Tokenize(text, opts)
	if err != nil {
		return nil, err
	}
	if skipWhitespace {
		tokens = lexer.FilterWhitespace(tokens)
	}
	return tokens, nil
}

func (m *Manager) updateGauge() {
	metrics.RulesetsLoaded.Set(float64(m.registry.Len()))
}
