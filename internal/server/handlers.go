package server

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"GoLex/internal/lexer"
	"GoLex/internal/logutil"
	"GoLex/internal/ruleset"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20

// Handler holds HTTP handlers for the GoLex API.
type Handler struct {
	mgr          *Manager
	logger       *zap.Logger
	version      string
	maxBodyBytes int64
}

// NewHandler creates a new Handler backed by the given Manager.
func NewHandler(mgr *Manager, logger *zap.Logger, version string, maxBodyBytes int64) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{
		mgr:          mgr,
		logger:       logger.With(logutil.FieldComponent("http")),
		version:      version,
		maxBodyBytes: maxBodyBytes,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Rule set lifecycle.
	mux.HandleFunc("GET /rulesets", h.handleListRulesets)
	mux.HandleFunc("POST /rulesets", h.handleCreateRuleset)
	mux.HandleFunc("GET /rulesets/{name}", h.handleGetRuleset)
	mux.HandleFunc("DELETE /rulesets/{name}", h.handleDeleteRuleset)

	// Tokenization.
	mux.HandleFunc("POST /rulesets/{name}/tokenize", h.handleTokenize)
	mux.HandleFunc("POST /tokenize", h.handleTokenizeInline)

	// Probes.
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /ready", h.handleReady)
}

type rulesetInfo struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Builtin     bool              `json:"builtin"`
	Version     uint32            `json:"version"`
	CreatedAt   *time.Time        `json:"created_at,omitempty"`
	RuleCount   int               `json:"rule_count"`
	Rules       []ruleset.RuleDef `json:"rules,omitempty"`
}

func describe(c *ruleset.Compiled, withRules bool) rulesetInfo {
	info := rulesetInfo{
		Name:        c.Name(),
		Description: c.Def.Description,
		Builtin:     c.Builtin,
		Version:     c.Def.Version,
		RuleCount:   len(c.Def.Rules),
	}
	if !c.Def.CreatedAt.IsZero() {
		createdAt := c.Def.CreatedAt
		info.CreatedAt = &createdAt
	}
	if withRules {
		info.Rules = c.Def.Rules
	}
	return info
}

// --- Rule Set Lifecycle ---

func (h *Handler) handleListRulesets(w http.ResponseWriter, r *http.Request) {
	infos := lo.Map(h.mgr.List(), func(c *ruleset.Compiled, _ int) rulesetInfo {
		return describe(c, false)
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"rulesets": infos,
	})
}

// handleCreateRuleset accepts a rule set document in JSON or YAML.
func (h *Handler) handleCreateRuleset(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r, h.maxBodyBytes)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	rs, err := ruleset.Parse(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.mgr.Create(rs)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "created",
		"ruleset": describe(c, true),
	})
}

func (h *Handler) handleGetRuleset(w http.ResponseWriter, r *http.Request) {
	c, err := h.mgr.Get(r.PathValue("name"))
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, describe(c, true))
}

func (h *Handler) handleDeleteRuleset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.mgr.Delete(name); err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"name":   name,
	})
}

// --- Tokenization ---

type tokenizeRequest struct {
	Text           string            `json:"text"`
	SkipWhitespace bool              `json:"skip_whitespace"`
	Rules          []ruleset.RuleDef `json:"rules,omitempty"`
}

func (h *Handler) handleTokenize(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var req tokenizeRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		h.writeFailure(w, err)
		return
	}
	if len(req.Rules) > 0 {
		writeError(w, http.StatusBadRequest, "rules are only accepted by /tokenize")
		return
	}

	start := time.Now()
	tokens, err := h.mgr.Tokenize(name, req.Text, req.SkipWhitespace)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeTokens(w, name, tokens, time.Since(start))
}

func (h *Handler) handleTokenizeInline(w http.ResponseWriter, r *http.Request) {
	var req tokenizeRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		h.writeFailure(w, err)
		return
	}

	start := time.Now()
	tokens, err := h.mgr.TokenizeInline(req.Rules, req.Text, req.SkipWhitespace)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeTokens(w, InlineRuleset, tokens, time.Since(start))
}

func writeTokens(w http.ResponseWriter, name string, tokens []lexer.Token, took time.Duration) {
	if tokens == nil {
		tokens = []lexer.Token{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"ruleset": name,
		"took_ms": took.Milliseconds(),
		"count":   len(tokens),
		"tokens":  tokens,
	})
}

// --- Probes ---

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": h.version,
	})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"rulesets": len(h.mgr.List()),
	})
}

// --- Helpers ---

// writeFailure maps an error to its HTTP status.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	var matchErr *lexer.MatchError
	switch {
	case errors.As(err, &matchErr):
		writeErrorDetail(w, http.StatusUnprocessableEntity, map[string]any{
			"message": matchErr.Error(),
			"line":    matchErr.Position.Line,
			"column":  matchErr.Position.Column,
			"offset":  matchErr.Offset,
		})
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, errInvalidBody):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ruleset.ErrRulesetNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ruleset.ErrRulesetExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ruleset.ErrBuiltinRuleset),
		errors.Is(err, ruleset.ErrInvalidName),
		errors.Is(err, ruleset.ErrInvalidRule),
		errors.Is(err, ruleset.ErrNoRules),
		errors.Is(err, ruleset.ErrTooManyRules),
		errors.Is(err, ruleset.ErrRulesetCorrupt):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
