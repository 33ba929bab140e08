package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoLex/internal/lexer"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, lexer.PlatformNewline(), cfg.Newline)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.IdleTimeout)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "golex.yaml")
	data := []byte(`port: 9090
data_dir: /var/lib/golex
log:
  level: debug
  format: console
lexer:
  newline: crlf
  debug: true
server:
  read_timeout: 5s
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/var/lib/golex", cfg.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "\r\n", cfg.Newline)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
}

func TestLoad_EnvAndOverrides(t *testing.T) {
	t.Setenv("GOLEX_PORT", "7070")
	t.Setenv("GOLEX_LOG_LEVEL", "warn")
	t.Setenv("GOLEX_LEXER_NEWLINE", `\n`)

	cfg, err := Load("", map[string]any{"log.level": "error"})
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "\n", cfg.Newline)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load("", map[string]any{"server.read_timeout": "soon"})
	assert.Error(t, err)

	_, err = Load("", map[string]any{"lexer.newline": "--"})
	assert.Error(t, err)

	_, err = Load("", map[string]any{"server.max_body_bytes": 0})
	assert.Error(t, err)
}

func TestUnescapeNewline(t *testing.T) {
	assert.Equal(t, "\n", UnescapeNewline(`\n`))
	assert.Equal(t, "\n", UnescapeNewline("LF"))
	assert.Equal(t, "\r\n", UnescapeNewline(`\r\n`))
	assert.Equal(t, "\r\n", UnescapeNewline("crlf"))
	assert.Equal(t, "\r", UnescapeNewline("cr"))
	assert.Equal(t, "\n", UnescapeNewline("\n"))
}

func TestLexerOptions(t *testing.T) {
	cfg := Config{Newline: "\r\n", Debug: true}
	opts := cfg.LexerOptions()
	assert.Equal(t, "\r\n", opts.Newline)
	assert.True(t, opts.Debug)
}
