package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"GoLex/internal/lexer"
	"GoLex/internal/logutil"
)

// EnvPrefix prefixes every environment override, e.g. GOLEX_PORT.
const EnvPrefix = "GOLEX"

// Config holds the process configuration for the server and the CLI.
type Config struct {
	Port    string
	DataDir string

	Log logutil.Config

	// Newline is the platform newline handed to tokenizers.
	Newline string
	// Debug turns on per-match logging in tokenizers.
	Debug bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxBodyBytes int64
}

// LexerOptions returns tokenizer options derived from the config.
func (c Config) LexerOptions() lexer.Options {
	return lexer.Options{
		Newline: c.Newline,
		Debug:   c.Debug,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("data_dir", "data")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("lexer.newline", lexer.PlatformNewline())
	v.SetDefault("lexer.debug", false)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20)
}

// Load reads configuration from defaults, the optional YAML file at path,
// GOLEX_* environment variables, and overrides, lowest precedence first.
// Override keys use the dotted form, e.g. "log.level".
func Load(path string, overrides map[string]any) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
	}
	for k, val := range overrides {
		v.Set(k, val)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:    cast.ToString(v.Get("port")),
		DataDir: v.GetString("data_dir"),
		Log: logutil.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Newline: UnescapeNewline(v.GetString("lexer.newline")),
	}

	var err error
	if cfg.Debug, err = cast.ToBoolE(v.Get("lexer.debug")); err != nil {
		return Config{}, errors.Wrap(err, "lexer.debug")
	}
	if cfg.ReadTimeout, err = cast.ToDurationE(v.Get("server.read_timeout")); err != nil {
		return Config{}, errors.Wrap(err, "server.read_timeout")
	}
	if cfg.WriteTimeout, err = cast.ToDurationE(v.Get("server.write_timeout")); err != nil {
		return Config{}, errors.Wrap(err, "server.write_timeout")
	}
	if cfg.IdleTimeout, err = cast.ToDurationE(v.Get("server.idle_timeout")); err != nil {
		return Config{}, errors.Wrap(err, "server.idle_timeout")
	}
	if cfg.MaxBodyBytes, err = cast.ToInt64E(v.Get("server.max_body_bytes")); err != nil {
		return Config{}, errors.Wrap(err, "server.max_body_bytes")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	if c.Newline != "\n" && c.Newline != "\r\n" && c.Newline != "\r" {
		return errors.Newf("unsupported newline %q", c.Newline)
	}
	if c.MaxBodyBytes <= 0 {
		return errors.Newf("server.max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// UnescapeNewline turns the escaped forms "\n", "\r\n" and the names
// "lf", "crlf", "cr" into the real newline string. Other values pass through.
func UnescapeNewline(s string) string {
	switch strings.ToLower(s) {
	case `\n`, "lf":
		return "\n"
	case `\r\n`, "crlf":
		return "\r\n"
	case `\r`, "cr":
		return "\r"
	default:
		return s
	}
}
