package logutil

import (
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FieldNameComponent = "component"
	FieldNameRuleset   = "ruleset"
)

// Config describes how the process logger is built.
type Config struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// Format is json or console.
	Format string
}

// New builds a logger writing to stderr.
func New(cfg Config) (*zap.Logger, error) {
	var zc zap.Config
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		zc = zap.NewProductionConfig()
	case "console", "text":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, errors.Newf("unknown log format %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return logger, nil
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// FieldComponent returns a zap field with the component name.
func FieldComponent(component string) zap.Field {
	return zap.String(FieldNameComponent, component)
}

// FieldRuleset returns a zap field with the rule set name.
func FieldRuleset(name string) zap.Field {
	return zap.String(FieldNameRuleset, name)
}
