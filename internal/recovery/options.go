package recovery

import "go.uber.org/zap"

// Options configures startup recovery of the rule-set store.
type Options struct {
	// Quarantine moves rule-set files that fail verification out of the
	// store. When false they are left in place and only skipped.
	// Default: true.
	Quarantine bool

	// Logger for recovery events. If nil, a no-op logger is used.
	Logger *zap.Logger
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Quarantine: true,
	}
}
