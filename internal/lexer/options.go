package lexer

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Observer is notified once per completed run.
type Observer interface {
	ObserveRun(tokens int, elapsed time.Duration, err error)
}

// Options configures a Tokenizer.
type Options struct {
	// Newline is the platform newline used by AddNewline.
	Newline string

	// Debug logs every match at debug level.
	Debug bool

	// Logger for tokenizer events. If nil, a no-op logger is used.
	Logger *zap.Logger

	// Observer, if set, receives run statistics.
	Observer Observer
}

// DefaultOptions returns Options for the current platform.
func DefaultOptions() Options {
	return Options{
		Newline: PlatformNewline(),
	}
}

// PlatformNewline returns "\r\n" on Windows and "\n" elsewhere.
func PlatformNewline() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}
