// =============================================================================
// EMV QR Payload Toolkit - Logging
// =============================================================================
//
// A tiny leveled, structured logger interface with adapters for the logging
// libraries the toolkit supports. Library packages accept a Logger and never
// construct one; the CLI builds one from configuration at start-up.
//
// BACKENDS:
//   zap      - go.uber.org/zap console encoder (default)
//   logrus   - github.com/sirupsen/logrus text formatter
//   zerolog  - github.com/rs/zerolog console writer
//
// LEVEL RESOLUTION (later wins):
//   1. log_level from the configuration file
//   2. EMVQR_LOG_LEVEL environment variable
//   3. --verbose forces debug
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// EnvLogLevel overrides the configured log level when set to a known level.
const EnvLogLevel = "EMVQR_LOG_LEVEL"

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a leveled logger. Provide an adapter around a logging stack.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// =============================================================================
// LEVELS
// =============================================================================

// Level is a backend-independent log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelOff:
		return "off"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel reads a level name. The second result is false for empty or
// unknown input.
func ParseLevel(raw string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "trace":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "off", "disabled", "none":
		return LevelOff, true
	default:
		return LevelInfo, false
	}
}

// ResolveLevel applies the configured level, then the environment override,
// then verbose.
func ResolveLevel(configured string, verbose bool) Level {
	level, ok := ParseLevel(configured)
	if !ok {
		level = LevelInfo
	}
	if env, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		level = env
	}
	if verbose {
		level = LevelDebug
	}
	return level
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// Backend names accepted by New.
const (
	BackendZap     = "zap"
	BackendLogrus  = "logrus"
	BackendZerolog = "zerolog"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendZap, BackendLogrus, BackendZerolog}

// Options selects and configures a backend.
type Options struct {
	// Backend is one of Backends. Empty means zap.
	Backend string

	// Level is the minimum level written.
	Level Level

	// Output receives log lines. Nil means os.Stderr.
	Output io.Writer
}

// New builds a Logger for opts. LevelOff yields a NopLogger regardless of
// backend.
func New(opts Options) (Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if opts.Level == LevelOff {
		if !validBackend(backend) {
			return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
		}
		return NopLogger{}, nil
	}

	switch backend {
	case "", BackendZap:
		return NewZap(out, opts.Level), nil
	case BackendLogrus:
		return NewLogrus(out, opts.Level), nil
	case BackendZerolog:
		return NewZerolog(out, opts.Level), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

func validBackend(name string) bool {
	if name == "" {
		return true
	}
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
