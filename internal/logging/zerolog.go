package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger.
type ZerologLogger struct{ L zerolog.Logger }

// NewZerolog returns a zerolog logger with a console writer on w.
func NewZerolog(w io.Writer, level Level) ZerologLogger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	logger := zerolog.New(output).
		Level(zerologLevel(level)).
		With().Timestamp().Str("app", "emvqr").Logger()
	return ZerologLogger{L: logger}
}

func (z ZerologLogger) Debug(msg string, f Fields) { z.L.Debug().Fields(map[string]any(f)).Msg(msg) }
func (z ZerologLogger) Info(msg string, f Fields)  { z.L.Info().Fields(map[string]any(f)).Msg(msg) }
func (z ZerologLogger) Warn(msg string, f Fields)  { z.L.Warn().Fields(map[string]any(f)).Msg(msg) }
func (z ZerologLogger) Error(msg string, f Fields) { z.L.Error().Fields(map[string]any(f)).Msg(msg) }

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
