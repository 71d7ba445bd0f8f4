package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a *zap.Logger.
type ZapLogger struct{ L *zap.Logger }

// NewZap returns a console-encoded zap logger writing to w.
func NewZap(w io.Writer, level Level) ZapLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		zapLevel(level),
	)
	return ZapLogger{L: zap.New(core)}
}

func (z ZapLogger) Debug(msg string, f Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f Fields) { z.L.Error(msg, zf(f)...) }

func zf(f Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func zapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
