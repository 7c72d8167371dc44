// Package logging builds the zap loggers used across polyglot.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the logger.
type Options struct {
	Production bool          // JSON output instead of console
	Level      zapcore.Level // Minimum enabled level
	Output     io.Writer     // Defaults to os.Stdout
}

// New builds a logger. Entries below ERROR omit the caller; ERROR and
// above carry the caller and a stack trace.
func New(opts Options) *zap.Logger {
	var enc zapcore.EncoderConfig
	if opts.Production {
		enc = zap.NewProductionEncoderConfig()
	} else {
		enc = zap.NewDevelopmentEncoderConfig()
	}
	enc.TimeKey = "timestamp"
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder

	encNoCaller := enc
	encNoCaller.CallerKey = ""

	encWithCaller := enc
	encWithCaller.CallerKey = "caller"

	newEncoder := zapcore.NewConsoleEncoder
	if opts.Production {
		newEncoder = zapcore.NewJSONEncoder
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	ws := zapcore.Lock(zapcore.AddSync(out))

	coreNoCaller := zapcore.NewCore(newEncoder(encNoCaller), ws,
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= opts.Level && lvl < zapcore.ErrorLevel
		}))
	coreWithCaller := zapcore.NewCore(newEncoder(encWithCaller), ws,
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= opts.Level && lvl >= zapcore.ErrorLevel
		}))

	return zap.New(
		zapcore.NewTee(coreNoCaller, coreWithCaller),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
}

// ParseLevel parses a level name, defaulting to info for empty input.
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(name)
}
