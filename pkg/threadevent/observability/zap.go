package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// zapLogger adapts a zap logger to Logger through its sugared *w methods,
// which accept the same key/value pairs as slog.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps l as a Logger. A nil l yields NopLogger.
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return &zapLogger{sugar: l.Sugar()}
}

func (z *zapLogger) Debug(msg string, args ...any) { z.sugar.Debugw(msg, args...) }
func (z *zapLogger) Info(msg string, args ...any)  { z.sugar.Infow(msg, args...) }
func (z *zapLogger) Warn(msg string, args ...any)  { z.sugar.Warnw(msg, args...) }
func (z *zapLogger) Error(msg string, args ...any) { z.sugar.Errorw(msg, args...) }

// FileOptions controls log file rotation.
type FileOptions struct {
	// MaxSizeMB is the size at which the file is rotated. Default 10.
	MaxSizeMB int
	// MaxBackups is how many rotated files are kept. Default 5.
	MaxBackups int
	// MaxAgeDays is how long rotated files are kept. Default 30.
	MaxAgeDays int
	// Compress gzips rotated files.
	Compress bool
}

// DefaultFileOptions returns the rotation settings used by NewFileLogger.
func DefaultFileOptions() FileOptions {
	return FileOptions{
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Compress:   true,
	}
}

// NewFileLogger builds a zap logger writing JSON lines to a rotated file at
// path. When console is true, output is also written to stderr in zap's
// development console format. level is a zap level name ("debug", "info",
// "warn", "error"); empty means info.
//
// Callers should Sync the returned logger before exit.
func NewFileLogger(path, level string, console bool) (*zap.Logger, error) {
	return NewFileLoggerWithOptions(path, level, console, DefaultFileOptions())
}

// NewFileLoggerWithOptions is NewFileLogger with explicit rotation settings.
func NewFileLoggerWithOptions(path, level string, console bool, opts FileOptions) (*zap.Logger, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path is required")
	}

	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		lvl = parsed
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		lvl,
	)

	if console {
		consoleCore := zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stderr),
			lvl,
		)
		core = zapcore.NewTee(core, consoleCore)
	}

	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)), nil
}
