// Package logger builds the process logger: zap cores for stdout and an
// optional rotating file, exposed to the rest of the code as a kratos log.Logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"ambassador-tracker/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var _ log.Logger = (*ZapLogger)(nil)

// ZapLogger adapts a zap.Logger to kratos' log.Logger.
type ZapLogger struct {
	log    *zap.Logger
	msgKey string
}

// New creates the zap logger described by c. The returned cleanup flushes
// buffered entries.
func New(c *conf.Log) (*ZapLogger, func(), error) {
	return newWithConsole(c, os.Stdout)
}

func newWithConsole(c *conf.Log, console io.Writer) (*ZapLogger, func(), error) {
	if c == nil {
		c = &conf.Log{}
	}
	level := ParseLevel(c.Level)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = log.DefaultMessageKey

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(console), level),
	}

	var rotator *lumberjack.Logger
	if c.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     7, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), level))
	}

	zl := zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zapcore.ErrorLevel))
	cleanup := func() {
		_ = zl.Sync()
		if rotator != nil {
			_ = rotator.Close()
		}
	}
	return &ZapLogger{log: zl, msgKey: log.DefaultMessageKey}, cleanup, nil
}

// NewFromZap wraps an existing zap logger.
func NewFromZap(zl *zap.Logger) *ZapLogger {
	return &ZapLogger{log: zl, msgKey: log.DefaultMessageKey}
}

// Log implements log.Logger.
func (l *ZapLogger) Log(level log.Level, keyvals ...any) error {
	if len(keyvals) == 0 {
		return nil
	}
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "KEYVALS UNPAIRED")
	}

	var msg string
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if key == l.msgKey {
			msg = fmt.Sprint(keyvals[i+1])
			continue
		}
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}

	switch level {
	case log.LevelDebug:
		l.log.Debug(msg, fields...)
	case log.LevelInfo:
		l.log.Info(msg, fields...)
	case log.LevelWarn:
		l.log.Warn(msg, fields...)
	case log.LevelError:
		l.log.Error(msg, fields...)
	case log.LevelFatal:
		l.log.Fatal(msg, fields...)
	}
	return nil
}

// Zap returns the underlying zap logger.
func (l *ZapLogger) Zap() *zap.Logger {
	return l.log
}

// ParseLevel converts a config string to a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
