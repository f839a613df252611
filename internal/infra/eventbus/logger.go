package eventbus

import (
	"sort"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/go-kratos/kratos/v2/log"
)

var _ watermill.LoggerAdapter = (*logAdapter)(nil)

// logAdapter writes watermill logs through a kratos logger. Trace output is
// dropped; watermill logs every message at that level.
type logAdapter struct {
	logger log.Logger
}

// NewKratosLoggerAdapter returns a watermill logger backed by logger.
func NewKratosLoggerAdapter(logger log.Logger) watermill.LoggerAdapter {
	return &logAdapter{logger: log.With(logger, "module", "eventbus")}
}

func (a *logAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log(log.LevelError, msg, fields, "error", err)
}

func (a *logAdapter) Info(msg string, fields watermill.LogFields) {
	a.log(log.LevelInfo, msg, fields)
}

func (a *logAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log(log.LevelDebug, msg, fields)
}

func (a *logAdapter) Trace(string, watermill.LogFields) {}

func (a *logAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &logAdapter{logger: log.With(a.logger, keyvals(fields)...)}
}

func (a *logAdapter) log(level log.Level, msg string, fields watermill.LogFields, extra ...any) {
	kv := append([]any{log.DefaultMessageKey, msg}, keyvals(fields)...)
	_ = a.logger.Log(level, append(kv, extra...)...)
}

// keyvals flattens fields in key order so log lines are stable.
func keyvals(fields watermill.LogFields) []any {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return kv
}
