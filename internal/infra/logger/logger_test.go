package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"ambassador-tracker/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_Log(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	helper := log.NewHelper(log.With(l, "module", "test"))
	helper.Infow("msg", "click stored", "click_id", "c1")
	helper.Warnf("lookup failed for %s", "8.8.8.8")

	require.Equal(t, 2, logs.Len())
	first := logs.All()[0]
	assert.Equal(t, "click stored", first.Message)
	assert.Equal(t, zapcore.InfoLevel, first.Level)
	assert.Equal(t, "c1", first.ContextMap()["click_id"])
	assert.Equal(t, "test", first.ContextMap()["module"])

	second := logs.All()[1]
	assert.Equal(t, zapcore.WarnLevel, second.Level)
	assert.Equal(t, "lookup failed for 8.8.8.8", second.Message)
}

func TestZapLogger_UnpairedKeyvals(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	require.NoError(t, l.Log(log.LevelInfo, "orphan"))
	require.NoError(t, l.Log(log.LevelInfo))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "KEYVALS UNPAIRED", logs.All()[0].ContextMap()["orphan"])
}

func TestNew_WritesJSONAndFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "app.log")

	l, cleanup, err := newWithConsole(&conf.Log{Level: "debug", File: file}, &buf)
	require.NoError(t, err)

	require.NoError(t, l.Log(log.LevelDebug, "msg", "hello", "n", 1))
	cleanup()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, float64(1), entry["n"])

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hello"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}
