package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/1989Cristianq/modelodatos/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, config.LoggingConfig{Level: "warn", Format: "json"}))

	log.Info("dropped")
	log.Warn("kept", "accident_id", 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.EqualValues(t, 7, rec["accident_id"])
}

func TestNew_WritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "app.log")
	log, closer, err := New(config.LoggingConfig{Level: "info", File: file, MaxSizeMB: 1})
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, closer.Close())
	assert.FileExists(t, file)
}

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewHandler(&buf, config.LoggingConfig{Level: "debug", Format: "json"}))
	gl := NewGormLogger(base, 50*time.Millisecond)
	ctx := context.Background()
	sql := func() (string, int64) { return "SELECT 1", 1 }

	decode := func() map[string]any {
		t.Helper()
		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		buf.Reset()
		return rec
	}

	gl.Trace(ctx, time.Now(), sql, nil)
	rec := decode()
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "gorm", rec["component"])

	gl.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	assert.Equal(t, "WARN", decode()["level"])

	gl.Trace(ctx, time.Now(), sql, errors.New("syntax error"))
	assert.Equal(t, "WARN", decode()["level"])

	gl.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Equal(t, "DEBUG", decode()["level"])
}
