package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidLevel))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetBeforeInitDiscards(t *testing.T) {
	logger := Get("silent-test")
	require.NotNil(t, logger)
	logger.Info("nobody hears this")
	assert.Same(t, logger, Get("silent-test"))
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "forcer.log")

	early := Get("early")

	require.NoError(t, Init(Config{
		Level:      "info",
		Path:       path,
		Components: map[string]string{"quiet": "error"},
	}))
	t.Cleanup(func() { _ = Close() })

	early.Info("picked up after init", "k", 1)
	Get("quiet").Info("filtered by component level")
	Get("quiet").Error("passes component level")
	Get("scheduler").Debug("below default level")

	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "picked up after init")
	assert.Contains(t, content, "passes component level")
	assert.NotContains(t, content, "filtered by component level")
	assert.NotContains(t, content, "below default level")
}

func TestInitRejectsBadLevels(t *testing.T) {
	dir := t.TempDir()

	err := Init(Config{Level: "nope", Path: filepath.Join(dir, "a.log")})
	assert.ErrorIs(t, err, ErrInvalidLevel)

	err = Init(Config{Level: "info", Path: filepath.Join(dir, "b.log"), Components: map[string]string{"x": "nope"}})
	assert.ErrorIs(t, err, ErrInvalidLevel)

	err = Init(Config{Level: "info", Path: filepath.Join(dir, "c.log"), ConsoleLevel: "nope"})
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestRotatingWriter_Rotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forcer.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 16, MaxBackups: 2})
	require.NoError(t, err)

	line := []byte(strings.Repeat("x", 10) + "\n")
	for i := 0; i < 6; i++ {
		_, err := w.Write(line)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	backups := w.backups()
	assert.LessOrEqual(t, len(backups), 2, "old backups must be pruned")
	assert.NotEmpty(t, backups)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.LessOrEqual(t, info.Size(), int64(16))
}

func TestRotatingWriter_WriteAfterClose(t *testing.T) {
	w, err := NewRotatingWriter(filepath.Join(t.TempDir(), "x.log"), RotationConfig{})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)
}
