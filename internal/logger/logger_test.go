package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLogFilePathDefaultsToWorkdir(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)

	got, err := logFilePath(Options{})
	require.NoError(t, err)
	assert.Equal(t, defaultFilename, filepath.Base(got))
	assert.Equal(t, defaultDir, filepath.Base(filepath.Dir(got)))
	assert.DirExists(t, filepath.Dir(got))
}

func TestReleaseWritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	log := New("release", Options{Dir: dir, Filename: "app.log"})
	log.Sugar().Infow("sale_recorded", "sku_id", 7)
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"event":"sale_recorded"`)
	assert.Contains(t, string(content), `"sku_id":7`)
}

func TestReleaseHonoursLevel(t *testing.T) {
	dir := t.TempDir()
	log := New("release", Options{Dir: dir, Filename: "warn.log", Level: "warn"})
	log.Info("hidden")
	log.Warn("shown")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(dir, "warn.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "hidden")
	assert.Contains(t, string(content), "shown")
}

func TestDebugSkipsFile(t *testing.T) {
	dir := t.TempDir()
	New("debug", Options{Dir: dir, Filename: "debug.log"}).Info("x")
	assert.NoFileExists(t, filepath.Join(dir, "debug.log"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("loud"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
}
