package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
}

func TestRotatingFile_RotatesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shipyard.log")
	w := &rotatingFile{path: path, maxBytes: 10, maxBackups: 1}
	t.Cleanup(func() { _ = w.Close() })

	for i := 0; i < 3; i++ {
		_, err := w.Write([]byte("12345678\n"))
		require.NoError(t, err)
		// rotated names carry a millisecond timestamp
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, w.Sync())

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "12345678\n", string(current))

	backups, err := filepath.Glob(filepath.Join(dir, "shipyard-*.log"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	log, err := New(&Config{Level: "info", Output: OutputFile, Format: "json", FilePath: path})
	require.NoError(t, err)

	log.WithFields(Component("test")).Info("hello", DeploymentID("d-1"), Status("SUCCESS"))
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, string(data), `"deployment_id":"d-1"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestGet_FallsBackWithoutInit(t *testing.T) {
	assert.NotNil(t, Get())
	assert.NotPanics(t, func() { NewNop().Info("discarded") })
}
