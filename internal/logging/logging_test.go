package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/rave-go/internal/conf"
)

// Mutates the package loggers, so these tests do not run in parallel.

func TestEnableFileLoggingWritesRecords(t *testing.T) {
	Init()

	logPath := filepath.Join(t.TempDir(), "logs", "rave.log")
	settings := &conf.Settings{}
	settings.Main.Log.Enabled = true
	settings.Main.Log.Path = logPath
	settings.Main.Log.Rotation = conf.RotationDaily

	closeFn, err := EnableFileLogging(settings)
	require.NoError(t, err)

	Info("file logging enabled")
	ForService("transfer").Info("service record")

	require.NoError(t, closeFn())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file logging enabled")
	assert.Contains(t, string(data), `"service":"transfer"`)
	assert.Contains(t, string(data), "service record")
}

func TestEnableFileLoggingDisabled(t *testing.T) {
	Init()

	settings := &conf.Settings{}
	closeFn, err := EnableFileLogging(settings)
	require.NoError(t, err)
	require.NoError(t, closeFn())
}
