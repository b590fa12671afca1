package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/listify/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LISTIFY_API_URL", "")
	t.Setenv("LISTIFY_POLL_INTERVAL", "")
	t.Setenv("LISTIFY_HOME", "")
	t.Setenv("LISTIFY_LOG_FILE", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, "https://listify.space", cfg.ShareBaseURL)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Contains(t, cfg.LogFile, "listify.log")
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	home := t.TempDir()
	t.Setenv("LISTIFY_API_URL", "https://api.example.com/")
	t.Setenv("LISTIFY_POLL_INTERVAL", "500ms")
	t.Setenv("LISTIFY_HOME", home)
	t.Setenv("LISTIFY_LOG_FILE", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, home+"/listify.log", cfg.LogFile)
}

func TestLoadRejectsBadInterval(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LISTIFY_POLL_INTERVAL", "soon")
	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("LISTIFY_POLL_INTERVAL", "-1s")
	_, err = config.Load()
	assert.Error(t, err)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
