package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/listify/internal/logging"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "listify.log")
	log := logging.New("debug", path)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("list_id", 7).Info("selected list")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "selected list")
	assert.Contains(t, string(b), "list_id=7")
}

func TestNewFallsBackToInfo(t *testing.T) {
	log := logging.New("chatty", "")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
