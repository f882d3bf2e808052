package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-assessment/internal/logging"
)

func TestLevelParsing(t *testing.T) {
	assert.True(t, logging.New("debug", "").Core().Enabled(zap.DebugLevel))
	assert.False(t, logging.New("warn", "").Core().Enabled(zap.InfoLevel))
	assert.True(t, logging.New("nonsense", "").Core().Enabled(zap.InfoLevel))
	assert.False(t, logging.New("nonsense", "").Core().Enabled(zap.DebugLevel))
}

func TestFileOutputIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assessd.log")
	logger := logging.New("info", path)
	logger.Info("quiz graded", zap.String("quiz", "QZ1"))
	_ = logger.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(b))
	assert.True(t, strings.HasPrefix(line, "{"), line)
	assert.Contains(t, line, `"msg":"quiz graded"`)
	assert.Contains(t, line, `"quiz":"QZ1"`)
}
