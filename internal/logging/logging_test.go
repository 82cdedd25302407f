package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/novvoo/go-pdfmaster/internal/config"
)

func TestNew(t *testing.T) {
	for _, cfg := range []config.LoggingConfig{
		{Level: "info", Format: "json"},
		{Level: "debug", Format: "console", Development: true},
		{},
	} {
		logger, level, err := New(cfg)
		require.NoError(t, err)
		require.NotNil(t, logger)
		want, _ := ParseLevel(cfg.Level)
		assert.Equal(t, want, level.Level())
	}
}

func TestNewBadLevel(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Level: "chatty"})
	assert.Error(t, err)
}

func TestSetLevel(t *testing.T) {
	logger, level, err := New(config.LoggingConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, SetLevel(level, "debug"))
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	assert.Error(t, SetLevel(level, "nope"))
	assert.Equal(t, zapcore.DebugLevel, level.Level())
}
