package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/helpline-io/support-portal/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(" warn "))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestLoggerConfigStampsService(t *testing.T) {
	app := config.AppConfig{Name: "support-portal", Version: "1.4.0", Env: "production"}
	cfg := loggerConfig(config.LoggerConfig{Level: "error"}, app)

	assert.Equal(t, zapcore.ErrorLevel, cfg.Level.Level())
	assert.False(t, cfg.Development)
	assert.True(t, cfg.DisableStacktrace)
	assert.Equal(t, "support-portal", cfg.InitialFields["service"])
	assert.Equal(t, "1.4.0", cfg.InitialFields["version"])
	assert.Equal(t, "production", cfg.InitialFields["env"])

	dev := loggerConfig(config.LoggerConfig{}, config.AppConfig{Env: "development"})
	assert.True(t, dev.Development)

	logger, err := NewLogger(config.LoggerConfig{Level: "info"}, app)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
