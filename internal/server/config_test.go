package server

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the unprefixed fallbacks for the duration of a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HOST", "PORT", "BODY_LIMIT", "MAX_FILES", "MAX_FILE_SIZE", "MAX_DEPTH",
		"CONCURRENCY", "SAMPLES_DIR", "SHUTDOWN_TIMEOUT", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, ":3000", cfg.Addr())
}

func TestLoadConfig_PrefixedAndFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("XML2POSTMAN_MAX_FILES", "3")
	t.Setenv("XML2POSTMAN_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("HOST", "127.0.0.1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 3, cfg.MaxFiles)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "127.0.0.1:8081", cfg.Addr())
}

func TestLoadConfig_PrefixWins(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("XML2POSTMAN_PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("XML2POSTMAN_MAX_FILES", "0")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("XML2POSTMAN_MAX_FILES", "many")
	_, err = LoadConfig()
	require.Error(t, err)
}

func TestParsedLogLevel(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	} {
		assert.Equal(t, want, Config{LogLevel: raw}.ParsedLogLevel(), raw)
	}
}
