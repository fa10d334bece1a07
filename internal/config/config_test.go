package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWhenUnset(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_PATH", "OUTPUT_ROOT", "TTS_WORKER_PATH", "INGEST_THRESHOLD", "EVENT_RETENTION_DAYS"} {
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "3000", cfg.Port)
	require.Equal(t, "./data/archive.db", cfg.DatabasePath)
	require.Equal(t, 10, cfg.IngestThreshold)
	require.Equal(t, 30, cfg.EventRetentionDays)
}

func TestLoadEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("INGEST_THRESHOLD", "25")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, 25, cfg.IngestThreshold)
	require.Equal(t, "sk-or-test", cfg.OpenRouterAPIKey)
}
