package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.ModelName)
	assert.Equal(t, "test-key", cfg.LLM.GeminiAPIKey)
	assert.Equal(t, 100, cfg.Generation.MaxCards)
	assert.Equal(t, 5, cfg.Generation.MaxIterations)
	assert.Equal(t, 5, cfg.Generation.CardsPerIteration)
	assert.Equal(t, "checkpoints/ankigen.sqlite", cfg.Storage.CheckpointPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ANKIGEN_LLM_GEMINI_API_KEY", "prefixed-key")
	t.Setenv("ANKIGEN_LLM_MODEL_NAME", "gemini-2.5-pro")
	t.Setenv("ANKIGEN_SERVER_PORT", "9000")
	t.Setenv("ANKIGEN_GENERATION_MAX_CARDS", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prefixed-key", cfg.LLM.GeminiAPIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.ModelName)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Generation.MaxCards)
}

func TestLoadMissingCredential(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("ANKIGEN_LLM_GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("ANKIGEN_SERVER_LOG_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
}
