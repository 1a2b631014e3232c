package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 2, cfg.Engine.Parameters)
	assert.Equal(t, 2, cfg.Engine.Order)

	assert.Equal(t, 0.5, cfg.Sample.From)
	assert.Equal(t, 4.0, cfg.Sample.To)
	assert.Equal(t, 8, cfg.Sample.Points)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
}

func TestLoadOrDefault(t *testing.T) {
	// Should return default when no env vars set
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, 2, cfg.Engine.Parameters)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"DIFF_PARAMETERS": "3",
		"DIFF_ORDER":      "4",
		"SAMPLE_FROM":     "1.0",
		"SAMPLE_TO":       "2.0",
		"SAMPLE_POINTS":   "16",
		"LOG_LEVEL":       "debug",
		"LOG_DEV":         "true",
	}

	for key, value := range envVars {
		err := os.Setenv(key, value)
		require.NoError(t, err)
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Engine.Parameters)
	assert.Equal(t, 4, cfg.Engine.Order)
	assert.Equal(t, 1.0, cfg.Sample.From)
	assert.Equal(t, 2.0, cfg.Sample.To)
	assert.Equal(t, 16, cfg.Sample.Points)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
}

func TestValidate(t *testing.T) {
	t.Run("rejects negative parameters", func(t *testing.T) {
		cfg := Default()
		cfg.Engine.Parameters = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects negative order", func(t *testing.T) {
		cfg := Default()
		cfg.Engine.Order = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects empty grid", func(t *testing.T) {
		cfg := Default()
		cfg.Sample.Points = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("accepts defaults", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})
}
