package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.Server.Port)
	assert.Equal(t, "price_radar", cfg.Database.Name)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 2, cfg.Pipeline.Workers)
	assert.Equal(t, 45*time.Second, cfg.Pipeline.AttemptTimeout)
	assert.Equal(t, "https://www.amazon.in", cfg.Amazon.BaseURL)
	assert.False(t, cfg.Amazon.AssumeRating)
	assert.Equal(t, "INR", cfg.Normalizer.FlipkartCurrency)
	assert.False(t, cfg.Normalizer.TitleFallbackToTarget)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PIPELINE_WORKERS", "4")
	t.Setenv("BROWSER_TIMEOUT", "30s")
	t.Setenv("AMAZON_ASSUME_RATING", "true")
	t.Setenv("AMAZON_ASSUMED_RATING", "4.0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, 30*time.Second, cfg.Browser.Timeout)
	assert.True(t, cfg.Amazon.AssumeRating)
	assert.Equal(t, 4.0, cfg.Amazon.AssumedRating)
}

func TestValidate(t *testing.T) {
	t.Run("invalid port", func(t *testing.T) {
		t.Setenv("PORT", "-1")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("no workers", func(t *testing.T) {
		t.Setenv("PIPELINE_WORKERS", "0")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("assumed rating out of range", func(t *testing.T) {
		t.Setenv("AMAZON_ASSUME_RATING", "true")
		t.Setenv("AMAZON_ASSUMED_RATING", "7.5")
		_, err := Load()
		assert.Error(t, err)
	})
}
