package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.NotEmpty(t, cfg.RPCURLs)
	assert.NotEmpty(t, cfg.KeypairFile)
	assert.NotEmpty(t, cfg.AuthorizingKeyFile)
	assert.NotEmpty(t, cfg.DatabaseFile)
	assert.Positive(t, cfg.WithdrawExpirySeconds)
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	want, err := Default()
	require.NoError(t, err)
	assert.Equal(t, want, cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	home := t.TempDir()

	cfg, err := Default()
	require.NoError(t, err)
	cfg.LogLevel = 0
	cfg.RPCURLs = []string{"http://localhost:8899", "http://localhost:8900"}
	cfg.WithdrawExpirySeconds = 300

	require.NoError(t, Save(cfg, home))

	loaded, err := Load(home)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidateConfig(t *testing.T) {
	t.Run("rejects out-of-range log level", func(t *testing.T) {
		cfg, err := Default()
		require.NoError(t, err)
		cfg.LogLevel = 6

		require.Error(t, validateConfig(cfg))
	})

	t.Run("rejects unknown log format", func(t *testing.T) {
		cfg, err := Default()
		require.NoError(t, err)
		cfg.LogFormat = "xml"

		require.Error(t, validateConfig(cfg))
	})

	t.Run("fills empty fields with defaults", func(t *testing.T) {
		cfg := &Config{LogFormat: "json"}

		require.NoError(t, validateConfig(cfg))
		assert.Equal(t, []string{"http://localhost:8899"}, cfg.RPCURLs)
		assert.Equal(t, "payer.json", cfg.KeypairFile)
		assert.Equal(t, "authorizing_key.pem", cfg.AuthorizingKeyFile)
		assert.Equal(t, "vault_data.db", cfg.DatabaseFile)
		assert.Equal(t, int64(120), cfg.WithdrawExpirySeconds)
	})
}
