package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("parses a full config file", func(t *testing.T) {
		path := writeConfig(t, `
token = "secret"
counter_id = 44147844

[log]
level = "debug"
format = "json"

[export]
poll_interval_seconds = 5
overall_timeout_seconds = 1800
max_retry_attempts = 3
retry_base_delay_seconds = 2
part_concurrency = 8
keep_after_fetch = true
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "secret", cfg.Token)
		assert.Equal(t, int64(44147844), cfg.CounterID)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, 5, cfg.Export.PollIntervalSeconds)
		assert.Equal(t, 8, cfg.Export.PartConcurrency)
		assert.True(t, cfg.Export.KeepAfterFetch)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing file yields an empty config", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		assert.Empty(t, cfg.Token)
	})

	t.Run("malformed file fails", func(t *testing.T) {
		path := writeConfig(t, `token = `)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("environment token overrides the file", func(t *testing.T) {
		path := writeConfig(t, `
token = "from-file"
counter_id = 1
`)
		t.Setenv(EnvToken, "from-env")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Token)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("requires a token", func(t *testing.T) {
		cfg := &Config{CounterID: 1}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvToken)
	})

	t.Run("requires a counter id", func(t *testing.T) {
		cfg := &Config{Token: "t"}
		assert.Error(t, cfg.Validate())
	})
}
