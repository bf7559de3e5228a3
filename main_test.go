package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("A missing default file falls back to the environment", func(t *testing.T) {
		// Given: no file at the default path
		t.Setenv("PROFILE", "guest")

		// When: loading without an explicit path
		conf, err := loadConfig(filepath.Join(t.TempDir(), "config.yml"), false)

		// Then: the environment is used
		require.NoError(t, err)
		assert.Equal(t, "guest", conf.Profile)
	})

	t.Run("A missing explicit file is fatal", func(t *testing.T) {
		assert.Panics(t, func() {
			_, _ = loadConfig(filepath.Join(t.TempDir(), "missing.yml"), true)
		})
	})

	t.Run("An explicit file is read", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "relay.yml")
		require.NoError(t, os.WriteFile(path, []byte("profile: work\nrelay:\n  url: ws://relay.local:9000\n"), 0o600))

		conf, err := loadConfig(path, true)

		require.NoError(t, err)
		assert.Equal(t, "work", conf.Profile)
		assert.Equal(t, "ws://relay.local:9000", conf.Relay.Endpoint())
	})
}
