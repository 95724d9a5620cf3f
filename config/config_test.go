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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "taxguard.db", c.Database.Path)
	assert.False(t, c.AIEnabled())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	path := writeConfig(t, `
server:
  port: 9090
database:
  path: /var/lib/taxguard/data.db
openai:
  model: gpt-4o
  timeout_seconds: 10
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "/var/lib/taxguard/data.db", c.Database.Path)
	assert.Equal(t, "gpt-4o", c.OpenAI.Model)
	assert.Equal(t, 10, c.OpenAI.TimeoutSeconds)
}

func TestEnvKeyWinsOverFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	path := writeConfig(t, `
openai:
  api_key: sk-file
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-env", c.OpenAI.APIKey)
	assert.True(t, c.AIEnabled())
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [not a map"))
		assert.Error(t, err)
	})

	t.Run("bad port", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server:\n  port: -1\n"))
		assert.Error(t, err)
	})
}
