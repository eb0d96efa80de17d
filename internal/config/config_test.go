// ABOUTME: Tests for configuration loading
// ABOUTME: Covers env expansion, duration parsing, defaults, validation

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
bot:
  name: axis
  farewell: "See you around! 👋"
gemini:
  api_key: test-key
  model: gemini-1.5-flash-latest
  timeout: 15s
matrix:
  homeserver: https://matrix.example.org
  user_id: "@axis:example.org"
  access_token: syt_secret
  allowed_rooms:
    - "!abc:example.org"
database:
  path: /tmp/locust.db
leveling:
  enabled: true
  cooldown: 90s
  min_xp: 10
  max_xp: 30
  announce: true
intents:
  rules_path: /etc/locust/rules.toml
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "axis", cfg.Bot.Name)
	assert.Equal(t, "See you around! 👋", cfg.Bot.Farewell)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
	assert.Equal(t, 15*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, "https://matrix.example.org", cfg.Matrix.Homeserver)
	assert.Equal(t, []string{"!abc:example.org"}, cfg.Matrix.AllowedRooms)
	assert.Equal(t, "/tmp/locust.db", cfg.Database.Path)
	assert.True(t, cfg.Leveling.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Leveling.Cooldown)
	assert.Equal(t, 10, cfg.Leveling.MinXP)
	assert.Equal(t, 30, cfg.Leveling.MaxXP)
	assert.True(t, cfg.Leveling.Announce)
	assert.Equal(t, "/etc/locust/rules.toml", cfg.Intents.RulesPath)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("LOCUST_TEST_GEMINI_KEY", "expanded-key")
	t.Setenv("LOCUST_TEST_MATRIX_TOKEN", "expanded-token")

	path := writeConfig(t, `
gemini:
  api_key: ${LOCUST_TEST_GEMINI_KEY}
matrix:
  homeserver: https://matrix.example.org
  user_id: "@axis:example.org"
  access_token: ${LOCUST_TEST_MATRIX_TOKEN}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded-key", cfg.Gemini.APIKey)
	assert.Equal(t, "expanded-token", cfg.Matrix.AccessToken)
}

func TestLoad_UnsetEnvVarBecomesEmpty(t *testing.T) {
	path := writeConfig(t, `
gemini:
  api_key: ${LOCUST_TEST_DEFINITELY_UNSET}
matrix:
  homeserver: https://matrix.example.org
  user_id: "@axis:example.org"
  access_token: tok
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini.api_key is required")
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
gemini:
  api_key: k
matrix:
  homeserver: https://matrix.example.org
  user_id: "@axis:example.org"
  access_token: tok
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "axis", cfg.Bot.Name)
	assert.Equal(t, "gemini-1.5-flash-latest", cfg.Gemini.Model)
	assert.Equal(t, 10*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, "data/locust.db", cfg.Database.Path)
	assert.Equal(t, time.Minute, cfg.Leveling.Cooldown)
	assert.Equal(t, 15, cfg.Leveling.MinXP)
	assert.Equal(t, 25, cfg.Leveling.MaxXP)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `
gemini:
  api_key: k
  timeout: soon
matrix:
  homeserver: https://matrix.example.org
  user_id: "@axis:example.org"
  access_token: tok
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini.timeout")
}

func TestLoad_XPBoundsValidated(t *testing.T) {
	path := writeConfig(t, `
gemini:
  api_key: k
matrix:
  homeserver: https://matrix.example.org
  user_id: "@axis:example.org"
  access_token: tok
leveling:
  min_xp: 50
  max_xp: 20
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_xp")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "bot: [broken")
	_, err := Load(path)
	require.Error(t, err)
}
