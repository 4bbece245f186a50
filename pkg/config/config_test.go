package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/provision-tools/scim2/pkg/config"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := config.NewConfig("")
	require.NoError(t, err)

	require.Equal(t, 30, cfg.Provider.TimeoutSeconds)
	require.False(t, cfg.Provider.Auth.Basic.Enabled)
	require.False(t, cfg.Provider.Auth.Bearer.Enabled)
	require.False(t, cfg.Client.ErrorsAsValues)
	require.Equal(t, zerolog.InfoLevel, cfg.Logging.LogLevelParsed)
}

func TestNewConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	content := `---
logging:
  log_level: debug
provider:
  base_url: https://example.com/scim/v2
  timeout_seconds: 5
  auth:
    bearer:
      enabled: true
      token: sesame
client:
  errors_as_values: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.NewConfig(path)
	require.NoError(t, err)

	require.Equal(t, "https://example.com/scim/v2", cfg.Provider.BaseURL)
	require.Equal(t, 5, cfg.Provider.TimeoutSeconds)
	require.True(t, cfg.Provider.Auth.Bearer.Enabled)
	require.Equal(t, "sesame", cfg.Provider.Auth.Bearer.Token)
	require.True(t, cfg.Client.ErrorsAsValues)
	require.Equal(t, zerolog.DebugLevel, cfg.Logging.LogLevelParsed)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := config.NewConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "doesn't exist")
}

func TestNewConfigEnvOverride(t *testing.T) {
	t.Setenv("SCIM2_PROVIDER_BASE_URL", "https://env.example.com")

	cfg, err := config.NewConfig("")
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com", cfg.Provider.BaseURL)
}

func TestNewConfigBadLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  log_level: shouting\n"), 0o600))

	_, err := config.NewConfig(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "log_level")
}
