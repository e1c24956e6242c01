package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fotogram/stackup/internal/constants"
	apperrors "github.com/fotogram/stackup/internal/errors"
	"github.com/fotogram/stackup/internal/testutil"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stackup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultProject, cfg.Project)
	assert.Equal(t, constants.DefaultEnvironment, cfg.Environment)
	assert.Equal(t, constants.DefaultRegion, cfg.Region)
	assert.Equal(t, "fotogram-network", cfg.Network.Name)
	assert.Equal(t, "fotogram-app", cfg.App.Name)
	assert.Equal(t, constants.DefaultNetworkTemplate, cfg.Network.Template)
	assert.Equal(t, constants.DefaultAppParameters, cfg.App.Parameters)
	assert.Equal(t, constants.DefaultAssetSource, cfg.Asset.Source)
	assert.Equal(t, constants.DefaultAssetContentType, cfg.Asset.ContentType)
	assert.Equal(t, constants.DefaultPollInterval, cfg.Poll.Interval)
	assert.Equal(t, constants.DefaultPollMaxAttempts, cfg.Poll.MaxAttempts)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
project: galleria
environment: staging
region: eu-west-1
network:
  template: infra/network.yml
poll:
  interval: 45s
  max_attempts: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "galleria", cfg.Project)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "infra/network.yml", cfg.Network.Template)
	assert.Equal(t, 45*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 10, cfg.Poll.MaxAttempts)

	// Untouched keys keep their defaults.
	assert.Equal(t, constants.DefaultAppTemplate, cfg.App.Template)
}

func TestLoadDerivesStackNamesFromProject(t *testing.T) {
	path := writeConfigFile(t, "project: galleria\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "galleria-network", cfg.Network.Name)
	assert.Equal(t, "galleria-app", cfg.App.Name)
}

func TestLoadExplicitStackNamesWin(t *testing.T) {
	path := writeConfigFile(t, `
project: galleria
network:
  name: shared-vpc
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "shared-vpc", cfg.Network.Name)
	assert.Equal(t, "galleria-app", cfg.App.Name)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "region: eu-west-1\n")
	t.Setenv("STACKUP_REGION", "ap-southeast-2")
	t.Setenv("STACKUP_NETWORK_NAME", "env-network")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ap-southeast-2", cfg.Region)
	assert.Equal(t, "env-network", cfg.Network.Name)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadMissingDefaultFileIsAllowed(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultRegion, cfg.Region)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty region", "region: \"\"\n"},
		{"zero poll attempts", "poll:\n  max_attempts: 0\n"},
		{"empty asset key", "asset:\n  key: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)

			_, err := Load(path)
			require.Error(t, err)
			testutil.AssertAppErrorCode(t, err, apperrors.ErrCodeInvalidConfig)
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "region: [unterminated\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestTags(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	tags := cfg.Tags()
	assert.Equal(t, constants.DefaultProject, tags[constants.ProjectTagKey])
	assert.Equal(t, constants.DefaultEnvironment, tags[constants.EnvironmentTagKey])
	assert.Equal(t, constants.ProjectName, tags[constants.ManagedByTagKey])
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"debug", slog.LevelDebug},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		assert.Equal(t, tt.expected, cfg.GetLogLevel(), "level %q", tt.level)
	}
}
