// Package config manages configuration for the stackup CLI.
// It uses Viper for unified configuration management from the project-local
// config file and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/fotogram/stackup/internal/constants"
	apperrors "github.com/fotogram/stackup/internal/errors"
)

// StackConfig describes one CloudFormation stack: its name and the local
// template and parameters files it is created from.
type StackConfig struct {
	Name       string `mapstructure:"name" yaml:"name" validate:"required"`
	Template   string `mapstructure:"template" yaml:"template" validate:"required"`
	Parameters string `mapstructure:"parameters" yaml:"parameters" validate:"required"`
}

// AssetConfig describes the static file published to the application bucket
// after a successful deployment.
type AssetConfig struct {
	Source      string `mapstructure:"source" yaml:"source" validate:"required"`
	Key         string `mapstructure:"key" yaml:"key" validate:"required"`
	ContentType string `mapstructure:"content_type" yaml:"content_type" validate:"required"`
}

// PollConfig bounds the stack status poll loop. Interval times MaxAttempts
// caps how long a single stack operation is awaited.
type PollConfig struct {
	Interval    time.Duration `mapstructure:"interval" yaml:"interval" validate:"required"`
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts" validate:"required,gt=0"`
}

// Config represents the deployment configuration for both entry points.
// It supports loading from a YAML file and STACKUP_* environment variables.
type Config struct {
	Project     string      `mapstructure:"project" yaml:"project" validate:"required"`
	Environment string      `mapstructure:"environment" yaml:"environment" validate:"required"`
	Region      string      `mapstructure:"region" yaml:"region" validate:"required"`
	Network     StackConfig `mapstructure:"network" yaml:"network"`
	App         StackConfig `mapstructure:"app" yaml:"app"`
	Asset       AssetConfig `mapstructure:"asset" yaml:"asset"`
	Poll        PollConfig  `mapstructure:"poll" yaml:"poll"`
	LogLevel    string      `mapstructure:"log_level" yaml:"log_level"`
}

var validate = validator.New()

// Load loads the configuration using Viper.
// When configFile is empty the project-local stackup.yaml is read if present;
// a missing default file is not an error. An explicitly named file must
// exist. Environment variables take precedence over config file values.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	explicit := configFile != ""
	if !explicit {
		configFile = constants.DefaultConfigFileName
	}

	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFoundErr) || errors.Is(err, fs.ErrNotExist)
		if explicit || !missing {
			return nil, fmt.Errorf("error loading config file %s: %w", configFile, err)
		}
	}

	// Bind environment variables
	v.SetEnvPrefix("STACKUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Manually bind all env vars for better control
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	applyDerivedDefaults(&cfg)

	if err := validate.Struct(&cfg); err != nil {
		return nil, apperrors.ErrInvalidConfig(err)
	}

	return &cfg, nil
}

// Tags returns the tag set applied to every stack stackup creates.
func (c *Config) Tags() map[string]string {
	return map[string]string{
		constants.ProjectTagKey:     c.Project,
		constants.EnvironmentTagKey: c.Environment,
		constants.ManagedByTagKey:   constants.ProjectName,
	}
}

// GetLogLevel returns the slog.Level from the string configuration.
// Defaults to INFO if the level string is invalid.
func (c *Config) GetLogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Helper functions

func setDefaults(v *viper.Viper) {
	v.SetDefault("project", constants.DefaultProject)
	v.SetDefault("environment", constants.DefaultEnvironment)
	v.SetDefault("region", constants.DefaultRegion)
	v.SetDefault("network.template", constants.DefaultNetworkTemplate)
	v.SetDefault("network.parameters", constants.DefaultNetworkParameters)
	v.SetDefault("app.template", constants.DefaultAppTemplate)
	v.SetDefault("app.parameters", constants.DefaultAppParameters)
	v.SetDefault("asset.source", constants.DefaultAssetSource)
	v.SetDefault("asset.key", constants.DefaultAssetKey)
	v.SetDefault("asset.content_type", constants.DefaultAssetContentType)
	v.SetDefault("poll.interval", constants.DefaultPollInterval)
	v.SetDefault("poll.max_attempts", constants.DefaultPollMaxAttempts)
	v.SetDefault("log_level", "INFO")
	// Stack names are derived from the project name when not set; see
	// applyDerivedDefaults.
}

// applyDerivedDefaults fills stack names from the project name when the
// config file and environment leave them empty.
func applyDerivedDefaults(cfg *Config) {
	if cfg.Network.Name == "" {
		cfg.Network.Name = cfg.Project + "-network"
	}
	if cfg.App.Name == "" {
		cfg.App.Name = cfg.Project + "-app"
	}
}

func bindEnvVars(v *viper.Viper) {
	// Bind all environment variables explicitly
	envVars := []string{
		"PROJECT",
		"ENVIRONMENT",
		"REGION",
		"NETWORK_NAME",
		"NETWORK_TEMPLATE",
		"NETWORK_PARAMETERS",
		"APP_NAME",
		"APP_TEMPLATE",
		"APP_PARAMETERS",
		"ASSET_SOURCE",
		"ASSET_KEY",
		"ASSET_CONTENT_TYPE",
		"POLL_INTERVAL",
		"POLL_MAX_ATTEMPTS",
		"LOG_LEVEL",
	}

	for _, envVar := range envVars {
		// Convert to lowercase and re-dot nested keys to match
		// mapstructure tags (NETWORK_NAME -> network.name)
		configKey := strings.ToLower(envVar)
		for _, prefix := range []string{"network_", "app_", "asset_", "poll_"} {
			if strings.HasPrefix(configKey, prefix) {
				configKey = strings.Replace(configKey, "_", ".", 1)
				break
			}
		}
		_ = v.BindEnv(configKey, "STACKUP_"+envVar)
	}
}
