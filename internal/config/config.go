// Package config loads the issuegraph configuration through viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the full issuegraph configuration.
type Config struct {
	Project ProjectConfig `mapstructure:"project"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ProjectConfig contains project-level settings.
type ProjectConfig struct {
	// Repository in owner/name form. Flags override this.
	Repository string `mapstructure:"repository"`
}

// GitHubConfig contains tracker access settings. App credentials are
// optional; without them, gh's ambient login is used.
type GitHubConfig struct {
	GHPath           string `mapstructure:"gh_path"`
	AppID            string `mapstructure:"app_id"`
	InstallationID   int64  `mapstructure:"installation_id"`
	PrivateKeySecret string `mapstructure:"private_key_secret"`
}

// LoggingConfig controls the optional Cloud Logging sink. Local stderr
// logging is always on.
type LoggingConfig struct {
	CloudProject string `mapstructure:"cloud_project"`
}

// Load unmarshals the configuration read by viper and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.GitHub.GHPath == "" {
		cfg.GitHub.GHPath = "gh"
	}

	return cfg, nil
}

// AppAuthConfigured reports whether GitHub App credentials are present.
func (c *Config) AppAuthConfigured() bool {
	return c.GitHub.AppID != "" && c.GitHub.InstallationID > 0 && c.GitHub.PrivateKeySecret != ""
}

// SplitRepository parses an owner/name repository string.
func SplitRepository(repository string) (owner, name string, err error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository must be in owner/name form, got %q", repository)
	}
	return parts[0], parts[1], nil
}
