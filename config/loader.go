package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "eoscsync.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/eoscsync"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Environment variables carrying the credentials. Secrets stay out of the
// config files so those can be committed and shared.
const (
	EnvBlueClientID     = "BLUE_CLIENT_ID"
	EnvBlueSecret       = "BLUE_SECRET"
	EnvEOSCClientID     = "EOSC_CLIENT_ID"
	EnvEOSCRefreshToken = "EOSC_REFRESH_TOKEN"
)

// Credentials are the secrets of both catalogue sides.
type Credentials struct {
	BlueClientID     string
	BlueSecret       string
	EOSCClientID     string
	EOSCRefreshToken string
}

// CredentialsFromEnv reads the credentials from the environment. Missing
// variables are reported together so an operator fixes them in one pass.
func CredentialsFromEnv() (*Credentials, error) {
	creds := &Credentials{
		BlueClientID:     os.Getenv(EnvBlueClientID),
		BlueSecret:       os.Getenv(EnvBlueSecret),
		EOSCClientID:     os.Getenv(EnvEOSCClientID),
		EOSCRefreshToken: os.Getenv(EnvEOSCRefreshToken),
	}

	var missing []string
	if creds.BlueClientID == "" {
		missing = append(missing, EnvBlueClientID)
	}
	if creds.BlueSecret == "" {
		missing = append(missing, EnvBlueSecret)
	}
	if creds.EOSCClientID == "" {
		missing = append(missing, EnvEOSCClientID)
	}
	if creds.EOSCRefreshToken == "" {
		missing = append(missing, EnvEOSCRefreshToken)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing credential environment variables: %v", missing)
	}
	return creds, nil
}

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/eoscsync/config.yaml)
// 3. Project config (eoscsync.yaml in current or parent directories)
// 4. An explicit file passed on the command line (handled by the caller)
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	userConfigPath := l.userConfigPath()
	if userConfig, err := LoadFromFile(userConfigPath); err == nil {
		l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
		config.Merge(userConfig)
	} else if !errors.Is(err, os.ErrNotExist) {
		l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
	}

	projectConfigPath := l.findProjectConfig()
	if projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() error {
	userConfigPath := l.userConfigPath()

	if _, err := os.Stat(userConfigPath); err == nil {
		return nil // Already exists
	}

	config := DefaultConfig()
	if err := config.SaveToFile(userConfigPath); err != nil {
		return err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for eoscsync.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
