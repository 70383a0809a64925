package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ConfigDirName  = "smart-ffmpeg"
	ConfigFileName = "config.yaml"

	// Environment variables, checked after the config file.
	EnvAPIKey  = "OPENROUTER_API_KEY"
	EnvModel   = "OPENROUTER_MODEL"
	EnvBaseURL = "OPENROUTER_BASE_URL"

	DefaultModel          = "google/gemini-2.0-flash-001"
	DefaultBaseURL        = "https://openrouter.ai/api/v1"
	DefaultTimeoutSeconds = 60
)

// ErrMissingAPIKey is returned when no API key is found in the
// environment, a .env file, or the config file.
var ErrMissingAPIKey = errors.New("OPENROUTER_API_KEY is not set (set it in your environment, a .env file, or " + ConfigFileName + ")")

// Config represents the application configuration
type Config struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", ConfigDirName), nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// Load assembles the configuration. Precedence, lowest to highest:
// config file, .env in the working directory, process environment.
// Defaults fill anything still unset. Fails with ErrMissingAPIKey
// when no API key is found at any level.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	return cfg, nil
}

func load() (*Config, error) {
	cfg := &Config{}

	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// godotenv does not overwrite variables already exported in the
	// shell, so the process environment still wins.
	_ = godotenv.Load()

	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.BaseURL = v
	}

	applyDefaults(cfg)

	return cfg, nil
}

// Show renders the effective configuration with the API key redacted.
// Works even when no API key is set, so it is usable during setup.
func Show() (string, error) {
	cfg, err := load()
	if err != nil {
		return "", err
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	keyStatus := "not set"
	if strings.TrimSpace(cfg.APIKey) != "" {
		keyStatus = "set (redacted)"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "config file: %s\n", configPath)
	fmt.Fprintf(&sb, "api_key: %s\n", keyStatus)
	fmt.Fprintf(&sb, "model: %s\n", cfg.Model)
	fmt.Fprintf(&sb, "base_url: %s\n", cfg.BaseURL)
	fmt.Fprintf(&sb, "timeout_seconds: %d", cfg.TimeoutSeconds)

	return sb.String(), nil
}

// Default returns a config populated with defaults and no API key,
// suitable for writing a starter config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

// Save writes the configuration to disk
func Save(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Exists checks if a configuration file exists
func Exists() (bool, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
