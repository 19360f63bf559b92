package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds user preferences
type Config struct {
	// User is the email of the user tracking verbs act for. Set by
	// `clock user select`; every command passes it down explicitly.
	User string `yaml:"user" json:"user"`

	// DBPath overrides the default database location
	DBPath string `yaml:"db_path,omitempty" json:"db_path,omitempty"`

	// ServerURL switches the CLI to remote mode against an ironclock server
	ServerURL string `yaml:"server_url,omitempty" json:"server_url,omitempty"`

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	logPath := ""
	if home != "" {
		logPath = filepath.Join(home, ".ironclock", "logs", "ironclock.log")
	}

	return &Config{
		User:       getEnv("IRONCLOCK_USER", ""),
		ServerURL:  getEnv("IRONCLOCK_SERVER_URL", ""),
		LogLevel:   getEnv("IRONCLOCK_LOG_LEVEL", "INFO"),
		LogFile:    getEnv("IRONCLOCK_LOG_FILE", logPath),
		LogConsole: getEnv("IRONCLOCK_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Path returns the config file location (~/.ironclock/config.yaml)
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ironclock", "config.yaml"), nil
}

// Load loads config from ~/.ironclock/config.yaml
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}

	// Return defaults if no config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves config to ~/.ironclock/config.yaml
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
