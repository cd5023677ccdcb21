// Package config holds condoctl configuration: backend endpoints,
// request timeout and verbosity, loaded from ~/.condoctl/config.yaml
// with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full condoctl configuration.
type Config struct {
	// Server is the admin service base, including any path prefix.
	Server string `yaml:"server"`

	// AuthServer is the auth service base.
	AuthServer string `yaml:"auth_server"`

	// Timeout is the per-request timeout as a duration string.
	Timeout string `yaml:"timeout"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Server:     "http://localhost:8082/api",
		AuthServer: "http://localhost:8080/api",
		Timeout:    "30s",
	}
}

// Dir returns the condoctl state directory (~/.condoctl), creating it
// if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".condoctl")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create state directory: %w", err)
	}
	return dir, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads a config file, falling back to defaults when it does not
// exist, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config file with restrictive permissions.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CONDOCTL_SERVER"); v != "" {
		c.Server = v
	}
	if v := os.Getenv("CONDOCTL_AUTH_SERVER"); v != "" {
		c.AuthServer = v
	}
}

// RequestTimeout parses the configured timeout, defaulting to 30s on a
// bad or empty value.
func (c Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Session token persistence. A CLI process dies between commands, so
// the cookie captured at login is kept on disk.

func tokenPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session"), nil
}

// LoadToken returns the persisted session token, empty when absent.
func LoadToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session token: %w", err)
	}
	return string(data), nil
}

// SaveToken persists the session token; an empty token removes the file.
func SaveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if token == "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove session token: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write session token: %w", err)
	}
	return nil
}
