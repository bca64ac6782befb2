// Package config provides configuration management for the Alexa Cookidoo
// skill server. It handles loading and parsing the YAML configuration file
// and provides structured access to application settings including the server
// port, debug settings, proxy configuration, and Cookidoo API options.
// Account secrets are deliberately kept out of the YAML file; see
// credentials.go.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port int `yaml:"port" json:"port"`

	// SkillPath is the HTTP path the Alexa webhook is served on.
	SkillPath string `yaml:"skill-path" json:"skill-path"`

	// Debug enables debug-level logging when true.
	Debug bool `yaml:"debug" json:"debug"`

	// LoggingToFile redirects log output to rotating files instead of stdout.
	LoggingToFile bool `yaml:"logging-to-file" json:"logging-to-file"`

	// LogsMaxTotalSizeMB caps the total size of the logs directory in
	// megabytes. <= 0 disables the cleanup.
	LogsMaxTotalSizeMB int `yaml:"logs-max-total-size-mb" json:"logs-max-total-size-mb"`

	// ProxyURL is the URL of an optional proxy server to use for outbound
	// requests (socks5://, http:// and https:// are supported).
	ProxyURL string `yaml:"proxy-url" json:"proxy-url"`

	// Cookidoo holds settings for the upstream Cookidoo API.
	Cookidoo CookidooConfig `yaml:"cookidoo" json:"cookidoo"`
}

// CookidooConfig holds settings for the upstream Cookidoo API.
type CookidooConfig struct {
	// BaseURL overrides the default Cookidoo API base URL. Mainly useful for
	// pointing the skill at a test double.
	BaseURL string `yaml:"base-url" json:"base-url"`

	// TimeoutSeconds bounds every outbound Cookidoo request. <= 0 falls back
	// to the built-in default.
	TimeoutSeconds int `yaml:"timeout-seconds" json:"timeout-seconds"`
}

const (
	defaultPort      = 8080
	defaultSkillPath = "/alexa"
)

// LoadConfig reads and parses the YAML configuration file at the given path.
// Missing optional fields are filled with defaults; an unreadable or invalid
// file is an error because the server must not start on guesswork.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := &Config{}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err = cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if strings.TrimSpace(c.SkillPath) == "" {
		c.SkillPath = defaultSkillPath
	}
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if !strings.HasPrefix(c.SkillPath, "/") {
		return fmt.Errorf("config: skill-path must start with '/', got %q", c.SkillPath)
	}
	return nil
}
