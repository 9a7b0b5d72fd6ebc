// Package config provides YAML-based configuration loading for the webchat
// client, with environment-variable overrides applied on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the top-level webchat client configuration, loaded from
// webchat.yaml. Every field can be overridden via WEBCHAT_* env vars.
type Config struct {
	BaseURL         string     `yaml:"base_url" env:"WEBCHAT_BASE_URL"`
	Page            string     `yaml:"page" env:"WEBCHAT_PAGE"`
	PollIntervalSec int        `yaml:"poll_interval_sec" env:"WEBCHAT_POLL_INTERVAL_SEC"`
	MessageLimit    int        `yaml:"message_limit" env:"WEBCHAT_MESSAGE_LIMIT"`
	HTTPTimeoutSec  int        `yaml:"http_timeout_sec" env:"WEBCHAT_HTTP_TIMEOUT_SEC"`
	StatePath       string     `yaml:"state_path" env:"WEBCHAT_STATE_PATH"`
	TelegramLink    string     `yaml:"telegram_link" env:"WEBCHAT_TELEGRAM_LINK"`
	Mock            MockConfig `yaml:"mock"`
}

// MockConfig configures the development mock backend.
type MockConfig struct {
	Port             int    `yaml:"port" env:"WEBCHAT_MOCK_PORT"`
	AutoReply        bool   `yaml:"auto_reply" env:"WEBCHAT_MOCK_AUTO_REPLY"`
	AutoReplyDelayMs int    `yaml:"auto_reply_delay_ms" env:"WEBCHAT_MOCK_AUTO_REPLY_DELAY_MS"`
	CloseCron        string `yaml:"close_cron" env:"WEBCHAT_MOCK_CLOSE_CRON"` // 5-field cron, optional
}

// Load reads a YAML config file from path and returns a validated Config
// with env overrides applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes, applies env overrides and defaults, and
// returns a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no config file exists:
// defaults plus env overrides.
func Default() (*Config, error) {
	var cfg Config
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finish applies env overrides, defaults, and validation, in that order.
func (c *Config) finish() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("config: env overrides: %w", err)
	}
	c.applyDefaults()
	return c.validate()
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Mock.Port == 0 {
		c.Mock.Port = 8077
	}
	if c.BaseURL == "" {
		c.BaseURL = fmt.Sprintf("http://127.0.0.1:%d", c.Mock.Port)
	}
	if c.PollIntervalSec == 0 {
		c.PollIntervalSec = 4
	}
	if c.MessageLimit == 0 {
		c.MessageLimit = 50
	}
	if c.HTTPTimeoutSec == 0 {
		c.HTTPTimeoutSec = 10
	}
	if c.StatePath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.StatePath = filepath.Join(home, ".webchat", "state.db")
		}
	}
	if c.Mock.AutoReplyDelayMs == 0 {
		c.Mock.AutoReplyDelayMs = 1500
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.BaseURL == "" {
		errs = append(errs, "base_url is required")
	}
	if c.PollIntervalSec < 0 {
		errs = append(errs, "poll_interval_sec must be positive")
	}
	if c.MessageLimit < 0 {
		errs = append(errs, "message_limit must be positive")
	}
	if c.Mock.Port < 0 || c.Mock.Port > 65535 {
		errs = append(errs, "mock.port must be a valid port")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

// PollInterval returns the message poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// HTTPTimeout returns the backend call timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// AutoReplyDelay returns the mock server's manager reply delay.
func (c *MockConfig) AutoReplyDelay() time.Duration {
	return time.Duration(c.AutoReplyDelayMs) * time.Millisecond
}
