package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

// Config represents the root configuration structure
type Config struct {
	Server  ServerConfig  `yaml:"server" validate:"required"`
	Session SessionConfig `yaml:"session"`
	Tools   ToolsConfig   `yaml:"tools"`
}

// ServerConfig holds the HTTP listener and endpoint paths
type ServerConfig struct {
	Port        string `yaml:"port" validate:"required,numeric"`
	SSEPath     string `yaml:"sse_path" validate:"required,startswith=/"`
	MessagePath string `yaml:"message_path" validate:"required,startswith=/"`
}

// SessionConfig tunes per-session transport behavior
type SessionConfig struct {
	KeepAliveIntervalMs int `yaml:"keep_alive_interval_ms" validate:"min=0,max=300000"`
	OutboundBufferSize  int `yaml:"outbound_buffer_size" validate:"min=0,max=1024"`
	MaxSessions         int `yaml:"max_sessions" validate:"min=0,max=100000"`
}

// ToolsConfig bounds tool invocation
type ToolsConfig struct {
	CallTimeoutMs int `yaml:"call_timeout_ms" validate:"min=0,max=300000"` // Max 5 minutes
}

// Default sets applied when a field is left zero in the file.
const (
	DefaultPort                = "3001"
	DefaultSSEPath             = "/mcp/sse"
	DefaultMessagePath         = "/mcp/message"
	DefaultKeepAliveIntervalMs = 15000
	DefaultOutboundBufferSize  = 16
	DefaultCallTimeoutMs       = 30000
)

// LoadConfig loads and validates the configuration from the specified path
func LoadConfig(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables
	expandedData := os.ExpandEnv(string(data))

	// Parse YAML
	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	// Validate config
	validate := validator.New()
	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if config.Server.SSEPath == config.Server.MessagePath {
		return nil, fmt.Errorf("sse_path and message_path must differ: %s", config.Server.SSEPath)
	}

	return &config, nil
}

// Default returns a configuration with every field at its default value,
// for callers that run without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.SSEPath == "" {
		c.Server.SSEPath = DefaultSSEPath
	}
	if c.Server.MessagePath == "" {
		c.Server.MessagePath = DefaultMessagePath
	}
	if c.Session.KeepAliveIntervalMs == 0 {
		c.Session.KeepAliveIntervalMs = DefaultKeepAliveIntervalMs
	}
	if c.Session.OutboundBufferSize == 0 {
		c.Session.OutboundBufferSize = DefaultOutboundBufferSize
	}
	if c.Tools.CallTimeoutMs == 0 {
		c.Tools.CallTimeoutMs = DefaultCallTimeoutMs
	}
}
