package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines gateway configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	OGC       OGCConfig       `yaml:"ogc"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// OGCConfig controls the upstream client.
type OGCConfig struct {
	DefaultServer  string `yaml:"default_server"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// TransportConfig selects how the MCP server is exposed.
type TransportConfig struct {
	Mode string `yaml:"mode"` // "stdio" or "http"
}

// AuthConfig holds the optional static bearer token for HTTP mode.
type AuthConfig struct {
	Token string `yaml:"token"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		OGC: OGCConfig{
			TimeoutSeconds: 30,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("OGC_MCP_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("OGC_MCP_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("OGC_MCP_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OGC_MCP_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if server := os.Getenv("OGC_MCP_DEFAULT_SERVER"); server != "" {
		cfg.OGC.DefaultServer = server
	}
	if timeoutStr := os.Getenv("OGC_MCP_TIMEOUT_SECONDS"); timeoutStr != "" {
		timeout, err := strconv.Atoi(timeoutStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OGC_MCP_TIMEOUT_SECONDS: %w", err)
		}
		cfg.OGC.TimeoutSeconds = timeout
	}
	if mode := os.Getenv("OGC_MCP_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if token := os.Getenv("OGC_MCP_AUTH_TOKEN"); token != "" {
		cfg.Auth.Token = token
	}
	if level := os.Getenv("OGC_MCP_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if cfg.Transport.Mode != "stdio" && cfg.Transport.Mode != "http" {
		return Config{}, fmt.Errorf("invalid transport mode %q: must be stdio or http", cfg.Transport.Mode)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
