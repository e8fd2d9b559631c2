package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 5000
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
	DefaultTimeout     = 30 * time.Second
	DefaultMaxMessages = 10
	DefaultBufferSize  = 256
)

var envTemplateRe = regexp.MustCompile(`\$\{\{\s*\.Env\.(\w+)\s*\}\}`)

// Load reads a JSONC or YAML config file (chosen by extension), expands
// ${{ .Env.VAR }} templates, unmarshals it into Config, and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variable templates (before parsing, since templates are in strings)
	expanded := []byte(expandEnvTemplates(string(data)))

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	default:
		std, err := hujson.Standardize(expanded)
		if err != nil {
			return nil, fmt.Errorf("standardize config: %w", err)
		}
		if err := json.Unmarshal(std, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadOrDefault loads the config at path, falling back to defaults when the
// file cannot be read. The returned error is informational only.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		cfg = &Config{}
		ApplyDefaults(cfg)
		return cfg, err
	}
	return cfg, nil
}

// expandEnvTemplates replaces ${{ .Env.VAR }} with the env var value.
func expandEnvTemplates(s string) string {
	return envTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envTemplateRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return os.Getenv(parts[1])
	})
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = DefaultHost
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = DefaultPort
	}
	if cfg.Model.Name == "" {
		cfg.Model.Name = DefaultModel
	}
	if cfg.Model.Temperature == nil {
		t := float32(DefaultTemperature)
		cfg.Model.Temperature = &t
	}
	if cfg.Model.MaxTokens == 0 {
		cfg.Model.MaxTokens = DefaultMaxTokens
	}
	if cfg.Model.Timeout == 0 {
		cfg.Model.Timeout = Duration(DefaultTimeout)
	}
	if cfg.Memory.MaxMessages <= 0 {
		cfg.Memory.MaxMessages = DefaultMaxMessages
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DatabasePath()
	}
	if cfg.Events.BufferSize == 0 {
		cfg.Events.BufferSize = DefaultBufferSize
	}
	if cfg.Events.LogDir == "" {
		cfg.Events.LogDir = filepath.Join(PalPath(), "logs")
	}
	// Auth resolution is deferred to models.ResolveAuth() at gateway init time.
}
