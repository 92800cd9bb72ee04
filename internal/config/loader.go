package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Defaults.
type Config struct {
	Addr               string   `json:"addr" yaml:"addr" toml:"addr" env:"ARBRIDGE_ADDR"`
	AssetsDir          string   `json:"assets_dir" yaml:"assets_dir" toml:"assets_dir" env:"ARBRIDGE_ASSETS_DIR"`
	LogLevel           string   `json:"log_level" yaml:"log_level" toml:"log_level" env:"ARBRIDGE_LOG_LEVEL"`
	LogFormat          string   `json:"log_format" yaml:"log_format" toml:"log_format" env:"ARBRIDGE_LOG_FORMAT"`
	MaxBodyBytes       int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" env:"ARBRIDGE_MAX_BODY_BYTES"`
	CallTimeoutSeconds int64    `json:"call_timeout_seconds" yaml:"call_timeout_seconds" toml:"call_timeout_seconds" env:"ARBRIDGE_CALL_TIMEOUT_SECONDS"`
	Platform           string   `json:"platform" yaml:"platform" toml:"platform" env:"ARBRIDGE_PLATFORM"`
	RuntimeLatencyMS   int      `json:"runtime_latency_ms" yaml:"runtime_latency_ms" toml:"runtime_latency_ms" env:"ARBRIDGE_RUNTIME_LATENCY_MS"`
	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled" env:"ARBRIDGE_CORS_ENABLED"`
	CORSOrigins        []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" env:"ARBRIDGE_CORS_ORIGINS" envSeparator:","`
	OTelEndpoint       string   `json:"otel_endpoint" yaml:"otel_endpoint" toml:"otel_endpoint" env:"ARBRIDGE_OTEL_ENDPOINT"`
}

// Defaults for unset fields.
const (
	DefaultAddr         = ":8080"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
	DefaultMaxBodyBytes = 1 << 20
	DefaultPlatform     = "arcore"
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .jsonc, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(b), &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Defaults fills unset fields.
func (c *Config) Defaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.CallTimeoutSeconds < 0 {
		c.CallTimeoutSeconds = 0
	}
	if c.Platform == "" {
		c.Platform = DefaultPlatform
	}
	if c.RuntimeLatencyMS < 0 {
		c.RuntimeLatencyMS = 0
	}
}
