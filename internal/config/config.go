package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chris-regnier/quill/internal/report"
)

// Config holds the full quill configuration.
type Config struct {
	Rules     RulesConfig     `yaml:"rules"`
	Output    OutputConfig    `yaml:"output"`
	Cache     CacheConfig     `yaml:"cache"`
	Store     StoreConfig     `yaml:"store"`
	Gate      GateConfig      `yaml:"gate"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RulesConfig adjusts the built-in rule set.
type RulesConfig struct {
	// Disabled lists rule ids that never run, e.g. "no-console" or
	// "naming/variable".
	Disabled []string `yaml:"disabled,omitempty"`
	// Severity overrides the severity of a rule by id.
	Severity map[string]string `yaml:"severity,omitempty"`
}

// OutputConfig selects the default report format.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// CacheConfig controls the in-memory report cache.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	MaxSize int    `yaml:"max_size"`
	TTL     string `yaml:"ttl"`
}

// StoreConfig selects where saved reports are kept.
type StoreConfig struct {
	Driver string `yaml:"driver"` // file or sqlite
	Path   string `yaml:"path"`
}

// GateConfig points at a directory of Rego policies replacing the
// built-in gate.
type GateConfig struct {
	RegoDir string `yaml:"rego_dir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled        bool              `yaml:"enabled"`
	Endpoint       string            `yaml:"endpoint"`
	Protocol       string            `yaml:"protocol"` // grpc or http
	Insecure       bool              `yaml:"insecure"`
	Headers        map[string]string `yaml:"headers,omitempty"`
	ServiceName    string            `yaml:"service_name"`
	ServiceVersion string            `yaml:"service_version"`
	SampleRate     float64           `yaml:"sample_rate"`
}

var (
	validFormats   = []string{"json", "sarif", "markdown", "pretty"}
	validDrivers   = []string{"file", "sqlite"}
	validProtocols = []string{"grpc", "http"}
)

// Validate checks that the configuration is valid and ready to use
func (c *Config) Validate() error {
	for id, sev := range c.Rules.Severity {
		if _, err := report.ParseSeverity(sev); err != nil {
			return fmt.Errorf("rules.severity.%s: %w", id, err)
		}
	}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("output.format must be one of %v, got: %s", validFormats, c.Output.Format)
	}
	if c.Cache.MaxSize < 0 {
		return fmt.Errorf("cache.max_size must not be negative, got: %d", c.Cache.MaxSize)
	}
	if c.Cache.TTL != "" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return fmt.Errorf("cache.ttl: %w", err)
		}
	}
	if !slices.Contains(validDrivers, c.Store.Driver) {
		return fmt.Errorf("store.driver must be 'file' or 'sqlite', got: %s", c.Store.Driver)
	}
	if c.Telemetry.Enabled && !slices.Contains(validProtocols, c.Telemetry.Protocol) {
		return fmt.Errorf("telemetry.protocol must be 'grpc' or 'http', got: %s", c.Telemetry.Protocol)
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry.sample_rate must be between 0 and 1, got: %g", c.Telemetry.SampleRate)
	}
	return nil
}

// SeverityOverrides returns the parsed severity overrides. Call Validate
// first; unparsable entries are skipped.
func (c *Config) SeverityOverrides() map[string]report.Severity {
	out := make(map[string]report.Severity, len(c.Rules.Severity))
	for id, sev := range c.Rules.Severity {
		if parsed, err := report.ParseSeverity(sev); err == nil {
			out[id] = parsed
		}
	}
	return out
}

// CacheEnabled reports whether the report cache is on.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// CacheTTL returns the parsed cache TTL, or zero if unset or invalid.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0
	}
	return d
}

// MergeConfigs merges configs in order of increasing precedence.
// Later configs override earlier ones. Non-zero fields override; disabled
// rule lists accumulate and severity maps merge key by key.
func MergeConfigs(configs ...*Config) *Config {
	result := &Config{
		Rules: RulesConfig{Severity: make(map[string]string)},
	}

	for _, cfg := range configs {
		if cfg == nil {
			continue
		}

		for _, id := range cfg.Rules.Disabled {
			if !slices.Contains(result.Rules.Disabled, id) {
				result.Rules.Disabled = append(result.Rules.Disabled, id)
			}
		}
		for id, sev := range cfg.Rules.Severity {
			result.Rules.Severity[id] = sev
		}

		if cfg.Output.Format != "" {
			result.Output.Format = cfg.Output.Format
		}

		if cfg.Cache.Enabled != nil {
			enabled := *cfg.Cache.Enabled
			result.Cache.Enabled = &enabled
		}
		if cfg.Cache.MaxSize != 0 {
			result.Cache.MaxSize = cfg.Cache.MaxSize
		}
		if cfg.Cache.TTL != "" {
			result.Cache.TTL = cfg.Cache.TTL
		}

		if cfg.Store.Driver != "" {
			result.Store.Driver = cfg.Store.Driver
		}
		if cfg.Store.Path != "" {
			result.Store.Path = cfg.Store.Path
		}

		if cfg.Gate.RegoDir != "" {
			result.Gate.RegoDir = cfg.Gate.RegoDir
		}

		if cfg.Server.Addr != "" {
			result.Server.Addr = cfg.Server.Addr
		}

		mergeTelemetry(&result.Telemetry, cfg.Telemetry)
	}

	return result
}

func mergeTelemetry(dst *TelemetryConfig, src TelemetryConfig) {
	// Enabled only ever turns telemetry on; QUILL_TELEMETRY_ENABLED turns it off.
	if src.Enabled {
		dst.Enabled = true
	}
	if src.Endpoint != "" {
		dst.Endpoint = src.Endpoint
	}
	if src.Protocol != "" {
		dst.Protocol = src.Protocol
	}
	if src.Insecure {
		dst.Insecure = true
	}
	if len(src.Headers) > 0 {
		dst.Headers = src.Headers
	}
	if src.ServiceName != "" {
		dst.ServiceName = src.ServiceName
	}
	if src.ServiceVersion != "" {
		dst.ServiceVersion = src.ServiceVersion
	}
	if src.SampleRate != 0 {
		dst.SampleRate = src.SampleRate
	}
}

// LoadFromFile reads a YAML config file. Returns nil, nil if the file doesn't exist.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadTiered loads system defaults, then machine config, then project config,
// and merges them in order of increasing precedence.
func LoadTiered(machinePath, projectPath string) (*Config, error) {
	system := SystemDefaults()

	machine, err := LoadFromFile(machinePath)
	if err != nil {
		return nil, fmt.Errorf("loading machine config: %w", err)
	}

	project, err := LoadFromFile(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return MergeConfigs(system, machine, project), nil
}
