package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chris-regnier/quill/internal/report"
)

func TestMergeConfigs_HigherTierOverrides(t *testing.T) {
	system := &Config{
		Output: OutputConfig{Format: "pretty"},
		Store:  StoreConfig{Driver: "file", Path: ".quill/reports"},
		Rules: RulesConfig{
			Severity: map[string]string{"no-console": "info", "no-var": "warning"},
		},
	}
	project := &Config{
		Store: StoreConfig{Driver: "sqlite"},
		Rules: RulesConfig{
			Severity: map[string]string{"no-var": "error"},
		},
	}

	merged := MergeConfigs(system, project)
	if merged.Store.Driver != "sqlite" {
		t.Errorf("expected driver 'sqlite', got %q", merged.Store.Driver)
	}
	if merged.Store.Path != ".quill/reports" {
		t.Errorf("expected path preserved, got %q", merged.Store.Path)
	}
	if merged.Output.Format != "pretty" {
		t.Errorf("expected format preserved, got %q", merged.Output.Format)
	}
	if merged.Rules.Severity["no-var"] != "error" {
		t.Errorf("expected no-var override 'error', got %q", merged.Rules.Severity["no-var"])
	}
	if merged.Rules.Severity["no-console"] != "info" {
		t.Errorf("expected no-console kept, got %q", merged.Rules.Severity["no-console"])
	}
}

func TestMergeConfigs_DisabledAccumulates(t *testing.T) {
	machine := &Config{Rules: RulesConfig{Disabled: []string{"no-console", "quotes"}}}
	project := &Config{Rules: RulesConfig{Disabled: []string{"quotes", "naming/variable"}}}

	merged := MergeConfigs(machine, project)
	want := []string{"no-console", "quotes", "naming/variable"}
	if strings.Join(merged.Rules.Disabled, ",") != strings.Join(want, ",") {
		t.Errorf("expected disabled %v, got %v", want, merged.Rules.Disabled)
	}
}

func TestMergeConfigs_CacheCanBeDisabled(t *testing.T) {
	off := false
	merged := MergeConfigs(SystemDefaults(), &Config{Cache: CacheConfig{Enabled: &off}})
	if merged.CacheEnabled() {
		t.Error("expected cache to be disabled by the higher tier")
	}
	if merged.Cache.MaxSize != 1000 {
		t.Errorf("expected default max size kept, got %d", merged.Cache.MaxSize)
	}

	if !MergeConfigs(SystemDefaults(), &Config{}).CacheEnabled() {
		t.Error("expected cache enabled by default")
	}
}

func TestMergeConfigs_SkipsNil(t *testing.T) {
	merged := MergeConfigs(nil, SystemDefaults(), nil)
	if merged.Server.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", merged.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad severity", func(c *Config) { c.Rules.Severity["no-var"] = "fatal" }, "rules.severity.no-var"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"negative cache size", func(c *Config) { c.Cache.MaxSize = -1 }, "cache.max_size"},
		{"bad ttl", func(c *Config) { c.Cache.TTL = "forever" }, "cache.ttl"},
		{"bad driver", func(c *Config) { c.Store.Driver = "postgres" }, "store.driver"},
		{"bad protocol", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Protocol = "udp"
		}, "telemetry.protocol"},
		{"protocol ignored when disabled", func(c *Config) { c.Telemetry.Protocol = "udp" }, ""},
		{"bad sample rate", func(c *Config) { c.Telemetry.SampleRate = 2 }, "telemetry.sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := MergeConfigs(SystemDefaults())
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSeverityOverrides(t *testing.T) {
	cfg := &Config{Rules: RulesConfig{Severity: map[string]string{
		"no-var":   "error",
		"no-alert": "bogus",
	}}}

	got := cfg.SeverityOverrides()
	if got["no-var"] != report.SeverityError {
		t.Errorf("expected no-var error, got %q", got["no-var"])
	}
	if _, ok := got["no-alert"]; ok {
		t.Error("expected unparsable override to be skipped")
	}
}

func TestCacheTTL(t *testing.T) {
	if d := SystemDefaults().CacheTTL(); d != time.Hour {
		t.Errorf("expected 1h, got %v", d)
	}
	if d := (&Config{}).CacheTTL(); d != 0 {
		t.Errorf("expected 0 for unset ttl, got %v", d)
	}
}

func TestLoadFromFile_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "rules:\n  disabled: [no-console]\n  severity:\n    no-var: error\noutput:\n  format: json\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if len(cfg.Rules.Disabled) != 1 || cfg.Rules.Disabled[0] != "no-console" {
		t.Errorf("unexpected disabled rules: %v", cfg.Rules.Disabled)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected format json, got %q", cfg.Output.Format)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	cfg, err := LoadFromFile("/nonexistent/path.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != nil {
		t.Error("expected nil config for missing file")
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("rules: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadTiered(t *testing.T) {
	dir := t.TempDir()
	machineConf := filepath.Join(dir, "machine.yaml")
	os.WriteFile(machineConf, []byte("rules:\n  severity:\n    no-var: error\nstore:\n  driver: sqlite\n"), 0644)
	projectConf := filepath.Join(dir, "project.yaml")
	os.WriteFile(projectConf, []byte("rules:\n  disabled: [quotes]\nstore:\n  path: custom.db\n"), 0644)

	cfg, err := LoadTiered(machineConf, projectConf)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Rules.Severity["no-var"] != "error" {
		t.Errorf("expected machine override severity 'error', got %q", cfg.Rules.Severity["no-var"])
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != "custom.db" {
		t.Errorf("unexpected store config: %+v", cfg.Store)
	}
	if len(cfg.Rules.Disabled) != 1 {
		t.Errorf("expected project disabled rule, got %v", cfg.Rules.Disabled)
	}
	if cfg.Output.Format != "pretty" {
		t.Errorf("expected system default format, got %q", cfg.Output.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}
