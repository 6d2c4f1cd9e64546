package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"specprobe/internal/errors"
)

const runConfigYAML = `
namespace: /x-api
timeout: 3
omit_paths:
  - /internal/reset
apis:
  - name: registry
    version: v1.0
    base_url: http://registry.test
    spec: testdata/registry.json
  - name: control
    version: v1.1
    base_url: http://control.test
    url: http://control.test/custom/root
    spec: http://control.test/openapi.json
auth:
  type: bearer
  token: file-token
output:
  format: json
  sort: severity
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "specprobe.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	return flags
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Namespace != DefaultNamespace {
		t.Errorf("default namespace: got %q, expected %q", cfg.Namespace, DefaultNamespace)
	}
	if cfg.TimeoutSeconds != 10 {
		t.Errorf("default timeout: got %d, expected 10", cfg.TimeoutSeconds)
	}
	if cfg.Output.Format != "table" {
		t.Errorf("default output format: got %q, expected table", cfg.Output.Format)
	}
	if cfg.Output.Sort != "execution" {
		t.Errorf("default sort: got %q, expected execution", cfg.Output.Sort)
	}
	if len(cfg.APIs) != 0 {
		t.Errorf("default APIs: got %v, expected none", cfg.APIs)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, runConfigYAML)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}

	if cfg.Namespace != "/x-api" {
		t.Errorf("namespace: got %q", cfg.Namespace)
	}
	if cfg.TimeoutSeconds != 3 {
		t.Errorf("timeout: got %d, expected 3", cfg.TimeoutSeconds)
	}
	if len(cfg.APIs) != 2 {
		t.Fatalf("APIs: got %d, expected 2", len(cfg.APIs))
	}
	if cfg.APIs[0].Name != "registry" || cfg.APIs[0].Version != "v1.0" {
		t.Errorf("first API: got %+v", cfg.APIs[0])
	}
	if cfg.Auth.Type != "bearer" || cfg.Auth.Token != "file-token" {
		t.Errorf("auth: got %+v", cfg.Auth)
	}
	if cfg.Output.Format != "json" || cfg.Output.Sort != "severity" {
		t.Errorf("output: got %+v", cfg.Output)
	}
	if len(cfg.OmitPaths) != 1 || cfg.OmitPaths[0] != "/internal/reset" {
		t.Errorf("omit paths: got %v", cfg.OmitPaths)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.IsType(err, errors.ErrorTypeConfig) {
		t.Errorf("expected config category, got %v", errors.GetType(err))
	}
}

func TestLoadFromFile_DefaultsApplied(t *testing.T) {
	path := writeConfigFile(t, `
apis:
  - name: registry
    version: v1.0
    base_url: http://registry.test
    spec: registry.json
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}

	if cfg.Namespace != DefaultNamespace {
		t.Errorf("namespace not defaulted: %q", cfg.Namespace)
	}
	if cfg.TimeoutSeconds != 10 {
		t.Errorf("timeout not defaulted: %d", cfg.TimeoutSeconds)
	}
	if cfg.Output.Format != "table" || cfg.Output.Sort != "execution" {
		t.Errorf("output not defaulted: %+v", cfg.Output)
	}
}

func TestEnvironmentTokenWinsOverFile(t *testing.T) {
	t.Setenv("SPECPROBE_TOKEN", "env-token")
	path := writeConfigFile(t, runConfigYAML)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}

	if cfg.Auth.Token != "env-token" {
		t.Errorf("token: got %q, expected env-token", cfg.Auth.Token)
	}
}

func TestEnvironmentTokenImpliesBearer(t *testing.T) {
	t.Setenv("SPECPROBE_TOKEN", "env-token")

	flags := newFlagSet()
	cfg, err := LoadFromFlags(flags)
	if err != nil {
		t.Fatalf("LoadFromFlags() error: %v", err)
	}

	if cfg.Auth.Type != "bearer" || cfg.Auth.Token != "env-token" {
		t.Errorf("auth: got %+v", cfg.Auth)
	}
}

func TestLoadFromFlags_SingleInstance(t *testing.T) {
	flags := newFlagSet()
	err := flags.Parse([]string{
		"--api", "registry",
		"--api-version", "v1.0",
		"--base-url", "http://registry.test",
		"--spec", "registry.json",
		"--omit", "/internal/reset",
		"--timeout", "5",
		"--output", "json",
	})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	cfg, err := LoadFromFlags(flags)
	if err != nil {
		t.Fatalf("LoadFromFlags() error: %v", err)
	}

	if len(cfg.APIs) != 1 {
		t.Fatalf("APIs: got %d, expected 1", len(cfg.APIs))
	}
	api := cfg.APIs[0]
	if api.Name != "registry" || api.Version != "v1.0" || api.BaseURL != "http://registry.test" || api.Spec != "registry.json" {
		t.Errorf("API: got %+v", api)
	}
	if cfg.TimeoutSeconds != 5 {
		t.Errorf("timeout: got %d", cfg.TimeoutSeconds)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("format: got %q", cfg.Output.Format)
	}
	if len(cfg.OmitPaths) != 1 || cfg.OmitPaths[0] != "/internal/reset" {
		t.Errorf("omit: got %v", cfg.OmitPaths)
	}
}

func TestLoadFromFlags_FlagsOverrideFile(t *testing.T) {
	path := writeConfigFile(t, runConfigYAML)

	flags := newFlagSet()
	err := flags.Parse([]string{
		"--config", path,
		"--namespace", "/x-probe",
		"--sort", "execution",
	})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	cfg, err := LoadFromFlags(flags)
	if err != nil {
		t.Fatalf("LoadFromFlags() error: %v", err)
	}

	if cfg.Namespace != "/x-probe" {
		t.Errorf("namespace: got %q, expected flag override", cfg.Namespace)
	}
	if cfg.Output.Sort != "execution" {
		t.Errorf("sort: got %q, expected flag override", cfg.Output.Sort)
	}
	// Untouched file values survive.
	if len(cfg.APIs) != 2 || cfg.TimeoutSeconds != 3 {
		t.Errorf("file values lost: %+v", cfg)
	}
}

func TestLoadFromFlags_BearerToken(t *testing.T) {
	flags := newFlagSet()
	if err := flags.Parse([]string{"--bearer-token", "flag-token"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	cfg, err := LoadFromFlags(flags)
	if err != nil {
		t.Fatalf("LoadFromFlags() error: %v", err)
	}

	if cfg.Auth.Type != "bearer" || cfg.Auth.Token != "flag-token" {
		t.Errorf("auth: got %+v", cfg.Auth)
	}
}

func TestLoadFromFlags_SigV4(t *testing.T) {
	flags := newFlagSet()
	if err := flags.Parse([]string{"--aws-sigv4", "--aws-service", "lambda"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	cfg, err := LoadFromFlags(flags)
	if err != nil {
		t.Fatalf("LoadFromFlags() error: %v", err)
	}

	if cfg.Auth.Type != "sigv4" || cfg.Auth.Service != "lambda" {
		t.Errorf("auth: got %+v", cfg.Auth)
	}
}

func TestVersionedURL(t *testing.T) {
	tests := []struct {
		name string
		api  APIConfig
		want string
	}{
		{
			name: "derived from base URL",
			api:  APIConfig{Name: "registry", Version: "v1.0", BaseURL: "http://registry.test"},
			want: "http://registry.test/x-api/registry/v1.0",
		},
		{
			name: "trailing slash on base URL",
			api:  APIConfig{Name: "registry", Version: "v1.0", BaseURL: "http://registry.test/"},
			want: "http://registry.test/x-api/registry/v1.0",
		},
		{
			name: "explicit URL wins",
			api:  APIConfig{Name: "registry", Version: "v1.0", BaseURL: "http://registry.test", URL: "http://elsewhere.test/root"},
			want: "http://elsewhere.test/root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.api.VersionedURL("/x-api"); got != tt.want {
				t.Errorf("VersionedURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_Validation(t *testing.T) {
	valid := func() *Config {
		cfg := NewConfig()
		cfg.APIs = []APIConfig{{
			Name:    "registry",
			Version: "v1.0",
			BaseURL: "http://registry.test",
			Spec:    "registry.json",
		}}
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no APIs", func(c *Config) { c.APIs = nil }},
		{"missing name", func(c *Config) { c.APIs[0].Name = "" }},
		{"missing version", func(c *Config) { c.APIs[0].Version = "" }},
		{"missing base URL", func(c *Config) { c.APIs[0].BaseURL = "" }},
		{"missing spec", func(c *Config) { c.APIs[0].Spec = "" }},
		{"unknown auth type", func(c *Config) { c.Auth.Type = "kerberos" }},
		{"bearer without token", func(c *Config) { c.Auth.Type = "bearer" }},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }},
		{"unknown sort", func(c *Config) { c.Output.Sort = "chaos" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.IsType(err, errors.ErrorTypeConfig) {
				t.Errorf("expected config category, got %v", errors.GetType(err))
			}
		})
	}
}

func TestConfigContext(t *testing.T) {
	cfg := NewConfig()
	ctx := WithConfig(context.Background(), cfg)

	got, ok := FromContext(ctx)
	if !ok || got != cfg {
		t.Fatal("config did not round-trip through context")
	}

	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("empty context should not carry a config")
	}
}
