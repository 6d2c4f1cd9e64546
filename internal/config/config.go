// Package config assembles a conformance run's configuration from a YAML
// file, command line flags and the environment. Flags override file values;
// the credential always prefers the environment.
package config

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"specprobe/internal/errors"
)

// DefaultNamespace is the well-known root path segment probed when no
// namespace is configured.
const DefaultNamespace = "/x-api"

// Config holds one conformance run's configuration.
type Config struct {
	// Namespace is the root path segment the audited API family lives
	// under.
	Namespace string `yaml:"namespace"`
	// APIs lists the API instances to audit.
	APIs []APIConfig `yaml:"apis"`
	// OmitPaths lists endpoint path templates excluded from automatic
	// checks.
	OmitPaths []string `yaml:"omit_paths"`
	// TimeoutSeconds bounds each probe. Zero means the transport default.
	TimeoutSeconds int `yaml:"timeout"`

	Auth   AuthConfig   `yaml:"auth"`
	Output OutputConfig `yaml:"output"`
}

// APIConfig names one API instance under audit.
type APIConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	BaseURL string `yaml:"base_url"`
	// URL is the versioned endpoint root. Derived from BaseURL, the
	// namespace, Name and Version when empty.
	URL string `yaml:"url"`
	// Spec locates the OpenAPI description: a file path or an HTTP URL.
	Spec string `yaml:"spec"`
}

// AuthConfig selects how probes authenticate. The AWS region for SigV4
// comes from the standard credential chain, not from here.
type AuthConfig struct {
	// Type is "", "bearer" or "sigv4".
	Type    string `yaml:"type"`
	Token   string `yaml:"token"`
	Service string `yaml:"service"`
}

// OutputConfig selects how the run report is rendered.
type OutputConfig struct {
	// Format is "table" or "json".
	Format string `yaml:"format"`
	// Sort is "execution" or "severity".
	Sort string `yaml:"sort"`
	// File receives the JSON report in addition to stdout rendering.
	File string `yaml:"file"`
}

// contextKey is a custom type for context keys
type contextKey string

const configKey contextKey = "config"

// WithConfig adds config to context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) (*Config, bool) {
	cfg, ok := ctx.Value(configKey).(*Config)
	return cfg, ok
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Namespace:      DefaultNamespace,
		TimeoutSeconds: 10,
		Output: OutputConfig{
			Format: "table",
			Sort:   "execution",
		},
	}
}

// LoadFromFile reads a YAML run configuration and applies defaults for
// anything it leaves unset.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file").
			WithContext("path", path)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse config file").
			WithContext("path", path)
	}

	applyDefaults(cfg)
	applyEnvironment(cfg)
	return cfg, nil
}

// RegisterFlags declares every run flag on the given flag set. The cli and
// the tests share one registration so flag names cannot drift.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", "", "path to a YAML run configuration")
	flags.StringP("namespace", "n", DefaultNamespace, "root path segment the API family lives under")
	flags.String("api", "", "API name inside the namespace")
	flags.String("api-version", "", "API version under test")
	flags.String("base-url", "", "service root URL")
	flags.String("spec", "", "OpenAPI description path or URL")
	flags.StringSlice("omit", nil, "path templates excluded from endpoint checks")
	flags.Int("timeout", 10, "per-probe timeout in seconds")
	flags.String("bearer-token", "", "bearer token attached to every probe")
	flags.Bool("aws-sigv4", false, "sign probes with AWS SigV4")
	flags.String("aws-service", "execute-api", "AWS service name for SigV4 signing")
	flags.StringP("output", "o", "table", "report format (table or json)")
	flags.String("sort", "execution", "result order (execution or severity)")
	flags.String("report-file", "", "write the JSON report to this file as well")
}

// LoadFromFlags creates a Config from command line flags, starting from the
// file named by --config when present. Flags set explicitly win over file
// values.
func LoadFromFlags(flags *pflag.FlagSet) (*Config, error) {
	cfg := NewConfig()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get config flag")
	}
	if configPath != "" {
		if cfg, err = LoadFromFile(configPath); err != nil {
			return nil, err
		}
	}

	if flags.Changed("namespace") {
		if cfg.Namespace, err = flags.GetString("namespace"); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get namespace flag")
		}
	}

	if flags.Changed("omit") {
		if cfg.OmitPaths, err = flags.GetStringSlice("omit"); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get omit flag")
		}
	}

	if flags.Changed("timeout") {
		if cfg.TimeoutSeconds, err = flags.GetInt("timeout"); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get timeout flag")
		}
	}

	// Single-instance flags append one API on top of whatever the file
	// declared.
	api := APIConfig{}
	if api.Name, err = flags.GetString("api"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get api flag")
	}
	if api.Version, err = flags.GetString("api-version"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get api-version flag")
	}
	if api.BaseURL, err = flags.GetString("base-url"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get base-url flag")
	}
	if api.Spec, err = flags.GetString("spec"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get spec flag")
	}
	if api.Name != "" || api.Spec != "" || api.BaseURL != "" {
		cfg.APIs = append(cfg.APIs, api)
	}

	if flags.Changed("bearer-token") {
		if cfg.Auth.Token, err = flags.GetString("bearer-token"); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get bearer-token flag")
		}
		cfg.Auth.Type = "bearer"
	}

	sigv4, err := flags.GetBool("aws-sigv4")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get aws-sigv4 flag")
	}
	if sigv4 {
		cfg.Auth.Type = "sigv4"
		if cfg.Auth.Service, err = flags.GetString("aws-service"); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get aws-service flag")
		}
	}

	if flags.Changed("output") {
		if cfg.Output.Format, err = flags.GetString("output"); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get output flag")
		}
	}
	if flags.Changed("sort") {
		if cfg.Output.Sort, err = flags.GetString("sort"); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get sort flag")
		}
	}
	if flags.Changed("report-file") {
		if cfg.Output.File, err = flags.GetString("report-file"); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get report-file flag")
		}
	}

	applyDefaults(cfg)
	applyEnvironment(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 10
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "table"
	}
	if cfg.Output.Sort == "" {
		cfg.Output.Sort = "execution"
	}
}

// applyEnvironment pulls the credential from the environment. A token in
// the environment always wins so config files never need to carry secrets.
func applyEnvironment(cfg *Config) {
	if token := os.Getenv("SPECPROBE_TOKEN"); token != "" {
		cfg.Auth.Token = token
		if cfg.Auth.Type == "" {
			cfg.Auth.Type = "bearer"
		}
	}
	if service := os.Getenv("SPECPROBE_AWS_SERVICE"); service != "" && cfg.Auth.Service == "" {
		cfg.Auth.Service = service
	}
}

// ProbeTimeout returns the per-probe deadline.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// VersionedURL returns the endpoint root probes are issued against,
// deriving it from the base URL and namespace when not set explicitly.
func (a APIConfig) VersionedURL(namespace string) string {
	if a.URL != "" {
		return a.URL
	}
	base := strings.TrimRight(a.BaseURL, "/")
	ns := "/" + strings.Trim(namespace, "/")
	return base + ns + "/" + a.Name + "/" + a.Version
}

// Validate ensures the configuration is runnable.
func (c *Config) Validate() error {
	if len(c.APIs) == 0 {
		return errors.New(errors.ErrorTypeConfig, "no API instances configured").
			WithContext("suggestion", "pass --api/--api-version/--base-url/--spec or list apis in a config file")
	}

	for _, api := range c.APIs {
		if api.Name == "" {
			return errors.New(errors.ErrorTypeConfig, "API instance is missing a name")
		}
		if api.Version == "" {
			return errors.Newf(errors.ErrorTypeConfig, "API %s is missing a version", api.Name)
		}
		if api.BaseURL == "" {
			return errors.Newf(errors.ErrorTypeConfig, "API %s is missing a base URL", api.Name)
		}
		if api.Spec == "" {
			return errors.Newf(errors.ErrorTypeConfig, "API %s is missing an OpenAPI description source", api.Name).
				WithContext("suggestion", "set spec to a file path or URL")
		}
	}

	switch c.Auth.Type {
	case "", "bearer", "sigv4":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown auth type %q", c.Auth.Type).
			WithContext("valid_types", []string{"bearer", "sigv4"})
	}
	if c.Auth.Type == "bearer" && c.Auth.Token == "" {
		return errors.New(errors.ErrorTypeConfig, "bearer auth requires a token").
			WithContext("suggestion", "set SPECPROBE_TOKEN or auth.token")
	}

	switch c.Output.Format {
	case "table", "json":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown output format %q", c.Output.Format).
			WithContext("valid_formats", []string{"table", "json"})
	}
	switch c.Output.Sort {
	case "execution", "severity":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown sort order %q", c.Output.Sort).
			WithContext("valid_orders", []string{"execution", "severity"})
	}

	return nil
}
