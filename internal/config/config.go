package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/addrnav-dev/addrnav/internal/errors"
	"github.com/addrnav-dev/addrnav/pkg/rewrite"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "addrnav.json"

	// DefaultAddress is the default listen address.
	DefaultAddress = "localhost:3000"

	// DefaultStaticPrefix is the default URL prefix for static files.
	DefaultStaticPrefix = "/static/"

	// DefaultSessionTTL is the default session lifetime.
	DefaultSessionTTL = 12 * time.Hour
)

// Config represents the complete addrnav.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// BasePath is the deployment prefix under which the whole app is
	// served (e.g. "/console"). Normalized on load; empty means the
	// app is served at the root.
	BasePath string `json:"basePath,omitempty"`

	// Address is the listen address (host:port).
	Address string `json:"address,omitempty"`

	// Static contains static file serving configuration.
	Static StaticConfig `json:"static,omitempty"`

	// Assets contains fingerprinted asset configuration.
	Assets AssetsConfig `json:"assets,omitempty"`

	// Session contains session configuration.
	Session SessionConfig `json:"session,omitempty"`

	// Locales is the directory with extra translation files, merged
	// over the embedded defaults.
	Locales string `json:"locales,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing static files.
	Dir string `json:"dir,omitempty"`

	// Prefix is the URL prefix for static files.
	Prefix string `json:"prefix,omitempty"`
}

// AssetsConfig contains fingerprinted asset configuration.
type AssetsConfig struct {
	// Manifest is the path to the asset manifest JSON file.
	Manifest string `json:"manifest,omitempty"`

	// S3 configures publishing of built assets.
	S3 S3Config `json:"s3,omitempty"`
}

// S3Config configures the S3 target for `addrnav publish`.
type S3Config struct {
	// Bucket is the destination bucket name.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the key prefix for uploaded objects.
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region of the bucket.
	Region string `json:"region,omitempty"`
}

// SessionConfig contains session configuration.
type SessionConfig struct {
	// TTL is the session lifetime (e.g. "12h").
	TTL string `json:"ttl,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Address: DefaultAddress,
		Static: StaticConfig{
			Prefix: DefaultStaticPrefix,
		},
	}
}

// Load reads addrnav.json from the given directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a configuration file from an explicit path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("A101", errors.CategoryConfig, "no "+ConfigFileName+" found").
				WithDetail("Looked in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or pass --config with an explicit path")
		}
		return nil, errors.New("A102", errors.CategoryConfig, "cannot read "+ConfigFileName).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("A103", errors.CategoryConfig, "cannot parse "+ConfigFileName).
			WithDetail(err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file path the config was loaded from, or "".
func (c *Config) Path() string {
	return c.configPath
}

// SaveTo writes the configuration to the given path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("A104", errors.CategoryConfig, "cannot encode "+ConfigFileName).Wrap(err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.New("A104", errors.CategoryConfig, "cannot write "+ConfigFileName).Wrap(err)
	}
	c.configPath = path
	return nil
}

// applyDefaults fills unset fields and normalizes paths.
func (c *Config) applyDefaults() {
	if c.Address == "" {
		c.Address = DefaultAddress
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = DefaultStaticPrefix
	}
	c.BasePath = rewrite.NormalizeBasePath(c.BasePath)
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.Session.TTL != "" {
		if _, err := time.ParseDuration(c.Session.TTL); err != nil {
			return errors.New("A105", errors.CategoryConfig, "invalid session.ttl").
				WithDetail(err.Error()).
				WithSuggestion(`Use a Go duration string, e.g. "12h" or "30m"`)
		}
	}
	if c.Assets.S3.Prefix != "" && c.Assets.S3.Bucket == "" {
		return errors.New("A106", errors.CategoryConfig, "assets.s3.prefix set without assets.s3.bucket")
	}
	return nil
}

// SessionTTL returns the configured session lifetime, or the default.
func (c *Config) SessionTTL() time.Duration {
	if c.Session.TTL == "" {
		return DefaultSessionTTL
	}
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil {
		return DefaultSessionTTL
	}
	return d
}
