// Package config loads the lbc client configuration from ~/.lbc/config.yaml
// with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/biocompute/pkg/ops"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfig  = "LBC_CONFIG"
	EnvAPIKey  = "LBC_API_KEY"
	EnvBaseURL = "LBC_BASE_URL"
)

// Defaults.
const (
	DefaultBaseURL      = "https://lbc.fly.dev"
	DefaultChallengeID  = "default"
	DefaultCacheBackend = "file"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// ErrNotConfigured is returned when credentials are required but missing.
var ErrNotConfigured = errors.New("not configured, run `lbc login` first")

// Config is the persisted client configuration.
type Config struct {
	APIKey      string      `yaml:"api_key,omitempty"`
	BaseURL     string      `yaml:"base_url,omitempty"`
	ChallengeID string      `yaml:"challenge_id,omitempty"`
	WireSchema  string      `yaml:"wire_schema,omitempty"`
	LogLevel    string      `yaml:"log_level,omitempty"`
	Cache       CacheConfig `yaml:"cache,omitempty"`
	Poll        PollConfig  `yaml:"poll,omitempty"`
}

// CacheConfig selects where submissions are remembered.
type CacheConfig struct {
	Backend string      `yaml:"backend,omitempty"`
	Dir     string      `yaml:"dir,omitempty"`
	Redis   RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig addresses a shared redis cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr,omitempty"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db,omitempty"`
	Prefix   string        `yaml:"prefix,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
}

// PollConfig controls how long and how often a job is polled.
type PollConfig struct {
	Timeout time.Duration `yaml:"timeout,omitempty"`
	Initial time.Duration `yaml:"initial,omitempty"`
	Max     time.Duration `yaml:"max,omitempty"`
	Factor  float64       `yaml:"factor,omitempty"`
}

// DefaultPoll polls after 1s, growing by 1.5x up to 10s, for at most 300s.
var DefaultPoll = PollConfig{
	Timeout: 300 * time.Second,
	Initial: time.Second,
	Max:     10 * time.Second,
	Factor:  1.5,
}

// Default returns a configuration with every default applied and no credentials.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.ChallengeID == "" {
		c.ChallengeID = DefaultChallengeID
	}
	if c.WireSchema == "" {
		c.WireSchema = ops.DefaultSchema.Name
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.Poll.Timeout == 0 {
		c.Poll.Timeout = DefaultPoll.Timeout
	}
	if c.Poll.Initial == 0 {
		c.Poll.Initial = DefaultPoll.Initial
	}
	if c.Poll.Max == 0 {
		c.Poll.Max = DefaultPoll.Max
	}
	if c.Poll.Factor == 0 {
		c.Poll.Factor = DefaultPoll.Factor
	}
}

// DefaultPath is ~/.lbc/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".lbc", "config.yaml")
	}
	return filepath.Join(home, ".lbc", "config.yaml")
}

// ResolvePath picks path, then $LBC_CONFIG, then DefaultPath.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env
	}
	return DefaultPath()
}

// Load reads the configuration at path (see ResolvePath). A missing file is
// not an error: defaults are returned. LBC_API_KEY and LBC_BASE_URL override
// the file.
func Load(path string) (*Config, error) {
	path = ResolvePath(path)

	c := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

// Validate checks enumerated fields and poll settings.
func (c *Config) Validate() error {
	if _, err := c.Schema(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Poll.Factor < 1 {
		return fmt.Errorf("poll.factor must be at least 1, got %v", c.Poll.Factor)
	}
	if c.Poll.Timeout < 0 || c.Poll.Initial < 0 || c.Poll.Max < 0 {
		return fmt.Errorf("poll durations must not be negative")
	}
	return nil
}

// Schema resolves the configured wire schema.
func (c *Config) Schema() (ops.Schema, error) {
	return ops.SchemaByName(c.WireSchema)
}

// RequireCredentials reports ErrNotConfigured when no API key is set.
func (c *Config) RequireCredentials() error {
	if c.APIKey == "" || c.BaseURL == "" {
		return ErrNotConfigured
	}
	return nil
}

// Save writes c to path (see ResolvePath) readable only by the owner.
func Save(path string, c *Config) error {
	path = ResolvePath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Remove deletes the configuration file. It returns ErrNotConfigured when
// there was nothing to remove.
func Remove(path string) error {
	path = ResolvePath(path)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotConfigured
		}
		return fmt.Errorf("failed to remove config: %w", err)
	}
	return nil
}
