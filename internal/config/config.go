package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Defaults for settings left out of config.toml.
const (
	DefaultPollInterval          = 5 * time.Second
	DefaultGroupsRefreshInterval = time.Minute
	DefaultRequestTimeout        = 15 * time.Second
)

// Environment variables that override config.toml.
const (
	EnvAPIURL       = "TSCHED_API_URL"
	EnvSession      = "TSCHED_SESSION"
	EnvPollInterval = "TSCHED_POLL_INTERVAL"
)

// Duration is a time.Duration written as "5s" or "1m" in TOML.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config represents the global ~/.tsched/config.toml.
type Config struct {
	DefaultSession        string   `toml:"default_session,omitempty"`
	APIURL                string   `toml:"api_url,omitempty"`
	PollInterval          Duration `toml:"poll_interval,omitempty"`
	GroupsRefreshInterval Duration `toml:"groups_refresh_interval,omitempty"`
	RequestTimeout        Duration `toml:"request_timeout,omitempty"`
}

// Load reads config from the given path. Returns an error if the file is missing.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve builds the effective config: config.toml when present, then a
// .env file in dir (if any), then the process environment. Unset values
// get their defaults.
func Resolve(path, envDir string) (*Config, error) {
	cfg, err := Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = &Config{}
	case err != nil:
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	if envDir != "" {
		if err := godotenv.Load(filepath.Join(envDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.APIURL = v
	}
	if v, ok := lookup(EnvSession); ok && v != "" {
		c.DefaultSession = v
	}
	if v, ok := lookup(EnvPollInterval); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPollInterval, err)
		}
		c.PollInterval = Duration(d)
	}
	return nil
}

// ApplyDefaults fills unset intervals. A negative groups refresh interval
// disables periodic directory refreshes and is kept as is.
func (c *Config) ApplyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = Duration(DefaultPollInterval)
	}
	if c.GroupsRefreshInterval == 0 {
		c.GroupsRefreshInterval = Duration(DefaultGroupsRefreshInterval)
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = Duration(DefaultRequestTimeout)
	}
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
