package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/NattKh/Expedition33ModManager/internal/installer"
	"github.com/NattKh/Expedition33ModManager/internal/logging"
)

const (
	DefaultPath      = "unniemods.json"
	defaultCachePath = "unnie_mod_manager_cache.json"
	defaultUserAgent = "UnnieModManager"
)

type Config struct {
	LoaderURL          string `json:"loader_url"`
	TargetDir          string `json:"target_dir,omitempty"`
	CachePath          string `json:"cache_path"`
	HTTPTimeoutSeconds int    `json:"http_timeout_seconds"` // 0 disables the timeout.
	UserAgent          string `json:"user_agent,omitempty"`
	LogLevel           string `json:"log_level"`
}

// Load reads the config file at path. A missing file is not an error: the
// tool works out of the box with defaults.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LoaderURL == "" {
		c.LoaderURL = installer.DefaultLoaderURL
	}
	if c.CachePath == "" {
		c.CachePath = defaultCachePath
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c Config) Validate() error {
	u, err := url.Parse(c.LoaderURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("loader_url must be an absolute http(s) url, got %q", c.LoaderURL)
	}
	if c.CachePath == "" {
		return fmt.Errorf("cache_path is required")
	}
	if c.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("http_timeout_seconds must not be negative")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
