// Package config loads course-media settings from TOML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Store configures the asset database.
type Store struct {
	Path string `toml:"path"`
}

// Cleanup configures reference garbage collection.
type Cleanup struct {
	CheckTimeoutSeconds int `toml:"check_timeout_seconds"` // 0 disables the per-check bound
}

// Cache configures the asset cache.
type Cache struct {
	HandlePrefix string `toml:"handle_prefix"`
}

// Logging configures log output.
type Logging struct {
	Mode  string `toml:"mode"`
	Level string `toml:"level"`
}

// Config holds all settings.
type Config struct {
	Store   Store   `toml:"store"`
	Cleanup Cleanup `toml:"cleanup"`
	Cache   Cache   `toml:"cache"`
	Logging Logging `toml:"logging"`
}

const defaultConfigPath = "~/.config/course-media/config.toml"

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Store:   Store{Path: "~/.course-media/media.db"},
		Cleanup: Cleanup{CheckTimeoutSeconds: 10},
		Cache:   Cache{HandlePrefix: "course-media"},
		Logging: Logging{Mode: "dev", Level: "warn"},
	}
}

// DefaultConfigPath returns the absolute path of the default config file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads path (or the default location when empty) over Default and
// validates the result. A missing file is not an error. The resolved path and
// whether it existed are returned alongside the config.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).DisallowUnknownFields().Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	p, err := expandPath(strings.TrimSpace(c.Store.Path))
	if err != nil {
		return err
	}
	c.Store.Path = p
	c.Cache.HandlePrefix = strings.Trim(strings.TrimSpace(c.Cache.HandlePrefix), "/")
	c.Logging.Mode = strings.ToLower(strings.TrimSpace(c.Logging.Mode))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return errors.New("store.path must be set")
	}
	if c.Cleanup.CheckTimeoutSeconds < 0 {
		return fmt.Errorf("cleanup.check_timeout_seconds must be >= 0, got %d", c.Cleanup.CheckTimeoutSeconds)
	}
	if strings.ContainsAny(c.Cache.HandlePrefix, " \t\n") {
		return fmt.Errorf("cache.handle_prefix %q must not contain whitespace", c.Cache.HandlePrefix)
	}
	switch c.Logging.Mode {
	case "", "dev", "development", "prod", "production", "json":
	default:
		return fmt.Errorf("logging.mode %q must be dev or prod", c.Logging.Mode)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}
	return nil
}

// CheckTimeout returns the per-check cleanup bound.
func (c *Config) CheckTimeout() time.Duration {
	return time.Duration(c.Cleanup.CheckTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath applies the config path rules to a path given on the command line.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
