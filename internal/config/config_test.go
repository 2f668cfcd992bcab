package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/course-media/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, resolved, exists, err := config.Load("")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, filepath.Join(home, ".config", "course-media", "config.toml"), resolved)
	assert.Equal(t, filepath.Join(home, ".course-media", "media.db"), cfg.Store.Path)
	assert.Equal(t, 10*time.Second, cfg.CheckTimeout())
	assert.Equal(t, "course-media", cfg.Cache.HandlePrefix)
	assert.Equal(t, "dev", cfg.Logging.Mode)
}

func TestLoadOverridesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[store]
path = "~/data/media.db"

[cleanup]
check_timeout_seconds = 0

[cache]
handle_prefix = "/authoring/"

[logging]
mode = "PROD"
level = "Debug"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, resolved, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, path, resolved)
	assert.Equal(t, filepath.Join(home, "data", "media.db"), cfg.Store.Path)
	assert.Zero(t, cfg.CheckTimeout())
	assert.Equal(t, "authoring", cfg.Cache.HandlePrefix)
	assert.Equal(t, "prod", cfg.Logging.Mode)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[store]\ndb = \"x\"\n"), 0o644))

	_, _, _, err := config.Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		ok     bool
	}{
		{"default", func(*config.Config) {}, true},
		{"empty store path", func(c *config.Config) { c.Store.Path = "" }, false},
		{"negative timeout", func(c *config.Config) { c.Cleanup.CheckTimeoutSeconds = -1 }, false},
		{"prefix with space", func(c *config.Config) { c.Cache.HandlePrefix = "a b" }, false},
		{"unknown mode", func(c *config.Config) { c.Logging.Mode = "syslog" }, false},
		{"unknown level", func(c *config.Config) { c.Logging.Level = "trace" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDefaultRoundTripsThroughTOML(t *testing.T) {
	b, err := toml.Marshal(config.Default())
	require.NoError(t, err)

	var got config.Config
	require.NoError(t, toml.Unmarshal(b, &got))
	assert.Equal(t, config.Default(), got)
}
