package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test in an empty directory so no stray najdeno.yml or
// .env is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "najdeno.sqlite3", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "Staff", cfg.StaffUser)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenExpiry)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoadPrecedence(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "najdeno.yml"),
		[]byte("addr: \":9000\"\ndb: file.sqlite3\nredis-url: redis://file:6379\n"), 0o644))
	t.Setenv("NAJDENO_REDIS_URL", "redis://env:6379")
	t.Setenv("NAJDENO_TOKEN_EXPIRY", "2h")

	cfg, err := Load([]string{"--db", "flag.sqlite3", "--log-format", "JSON"})
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr, "file overrides default")
	assert.Equal(t, "redis://env:6379", cfg.RedisURL, "env overrides file")
	assert.Equal(t, "flag.sqlite3", cfg.DBPath, "flag overrides file")
	assert.Equal(t, 2*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("NAJDENO_USER=Desk\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("NAJDENO_USER") })

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "Desk", cfg.StaffUser)
}

func TestLoadExplicitConfigFileMissing(t *testing.T) {
	chdirTemp(t)

	_, err := Load([]string{"-c", "nope.yml"})
	assert.Error(t, err)
}

func TestLoadHelpAndArgs(t *testing.T) {
	chdirTemp(t)

	_, err := Load([]string{"--help"})
	assert.ErrorIs(t, err, pflag.ErrHelp)

	_, err = Load([]string{"extra"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		DBPath:      "x.sqlite3",
		Addr:        ":8080",
		StaffUser:   "Staff",
		LogFormat:   "text",
		TokenExpiry: time.Hour,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty db", func(c *Config) { c.DBPath = "" }},
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"blank user", func(c *Config) { c.StaffUser = "  " }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"zero expiry", func(c *Config) { c.TokenExpiry = 0 }},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
