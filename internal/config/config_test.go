package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into a fresh directory so no stray loanform.yaml or .env is found.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultEndpoint, cfg.Predict.Endpoint)
	assert.Equal(t, DefaultTimeout, cfg.Predict.Timeout)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Address())
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, DefaultCacheTTL, cfg.Cache.TTL)
}

func TestLoadFile(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
predict:
  endpoint: http://localhost:5000/predict
  timeout: 5s
server:
  port: 9000
  allowed_origins: ["http://a.example", "http://b.example"]
cache:
  redis_addr: localhost:6379
  ttl: 1m
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/predict", cfg.Predict.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Predict.Timeout)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loanform.yaml"), []byte("server:\n  port: 7070\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("LOANFORM_PREDICT_TIMEOUT", "2s")
	t.Setenv("LOANFORM_SERVER_ADVERTISE", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Predict.Timeout)
	assert.True(t, cfg.Server.Advertise)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOANFORM_CACHE_REDIS_ADDR=redis:6379\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("LOANFORM_CACHE_REDIS_ADDR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "redis:6379", cfg.Cache.RedisAddr)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := chdir(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Defaults", func(c *Config) {}, false},
		{"Relative endpoint", func(c *Config) { c.Predict.Endpoint = "/predict" }, true},
		{"Non-http endpoint", func(c *Config) { c.Predict.Endpoint = "ftp://host/predict" }, true},
		{"Zero timeout", func(c *Config) { c.Predict.Timeout = 0 }, true},
		{"Port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"Negative TTL", func(c *Config) { c.Cache.TTL = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
