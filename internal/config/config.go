package config

import (
	"fmt"
	"net/url"
	"time"
)

const (
	appName = "loanform"

	// EnvPrefix prefixes every environment override, e.g. LOANFORM_PREDICT_ENDPOINT.
	EnvPrefix = "LOANFORM"

	DefaultEndpoint = "https://watery-cheslie-solutyics-efc6f698.koyeb.app/predict"
	DefaultTimeout  = 30 * time.Second
	DefaultHost     = "127.0.0.1"
	DefaultPort     = 8080
	DefaultCacheTTL = 10 * time.Minute
)

// Config is the complete application configuration.
type Config struct {
	Predict PredictConfig `mapstructure:"predict" yaml:"predict"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// PredictConfig points at the prediction service.
type PredictConfig struct {
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ServerConfig configures `loanform serve`.
type ServerConfig struct {
	Host           string   `mapstructure:"host" yaml:"host"`
	Port           int      `mapstructure:"port" yaml:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	Advertise      bool     `mapstructure:"advertise" yaml:"advertise"`
}

// CacheConfig enables the Redis prediction cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// LogConfig mirrors the logging options.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// Default returns the configuration used when no file or override is present.
func Default() *Config {
	return &Config{
		Predict: PredictConfig{
			Endpoint: DefaultEndpoint,
			Timeout:  DefaultTimeout,
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Cache: CacheConfig{
			TTL: DefaultCacheTTL,
		},
	}
}

// Address returns host:port for the web server.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CacheEnabled reports whether predictions should be cached.
func (c *Config) CacheEnabled() bool {
	return c.Cache.RedisAddr != ""
}

// Validate checks values that would otherwise fail later with a less useful error.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Predict.Endpoint)
	if err != nil {
		return fmt.Errorf("predict.endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("predict.endpoint: %q is not an http(s) URL", c.Predict.Endpoint)
	}
	if c.Predict.Timeout <= 0 {
		return fmt.Errorf("predict.timeout: must be positive, got %s", c.Predict.Timeout)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: %d is out of range", c.Server.Port)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl: must not be negative, got %s", c.Cache.TTL)
	}
	return nil
}
