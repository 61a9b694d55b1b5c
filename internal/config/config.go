// Package config provides settings management for linkpage using Viper for
// flexible loading from files, environment variables, and command-line flags.
//
// Every setting can be overridden with a LINKPAGE_ prefixed environment
// variable (LINKPAGE_SERVER_PORT, LINKPAGE_CACHE_TTL, ...). The deployment
// variables CONFIG_PATH, INVALIDATE_TOKEN, PORT and ENVIRONMENT are bound
// explicitly to the matching keys.
package config

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/linkpage/internal/logging"
	"github.com/conneroisu/linkpage/internal/profile"
)

// EnvPrefix is the prefix for automatic environment bindings.
const EnvPrefix = "LINKPAGE"

// Environments.
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

// Invalidation modes.
const (
	ModeLocal = "local"
	ModeHTTP  = "http"
)

type Config struct {
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Profile      ProfileConfig      `yaml:"profile" mapstructure:"profile"`
	Invalidation InvalidationConfig `yaml:"invalidation" mapstructure:"invalidation"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Images       ImagesConfig       `yaml:"images" mapstructure:"images"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

type ServerConfig struct {
	Host           string   `yaml:"host" mapstructure:"host"`
	Port           int      `yaml:"port" mapstructure:"port"`
	Environment    string   `yaml:"environment" mapstructure:"environment"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

type ProfileConfig struct {
	Path     string        `yaml:"path" mapstructure:"path"`
	Watch    bool          `yaml:"watch" mapstructure:"watch"`
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

type InvalidationConfig struct {
	Token   string        `yaml:"token" mapstructure:"token"`
	Mode    string        `yaml:"mode" mapstructure:"mode"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type CacheConfig struct {
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
	MaxSize int64         `yaml:"max_size" mapstructure:"max_size"`
}

type ImagesConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SetDefaults registers default values and the explicit environment
// bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.environment", EnvironmentProduction)
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("profile.path", profile.DefaultFileName)
	v.SetDefault("profile.watch", true)
	v.SetDefault("profile.debounce", 100*time.Millisecond)

	v.SetDefault("invalidation.token", "")
	v.SetDefault("invalidation.mode", ModeLocal)
	v.SetDefault("invalidation.timeout", time.Duration(0))

	v.SetDefault("cache.ttl", time.Duration(0))
	v.SetDefault("cache.max_size", int64(16<<20))

	v.SetDefault("images.dir", "public/images")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	_ = v.BindEnv("profile.path", EnvPrefix+"_PROFILE_PATH", "CONFIG_PATH")
	_ = v.BindEnv("invalidation.token", EnvPrefix+"_INVALIDATION_TOKEN", "INVALIDATE_TOKEN")
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.environment", EnvPrefix+"_SERVER_ENVIRONMENT", "ENVIRONMENT")
}

// ConfigureEnv enables LINKPAGE_ prefixed environment overrides on v.
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	ConfigureEnv(v)
	return v
}

// Load decodes and validates the settings held by v. A nil v uses the
// global viper instance.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Server.Environment = strings.ToLower(strings.TrimSpace(config.Server.Environment))
	config.Invalidation.Mode = strings.ToLower(strings.TrimSpace(config.Invalidation.Mode))
	config.Log.Format = strings.ToLower(config.Log.Format)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Development reports whether the server runs in development mode.
func (c *Config) Development() bool {
	return c.Server.Environment == EnvironmentDevelopment
}

// Address returns the listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Redacted returns a copy safe for display.
func (c *Config) Redacted() *Config {
	out := *c
	out.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	if out.Invalidation.Token != "" {
		out.Invalidation.Token = "[REDACTED]"
	}
	return &out
}

// LoggerConfig translates the log settings for the logging package.
func (c *Config) LoggerConfig(output io.Writer) *logging.LoggerConfig {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}

	return &logging.LoggerConfig{
		Level:  level,
		Format: c.Log.Format,
		Output: output,
	}
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	result := ValidateConfigWithDetails(config)
	if result.HasErrors() {
		first := result.Errors[0]
		return &first
	}

	return nil
}
