// Package config loads runtime settings. Environment variables (DIASTOLE_*)
// override the optional config file, which overrides the defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/aretw0/diastole/internal/logging"
)

// EnvPrefix namespaces environment overrides, e.g. DIASTOLE_LOG_LEVEL.
const EnvPrefix = "DIASTOLE"

// Config is the full runtime configuration.
type Config struct {
	Listen  string       `json:"listen" mapstructure:"listen" validate:"required,hostname_port"`
	Catalog string       `json:"catalog" mapstructure:"catalog"`
	Log     LogConfig    `json:"log" mapstructure:"log"`
	Engine  EngineConfig `json:"engine" mapstructure:"engine"`
	HTTP    HTTPConfig   `json:"http" mapstructure:"http"`
}

// LogConfig selects the logger level and handler.
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `json:"format" mapstructure:"format" validate:"oneof=text json"`
}

// EngineConfig tunes navigation.
type EngineConfig struct {
	MaxChain int `json:"maxChain" mapstructure:"max_chain" validate:"min=1,max=1024"`
}

// HTTPConfig toggles optional server middleware.
type HTTPConfig struct {
	ValidateRequests bool `json:"validateRequests" mapstructure:"validate_requests"`
	Metrics          bool `json:"metrics" mapstructure:"metrics"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen: "127.0.0.1:8080",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Engine: EngineConfig{MaxChain: 32},
		HTTP: HTTPConfig{
			ValidateRequests: true,
			Metrics:          true,
		},
	}
}

// Load reads path when non-empty, applies environment overrides and validates
// the result. A missing path is an error; no path means defaults plus env.
func Load(path string) (*Config, error) {
	v := viper.New()

	d := DefaultConfig()
	v.SetDefault("listen", d.Listen)
	v.SetDefault("catalog", d.Catalog)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("engine.max_chain", d.Engine.MaxChain)
	v.SetDefault("http.validate_requests", d.HTTP.ValidateRequests)
	v.SetDefault("http.metrics", d.HTTP.Metrics)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		problems := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return err
}

// Logger builds the application logger described by the log section.
func (c *Config) Logger() *slog.Logger {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(logging.Options{Level: level, Format: logging.Format(c.Log.Format)})
}
