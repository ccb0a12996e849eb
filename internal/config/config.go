// Package config loads the grove-demo configuration from a YAML file, a .env
// file and GROVE_* environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ARTM2000/grove/internal/logging"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GROVE"

// Config is the demo configuration.
type Config struct {
	Name        string         `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string         `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Logging     logging.Config `yaml:"logging" mapstructure:"logging"`
	Metrics     MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
	Greeting    GreetingConfig `yaml:"greeting" mapstructure:"greeting"`
}

// MetricsConfig controls the prometheus collectors attached to the root
// container.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// GreetingConfig holds the audiences bound at the root and child scopes.
type GreetingConfig struct {
	Audience    string `yaml:"audience" mapstructure:"audience" validate:"required"`
	Alternative string `yaml:"alternative" mapstructure:"alternative" validate:"required"`
}

// ApplyDefaults fills in values left empty after unmarshalling.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "grove-demo"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Logging.ApplyDefaults()
	if c.Greeting.Audience == "" {
		c.Greeting.Audience = "world"
	}
	if c.Greeting.Alternative == "" {
		c.Greeting.Alternative = "you guys"
	}
}

// Validate checks the struct tags of c.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

type loaderConfig struct {
	configFile string
	envFile    string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*loaderConfig)

// WithConfigFile sets the YAML file to read. The file must exist.
func WithConfigFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.configFile = path }
}

// WithEnvFile sets a .env file whose variables are loaded into the process
// environment. Variables already set are not overridden.
func WithEnvFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.envFile = path }
}

// Load reads, defaults and validates the configuration.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc loaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	v := viper.New()
	setDefaults(v)

	if lc.configFile != "" {
		v.SetConfigFile(lc.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", lc.configFile, err)
		}
	}

	if lc.envFile != "" {
		if err := godotenv.Load(lc.envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", lc.envFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "grove-demo")
	v.SetDefault("environment", "development")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", logging.FormatConsole)
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.no_color", false)
	v.SetDefault("logging.timestamp", true)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("greeting.audience", "world")
	v.SetDefault("greeting.alternative", "you guys")
}
