// Package config loads the runtime configuration: defaults, then an
// optional config file, then DIRDB_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration.
type Config struct {
	DataDir  string `mapstructure:"data_dir" validate:"required"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	User     string `mapstructure:"user" validate:"required"`
	Database string `mapstructure:"database" validate:"required"`
	Indent   int    `mapstructure:"indent" validate:"min=0,max=8"`
}

// Load resolves the configuration. A missing config file falls back to
// defaults and environment; a malformed or invalid one is an error.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("data_dir", "./data")
	v.SetDefault("log_level", "info")
	v.SetDefault("user", "default")
	v.SetDefault("database", "default")
	v.SetDefault("indent", 2)

	v.SetEnvPrefix("DIRDB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile := os.Getenv("DIRDB_CONFIG_PATH"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("dirdb")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		slog.Debug("No config file, using defaults and environment")
	} else {
		slog.Info("Configuration loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
