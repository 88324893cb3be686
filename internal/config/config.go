// Package config loads service configuration from file, environment, and
// defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the ProdTrack server.
// Tags use mapstructure for Viper unmarshalling.
type Config struct {
	Host          string `mapstructure:"HOST"`
	Port          int    `mapstructure:"PORT"`
	DataDir       string `mapstructure:"DATA_DIR"`
	DatabasePath  string `mapstructure:"DATABASE_PATH"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogPretty     bool   `mapstructure:"LOG_PRETTY"`
	CacheTTLSec   int    `mapstructure:"CACHE_TTL_SEC"`
	AdminJWTKey   string `mapstructure:"ADMIN_JWT_KEY"`
	OtelEnabled   bool   `mapstructure:"OTEL_ENABLED"`
	OtelEndpoint  string `mapstructure:"OTEL_ENDPOINT"`
	Environment   string `mapstructure:"ENVIRONMENT"`
	SeedCatalog   bool   `mapstructure:"SEED_CATALOG"`
	MemoryOnly    bool   `mapstructure:"MEMORY_ONLY"`
	ServerVersion string `mapstructure:"SERVER_VERSION"`
}

// Load reads configuration from prodtrack.yaml, PRODTRACK_* environment
// variables, and defaults, in ascending precedence.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("prodtrack")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/prodtrack/")
	v.AddConfigPath("$HOME/.prodtrack")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PRODTRACK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 3000)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("DATABASE_PATH", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("CACHE_TTL_SEC", 300)
	v.SetDefault("ADMIN_JWT_KEY", "")
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_ENDPOINT", "localhost:4317")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("SEED_CATALOG", true)
	v.SetDefault("MEMORY_ONLY", false)
	v.SetDefault("SERVER_VERSION", "dev")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars cover it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
