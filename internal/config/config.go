// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port                          string  `mapstructure:"PORT"`
	Env                           string  `mapstructure:"APP_ENV"`
	DBDriver                      string  `mapstructure:"DB_DRIVER"`
	DBHost                        string  `mapstructure:"DB_HOST"`
	DBPort                        string  `mapstructure:"DB_PORT"`
	DBUser                        string  `mapstructure:"DB_USER"`
	DBPassword                    string  `mapstructure:"DB_PASSWORD"`
	DBName                        string  `mapstructure:"DB_NAME"`
	DBSSLMode                     string  `mapstructure:"DB_SSLMODE"`
	DBReadHost                    string  `mapstructure:"DB_READ_HOST"`
	DBReadPort                    string  `mapstructure:"DB_READ_PORT"`
	DBReadUser                    string  `mapstructure:"DB_READ_USER"`
	DBReadPassword                string  `mapstructure:"DB_READ_PASSWORD"`
	DBSQLitePath                  string  `mapstructure:"DB_SQLITE_PATH"`
	DBMaxOpenConns                int     `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns                int     `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes      int     `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSchemaMode                  string  `mapstructure:"DB_SCHEMA_MODE"`
	DBAutoMigrateAllowDestructive bool    `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`
	RedisURL                      string  `mapstructure:"REDIS_URL"`
	AllowedOrigins                string  `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags                  string  `mapstructure:"FEATURE_FLAGS"`
	PublicBaseURL                 string  `mapstructure:"PUBLIC_BASE_URL"`
	PublicCacheTTLSeconds         int     `mapstructure:"PUBLIC_CACHE_TTL_SECONDS"`
	ReserveRateLimit              int     `mapstructure:"RESERVE_RATE_LIMIT"`
	RateLimitFailClosed           bool    `mapstructure:"RATE_LIMIT_FAIL_CLOSED"`
	TracingEnabled                bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter               string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint                  string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio           float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
	SeedDemo                      bool    `mapstructure:"SEED_DEMO"`
}

// LoadConfig loads application configuration from .env, config files and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_DRIVER", DriverPostgres)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "giftshare")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_READ_HOST", "")
	viper.SetDefault("DB_READ_PORT", "5432")
	viper.SetDefault("DB_READ_USER", "user")
	viper.SetDefault("DB_READ_PASSWORD", "password")
	viper.SetDefault("DB_SQLITE_PATH", "giftshare.db")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE", false)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("FEATURE_FLAGS", "random_gift=on,saved_wishlists=on")
	viper.SetDefault("PUBLIC_BASE_URL", "")
	viper.SetDefault("PUBLIC_CACHE_TTL_SECONDS", 60)
	viper.SetDefault("RESERVE_RATE_LIMIT", 10)
	viper.SetDefault("RATE_LIMIT_FAIL_CLOSED", false)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
	viper.SetDefault("SEED_DEMO", false)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.PublicBaseURL), "/")
}

// IsProduction reports whether the config targets a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}

	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.DBMaxOpenConns < 0 || c.DBMaxIdleConns < 0 {
		return errors.New("DB_MAX_OPEN_CONNS and DB_MAX_IDLE_CONNS must not be negative")
	}
	if c.DBConnMaxLifetimeMinutes <= 0 {
		return errors.New("DB_CONN_MAX_LIFETIME_MINUTES must be positive")
	}
	if c.TracingSamplerRatio < 0 || c.TracingSamplerRatio > 1 {
		return errors.New("TRACING_SAMPLER_RATIO must be between 0 and 1")
	}

	// Strict checks for production
	if c.IsProduction() {
		if c.DBDriver != DriverPostgres {
			return errors.New("DB_DRIVER must be postgres in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable SSL in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	}

	return nil
}
