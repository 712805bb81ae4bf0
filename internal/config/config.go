package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the runtime settings of the API server and its tools.
type Config struct {
	AppPort    string
	DBDriver   string
	DBDSN      string
	DBLogLevel string

	JWTSecret  string
	BcryptCost int

	RabbitMQURL      string
	RabbitMQExchange string

	// LegacyRepeatOrderDecrement makes a repeated order for the same
	// (user, product) pair consume stock even though no second order is
	// created. Off by default.
	LegacyRepeatOrderDecrement bool
}

// New returns a viper instance with every default set and environment
// variables bound. Callers may bind extra sources (flags) before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:lemari.db?_foreign_keys=1")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "lemari.events")
	v.SetDefault("ORDERS_LEGACY_REPEAT_DECREMENT", false)
	v.SetDefault("CONFIG_FILE", "")
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file named by CONFIG_FILE and decodes v
// into a Config.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = New()
	}

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
			}
		}
	}

	cfg := &Config{
		AppPort:                    v.GetString("APP_PORT"),
		DBDriver:                   strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:                      v.GetString("DATABASE_DSN"),
		DBLogLevel:                 strings.ToLower(v.GetString("DB_LOG_LEVEL")),
		JWTSecret:                  v.GetString("JWT_SECRET"),
		BcryptCost:                 v.GetInt("BCRYPT_COST"),
		RabbitMQURL:                v.GetString("RABBITMQ_URL"),
		RabbitMQExchange:           v.GetString("RABBITMQ_EXCHANGE"),
		LegacyRepeatOrderDecrement: v.GetBool("ORDERS_LEGACY_REPEAT_DECREMENT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	switch c.DBLogLevel {
	case "silent", "error", "warn", "info":
	default:
		return fmt.Errorf("unsupported DB_LOG_LEVEL %q", c.DBLogLevel)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.RabbitMQURL != "" && c.RabbitMQExchange == "" {
		return errors.New("RABBITMQ_EXCHANGE is required when RABBITMQ_URL is set")
	}
	return nil
}
