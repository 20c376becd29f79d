package config

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the service settings that are not read directly by the
// database and redis initialisers
type Config struct {
	Port            string
	LogLevel        string
	JWTSecret       string
	BalanceCacheTTL time.Duration
}

// envBindings maps viper keys to the environment variables that set them
var envBindings = map[string]string{
	"database.host":            "DATABASE_HOST",
	"database.port":            "DATABASE_PORT",
	"database.user":            "DATABASE_USER",
	"database.password":        "DATABASE_PASSWORD",
	"database.name":            "DATABASE_NAME",
	"database.ssl_mode":        "DATABASE_SSL_MODE",
	"database.migrate":         "DATABASE_MIGRATE",
	"redis.host":               "REDIS_HOST",
	"redis.port":               "REDIS_PORT",
	"redis.password":           "REDIS_PASSWORD",
	"redis.db":                 "REDIS_DB",
	"jwt.secret_key":           "JWT_SECRET_KEY",
	"server.port":              "PORT",
	"log.level":                "LOG_LEVEL",
	"ledger.balance_cache_ttl": "BALANCE_CACHE_TTL",
}

// Load reads .env (when present) and the environment into viper and returns
// the service settings
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("ledger.balance_cache_ttl", 10*time.Minute)
	viper.SetDefault("database.migrate", true)

	if err := viper.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			return nil, err
		}
		// no .env file, environment and defaults only
	}

	return &Config{
		Port:            viper.GetString("server.port"),
		LogLevel:        viper.GetString("log.level"),
		JWTSecret:       viper.GetString("jwt.secret_key"),
		BalanceCacheTTL: viper.GetDuration("ledger.balance_cache_ttl"),
	}, nil
}

// NewLogger builds the JSON logger used across the service
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}
