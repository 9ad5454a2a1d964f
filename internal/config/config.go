// Package config reads the service settings from the process environment.
//
// Binaries load a `.env` file with godotenv first; Load only looks at what
// is already in the environment, so tests can drive it with t.Setenv.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultPort          = "8080"
	DefaultUsersBasePath = "/api/users"
	DefaultPredictionURL = "https://kickstarter-predictor-dspt7.herokuapp.com/predict"
	DefaultLogLevel      = "info"

	defaultPredictionTimeout = 30
)

// Config keys are the lowercased environment variable names,
// e.g. DB_HOST -> db_host.
type Config struct {
	AppEnv        string `koanf:"app_env"`
	Port          string `koanf:"port" validate:"required"`
	UsersBasePath string `koanf:"users_base_path" validate:"required,startswith=/"`
	LogLevel      string `koanf:"log_level" validate:"oneof=trace debug info warn error"`

	DatabaseURL string `koanf:"database_url"`
	DBUser      string `koanf:"db_user" validate:"required_without=DatabaseURL"`
	DBPassword  string `koanf:"db_password"`
	DBHost      string `koanf:"db_host" validate:"required_without=DatabaseURL"`
	DBPort      string `koanf:"db_port"`
	DBName      string `koanf:"db_name" validate:"required_without=DatabaseURL"`
	DBSSLMode   string `koanf:"db_sslmode"`

	JWTSecret string `koanf:"jwt_secret" validate:"required"`

	PredictionURL            string `koanf:"prediction_url" validate:"required,url"`
	PredictionTimeoutSeconds int    `koanf:"prediction_timeout_seconds" validate:"gte=0"`

	// RabbitMQURL is optional; without it the server keeps campaign events
	// in process.
	RabbitMQURL string `koanf:"rabbitmq_url" validate:"omitempty,url"`
}

// Load reads, defaults and validates the configuration.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Keys never contain dots, so "." as delimiter keeps them flat.
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AppEnv == "" {
		c.AppEnv = "development"
	}
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.UsersBasePath == "" {
		c.UsersBasePath = DefaultUsersBasePath
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.PredictionURL == "" {
		c.PredictionURL = DefaultPredictionURL
	}
	if c.PredictionTimeoutSeconds == 0 {
		c.PredictionTimeoutSeconds = defaultPredictionTimeout
	}
	if c.DBPort == "" {
		c.DBPort = "5432"
	}
	if c.DBSSLMode == "" {
		c.DBSSLMode = "disable"
	}
}

// DSN prefers DATABASE_URL and otherwise assembles one from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

func (c *Config) PredictionTimeout() time.Duration {
	return time.Duration(c.PredictionTimeoutSeconds) * time.Second
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
