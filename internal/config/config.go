package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config contains server configuration parameters.
type Config struct {
	LogLevel int     `env:"LOG_LEVEL" envDefault:"0"`
	HTTP     HTTP    `envPrefix:"HTTP_"`
	Mongo    Mongo   `envPrefix:"MONGODB_"`
	Auth     Auth    `envPrefix:"AUTH_"`
	Metrics  Metrics `envPrefix:"METRICS_"`
	Bcrypt   Bcrypt  `envPrefix:"BCRYPT_"`
}

// HTTP contains HTTP server parameters. PathPrefix is prepended to every
// route and Location header, e.g. "/api/v1".
type HTTP struct {
	Port            string        `env:"PORT" envDefault:"8080" validate:"required,numeric"`
	PathPrefix      string        `env:"PATH_PREFIX" envDefault:"" validate:"omitempty,startswith=/"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s" validate:"gt=0"`
}

// Mongo contains database connection parameters.
type Mongo struct {
	URI            string        `env:"URI" envDefault:"mongodb://localhost:27017" validate:"required,startswith=mongodb"`
	Database       string        `env:"DATABASE" envDefault:"sup" validate:"required"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s" validate:"gt=0"`
}

// Auth contains HTTP Basic authentication parameters.
type Auth struct {
	Realm string `env:"REALM" envDefault:"Users" validate:"required"`
}

// Metrics controls the Prometheus endpoint.
type Metrics struct {
	Enabled bool `env:"ENABLED" envDefault:"true"`
}

// Bcrypt contains password hashing parameters.
type Bcrypt struct {
	Cost int `env:"COST" envDefault:"10" validate:"min=4,max=31"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
