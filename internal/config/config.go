package config

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/knot-cloud/storage-go/internal/logger"
	"github.com/knot-cloud/storage-go/network"
)

// Config is read from the environment by the knot-storage command
type Config struct {
	Environment string        `env:"ENVIRONMENT,default=dev"`
	LogLevel    string        `env:"LOG_LEVEL,default=info"`
	Protocol    string        `env:"KNOT_STORAGE_PROTOCOL,default=https"`
	Hostname    string        `env:"KNOT_STORAGE_HOSTNAME,default=storage.knot.cloud"`
	Port        int           `env:"KNOT_STORAGE_PORT,default=443"`
	Pathname    string        `env:"KNOT_STORAGE_PATHNAME"`
	Token       string        `env:"KNOT_STORAGE_TOKEN,required=true"`
	Timeout     time.Duration `env:"KNOT_STORAGE_TIMEOUT,default=10s"`
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"staging": true,
	"prod":    true,
}

// NewConfig loads the configuration from the process environment
func NewConfig() (*Config, error) {
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return Load(es)
}

// Load reads the configuration from es and validates it
func Load(es env.EnvSet) (*Config, error) {
	var cfg Config

	if err := env.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Level returns the parsed LOG_LEVEL, already checked by Load
func (c *Config) Level() slog.Level {
	level, _ := logger.ParseLogLevel(c.LogLevel)
	return level
}

// Storage returns the settings used to build the storage client.
// Protocol and token are validated by network.New.
func (c *Config) Storage(logger *slog.Logger) network.Config {
	return network.Config{
		Protocol: c.Protocol,
		Hostname: c.Hostname,
		Port:     c.Port,
		Pathname: c.Pathname,
		Token:    c.Token,
		HTTPClient: &http.Client{
			Timeout: c.Timeout,
		},
		Logger: logger,
	}
}

func validate(cfg *Config) error {
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, staging, prod", cfg.Environment)
	}

	if _, err := logger.ParseLogLevel(cfg.LogLevel); err != nil {
		return err
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", cfg.Timeout)
	}

	if cfg.Token == "" {
		return fmt.Errorf("KNOT_STORAGE_TOKEN cannot be empty")
	}

	return nil
}
