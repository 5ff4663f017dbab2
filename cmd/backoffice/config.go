package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/backoffice/internal/logger"
	"github.com/nkiryanov/backoffice/internal/service/sweeper"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultAccessTTL    = "15m"
	defaultRefreshTTL   = "7d"
)

type Config struct {
	// Default logging level
	LogLevel string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	// Address on which the service will be run
	ListenAddr string `env:"RUN_ADDRESS" validate:"required,hostname_port"`

	// Database to connect to
	DatabaseDSN string `env:"DATABASE_URI" validate:"required"`

	// Secret key to sign JWT access tokens
	SecretKey string `env:"JWT_SECRET" validate:"required"`

	// Token lifetimes like "15m" or "7d". Unparsable value means 7 days
	AccessTTL  string `env:"JWT_ACCESS_EXPIRATION"`
	RefreshTTL string `env:"JWT_REFRESH_EXPIRATION"`

	// How often expired refresh tokens are swept. Zero disables sweeping
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" validate:"gte=0"`

	// Environment
	Environment string `env:"ENVIRONMENT" validate:"oneof=dev prod"`
}

func NewConfig() *Config {
	return &Config{
		LogLevel:      defaultLoggingLevel,
		ListenAddr:    defaultListenAddr,
		AccessTTL:     defaultAccessTTL,
		RefreshTTL:    defaultRefreshTTL,
		SweepInterval: sweeper.DefaultInterval,
		Environment:   defaultEnvironment,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(envMap)
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

// Override options with not empty environment values
func (c *Config) LoadEnv(environ map[string]string) error {
	err := env.ParseWithOptions(c, env.Options{Environment: environ})
	if err != nil {
		return fmt.Errorf("can't parse environment: %w", err)
	}
	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("backoffice", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret", "s", c.SecretKey, "Secret key to sign access tokens")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.AccessTTL, "access-ttl", c.AccessTTL, "Access token lifetime (e.g. 15m)")
	fs.StringVar(&c.RefreshTTL, "refresh-ttl", c.RefreshTTL, "Refresh token lifetime (e.g. 7d)")
	fs.DurationVar(&c.SweepInterval, "sweep-interval", c.SweepInterval, "Expired refresh tokens sweep interval, 0 disables")

	return fs.Parse(args)
}

func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

// Load config: defaults, then '.env' file, then environment, then flags
func LoadConfig(environ []string, getwd func() (string, error), args []string) (*Config, error) {
	c := NewConfig()

	err := c.LoadDotEnv(getwd)
	if err != nil {
		return nil, fmt.Errorf("can't load .env file: %w", err)
	}

	err = c.LoadEnv(envMap(environ))
	if err != nil {
		return nil, err
	}

	err = c.ParseFlags(args)
	if err != nil {
		return nil, err
	}

	err = c.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return c, nil
}

// Convert 'KEY=value' pairs (like os.Environ returns) to map
func envMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			m[key] = value
		}
	}
	return m
}
