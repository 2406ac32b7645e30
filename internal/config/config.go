package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DefaultSecretKey is only meant for local development; main warns when it is in use.
const DefaultSecretKey = "scissors-development-secret"

type Config struct {
	ServerAddress   string        `env:"SERVER_ADDRESS"`
	BaseURL         string        `env:"BASE_URL"`
	FileStoragePath string        `env:"FILE_STORAGE_PATH"`
	DatabaseDSN     string        `env:"DATABASE_DSN"`
	SecretKey       string        `env:"SECRET_KEY"`
	TokenTTL        time.Duration `env:"TOKEN_TTL"`
	KeyLength       int           `env:"KEY_LENGTH" envDefault:"5"`
	KeyAttempts     int           `env:"KEY_ATTEMPTS" envDefault:"10"`
}

func ParseFlags() (*Config, error) {
	// a missing .env file is fine, the environment may be set up otherwise
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	envServerAddress := cfg.ServerAddress
	envBaseURL := cfg.BaseURL
	envFileStoragePath := cfg.FileStoragePath
	envDatabaseDSN := cfg.DatabaseDSN
	envSecretKey := cfg.SecretKey
	envTokenTTL := cfg.TokenTTL

	flag.StringVar(&cfg.ServerAddress, "a", getDefaultServerAddress(), "Address of the server")
	flag.StringVar(&cfg.BaseURL, "b", getDefaultBaseURL(), "Base URL for short URLs")
	flag.StringVar(&cfg.FileStoragePath, "f", "", "Path of the JSON snapshot used by the in-memory store")
	flag.StringVar(&cfg.DatabaseDSN, "d", "", "PostgreSQL connection string")
	flag.StringVar(&cfg.SecretKey, "s", DefaultSecretKey, "Secret used to sign session tokens")
	flag.DurationVar(&cfg.TokenTTL, "t", getDefaultTokenTTL(), "Lifetime of session tokens")

	flag.Parse()

	if envServerAddress != "" {
		cfg.ServerAddress = envServerAddress
	}
	if envBaseURL != "" {
		cfg.BaseURL = envBaseURL
	}
	if envFileStoragePath != "" {
		cfg.FileStoragePath = envFileStoragePath
	}
	if envDatabaseDSN != "" {
		cfg.DatabaseDSN = envDatabaseDSN
	}
	if envSecretKey != "" {
		cfg.SecretKey = envSecretKey
	}
	if envTokenTTL != 0 {
		cfg.TokenTTL = envTokenTTL
	}

	cfg.applyDefaultValues()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key cannot be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive, got %s", c.TokenTTL)
	}
	if c.KeyLength < 1 {
		return fmt.Errorf("key length must be positive, got %d", c.KeyLength)
	}
	if c.KeyAttempts < 1 {
		return fmt.Errorf("key attempts must be positive, got %d", c.KeyAttempts)
	}
	return nil
}

func (c *Config) applyDefaultValues() {
	if c.ServerAddress == "" {
		c.ServerAddress = getDefaultServerAddress()
	}

	if c.BaseURL == "" {
		c.BaseURL = getDefaultBaseURL()
	}

	if c.SecretKey == "" {
		c.SecretKey = DefaultSecretKey
	}

	if c.TokenTTL == 0 {
		c.TokenTTL = getDefaultTokenTTL()
	}
}

func getDefaultServerAddress() string {
	return "localhost:8080"
}

func getDefaultBaseURL() string {
	return "http://localhost:8080"
}

func getDefaultTokenTTL() time.Duration {
	return 60 * time.Minute
}
