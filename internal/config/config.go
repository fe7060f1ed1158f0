// Package config loads the router configuration from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"

	PolicyDefault = "default"
	PolicyReject  = "reject"
)

var (
	ErrUnknownBackend = errors.New("unknown STORE_BACKEND")
	ErrUnknownPolicy  = errors.New("unknown STATUS_POLICY")
)

type Config struct {
	Ledger LedgerConfig
	Store  StoreConfig

	StatusPolicy    string        `env:"STATUS_POLICY" envDefault:"default"`
	MirrorRetries   uint64        `env:"MIRROR_RETRIES" envDefault:"2"`
	MirrorRetryBase time.Duration `env:"MIRROR_RETRY_BASE" envDefault:"100ms"`

	Port      string `env:"PORT" envDefault:"3000"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER" envDefault:"go-supplychain-router"`
}

// LedgerConfig values are handed to the ledger client as-is.
type LedgerConfig struct {
	RPCURL          string        `env:"LEDGER_RPC_URL"`
	PrivateKey      string        `env:"LEDGER_PRIVATE_KEY"`
	ContractAddress string        `env:"CONTRACT_ADDRESS"`
	WaitTimeout     time.Duration `env:"LEDGER_WAIT_TIMEOUT" envDefault:"2m"`
}

type StoreConfig struct {
	Backend       string `env:"STORE_BACKEND" envDefault:"dynamodb"`
	AWSRegion     string `env:"AWS_REGION"`
	DynamoTable   string `env:"DYNAMODB_TABLE" envDefault:"Products"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Load reads .env (if any) and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings. Connection strings and keys are not inspected here.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendDynamoDB, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Store.Backend)
	}

	switch c.StatusPolicy {
	case PolicyDefault, PolicyReject:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPolicy, c.StatusPolicy)
	}
	return nil
}
