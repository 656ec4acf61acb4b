package config

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

const minSecretBytes = 32

type Config struct {
	Port        string `env:"PORT,         default=8080"`
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	StoreDriver string `env:"STORE_DRIVER, default=postgres"`

	JWT      JWTConfig
	CORS     CORSConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type JWTConfig struct {
	Secret   string `env:"JWT_SECRET,   required"`
	Issuer   string `env:"JWT_ISSUER,   required"`
	Audience string `env:"JWT_AUDIENCE, required"`
}

// CORSConfig lists the browser origins allowed to call the API.
// The default "*" allows any origin.
type CORSConfig struct {
	AllowOrigins []string `env:"CORS_ALLOW_ORIGINS, default=*"`
}

type PostgresConfig struct {
	URL         string        `env:"DATABASE_URL"`
	AutoMigrate bool          `env:"DB_AUTO_MIGRATE, default=true"`
	Timeout     time.Duration `env:"DB_TIMEOUT,      default=10s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=idea_voting"`
}

// RedisConfig is optional. An empty Addr disables the vote-count cache.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	DB       int           `env:"REDIS_DB,       default=0"`
	CountTTL time.Duration `env:"VOTE_COUNT_TTL, default=60s"`
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom builds a Config from the given lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.JWT.Secret) < minSecretBytes {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretBytes))
	}
	if !slices.Contains([]string{StorePostgres, StoreMongo, StoreMemory}, c.StoreDriver) {
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of postgres, mongo, memory", c.StoreDriver))
	}
	if c.StoreDriver == StorePostgres && c.Postgres.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres"))
	}
	if c.StoreDriver == StoreMongo && c.Mongo.URI == "" {
		errs = append(errs, errors.New("MONGO_URI is required when STORE_DRIVER=mongo"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
