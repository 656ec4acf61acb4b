// Command migrate applies or rolls back the PostgreSQL schema.
//
//	migrate up        apply every pending migration
//	migrate down      roll back one migration
//	migrate version   print the current schema version
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/ideaboard/idea-voting/internal/infrastructure/db/postgres"
	"github.com/ideaboard/idea-voting/pkg/logger"
)

type migrateConfig struct {
	DatabaseURL string `env:"DATABASE_URL, required"`
}

func main() {
	log := logger.Init(logger.Options{Level: "info", Service: "idea-voting-migrate"})

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	_ = godotenv.Load()
	var cfg migrateConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	m, err := postgres.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create migrator")
	}
	defer m.Close()

	if err := run(m, cmd); err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("migration failed")
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info().Msg("schema is empty")
	case err != nil:
		log.Fatal().Err(err).Msg("failed to read schema version")
	default:
		log.Info().Uint("version", version).Bool("dirty", dirty).Str("command", cmd).Msg("migration finished")
	}
}

func run(m *migrate.Migrate, cmd string) error {
	var err error
	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "version":
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
